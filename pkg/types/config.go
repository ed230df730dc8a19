// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for components that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "counsel-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// StoreBackend selects the document store implementation.
// Per prd001-store R1.1.
type StoreBackend string

const (
	StoreHTTP   StoreBackend = "http"
	StoreSQLite StoreBackend = "sqlite"
)

// StoreConfig holds settings for the document store client.
// Per prd001-store R1.
type StoreConfig struct {
	HTTPConfig `yaml:",inline"`

	// Backend selects http (remote vector store) or sqlite (local index).
	Backend StoreBackend `json:"backend" yaml:"backend"`

	// BaseURL is the remote store endpoint for the http backend.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// APIKey authenticates against the remote store, when required.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// IndexPath is the SQLite database path for the sqlite backend.
	IndexPath string `json:"index_path,omitempty" yaml:"index_path,omitempty"`

	// SeedPath points at a YAML seed file loaded into the sqlite backend
	// on startup when the index is empty.
	SeedPath string `json:"seed_path,omitempty" yaml:"seed_path,omitempty"`
}

// RetrievalConfig holds settings for the retriever.
// Per prd002-retrieval R1-R2.
type RetrievalConfig struct {
	// Collections lists the store collections queried for every question,
	// in a fixed order that also drives deterministic tie-breaking.
	Collections []string `json:"collections" yaml:"collections"`

	// MaxPerCollection caps results requested from each collection (default 5).
	MaxPerCollection int `json:"max_per_collection" yaml:"max_per_collection"`

	// TopK caps merged results after ranking (default 8).
	TopK int `json:"top_k" yaml:"top_k"`

	// ScoreThreshold drops results scoring below it (default 0.3). Per R2.4.
	ScoreThreshold float64 `json:"score_threshold" yaml:"score_threshold"`

	// Workers bounds concurrent per-collection queries (default 4). Per R2.5.
	Workers int `json:"workers" yaml:"workers"`

	// AuthoritativeDomains boost citation authority to 1.5. Per R3.2.
	AuthoritativeDomains []string `json:"authoritative_domains" yaml:"authoritative_domains"`
}

// GuardConfig holds settings for the guardrail validators.
// Per prd003-guardrails R1.
type GuardConfig struct {
	// CurrentYear anchors the temporal validator. Zero uses the wall clock.
	CurrentYear int `json:"current_year" yaml:"current_year"`

	// MinEntityScore is the best-result score below which the entity
	// validator abstains (default 0.5). Per R2.1.
	MinEntityScore float64 `json:"min_entity_score" yaml:"min_entity_score"`
}

// ToolsConfig holds settings for the calculator toolkit.
// Per prd004-tools R2.
type ToolsConfig struct {
	// PolicyDir overrides the built-in policy tables with YAML files from
	// a directory. Empty uses the embedded tables.
	PolicyDir string `json:"policy_dir,omitempty" yaml:"policy_dir,omitempty"`

	// AwardYear selects the default policy table version (e.g. "2026-27").
	AwardYear string `json:"award_year" yaml:"award_year"`
}

// ComposeConfig holds settings for the answer composer.
// Per prd005-composer R3.
type ComposeConfig struct {
	// SentencesPerCitation is the divisor for the reported coverage ratio
	// (default 3). The ratio is informational; the hard invariant is the
	// citation-marker and numeric-claim check.
	SentencesPerCitation int `json:"sentences_per_citation" yaml:"sentences_per_citation"`

	// CoverageTarget is the ratio named in insufficient-coverage abstain
	// reasons (default 0.9).
	CoverageTarget float64 `json:"coverage_target" yaml:"coverage_target"`
}

// SynthesisConfig holds settings for the synthesis engine.
// Per prd006-synthesis R2.
type SynthesisConfig struct {
	// MinRecords is the minimum record count a generator needs (default 2).
	MinRecords int `json:"min_records" yaml:"min_records"`

	// TopUpResults is how many domain-tagged records to request when the
	// generic pass came up short (default 4). Per R2.4.
	TopUpResults int `json:"top_up_results" yaml:"top_up_results"`
}

// EvalConfig holds settings for the evaluation harness.
// Per prd007-evaluation R1-R2.
type EvalConfig struct {
	// FixturesPath overrides the embedded query battery with a YAML file.
	FixturesPath string `json:"fixtures_path,omitempty" yaml:"fixtures_path,omitempty"`

	// Workers bounds concurrent query evaluation (default 4).
	Workers int `json:"workers" yaml:"workers"`

	// ReportPath is where the JSON report is written. Empty skips the file.
	ReportPath string `json:"report_path,omitempty" yaml:"report_path,omitempty"`
}

// GenerationConfig holds settings for the optional generation endpoint.
// The core composes structured text without it. Per prd008-generation R1.
type GenerationConfig struct {
	// Endpoint is the generation API base URL.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// Model is the model identifier sent with generation requests.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// APIKey authenticates generation requests.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout bounds a single generation call (default 45s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// PipelineConfig groups all component configurations.
type PipelineConfig struct {
	Store      StoreConfig      `json:"store" yaml:"store"`
	Retrieval  RetrievalConfig  `json:"retrieval" yaml:"retrieval"`
	Guards     GuardConfig      `json:"guards" yaml:"guards"`
	Tools      ToolsConfig      `json:"tools" yaml:"tools"`
	Compose    ComposeConfig    `json:"compose" yaml:"compose"`
	Synthesis  SynthesisConfig  `json:"synthesis" yaml:"synthesis"`
	Eval       EvalConfig       `json:"eval" yaml:"eval"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
}
