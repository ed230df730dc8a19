// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// RecordKind categorizes a stored document record.
// Per prd001-store R2.1.
type RecordKind string

const (
	RecordInstitution RecordKind = "institution"
	RecordProgram     RecordKind = "program"
	RecordPolicy      RecordKind = "policy"
	RecordBSMDProgram RecordKind = "bsmd_program"
	RecordAidPolicy   RecordKind = "aid_policy"
)

// knownRecordKinds is the closed set accepted at the store boundary.
var knownRecordKinds = map[RecordKind]bool{
	RecordInstitution: true,
	RecordProgram:     true,
	RecordPolicy:      true,
	RecordBSMDProgram: true,
	RecordAidPolicy:   true,
}

// RecordMeta is the typed metadata attached to a stored record. Free-form
// metadata maps from the store are validated into this shape at the query
// boundary so downstream generators read only declared fields.
// Per prd001-store R2.
type RecordMeta struct {
	// Kind categorizes the record.
	Kind RecordKind `json:"kind" yaml:"kind"`

	// Institution is the school name the record describes, when applicable.
	Institution string `json:"institution,omitempty" yaml:"institution,omitempty"`

	// Program is the academic program name, for program and bsmd_program records.
	Program string `json:"program,omitempty" yaml:"program,omitempty"`

	// State is the two-letter state code, for residency and reciprocity records.
	State string `json:"state,omitempty" yaml:"state,omitempty"`

	// Domain tags the record for synthesis routing. Per prd006-synthesis R2.4.
	Domain Domain `json:"domain,omitempty" yaml:"domain,omitempty"`

	// SourceURL is the canonical URL of the source page. Required.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// LastVerified is when the source content was last checked.
	LastVerified time.Time `json:"last_verified" yaml:"last_verified"`

	// AwardYear keys aid_policy records to an award year (e.g. "2026-27").
	AwardYear string `json:"award_year,omitempty" yaml:"award_year,omitempty"`

	// Title is a short human-readable record title.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// Validate rejects metadata with an unknown kind or a missing source URL.
// Per prd001-store R2.2.
func (m RecordMeta) Validate() error {
	if !knownRecordKinds[m.Kind] {
		return fmt.Errorf("unknown record kind %q", m.Kind)
	}
	if m.SourceURL == "" {
		return fmt.Errorf("record %q missing source_url", m.Title)
	}
	return nil
}

// RetrievalResult is one scored record returned by the Retriever.
// Per prd002-retrieval R1.
type RetrievalResult struct {
	// Text is the record content.
	Text string `json:"text" yaml:"text"`

	// Meta is the validated record metadata.
	Meta RecordMeta `json:"meta" yaml:"meta"`

	// Collection names the store collection the record came from.
	Collection string `json:"collection" yaml:"collection"`

	// Score is the similarity 1/(1+distance) multiplied by the authority
	// score of each attached citation. Per R2.1-R2.2.
	Score float64 `json:"score" yaml:"score"`

	// Citations attached to this record, built from Meta at retrieval time.
	Citations []Citation `json:"citations" yaml:"citations"`
}
