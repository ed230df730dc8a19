// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tools routes queries to deterministic calculators backed by
// versioned policy tables. The calculators are pure functions: same
// scenario and table version, same answer, always.
// Implements: prd004-tools (R1-R4);
//
//	docs/ARCHITECTURE § Tools.
package tools

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/counsel-engine/pkg/types"
)

//go:embed policydata/*.yaml
var embeddedPolicies embed.FS

// Bracket is one progressive assessment band. A zero upper bound means
// unbounded.
type Bracket struct {
	Upper float64 `yaml:"upper"`
	Rate  float64 `yaml:"rate"`
}

// AidPolicy is one award year's aid-index methodology table. Per R2.1.
type AidPolicy struct {
	AwardYear            string          `yaml:"award_year"`
	SourceURL            string          `yaml:"source_url"`
	Notes                []string        `yaml:"notes"`
	IncomeProtection     map[int]float64 `yaml:"income_protection"`
	IncomeProtectionStep float64         `yaml:"income_protection_step"`
	Brackets             []Bracket       `yaml:"brackets"`
	ParentAssetRate      float64         `yaml:"parent_asset_rate"`
	StudentAssetRate     float64         `yaml:"student_asset_rate"`
}

// SchoolCost is one school's published cost components. Per R2.2.
type SchoolCost struct {
	Name              string                                `yaml:"name"`
	SourceURL         string                                `yaml:"source_url"`
	TuitionInState    float64                               `yaml:"tuition_in_state"`
	TuitionOutOfState float64                               `yaml:"tuition_out_of_state"`
	Fees              float64                               `yaml:"fees"`
	Housing           map[types.LivingArrangement]float64   `yaml:"housing"`
	Books             float64                               `yaml:"books"`
	Personal          float64                               `yaml:"personal"`
}

// CostPolicy is one award year's cost-of-attendance table.
type CostPolicy struct {
	AwardYear string                `yaml:"award_year"`
	Schools   map[string]SchoolCost `yaml:"schools"`
}

// PolicySet holds all loaded policy tables, keyed by award year. Loaded
// once at startup and read-only afterwards. Per R2.3.
type PolicySet struct {
	aid         map[string]AidPolicy
	cost        map[string]CostPolicy
	defaultYear string
}

// tableHeader identifies a policy file before the full parse.
type tableHeader struct {
	Table     string `yaml:"table"`
	AwardYear string `yaml:"award_year"`
}

// LoadPolicies reads policy tables from dir, or from the built-in embedded
// tables when dir is empty. defaultYear selects the table version used when
// a scenario leaves the award year blank; empty picks the latest loaded
// year. Per R2.
func LoadPolicies(dir, defaultYear string) (*PolicySet, error) {
	var (
		fsys fs.FS
		root string
	)
	if dir == "" {
		fsys, root = embeddedPolicies, "policydata"
	} else {
		fsys, root = os.DirFS(dir), "."
	}

	set := &PolicySet{
		aid:  make(map[string]AidPolicy),
		cost: make(map[string]CostPolicy),
	}
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("reading policy directory: %w", err)
	}
	var years []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		data, err := fs.ReadFile(fsys, filepath.Join(root, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading policy file %s: %w", entry.Name(), err)
		}
		var header tableHeader
		if err := yaml.Unmarshal(data, &header); err != nil {
			return nil, fmt.Errorf("parsing policy file %s: %w", entry.Name(), err)
		}
		switch header.Table {
		case "aid_index":
			var p AidPolicy
			if err := yaml.Unmarshal(data, &p); err != nil {
				return nil, fmt.Errorf("parsing aid table %s: %w", entry.Name(), err)
			}
			set.aid[p.AwardYear] = p
		case "cost_of_attendance":
			var p CostPolicy
			if err := yaml.Unmarshal(data, &p); err != nil {
				return nil, fmt.Errorf("parsing cost table %s: %w", entry.Name(), err)
			}
			set.cost[p.AwardYear] = p
		default:
			return nil, fmt.Errorf("policy file %s: unknown table %q", entry.Name(), header.Table)
		}
		years = append(years, header.AwardYear)
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("no policy tables found")
	}

	if defaultYear == "" {
		sort.Strings(years)
		defaultYear = years[len(years)-1]
	}
	set.defaultYear = defaultYear
	return set, nil
}

// DefaultYear is the award year used when a scenario does not name one.
func (s *PolicySet) DefaultYear() string { return s.defaultYear }

// Aid returns the aid table for the award year, falling back to the default.
func (s *PolicySet) Aid(year string) (AidPolicy, error) {
	if year == "" {
		year = s.defaultYear
	}
	p, ok := s.aid[year]
	if !ok {
		return AidPolicy{}, fmt.Errorf("no aid policy table for award year %q", year)
	}
	return p, nil
}

// Cost returns the cost table for the award year, falling back to the default.
func (s *PolicySet) Cost(year string) (CostPolicy, error) {
	if year == "" {
		year = s.defaultYear
	}
	p, ok := s.cost[year]
	if !ok {
		return CostPolicy{}, fmt.Errorf("no cost policy table for award year %q", year)
	}
	return p, nil
}
