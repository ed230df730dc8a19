// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package guard validates queries and retrieval output before an answer is
// composed. Each validator returns pass/fail plus a verbatim abstain reason;
// the pipeline short-circuits on the first failure.
// Implements: prd003-guardrails (R1-R4);
//
//	docs/ARCHITECTURE § Guardrails.
package guard

import (
	"time"

	"github.com/pdiddy/counsel-engine/pkg/types"
)

// Result is one validator's verdict. A failed result carries the abstain
// reason the pipeline surfaces verbatim. Per R1.3.
type Result struct {
	OK     bool
	Reason string
}

func pass() Result              { return Result{OK: true} }
func fail(reason string) Result { return Result{Reason: reason} }

// Pipeline runs the validators with shared configuration.
type Pipeline struct {
	cfg types.GuardConfig
}

// NewPipeline builds a guard pipeline. A zero CurrentYear anchors the
// temporal validator to the wall clock.
func NewPipeline(cfg types.GuardConfig) *Pipeline {
	if cfg.CurrentYear == 0 {
		cfg.CurrentYear = time.Now().Year()
	}
	if cfg.MinEntityScore <= 0 {
		cfg.MinEntityScore = defaultMinEntityScore
	}
	return &Pipeline{cfg: cfg}
}
