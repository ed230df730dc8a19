// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Abstain reasons used verbatim by the guardrail pipeline.
// Per prd003-guardrails R1.3, R2.2, R4.3.
const (
	AbstainFuture    = "cannot predict future outcomes"
	AbstainPersonal  = "personal decision requires individual context"
	AbstainCancelled = "request cancelled"
)

// RetrievalError reports a transport-level failure talking to the document
// store. It is the only error in the pipeline taxonomy the caller should
// treat as fatal or retryable; "no results" is an empty slice, never an
// error. Per prd002-retrieval R5.1.
type RetrievalError struct {
	// Collection is the store collection being queried when the transport
	// failed.
	Collection string

	// Err is the underlying transport error.
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed for collection %q: %v", e.Collection, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// ToolExecutionError reports that a calculator could not run because its
// required context entry was absent. The pipeline recovers locally by
// skipping the tool; it is never fatal. Per prd004-tools R1.4.
type ToolExecutionError struct {
	Tool       ToolName
	ContextKey string
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s skipped: context key %q not supplied", e.Tool, e.ContextKey)
}

// SynthesisFailure reports that domain classification succeeded but the
// generator could not produce output (too few records, or the generator
// itself failed). The caller recovers by abstaining or falling back to
// plain composition. Per prd006-synthesis R5.
type SynthesisFailure struct {
	Domain Domain
	Reason string
	Err    error
}

func (e *SynthesisFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("synthesis failed for domain %q: %s: %v", e.Domain, e.Reason, e.Err)
	}
	return fmt.Sprintf("synthesis failed for domain %q: %s", e.Domain, e.Reason)
}

func (e *SynthesisFailure) Unwrap() error { return e.Err }
