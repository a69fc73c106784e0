/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package engine

import (
	"time"

	"github.com/google/uuid"
)

// Outcome records what the driver did with a resource during a run.
type Outcome string

const (
	// OutcomeSkipped means the idempotency predicate held and no mutation
	// was performed.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeApplied means the resource was applied and its postcondition
	// confirmed.
	OutcomeApplied Outcome = "applied"
	// OutcomeFailed means the resource's check or apply failed; the run
	// halted here.
	OutcomeFailed Outcome = "failed"
	// OutcomeNotAttempted means the run halted before reaching this
	// resource.
	OutcomeNotAttempted Outcome = "not-attempted"
)

// ResourceResult is the per-resource record of a run.
type ResourceResult struct {
	ID       string        `json:"id" yaml:"id"`
	Kind     Kind          `json:"kind" yaml:"kind"`
	Outcome  Outcome       `json:"outcome" yaml:"outcome"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// Run is the record of one pipeline invocation. It is mutated as resources
// complete and finalized exactly once; callers receive it only after
// finalization.
type Run struct {
	ID         string            `json:"id" yaml:"id"`
	StartedAt  time.Time         `json:"startedAt" yaml:"startedAt"`
	FinishedAt time.Time         `json:"finishedAt" yaml:"finishedAt"`
	Succeeded  bool              `json:"succeeded" yaml:"succeeded"`
	Results    []ResourceResult  `json:"results" yaml:"results"`
	Outputs    map[string]string `json:"outputs,omitempty" yaml:"outputs,omitempty"`

	finalized bool
}

func newRun() *Run {
	return &Run{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Outputs:   make(map[string]string),
	}
}

func (r *Run) record(res ResourceResult) {
	if r.finalized {
		panic("engine: record on finalized run")
	}
	r.Results = append(r.Results, res)
}

func (r *Run) export(outputs map[string]string) {
	for k, v := range outputs {
		r.Outputs[k] = v
	}
}

func (r *Run) finalize(succeeded bool) {
	if r.finalized {
		panic("engine: run finalized twice")
	}
	r.Succeeded = succeeded
	r.FinishedAt = time.Now().UTC()
	r.finalized = true
}

// FirstFailure returns the result of the resource that halted the run,
// or nil if every resource converged.
func (r *Run) FirstFailure() *ResourceResult {
	for i := range r.Results {
		if r.Results[i].Outcome == OutcomeFailed {
			return &r.Results[i]
		}
	}
	return nil
}
