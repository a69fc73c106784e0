/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/sunnydmess/labctl/pkg/errors"
)

// defaultResourceTimeout bounds a single resource's check-and-apply cycle.
// The k3s install script downloads a release tarball, so the default is
// generous.
const defaultResourceTimeout = 10 * time.Minute

// Engine orders resources by their declared dependencies and converges
// them one at a time, strictly sequentially.
type Engine struct {
	timeout  time.Duration
	lockPath string
	planPar  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithResourceTimeout sets the upper bound for a single resource's
// check-and-apply cycle.
func WithResourceTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLockPath enables the run-level lock file, preventing two provisioning
// runs from racing on host package state.
func WithLockPath(path string) Option {
	return func(e *Engine) { e.lockPath = path }
}

// New creates an Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		timeout: defaultResourceTimeout,
		planPar: 4,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Converge drives the resource set to its desired state. Resources execute
// in topological order; the first failure halts the run and everything
// already applied stays applied. The returned Run is finalized and reports
// per-resource outcomes even when an error is returned. A nil Run with an
// error indicates the resource set was rejected before anything executed.
func (e *Engine) Converge(ctx context.Context, resources []Resource) (*Run, error) {
	ordered, err := order(resources)
	if err != nil {
		return nil, err
	}

	if e.lockPath != "" {
		release, err := acquireLock(e.lockPath)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	run := newRun()
	slog.Info("provisioning run started", "run_id", run.ID, "resources", len(ordered))

	start := time.Now()
	var failure error
	for i, r := range ordered {
		if failure != nil || ctx.Err() != nil {
			run.record(ResourceResult{ID: r.ID(), Kind: r.Kind(), Outcome: OutcomeNotAttempted})
			continue
		}

		result, err := e.converge(ctx, r)
		run.record(result)
		resourcesConverged.WithLabelValues(string(r.Kind()), string(result.Outcome)).Inc()

		if result.Outcome == OutcomeFailed {
			failure = apperrors.Wrap(apperrors.CodeOf(err),
				fmt.Sprintf("resource %s failed", r.ID()), err)
			slog.Error("resource failed, halting run",
				"run_id", run.ID,
				"resource", r.ID(),
				"error", result.Error,
				"remaining", len(ordered)-i-1,
			)
			continue
		}

		if exp, ok := r.(Exporter); ok {
			run.export(exp.Outputs())
		}
	}

	if failure == nil && ctx.Err() != nil {
		failure = apperrors.Wrap(apperrors.ErrCodeTimeout, "run aborted", ctx.Err())
	}

	run.finalize(failure == nil)
	runDuration.Observe(time.Since(start).Seconds())
	slog.Info("provisioning run finished",
		"run_id", run.ID,
		"succeeded", run.Succeeded,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return run, failure
}

// converge executes one resource: evaluate the predicate, apply if needed,
// and confirm the postcondition. The returned error, if any, carries the
// taxonomy code that halts the run.
func (e *Engine) converge(ctx context.Context, r Resource) (ResourceResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	result := ResourceResult{ID: r.ID(), Kind: r.Kind()}

	status, err := r.Check(ctx)
	if err != nil {
		return failed(result, checkError(err), start)
	}
	if status == StatusSatisfied {
		slog.Info("resource already satisfied", "resource", r.ID())
		result.Outcome = OutcomeSkipped
		result.Duration = time.Since(start)
		return result, nil
	}

	slog.Info("applying resource", "resource", r.ID(), "kind", r.Kind())
	if err := r.Apply(ctx); err != nil {
		return failed(result, err, start)
	}

	// Postcondition: the predicate must hold after a successful apply.
	status, err = r.Check(ctx)
	if err != nil {
		return failed(result, checkError(err), start)
	}
	if status != StatusSatisfied {
		return failed(result, apperrors.Newf(apperrors.ErrCodeDetection,
			"resource %s still diverges after apply", r.ID()), start)
	}

	result.Outcome = OutcomeApplied
	result.Duration = time.Since(start)
	return result, nil
}

// PlanResult is the outcome of a dry-run predicate evaluation.
type PlanResult struct {
	ID     string `json:"id" yaml:"id"`
	Kind   Kind   `json:"kind" yaml:"kind"`
	Status Status `json:"status" yaml:"status"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Plan evaluates every resource's idempotency predicate without mutating
// anything. Predicates are independent, so they run concurrently; results
// are reported in execution order.
func (e *Engine) Plan(ctx context.Context, resources []Resource) ([]PlanResult, error) {
	ordered, err := order(resources)
	if err != nil {
		return nil, err
	}

	results := make([]PlanResult, len(ordered))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.planPar)
	for i, r := range ordered {
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(ctx, e.timeout)
			defer cancel()

			res := PlanResult{ID: r.ID(), Kind: r.Kind()}
			status, err := r.Check(ctx)
			if err != nil {
				res.Error = err.Error()
				status = StatusUnknown
			}
			res.Status = status
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// checkError classifies predicate evaluation failures as detection errors
// unless the resource already assigned a more specific code (e.g. conflict).
func checkError(err error) error {
	if apperrors.CodeOf(err) != apperrors.ErrCodeInternal {
		return err
	}
	return apperrors.Wrap(apperrors.ErrCodeDetection,
		"idempotency predicate could not be evaluated", err)
}

func failed(result ResourceResult, err error, start time.Time) (ResourceResult, error) {
	result.Outcome = OutcomeFailed
	result.Error = err.Error()
	result.Duration = time.Since(start)
	return result, err
}
