/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/

// Package engine is the orchestration driver at the core of the provisioning
// pipeline.
//
// It accepts a set of Resources with declared dependencies, validates the
// graph (duplicates, unknown references, cycles are configuration errors,
// rejected before anything executes), computes a deterministic topological
// order, and converges resources one at a time: evaluate the idempotency
// predicate, apply only on divergence, confirm the postcondition.
//
// The first failure halts the run. Nothing is rolled back; because every
// resource is idempotent, the operator's re-run resumes where the failed run
// stopped, skipping everything already satisfied. A lock file guards against
// two runs racing on host package state.
//
// The driver is agnostic to the execution medium: host shell procedures and
// cluster API objects implement the same Resource contract.
package engine
