/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package engine

import "context"

// Kind identifies the execution medium of a resource.
type Kind string

const (
	// KindHostOperation is a privileged shell procedure on the host.
	KindHostOperation Kind = "host-operation"
	// KindClusterObject is a declarative object reconciled against the
	// cluster API server.
	KindClusterObject Kind = "cluster-object"
)

// Status is the result of evaluating a resource's idempotency predicate.
type Status string

const (
	// StatusSatisfied means observed state already matches desired state;
	// applying would be a no-op.
	StatusSatisfied Status = "satisfied"
	// StatusNeedsApply means observed state diverges and the resource
	// must be applied.
	StatusNeedsApply Status = "needs-apply"
	// StatusUnknown means the predicate could not be evaluated, e.g. a
	// cluster check on a host that has no cluster yet.
	StatusUnknown Status = "unknown"
)

// Resource is a named unit of desired state in the provisioning graph.
// The driver is agnostic to the execution medium: host operations and
// cluster objects implement the same contract.
type Resource interface {
	// ID returns the unique identifier of this resource.
	ID() string
	// Kind reports the execution medium.
	Kind() Kind
	// DependsOn returns the IDs of resources that must be satisfied
	// before this one may be applied.
	DependsOn() []string
	// Check evaluates the idempotency predicate without mutating anything.
	Check(ctx context.Context) (Status, error)
	// Apply drives observed state to desired state. It must be safe to
	// invoke repeatedly.
	Apply(ctx context.Context) error
}

// Exporter is an optional interface for resources that contribute to the
// run's exported outputs (credential paths, installed versions, object names).
type Exporter interface {
	Outputs() map[string]string
}
