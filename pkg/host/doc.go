/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/

// Package host implements the host-operation resources of the provisioning
// graph: the k3s cluster runtime, the NVIDIA container toolkit, and the
// cluster credential.
//
// Every resource evaluates an idempotency predicate against observed host
// state before mutating anything, so repeated runs skip satisfied steps.
// Host state is reached only through two injected seams: shell.Executor for
// commands and UnitManager for systemd, keeping the package fully testable
// without a real host.
package host
