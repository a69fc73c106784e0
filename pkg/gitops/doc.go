/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/

// Package gitops bootstraps a GitOps controller into the cluster. The
// controller manifests come from a local directory or an OCI artifact and
// are applied with server-side apply, so a re-run converges instead of
// conflicting with what the controller manages afterwards.
package gitops
