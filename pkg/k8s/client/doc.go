/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/

// Package client constructs authenticated cluster API handles from the
// credential produced by the host provisioner.
//
// The Factory is deliberately lazy: the credential file does not exist until
// mid-run, so cluster-object resources receive the factory and trigger
// construction only when they execute. The built clients are cached for the
// remainder of the run. Failures are connectivity errors, fatal but
// non-destructive; the operator's re-run is the retry mechanism.
package client
