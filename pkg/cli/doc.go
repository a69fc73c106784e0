/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/

// Package cli implements the labctl command line interface: converge, plan,
// and version. Commands load the lab configuration, assemble the resource
// set, and hand it to the engine.
package cli
