/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/

// Package shell runs privileged host commands and captures their exit
// status and output.
//
// The Executor interface decouples host-layer resources from the real host:
// production code uses Local (a /bin/sh -c wrapper with a timeout), tests
// substitute a fake that scripts exit codes and output per command.
package shell
