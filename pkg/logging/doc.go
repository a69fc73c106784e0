/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/

// Package logging provides structured logging utilities shared by all labctl
// components.
//
// It wraps the standard library slog package with labctl defaults: JSON
// records to stderr, environment-based level configuration (LOG_LEVEL),
// module/version context on every record, and source location tracking for
// debug logs.
//
// Typical use:
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("labctl", version)
//	    slog.Info("starting", "config", path)
//	}
//
// The --log-level flag takes precedence over LOG_LEVEL; both default to INFO.
package logging
