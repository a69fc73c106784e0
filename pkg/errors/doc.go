/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/

// Package errors defines the structured error taxonomy used across the
// provisioning pipeline.
//
// Every failure surfaced by a resource carries an ErrorCode that tells the
// operator how to react: CONFIGURATION, INSTALLATION, and CONFLICT errors
// require a fix before re-invocation, while CONNECTIVITY and TIMEOUT errors
// are safe to retry by simply re-running converge. Use CodeOf and IsRetryable
// to classify errors received from lower layers.
package errors
