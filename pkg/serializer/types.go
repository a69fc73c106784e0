/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/

// Package serializer renders run reports and plans to JSON, YAML, or a
// flattened table. Table output is for humans at a terminal; the structured
// formats are for scripting against converge results.
package serializer

import "context"

// Serializer renders a report value to an output destination.
type Serializer interface {
	Serialize(ctx context.Context, report any) error
}

// Closer is implemented by serializers holding file handles.
type Closer interface {
	Close() error
}
