/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/

// Package apply reconciles cluster API objects declared in the lab
// configuration. Each resource follows the same shape: Check reads the live
// object and compares it to the declaration, Apply creates or updates it.
// Nothing in this package ever deletes an object.
package apply
