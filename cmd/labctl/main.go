/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package main

import "github.com/sunnydmess/labctl/pkg/cli"

func main() {
	cli.Execute()
}
