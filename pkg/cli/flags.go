/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/sunnydmess/labctl/pkg/serializer"
)

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "Path to the lab configuration file",
	Sources: cli.EnvVars("LABCTL_CONFIG"),
	Value:   "lab.yaml",
}

var outputFlag = &cli.StringFlag{
	Name:    "output",
	Aliases: []string{"o"},
	Usage:   "Write the report to a file instead of stdout",
}

var formatFlag = &cli.StringFlag{
	Name:  "format",
	Usage: fmt.Sprintf("Report format (supported values: %s)", serializer.SupportedFormats()),
	Value: string(serializer.FormatTable),
}

var runtimeVersionFlag = &cli.StringFlag{
	Name:  "runtime-version",
	Usage: "Override the configured k3s release (e.g. v1.28.5+k3s1)",
}

var gpuFlag = &cli.BoolFlag{
	Name:  "gpu",
	Usage: "Override the configured GPU toolkit setting",
}

var kubeconfigFlag = &cli.StringFlag{
	Name:    "kubeconfig",
	Usage:   "Override the configured cluster credential destination",
	Sources: cli.EnvVars("KUBECONFIG"),
}
