/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/sunnydmess/labctl/pkg/engine"
	"github.com/sunnydmess/labctl/pkg/serializer"
)

func planCmd() *cli.Command {
	return &cli.Command{
		Name:                  "plan",
		EnableShellCompletion: true,
		Usage:                 "Show what converge would change without mutating anything",
		Description: `Plan evaluates every resource's idempotency predicate and reports which
resources are already satisfied and which would be applied. Nothing on the
host or in the cluster is changed.

Cluster predicates need a reachable cluster; on a fresh host they report
errors instead, which plan surfaces per resource rather than aborting.`,
		Flags: []cli.Flag{
			configFlag,
			outputFlag,
			formatFlag,
			runtimeVersionFlag,
			gpuFlag,
			kubeconfigFlag,
			&cli.DurationFlag{
				Name:  "resource-timeout",
				Usage: "Upper bound for a single resource's predicate evaluation",
				Value: 2 * time.Minute,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat := serializer.Format(cmd.String("format"))
			if outFormat.IsUnknown() {
				return fmt.Errorf("unknown output format: %q", outFormat)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			resources, err := buildResources(cfg)
			if err != nil {
				return err
			}

			eng := engine.New(engine.WithResourceTimeout(cmd.Duration("resource-timeout")))
			results, err := eng.Plan(ctx, resources)
			if err != nil {
				return err
			}

			writer := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer func() { _ = writer.Close() }()
			return writer.Serialize(ctx, results)
		},
	}
}
