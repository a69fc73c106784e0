/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/sunnydmess/labctl/pkg/logging"
)

const (
	name           = "labctl"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

func rootCmd() *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "Single-node lab cluster provisioner",
		Version: version,
		Description: `labctl converges a single host into a working lab cluster: it installs
the k3s runtime, copies out the cluster credential, optionally enables GPU
scheduling, seeds namespaces and persistent volumes, and bootstraps a GitOps
controller to take over from there.

Runs are idempotent: resources already in their desired state are skipped,
and a failed run can be re-executed after fixing the cause.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
				Value:   "info",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			convergeCmd(),
			planCmd(),
			versionCmd(),
		},
	}
}

// Execute runs the CLI. It is called by main and handles SIGINT/SIGTERM by
// cancelling the command context, which stops the run after the resource in
// flight.
func Execute() {
	// Structured output for anything logged before flag parsing; the root
	// Before hook re-installs the logger once --log-level is known.
	logging.SetDefaultStructuredLogger(name, version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
