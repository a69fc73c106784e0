/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/sunnydmess/labctl/pkg/engine"
	"github.com/sunnydmess/labctl/pkg/serializer"
)

func defaultLockPath() string {
	return filepath.Join(os.TempDir(), "labctl.lock")
}

func convergeCmd() *cli.Command {
	return &cli.Command{
		Name:                  "converge",
		EnableShellCompletion: true,
		Usage:                 "Converge the host to the configured cluster state",
		Description: `Converge executes the provisioning pipeline against the local host:

  1. Install or upgrade the k3s runtime and wait for the node to be ready
  2. Copy the cluster credential to the configured kubeconfig path
  3. Configure the NVIDIA container toolkit when GPU support is enabled
  4. Create the declared namespaces and persistent volumes
  5. Bootstrap the GitOps controller from its manifest source

Resources run in dependency order. A resource already in its desired state
is skipped, so re-running converge after a failure resumes where it left
off. The run report is written in JSON, YAML, or table format.`,
		Flags: []cli.Flag{
			configFlag,
			outputFlag,
			formatFlag,
			runtimeVersionFlag,
			gpuFlag,
			kubeconfigFlag,
			&cli.DurationFlag{
				Name:  "resource-timeout",
				Usage: "Upper bound for a single resource's check-and-apply cycle",
				Value: 10 * time.Minute,
			},
			&cli.StringFlag{
				Name:  "lock-file",
				Usage: "Run lock path, preventing concurrent converges on this host",
				Value: defaultLockPath(),
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "Serve Prometheus metrics on this address for the duration of the run (e.g. :9090)",
				Sources: cli.EnvVars("LABCTL_METRICS_ADDR"),
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

			if addr := cmd.String("metrics-addr"); addr != "" {
				ms := startMetricsServer(addr)
				defer ms.stop()
			}

			eng := engine.New(
				engine.WithResourceTimeout(cmd.Duration("resource-timeout")),
				engine.WithLockPath(cmd.String("lock-file")),
			)

			run, convergeErr := eng.Converge(ctx, resources)
			if run != nil {
				writer := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
				defer func() { _ = writer.Close() }()
				if err := writer.Serialize(ctx, run); err != nil {
					return err
				}
			}
			return convergeErr
		},
	}
}
