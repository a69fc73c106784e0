/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"github.com/urfave/cli/v3"

	"github.com/sunnydmess/labctl/pkg/config"
	"github.com/sunnydmess/labctl/pkg/engine"
	"github.com/sunnydmess/labctl/pkg/gitops"
	"github.com/sunnydmess/labctl/pkg/host"
	"github.com/sunnydmess/labctl/pkg/k8s/apply"
	"github.com/sunnydmess/labctl/pkg/k8s/client"
	"github.com/sunnydmess/labctl/pkg/shell"
)

// loadConfig reads the configuration file and layers flag overrides on top
// before validating the result.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Read(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if v := cmd.String("runtime-version"); v != "" {
		cfg.Runtime.Version = v
	}
	if cmd.IsSet("gpu") {
		cfg.GPU.Enabled = cmd.Bool("gpu")
	}
	if p := cmd.String("kubeconfig"); p != "" {
		cfg.Kubeconfig.Path = p
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildResources assembles the full resource set for a configuration. The
// cluster client factory is shared and lazy, so cluster resources can be
// declared before the credential file exists.
func buildResources(cfg *config.Config) ([]engine.Resource, error) {
	exec := shell.NewLocal(0)
	units := &host.SystemdManager{}
	clients := client.NewFactory(cfg.Kubeconfig.Path)

	resources := []engine.Resource{
		host.NewRuntime(cfg.Runtime.Version, cfg.Runtime.Options, exec, units),
		host.NewKubeconfig(cfg.Kubeconfig.Path, exec),
	}

	if cfg.GPU.Enabled {
		resources = append(resources, host.NewGPUToolkit(exec, units))
	}

	for _, ns := range cfg.Namespaces {
		resources = append(resources, apply.NewNamespace(ns.Name, ns.Labels, clients))
	}

	for _, v := range cfg.Volumes {
		resources = append(resources,
			apply.NewVolume(v.Name, v.Capacity, v.AccessModes, v.HostPath, v.StorageClass, clients))
	}

	if cfg.GitOps.Source != "" {
		src, err := gitops.ParseSource(cfg.GitOps.Source)
		if err != nil {
			return nil, err
		}
		resources = append(resources, gitops.NewBootstrapper(src, cfg.GitOps.Namespace, clients))
	}

	return resources, nil
}
