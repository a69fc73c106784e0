/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package host

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sunnydmess/labctl/pkg/engine"
	apperrors "github.com/sunnydmess/labctl/pkg/errors"
	"github.com/sunnydmess/labctl/pkg/shell"
)

const (
	// GPUResourceID identifies the GPU toolkit resource in the graph.
	GPUResourceID = "gpu-toolkit"

	toolkitVersionCommand = "nvidia-ctk --version"
	toolkitInstallCommand = "apt-get update -qq && apt-get install -y -qq nvidia-container-toolkit"

	// k3s ships its own containerd; the toolkit must be wired into that
	// config, not the system containerd's.
	containerdConfig       = "/var/lib/rancher/k3s/agent/etc/containerd/config.toml"
	runtimeConfiguredCheck = "grep -q nvidia " + containerdConfig
	configureRuntimeCmd    = "nvidia-ctk runtime configure --runtime=containerd --config=" + containerdConfig
)

// GPUToolkit installs the NVIDIA container toolkit and wires the nvidia
// runtime into the k3s-managed containerd, enabling GPU scheduling.
//
// The predicate holds when the toolkit binary is present and the containerd
// config already references the nvidia runtime.
type GPUToolkit struct {
	Exec  shell.Executor
	Units UnitManager
}

// NewGPUToolkit creates the GPU toolkit resource.
func NewGPUToolkit(exec shell.Executor, units UnitManager) *GPUToolkit {
	return &GPUToolkit{Exec: exec, Units: units}
}

func (g *GPUToolkit) ID() string          { return GPUResourceID }
func (g *GPUToolkit) Kind() engine.Kind   { return engine.KindHostOperation }
func (g *GPUToolkit) DependsOn() []string { return []string{RuntimeResourceID} }

// Check implements engine.Resource.
func (g *GPUToolkit) Check(ctx context.Context) (engine.Status, error) {
	res, err := g.Exec.Execute(ctx, toolkitVersionCommand)
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return engine.StatusNeedsApply, nil
	}

	res, err = g.Exec.Execute(ctx, runtimeConfiguredCheck)
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return engine.StatusNeedsApply, nil
	}
	return engine.StatusSatisfied, nil
}

// Apply implements engine.Resource: install the toolkit package, configure
// the containerd runtime, and restart k3s so the runtime is picked up.
func (g *GPUToolkit) Apply(ctx context.Context) error {
	slog.Info("installing NVIDIA container toolkit")

	for _, cmd := range []string{toolkitInstallCommand, configureRuntimeCmd} {
		res, err := g.Exec.Execute(ctx, cmd)
		if err != nil {
			return err
		}
		if !res.Success() {
			return apperrors.NewWithContext(apperrors.ErrCodeInstallation,
				fmt.Sprintf("gpu toolkit step exited %d", res.ExitCode),
				map[string]any{
					"command": cmd,
					"stderr":  strings.TrimSpace(res.Stderr),
				})
		}
	}

	return g.Units.Restart(ctx, runtimeUnit)
}
