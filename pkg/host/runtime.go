/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package host

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sunnydmess/labctl/pkg/engine"
	apperrors "github.com/sunnydmess/labctl/pkg/errors"
	"github.com/sunnydmess/labctl/pkg/shell"
	"github.com/sunnydmess/labctl/pkg/version"
)

const (
	// RuntimeResourceID identifies the cluster runtime resource in the graph.
	RuntimeResourceID = "k3s-runtime"

	runtimeUnit      = "k3s.service"
	versionCommand   = "k3s --version"
	installScriptURL = "https://get.k3s.io"
	nodeReadyCommand = "k3s kubectl wait --for=condition=ready node --all --timeout=120s"
)

// versionPattern matches the first line of `k3s --version`,
// e.g. "k3s version v1.28.5+k3s1 (5b2d1271)".
var versionPattern = regexp.MustCompile(`k3s version (\S+)`)

// runtimeState is the observed condition of the cluster runtime, used to
// route between the install and upgrade procedures.
type runtimeState int

const (
	runtimeConverged runtimeState = iota
	runtimeNotInstalled
	runtimeWrongVersion
	runtimeInactive
)

// Runtime installs or upgrades the k3s cluster runtime at a pinned version.
//
// The idempotency predicate holds when the installed version equals the
// target and the k3s unit is active. A version mismatch routes to the
// upgrade procedure rather than a fresh install; both converge through the
// upstream install script, which handles either case, but upgrades also
// restart the unit so the new binary takes over.
type Runtime struct {
	TargetVersion string
	Options       []string
	Exec          shell.Executor
	Units         UnitManager

	observedVersion string
}

// NewRuntime creates the cluster runtime resource.
func NewRuntime(version string, options []string, exec shell.Executor, units UnitManager) *Runtime {
	return &Runtime{
		TargetVersion: version,
		Options:       options,
		Exec:          exec,
		Units:         units,
	}
}

func (r *Runtime) ID() string          { return RuntimeResourceID }
func (r *Runtime) Kind() engine.Kind   { return engine.KindHostOperation }
func (r *Runtime) DependsOn() []string { return nil }

// Check implements engine.Resource.
func (r *Runtime) Check(ctx context.Context) (engine.Status, error) {
	state, err := r.inspect(ctx)
	if err != nil {
		return "", err
	}
	if state == runtimeConverged {
		return engine.StatusSatisfied, nil
	}
	return engine.StatusNeedsApply, nil
}

// Apply implements engine.Resource, routing to install or upgrade based on
// the observed state.
func (r *Runtime) Apply(ctx context.Context) error {
	state, err := r.inspect(ctx)
	if err != nil {
		return err
	}

	switch state {
	case runtimeConverged:
		return nil
	case runtimeNotInstalled:
		slog.Info("installing cluster runtime", "version", r.TargetVersion)
		if err := r.runInstallScript(ctx); err != nil {
			return err
		}
	case runtimeWrongVersion:
		slog.Info("upgrading cluster runtime",
			"from", r.observedVersion, "to", r.TargetVersion)
		if err := r.runInstallScript(ctx); err != nil {
			return err
		}
		if err := r.Units.Restart(ctx, runtimeUnit); err != nil {
			return err
		}
	case runtimeInactive:
		slog.Info("restarting inactive cluster runtime", "unit", runtimeUnit)
		if err := r.Units.Restart(ctx, runtimeUnit); err != nil {
			return err
		}
	}

	return r.waitForNode(ctx)
}

// Outputs implements engine.Exporter.
func (r *Runtime) Outputs() map[string]string {
	version := r.observedVersion
	if version == "" {
		version = r.TargetVersion
	}
	return map[string]string{"runtime_version": version}
}

// inspect evaluates the host: installed at all, at which version, unit state.
func (r *Runtime) inspect(ctx context.Context) (runtimeState, error) {
	res, err := r.Exec.Execute(ctx, versionCommand)
	if err != nil {
		return 0, err
	}
	if !res.Success() {
		r.observedVersion = ""
		return runtimeNotInstalled, nil
	}

	m := versionPattern.FindStringSubmatch(res.Stdout)
	if m == nil {
		return 0, apperrors.Newf(apperrors.ErrCodeDetection,
			"could not parse runtime version from %q", strings.TrimSpace(res.Stdout))
	}
	r.observedVersion = m[1]

	if !version.Equivalent(r.observedVersion, r.TargetVersion) {
		return runtimeWrongVersion, nil
	}

	state, err := r.Units.ActiveState(ctx, runtimeUnit)
	if err != nil {
		return 0, err
	}
	if state != "active" {
		return runtimeInactive, nil
	}
	return runtimeConverged, nil
}

// runInstallScript executes the upstream installer pinned to TargetVersion.
// The script is idempotent on the k3s side; a non-zero exit is fatal for the
// run because a partial package install is unsafe to retry blindly.
func (r *Runtime) runInstallScript(ctx context.Context) error {
	cmd := fmt.Sprintf("curl -sfL %s | INSTALL_K3S_VERSION=%s sh -s - %s",
		installScriptURL, r.TargetVersion, strings.Join(r.Options, " "))

	res, err := r.Exec.Execute(ctx, cmd)
	if err != nil {
		return err
	}
	if !res.Success() {
		return apperrors.NewWithContext(apperrors.ErrCodeInstallation,
			fmt.Sprintf("runtime install script exited %d", res.ExitCode),
			map[string]any{"stderr": strings.TrimSpace(res.Stderr)})
	}
	return nil
}

// waitForNode blocks until the single node reports Ready, so cluster-object
// resources downstream find a functioning API server.
func (r *Runtime) waitForNode(ctx context.Context) error {
	res, err := r.Exec.Execute(ctx, nodeReadyCommand)
	if err != nil {
		return err
	}
	if !res.Success() {
		return apperrors.NewWithContext(apperrors.ErrCodeInstallation,
			"node did not become ready after runtime install",
			map[string]any{"stderr": strings.TrimSpace(res.Stderr)})
	}
	return nil
}
