/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package host

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sunnydmess/labctl/pkg/engine"
	apperrors "github.com/sunnydmess/labctl/pkg/errors"
	"github.com/sunnydmess/labctl/pkg/shell"
)

const (
	// CredentialResourceID identifies the cluster credential resource.
	CredentialResourceID = "cluster-credential"

	// DefaultCredentialSource is where k3s writes the admin kubeconfig.
	DefaultCredentialSource = "/etc/rancher/k3s/k3s.yaml"

	credentialMode fs.FileMode = 0o600
)

// Kubeconfig copies the runtime-generated admin kubeconfig to the operator's
// configured path with owner-only permissions. It is the sole producer of the
// ClusterCredential consumed by the cluster client factory.
//
// The predicate holds when the destination exists with mode 0600 and its
// content matches the source. Changing the source (re-provisioning) therefore
// invalidates the credential and triggers a fresh copy.
type Kubeconfig struct {
	Source string
	Path   string
	Exec   shell.Executor
}

// NewKubeconfig creates the credential resource writing to path.
func NewKubeconfig(path string, exec shell.Executor) *Kubeconfig {
	return &Kubeconfig{
		Source: DefaultCredentialSource,
		Path:   path,
		Exec:   exec,
	}
}

func (k *Kubeconfig) ID() string          { return CredentialResourceID }
func (k *Kubeconfig) Kind() engine.Kind   { return engine.KindHostOperation }
func (k *Kubeconfig) DependsOn() []string { return []string{RuntimeResourceID} }

// Check implements engine.Resource.
func (k *Kubeconfig) Check(ctx context.Context) (engine.Status, error) {
	info, err := os.Stat(k.Path)
	if os.IsNotExist(err) {
		return engine.StatusNeedsApply, nil
	}
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeDetection,
			fmt.Sprintf("failed to stat credential at %s", k.Path), err)
	}
	if info.Mode().Perm() != credentialMode {
		return engine.StatusNeedsApply, nil
	}

	// The source is root-owned, so the comparison goes through the shell.
	res, err := k.Exec.Execute(ctx, fmt.Sprintf("sudo cmp -s %s %s", k.Source, k.Path))
	if err != nil {
		return "", err
	}
	switch res.ExitCode {
	case 0:
		return engine.StatusSatisfied, nil
	case 1:
		return engine.StatusNeedsApply, nil
	default:
		return "", apperrors.NewWithContext(apperrors.ErrCodeDetection,
			"could not compare credential with source",
			map[string]any{"stderr": strings.TrimSpace(res.Stderr)})
	}
}

// Apply implements engine.Resource.
func (k *Kubeconfig) Apply(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(k.Path), 0o755); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInstallation,
			"failed to create credential directory", err)
	}

	slog.Info("writing cluster credential", "path", k.Path)
	cmd := fmt.Sprintf("sudo install -m 0600 -o $(id -un) -g $(id -gn) %s %s", k.Source, k.Path)
	res, err := k.Exec.Execute(ctx, cmd)
	if err != nil {
		return err
	}
	if !res.Success() {
		return apperrors.NewWithContext(apperrors.ErrCodeInstallation,
			fmt.Sprintf("credential copy exited %d", res.ExitCode),
			map[string]any{"stderr": strings.TrimSpace(res.Stderr)})
	}
	return nil
}

// Outputs implements engine.Exporter.
func (k *Kubeconfig) Outputs() map[string]string {
	return map[string]string{"kubeconfig_path": k.Path}
}
