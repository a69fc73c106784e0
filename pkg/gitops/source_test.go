/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package gitops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sunnydmess/labctl/pkg/errors"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		wantOCI  bool
		registry string
		repo     string
		tag      string
		wantErr  bool
	}{
		{
			name:    "local directory",
			target:  "/srv/manifests/argocd",
			wantOCI: false,
		},
		{
			name:    "relative local directory",
			target:  "manifests/argocd",
			wantOCI: false,
		},
		{
			name:     "oci reference with tag",
			target:   "oci://ghcr.io/homelab/argocd-install:v2.11.0",
			wantOCI:  true,
			registry: "ghcr.io",
			repo:     "homelab/argocd-install",
			tag:      "v2.11.0",
		},
		{
			name:     "oci reference without tag defaults to latest",
			target:   "oci://ghcr.io/homelab/argocd-install",
			wantOCI:  true,
			registry: "ghcr.io",
			repo:     "homelab/argocd-install",
			tag:      "latest",
		},
		{
			name:     "local registry with port",
			target:   "oci://localhost:5000/argocd:stable",
			wantOCI:  true,
			registry: "localhost:5000",
			repo:     "argocd",
			tag:      "stable",
		},
		{
			name:    "invalid oci reference",
			target:  "oci://UPPER CASE/not valid",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := ParseSource(tt.target)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperrors.ErrCodeConfiguration, apperrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOCI, src.IsOCI)
			if tt.wantOCI {
				assert.Equal(t, tt.registry, src.Registry)
				assert.Equal(t, tt.repo, src.Repository)
				assert.Equal(t, tt.tag, src.Tag)
			} else {
				assert.Equal(t, tt.target, src.LocalPath)
			}
		})
	}
}

func TestSourceString(t *testing.T) {
	local, err := ParseSource("/srv/manifests")
	require.NoError(t, err)
	assert.Equal(t, "/srv/manifests", local.String())
	assert.Empty(t, local.ImageReference())

	oci, err := ParseSource("oci://ghcr.io/homelab/argocd-install:v2.11.0")
	require.NoError(t, err)
	assert.Equal(t, "oci://ghcr.io/homelab/argocd-install:v2.11.0", oci.String())
	assert.Equal(t, "ghcr.io/homelab/argocd-install:v2.11.0", oci.ImageReference())
}

func TestSourceFetchLocal(t *testing.T) {
	t.Run("existing directory is returned as-is", func(t *testing.T) {
		dir := t.TempDir()
		src := &Source{LocalPath: dir}
		got, err := src.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, dir, got)
	})

	t.Run("missing directory is a configuration error", func(t *testing.T) {
		src := &Source{LocalPath: filepath.Join(t.TempDir(), "absent")}
		_, err := src.Fetch(context.Background())
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeConfiguration, apperrors.CodeOf(err))
	})

	t.Run("single manifest file is accepted", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "manifests.yaml")
		require.NoError(t, os.WriteFile(path, []byte("kind: Namespace"), 0o600))
		src := &Source{LocalPath: path}
		got, err := src.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})
}
