/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package gitops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sunnydmess/labctl/pkg/errors"
)

func writeManifest(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadManifests(t *testing.T) {
	t.Run("multi-document file in order", func(t *testing.T) {
		dir := t.TempDir()
		writeManifest(t, dir, "install.yaml", `
apiVersion: v1
kind: ServiceAccount
metadata:
  name: argocd-server
---
apiVersion: apps/v1
kind: Deployment
metadata:
  name: argocd-server
  namespace: argocd
`)

		objs, err := LoadManifests(dir)
		require.NoError(t, err)
		require.Len(t, objs, 2)
		assert.Equal(t, "ServiceAccount", objs[0].GetKind())
		assert.Equal(t, "Deployment", objs[1].GetKind())
		assert.Equal(t, "argocd", objs[1].GetNamespace())
	})

	t.Run("files load in lexical order", func(t *testing.T) {
		dir := t.TempDir()
		writeManifest(t, dir, "20-deploy.yaml", "apiVersion: apps/v1\nkind: Deployment\nmetadata:\n  name: later\n")
		writeManifest(t, dir, "10-crds.yaml", "apiVersion: apiextensions.k8s.io/v1\nkind: CustomResourceDefinition\nmetadata:\n  name: first\n")
		writeManifest(t, dir, "README.md", "not a manifest")

		objs, err := LoadManifests(dir)
		require.NoError(t, err)
		require.Len(t, objs, 2)
		assert.Equal(t, "CustomResourceDefinition", objs[0].GetKind())
		assert.Equal(t, "Deployment", objs[1].GetKind())
	})

	t.Run("empty documents are skipped", func(t *testing.T) {
		dir := t.TempDir()
		writeManifest(t, dir, "sparse.yaml", `
---
# just a comment
---
apiVersion: v1
kind: ConfigMap
metadata:
  name: argocd-cm
---
`)

		objs, err := LoadManifests(dir)
		require.NoError(t, err)
		require.Len(t, objs, 1)
		assert.Equal(t, "argocd-cm", objs[0].GetName())
	})

	t.Run("single file path", func(t *testing.T) {
		dir := t.TempDir()
		writeManifest(t, dir, "install.yaml", "apiVersion: v1\nkind: ConfigMap\nmetadata:\n  name: argocd-cm\n")

		objs, err := LoadManifests(filepath.Join(dir, "install.yaml"))
		require.NoError(t, err)
		require.Len(t, objs, 1)
		assert.Equal(t, "ConfigMap", objs[0].GetKind())
	})

	t.Run("document without kind is rejected", func(t *testing.T) {
		dir := t.TempDir()
		writeManifest(t, dir, "broken.yaml", "metadata:\n  name: nameless\n")

		_, err := LoadManifests(dir)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeConfiguration, apperrors.CodeOf(err))
	})

	t.Run("invalid yaml is rejected", func(t *testing.T) {
		dir := t.TempDir()
		writeManifest(t, dir, "broken.yaml", "kind: [unclosed\n")

		_, err := LoadManifests(dir)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeConfiguration, apperrors.CodeOf(err))
	})

	t.Run("directory without manifests is rejected", func(t *testing.T) {
		_, err := LoadManifests(t.TempDir())
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeConfiguration, apperrors.CodeOf(err))
	})

	t.Run("missing directory is rejected", func(t *testing.T) {
		_, err := LoadManifests(filepath.Join(t.TempDir(), "absent"))
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeConfiguration, apperrors.CodeOf(err))
	})
}
