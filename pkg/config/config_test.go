package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/sunnydmess/labctl/pkg/errors"
)

const sampleConfig = `
runtime:
  version: v1.28.5+k3s1
gpu:
  enabled: true
kubeconfig:
  path: /home/lab/.kube/config
namespaces:
  - name: argocd
  - name: media
volumes:
  - name: jellyfin-config-pv
    capacity: 10Gi
    hostPath: /data/jellyfin/config
  - name: jellyfin-media-pv
    capacity: 500Gi
    accessModes: [ReadWriteMany]
    hostPath: /data/jellyfin/media
gitops:
  source: ./manifests/argocd
  namespace: argocd
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "v1.28.5+k3s1", cfg.Runtime.Version)
	assert.True(t, cfg.GPU.Enabled)
	assert.Equal(t, "/home/lab/.kube/config", cfg.Kubeconfig.Path)
	assert.Len(t, cfg.Namespaces, 2)

	// Defaults fill in what the file omits.
	assert.Equal(t, defaultRuntimeOptions, cfg.Runtime.Options)
	assert.Equal(t, []string{"ReadWriteOnce"}, cfg.Volumes[0].AccessModes)
	assert.Equal(t, []string{"ReadWriteMany"}, cfg.Volumes[1].AccessModes)
	assert.Equal(t, "local-storage", cfg.Volumes[0].StorageClass)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfiguration, apperrors.CodeOf(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing runtime version",
			mutate:  func(c *Config) { c.Runtime.Version = "" },
			wantErr: "runtime.version is required",
		},
		{
			name:    "version without v prefix",
			mutate:  func(c *Config) { c.Runtime.Version = "1.28.5" },
			wantErr: "must start with 'v'",
		},
		{
			name: "duplicate namespace",
			mutate: func(c *Config) {
				c.Namespaces = append(c.Namespaces, Namespace{Name: "media"})
			},
			wantErr: `duplicate namespace "media"`,
		},
		{
			name:    "relative host path",
			mutate:  func(c *Config) { c.Volumes[0].HostPath = "data/jellyfin" },
			wantErr: "hostPath must be an absolute path",
		},
		{
			name:    "bad capacity",
			mutate:  func(c *Config) { c.Volumes[0].Capacity = "ten gigs" },
			wantErr: "invalid capacity",
		},
		{
			name:    "bad access mode",
			mutate:  func(c *Config) { c.Volumes[0].AccessModes = []string{"ReadWriteTwice"} },
			wantErr: "invalid access mode",
		},
		{
			name:    "gitops namespace not declared",
			mutate:  func(c *Config) { c.GitOps.Namespace = "flux-system" },
			wantErr: "must be listed under namespaces",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, sampleConfig))
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, apperrors.ErrCodeConfiguration, apperrors.CodeOf(err))
		})
	}
}
