/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/api/resource"

	apperrors "github.com/sunnydmess/labctl/pkg/errors"
)

// Default k3s installation options carried over from the original lab setup:
// traefik is replaced by a separate ingress later, and the kubeconfig must be
// readable so it can be copied out for the cluster client.
var defaultRuntimeOptions = []string{
	"--disable=traefik",
	"--write-kubeconfig-mode=644",
}

const (
	defaultStorageClass = "local-storage"
	defaultAccessMode   = "ReadWriteOnce"
	defaultGitOpsNS     = "argocd"
)

// Runtime configures the cluster runtime (k3s) installation.
type Runtime struct {
	// Version is the target k3s release, e.g. "v1.28.5+k3s1".
	Version string `yaml:"version"`
	// Options are passed verbatim to the k3s install script.
	Options []string `yaml:"options"`
}

// GPU configures host GPU scheduling support.
type GPU struct {
	Enabled bool `yaml:"enabled"`
}

// Kubeconfig configures where the cluster credential is written.
type Kubeconfig struct {
	// Path is the destination of the generated credential file.
	// Defaults to $HOME/.kube/config.
	Path string `yaml:"path"`
}

// Namespace declares a namespace to create in the cluster.
type Namespace struct {
	Name   string            `yaml:"name"`
	Labels map[string]string `yaml:"labels,omitempty"`
}

// Volume declares a hostPath-backed persistent volume.
type Volume struct {
	Name         string   `yaml:"name"`
	Capacity     string   `yaml:"capacity"`
	AccessModes  []string `yaml:"accessModes,omitempty"`
	HostPath     string   `yaml:"hostPath"`
	StorageClass string   `yaml:"storageClass,omitempty"`
}

// GitOps configures the GitOps controller bootstrap.
type GitOps struct {
	// Source is the manifest overlay location: a local directory, a local
	// multi-doc YAML file, or an oci:// artifact reference.
	Source string `yaml:"source"`
	// Namespace hosts the controller installation. Defaults to "argocd".
	Namespace string `yaml:"namespace"`
}

// Config is the full invocation surface of a provisioning run.
type Config struct {
	Runtime    Runtime     `yaml:"runtime"`
	GPU        GPU         `yaml:"gpu"`
	Kubeconfig Kubeconfig  `yaml:"kubeconfig"`
	Namespaces []Namespace `yaml:"namespaces"`
	Volumes    []Volume    `yaml:"volumes"`
	GitOps     GitOps      `yaml:"gitops"`
}

// Load reads, defaults, and validates a configuration file.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read reads and defaults a configuration file without validating it, so
// callers can layer flag overrides on top before Validate.
func Read(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeConfiguration,
			fmt.Sprintf("failed to read config file %s", path), err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeConfiguration,
			fmt.Sprintf("failed to parse config file %s", path), err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills in unset optional fields.
func (c *Config) ApplyDefaults() {
	if len(c.Runtime.Options) == 0 {
		c.Runtime.Options = append([]string(nil), defaultRuntimeOptions...)
	}
	if c.Kubeconfig.Path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Kubeconfig.Path = filepath.Join(home, ".kube", "config")
		}
	}
	if c.GitOps.Namespace == "" {
		c.GitOps.Namespace = defaultGitOpsNS
	}
	for i := range c.Volumes {
		if len(c.Volumes[i].AccessModes) == 0 {
			c.Volumes[i].AccessModes = []string{defaultAccessMode}
		}
		if c.Volumes[i].StorageClass == "" {
			c.Volumes[i].StorageClass = defaultStorageClass
		}
	}
}

// validAccessModes are the persistent volume access modes the cluster accepts.
var validAccessModes = map[string]bool{
	"ReadWriteOnce": true,
	"ReadOnlyMany":  true,
	"ReadWriteMany": true,
}

// Validate checks the configuration for errors that would otherwise surface
// mid-run. All violations are configuration errors, fatal before execution.
func (c *Config) Validate() error {
	if c.Runtime.Version == "" {
		return apperrors.New(apperrors.ErrCodeConfiguration, "runtime.version is required")
	}
	if !strings.HasPrefix(c.Runtime.Version, "v") {
		return apperrors.Newf(apperrors.ErrCodeConfiguration,
			"runtime.version %q must start with 'v'", c.Runtime.Version)
	}
	if c.Kubeconfig.Path == "" {
		return apperrors.New(apperrors.ErrCodeConfiguration, "kubeconfig.path is required")
	}

	seen := make(map[string]bool, len(c.Namespaces))
	for _, ns := range c.Namespaces {
		if ns.Name == "" {
			return apperrors.New(apperrors.ErrCodeConfiguration, "namespace name must not be empty")
		}
		if seen[ns.Name] {
			return apperrors.Newf(apperrors.ErrCodeConfiguration,
				"duplicate namespace %q", ns.Name)
		}
		seen[ns.Name] = true
	}

	volNames := make(map[string]bool, len(c.Volumes))
	for _, v := range c.Volumes {
		if v.Name == "" {
			return apperrors.New(apperrors.ErrCodeConfiguration, "volume name must not be empty")
		}
		if volNames[v.Name] {
			return apperrors.Newf(apperrors.ErrCodeConfiguration, "duplicate volume %q", v.Name)
		}
		volNames[v.Name] = true

		if v.HostPath == "" || !filepath.IsAbs(v.HostPath) {
			return apperrors.Newf(apperrors.ErrCodeConfiguration,
				"volume %q: hostPath must be an absolute path", v.Name)
		}
		if _, err := resource.ParseQuantity(v.Capacity); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeConfiguration,
				fmt.Sprintf("volume %q: invalid capacity %q", v.Name, v.Capacity), err)
		}
		for _, m := range v.AccessModes {
			if !validAccessModes[m] {
				return apperrors.Newf(apperrors.ErrCodeConfiguration,
					"volume %q: invalid access mode %q", v.Name, m)
			}
		}
	}

	if c.GitOps.Source != "" && !seen[c.GitOps.Namespace] {
		return apperrors.Newf(apperrors.ErrCodeConfiguration,
			"gitops.namespace %q must be listed under namespaces", c.GitOps.Namespace)
	}

	return nil
}
