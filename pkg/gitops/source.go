/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package gitops

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/distribution/reference"
	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"

	apperrors "github.com/sunnydmess/labctl/pkg/errors"
)

// URIScheme marks a manifest source held in an OCI registry
// (e.g., "oci://ghcr.io/org/manifests:v1").
const URIScheme = "oci://"

// defaultTag is applied when an OCI source omits its tag.
const defaultTag = "latest"

// Source is a parsed manifest source: either an OCI registry reference or a
// local directory path.
type Source struct {
	// IsOCI indicates an OCI registry reference (true) or local path (false).
	IsOCI bool
	// Registry is the OCI registry host (e.g., "ghcr.io", "localhost:5000").
	Registry string
	// Repository is the image repository path (e.g., "org/manifests").
	Repository string
	// Tag is the image tag. Defaults to "latest" when omitted.
	Tag string
	// LocalPath is the manifest directory for non-OCI sources.
	LocalPath string
}

// ParseSource parses a manifest source string. Strings with the oci://
// scheme are validated as image references; anything else is treated as a
// local directory.
func ParseSource(target string) (*Source, error) {
	if !strings.HasPrefix(target, URIScheme) {
		return &Source{LocalPath: target}, nil
	}

	ref, err := reference.ParseNormalizedNamed(strings.TrimPrefix(target, URIScheme))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeConfiguration,
			fmt.Sprintf("invalid OCI manifest source %q", target), err)
	}

	tag := defaultTag
	if tagged, ok := ref.(reference.Tagged); ok {
		tag = tagged.Tag()
	}

	return &Source{
		IsOCI:      true,
		Registry:   reference.Domain(ref),
		Repository: reference.Path(ref),
		Tag:        tag,
	}, nil
}

// ImageReference returns the Docker-style image reference without the oci://
// scheme. Empty for local sources.
func (s *Source) ImageReference() string {
	if !s.IsOCI {
		return ""
	}
	return fmt.Sprintf("%s/%s:%s", s.Registry, s.Repository, s.Tag)
}

// String returns the source in the form it was declared.
func (s *Source) String() string {
	if !s.IsOCI {
		return s.LocalPath
	}
	return URIScheme + s.ImageReference()
}

// Fetch materializes the source on the local filesystem. Local sources are
// returned as-is after an existence check; OCI sources are pulled with ORAS
// into a temporary directory the caller owns. The result is a manifest
// directory or a single manifest file.
func (s *Source) Fetch(ctx context.Context) (string, error) {
	if !s.IsOCI {
		if _, err := os.Stat(s.LocalPath); err != nil {
			return "", apperrors.Wrap(apperrors.ErrCodeConfiguration,
				fmt.Sprintf("manifest source %s not found", s.LocalPath), err)
		}
		return s.LocalPath, nil
	}

	dir, err := os.MkdirTemp("", "labctl-manifests-*")
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, "failed to create staging directory", err)
	}

	fs, err := file.New(dir)
	if err != nil {
		os.RemoveAll(dir)
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, "failed to create file store", err)
	}
	defer func() { _ = fs.Close() }()

	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", s.Registry, s.Repository))
	if err != nil {
		os.RemoveAll(dir)
		return "", apperrors.Wrap(apperrors.ErrCodeConfiguration,
			fmt.Sprintf("failed to initialize repository %s/%s", s.Registry, s.Repository), err)
	}
	repo.Client = newAuthClient()

	slog.Info("pulling manifest artifact", "reference", s.ImageReference())
	desc, err := oras.Copy(ctx, repo, s.Tag, fs, s.Tag, oras.DefaultCopyOptions)
	if err != nil {
		os.RemoveAll(dir)
		return "", apperrors.Wrap(apperrors.ErrCodeConnectivity,
			fmt.Sprintf("failed to pull %s", s.ImageReference()), err)
	}
	if desc.MediaType != ociv1.MediaTypeImageManifest {
		slog.Warn("unexpected artifact media type",
			"reference", s.ImageReference(), "mediaType", desc.MediaType)
	}
	slog.Info("pulled manifest artifact", "digest", desc.Digest.String())

	return dir, nil
}

// newAuthClient builds an HTTP client with Docker credential support.
func newAuthClient() *auth.Client {
	credStore, _ := credentials.NewStoreFromDocker(credentials.StoreOptions{})

	return &auth.Client{
		Client:     &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		Cache:      auth.NewCache(),
		Credential: credentials.Credential(credStore),
	}
}
