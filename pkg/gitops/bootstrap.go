/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package gitops

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/dynamic"

	"github.com/sunnydmess/labctl/pkg/engine"
	apperrors "github.com/sunnydmess/labctl/pkg/errors"
)

// BootstrapResourceID identifies the GitOps bootstrap resource.
const BootstrapResourceID = "gitops-bootstrap"

// FieldManager is the server-side apply field manager name.
const FieldManager = "labctl"

// ClientSource supplies the dynamic client and REST mapper used to apply
// arbitrary manifest kinds.
type ClientSource interface {
	Dynamic() (dynamic.Interface, error)
	Mapper() (meta.RESTMapper, error)
}

// Bootstrapper applies the GitOps controller manifests into the cluster with
// server-side apply. The manifest set comes from a local directory or an OCI
// artifact and is applied in document order, so sources must list CRDs
// before the objects that use them.
type Bootstrapper struct {
	Source    *Source
	Namespace string
	Clients   ClientSource

	once    sync.Once
	objects []*unstructured.Unstructured
	loadErr error
}

// NewBootstrapper creates the bootstrap resource for the given manifest
// source and target namespace.
func NewBootstrapper(source *Source, namespace string, clients ClientSource) *Bootstrapper {
	return &Bootstrapper{Source: source, Namespace: namespace, Clients: clients}
}

func (b *Bootstrapper) ID() string        { return BootstrapResourceID }
func (b *Bootstrapper) Kind() engine.Kind { return engine.KindClusterObject }

// DependsOn requires the target namespace before any manifest is applied.
func (b *Bootstrapper) DependsOn() []string {
	return []string{"namespace-" + b.Namespace}
}

// load fetches and decodes the manifest set once per process.
func (b *Bootstrapper) load(ctx context.Context) ([]*unstructured.Unstructured, error) {
	b.once.Do(func() {
		dir, err := b.Source.Fetch(ctx)
		if err != nil {
			b.loadErr = err
			return
		}
		b.objects, b.loadErr = LoadManifests(dir)
	})
	return b.objects, b.loadErr
}

// Check implements engine.Resource. The resource is satisfied when every
// manifest object exists in the cluster; content drift is reconciled by the
// controller itself once it runs.
func (b *Bootstrapper) Check(ctx context.Context) (engine.Status, error) {
	objects, err := b.load(ctx)
	if err != nil {
		return "", err
	}

	for _, obj := range objects {
		ri, err := b.resourceFor(obj)
		if err != nil {
			return "", err
		}
		if _, err := ri.Get(ctx, obj.GetName(), metav1.GetOptions{}); err != nil {
			if apierrors.IsNotFound(err) {
				return engine.StatusNeedsApply, nil
			}
			return "", apperrors.Wrap(apperrors.ErrCodeConnectivity,
				fmt.Sprintf("failed to read %s %s", obj.GetKind(), obj.GetName()), err)
		}
	}
	return engine.StatusSatisfied, nil
}

// Apply implements engine.Resource. Every object is applied even when only
// some are missing; server-side apply makes the re-application of existing
// objects a no-op.
func (b *Bootstrapper) Apply(ctx context.Context) error {
	objects, err := b.load(ctx)
	if err != nil {
		return err
	}

	slog.Info("bootstrapping gitops controller",
		"source", b.Source.String(),
		"namespace", b.Namespace,
		"objects", len(objects))

	for _, obj := range objects {
		ri, err := b.resourceFor(obj)
		if err != nil {
			return err
		}

		data, err := obj.MarshalJSON()
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInternal,
				fmt.Sprintf("failed to encode %s %s", obj.GetKind(), obj.GetName()), err)
		}

		opts := metav1.PatchOptions{FieldManager: FieldManager}
		if _, err := ri.Patch(ctx, obj.GetName(), types.ApplyPatchType, data, opts); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInstallation,
				fmt.Sprintf("failed to apply %s %s", obj.GetKind(), obj.GetName()), err)
		}
		slog.Debug("applied manifest object", "kind", obj.GetKind(), "name", obj.GetName())
	}
	return nil
}

// Outputs implements engine.Exporter.
func (b *Bootstrapper) Outputs() map[string]string {
	return map[string]string{
		"gitops_namespace": b.Namespace,
		"gitops_admin_secret": fmt.Sprintf(
			"kubectl -n %s get secret argocd-initial-admin-secret -o jsonpath={.data.password} | base64 -d",
			b.Namespace),
	}
}

// resourceFor maps an object's kind to its API resource and scopes the
// dynamic client accordingly. Namespaced objects without an explicit
// namespace land in the bootstrap namespace.
func (b *Bootstrapper) resourceFor(obj *unstructured.Unstructured) (dynamic.ResourceInterface, error) {
	dyn, err := b.Clients.Dynamic()
	if err != nil {
		return nil, err
	}
	mapper, err := b.Clients.Mapper()
	if err != nil {
		return nil, err
	}

	gvk := obj.GroupVersionKind()
	mapping, err := mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeConfiguration,
			fmt.Sprintf("no API resource for kind %s", gvk.Kind), err)
	}

	if mapping.Scope.Name() != meta.RESTScopeNameNamespace {
		return dyn.Resource(mapping.Resource), nil
	}

	ns := obj.GetNamespace()
	if ns == "" {
		ns = b.Namespace
	}
	return dyn.Resource(mapping.Resource).Namespace(ns), nil
}
