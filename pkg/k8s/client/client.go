/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package client

import (
	"fmt"
	"os"
	"sync"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"

	apperrors "github.com/sunnydmess/labctl/pkg/errors"
)

// Interface is an alias for kubernetes.Interface to allow easier mocking in
// tests via fake.NewClientset().
type Interface = kubernetes.Interface

// Factory builds cluster clients from the credential file written by the
// host provisioner. Construction is lazy and cached: cluster resources hold
// the factory, and the client is built only when the first of them runs,
// after the credential exists.
type Factory struct {
	kubeconfig string

	once    sync.Once
	typed   *kubernetes.Clientset
	dynamic dynamic.Interface
	mapper  meta.RESTMapper
	config  *rest.Config
	err     error
}

// NewFactory creates a factory reading the credential at kubeconfig.
func NewFactory(kubeconfig string) *Factory {
	return &Factory{kubeconfig: kubeconfig}
}

// Typed returns the typed clientset, building it on first call.
func (f *Factory) Typed() (Interface, error) {
	f.build()
	return f.typed, f.err
}

// Dynamic returns the dynamic client, building it on first call.
func (f *Factory) Dynamic() (dynamic.Interface, error) {
	f.build()
	return f.dynamic, f.err
}

// Mapper returns a discovery-backed REST mapper, building it on first call.
// The mapper resolves manifest kinds to API resources at apply time.
func (f *Factory) Mapper() (meta.RESTMapper, error) {
	f.build()
	return f.mapper, f.err
}

// Config returns the rest configuration, building it on first call.
func (f *Factory) Config() (*rest.Config, error) {
	f.build()
	return f.config, f.err
}

func (f *Factory) build() {
	f.once.Do(func() {
		f.typed, f.dynamic, f.mapper, f.config, f.err = buildClients(f.kubeconfig)
	})
}

// buildClients constructs typed and dynamic clients from a kubeconfig file.
// A missing credential or unusable configuration is a connectivity error:
// fatal for the current run, nothing mutated, re-run once the credential
// exists.
func buildClients(kubeconfig string) (*kubernetes.Clientset, dynamic.Interface, meta.RESTMapper, *rest.Config, error) {
	if _, err := os.Stat(kubeconfig); err != nil {
		return nil, nil, nil, nil, apperrors.Wrap(apperrors.ErrCodeConnectivity,
			fmt.Sprintf("cluster credential not found at %s", kubeconfig), err)
	}

	config, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, nil, nil, nil, apperrors.Wrap(apperrors.ErrCodeConnectivity,
			fmt.Sprintf("failed to build client config from %s", kubeconfig), err)
	}

	typed, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, nil, nil, apperrors.Wrap(apperrors.ErrCodeConnectivity,
			"failed to create kubernetes client", err)
	}

	dyn, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, nil, nil, nil, apperrors.Wrap(apperrors.ErrCodeConnectivity,
			"failed to create dynamic client", err)
	}

	dc, err := discovery.NewDiscoveryClientForConfig(config)
	if err != nil {
		return nil, nil, nil, nil, apperrors.Wrap(apperrors.ErrCodeConnectivity,
			"failed to create discovery client", err)
	}
	mapper := restmapper.NewDeferredDiscoveryRESTMapper(memory.NewMemCacheClient(dc))

	return typed, dyn, mapper, config, nil
}
