/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package apply

import (
	"context"
	"log/slog"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/sunnydmess/labctl/pkg/engine"
	"github.com/sunnydmess/labctl/pkg/host"
)

// Namespace reconciles a single namespace: create when absent, patch labels
// when divergent, no call when identical.
type Namespace struct {
	Name    string
	Labels  map[string]string
	Clients ClientSource
}

// NewNamespace creates a namespace resource.
func NewNamespace(name string, labels map[string]string, clients ClientSource) *Namespace {
	return &Namespace{Name: name, Labels: labels, Clients: clients}
}

func (n *Namespace) ID() string          { return "namespace-" + n.Name }
func (n *Namespace) Kind() engine.Kind   { return engine.KindClusterObject }
func (n *Namespace) DependsOn() []string { return []string{host.CredentialResourceID} }

// Check implements engine.Resource.
func (n *Namespace) Check(ctx context.Context) (engine.Status, error) {
	cs, err := n.Clients.Typed()
	if err != nil {
		return "", err
	}
	if err := await(ctx); err != nil {
		return "", err
	}

	live, err := cs.CoreV1().Namespaces().Get(ctx, n.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return engine.StatusNeedsApply, nil
	}
	if err != nil {
		return "", classify(err, "namespace", n.Name)
	}

	if labelsDiverge(n.Labels, live.Labels) {
		return engine.StatusNeedsApply, nil
	}
	return engine.StatusSatisfied, nil
}

// Apply implements engine.Resource.
func (n *Namespace) Apply(ctx context.Context) error {
	cs, err := n.Clients.Typed()
	if err != nil {
		return err
	}
	if err := await(ctx); err != nil {
		return err
	}

	live, err := cs.CoreV1().Namespaces().Get(ctx, n.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		slog.Info("creating namespace", "name", n.Name)
		ns := &corev1.Namespace{
			ObjectMeta: metav1.ObjectMeta{Name: n.Name, Labels: n.Labels},
		}
		if _, err := cs.CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{}); err != nil {
			return classify(err, "namespace", n.Name)
		}
		return nil
	}
	if err != nil {
		return classify(err, "namespace", n.Name)
	}

	slog.Info("updating namespace labels", "name", n.Name)
	if live.Labels == nil {
		live.Labels = make(map[string]string, len(n.Labels))
	}
	for k, v := range n.Labels {
		live.Labels[k] = v
	}
	if _, err := cs.CoreV1().Namespaces().Update(ctx, live, metav1.UpdateOptions{}); err != nil {
		return classify(err, "namespace", n.Name)
	}
	return nil
}

// Outputs implements engine.Exporter.
func (n *Namespace) Outputs() map[string]string {
	return map[string]string{"namespace_" + n.Name: n.Name}
}

// labelsDiverge reports whether any desired label is missing or different
// on the live object. Extra live labels are left alone.
func labelsDiverge(desired, live map[string]string) bool {
	for k, v := range desired {
		if live[k] != v {
			return true
		}
	}
	return false
}
