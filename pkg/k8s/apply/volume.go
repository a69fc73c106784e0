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
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	apperrors "github.com/sunnydmess/labctl/pkg/errors"

	"github.com/sunnydmess/labctl/pkg/engine"
	"github.com/sunnydmess/labctl/pkg/host"
)

// Volume reconciles a hostPath PersistentVolume. Unbound volumes are updated
// in place when the declaration drifts. A bound volume with a changed
// capacity or host path is reported as a conflict instead of mutated, since
// the kubelet cannot honor either change under a live claim.
type Volume struct {
	Name         string
	Capacity     string
	AccessModes  []string
	HostPath     string
	StorageClass string
	Clients      ClientSource
}

// NewVolume creates a persistent volume resource.
func NewVolume(name, capacity string, accessModes []string, hostPath, storageClass string, clients ClientSource) *Volume {
	return &Volume{
		Name:         name,
		Capacity:     capacity,
		AccessModes:  accessModes,
		HostPath:     hostPath,
		StorageClass: storageClass,
		Clients:      clients,
	}
}

func (v *Volume) ID() string          { return "pv-" + v.Name }
func (v *Volume) Kind() engine.Kind   { return engine.KindClusterObject }
func (v *Volume) DependsOn() []string { return []string{host.CredentialResourceID} }

// desired renders the declared PersistentVolume. Capacity is validated by
// config, so MustParse is safe here.
func (v *Volume) desired() *corev1.PersistentVolume {
	modes := make([]corev1.PersistentVolumeAccessMode, 0, len(v.AccessModes))
	for _, m := range v.AccessModes {
		modes = append(modes, corev1.PersistentVolumeAccessMode(m))
	}
	return &corev1.PersistentVolume{
		ObjectMeta: metav1.ObjectMeta{Name: v.Name},
		Spec: corev1.PersistentVolumeSpec{
			Capacity: corev1.ResourceList{
				corev1.ResourceStorage: resource.MustParse(v.Capacity),
			},
			AccessModes:                   modes,
			StorageClassName:              v.StorageClass,
			PersistentVolumeReclaimPolicy: corev1.PersistentVolumeReclaimRetain,
			PersistentVolumeSource: corev1.PersistentVolumeSource{
				HostPath: &corev1.HostPathVolumeSource{
					Path: v.HostPath,
					Type: ptr.To(corev1.HostPathDirectoryOrCreate),
				},
			},
		},
	}
}

// Check implements engine.Resource.
func (v *Volume) Check(ctx context.Context) (engine.Status, error) {
	cs, err := v.Clients.Typed()
	if err != nil {
		return "", err
	}
	if err := await(ctx); err != nil {
		return "", err
	}

	live, err := cs.CoreV1().PersistentVolumes().Get(ctx, v.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return engine.StatusNeedsApply, nil
	}
	if err != nil {
		return "", classify(err, "persistentvolume", v.Name)
	}

	if !v.diverges(live) {
		return engine.StatusSatisfied, nil
	}
	if live.Status.Phase == corev1.VolumeBound && v.immutableChanged(live) {
		return "", apperrors.NewWithContext(apperrors.ErrCodeConflict,
			"persistentvolume is bound and its capacity or host path changed",
			map[string]any{"name": v.Name, "phase": string(live.Status.Phase)})
	}
	return engine.StatusNeedsApply, nil
}

// Apply implements engine.Resource.
func (v *Volume) Apply(ctx context.Context) error {
	cs, err := v.Clients.Typed()
	if err != nil {
		return err
	}
	if err := await(ctx); err != nil {
		return err
	}

	desired := v.desired()
	live, err := cs.CoreV1().PersistentVolumes().Get(ctx, v.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		slog.Info("creating persistent volume", "name", v.Name, "capacity", v.Capacity, "path", v.HostPath)
		if _, err := cs.CoreV1().PersistentVolumes().Create(ctx, desired, metav1.CreateOptions{}); err != nil {
			return classify(err, "persistentvolume", v.Name)
		}
		return nil
	}
	if err != nil {
		return classify(err, "persistentvolume", v.Name)
	}

	slog.Info("updating persistent volume", "name", v.Name)
	live.Spec.Capacity = desired.Spec.Capacity
	live.Spec.AccessModes = desired.Spec.AccessModes
	live.Spec.StorageClassName = desired.Spec.StorageClassName
	live.Spec.PersistentVolumeReclaimPolicy = desired.Spec.PersistentVolumeReclaimPolicy
	live.Spec.PersistentVolumeSource = desired.Spec.PersistentVolumeSource
	if _, err := cs.CoreV1().PersistentVolumes().Update(ctx, live, metav1.UpdateOptions{}); err != nil {
		return classify(err, "persistentvolume", v.Name)
	}
	return nil
}

// diverges reports whether the live spec differs from the declaration in any
// field this resource manages.
func (v *Volume) diverges(live *corev1.PersistentVolume) bool {
	if v.immutableChanged(live) {
		return true
	}
	if live.Spec.StorageClassName != v.StorageClass {
		return true
	}
	if len(live.Spec.AccessModes) != len(v.AccessModes) {
		return true
	}
	for i, m := range v.AccessModes {
		if string(live.Spec.AccessModes[i]) != m {
			return true
		}
	}
	return false
}

// immutableChanged reports capacity or host path drift, the two fields that
// cannot change under a bound claim.
func (v *Volume) immutableChanged(live *corev1.PersistentVolume) bool {
	want := resource.MustParse(v.Capacity)
	got, ok := live.Spec.Capacity[corev1.ResourceStorage]
	if !ok || got.Cmp(want) != 0 {
		return true
	}
	if live.Spec.HostPath == nil || live.Spec.HostPath.Path != v.HostPath {
		return true
	}
	return false
}
