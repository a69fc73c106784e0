/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package apply

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
	"k8s.io/utils/ptr"

	"github.com/sunnydmess/labctl/pkg/engine"
	apperrors "github.com/sunnydmess/labctl/pkg/errors"
	"github.com/sunnydmess/labctl/pkg/k8s/client"
)

type fakeClients struct {
	typed client.Interface
}

func (f *fakeClients) Typed() (client.Interface, error) { return f.typed, nil }

func TestNamespaceCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("missing namespace needs apply", func(t *testing.T) {
		ns := NewNamespace("media", nil, &fakeClients{typed: fake.NewClientset()})
		status, err := ns.Check(ctx)
		require.NoError(t, err)
		assert.Equal(t, engine.StatusNeedsApply, status)
	})

	t.Run("matching namespace is satisfied", func(t *testing.T) {
		cs := fake.NewClientset(&corev1.Namespace{
			ObjectMeta: metav1.ObjectMeta{
				Name:   "media",
				Labels: map[string]string{"tier": "apps"},
			},
		})
		ns := NewNamespace("media", map[string]string{"tier": "apps"}, &fakeClients{typed: cs})
		status, err := ns.Check(ctx)
		require.NoError(t, err)
		assert.Equal(t, engine.StatusSatisfied, status)
	})

	t.Run("label drift needs apply", func(t *testing.T) {
		cs := fake.NewClientset(&corev1.Namespace{
			ObjectMeta: metav1.ObjectMeta{Name: "media"},
		})
		ns := NewNamespace("media", map[string]string{"tier": "apps"}, &fakeClients{typed: cs})
		status, err := ns.Check(ctx)
		require.NoError(t, err)
		assert.Equal(t, engine.StatusNeedsApply, status)
	})

	t.Run("extra live labels are ignored", func(t *testing.T) {
		cs := fake.NewClientset(&corev1.Namespace{
			ObjectMeta: metav1.ObjectMeta{
				Name:   "media",
				Labels: map[string]string{"tier": "apps", "injected": "true"},
			},
		})
		ns := NewNamespace("media", map[string]string{"tier": "apps"}, &fakeClients{typed: cs})
		status, err := ns.Check(ctx)
		require.NoError(t, err)
		assert.Equal(t, engine.StatusSatisfied, status)
	})
}

func TestNamespaceApply(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing namespace", func(t *testing.T) {
		cs := fake.NewClientset()
		ns := NewNamespace("media", map[string]string{"tier": "apps"}, &fakeClients{typed: cs})
		require.NoError(t, ns.Apply(ctx))

		live, err := cs.CoreV1().Namespaces().Get(ctx, "media", metav1.GetOptions{})
		require.NoError(t, err)
		assert.Equal(t, "apps", live.Labels["tier"])
	})

	t.Run("merges labels into existing namespace", func(t *testing.T) {
		cs := fake.NewClientset(&corev1.Namespace{
			ObjectMeta: metav1.ObjectMeta{
				Name:   "media",
				Labels: map[string]string{"keep": "me"},
			},
		})
		ns := NewNamespace("media", map[string]string{"tier": "apps"}, &fakeClients{typed: cs})
		require.NoError(t, ns.Apply(ctx))

		live, err := cs.CoreV1().Namespaces().Get(ctx, "media", metav1.GetOptions{})
		require.NoError(t, err)
		assert.Equal(t, "apps", live.Labels["tier"])
		assert.Equal(t, "me", live.Labels["keep"])
	})
}

func TestNamespaceMetadata(t *testing.T) {
	ns := NewNamespace("media", nil, &fakeClients{typed: fake.NewClientset()})
	assert.Equal(t, "namespace-media", ns.ID())
	assert.Equal(t, engine.KindClusterObject, ns.Kind())
	assert.Equal(t, []string{"cluster-credential"}, ns.DependsOn())
	assert.Equal(t, map[string]string{"namespace_media": "media"}, ns.Outputs())
}

func testVolume(cs client.Interface) *Volume {
	return NewVolume("jellyfin-config", "10Gi", []string{"ReadWriteOnce"},
		"/data/jellyfin/config", "local-storage", &fakeClients{typed: cs})
}

func livePV(phase corev1.PersistentVolumePhase, capacity, path string) *corev1.PersistentVolume {
	return &corev1.PersistentVolume{
		ObjectMeta: metav1.ObjectMeta{Name: "jellyfin-config"},
		Spec: corev1.PersistentVolumeSpec{
			Capacity: corev1.ResourceList{
				corev1.ResourceStorage: resource.MustParse(capacity),
			},
			AccessModes:                   []corev1.PersistentVolumeAccessMode{corev1.ReadWriteOnce},
			StorageClassName:              "local-storage",
			PersistentVolumeReclaimPolicy: corev1.PersistentVolumeReclaimRetain,
			PersistentVolumeSource: corev1.PersistentVolumeSource{
				HostPath: &corev1.HostPathVolumeSource{
					Path: path,
					Type: ptr.To(corev1.HostPathDirectoryOrCreate),
				},
			},
		},
		Status: corev1.PersistentVolumeStatus{Phase: phase},
	}
}

func TestVolumeCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("missing volume needs apply", func(t *testing.T) {
		v := testVolume(fake.NewClientset())
		status, err := v.Check(ctx)
		require.NoError(t, err)
		assert.Equal(t, engine.StatusNeedsApply, status)
	})

	t.Run("matching volume is satisfied", func(t *testing.T) {
		cs := fake.NewClientset(livePV(corev1.VolumeBound, "10Gi", "/data/jellyfin/config"))
		v := testVolume(cs)
		status, err := v.Check(ctx)
		require.NoError(t, err)
		assert.Equal(t, engine.StatusSatisfied, status)
	})

	t.Run("unbound drift needs apply", func(t *testing.T) {
		cs := fake.NewClientset(livePV(corev1.VolumeAvailable, "5Gi", "/data/jellyfin/config"))
		v := testVolume(cs)
		status, err := v.Check(ctx)
		require.NoError(t, err)
		assert.Equal(t, engine.StatusNeedsApply, status)
	})

	t.Run("bound capacity change is a conflict", func(t *testing.T) {
		cs := fake.NewClientset(livePV(corev1.VolumeBound, "5Gi", "/data/jellyfin/config"))
		v := testVolume(cs)
		_, err := v.Check(ctx)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeConflict, apperrors.CodeOf(err))
	})

	t.Run("bound path change is a conflict", func(t *testing.T) {
		cs := fake.NewClientset(livePV(corev1.VolumeBound, "10Gi", "/data/elsewhere"))
		v := testVolume(cs)
		_, err := v.Check(ctx)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeConflict, apperrors.CodeOf(err))
	})

	t.Run("bound storage class change needs apply", func(t *testing.T) {
		pv := livePV(corev1.VolumeBound, "10Gi", "/data/jellyfin/config")
		pv.Spec.StorageClassName = "legacy"
		v := testVolume(fake.NewClientset(pv))
		status, err := v.Check(ctx)
		require.NoError(t, err)
		assert.Equal(t, engine.StatusNeedsApply, status)
	})
}

func TestVolumeApply(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing volume", func(t *testing.T) {
		cs := fake.NewClientset()
		v := testVolume(cs)
		require.NoError(t, v.Apply(ctx))

		live, err := cs.CoreV1().PersistentVolumes().Get(ctx, "jellyfin-config", metav1.GetOptions{})
		require.NoError(t, err)
		assert.Equal(t, corev1.PersistentVolumeReclaimRetain, live.Spec.PersistentVolumeReclaimPolicy)
		require.NotNil(t, live.Spec.HostPath)
		assert.Equal(t, "/data/jellyfin/config", live.Spec.HostPath.Path)
		assert.Equal(t, corev1.HostPathDirectoryOrCreate, *live.Spec.HostPath.Type)
		assert.Equal(t, "local-storage", live.Spec.StorageClassName)
	})

	t.Run("updates drifted unbound volume", func(t *testing.T) {
		cs := fake.NewClientset(livePV(corev1.VolumeAvailable, "5Gi", "/data/old"))
		v := testVolume(cs)
		require.NoError(t, v.Apply(ctx))

		live, err := cs.CoreV1().PersistentVolumes().Get(ctx, "jellyfin-config", metav1.GetOptions{})
		require.NoError(t, err)
		want := resource.MustParse("10Gi")
		got := live.Spec.Capacity[corev1.ResourceStorage]
		assert.Zero(t, got.Cmp(want))
		assert.Equal(t, "/data/jellyfin/config", live.Spec.HostPath.Path)
	})
}

func TestVolumeMetadata(t *testing.T) {
	v := testVolume(fake.NewClientset())
	assert.Equal(t, "pv-jellyfin-config", v.ID())
	assert.Equal(t, engine.KindClusterObject, v.Kind())
	assert.Equal(t, []string{"cluster-credential"}, v.DependsOn())
}
