package client

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/sunnydmess/labctl/pkg/errors"
)

const validKubeconfig = `
apiVersion: v1
kind: Config
clusters:
  - name: lab
    cluster:
      server: https://127.0.0.1:6443
contexts:
  - name: lab
    context:
      cluster: lab
      user: admin
current-context: lab
users:
  - name: admin
    user:
      token: test-token
`

func TestFactory_MissingCredentialIsConnectivityError(t *testing.T) {
	f := NewFactory(filepath.Join(t.TempDir(), "missing"))

	_, err := f.Typed()
	if err == nil {
		t.Fatal("expected error for missing credential")
	}
	if apperrors.CodeOf(err) != apperrors.ErrCodeConnectivity {
		t.Errorf("expected CONNECTIVITY, got %s", apperrors.CodeOf(err))
	}

	// The dynamic accessor reports the same cached failure.
	if _, dynErr := f.Dynamic(); dynErr == nil {
		t.Error("dynamic accessor should surface the same error")
	}
}

func TestFactory_BuildsFromCredential(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte(validKubeconfig), 0o600); err != nil {
		t.Fatal(err)
	}

	f := NewFactory(path)
	typed, err := f.Typed()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typed == nil {
		t.Fatal("expected non-nil client")
	}

	dyn, err := f.Dynamic()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dyn == nil {
		t.Fatal("expected non-nil dynamic client")
	}

	mapper, err := f.Mapper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mapper == nil {
		t.Fatal("expected non-nil mapper")
	}

	cfg, err := f.Config()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Host != "https://127.0.0.1:6443" {
		t.Errorf("unexpected host %q", cfg.Host)
	}
}

func TestFactory_InvalidCredentialIsConnectivityError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte("not a kubeconfig"), 0o600); err != nil {
		t.Fatal(err)
	}

	f := NewFactory(path)
	_, err := f.Typed()
	if apperrors.CodeOf(err) != apperrors.ErrCodeConnectivity {
		t.Fatalf("expected CONNECTIVITY, got %v", err)
	}
}
