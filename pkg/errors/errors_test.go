package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestStructuredError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "without cause",
			err:      New(ErrCodeConfiguration, "dependency cycle detected"),
			expected: "[CONFIGURATION] dependency cycle detected",
		},
		{
			name:     "with cause",
			err:      Wrap(ErrCodeInstallation, "k3s install failed", stderrors.New("exit status 1")),
			expected: "[INSTALLATION] k3s install failed: exit status 1",
		},
		{
			name:     "formatted",
			err:      Newf(ErrCodeConflict, "persistent volume %q is bound", "media-pv"),
			expected: `[CONFLICT] persistent volume "media-pv" is bound`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrCodeConnectivity, "cluster API unreachable", cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var se *StructuredError
	if !stderrors.As(err, &se) {
		t.Fatal("errors.As should find the StructuredError")
	}
	if se.Code != ErrCodeConnectivity {
		t.Errorf("unexpected code: %s", se.Code)
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{
			name:     "direct structured error",
			err:      New(ErrCodeConflict, "bound volume"),
			expected: ErrCodeConflict,
		},
		{
			name:     "wrapped by fmt.Errorf",
			err:      fmt.Errorf("applying namespace: %w", New(ErrCodeConnectivity, "API unreachable")),
			expected: ErrCodeConnectivity,
		},
		{
			name:     "plain error",
			err:      stderrors.New("boom"),
			expected: ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.expected {
				t.Errorf("CodeOf() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(New(ErrCodeConnectivity, "API unreachable")) {
		t.Error("connectivity errors should be retryable")
	}
	if !IsRetryable(New(ErrCodeTimeout, "deadline exceeded")) {
		t.Error("timeout errors should be retryable")
	}
	if IsRetryable(New(ErrCodeConfiguration, "cycle")) {
		t.Error("configuration errors must not be retryable")
	}
	if IsRetryable(New(ErrCodeConflict, "bound volume")) {
		t.Error("conflict errors must not be retryable")
	}
	if IsRetryable(New(ErrCodeInstallation, "exit 1")) {
		t.Error("installation errors must not be retryable")
	}
}
