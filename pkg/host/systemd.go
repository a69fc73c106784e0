/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package host

import (
	"context"
	"fmt"

	"github.com/coreos/go-systemd/v22/dbus"

	apperrors "github.com/sunnydmess/labctl/pkg/errors"
)

// UnitManager inspects and controls systemd-managed services. It is injected
// into host resources so idempotency predicates can be evaluated in tests
// without a real host.
type UnitManager interface {
	// ActiveState returns the unit's ActiveState property (e.g. "active",
	// "inactive", "failed").
	ActiveState(ctx context.Context, unit string) (string, error)
	// Restart restarts the unit and waits for the job to finish.
	Restart(ctx context.Context, unit string) error
}

// SystemdManager talks to systemd over D-Bus. Each call opens its own
// connection: host resources are invoked at most a handful of times per run.
type SystemdManager struct{}

// ActiveState implements UnitManager.
func (s *SystemdManager) ActiveState(ctx context.Context, unit string) (string, error) {
	conn, err := dbus.NewSystemdConnectionContext(ctx)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeDetection,
			"failed to connect to systemd", err)
	}
	defer conn.Close()

	props, err := conn.GetAllPropertiesContext(ctx, unit)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeDetection,
			fmt.Sprintf("failed to get properties of %s", unit), err)
	}

	state, _ := props["ActiveState"].(string)
	return state, nil
}

// Restart implements UnitManager.
func (s *SystemdManager) Restart(ctx context.Context, unit string) error {
	conn, err := dbus.NewSystemdConnectionContext(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInstallation,
			"failed to connect to systemd", err)
	}
	defer conn.Close()

	done := make(chan string, 1)
	if _, err := conn.RestartUnitContext(ctx, unit, "replace", done); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInstallation,
			fmt.Sprintf("failed to restart %s", unit), err)
	}

	select {
	case result := <-done:
		if result != "done" {
			return apperrors.Newf(apperrors.ErrCodeInstallation,
				"restart of %s finished with %q", unit, result)
		}
		return nil
	case <-ctx.Done():
		return apperrors.Wrap(apperrors.ErrCodeTimeout,
			fmt.Sprintf("timed out restarting %s", unit), ctx.Err())
	}
}
