/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package engine

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"syscall"

	apperrors "github.com/sunnydmess/labctl/pkg/errors"
)

// acquireLock takes the run-level lock file, preventing concurrent
// provisioning runs from racing on host package state. The file records the
// holder's PID; a lock left behind by a dead process is reclaimed.
func acquireLock(path string) (func(), error) {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			if cerr := f.Close(); cerr != nil {
				return nil, apperrors.Wrap(apperrors.ErrCodeInternal,
					"failed to write lock file", cerr)
			}
			return func() {
				if rerr := os.Remove(path); rerr != nil {
					slog.Warn("failed to remove lock file", "path", path, "error", rerr)
				}
			}, nil
		}
		if !os.IsExist(err) {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal,
				fmt.Sprintf("failed to create lock file %s", path), err)
		}

		pid, readErr := lockHolder(path)
		if readErr == nil && processAlive(pid) {
			return nil, apperrors.Newf(apperrors.ErrCodeConflict,
				"another provisioning run (pid %d) holds the lock at %s", pid, path)
		}

		// Holder is gone; reclaim the stale lock and retry once.
		slog.Warn("reclaiming stale lock file", "path", path, "stale_pid", pid)
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal,
				"failed to remove stale lock file", rmErr)
		}
	}

	return nil, apperrors.Newf(apperrors.ErrCodeConflict,
		"could not acquire lock at %s", path)
}

func lockHolder(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// processAlive reports whether a process with the given PID exists.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || err == syscall.EPERM
}
