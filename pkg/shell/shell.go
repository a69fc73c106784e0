/*
Copyright © 2026 sunnydmess
SPDX-License-Identifier: Apache-2.0
*/
package shell

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	apperrors "github.com/sunnydmess/labctl/pkg/errors"
)

// Result captures the outcome of a completed host command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the command exited zero.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Executor runs privileged host commands. It is the substrate for all
// host-layer operations and is injected so tests never touch a real host.
type Executor interface {
	// Execute runs the command and returns its exit status and output.
	// A non-zero exit code is reported in Result, not as an error; the
	// error return is reserved for spawn failures and timeouts.
	Execute(ctx context.Context, command string) (*Result, error)
}

// Local executes commands through the local shell.
type Local struct {
	// Timeout bounds each command; zero means the caller's context governs.
	Timeout time.Duration
}

// NewLocal creates a Local executor with the given per-command timeout.
func NewLocal(timeout time.Duration) *Local {
	return &Local{Timeout: timeout}
}

// Execute implements Executor using /bin/sh -c.
func (l *Local) Execute(ctx context.Context, command string) (*Result, error) {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	slog.Debug("executing host command", "command", firstLine(command))

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		if ctx.Err() != nil {
			return res, apperrors.Wrap(apperrors.ErrCodeTimeout,
				"host command exceeded its time limit", ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Command ran to completion with a non-zero status; the
			// caller decides whether that is a failure.
			slog.Debug("host command exited non-zero",
				"command", firstLine(command),
				"exit_code", res.ExitCode,
				"duration", time.Since(start).Round(time.Millisecond),
			)
			return res, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInstallation,
			"failed to start host command", err)
	}

	slog.Debug("host command completed",
		"command", firstLine(command),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return res, nil
}

// firstLine trims a multi-line command for log output.
func firstLine(command string) string {
	command = strings.TrimSpace(command)
	if i := strings.IndexByte(command, '\n'); i >= 0 {
		return command[:i] + " ..."
	}
	return command
}
