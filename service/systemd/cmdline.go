// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package systemd

import (
	"context"

	"github.com/juju/errors"

	"github.com/theforeman/foreman-installer/internal/exec"
)

const executable = "systemctl"

// Cmdline controls services by running systemctl.
type Cmdline struct {
	runner exec.Runner
}

// NewCmdline returns a Cmdline running systemctl through runner.
func NewCmdline(runner exec.Runner) *Cmdline {
	return &Cmdline{runner: runner}
}

// Stop implements service.Manager.
func (c *Cmdline) Stop(ctx context.Context, names ...string) error {
	return errors.Trace(c.run(ctx, "stop", names))
}

// Start implements service.Manager.
func (c *Cmdline) Start(ctx context.Context, names ...string) error {
	return errors.Trace(c.run(ctx, "start", names))
}

func (c *Cmdline) run(ctx context.Context, op string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	units, err := unitNames(names)
	if err != nil {
		return errors.Trace(err)
	}
	args := append([]string{executable, op, "--"}, units...)
	if _, err := exec.RunChecked(ctx, c.runner, exec.Command{Args: args}); err != nil {
		return errors.Annotatef(err, "failed to %s services", op)
	}
	return nil
}
