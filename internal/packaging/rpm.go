// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package packaging

import (
	"context"

	"github.com/juju/errors"

	"github.com/theforeman/foreman-installer/internal/exec"
)

// Installed reports whether the package is installed. rpm exiting non-zero
// simply means the package is absent; only a missing rpm binary is an
// error.
func (m *Manager) Installed(ctx context.Context, name string) (bool, error) {
	if err := ValidatePackageName(name); err != nil {
		return false, errors.Trace(err)
	}
	cmd := exec.Command{Args: []string{"rpm", "-q", name}}
	outcome := m.runner.Run(ctx, cmd)
	if !outcome.Launched {
		return false, &exec.CommandError{Command: cmd, Outcome: outcome}
	}
	if !outcome.Succeeded {
		logger.Debugf("package %s is not installed", name)
		return false, nil
	}
	return true, nil
}

// InstalledOf returns the subset of names that are installed, in order.
func (m *Manager) InstalledOf(ctx context.Context, names ...string) ([]string, error) {
	var present []string
	for _, name := range names {
		ok, err := m.Installed(ctx, name)
		if err != nil {
			return nil, errors.Trace(err)
		}
		if ok {
			present = append(present, name)
		}
	}
	return present, nil
}
