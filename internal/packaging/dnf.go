// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package packaging

import (
	"context"
	"fmt"

	"github.com/juju/errors"

	"github.com/theforeman/foreman-installer/internal/exec"
)

// dnfModuleCommand is the prefix of every module operation; it never
// prompts.
var dnfModuleCommand = []string{"dnf", "--assumeyes", "module"}

// SwitchModule repoints module to stream, replacing installed packages of
// the module with the versions from the new stream.
func (m *Manager) SwitchModule(ctx context.Context, module, stream string) error {
	if err := ValidatePackageName(module); err != nil {
		return errors.Trace(err)
	}
	if err := ValidatePackageName(stream); err != nil {
		return errors.Annotate(err, "module stream")
	}
	args := append([]string(nil), dnfModuleCommand...)
	args = append(args, "switch-to", fmt.Sprintf("%s:%s", module, stream))

	logger.Infof("switching module %s to stream %s", module, stream)
	if _, err := exec.RunChecked(ctx, m.runner, exec.Command{Args: args}); err != nil {
		return errors.Annotatef(err, "switching module %s to %s", module, stream)
	}
	return nil
}
