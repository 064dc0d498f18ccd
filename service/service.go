// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package service

import (
	"context"

	"github.com/juju/loggo/v2"

	"github.com/theforeman/foreman-installer/internal/exec"
	"github.com/theforeman/foreman-installer/service/systemd"
)

var logger = loggo.GetLogger("foreman.service")

// Manager controls system services.
type Manager interface {
	// Stop stops the named services and returns once they are stopped.
	Stop(ctx context.Context, names ...string) error

	// Start starts the named services and returns once they are running.
	Start(ctx context.Context, names ...string) error
}

// These are the supported ways of talking to the init system.
const (
	InitSystemSystemdDBus = "systemd-dbus"
	InitSystemSystemctl   = "systemctl"
)

// Patched out in tests.
var isRunningSystemd = systemd.IsRunning

// DiscoverManager returns a Manager appropriate for the local host. The
// systemd D-Bus API is preferred; when it is not reachable the systemctl
// command is used through runner.
func DiscoverManager(runner exec.Runner) Manager {
	return NewManager(DiscoverInitSystem(), runner)
}

// DiscoverInitSystem returns the name of the way services are controlled
// on the local host.
func DiscoverInitSystem() string {
	if isRunningSystemd() {
		logger.Debugf("discovered init system %q from local host", InitSystemSystemdDBus)
		return InitSystemSystemdDBus
	}
	logger.Debugf("systemd not detected, falling back to %q", InitSystemSystemctl)
	return InitSystemSystemctl
}

// NewManager returns the Manager for the named init system.
func NewManager(initSystem string, runner exec.Runner) Manager {
	switch initSystem {
	case InitSystemSystemdDBus:
		return systemd.NewDBusManager(systemd.NewDBusAPI)
	default:
		return systemd.NewCmdline(runner)
	}
}
