// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package systemd

import (
	"path"
	"strings"

	"github.com/coreos/go-systemd/v22/util"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
)

var logger = loggo.GetLogger("foreman.service.systemd")

// IsRunning returns whether or not systemd is the local init system.
func IsRunning() bool {
	return util.IsRunningSystemd()
}

var unitSuffixes = []string{
	".service", ".socket", ".target", ".timer", ".path", ".mount",
}

// UnitName returns the systemd unit for a service name, adding the
// ".service" suffix unless the name already names a unit type.
func UnitName(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\x00 ") || strings.HasPrefix(name, "-") {
		return "", errors.NotValidf("service name %q", name)
	}
	if ext := path.Ext(name); ext != "" {
		for _, suffix := range unitSuffixes {
			if ext == suffix {
				return name, nil
			}
		}
	}
	return name + ".service", nil
}

func unitNames(names []string) ([]string, error) {
	units := make([]string, len(names))
	for i, name := range names {
		unit, err := UnitName(name)
		if err != nil {
			return nil, errors.Trace(err)
		}
		units[i] = unit
	}
	return units, nil
}
