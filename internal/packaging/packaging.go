// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

// Package packaging converges operating system packages: dnf module
// streams, rpm presence probes and puppet-backed package state.
package packaging

import (
	"regexp"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/theforeman/foreman-installer/internal/exec"
)

var logger = loggo.GetLogger("foreman.packaging")

// State is a desired package state.
type State string

const (
	// Installed means the package is present in any version.
	Installed State = "installed"
	// Latest means the package is upgraded to the newest available version.
	Latest State = "latest"
)

// Validate checks that the state is one puppet understands.
func (s State) Validate() error {
	switch s {
	case Installed, Latest:
		return nil
	}
	return errors.NotValidf("package state %q", string(s))
}

var packageNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._+:-]*$`)

// ValidatePackageName checks that name can be safely placed in a manifest
// or passed to the package manager.
func ValidatePackageName(name string) error {
	if !packageNameRe.MatchString(name) {
		return errors.NotValidf("package name %q", name)
	}
	return nil
}

// Manager manipulates packages on the local host.
type Manager struct {
	runner     exec.Runner
	puppetPath string
}

// NewManager returns a Manager running commands through runner. An empty
// puppetPath means the puppet binary is searched for.
func NewManager(runner exec.Runner, puppetPath string) *Manager {
	return &Manager{
		runner:     runner,
		puppetPath: puppetPath,
	}
}

// uniquePackages drops duplicates while keeping the first occurrence of
// every name in place.
func uniquePackages(packages []string) ([]string, error) {
	seen := set.NewStrings()
	result := make([]string, 0, len(packages))
	for _, name := range packages {
		if err := ValidatePackageName(name); err != nil {
			return nil, errors.Trace(err)
		}
		if seen.Contains(name) {
			continue
		}
		seen.Add(name)
		result = append(result, name)
	}
	return result, nil
}
