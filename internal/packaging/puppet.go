// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package packaging

import (
	"context"
	"fmt"
	"os"
	osexec "os/exec"
	"strings"

	"github.com/juju/errors"

	"github.com/theforeman/foreman-installer/internal/exec"
)

// aioPuppetPath is where the puppet all-in-one packages install puppet.
const aioPuppetPath = "/opt/puppetlabs/bin/puppet"

// puppetSuccessCodes are the --detailed-exitcodes statuses that mean the
// catalog applied: 0 is "no changes", 2 is "changes applied".
var puppetSuccessCodes = []int{0, 2}

// Patched out in tests.
var (
	lookPath = osexec.LookPath
	statFile = os.Stat
)

// SearchPuppetPath returns the puppet binary to use, preferring the
// all-in-one installation over whatever is on $PATH.
func SearchPuppetPath() string {
	if _, err := statFile(aioPuppetPath); err == nil {
		return aioPuppetPath
	}
	if path, err := lookPath("puppet"); err == nil {
		return path
	}
	return "puppet"
}

// packageManifest renders a puppet manifest ensuring packages are in state.
func packageManifest(packages []string, state State) string {
	quoted := make([]string, len(packages))
	for i, name := range packages {
		quoted[i] = "'" + name + "'"
	}
	return fmt.Sprintf("package { [%s]: ensure => %s }\n", strings.Join(quoted, ", "), state)
}

// Ensure converges packages to state by applying a puppet manifest.
// Puppet reporting that nothing needed to change is a success.
func (m *Manager) Ensure(ctx context.Context, packages []string, state State) error {
	if err := state.Validate(); err != nil {
		return errors.Trace(err)
	}
	packages, err := uniquePackages(packages)
	if err != nil {
		return errors.Trace(err)
	}
	if len(packages) == 0 {
		return nil
	}

	puppet := m.puppetPath
	if puppet == "" {
		puppet = SearchPuppetPath()
	}
	names := strings.Join(packages, ", ")
	logger.Infof("Ensuring %s to package state %s", names, state)

	cmd := exec.Command{
		Args:  []string{puppet, "apply", "--detailed-exitcodes"},
		Stdin: packageManifest(packages, state),
	}
	outcome := m.runner.Run(ctx, cmd)
	if outcome.Launched && successCode(outcome.ExitCode) {
		return nil
	}

	verb := "are"
	if len(packages) == 1 {
		verb = "is"
	}
	logger.Errorf("Failed to ensure %s %s %s", names, verb, state)
	if stderr := strings.TrimSpace(outcome.Stderr); stderr != "" {
		logger.Errorf("%s", stderr)
	}
	if stdout := strings.TrimSpace(outcome.Stdout); stdout != "" {
		logger.Debugf("%s", stdout)
	}
	if outcome.Launched {
		logger.Debugf("Exit status is %d", outcome.ExitCode)
	}
	return errors.Annotatef(&exec.CommandError{Command: cmd, Outcome: outcome},
		"ensuring %s %s %s", names, verb, state)
}

func successCode(code int) bool {
	for _, ok := range puppetSuccessCodes {
		if code == ok {
			return true
		}
	}
	return false
}
