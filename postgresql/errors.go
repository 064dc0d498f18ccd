// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package postgresql

import (
	"fmt"
	"strings"

	"github.com/theforeman/foreman-installer/internal/exec"
)

// CommandError reports an external command that could not be started or
// exited unsuccessfully.
type CommandError = exec.CommandError

// PreconditionError reports that the host is not fit for an upgrade. It is
// always raised before anything on the host has been changed.
type PreconditionError struct {
	Message string

	// Requirement is set when space could be measured.
	Requirement *DiskSpaceRequirement

	// Err is the measurement failure, if any.
	Err error
}

// Error implements error.
func (e *PreconditionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the measurement failure.
func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// ParseError reports command output that lacks the data the upgrade
// depends on.
type ParseError struct {
	// What names the data that was expected.
	What string

	// Missing lists the keys that were not found.
	Missing []string

	// Output is the text that was parsed.
	Output string

	// Err is set when the keys were found but a value is unusable.
	Err error
}

// Error implements error.
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot determine %s: %v", e.What, e.Err)
	}
	return fmt.Sprintf("cannot determine %s: %s not found in output", e.What, strings.Join(e.Missing, ", "))
}

// Unwrap returns the invalid value error, if any.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// StepError is returned by Upgrader.Run. State is the step that failed.
type StepError struct {
	State State
	Err   error
}

// Error implements error.
func (e *StepError) Error() string {
	return fmt.Sprintf("PostgreSQL upgrade failed at %s: %v", e.State, e.Err)
}

// Unwrap returns the cause of the failure.
func (e *StepError) Unwrap() error {
	return e.Err
}
