// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package exec

import (
	"context"
	"fmt"
)

// CommandError reports a command that could not be started or that did
// not exit successfully. It carries the captured output for diagnostics.
type CommandError struct {
	Command Command
	Outcome Outcome
}

// Error implements error.
func (e *CommandError) Error() string {
	if !e.Outcome.Launched {
		name := ""
		if len(e.Command.Args) > 0 {
			name = e.Command.Args[0]
		}
		return fmt.Sprintf("command %q not found", name)
	}
	return fmt.Sprintf("%s failed with exit status %d", e.Command, e.Outcome.ExitCode)
}

// NotFound reports whether the executable could not be launched at all.
func (e *CommandError) NotFound() bool {
	return !e.Outcome.Launched
}

// RunChecked runs cmd and returns a *CommandError unless it succeeded.
func RunChecked(ctx context.Context, runner Runner, cmd Command) (Outcome, error) {
	outcome := runner.Run(ctx, cmd)
	if !outcome.Succeeded {
		return outcome, &CommandError{Command: cmd, Outcome: outcome}
	}
	return outcome, nil
}
