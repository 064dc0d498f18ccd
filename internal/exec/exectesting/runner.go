// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

// Package exectesting provides a scripted exec.Runner for tests.
package exectesting

import (
	"context"

	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/theforeman/foreman-installer/internal/exec"
)

// Success returns the outcome of a program that exited with status 0.
func Success(stdout string) exec.Outcome {
	return exec.Outcome{Stdout: stdout, Launched: true, Succeeded: true}
}

// Failure returns the outcome of a program that exited with the given
// non-zero status.
func Failure(code int, stderr string) exec.Outcome {
	return exec.Outcome{Stderr: stderr, Launched: true, ExitCode: code}
}

// NotFound returns the outcome of a program that could not be launched.
func NotFound() exec.Outcome {
	return exec.Outcome{Stderr: "executable file not found in $PATH"}
}

type response struct {
	prefix  []string
	outcome exec.Outcome
}

// StubRunner records every command it is asked to run and answers with
// scripted outcomes. Commands with no scripted outcome succeed with no
// output.
type StubRunner struct {
	*testing.Stub

	responses []response
	commands  []exec.Command
}

// NewStubRunner returns a StubRunner with no scripted outcomes.
func NewStubRunner() *StubRunner {
	return &StubRunner{Stub: &testing.Stub{}}
}

// On scripts the outcome for commands whose arguments start with prefix.
// A command run through "runuser ... --" also matches on the arguments
// following the "--". Later scripts take precedence.
func (r *StubRunner) On(outcome exec.Outcome, prefix ...string) *StubRunner {
	r.responses = append(r.responses, response{prefix: prefix, outcome: outcome})
	return r
}

// Run implements exec.Runner.
func (r *StubRunner) Run(ctx context.Context, cmd exec.Command) exec.Outcome {
	r.AddCall("Run", cmd)
	r.commands = append(r.commands, cmd)
	for i := len(r.responses) - 1; i >= 0; i-- {
		if matches(cmd.Args, r.responses[i].prefix) {
			return r.responses[i].outcome
		}
	}
	return Success("")
}

// Commands returns every command run so far.
func (r *StubRunner) Commands() []exec.Command {
	return r.commands
}

// Argvs returns the arguments of every command run so far.
func (r *StubRunner) Argvs() [][]string {
	argvs := make([][]string, len(r.commands))
	for i, cmd := range r.commands {
		argvs[i] = cmd.Args
	}
	return argvs
}

// CheckArgvs checks the arguments of every command run so far.
func (r *StubRunner) CheckArgvs(c *gc.C, expected ...[]string) {
	c.Check(r.Argvs(), jc.DeepEquals, expected)
}

// Find returns the first command run whose arguments match prefix.
func (r *StubRunner) Find(prefix ...string) (exec.Command, bool) {
	for _, cmd := range r.commands {
		if matches(cmd.Args, prefix) {
			return cmd, true
		}
	}
	return exec.Command{}, false
}

func matches(args, prefix []string) bool {
	if hasPrefix(args, prefix) {
		return true
	}
	if len(args) > 0 && args[0] == "runuser" {
		for i, arg := range args {
			if arg == "--" {
				return hasPrefix(args[i+1:], prefix)
			}
		}
	}
	return false
}

func hasPrefix(args, prefix []string) bool {
	if len(prefix) > len(args) {
		return false
	}
	for i := range prefix {
		if args[i] != prefix[i] {
			return false
		}
	}
	return true
}
