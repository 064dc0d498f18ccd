// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

// Package exec runs external programs on behalf of the installer hooks.
//
// Commands are always described as an argument vector plus explicit
// environment overrides. Nothing is ever interpolated into shell text, so
// values such as locale names or package lists reach the program exactly as
// given.
package exec

import (
	"bytes"
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	osexec "os/exec"
	"sort"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/kballard/go-shellquote"
)

var logger = loggo.GetLogger("foreman.exec")

// Command describes a single invocation of an external program.
type Command struct {
	// Args holds the program followed by its arguments.
	Args []string

	// Env holds environment overrides layered on top of the
	// environment of the current process.
	Env map[string]string

	// Stdin, if not empty, is written to the standard input of the program.
	Stdin string

	// Dir is the working directory. Empty means the current directory.
	Dir string
}

// String renders the command the way a user would type it into a shell.
// It is only used for logging and error messages.
func (c Command) String() string {
	return shellquote.Join(c.Args...)
}

// Validate checks that the command names a program.
func (c Command) Validate() error {
	if len(c.Args) == 0 || c.Args[0] == "" {
		return errors.NotValidf("empty command")
	}
	for k := range c.Env {
		if k == "" || strings.ContainsAny(k, "=\x00") {
			return errors.NotValidf("environment variable name %q", k)
		}
	}
	return nil
}

// Outcome is the result of running a Command.
type Outcome struct {
	Stdout string
	Stderr string

	// Succeeded is true when the program ran and exited with status 0.
	Succeeded bool

	// Launched is false when the program could not be started at all,
	// typically because the executable does not exist. ExitCode is
	// meaningless in that case.
	Launched bool

	// ExitCode is the exit status of the program.
	ExitCode int
}

// Combined returns stdout followed by stderr.
func (o Outcome) Combined() string {
	if o.Stderr == "" {
		return o.Stdout
	}
	if o.Stdout == "" || strings.HasSuffix(o.Stdout, "\n") {
		return o.Stdout + o.Stderr
	}
	return o.Stdout + "\n" + o.Stderr
}

// Runner runs commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) Outcome
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, cmd Command) Outcome

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, cmd Command) Outcome {
	return f(ctx, cmd)
}

// LocalRunner runs commands on the local host.
type LocalRunner struct{}

// NewRunner returns a Runner that executes programs on the local host.
func NewRunner() *LocalRunner {
	return &LocalRunner{}
}

// Run implements Runner. Every command line and every line of output is
// logged at debug level.
func (r *LocalRunner) Run(ctx context.Context, cmd Command) Outcome {
	if err := cmd.Validate(); err != nil {
		logger.Errorf("refusing to run command: %v", err)
		return Outcome{Stderr: err.Error()}
	}

	logger.Debugf("Executing: %s", cmd)
	if len(cmd.Env) > 0 {
		logger.Debugf("with environment overrides: %s", strings.Join(envKeys(cmd.Env), ", "))
		logger.Tracef("environment overrides: %v", cmd.Env)
	}

	c := osexec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	c.Dir = cmd.Dir
	c.Env = mergeEnv(os.Environ(), cmd.Env)
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	outcome := Outcome{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	logOutput(outcome.Combined())

	switch {
	case err == nil:
		outcome.Launched = true
		outcome.Succeeded = true
	case IsCmdNotFoundErr(err):
		logger.Debugf("command %q not found: %v", cmd.Args[0], err)
		if outcome.Stderr == "" {
			outcome.Stderr = err.Error()
		}
	default:
		var exitErr *osexec.ExitError
		if stderrors.As(err, &exitErr) {
			outcome.Launched = true
			outcome.ExitCode = exitErr.ExitCode()
			logger.Debugf("exit status is %d", outcome.ExitCode)
		} else {
			logger.Debugf("running %q failed: %v", cmd.Args[0], err)
			if outcome.Stderr == "" {
				outcome.Stderr = err.Error()
			}
		}
	}
	return outcome
}

// IsCmdNotFoundErr returns true if the provided error indicates that the
// command passed to exec.LookPath or exec.Command was not found.
func IsCmdNotFoundErr(err error) bool {
	if stderrors.Is(err, osexec.ErrNotFound) || stderrors.Is(err, fs.ErrNotExist) {
		return true
	}
	var pathErr *fs.PathError
	return stderrors.As(err, &pathErr) && stderrors.Is(pathErr.Err, fs.ErrPermission)
}

func logOutput(output string) {
	if !logger.IsDebugEnabled() {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		if line != "" {
			logger.Debugf("%s", line)
		}
	}
}

func envKeys(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// mergeEnv returns base with every key in overrides replaced or appended.
func mergeEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}
	result := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, ok := overrides[key]; ok {
			continue
		}
		result = append(result, kv)
	}
	for _, k := range envKeys(overrides) {
		result = append(result, k+"="+overrides[k])
	}
	return result
}
