// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

// Package cmd implements the command line plumbing of the installer hooks.
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo/v2"
)

var logger = loggo.GetLogger("foreman.cmd")

// ErrSilent can be returned from Run to signal that Main should exit with
// code 1 without printing anything, because the command reported the
// failure itself.
var ErrSilent = errors.New("cmd: error out silently")

// Context represents the run context of a Command. Command implementations
// should interpret file names relative to Dir (see AbsPath below), and print
// output and errors to Stdout and Stderr respectively.
type Context struct {
	context.Context

	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultContext returns a Context suitable for use in non-hosted
// executables.
func DefaultContext(ctx context.Context) (*Context, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, errors.Trace(err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Context{
		Context: ctx,
		Dir:     abs,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}, nil
}

// AbsPath returns an absolute representation of path, with relative paths
// interpreted as relative to ctx.Dir.
func (ctx *Context) AbsPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(ctx.Dir, path)
}

// Info holds everything necessary to describe a Command's intent and usage.
type Info struct {
	// Name is the Command's name.
	Name string

	// Args describes the command's expected positional arguments.
	Args string

	// Purpose is a short explanation of the Command's purpose.
	Purpose string

	// Doc is the long documentation for the Command.
	Doc string
}

// Usage combines Name and Args to describe the Command's intended usage.
func (i *Info) Usage() string {
	if i.Args == "" {
		return i.Name + " [options]"
	}
	return fmt.Sprintf("%s [options] %s", i.Name, i.Args)
}

// Help renders i's content, along with documentation for any flags
// defined in f.
func (i *Info) Help(f *gnuflag.FlagSet) []byte {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "usage: %s\n", i.Usage())
	if i.Purpose != "" {
		fmt.Fprintf(buf, "purpose: %s\n", i.Purpose)
	}
	var opts bytes.Buffer
	f.SetOutput(&opts)
	f.PrintDefaults()
	f.SetOutput(io.Discard)
	if opts.Len() > 0 {
		fmt.Fprintf(buf, "\noptions:\n%s", opts.String())
	}
	if i.Doc != "" {
		fmt.Fprintf(buf, "\n%s\n", strings.TrimSpace(i.Doc))
	}
	return buf.Bytes()
}

// Command is implemented by types that interpret command-line arguments.
type Command interface {
	// Info returns information about the Command.
	Info() *Info

	// SetFlags adds command specific flags to the flag set.
	SetFlags(f *gnuflag.FlagSet)

	// Init initializes the Command before running; args holds the
	// positional arguments left once the flags have been parsed.
	Init(args []string) error

	// Run will execute the Command as directed by the options and positional
	// arguments passed to Init.
	Run(ctx *Context) error
}

// NewFlagSet returns a FlagSet initialized for use with c.
func NewFlagSet(c Command) *gnuflag.FlagSet {
	f := gnuflag.NewFlagSet(c.Info().Name, gnuflag.ContinueOnError)
	f.SetOutput(io.Discard)
	c.SetFlags(f)
	return f
}

// Parse parses args on c. This must be called before c is Run.
func Parse(c Command, args []string) error {
	f := NewFlagSet(c)
	if err := f.Parse(false, args); err != nil {
		return err
	}
	return c.Init(f.Args())
}

// CheckEmpty is a utility function that returns an error if args is not empty.
func CheckEmpty(args []string) error {
	if len(args) != 0 {
		return errors.Errorf("unrecognized args: %q", args)
	}
	return nil
}

// Main parses args on c and runs it, returning the exit code: 0 on
// success, 1 when Run fails and 2 when the arguments are unusable.
func Main(c Command, ctx *Context, args []string) int {
	if err := Parse(c, args); err != nil {
		if err == gnuflag.ErrHelp {
			ctx.Stdout.Write(c.Info().Help(NewFlagSet(c)))
			return 0
		}
		fmt.Fprintf(ctx.Stderr, "ERROR %v\n", err)
		ctx.Stderr.Write(c.Info().Help(NewFlagSet(c)))
		return 2
	}
	if err := c.Run(ctx); err != nil {
		logger.Debugf("%s command failed: %v", c.Info().Name, err)
		if err != ErrSilent {
			fmt.Fprintf(ctx.Stderr, "ERROR %v\n", err)
		}
		return 1
	}
	return 0
}
