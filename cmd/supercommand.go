// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package cmd

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"
)

// SuperCommandParams provides a way to have default parameter to the
// NewSuperCommand call.
type SuperCommandParams struct {
	Name    string
	Purpose string
	Doc     string

	// GlobalFlags, if set, adds the flags that are accepted before the
	// subcommand name.
	GlobalFlags func(f *gnuflag.FlagSet)
}

// SuperCommand is a Command that selects a subcommand and assumes its
// properties; any command line arguments that were not used in selecting
// the subcommand are passed down to it.
type SuperCommand struct {
	params  SuperCommandParams
	subcmds map[string]Command
	subcmd  Command
}

// NewSuperCommand creates and initializes a new SuperCommand.
func NewSuperCommand(params SuperCommandParams) *SuperCommand {
	return &SuperCommand{
		params:  params,
		subcmds: make(map[string]Command),
	}
}

// Register makes a subcommand available for use on the command line.
func (c *SuperCommand) Register(subcmd Command) {
	name := subcmd.Info().Name
	if _, found := c.subcmds[name]; found {
		panic(fmt.Sprintf("command already registered: %q", name))
	}
	c.subcmds[name] = subcmd
}

// Info returns a description of the currently selected subcommand, or of
// the SuperCommand itself if no subcommand has been specified.
func (c *SuperCommand) Info() *Info {
	if c.subcmd != nil {
		info := *c.subcmd.Info()
		info.Name = fmt.Sprintf("%s %s", c.params.Name, info.Name)
		return &info
	}
	return &Info{
		Name:    c.params.Name,
		Args:    "<command> ...",
		Purpose: c.params.Purpose,
		Doc:     strings.TrimSpace(c.params.Doc + "\n\n" + c.describeCommands()),
	}
}

func (c *SuperCommand) describeCommands() string {
	names := make([]string, 0, len(c.subcmds))
	longest := 0
	for name := range c.subcmds {
		names = append(names, name)
		if len(name) > longest {
			longest = len(name)
		}
	}
	sort.Strings(names)
	lines := []string{"commands:"}
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("    %-*s - %s", longest, name, c.subcmds[name].Info().Purpose))
	}
	return strings.Join(lines, "\n")
}

// SetFlags adds the global flags, and the flags of the selected
// subcommand if there is one.
func (c *SuperCommand) SetFlags(f *gnuflag.FlagSet) {
	if c.params.GlobalFlags != nil {
		c.params.GlobalFlags(f)
	}
	if c.subcmd != nil {
		c.subcmd.SetFlags(f)
	}
}

// Init initializes the command for running.
func (c *SuperCommand) Init(args []string) error {
	if len(args) == 0 {
		return errors.New("no command specified")
	}
	found, ok := c.subcmds[args[0]]
	if !ok {
		return errors.Errorf("unrecognized command: %s %s", c.params.Name, args[0])
	}
	c.subcmd = found
	f := gnuflag.NewFlagSet(c.Info().Name, gnuflag.ContinueOnError)
	f.SetOutput(io.Discard)
	found.SetFlags(f)
	if err := f.Parse(true, args[1:]); err != nil {
		return err
	}
	return found.Init(f.Args())
}

// Run executes the subcommand that was selected in Init.
func (c *SuperCommand) Run(ctx *Context) error {
	if c.subcmd == nil {
		return errors.New("no command selected")
	}
	logger.Infof("running %s [%s %s]", c.Info().Name, runtime.Compiler, runtime.Version())
	return c.subcmd.Run(ctx)
}
