// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package cmd_test

import (
	"github.com/juju/gnuflag"
	"github.com/juju/testing"
	gc "gopkg.in/check.v1"

	"github.com/theforeman/foreman-installer/cmd"
)

type superCommandSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&superCommandSuite{})

func newSuper(global *string) *cmd.SuperCommand {
	super := cmd.NewSuperCommand(cmd.SuperCommandParams{
		Name:    "hooks",
		Purpose: "run hooks",
		Doc:     "hooks-doc",
		GlobalFlags: func(f *gnuflag.FlagSet) {
			f.StringVar(global, "config", "default.yaml", "config file")
		},
	})
	super.Register(&TestCommand{Name: "flip"})
	super.Register(&TestCommand{Name: "flapbabble"})
	return super
}

func (s *superCommandSuite) TestDispatch(c *gc.C) {
	var global string
	super := newSuper(&global)
	ctx := dummyContext(c)
	code := cmd.Main(super, ctx, []string{"--config", "x.yaml", "flip", "--option", "flipped"})
	c.Check(code, gc.Equals, 0)
	c.Check(global, gc.Equals, "x.yaml")
	c.Check(bufferString(ctx.Stdout), gc.Equals, "flipped\n")
	c.Check(super.Info().Name, gc.Equals, "hooks flip")
}

func (s *superCommandSuite) TestSubcommandFlagsInterspersed(c *gc.C) {
	var global string
	ctx := dummyContext(c)
	code := cmd.Main(newSuper(&global), ctx, []string{"flapbabble", "--option", "babbled"})
	c.Check(code, gc.Equals, 0)
	c.Check(global, gc.Equals, "default.yaml")
	c.Check(bufferString(ctx.Stdout), gc.Equals, "babbled\n")
}

func (s *superCommandSuite) TestNoCommand(c *gc.C) {
	var global string
	ctx := dummyContext(c)
	code := cmd.Main(newSuper(&global), ctx, nil)
	c.Check(code, gc.Equals, 2)
	c.Check(bufferString(ctx.Stderr), gc.Matches, "(?s)ERROR no command specified\nusage: hooks \\[options\\] <command> ...\n.*")
}

func (s *superCommandSuite) TestUnknownCommand(c *gc.C) {
	var global string
	ctx := dummyContext(c)
	code := cmd.Main(newSuper(&global), ctx, []string{"flop"})
	c.Check(code, gc.Equals, 2)
	c.Check(bufferString(ctx.Stderr), gc.Matches, "(?s)ERROR unrecognized command: hooks flop\n.*")
}

func (s *superCommandSuite) TestHelpListsCommands(c *gc.C) {
	var global string
	super := newSuper(&global)
	help := string(super.Info().Help(cmd.NewFlagSet(super)))
	c.Check(help, gc.Matches, `(?s)usage: hooks \[options\] <command> \.\.\.
purpose: run hooks

options:
.*--config.*
hooks-doc

commands:
    flapbabble - flapbabble the installer
    flip       - flip the installer
`)
}

func (s *superCommandSuite) TestRegisterTwicePanics(c *gc.C) {
	var global string
	super := newSuper(&global)
	c.Check(func() { super.Register(&TestCommand{Name: "flip"}) }, gc.PanicMatches, `command already registered: "flip"`)
}

func (s *superCommandSuite) TestRunWithoutInit(c *gc.C) {
	var global string
	err := newSuper(&global).Run(dummyContext(c))
	c.Check(err, gc.ErrorMatches, "no command selected")
}
