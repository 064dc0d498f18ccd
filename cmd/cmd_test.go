// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/theforeman/foreman-installer/cmd"
)

type cmdSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&cmdSuite{})

func (s *cmdSuite) TestContextAbsPath(c *gc.C) {
	ctx := &cmd.Context{Dir: "/foo/bar"}
	c.Check(ctx.AbsPath("/baz/qux"), gc.Equals, "/baz/qux")
	c.Check(ctx.AbsPath("baz/qux"), gc.Equals, "/foo/bar/baz/qux")
}

func (s *cmdSuite) TestMainSuccess(c *gc.C) {
	ctx := dummyContext(c)
	code := cmd.Main(&TestCommand{Name: "verb"}, ctx, []string{"--option", "success!"})
	c.Check(code, gc.Equals, 0)
	c.Check(bufferString(ctx.Stdout), gc.Equals, "success!\n")
	c.Check(bufferString(ctx.Stderr), gc.Equals, "")
}

func (s *cmdSuite) TestMainEcho(c *gc.C) {
	ctx := dummyContext(c)
	ctx.Stdin = bytes.NewBufferString("hello\n")
	code := cmd.Main(&TestCommand{Name: "verb"}, ctx, []string{"--option", "echo"})
	c.Check(code, gc.Equals, 0)
	c.Check(bufferString(ctx.Stdout), gc.Equals, "hello\n")
}

func (s *cmdSuite) TestMainRunError(c *gc.C) {
	ctx := dummyContext(c)
	code := cmd.Main(&TestCommand{Name: "verb"}, ctx, []string{"--option", "error"})
	c.Check(code, gc.Equals, 1)
	c.Check(bufferString(ctx.Stdout), gc.Equals, "")
	c.Check(bufferString(ctx.Stderr), gc.Equals, "ERROR BAM!\n")
}

func (s *cmdSuite) TestMainRunSilentError(c *gc.C) {
	ctx := dummyContext(c)
	code := cmd.Main(&TestCommand{Name: "verb"}, ctx, []string{"--option", "silent-error"})
	c.Check(code, gc.Equals, 1)
	c.Check(bufferString(ctx.Stderr), gc.Equals, "")
}

func (s *cmdSuite) TestMainInitError(c *gc.C) {
	ctx := dummyContext(c)
	code := cmd.Main(&TestCommand{Name: "verb"}, ctx, []string{"--unknown"})
	c.Check(code, gc.Equals, 2)
	c.Check(bufferString(ctx.Stdout), gc.Equals, "")
	c.Check(bufferString(ctx.Stderr), gc.Matches, "(?s)ERROR flag provided but not defined: -*unknown\nusage: verb .*")

	ctx = dummyContext(c)
	code = cmd.Main(&TestCommand{Name: "verb"}, ctx, []string{"extra"})
	c.Check(code, gc.Equals, 2)
	c.Check(bufferString(ctx.Stderr), gc.Matches, `(?s)ERROR unrecognized args: \["extra"\].*`)
}

func (s *cmdSuite) TestMainHelp(c *gc.C) {
	for _, arg := range []string{"-h", "--help"} {
		ctx := dummyContext(c)
		code := cmd.Main(&TestCommand{Name: "verb"}, ctx, []string{arg})
		c.Check(code, gc.Equals, 0)
		c.Check(bufferString(ctx.Stdout), gc.Matches, "(?s)usage: verb \\[options\\] <something>\npurpose: verb the installer\n\noptions:\n.*--option.*\nverb-doc\n")
	}
}

func (s *cmdSuite) TestHelpMinimal(c *gc.C) {
	command := &TestCommand{Name: "verb", Minimal: true}
	help := command.Info().Help(cmd.NewFlagSet(command))
	c.Check(string(help), gc.Equals, "usage: verb [options]\n")
}

func (s *cmdSuite) TestCheckEmpty(c *gc.C) {
	c.Check(cmd.CheckEmpty(nil), jc.ErrorIsNil)
	c.Check(cmd.CheckEmpty([]string{"boo!"}), gc.ErrorMatches, `unrecognized args: \["boo!"\]`)
}

func (s *cmdSuite) TestFileVar(c *gc.C) {
	ctx := dummyContext(c)
	err := os.WriteFile(filepath.Join(ctx.Dir, "answers.yaml"), []byte("foreman: true\n"), 0644)
	c.Assert(err, jc.ErrorIsNil)

	var f cmd.FileVar
	c.Assert(f.Set("answers.yaml"), jc.ErrorIsNil)
	c.Check(f.String(), gc.Equals, "answers.yaml")
	data, err := f.Read(ctx)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(string(data), gc.Equals, "foreman: true\n")

	c.Assert(f.Set("missing.yaml"), jc.ErrorIsNil)
	_, err = f.Read(ctx)
	c.Check(errors.IsNotFound(err), jc.IsTrue)
}
