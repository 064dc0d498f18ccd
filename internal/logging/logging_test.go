// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package logging_test

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/juju/loggo/v2"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/theforeman/foreman-installer/internal/logging"
)

type loggingSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&loggingSuite{})

func (s *loggingSuite) TearDownTest(c *gc.C) {
	loggo.ResetWriters()
	loggo.ResetLogging()
	s.IsolationSuite.TearDownTest(c)
}

func (s *loggingSuite) TestSetupLogFile(c *gc.C) {
	path := filepath.Join(c.MkDir(), "log", "upgrade.log")
	closer, err := logging.Setup(logging.Config{
		Spec:    "<root>=DEBUG",
		LogFile: path,
	})
	c.Assert(err, jc.ErrorIsNil)

	loggo.GetLogger("foreman.test").Debugf("hello from the test")
	c.Assert(closer.Close(), jc.ErrorIsNil)

	data, err := os.ReadFile(path)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(string(data), gc.Matches, `(?s).*DEBUG foreman\.test .*hello from the test\n`)
}

func (s *loggingSuite) TestSetupNoLogFile(c *gc.C) {
	closer, err := logging.Setup(logging.Config{Spec: "foreman=TRACE"})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(closer.Close(), jc.ErrorIsNil)
	c.Check(loggo.GetLogger("foreman.exec").LogLevel(), gc.Equals, loggo.TRACE)
}

func (s *loggingSuite) TestSetupBadSpec(c *gc.C) {
	_, err := logging.Setup(logging.Config{Spec: "<root>=LOUD"})
	c.Check(err, gc.ErrorMatches, "configuring loggers: .*")
}

type reporterSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&reporterSuite{})

func (s *reporterSuite) TestSay(c *gc.C) {
	var tw loggo.TestWriter
	c.Assert(loggo.RegisterWriter("reporter-test", &tw), jc.ErrorIsNil)
	defer func() { _, _ = loggo.RemoveWriter("reporter-test") }()

	logger := loggo.GetLogger("foreman.reporter")
	logger.SetLogLevel(loggo.DEBUG)

	var out bytes.Buffer
	reporter := logging.NewReporter(logger, &out)
	reporter.Noticef("Upgrading PostgreSQL packages")
	reporter.Errorf("something %s", "broke")
	reporter.Successf("done\n")

	c.Check(out.String(), gc.Equals, "Upgrading PostgreSQL packages\nsomething broke\ndone\n")
	var logged []string
	for _, entry := range tw.Log() {
		logged = append(logged, entry.Level.String()+" "+entry.Message)
	}
	c.Check(logged, jc.DeepEquals, []string{
		"INFO Upgrading PostgreSQL packages",
		"ERROR something broke",
		"INFO done\n",
	})
}
