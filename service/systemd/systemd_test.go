// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package systemd

import (
	"context"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/theforeman/foreman-installer/internal/exec/exectesting"
)

type dbusSuite struct {
	testing.IsolationSuite

	stub    *testing.Stub
	conn    *StubDbusAPI
	manager *DBusManager
}

var _ = gc.Suite(&dbusSuite{})

func (s *dbusSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)

	s.stub = &testing.Stub{}
	s.conn = &StubDbusAPI{Stub: s.stub}
	s.manager = NewDBusManager(func(context.Context) (DBusAPI, error) {
		s.stub.AddCall("newDBus")
		return s.conn, nil
	})
}

func (s *dbusSuite) TestStop(c *gc.C) {
	err := s.manager.Stop(context.Background(), "foreman", "postgresql.service")
	c.Assert(err, jc.ErrorIsNil)

	s.stub.CheckCallNames(c, "newDBus", "StopUnit", "StopUnit", "Close")
	s.stub.CheckCall(c, 1, "StopUnit", "foreman.service", "replace")
	s.stub.CheckCall(c, 2, "StopUnit", "postgresql.service", "replace")
}

func (s *dbusSuite) TestStart(c *gc.C) {
	err := s.manager.Start(context.Background(), "postgresql")
	c.Assert(err, jc.ErrorIsNil)

	s.stub.CheckCallNames(c, "newDBus", "StartUnit", "Close")
	s.stub.CheckCall(c, 1, "StartUnit", "postgresql.service", "replace")
}

func (s *dbusSuite) TestStartJobFailed(c *gc.C) {
	s.conn.Results = map[string]string{"postgresql.service": "failed"}

	err := s.manager.Start(context.Background(), "postgresql", "foreman")
	c.Assert(err, gc.ErrorMatches, `failed to start "postgresql.service" \(job result "failed"\)`)
	s.stub.CheckCallNames(c, "newDBus", "StartUnit", "Close")
}

func (s *dbusSuite) TestStopRequestError(c *gc.C) {
	s.stub.SetErrors(errors.New("access denied"))

	err := s.manager.Stop(context.Background(), "postgresql")
	c.Assert(err, gc.ErrorMatches, `dbus stop request for "postgresql.service" failed: access denied`)
}

func (s *dbusSuite) TestConnectError(c *gc.C) {
	manager := NewDBusManager(func(context.Context) (DBusAPI, error) {
		return nil, errors.New("no bus")
	})
	err := manager.Stop(context.Background(), "postgresql")
	c.Assert(err, gc.ErrorMatches, "connecting to systemd: no bus")
}

func (s *dbusSuite) TestNothingToDo(c *gc.C) {
	err := s.manager.Stop(context.Background())
	c.Assert(err, jc.ErrorIsNil)
	s.stub.CheckNoCalls(c)
}

func (s *dbusSuite) TestPatternNotSupported(c *gc.C) {
	err := s.manager.Stop(context.Background(), "pulpcore-worker@*")
	c.Check(errors.IsNotSupported(err), jc.IsTrue)
	s.stub.CheckNoCalls(c)
}

type cmdlineSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&cmdlineSuite{})

func (s *cmdlineSuite) TestStopStart(c *gc.C) {
	runner := exectesting.NewStubRunner()
	cmdline := NewCmdline(runner)

	err := cmdline.Stop(context.Background(), "foreman", "pulpcore-worker@*", "postgresql")
	c.Assert(err, jc.ErrorIsNil)
	err = cmdline.Start(context.Background(), "postgresql")
	c.Assert(err, jc.ErrorIsNil)

	runner.CheckArgvs(c,
		[]string{"systemctl", "stop", "--", "foreman.service", "pulpcore-worker@*.service", "postgresql.service"},
		[]string{"systemctl", "start", "--", "postgresql.service"},
	)
}

func (s *cmdlineSuite) TestFailure(c *gc.C) {
	runner := exectesting.NewStubRunner().On(exectesting.Failure(5, "Unit postgresql.service not loaded."), "systemctl")

	err := NewCmdline(runner).Start(context.Background(), "postgresql")
	c.Assert(err, gc.ErrorMatches, `failed to start services: systemctl start -- postgresql.service failed with exit status 5`)
}

func (s *cmdlineSuite) TestInvalidName(c *gc.C) {
	runner := exectesting.NewStubRunner()
	err := NewCmdline(runner).Stop(context.Background(), "--all")
	c.Check(errors.IsNotValid(err), jc.IsTrue)
	runner.CheckNoCalls(c)
}

type unitNameSuite struct{}

var _ = gc.Suite(&unitNameSuite{})

func (*unitNameSuite) TestUnitName(c *gc.C) {
	for name, expected := range map[string]string{
		"postgresql":                   "postgresql.service",
		"postgresql.service":           "postgresql.service",
		"foreman.socket":               "foreman.socket",
		"dynflow-sidekiq@orchestrator": "dynflow-sidekiq@orchestrator.service",
		"postgresql-13.4":              "postgresql-13.4.service",
	} {
		unit, err := UnitName(name)
		c.Assert(err, jc.ErrorIsNil)
		c.Check(unit, gc.Equals, expected)
	}
	for _, bad := range []string{"", "a b", "../etc", "-x"} {
		_, err := UnitName(bad)
		c.Check(errors.IsNotValid(err), jc.IsTrue, gc.Commentf("name %q", bad))
	}
}
