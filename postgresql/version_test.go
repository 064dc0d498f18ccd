// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package postgresql

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/theforeman/foreman-installer/core/facts"
	"github.com/theforeman/foreman-installer/core/os/ostype"
)

type versionSuite struct {
	testing.IsolationSuite

	versionFile string
}

var _ = gc.Suite(&versionSuite{})

func (s *versionSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.versionFile = filepath.Join(c.MkDir(), "PG_VERSION")
}

func (s *versionSuite) writeVersion(c *gc.C, content string) {
	err := os.WriteFile(s.versionFile, []byte(content), 0644)
	c.Assert(err, jc.ErrorIsNil)
}

func (s *versionSuite) TestMajorVersion(c *gc.C) {
	for i, test := range []struct {
		version string
		major   int
		err     string
	}{
		{version: "9", major: 9},
		{version: "9.6", major: 9},
		{version: "13", major: 13},
		{version: " 12\n", major: 12},
		{version: "", err: `PostgreSQL version "" not valid`},
		{version: "nine", err: `PostgreSQL version "nine" not valid`},
		{version: "-1", err: `PostgreSQL version "-1" not valid`},
	} {
		c.Logf("test %d: %q", i, test.version)
		major, err := MajorVersion(test.version)
		if test.err != "" {
			c.Check(err, gc.ErrorMatches, test.err)
			continue
		}
		c.Check(err, jc.ErrorIsNil)
		c.Check(major, gc.Equals, test.major)
	}
}

func (s *versionSuite) TestReadInstalledVersionTrims(c *gc.C) {
	s.writeVersion(c, "9.6\n")
	version, err := ReadInstalledVersion(s.versionFile)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(version, gc.Equals, "9.6")
}

func (s *versionSuite) TestReadInstalledVersionMissing(c *gc.C) {
	_, err := ReadInstalledVersion(s.versionFile)
	c.Check(errors.IsNotFound(err), jc.IsTrue)
}

func (s *versionSuite) TestNeedsUpgradeIsNumeric(c *gc.C) {
	detector := VersionDetector{VersionFile: s.versionFile}
	for _, installed := range []int{1, 9, 10, 12, 13, 14, 100} {
		s.writeVersion(c, strconv.Itoa(installed)+"\n")
		for _, target := range []int{9, 10, 13, 14} {
			needed, err := detector.NeedsUpgrade(target)
			c.Assert(err, jc.ErrorIsNil)
			c.Check(needed, gc.Equals, installed < target, gc.Commentf("installed %d, target %d", installed, target))
		}
	}
}

func (s *versionSuite) TestNeedsUpgradeWithoutMarker(c *gc.C) {
	needed, err := VersionDetector{VersionFile: s.versionFile}.NeedsUpgrade(13)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(needed, jc.IsFalse)
}

func (s *versionSuite) TestNeedsUpgradeGarbageMarker(c *gc.C) {
	s.writeVersion(c, "garbage")
	_, err := VersionDetector{VersionFile: s.versionFile}.NeedsUpgrade(13)
	c.Check(errors.IsNotValid(err), jc.IsTrue)
}

type fakeOSFacts struct {
	release facts.OSRelease
	err     error
}

func (f fakeOSFacts) OSRelease() (facts.OSRelease, error) {
	return f.release, f.err
}

func (s *versionSuite) TestOSRequiresUpgrade(c *gc.C) {
	el8 := facts.OSRelease{ID: "rhel", VersionID: "8.9", Family: ostype.RedHat}
	el9 := facts.OSRelease{ID: "rhel", VersionID: "9.3", Family: ostype.RedHat}
	debian := facts.OSRelease{ID: "debian", VersionID: "8", Family: ostype.Debian}

	for i, test := range []struct {
		release  facts.OSRelease
		version  string
		expected bool
	}{
		{release: el8, version: "10", expected: true},
		{release: el8, version: "12", expected: true},
		{release: el8, version: "13", expected: false},
		{release: el8, version: "", expected: false},
		{release: el9, version: "10", expected: false},
		{release: debian, version: "10", expected: false},
	} {
		c.Logf("test %d: %s %s with %q", i, test.release.ID, test.release.VersionID, test.version)
		os.Remove(s.versionFile)
		if test.version != "" {
			s.writeVersion(c, test.version)
		}
		detector := VersionDetector{VersionFile: s.versionFile, Facts: fakeOSFacts{release: test.release}}
		required, err := detector.OSRequiresUpgrade()
		c.Assert(err, jc.ErrorIsNil)
		c.Check(required, gc.Equals, test.expected)
	}
}

func (s *versionSuite) TestOSRequiresUpgradeFactsError(c *gc.C) {
	detector := VersionDetector{VersionFile: s.versionFile, Facts: fakeOSFacts{err: errors.New("boom")}}
	_, err := detector.OSRequiresUpgrade()
	c.Check(err, gc.ErrorMatches, "reading OS release: boom")
}
