// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package facts

import (
	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	"github.com/moby/sys/mountinfo"
	"golang.org/x/sys/unix"
	gc "gopkg.in/check.v1"
)

type mountsSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&mountsSuite{})

func (s *mountsSuite) TestAvailableSpaceWalksUp(c *gc.C) {
	mounts := Mountpoints{"/": 100, "/var": 50}

	available, mount, err := mounts.AvailableSpace("/var/lib/pgsql")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(available, gc.Equals, uint64(50))
	c.Check(mount, gc.Equals, "/var")

	available, mount, err = mounts.AvailableSpace("/opt/data")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(available, gc.Equals, uint64(100))
	c.Check(mount, gc.Equals, "/")
}

func (s *mountsSuite) TestAvailableSpaceExactMount(c *gc.C) {
	mounts := Mountpoints{"/": 100, "/var/lib/pgsql": 7}

	available, _, err := mounts.AvailableSpace("/var/lib/pgsql/")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(available, gc.Equals, uint64(7))
}

func (s *mountsSuite) TestAvailableSpaceEmptyPathIsRoot(c *gc.C) {
	available, mount, err := Mountpoints{"/": 100}.AvailableSpace("")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(available, gc.Equals, uint64(100))
	c.Check(mount, gc.Equals, "/")
}

func (s *mountsSuite) TestAvailableSpaceNoRoot(c *gc.C) {
	_, _, err := Mountpoints{"/var": 50}.AvailableSpace("/srv/pgsql")
	c.Check(errors.IsNotFound(err), jc.IsTrue)
}

func (s *mountsSuite) TestReadMountpoints(c *gc.C) {
	s.PatchValue(&getMounts, func() ([]*mountinfo.Info, error) {
		return []*mountinfo.Info{
			{Mountpoint: "/"},
			{Mountpoint: "/var"},
			{Mountpoint: "/secret"},
		}, nil
	})
	s.PatchValue(&statfs, func(path string, st *unix.Statfs_t) error {
		switch path {
		case "/":
			st.Bavail, st.Bsize = 10, 4096
		case "/var":
			st.Bavail, st.Bsize = 3, 512
		default:
			return unix.EACCES
		}
		return nil
	})

	mounts, err := ReadMountpoints()
	c.Assert(err, jc.ErrorIsNil)
	c.Check(mounts, jc.DeepEquals, Mountpoints{"/": 40960, "/var": 1536})
}

func (s *mountsSuite) TestReadMountpointsError(c *gc.C) {
	s.PatchValue(&getMounts, func() ([]*mountinfo.Info, error) {
		return nil, errors.New("boom")
	})
	_, err := ReadMountpoints()
	c.Check(err, gc.ErrorMatches, "reading mount table: boom")
}

func (s *mountsSuite) TestReadMountpointsNoneUsable(c *gc.C) {
	s.PatchValue(&getMounts, func() ([]*mountinfo.Info, error) {
		return []*mountinfo.Info{{Mountpoint: "/"}}, nil
	})
	s.PatchValue(&statfs, func(string, *unix.Statfs_t) error {
		return unix.EIO
	})
	_, err := ReadMountpoints()
	c.Check(errors.IsNotFound(err), jc.IsTrue)
}
