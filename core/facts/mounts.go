// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package facts

import (
	"path/filepath"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/moby/sys/mountinfo"
	"golang.org/x/sys/unix"
)

var logger = loggo.GetLogger("foreman.facts")

// Mountpoints maps a mount point to the number of bytes available to
// unprivileged users on it.
type Mountpoints map[string]uint64

// AvailableSpace returns the space available to dir. When dir is not a
// mount point itself its parents are tried in turn, so the figure
// reported is that of the filesystem dir would be created on.
func (m Mountpoints) AvailableSpace(dir string) (uint64, string, error) {
	if dir == "" {
		dir = "/"
	}
	dir = filepath.Clean(dir)
	for {
		if available, ok := m[dir]; ok {
			return available, dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return 0, "", errors.NotFoundf("mount point for %q", dir)
		}
		dir = parent
	}
}

// statfs is patched out in tests.
var statfs = unix.Statfs

// getMounts is patched out in tests.
var getMounts = func() ([]*mountinfo.Info, error) {
	return mountinfo.GetMounts(nil)
}

// ReadMountpoints builds the mount point inventory of the host. Mount
// points that cannot be queried, for instance because of permissions, are
// left out.
func ReadMountpoints() (Mountpoints, error) {
	mounts, err := getMounts()
	if err != nil {
		return nil, errors.Annotate(err, "reading mount table")
	}
	result := make(Mountpoints, len(mounts))
	for _, mount := range mounts {
		var st unix.Statfs_t
		if err := statfs(mount.Mountpoint, &st); err != nil {
			logger.Debugf("skipping mount point %q: %v", mount.Mountpoint, err)
			continue
		}
		result[mount.Mountpoint] = st.Bavail * uint64(st.Bsize)
	}
	if len(result) == 0 {
		return nil, errors.NotFoundf("usable mount points")
	}
	return result, nil
}
