// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package postgresql

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/juju/errors"

	"github.com/theforeman/foreman-installer/core/facts"
)

// MountFacts supplies the mount point inventory of the host.
type MountFacts interface {
	Mountpoints() (facts.Mountpoints, error)
}

// DiskSpaceRequirement compares the space an upgrade needs with the space
// available where the new cluster is created.
type DiskSpaceRequirement struct {
	// Required is the on-disk size of the current data directory.
	Required uint64

	// Available is the free space of the filesystem holding Path.
	Available uint64

	// Path is where the space is needed.
	Path string

	// MountPoint is the mount point Available was read from.
	MountPoint string
}

// Satisfied reports whether there is enough space.
func (r DiskSpaceRequirement) Satisfied() bool {
	return r.Available >= r.Required
}

// Deficit returns how many bytes are missing.
func (r DiskSpaceRequirement) Deficit() uint64 {
	if r.Satisfied() {
		return 0
	}
	return r.Required - r.Available
}

// megabytes rounds n up to whole mebibytes.
func megabytes(n uint64) uint64 {
	return (n + humanize.MiByte - 1) / humanize.MiByte
}

// blockSize is the unit of stat's st_blocks.
const blockSize = 512

// DiskUsage returns the space allocated to the tree rooted at dir. Files
// with several hard links are counted once and sparse files only count
// their allocated blocks. A symlinked dir is measured at its target.
func DiskUsage(dir string) (uint64, error) {
	root, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return 0, errors.Annotatef(err, "measuring %q", dir)
	}
	type inode struct{ dev, ino uint64 }
	seen := make(map[inode]bool)
	var total uint64
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		st, ok := info.Sys().(*syscall.Stat_t)
		if !ok {
			return errors.NotSupportedf("measuring %q on this platform", path)
		}
		if uint64(st.Nlink) > 1 && !info.IsDir() {
			key := inode{dev: uint64(st.Dev), ino: uint64(st.Ino)}
			if seen[key] {
				return nil
			}
			seen[key] = true
		}
		total += uint64(st.Blocks) * blockSize
		return nil
	})
	if err != nil {
		return 0, errors.Annotatef(err, "measuring %q", dir)
	}
	return total, nil
}

// StorageChecker verifies there is room for the upgraded cluster.
type StorageChecker struct {
	Mounts MountFacts

	// Usage measures a directory; nil means DiskUsage.
	Usage func(dir string) (uint64, error)
}

// Check requires the filesystem holding installRoot to have at least as
// much space available as dataDir occupies. Failing to measure either
// side is a failure as well.
func (s StorageChecker) Check(dataDir, installRoot string) (DiskSpaceRequirement, error) {
	requirement := DiskSpaceRequirement{Path: installRoot}

	usage := s.Usage
	if usage == nil {
		usage = DiskUsage
	}
	required, err := usage(dataDir)
	if err != nil {
		return requirement, &PreconditionError{Message: "Failed to verify available disk space", Err: err}
	}
	requirement.Required = required

	if s.Mounts == nil {
		return requirement, &PreconditionError{
			Message: "Failed to verify available disk space",
			Err:     errors.NotValidf("storage checker without mount facts"),
		}
	}
	mounts, err := s.Mounts.Mountpoints()
	if err != nil {
		return requirement, &PreconditionError{Message: "Failed to verify available disk space", Err: err}
	}
	available, mountPoint, err := mounts.AvailableSpace(installRoot)
	if err != nil {
		return requirement, &PreconditionError{Message: "Failed to verify available disk space", Err: err}
	}
	requirement.Available = available
	requirement.MountPoint = mountPoint

	logger.Debugf("upgrade needs %s at %s, %s available on %s",
		humanize.IBytes(required), installRoot, humanize.IBytes(available), mountPoint)
	if !requirement.Satisfied() {
		return requirement, &PreconditionError{
			Message: fmt.Sprintf(
				"The PostgreSQL upgrade requires at least %d MB of storage to be available at %s, %d MB more are needed.",
				megabytes(required), installRoot, megabytes(requirement.Deficit())),
			Requirement: &requirement,
		}
	}
	return requirement, nil
}
