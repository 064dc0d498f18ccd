// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package postgresql

import (
	"os"
	"strconv"
	"strings"

	"github.com/juju/errors"

	"github.com/theforeman/foreman-installer/core/facts"
	"github.com/theforeman/foreman-installer/core/os/ostype"
)

// EL8TargetVersion is the PostgreSQL version the platform requires on
// Enterprise Linux 8, whose default module stream ships an older one.
const EL8TargetVersion = 13

// OSFacts describes the running operating system.
type OSFacts interface {
	OSRelease() (facts.OSRelease, error)
}

// ReadInstalledVersion returns the trimmed contents of the cluster's
// version marker. A missing marker is reported as NotFound.
func ReadInstalledVersion(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", errors.NotFoundf("version marker %q", path)
	} else if err != nil {
		return "", errors.Trace(err)
	}
	return strings.TrimSpace(string(data)), nil
}

// MajorVersion returns the major version of a PostgreSQL version string.
// Releases before 10 used two components for the major version; only the
// first one is significant for ordering, so "9.6" is 9.
func MajorVersion(version string) (int, error) {
	leading, _, _ := strings.Cut(strings.TrimSpace(version), ".")
	major, err := strconv.Atoi(leading)
	if err != nil || major < 0 {
		return 0, errors.NotValidf("PostgreSQL version %q", version)
	}
	return major, nil
}

// VersionDetector decides whether the local cluster is behind.
type VersionDetector struct {
	// VersionFile is the cluster's PG_VERSION marker.
	VersionFile string

	// Facts describes the host; only OSRequiresUpgrade uses it.
	Facts OSFacts
}

// InstalledVersion returns the version of the existing cluster, or
// NotFound when there is none.
func (d VersionDetector) InstalledVersion() (string, error) {
	return ReadInstalledVersion(d.VersionFile)
}

// NeedsUpgrade reports whether the cluster is older than target. Without a
// version marker there is no cluster to upgrade.
func (d VersionDetector) NeedsUpgrade(target int) (bool, error) {
	installed, err := d.InstalledVersion()
	if errors.IsNotFound(err) {
		logger.Debugf("%v, assuming a fresh installation", err)
		return false, nil
	} else if err != nil {
		return false, errors.Trace(err)
	}
	major, err := MajorVersion(installed)
	if err != nil {
		return false, errors.Trace(err)
	}
	return major < target, nil
}

// OSRequiresUpgrade reports whether this is an Enterprise Linux 8 host
// with a cluster older than EL8TargetVersion.
func (d VersionDetector) OSRequiresUpgrade() (bool, error) {
	if d.Facts == nil {
		return false, errors.NotValidf("version detector without facts")
	}
	release, err := d.Facts.OSRelease()
	if err != nil {
		return false, errors.Annotate(err, "reading OS release")
	}
	if release.Family != ostype.RedHat || release.MajorRelease() != "8" {
		logger.Debugf("%s %s does not need a PostgreSQL upgrade", release.Family, release.VersionID)
		return false, nil
	}
	return d.NeedsUpgrade(EL8TargetVersion)
}
