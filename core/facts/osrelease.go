// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package facts

import (
	"os"
	"strings"

	"github.com/juju/errors"
	"gopkg.in/ini.v1"

	"github.com/theforeman/foreman-installer/core/os/ostype"
)

// OSReleaseFile is where systemd based distributions describe themselves.
const OSReleaseFile = "/etc/os-release"

// OSRelease describes the running distribution.
type OSRelease struct {
	ID        string
	IDLike    string
	Name      string
	VersionID string
	Family    ostype.OSType
}

// MajorRelease returns the leading component of the version, e.g. "8" for
// "8.9".
func (r OSRelease) MajorRelease() string {
	major, _, _ := strings.Cut(r.VersionID, ".")
	return major
}

// ReadOSRelease parses an os-release file.
func ReadOSRelease(path string) (OSRelease, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return OSRelease{}, errors.NotFoundf("os release file %q", path)
	} else if err != nil {
		return OSRelease{}, errors.Trace(err)
	}
	return ParseOSRelease(data)
}

// ParseOSRelease parses the contents of an os-release file.
func ParseOSRelease(data []byte) (OSRelease, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
	}, data)
	if err != nil {
		return OSRelease{}, errors.Annotate(err, "parsing os release")
	}
	section := cfg.Section(ini.DefaultSection)
	release := OSRelease{
		ID:        section.Key("ID").String(),
		IDLike:    section.Key("ID_LIKE").String(),
		Name:      section.Key("NAME").String(),
		VersionID: section.Key("VERSION_ID").String(),
	}
	if release.ID == "" {
		return OSRelease{}, errors.NotValidf("os release without ID")
	}
	release.Family = ostype.FamilyForRelease(release.ID, release.IDLike)
	return release, nil
}
