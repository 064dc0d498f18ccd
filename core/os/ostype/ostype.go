// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package ostype

import (
	"strings"

	"github.com/juju/errors"
)

// OSType is an operating system family, named the way facter reports
// os.family.
type OSType int

const (
	Unknown OSType = iota
	RedHat
	Debian
	Suse
	Archlinux
	GenericLinux
)

func (t OSType) String() string {
	switch t {
	case RedHat:
		return "RedHat"
	case Debian:
		return "Debian"
	case Suse:
		return "Suse"
	case Archlinux:
		return "Archlinux"
	case GenericLinux:
		return "GenericLinux"
	}
	return "Unknown"
}

// EquivalentTo returns true if the OS type is equivalent to another
// OS type.
func (t OSType) EquivalentTo(t2 OSType) bool {
	if t == t2 {
		return true
	}
	return t.IsLinux() && t2.IsLinux()
}

// IsLinux returns true if the OS type is a Linux variant.
func (t OSType) IsLinux() bool {
	return t != Unknown
}

var validOSTypeNames = map[string]OSType{
	"redhat":       RedHat,
	"debian":       Debian,
	"suse":         Suse,
	"archlinux":    Archlinux,
	"genericlinux": GenericLinux,
}

// distributionFamilies maps os-release IDs to the family they belong to.
var distributionFamilies = map[string]OSType{
	"rhel":      RedHat,
	"centos":    RedHat,
	"fedora":    RedHat,
	"almalinux": RedHat,
	"rocky":     RedHat,
	"ol":        RedHat,
	"debian":    Debian,
	"ubuntu":    Debian,
	"sles":      Suse,
	"opensuse":  Suse,
	"suse":      Suse,
	"arch":      Archlinux,
}

// IsValidOSTypeName returns true if osType is a
// valid os type name.
func IsValidOSTypeName(osType string) bool {
	_, ok := validOSTypeNames[strings.ToLower(osType)]
	return ok
}

// ParseOSType parses a string and returns the corresponding OSType.
func ParseOSType(s string) (OSType, error) {
	osType, ok := validOSTypeNames[strings.ToLower(s)]
	if !ok {
		return Unknown, errors.NotValidf("os type %q", s)
	}
	return osType, nil
}

// FamilyForRelease returns the family of a distribution from the ID and
// ID_LIKE fields of os-release. The ID wins over ID_LIKE; an unrecognised
// Linux distribution is GenericLinux.
func FamilyForRelease(id, idLike string) OSType {
	if family, ok := distributionFamilies[strings.ToLower(id)]; ok {
		return family
	}
	for _, like := range strings.Fields(idLike) {
		if family, ok := distributionFamilies[strings.ToLower(like)]; ok {
			return family
		}
		if strings.HasPrefix(strings.ToLower(like), "suse") {
			return Suse
		}
	}
	if id == "" {
		return Unknown
	}
	return GenericLinux
}
