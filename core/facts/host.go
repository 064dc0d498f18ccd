// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package facts

// Host reads facts from the local machine.
type Host struct {
	// OSReleasePath defaults to OSReleaseFile.
	OSReleasePath string
}

// NewHost returns a fact source for the local machine.
func NewHost() *Host {
	return &Host{OSReleasePath: OSReleaseFile}
}

// OSRelease returns the running distribution.
func (h *Host) OSRelease() (OSRelease, error) {
	path := h.OSReleasePath
	if path == "" {
		path = OSReleaseFile
	}
	return ReadOSRelease(path)
}

// Mountpoints returns the current mount point inventory.
func (h *Host) Mountpoints() (Mountpoints, error) {
	return ReadMountpoints()
}
