// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

// Package facts gathers the host facts the installer hooks make decisions
// on: which operating system release is running, and how much space is free
// on each mounted filesystem.
package facts
