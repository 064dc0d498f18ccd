// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

/*
Package core holds concepts and pure logic describing the host the
installer runs on.

Subpackages must not run external commands or change the host; they only
read and interpret what is already there. In particular:

  - os/ostype names operating system families.
  - facts reads os-release and the mount table.

Anything that converges state (packages, services, databases) lives
elsewhere and may import from core, never the reverse.
*/
package core
