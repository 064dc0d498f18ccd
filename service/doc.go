// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

// Package service stops and starts the platform's system services. The
// installer only needs fire-and-verify control: a request either reaches
// the requested state or reports an error.
package service
