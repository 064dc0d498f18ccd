// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package cmd

import (
	"os"

	"github.com/juju/errors"
)

// FileVar represents a path to a file.
type FileVar struct {
	Path string
}

// Set stores the chosen path name in f.Path.
func (f *FileVar) Set(v string) error {
	f.Path = v
	return nil
}

// Read returns the contents of the file relative to the context.
func (f *FileVar) Read(ctx *Context) ([]byte, error) {
	if f.Path == "" {
		return nil, errors.NotFoundf("path")
	}
	data, err := os.ReadFile(ctx.AbsPath(f.Path))
	if os.IsNotExist(err) {
		return nil, errors.NotFoundf("file %q", f.Path)
	}
	return data, errors.Trace(err)
}

// String returns the path to the file.
func (f *FileVar) String() string {
	return f.Path
}
