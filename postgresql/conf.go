// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package postgresql

import (
	"os"
	"strings"
	"syscall"

	"github.com/juju/errors"
	"github.com/juju/utils/v4"
)

// BlockingDirective is the setting postgresql-setup refuses to upgrade
// with. The installer always writes it, but the setup tool manages the
// data directory location itself.
const BlockingDirective = "data_directory"

// RemoveDirective deletes every line of the file at path that sets
// directive, and returns how many lines were removed. The file is only
// rewritten when something was removed; its mode and owner are kept.
func RemoveDirective(path, directive string) (int, error) {
	if directive == "" {
		return 0, errors.NotValidf("empty directive")
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.Annotatef(err, "reading %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Annotatef(err, "reading %q", path)
	}

	var kept strings.Builder
	removed := 0
	for _, line := range strings.SplitAfter(string(data), "\n") {
		if setsDirective(line, directive) {
			removed++
			continue
		}
		kept.WriteString(line)
	}
	if removed == 0 {
		logger.Debugf("%s does not set %s", path, directive)
		return 0, nil
	}

	err = utils.AtomicWriteFileAndChange(path, []byte(kept.String()), func(tmp string) error {
		if err := os.Chmod(tmp, info.Mode().Perm()); err != nil {
			return errors.Trace(err)
		}
		if st, ok := info.Sys().(*syscall.Stat_t); ok {
			if err := os.Lchown(tmp, int(st.Uid), int(st.Gid)); err != nil {
				return errors.Trace(err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, errors.Annotatef(err, "rewriting %q", path)
	}
	logger.Infof("removed %d %s line(s) from %s", removed, directive, path)
	return removed, nil
}

// setsDirective reports whether line starts with the name directive,
// followed by whitespace, "=" or the end of the line.
func setsDirective(line, directive string) bool {
	rest, ok := strings.CutPrefix(strings.TrimLeft(line, " \t"), directive)
	if !ok {
		return false
	}
	if rest == "" {
		return true
	}
	switch rest[0] {
	case ' ', '\t', '=', '\r', '\n':
		return true
	}
	return false
}
