// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

// Package logging wires loggo to the installer's log file and terminal.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/lumberjack/v2"
)

// DefaultLogFile is where the hooks log unless told otherwise.
const DefaultLogFile = "/var/log/foreman-installer/postgresql-upgrade.log"

// Config describes where log output goes.
type Config struct {
	// Spec is a loggo configuration string such as "<root>=DEBUG".
	Spec string

	// LogFile, if set, receives every log entry. The file is rotated
	// when it grows too large.
	LogFile string

	// Verbose also sends log entries to stderr when a log file is in use.
	Verbose bool
}

const (
	fileWriterName   = "file"
	stderrWriterName = "stderr"

	maxLogSizeMB = 100
	maxBackups   = 5
)

// Setup applies cfg to the global loggo context. The returned closer
// flushes and closes the log file.
func Setup(cfg Config) (io.Closer, error) {
	if cfg.Spec != "" {
		if err := loggo.ConfigureLoggers(cfg.Spec); err != nil {
			return nil, errors.Annotate(err, "configuring loggers")
		}
	}
	if cfg.LogFile == "" {
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0750); err != nil {
		return nil, errors.Annotate(err, "creating log directory")
	}
	file := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}
	fileWriter := loggo.NewSimpleWriter(file, loggo.DefaultFormatter)
	previous, err := loggo.ReplaceDefaultWriter(fileWriter)
	if err != nil {
		_ = file.Close()
		return nil, errors.Annotate(err, "installing log file writer")
	}
	if cfg.Verbose && previous != nil {
		if err := loggo.RegisterWriter(stderrWriterName, previous); err != nil {
			_ = file.Close()
			return nil, errors.Annotate(err, "keeping stderr writer")
		}
	}
	return file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
