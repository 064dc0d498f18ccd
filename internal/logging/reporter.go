// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/juju/ansiterm"
	"github.com/juju/loggo/v2"
)

// Reporter logs a message and tells the user about it on the terminal,
// colored by severity.
type Reporter struct {
	logger loggo.Logger
	out    *ansiterm.Writer
}

// NewReporter returns a Reporter logging to logger and writing to out.
// Color is only used when out is a terminal.
func NewReporter(logger loggo.Logger, out io.Writer) *Reporter {
	return &Reporter{
		logger: logger,
		out:    ansiterm.NewWriter(out),
	}
}

func colorFor(level loggo.Level) ansiterm.Color {
	switch level {
	case loggo.ERROR, loggo.CRITICAL:
		return ansiterm.Red
	case loggo.WARNING, loggo.DEBUG, loggo.TRACE:
		return ansiterm.Yellow
	}
	return ansiterm.Default
}

// Say logs the message at level and writes it to the terminal.
func (r *Reporter) Say(level loggo.Level, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	r.logger.Logf(level, "%s", message)
	r.say(colorFor(level), message)
}

// Noticef reports normal progress.
func (r *Reporter) Noticef(format string, args ...interface{}) {
	r.Say(loggo.INFO, format, args...)
}

// Warningf reports something the user should look at.
func (r *Reporter) Warningf(format string, args ...interface{}) {
	r.Say(loggo.WARNING, format, args...)
}

// Errorf reports a failure.
func (r *Reporter) Errorf(format string, args ...interface{}) {
	r.Say(loggo.ERROR, format, args...)
}

// Successf reports successful completion.
func (r *Reporter) Successf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	r.logger.Infof("%s", message)
	r.say(ansiterm.Green, message)
}

func (r *Reporter) say(color ansiterm.Color, message string) {
	if color != ansiterm.Default {
		r.out.SetForeground(color)
	}
	fmt.Fprint(r.out, strings.TrimRight(message, "\n"))
	if color != ansiterm.Default {
		r.out.Reset()
	}
	fmt.Fprintln(r.out)
}
