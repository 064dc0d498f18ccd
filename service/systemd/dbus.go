// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package systemd

import (
	"context"
	"strings"

	"github.com/coreos/go-systemd/v22/dbus"
	"github.com/juju/errors"
)

// DBusAPI is the subset of the systemd D-Bus connection in use.
type DBusAPI interface {
	StartUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error)
	StopUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error)
	Close()
}

// DBusAPIFactory opens a connection to systemd.
type DBusAPIFactory = func(ctx context.Context) (DBusAPI, error)

// NewDBusAPI connects to the system instance of systemd.
var NewDBusAPI = func(ctx context.Context) (DBusAPI, error) {
	return dbus.NewWithContext(ctx)
}

// jobMode makes a request supersede conflicting queued jobs.
const jobMode = "replace"

// DBusManager controls services through the systemd D-Bus API and waits
// for every job to finish.
type DBusManager struct {
	newDBus DBusAPIFactory
}

// NewDBusManager returns a DBusManager that connects with newDBus.
func NewDBusManager(newDBus DBusAPIFactory) *DBusManager {
	return &DBusManager{newDBus: newDBus}
}

// Stop implements service.Manager.
func (m *DBusManager) Stop(ctx context.Context, names ...string) error {
	return m.each(ctx, "stop", names, func(conn DBusAPI, unit string, ch chan<- string) (int, error) {
		return conn.StopUnitContext(ctx, unit, jobMode, ch)
	})
}

// Start implements service.Manager.
func (m *DBusManager) Start(ctx context.Context, names ...string) error {
	return m.each(ctx, "start", names, func(conn DBusAPI, unit string, ch chan<- string) (int, error) {
		return conn.StartUnitContext(ctx, unit, jobMode, ch)
	})
}

type unitRequest func(conn DBusAPI, unit string, ch chan<- string) (int, error)

func (m *DBusManager) each(ctx context.Context, op string, names []string, request unitRequest) error {
	if len(names) == 0 {
		return nil
	}
	units, err := unitNames(names)
	if err != nil {
		return errors.Trace(err)
	}
	for _, unit := range units {
		if strings.ContainsAny(unit, "*?[") {
			return errors.NotSupportedf("unit pattern %q over dbus", unit)
		}
	}

	conn, err := m.newDBus(ctx)
	if err != nil {
		return errors.Annotate(err, "connecting to systemd")
	}
	defer conn.Close()

	for _, unit := range units {
		logger.Infof("%sing %s", verbStem(op), unit)
		statusCh := make(chan string, 1)
		if _, err := request(conn, unit, statusCh); err != nil {
			return errors.Annotatef(err, "dbus %s request for %q failed", op, unit)
		}
		if err := wait(ctx, op, unit, statusCh); err != nil {
			return errors.Trace(err)
		}
		logger.Debugf("service %q successfully %s", unit, pastTense(op))
	}
	return nil
}

func wait(ctx context.Context, op, unit string, statusCh <-chan string) error {
	select {
	case status := <-statusCh:
		// See https://pkg.go.dev/github.com/coreos/go-systemd/v22/dbus#Conn.StartUnit
		// for the possible job results.
		if status != "done" {
			return errors.Errorf("failed to %s %q (job result %q)", op, unit, status)
		}
		return nil
	case <-ctx.Done():
		return errors.Annotatef(ctx.Err(), "waiting to %s %q", op, unit)
	}
}

func verbStem(op string) string {
	switch op {
	case "stop":
		return "Stopp"
	default:
		return "Start"
	}
}

func pastTense(op string) string {
	switch op {
	case "stop":
		return "stopped"
	default:
		return "started"
	}
}
