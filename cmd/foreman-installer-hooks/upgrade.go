// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package main

import (
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/theforeman/foreman-installer/cmd"
)

const upgradeDoc = `
Upgrades the local PostgreSQL cluster to the target major version when it
is older. The services using the database are stopped, the server packages
are switched to the new stream, and the data is migrated with
postgresql-setup using the locale of the existing cluster.

Nothing is done unless the installer manages a local PostgreSQL server and
the operating system ships an older version by default; --force skips the
operating system check.
`

type upgradeCommand struct {
	*globals

	target int
	force  bool
}

func (c *upgradeCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "upgrade",
		Purpose: "upgrade PostgreSQL to a new major version if required",
		Doc:     upgradeDoc,
	}
}

func (c *upgradeCommand) SetFlags(f *gnuflag.FlagSet) {
	f.IntVar(&c.target, "target", 0, "Target major version (default: from the configuration)")
	f.BoolVar(&c.force, "force", false, "Upgrade regardless of the operating system release")
}

func (c *upgradeCommand) Init(args []string) error {
	if c.target < 0 {
		return errors.NotValidf("target version %d", c.target)
	}
	return cmd.CheckEmpty(args)
}

func (c *upgradeCommand) Run(ctx *cmd.Context) error {
	env, err := c.open(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	defer env.Close()

	target := env.config.TargetVersion
	if c.target > 0 {
		target = c.target
	}

	if !env.localPostgreSQL() {
		logger.Infof("PostgreSQL is not managed on this host, skipping upgrade")
		return nil
	}
	if c.force {
		logger.Infof("skipping operating system check")
	} else {
		required, err := env.detector().OSRequiresUpgrade()
		if err != nil {
			env.reporter.Errorf("Cannot tell whether PostgreSQL needs an upgrade: %v", err)
			return cmd.ErrSilent
		}
		if !required {
			logger.Infof("operating system does not require a PostgreSQL upgrade")
			return nil
		}
	}

	upgrader, err := env.upgrader(target)
	if err != nil {
		return errors.Trace(err)
	}
	if err := upgrader.Run(ctx); err != nil {
		logger.Debugf("upgrade history: %v", upgrader.History())
		return cmd.ErrSilent
	}
	return nil
}
