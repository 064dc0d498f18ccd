// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package main

import (
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/theforeman/foreman-installer/cmd"
	"github.com/theforeman/foreman-installer/postgresql"
)

type checkCommand struct {
	*globals

	out    cmd.Output
	target int
}

func (c *checkCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "check",
		Purpose: "report whether a PostgreSQL upgrade is pending",
		Doc: `
Reports whether the local cluster is older than the target version and,
if so, whether there is enough storage to upgrade it. Services and
packages are left alone. Exits with status 1 when an upgrade is pending
but cannot be done.
`,
	}
}

func (c *checkCommand) SetFlags(f *gnuflag.FlagSet) {
	c.out.AddFlags(f, "yaml", cmd.DefaultFormatters)
	f.IntVar(&c.target, "target", 0, "Target major version (default: from the configuration)")
}

func (c *checkCommand) Init(args []string) error {
	return cmd.CheckEmpty(args)
}

// checkResult is the report written by the check command.
type checkResult struct {
	InstalledVersion  string `yaml:"installed-version,omitempty" json:"installed-version,omitempty"`
	TargetVersion     int    `yaml:"target-version" json:"target-version"`
	LocalPostgreSQL   bool   `yaml:"local-postgresql" json:"local-postgresql"`
	NewInstall        bool   `yaml:"new-install" json:"new-install"`
	OSRequiresUpgrade bool   `yaml:"os-requires-upgrade" json:"os-requires-upgrade"`
	UpgradeNeeded     bool   `yaml:"upgrade-needed" json:"upgrade-needed"`
	RequiredBytes     uint64 `yaml:"required-bytes,omitempty" json:"required-bytes,omitempty"`
	AvailableBytes    uint64 `yaml:"available-bytes,omitempty" json:"available-bytes,omitempty"`
	MountPoint        string `yaml:"mount-point,omitempty" json:"mount-point,omitempty"`
	StorageSufficient bool   `yaml:"storage-sufficient" json:"storage-sufficient"`
}

func (c *checkCommand) Run(ctx *cmd.Context) error {
	env, err := c.open(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	defer env.Close()

	result := checkResult{
		TargetVersion:   env.config.TargetVersion,
		LocalPostgreSQL: env.localPostgreSQL(),
		NewInstall:      env.scenario != nil && env.scenario.NewInstall(),
	}
	if c.target > 0 {
		result.TargetVersion = c.target
	}
	result.OSRequiresUpgrade, err = env.detector().OSRequiresUpgrade()
	if err != nil {
		return errors.Trace(err)
	}

	upgrader, err := env.upgrader(result.TargetVersion)
	if err != nil {
		return errors.Trace(err)
	}
	plan, checkErr := upgrader.Check(ctx)
	var precondition *postgresql.PreconditionError
	if checkErr != nil && !errors.As(checkErr, &precondition) {
		return errors.Trace(checkErr)
	}
	result.InstalledVersion = plan.InstalledVersion
	result.UpgradeNeeded = plan.Needed
	if plan.Needed {
		result.RequiredBytes = plan.Storage.Required
		result.AvailableBytes = plan.Storage.Available
		result.MountPoint = plan.Storage.MountPoint
	}
	result.StorageSufficient = checkErr == nil

	if err := c.out.Write(ctx, result); err != nil {
		return errors.Trace(err)
	}
	if checkErr != nil {
		env.reporter.Errorf("%s", checkErr.Error())
		return cmd.ErrSilent
	}
	return nil
}
