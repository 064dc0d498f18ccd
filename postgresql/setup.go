// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package postgresql

import (
	"context"
	"fmt"

	"github.com/juju/errors"

	"github.com/theforeman/foreman-installer/internal/exec"
)

// InitdbOptionsEnv is read by postgresql-setup and handed to initdb when
// the new cluster is created.
const InitdbOptionsEnv = "PGSETUP_INITDB_OPTIONS"

// InitdbOptions renders locale as initdb options.
func InitdbOptions(locale ClusterLocale) string {
	return fmt.Sprintf("--lc-collate=%s --lc-ctype=%s --locale=%s", locale.Collate, locale.CType, locale.Collate)
}

// UpgradeExecutor runs the upgrade tools shipped with the server packages.
type UpgradeExecutor struct {
	Runner exec.Runner

	// User is the database service account.
	User string

	// WorkDir is the working directory of the tools, normally the home
	// of User.
	WorkDir string
}

// RunUpgradeSetup migrates the data directory to the installed major
// version, creating the new cluster with locale.
func (e UpgradeExecutor) RunUpgradeSetup(ctx context.Context, locale ClusterLocale) error {
	if err := locale.Validate(); err != nil {
		return errors.Annotate(err, "cluster locale")
	}
	cmd := exec.Command{
		Args: asUser(e.User, "postgresql-setup", "--upgrade"),
		Env:  map[string]string{InitdbOptionsEnv: InitdbOptions(locale)},
		Dir:  e.WorkDir,
	}
	_, err := exec.RunChecked(ctx, e.Runner, cmd)
	return err
}

// Analyze regenerates planner statistics for every database of the new
// cluster, cheapest pass first so the service is usable sooner.
func (e UpgradeExecutor) Analyze(ctx context.Context) error {
	cmd := exec.Command{
		Args: asUser(e.User, "vacuumdb", "--all", "--analyze-in-stages"),
		Dir:  e.WorkDir,
	}
	_, err := exec.RunChecked(ctx, e.Runner, cmd)
	return err
}
