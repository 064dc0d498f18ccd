// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package postgresql

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/juju/clock"
	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/theforeman/foreman-installer/internal/exec"
	"github.com/theforeman/foreman-installer/internal/packaging"
)

var logger = loggo.GetLogger("foreman.postgresql")

// State is a step of the upgrade procedure. Steps are only ever taken in
// the order they are declared.
type State int

const (
	Idle State = iota
	NeedCheck
	Preflight
	StopService
	PackageUpgrade
	LocaleExtraction
	ConfigPatch
	DataMigration
	ServiceRestart
	PostAnalyze
	Done
	Failed
)

var stateNames = [...]string{
	Idle:             "Idle",
	NeedCheck:        "NeedCheck",
	Preflight:        "Preflight",
	StopService:      "StopService",
	PackageUpgrade:   "PackageUpgrade",
	LocaleExtraction: "LocaleExtraction",
	ConfigPatch:      "ConfigPatch",
	DataMigration:    "DataMigration",
	ServiceRestart:   "ServiceRestart",
	PostAnalyze:      "PostAnalyze",
	Done:             "Done",
	Failed:           "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
	return stateNames[s]
}

// Terminal reports whether the procedure ends in s.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}

// ServiceManager stops and starts system services.
type ServiceManager interface {
	Stop(ctx context.Context, names ...string) error
	Start(ctx context.Context, names ...string) error
}

// PackageManager replaces the server packages.
type PackageManager interface {
	// SwitchModule points the module at another stream.
	SwitchModule(ctx context.Context, module, stream string) error

	// InstalledOf returns those of names that are installed.
	InstalledOf(ctx context.Context, names ...string) ([]string, error)

	// Ensure converges packages to state.
	Ensure(ctx context.Context, packages []string, state packaging.State) error
}

// Reporter tells the operator about progress.
type Reporter interface {
	Noticef(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Successf(format string, args ...interface{})
}

// UpgraderConfig holds the dependencies and settings of an Upgrader.
type UpgraderConfig struct {
	// TargetVersion is the major version to upgrade to.
	TargetVersion int

	// DataDir is the cluster data directory.
	DataDir string

	// InstallRoot needs room for a copy of DataDir, and is the working
	// directory of the commands run as User.
	InstallRoot string

	// ConfigPath is the configuration file holding BlockingDirective.
	ConfigPath string

	// VersionPath is the cluster's PG_VERSION marker.
	VersionPath string

	// OldBinDir locates the binaries of the installed version; %s is
	// replaced by that version.
	OldBinDir string

	// User is the database service account.
	User string

	// DatabaseService is always stopped, and is started once the data
	// has been migrated.
	DatabaseService string

	// StopServices are stopped along with DatabaseService.
	StopServices []string

	// Module is the dnf module switched to the target stream.
	Module string

	// ServerPackages are upgraded unconditionally; OptionalPackages
	// only when installed.
	ServerPackages   []string
	OptionalPackages []string

	Runner   exec.Runner
	Services ServiceManager
	Packages PackageManager
	Mounts   MountFacts

	// DiskUsage measures the data directory; nil means DiskUsage.
	DiskUsage func(dir string) (uint64, error)

	// Reporter is optional; progress is logged either way.
	Reporter Reporter

	Clock clock.Clock
}

// Validate returns an error if the config cannot be used to run an
// upgrade.
func (c UpgraderConfig) Validate() error {
	if c.TargetVersion <= 0 {
		return errors.NotValidf("target version %d", c.TargetVersion)
	}
	for name, value := range map[string]string{
		"data dir":         c.DataDir,
		"install root":     c.InstallRoot,
		"config path":      c.ConfigPath,
		"version path":     c.VersionPath,
		"user":             c.User,
		"database service": c.DatabaseService,
		"module":           c.Module,
	} {
		if value == "" {
			return errors.NotValidf("empty %s", name)
		}
	}
	if strings.Count(c.OldBinDir, "%s") != 1 {
		return errors.NotValidf("old bin dir %q", c.OldBinDir)
	}
	if len(c.ServerPackages) == 0 {
		return errors.NotValidf("empty server packages")
	}
	if c.Runner == nil {
		return errors.NotValidf("nil Runner")
	}
	if c.Services == nil {
		return errors.NotValidf("nil Services")
	}
	if c.Packages == nil {
		return errors.NotValidf("nil Packages")
	}
	if c.Mounts == nil {
		return errors.NotValidf("nil Mounts")
	}
	if c.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	return nil
}

// Upgrader performs a PostgreSQL major version upgrade of the local
// cluster. It makes a single attempt; a failed upgrade is never resumed,
// and running it again starts from the beginning.
type Upgrader struct {
	config   UpgraderConfig
	reporter Reporter

	state    State
	failedAt State
	history  []State

	installed   string
	needed      bool
	requirement DiskSpaceRequirement
	locale      ClusterLocale
}

// NewUpgrader returns an Upgrader in the Idle state.
func NewUpgrader(config UpgraderConfig) (*Upgrader, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	reporter := config.Reporter
	if reporter == nil {
		reporter = logReporter{}
	}
	return &Upgrader{
		config:   config,
		reporter: reporter,
		state:    Idle,
		history:  []State{Idle},
	}, nil
}

// State returns the current state.
func (u *Upgrader) State() State {
	return u.state
}

// FailedAt returns the step that failed, or Idle if none did.
func (u *Upgrader) FailedAt() State {
	return u.failedAt
}

// History returns every state entered so far, in order.
func (u *Upgrader) History() []State {
	return append([]State(nil), u.history...)
}

// Locale returns the locale read from the old cluster, once known.
func (u *Upgrader) Locale() ClusterLocale {
	return u.locale
}

// Requirement returns the outcome of the storage check, once made.
func (u *Upgrader) Requirement() DiskSpaceRequirement {
	return u.requirement
}

// Run drives the procedure to Done or Failed. ctx is honoured until the
// services are about to be stopped; once the host starts changing every
// remaining step runs to completion. The error, if any, is a *StepError.
func (u *Upgrader) Run(ctx context.Context) error {
	if u.state != Idle {
		return errors.Errorf("upgrade already run (state %s)", u.state)
	}
	start := u.config.Clock.Now()
	u.enter(NeedCheck)
	for !u.state.Terminal() {
		if u.state <= StopService {
			if err := ctx.Err(); err != nil {
				return u.fail(errors.Annotate(err, "upgrade cancelled"))
			}
		}
		next, err := u.step(context.WithoutCancel(ctx))
		if err != nil {
			return u.fail(err)
		}
		u.enter(next)
	}
	if u.needed {
		logger.Infof("PostgreSQL upgrade took %s", u.config.Clock.Now().Sub(start).Round(time.Second))
	}
	return nil
}

func (u *Upgrader) enter(state State) {
	logger.Debugf("entering %s", state)
	u.state = state
	u.history = append(u.history, state)
}

func (u *Upgrader) step(ctx context.Context) (State, error) {
	switch u.state {
	case NeedCheck:
		needed, err := u.checkNeeded()
		if err != nil {
			return Failed, err
		}
		if !needed {
			return Done, nil
		}
		return Preflight, nil
	case Preflight:
		return StopService, u.checkStorage()
	case StopService:
		u.reporter.Noticef("Performing upgrade of PostgreSQL to %d", u.config.TargetVersion)
		return PackageUpgrade, u.config.Services.Stop(ctx, u.stopServices()...)
	case PackageUpgrade:
		u.reporter.Noticef("Upgrading PostgreSQL packages")
		return LocaleExtraction, u.upgradePackages(ctx)
	case LocaleExtraction:
		u.reporter.Noticef("Migrating PostgreSQL data")
		locale, err := u.extractor().ExtractLocale(ctx, u.installed)
		u.locale = locale
		return ConfigPatch, err
	case ConfigPatch:
		_, err := RemoveDirective(u.config.ConfigPath, BlockingDirective)
		return DataMigration, err
	case DataMigration:
		return ServiceRestart, u.executor().RunUpgradeSetup(ctx, u.locale)
	case ServiceRestart:
		return PostAnalyze, u.config.Services.Start(ctx, u.config.DatabaseService)
	case PostAnalyze:
		u.reporter.Noticef("Analyzing the new PostgreSQL cluster")
		if err := u.executor().Analyze(ctx); err != nil {
			return Failed, err
		}
		u.reporter.Successf("Upgrade to PostgreSQL %d completed", u.config.TargetVersion)
		return Done, nil
	}
	return Failed, errors.Errorf("no step for state %s", u.state)
}

func (u *Upgrader) checkNeeded() (bool, error) {
	detector := VersionDetector{VersionFile: u.config.VersionPath}
	installed, err := detector.InstalledVersion()
	if errors.IsNotFound(err) {
		logger.Infof("%v, no PostgreSQL cluster to upgrade", err)
		return false, nil
	} else if err != nil {
		return false, errors.Trace(err)
	}
	u.installed = installed
	major, err := MajorVersion(installed)
	if err != nil {
		return false, errors.Trace(err)
	}
	if major >= u.config.TargetVersion {
		logger.Infof("PostgreSQL %s is not older than %d, no upgrade needed", installed, u.config.TargetVersion)
		return false, nil
	}
	u.needed = true
	return true, nil
}

func (u *Upgrader) checkStorage() error {
	checker := StorageChecker{Mounts: u.config.Mounts, Usage: u.config.DiskUsage}
	requirement, err := checker.Check(u.config.DataDir, u.config.InstallRoot)
	u.requirement = requirement
	return err
}

// stopServices returns the configured services, with the database service
// appended when it is missing.
func (u *Upgrader) stopServices() []string {
	names := append([]string(nil), u.config.StopServices...)
	if !set.NewStrings(names...).Contains(u.config.DatabaseService) {
		names = append(names, u.config.DatabaseService)
	}
	return names
}

func (u *Upgrader) upgradePackages(ctx context.Context) error {
	stream := strconv.Itoa(u.config.TargetVersion)
	if err := u.config.Packages.SwitchModule(ctx, u.config.Module, stream); err != nil {
		return errors.Trace(err)
	}
	packages := append([]string(nil), u.config.ServerPackages...)
	if len(u.config.OptionalPackages) > 0 {
		present, err := u.config.Packages.InstalledOf(ctx, u.config.OptionalPackages...)
		if err != nil {
			return errors.Trace(err)
		}
		logger.Debugf("optional packages installed: %v", present)
		packages = append(packages, present...)
	}
	return u.config.Packages.Ensure(ctx, packages, packaging.Latest)
}

func (u *Upgrader) extractor() LocaleExtractor {
	return LocaleExtractor{
		Runner:    u.config.Runner,
		DataDir:   u.config.DataDir,
		OldBinDir: u.config.OldBinDir,
		User:      u.config.User,
		WorkDir:   u.config.InstallRoot,
	}
}

func (u *Upgrader) executor() UpgradeExecutor {
	return UpgradeExecutor{
		Runner:  u.config.Runner,
		User:    u.config.User,
		WorkDir: u.config.InstallRoot,
	}
}

// fail moves to Failed, logs whatever diagnostics err carries and wraps
// it in a *StepError.
func (u *Upgrader) fail(err error) error {
	u.failedAt = u.state
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		if stderr := strings.TrimSpace(cmdErr.Outcome.Stderr); stderr != "" {
			logger.Errorf("%s", stderr)
		}
		if stdout := strings.TrimSpace(cmdErr.Outcome.Stdout); stdout != "" {
			logger.Debugf("%s", stdout)
		}
		if cmdErr.Outcome.Launched {
			logger.Debugf("exit code: %d", cmdErr.Outcome.ExitCode)
		}
	}
	var precondition *PreconditionError
	if errors.As(err, &precondition) {
		u.reporter.Errorf("%s", precondition.Error())
	} else {
		u.reporter.Errorf("PostgreSQL upgrade failed at %s: %v", u.failedAt, err)
	}
	u.enter(Failed)
	return &StepError{State: u.failedAt, Err: err}
}

// Plan is what a dry run of the upgrade found.
type Plan struct {
	// InstalledVersion is empty when there is no cluster.
	InstalledVersion string

	// Needed reports whether the cluster is older than the target.
	Needed bool

	// Storage is the outcome of the storage check; it is only made when
	// an upgrade is needed.
	Storage DiskSpaceRequirement
}

// Check runs the checks the upgrade starts with, without changing the
// host. The error is a *PreconditionError when storage is insufficient.
func (u *Upgrader) Check(ctx context.Context) (Plan, error) {
	if err := ctx.Err(); err != nil {
		return Plan{}, errors.Trace(err)
	}
	needed, err := u.checkNeeded()
	if err != nil {
		return Plan{}, errors.Trace(err)
	}
	plan := Plan{InstalledVersion: u.installed, Needed: needed}
	if !needed {
		return plan, nil
	}
	err = u.checkStorage()
	plan.Storage = u.requirement
	return plan, err
}

// logReporter reports through the package logger.
type logReporter struct{}

func (logReporter) Noticef(format string, args ...interface{})  { logger.Infof(format, args...) }
func (logReporter) Errorf(format string, args ...interface{})   { logger.Errorf(format, args...) }
func (logReporter) Successf(format string, args ...interface{}) { logger.Infof(format, args...) }
