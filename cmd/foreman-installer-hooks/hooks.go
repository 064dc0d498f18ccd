// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package main

import (
	"io"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo/v2"

	"github.com/theforeman/foreman-installer/cmd"
	"github.com/theforeman/foreman-installer/core/facts"
	"github.com/theforeman/foreman-installer/internal/config"
	"github.com/theforeman/foreman-installer/internal/exec"
	"github.com/theforeman/foreman-installer/internal/installer"
	"github.com/theforeman/foreman-installer/internal/logging"
	"github.com/theforeman/foreman-installer/internal/packaging"
	"github.com/theforeman/foreman-installer/postgresql"
	"github.com/theforeman/foreman-installer/service"
)

var logger = loggo.GetLogger("foreman.hooks")

const hooksDoc = `
foreman-installer-hooks performs the maintenance steps the installer runs
before applying a scenario. Settings are read from --config and may be
overridden on the command line.
`

// NewHooksCommand returns the top level command with every hook
// registered.
func NewHooksCommand() *cmd.SuperCommand {
	g := &globals{}
	hooks := cmd.NewSuperCommand(cmd.SuperCommandParams{
		Name:        "foreman-installer-hooks",
		Purpose:     "run installer maintenance hooks",
		Doc:         hooksDoc,
		GlobalFlags: g.addFlags,
	})
	hooks.Register(&upgradeCommand{globals: g})
	hooks.Register(&checkCommand{globals: g})
	return hooks
}

// HostFacts describes the local host.
type HostFacts interface {
	postgresql.OSFacts
	postgresql.MountFacts
}

// Patched out in tests.
var (
	newRunner = func() exec.Runner { return exec.NewRunner() }
	newHost   = func() HostFacts { return facts.NewHost() }

	wallClock clock.Clock = clock.WallClock
)

// stringValue is a gnuflag.Value that remembers whether it was set.
type stringValue struct {
	value string
	set   bool
}

func (v *stringValue) Set(s string) error {
	v.value, v.set = s, true
	return nil
}

func (v *stringValue) String() string {
	return v.value
}

// globals holds the flags accepted before the command name.
type globals struct {
	configPath    string
	answers       cmd.FileVar
	loggingConfig string
	logFile       stringValue
	verbose       bool
}

func (g *globals) addFlags(f *gnuflag.FlagSet) {
	f.StringVar(&g.configPath, "config", config.DefaultConfigFile, "Configuration file")
	f.Var(&g.answers, "answers", "Installer answers file (default: from the last scenario)")
	f.StringVar(&g.loggingConfig, "logging-config", "", "Logging configuration, e.g. <root>=DEBUG")
	f.Var(&g.logFile, "log-file", `Log file ("" disables file logging)`)
	f.BoolVar(&g.verbose, "verbose", false, "Also log to stderr")
	f.BoolVar(&g.verbose, "v", false, "")
}

// environ is what a command works with once the globals are applied.
type environ struct {
	config   config.Config
	reporter *logging.Reporter
	host     HostFacts
	runner   exec.Runner
	closer   io.Closer

	// answers and scenario are nil when they cannot be found.
	answers  *installer.Answers
	scenario *installer.Scenario
}

// open loads the configuration and sets up logging.
func (g *globals) open(ctx *cmd.Context) (*environ, error) {
	path := ctx.AbsPath(g.configPath)
	cfg, err := config.Read(path, g.configPath == config.DefaultConfigFile)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if g.logFile.set {
		cfg.LogFile = g.logFile.value
	}
	closer, err := logging.Setup(logging.Config{
		Spec:    g.loggingConfig,
		LogFile: cfg.LogFile,
		Verbose: g.verbose,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	env := &environ{
		config:   cfg,
		reporter: logging.NewReporter(logger, ctx.Stdout),
		host:     newHost(),
		runner:   newRunner(),
		closer:   closer,
	}
	if err := env.loadAnswers(ctx, g); err != nil {
		_ = closer.Close()
		return nil, errors.Trace(err)
	}
	return env, nil
}

func (e *environ) loadAnswers(ctx *cmd.Context, g *globals) error {
	if g.answers.Path != "" {
		data, err := g.answers.Read(ctx)
		if err != nil {
			return errors.Trace(err)
		}
		e.answers, err = installer.ParseAnswers(data)
		return errors.Annotatef(err, "answers file %q", g.answers.Path)
	}
	scenario, err := installer.LoadScenario(e.config.ScenarioFile)
	if errors.IsNotFound(err) {
		logger.Debugf("%v, assuming a local database", err)
		return nil
	} else if err != nil {
		return errors.Trace(err)
	}
	e.scenario = scenario
	e.answers, err = scenario.Answers()
	return errors.Trace(err)
}

// Close flushes the log file.
func (e *environ) Close() error {
	return e.closer.Close()
}

// localPostgreSQL reports whether the installer manages a PostgreSQL
// server on this host. Without answers that is assumed.
func (e *environ) localPostgreSQL() bool {
	return e.answers == nil || e.answers.LocalPostgreSQL()
}

// stopServices returns the configured services or, when none are, those
// the answers enable.
func (e *environ) stopServices() []string {
	switch {
	case len(e.config.StopServices) > 0:
		return e.config.StopServices
	case e.answers != nil:
		return e.answers.Services()
	}
	return config.FallbackStopServices
}

func (e *environ) serviceManager() postgresql.ServiceManager {
	switch e.config.ServiceControl {
	case config.ServiceControlDBus:
		return service.NewManager(service.InitSystemSystemdDBus, e.runner)
	case config.ServiceControlAuto:
		return service.DiscoverManager(e.runner)
	}
	return service.NewManager(service.InitSystemSystemctl, e.runner)
}

func (e *environ) detector() postgresql.VersionDetector {
	return postgresql.VersionDetector{VersionFile: e.config.VersionPath(), Facts: e.host}
}

func (e *environ) upgrader(target int) (*postgresql.Upgrader, error) {
	cfg := e.config
	return postgresql.NewUpgrader(postgresql.UpgraderConfig{
		TargetVersion:    target,
		DataDir:          cfg.DataDir,
		InstallRoot:      cfg.InstallRoot,
		ConfigPath:       cfg.ConfigPath(),
		VersionPath:      cfg.VersionPath(),
		OldBinDir:        cfg.OldBinDir,
		User:             cfg.ServiceUser,
		DatabaseService:  cfg.DatabaseService,
		StopServices:     e.stopServices(),
		Module:           cfg.Module,
		ServerPackages:   cfg.ServerPackages,
		OptionalPackages: cfg.OptionalPackages,
		Runner:           e.runner,
		Services:         e.serviceManager(),
		Packages:         packaging.NewManager(e.runner, cfg.PuppetPath),
		Mounts:           e.host,
		Reporter:         e.reporter,
		Clock:            wallClock,
	})
}
