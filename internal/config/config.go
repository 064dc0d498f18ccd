// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

// Package config holds the settings of the PostgreSQL upgrade hook.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"

	"github.com/theforeman/foreman-installer/internal/logging"
)

// DefaultConfigFile is read when it exists and no other file is given.
const DefaultConfigFile = "/etc/foreman-installer/postgresql-upgrade.yaml"

// Service control backends.
const (
	ServiceControlSystemctl = "systemctl"
	ServiceControlDBus      = "dbus"
	ServiceControlAuto      = "auto"
)

// Config is the configuration of the PostgreSQL upgrade.
type Config struct {
	// TargetVersion is the PostgreSQL major version to upgrade to.
	TargetVersion int `yaml:"target_version"`

	// DataDir is the cluster data directory.
	DataDir string `yaml:"data_dir"`

	// InstallRoot is where the upgraded cluster is created; it must
	// have room for a copy of DataDir.
	InstallRoot string `yaml:"install_root"`

	// ConfigFile is the PostgreSQL configuration file, relative to
	// DataDir unless absolute.
	ConfigFile string `yaml:"config_file"`

	// VersionFile is the version marker, relative to DataDir unless
	// absolute.
	VersionFile string `yaml:"version_file"`

	// OldBinDir locates the binaries of the previous major version; %s
	// is replaced by that version.
	OldBinDir string `yaml:"old_bin_dir"`

	// ServiceUser is the account the database runs as.
	ServiceUser string `yaml:"service_user"`

	// DatabaseService is restarted after the upgrade.
	DatabaseService string `yaml:"database_service"`

	// StopServices are stopped before packages are replaced. Empty means
	// the services the installer answers enable on this host.
	StopServices []string `yaml:"stop_services"`

	// Module is the dnf module holding the server packages.
	Module string `yaml:"module"`

	// ServerPackages are always upgraded.
	ServerPackages []string `yaml:"server_packages"`

	// OptionalPackages are upgraded only when already installed.
	OptionalPackages []string `yaml:"optional_packages"`

	// PuppetPath is the puppet binary; empty means search for it.
	PuppetPath string `yaml:"puppet_path"`

	// ServiceControl selects how services are stopped and started.
	ServiceControl string `yaml:"service_control"`

	// LogFile receives the full log. Empty disables file logging.
	LogFile string `yaml:"log_file"`

	// ScenarioFile is the installer scenario whose answers decide
	// whether PostgreSQL is local.
	ScenarioFile string `yaml:"scenario_file"`
}

// FallbackStopServices is stopped when there are no installer answers to
// tell which services run here. Only patterns are listed, as systemctl
// ignores a pattern that matches no loaded unit.
var FallbackStopServices = []string{
	"foreman*", "foreman*.socket", "dynflow-sidekiq@*",
	"pulpcore-*", "tomcat*",
}

// Default returns the configuration for an Enterprise Linux 8 host.
func Default() Config {
	return Config{
		TargetVersion:    13,
		DataDir:          "/var/lib/pgsql/data",
		InstallRoot:      "/var/lib/pgsql",
		ConfigFile:       "postgresql.conf",
		VersionFile:      "PG_VERSION",
		OldBinDir:        "/usr/lib64/pgsql/postgresql-%s/bin",
		ServiceUser:      "postgres",
		DatabaseService:  "postgresql",
		Module:           "postgresql",
		ServerPackages:   []string{"postgresql", "postgresql-server", "postgresql-upgrade"},
		OptionalPackages: []string{"postgresql-contrib", "postgresql-docs"},
		ServiceControl:   ServiceControlSystemctl,
		LogFile:          logging.DefaultLogFile,
		ScenarioFile:     "/etc/foreman-installer/scenarios.d/last_scenario.yaml",
	}
}

// Read loads path over the defaults. A missing file is an error unless
// optional is set.
func Read(path string, optional bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && optional {
		return cfg, nil
	} else if os.IsNotExist(err) {
		return Config{}, errors.NotFoundf("config file %q", path)
	} else if err != nil {
		return Config{}, errors.Trace(err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Annotatef(err, "parsing %q", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Annotatef(err, "config file %q", path)
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.TargetVersion <= 0 {
		return errors.NotValidf("target version %d", c.TargetVersion)
	}
	for name, dir := range map[string]string{"data dir": c.DataDir, "install root": c.InstallRoot} {
		if !filepath.IsAbs(dir) {
			return errors.NotValidf("%s %q (must be absolute)", name, dir)
		}
	}
	if c.ConfigFile == "" {
		return errors.NotValidf("empty config file")
	}
	if c.VersionFile == "" {
		return errors.NotValidf("empty version file")
	}
	if strings.Count(c.OldBinDir, "%s") != 1 {
		return errors.NotValidf("old bin dir %q (needs exactly one %%s)", c.OldBinDir)
	}
	if c.ServiceUser == "" {
		return errors.NotValidf("empty service user")
	}
	if c.DatabaseService == "" {
		return errors.NotValidf("empty database service")
	}
	if c.Module == "" {
		return errors.NotValidf("empty module")
	}
	if len(c.ServerPackages) == 0 {
		return errors.NotValidf("empty server packages")
	}
	switch c.ServiceControl {
	case ServiceControlSystemctl, ServiceControlDBus, ServiceControlAuto:
	default:
		return errors.NotValidf("service control %q", c.ServiceControl)
	}
	return nil
}

// ConfigPath returns the absolute path of the PostgreSQL configuration.
func (c Config) ConfigPath() string {
	return c.underDataDir(c.ConfigFile)
}

// VersionPath returns the absolute path of the version marker.
func (c Config) VersionPath() string {
	return c.underDataDir(c.VersionFile)
}

func (c Config) underDataDir(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.DataDir, path)
}
