// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

// Package installer answers questions about what the installer scenario
// manages on this host: which modules are enabled, what their parameters
// are, and whether this is a first installation.
package installer

import (
	"os"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"
)

// Answers holds the parsed answers file. Each top level key is a module;
// its value is false when the module is disabled, true when it is enabled
// with default parameters, or a map of parameters when it is enabled with
// overrides.
type Answers struct {
	modules map[string]interface{}
}

// LoadAnswers reads an answers file.
func LoadAnswers(path string) (*Answers, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.NotFoundf("answers file %q", path)
	} else if err != nil {
		return nil, errors.Trace(err)
	}
	answers, err := ParseAnswers(data)
	return answers, errors.Annotatef(err, "parsing %q", path)
}

// ParseAnswers parses the contents of an answers file.
func ParseAnswers(data []byte) (*Answers, error) {
	modules := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &modules); err != nil {
		return nil, errors.Trace(err)
	}
	return &Answers{modules: modules}, nil
}

// ModulePresent reports whether the scenario knows about module at all,
// enabled or not.
func (a *Answers) ModulePresent(module string) bool {
	_, ok := a.modules[module]
	return ok
}

// ModuleEnabled reports whether module is enabled.
func (a *Answers) ModuleEnabled(module string) bool {
	switch v := a.modules[module].(type) {
	case bool:
		return v
	case map[string]interface{}:
		return true
	}
	return false
}

// ParamValue returns a parameter of an enabled module. The second result
// is false when the module is disabled or the parameter is not set.
func (a *Answers) ParamValue(module, param string) (interface{}, bool) {
	params, ok := a.modules[module].(map[string]interface{})
	if !ok {
		return nil, false
	}
	value, ok := params[param]
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

// paramDefaults holds the module defaults of the parameters the predicates
// below read. An enabled module that leaves one of them unset uses this
// value.
var paramDefaults = map[string]map[string]interface{}{
	"foreman": {
		"db_manage": true,
	},
	"katello": {
		"candlepin_manage_db": true,
	},
	"foreman_proxy_content": {
		"pulpcore_manage_postgresql": true,
	},
}

// paramOrDefault returns a parameter of an enabled module, falling back to
// the module default when the answers file does not set it.
func (a *Answers) paramOrDefault(module, param string) (interface{}, bool) {
	if !a.ModuleEnabled(module) {
		return nil, false
	}
	if value, ok := a.ParamValue(module, param); ok {
		return value, true
	}
	value, ok := paramDefaults[module][param]
	return value, ok
}

// paramTrue reports whether a parameter, or its default, is set to anything
// other than false or nothing at all.
func (a *Answers) paramTrue(module, param string) bool {
	value, ok := a.paramOrDefault(module, param)
	if !ok || value == nil {
		return false
	}
	if b, isBool := value.(bool); isBool {
		return b
	}
	return true
}

func (a *Answers) ForemanServer() bool {
	return a.ModuleEnabled("foreman")
}

func (a *Answers) KatelloEnabled() bool {
	return a.ModuleEnabled("katello")
}

func (a *Answers) KatelloPresent() bool {
	return a.ModulePresent("katello")
}

func (a *Answers) CandlepinEnabled() bool {
	return a.KatelloEnabled()
}

func (a *Answers) PulpcoreEnabled() bool {
	return a.ModuleEnabled("foreman_proxy_content")
}

func (a *Answers) DevelScenario() bool {
	return a.ModuleEnabled("katello_devel")
}

// remoteParam reports whether a host name parameter points elsewhere.
func (a *Answers) remoteParam(module, param string) bool {
	value, ok := a.ParamValue(module, param)
	if !ok {
		return false
	}
	host, isString := value.(string)
	return isString && host != "" && RemoteHost(host)
}

// LocalForemanDB reports whether the Foreman database lives on this host.
func (a *Answers) LocalForemanDB() bool {
	return a.ForemanServer() && a.paramTrue("foreman", "db_manage") && !a.remoteParam("foreman", "db_host")
}

// LocalCandlepinDB reports whether the Candlepin database lives on this host.
func (a *Answers) LocalCandlepinDB() bool {
	return a.CandlepinEnabled() && a.paramTrue("katello", "candlepin_manage_db")
}

// LocalPulpcoreDB reports whether the Pulpcore database lives on this host.
func (a *Answers) LocalPulpcoreDB() bool {
	return a.PulpcoreEnabled() && a.paramTrue("foreman_proxy_content", "pulpcore_manage_postgresql")
}

// LocalPostgreSQL reports whether any database managed by the scenario is
// served by a PostgreSQL instance on this host.
func (a *Answers) LocalPostgreSQL() bool {
	return a.LocalForemanDB() || a.LocalCandlepinDB() || a.LocalPulpcoreDB() || a.DevelScenario()
}

// LocalRedis reports whether a Redis instance on this host is in use.
func (a *Answers) LocalRedis() bool {
	return (a.ForemanServer() && !a.paramTrue("foreman", "jobs_sidekiq_redis_url")) ||
		a.PulpcoreEnabled() || a.DevelScenario()
}

// Services returns the services the enabled modules run on this host that
// use a local database.
func (a *Answers) Services() []string {
	var names []string
	if a.ForemanServer() {
		names = append(names, "foreman", "foreman.socket", "dynflow-sidekiq@*")
	}
	if a.CandlepinEnabled() {
		names = append(names, "tomcat")
	}
	if a.PulpcoreEnabled() {
		names = append(names, "pulpcore-api", "pulpcore-content", "pulpcore-worker@*")
	}
	return names
}
