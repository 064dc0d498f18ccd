// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package installer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"
)

// successFileName marks a completed installation. It lives next to the
// scenario configuration.
const successFileName = ".installed"

// Scenario is an installer scenario configuration.
type Scenario struct {
	// ConfigFile is the scenario configuration file.
	ConfigFile string

	// AnswerFile is the answers file the scenario uses.
	AnswerFile string
}

type scenarioDoc struct {
	AnswerFile string `yaml:":answer_file"`
}

// LoadScenario reads a scenario configuration file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.NotFoundf("scenario file %q", path)
	} else if err != nil {
		return nil, errors.Trace(err)
	}
	var doc scenarioDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Annotatef(err, "parsing %q", path)
	}
	if doc.AnswerFile == "" {
		return nil, errors.NotValidf("scenario %q without answer file", path)
	}
	answerFile := doc.AnswerFile
	if !filepath.IsAbs(answerFile) {
		answerFile = filepath.Join(filepath.Dir(path), answerFile)
	}
	return &Scenario{ConfigFile: path, AnswerFile: answerFile}, nil
}

// Answers loads the scenario's answers file.
func (s *Scenario) Answers() (*Answers, error) {
	return LoadAnswers(s.AnswerFile)
}

// SuccessFile is written once the scenario has been applied successfully.
func (s *Scenario) SuccessFile() string {
	return filepath.Join(filepath.Dir(s.ConfigFile), successFileName)
}

// NewInstall reports whether the scenario has never completed on this
// host.
func (s *Scenario) NewInstall() bool {
	_, err := os.Stat(s.SuccessFile())
	return os.IsNotExist(err)
}

// Patched out in tests.
var hostname = os.Hostname

// RemoteHost reports whether host refers to a machine other than this one.
func RemoteHost(host string) bool {
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return false
	}
	local, err := hostname()
	if err != nil {
		return true
	}
	return !strings.EqualFold(host, strings.TrimSpace(local))
}
