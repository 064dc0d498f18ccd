// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package postgresql

import (
	"bufio"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/juju/errors"

	"github.com/theforeman/foreman-installer/internal/exec"
)

// ClusterLocale holds the locale settings a cluster was initialised with.
type ClusterLocale struct {
	Collate string
	CType   string
}

// Validate checks that both settings are present and can be passed on as
// initdb options.
func (l ClusterLocale) Validate() error {
	for name, value := range map[string]string{"collate": l.Collate, "ctype": l.CType} {
		if value == "" {
			return errors.NotValidf("empty %s", name)
		}
		if strings.IndexFunc(value, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) >= 0 {
			return errors.NotValidf("%s %q", name, value)
		}
	}
	return nil
}

// DefaultDatabase is the database whose settings are read. initdb creates
// it in every cluster.
const DefaultDatabase = "postgres"

func localeQuery(database string) string {
	return fmt.Sprintf("select datcollate,datctype from pg_database where datname='%s';\n", database)
}

// localeRe matches the attribute lines the single-user backend prints for
// every column of a result row, such as
//
//	1: datcollate = "en_US.UTF-8"	(typeid = 19, len = 64, typmod = -1, byval = f)
var localeRe = regexp.MustCompile(`dat(collate|ctype)\s*=\s*(?:"([^"]*)"|([^\s"]+))`)

// ParseLocale extracts the collation and ctype from the output of the
// locale query. Both must be present; guessing either would silently
// corrupt index ordering in the upgraded cluster.
func ParseLocale(output string) (ClusterLocale, error) {
	found := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		m := localeRe.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		if _, ok := found[m[1]]; ok {
			continue
		}
		value := m[2]
		if value == "" {
			value = m[3]
		}
		if value != "" {
			found[m[1]] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return ClusterLocale{}, errors.Annotate(err, "reading locale query output")
	}

	var missing []string
	for _, key := range []string{"collate", "ctype"} {
		if found[key] == "" {
			missing = append(missing, "dat"+key)
		}
	}
	if len(missing) > 0 {
		return ClusterLocale{}, &ParseError{What: "cluster locale", Missing: missing, Output: output}
	}
	locale := ClusterLocale{Collate: found["collate"], CType: found["ctype"]}
	if err := locale.Validate(); err != nil {
		return ClusterLocale{}, &ParseError{What: "cluster locale", Output: output, Err: err}
	}
	return locale, nil
}

// LocaleExtractor reads the locale of an existing cluster by starting the
// server binary of the cluster's own major version in single-user mode.
// The service must be stopped.
type LocaleExtractor struct {
	Runner exec.Runner

	// DataDir is the cluster to inspect.
	DataDir string

	// OldBinDir is a template for the binary directory of a previous
	// major version, with %s standing for that version.
	OldBinDir string

	// User is the account the server runs as.
	User string

	// WorkDir is the working directory of the server process, normally
	// the home of User.
	WorkDir string

	// Database defaults to DefaultDatabase.
	Database string
}

// BinDir returns the binary directory for installedVersion.
func (e LocaleExtractor) BinDir(installedVersion string) (string, error) {
	if installedVersion == "" || strings.ContainsAny(installedVersion, "/\x00") || strings.Contains(installedVersion, "..") {
		return "", errors.NotValidf("installed version %q", installedVersion)
	}
	return fmt.Sprintf(e.OldBinDir, installedVersion), nil
}

// ExtractLocale returns the collation and ctype of the cluster, which was
// created by installedVersion.
func (e LocaleExtractor) ExtractLocale(ctx context.Context, installedVersion string) (ClusterLocale, error) {
	binDir, err := e.BinDir(installedVersion)
	if err != nil {
		return ClusterLocale{}, errors.Trace(err)
	}
	database := e.Database
	if database == "" {
		database = DefaultDatabase
	}

	cmd := exec.Command{
		Args: asUser(e.User,
			filepath.Join(binDir, "postgres"), "--single", "-D", e.DataDir, database),
		Stdin: localeQuery(database),
		Dir:   e.WorkDir,
	}
	outcome, err := exec.RunChecked(ctx, e.Runner, cmd)
	if err != nil {
		return ClusterLocale{}, err
	}
	locale, err := ParseLocale(outcome.Combined())
	if err != nil {
		return ClusterLocale{}, err
	}
	logger.Infof("cluster collation is %q, ctype is %q", locale.Collate, locale.CType)
	return locale, nil
}

// asUser wraps args so they run as user.
func asUser(user string, args ...string) []string {
	return append([]string{"runuser", "-u", user, "--"}, args...)
}
