// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

// Package postgresql performs an in-place major version upgrade of the
// local PostgreSQL cluster.
//
// The upgrade is a strictly ordered, single attempt procedure:
//
//	NeedCheck -> Preflight -> StopService -> PackageUpgrade ->
//	LocaleExtraction -> ConfigPatch -> DataMigration ->
//	ServiceRestart -> PostAnalyze -> Done
//
// A step only starts once its predecessor succeeded. Any failure moves the
// Upgrader to Failed and nothing further is attempted; in particular a
// failure after the service was stopped leaves it stopped.
//
// postgresql-setup --upgrade cannot discover the collation and ctype of the
// existing cluster on its own, so before it runs the previous server binary
// is started in single-user mode to read them from pg_database.
package postgresql
