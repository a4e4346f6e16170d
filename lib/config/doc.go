// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for ledgerwire
// clients.
//
// Configuration is loaded from a single file named either by the
// LEDGERWIRE_CONFIG environment variable (via [Load]) or by a --config
// flag (via [Flags]). There are no fallbacks and no automatic file
// search, so the file that was loaded is always the file that was
// named.
//
// The file may carry environment-specific sections (development,
// staging, production) whose logging settings override the base
// values when [Config].Environment matches. Production defaults to
// JSON logs at info level.
//
// Besides logging, the file extends the two lookup tables the ledger
// protocol needs: extra transaction kinds with their index paths, and
// extra account roles with their indices. [Config.TransactionTable]
// and [Config.RoleTable] build the immutable tables that are handed to
// account.New; collisions with the built-in entries are reported by
// [Config.Validate].
//
// Key exports:
//
//   - [Config] -- master struct with Logging, TransactionKinds, Roles
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Logger] -- the slog.Logger described by the config
package config
