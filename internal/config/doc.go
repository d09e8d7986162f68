// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ragchat.
//
// Configuration lives at ~/.ragchat/config.toml with built-in defaults and
// RAGCHAT_* environment overrides. A fsnotify-based Watcher reloads the
// file on change so settings edits apply without restarting.
//
// Precedence, lowest to highest:
//
//   - Built-in defaults
//   - config.toml values
//   - RAGCHAT_* environment variables
//
// Invalid configurations are rejected at load with a ValidateErrors that
// names every offending field.
package config
