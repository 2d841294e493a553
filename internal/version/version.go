// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version carries build metadata stamped into the binary.
package version

// Info holds the values injected at build time via -ldflags.
type Info struct {
	Version   string // semantic version from git tags
	GitCommit string // short commit hash
	BuildTime string // RFC3339 build timestamp
}
