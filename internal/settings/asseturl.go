// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package settings

import (
	"regexp"
	"strings"
)

var duplicateSlashes = regexp.MustCompile(`/{2,}`)

// AssetURL resolves a possibly relative asset path against the API base
// origin. Absolute http(s), protocol-relative, and data: URLs pass through
// unchanged. Relative paths are coerced to a single leading slash, duplicate
// slashes are collapsed, and a legacy "/api/uploads/" prefix is stripped
// down to "/uploads/". When base is empty the normalized relative path is
// returned as-is, so callers without a configured origin still render.
func AssetURL(path, base string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") ||
		strings.HasPrefix(path, "https://") ||
		strings.HasPrefix(path, "//") ||
		strings.HasPrefix(path, "data:") {
		return path
	}

	normalized := "/" + strings.TrimLeft(path, "/")
	normalized = duplicateSlashes.ReplaceAllString(normalized, "/")
	if strings.HasPrefix(normalized, "/api/uploads/") {
		normalized = strings.TrimPrefix(normalized, "/api")
	}

	if base == "" {
		return normalized
	}
	return strings.TrimRight(base, "/") + normalized
}
