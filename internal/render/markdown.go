// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render converts stored markdown to sanitized HTML for API
// responses. Bodies are persisted as raw markdown and rendered at the
// boundary, so editing never round-trips through HTML.
package render

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// htmlSanitizer strips markup that is unsafe in user-generated content.
var htmlSanitizer = bluemonday.UGCPolicy()

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Markdown converts markdown source to sanitized HTML.
func Markdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return htmlSanitizer.Sanitize(buf.String()), nil
}

// CommentText sanitizes a plain-text comment body, stripping all HTML.
func CommentText(body string) string {
	return bluemonday.StrictPolicy().Sanitize(body)
}
