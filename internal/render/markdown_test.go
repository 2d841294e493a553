// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"strings"
	"testing"
)

func TestMarkdownRendersBasicFormatting(t *testing.T) {
	html, err := Markdown("# Title\n\nSome **bold** text.")
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "<strong>bold</strong>") {
		t.Errorf("unexpected output: %q", html)
	}
}

func TestMarkdownStripsScripts(t *testing.T) {
	html, err := Markdown("hello <script>alert(1)</script> world")
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if strings.Contains(html, "<script") {
		t.Errorf("script tag survived sanitization: %q", html)
	}
}

func TestMarkdownTables(t *testing.T) {
	html, err := Markdown("| a | b |\n|---|---|\n| 1 | 2 |")
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if !strings.Contains(html, "<table") {
		t.Errorf("GFM table not rendered: %q", html)
	}
}

func TestCommentTextStripsAllHTML(t *testing.T) {
	got := CommentText(`nice <b>post</b> <a href="https://spam.example">click</a>`)
	if strings.Contains(got, "<") {
		t.Errorf("markup survived: %q", got)
	}
	if !strings.Contains(got, "nice") || !strings.Contains(got, "post") {
		t.Errorf("text content lost: %q", got)
	}
}
