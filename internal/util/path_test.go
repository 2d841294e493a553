// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"path/filepath"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "simple filename",
			input: "image.jpg",
			want:  "image.jpg",
		},
		{
			name:  "filename with spaces",
			input: "my image.jpg",
			want:  "my image.jpg",
		},
		{
			name:  "path traversal attempt",
			input: "../../../etc/passwd",
			want:  "passwd",
		},
		{
			name:  "path with directory",
			input: "uploads/images/photo.png",
			want:  "photo.png",
		},
		{
			name:  "absolute path",
			input: "/var/www/uploads/file.txt",
			want:  "file.txt",
		},
		{
			name:    "single dot",
			input:   ".",
			wantErr: true,
		},
		{
			name:    "double dot",
			input:   "..",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeFilename(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("SanitizeFilename(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("SanitizeFilename(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, expected %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidatePathWithinBase(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		name    string
		target  string
		wantErr bool
	}{
		{
			name:   "base itself",
			target: base,
		},
		{
			name:   "direct child",
			target: filepath.Join(base, "file.txt"),
		},
		{
			name:   "nested child",
			target: filepath.Join(base, "a", "b", "file.txt"),
		},
		{
			name:    "escapes via dotdot",
			target:  filepath.Join(base, "..", "outside.txt"),
			wantErr: true,
		},
		{
			name:    "sibling with base prefix",
			target:  base + "-malicious/file.txt",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinBase(base, tt.target)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePathWithinBase(%q, %q) error = %v, wantErr %v", base, tt.target, err, tt.wantErr)
			}
		})
	}
}

func TestSafeJoinPath(t *testing.T) {
	base := t.TempDir()

	got, err := SafeJoinPath(base, "originals", "abc", "img.jpg")
	if err != nil {
		t.Fatalf("SafeJoinPath: %v", err)
	}
	want := filepath.Join(base, "originals", "abc", "img.jpg")
	if got != want {
		t.Errorf("SafeJoinPath = %q, expected %q", got, want)
	}

	if _, err := SafeJoinPath(base, "..", "escape.txt"); err == nil {
		t.Error("SafeJoinPath allowed traversal outside base")
	}
}

func TestContainsPathTraversal(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"uploads/file.txt", false},
		{"./uploads/file.txt", false},
		{"../secret", true},
		{"uploads/../../secret", true},
		{"..", true},
	}

	for _, tt := range tests {
		if got := ContainsPathTraversal(tt.path); got != tt.want {
			t.Errorf("ContainsPathTraversal(%q) = %v, expected %v", tt.path, got, tt.want)
		}
	}
}
