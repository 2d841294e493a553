package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple title",
			input:    "Hello World",
			expected: "hello-world",
		},
		{
			name:     "with special characters",
			input:    "Hello, World!",
			expected: "hello-world",
		},
		{
			name:     "with numbers",
			input:    "Post 123",
			expected: "post-123",
		},
		{
			name:     "with accents",
			input:    "Café résumé",
			expected: "cafe-resume",
		},
		{
			name:     "cyrillic transliterated",
			input:    "Привет мир",
			expected: "privet-mir",
		},
		{
			name:     "with multiple spaces",
			input:    "Hello   World",
			expected: "hello-world",
		},
		{
			name:     "with hyphens",
			input:    "Hello - World",
			expected: "hello-world",
		},
		{
			name:     "with leading/trailing spaces",
			input:    "  Hello World  ",
			expected: "hello-world",
		},
		{
			name:     "all special characters",
			input:    "!@#$%^&*()",
			expected: "",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "already a slug",
			input:    "already-a-slug",
			expected: "already-a-slug",
		},
		{
			name:     "mixed case",
			input:    "MiXeD CaSe",
			expected: "mixed-case",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.expected {
				t.Errorf("Slugify(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"simple slug", "hello-world", true},
		{"with numbers", "post-123", true},
		{"single word", "hello", true},
		{"single character", "a", true},
		{"empty string", "", false},
		{"uppercase", "Hello-World", false},
		{"with spaces", "hello world", false},
		{"leading hyphen", "-hello", false},
		{"trailing hyphen", "hello-", false},
		{"consecutive hyphens", "hello--world", false},
		{"with underscore", "hello_world", false},
		{"with unicode", "café", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidSlug(tt.input); got != tt.valid {
				t.Errorf("IsValidSlug(%q) = %v, expected %v", tt.input, got, tt.valid)
			}
		})
	}
}
