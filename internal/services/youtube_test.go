package services

import (
	"strings"
	"testing"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch URL with extra params", "https://www.youtube.com/watch?list=PL123&v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/abc12345678", "abc12345678"},
		{"short link with fragment", "https://youtu.be/abc12345678#t=30", "abc12345678"},
		{"embed URL", "https://www.youtube.com/embed/abc12345678", "abc12345678"},
		{"shorts URL", "https://www.youtube.com/shorts/abc12345678", "abc12345678"},
		{"no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"not a video URL", "https://example.com/watch?v=dQw4w9WgXcQ", ""},
		{"plain text", "hello world", ""},
		{"empty string", "", ""},
		{"id too short", "https://youtu.be/short", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractVideoID(tc.url)
			if got != tc.expected {
				t.Errorf("ExtractVideoID(%q) = %q, expected %q", tc.url, got, tc.expected)
			}
		})
	}
}

func TestIsValidWatchURL(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		valid bool
	}{
		{"well-formed watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"well-formed short link", "https://youtu.be/abc12345678", true},
		{"missing scheme still extractable", "youtube.com/watch?v=dQw4w9WgXcQ", false},
		{"valid URL but not a video", "https://example.com/page", false},
		{"garbage", "not a url at all", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValidWatchURL(tc.url); got != tc.valid {
				t.Errorf("IsValidWatchURL(%q) = %v, expected %v", tc.url, got, tc.valid)
			}
		})
	}
}

// Validation is stricter than extraction: the same input can fail the gate
// while still yielding an id.
func TestValidationExtractionAsymmetry(t *testing.T) {
	raw := "youtube.com/watch?v=dQw4w9WgXcQ"

	if IsValidWatchURL(raw) {
		t.Error("Expected schemeless URL to fail strict validation")
	}
	if id := ExtractVideoID(raw); id != "dQw4w9WgXcQ" {
		t.Errorf("Expected lenient extraction to still succeed, got %q", id)
	}
}

func TestThumbnail(t *testing.T) {
	id := "dQw4w9WgXcQ"
	got := Thumbnail(id)
	if !strings.Contains(got, id) {
		t.Errorf("Expected thumbnail URL to contain %q, got %q", id, got)
	}

	if got := Thumbnail(""); got != PlaceholderThumbnail {
		t.Errorf("Expected placeholder for empty id, got %q", got)
	}
}
