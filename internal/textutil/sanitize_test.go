package textutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", DefaultFileName},
		{"blank", "   ", DefaultFileName},
		{"plain", "My Video", "My Video"},
		{"accents folded", "Café Olé", "Cafe Ole"},
		{"non ascii dropped", "日本 Tour 2024", "Tour 2024"},
		{"shell characters removed", `Rock & Roll! (Live) [HD] "best"?`, "Rock Roll Live HD best"},
		{"separators become dashes", "AC/DC: Live", "AC-DC- Live"},
		{"whitespace collapses", "a \t\n b", "a b"},
		{"dots trimmed", "..hidden name. ", "hidden name"},
		{"only unsafe", "$$$", DefaultFileName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFileName(tt.input)
			if got != tt.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFileNameTruncates(t *testing.T) {
	got := SanitizeFileName(strings.Repeat("a", 250))
	if len(got) != MaxFileNameLength {
		t.Fatalf("expected %d chars, got %d", MaxFileNameLength, len(got))
	}
	if got := SanitizeFileNameMax("abc def", 4); got != "abc" {
		t.Fatalf("expected trailing space trimmed after cut, got %q", got)
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Clip.mp4")
	if got := UniquePath(path); got != path {
		t.Fatalf("free path should be returned as-is, got %q", got)
	}
	for _, name := range []string{"Clip.mp4", "Clip (1).mp4"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if got := UniquePath(path); got != filepath.Join(dir, "Clip (2).mp4") {
		t.Fatalf("unexpected unique path %q", got)
	}
	if got := OutputPath(dir, "Clip", "mp4"); got != filepath.Join(dir, "Clip (2).mp4") {
		t.Fatalf("unexpected output path %q", got)
	}
	if got := OutputPath(dir, "AC/DC", ".m4a"); got != filepath.Join(dir, "AC-DC.m4a") {
		t.Fatalf("unexpected output path %q", got)
	}
}
