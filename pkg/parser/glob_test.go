package parser

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeExports(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("1/2/2026, 9:00 - Alice: hi\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestExpandGlobs(t *testing.T) {
	dir := t.TempDir()
	writeExports(t, dir, "c.txt", "a.txt", "b.txt", "notes.zip", "old/d.txt")

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{
			name:     "single file",
			patterns: []string{filepath.Join(dir, "a.txt")},
			want:     []string{filepath.Join(dir, "a.txt")},
		},
		{
			name:     "glob is sorted",
			patterns: []string{filepath.Join(dir, "*.txt")},
			want: []string{
				filepath.Join(dir, "a.txt"),
				filepath.Join(dir, "b.txt"),
				filepath.Join(dir, "c.txt"),
			},
		},
		{
			name:     "duplicates removed",
			patterns: []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "*.txt"), filepath.Join(dir, "a.txt")},
			want: []string{
				filepath.Join(dir, "a.txt"),
				filepath.Join(dir, "b.txt"),
				filepath.Join(dir, "c.txt"),
			},
		},
		{
			name:     "multiple patterns",
			patterns: []string{filepath.Join(dir, "old", "*.txt"), filepath.Join(dir, "*.zip")},
			want: []string{
				filepath.Join(dir, "notes.zip"),
				filepath.Join(dir, "old", "d.txt"),
			},
		},
		{
			name:     "no match kept literally",
			patterns: []string{filepath.Join(dir, "*.missing")},
			want:     []string{filepath.Join(dir, "*.missing")},
		},
		{
			name:     "empty input",
			patterns: nil,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandGlobs(tt.patterns)
			if err != nil {
				t.Fatalf("ExpandGlobs() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ExpandGlobs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpandGlobs_InvalidPattern(t *testing.T) {
	if _, err := ExpandGlobs([]string{"[invalid"}); err == nil {
		t.Error("ExpandGlobs() expected error for invalid pattern")
	}
}
