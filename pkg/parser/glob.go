package parser

import (
	"fmt"
	"path/filepath"
	"slices"
)

// ExpandGlobs resolves export paths and glob patterns into a sorted,
// deduplicated file list. A pattern that matches nothing is kept as a
// literal path so that reading it later reports which file is missing.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string

	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			add(pattern)
			continue
		}
		for _, m := range matches {
			add(m)
		}
	}

	slices.Sort(paths)
	return paths, nil
}
