package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandPaths turns the user's selection into an ordered list of file
// paths. Patterns containing glob metacharacters are expanded with ** support
// and only regular files are kept; plain paths pass through as given so that
// a missing file surfaces as a per-file error. Duplicates keep their first
// position.
func ExpandPaths(patterns []string) ([]string, error) {
	seen := make(map[string]bool, len(patterns))
	var out []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if !strings.ContainsAny(pattern, "*?[{") {
			add(pattern)
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			add(m)
		}
	}
	return out, nil
}
