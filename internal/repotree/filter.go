package repotree

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// matchesAny checks if relPath matches any of the given glob patterns,
// trying both the full relative path and the bare filename. Patterns use
// doublestar syntax so ** works.
func matchesAny(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if matched, err := doublestar.PathMatch(pattern, normalized); err == nil && matched {
			return true
		}
		if matched, err := doublestar.PathMatch(pattern, filepath.Base(normalized)); err == nil && matched {
			return true
		}
	}
	return false
}

// readFile is a tiny indirection over os.ReadFile kept for tests.
var readFile = os.ReadFile

// gitignoreSet holds the parsed patterns of one .gitignore file.
type gitignoreSet struct {
	patterns []string
}

// loadGitignore reads a .gitignore file's non-empty, non-comment lines.
// A missing file yields an empty set.
func loadGitignore(path string) gitignoreSet {
	data, err := os.ReadFile(path)
	if err != nil {
		return gitignoreSet{}
	}
	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return gitignoreSet{patterns: patterns}
}

// matches checks a repo-relative path against the gitignore patterns.
// Directory-only patterns (trailing /) match any path under that directory;
// slashless patterns match any path component.
func (g gitignoreSet) matches(relPath string) bool {
	if len(g.patterns) == 0 {
		return false
	}
	normalized := filepath.ToSlash(relPath)
	parts := strings.Split(normalized, "/")

	for _, pattern := range g.patterns {
		dirOnly := strings.HasSuffix(pattern, "/")
		pattern = strings.TrimSuffix(pattern, "/")

		if !strings.Contains(pattern, "/") {
			for i, part := range parts {
				matched, _ := filepath.Match(pattern, part)
				if !matched {
					continue
				}
				// A directory-only pattern must match a non-final component.
				if !dirOnly || i < len(parts)-1 {
					return true
				}
			}
			continue
		}

		if matched, _ := doublestar.PathMatch(pattern, normalized); matched {
			return true
		}
		if dirOnly {
			if matched, _ := doublestar.PathMatch(pattern+"/**", normalized); matched {
				return true
			}
		}
	}
	return false
}
