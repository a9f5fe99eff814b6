// Package repotree loads a repository snapshot from a local directory into
// the engine's RepositoryTree form. It is the local-read acquisition
// collaborator: cloning and archive extraction happen elsewhere.
package repotree

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"codelens/internal/model"
)

// DefaultMaxFileSize is the maximum file size to load (1 MB).
const DefaultMaxFileSize int64 = 1 << 20

// Options controls Load.
type Options struct {
	MaxFileSize int64    // Files larger than this are skipped (0 = default).
	Exclude     []string // Extra glob patterns to skip during traversal.
}

// alwaysSkippedDirs are never descended into regardless of configuration:
// their contents are either VCS metadata or machine output that can only
// waste the selector's time. The selector applies its own configurable
// denylist on top of this.
var alwaysSkippedDirs = map[string]bool{
	".git":        true,
	".hg":         true,
	".svn":        true,
	".idea":       true,
	".vscode":     true,
	"__pycache__": true,
	".codelens":   true,
}

// Load traverses root and returns an immutable RepositoryTree of every
// readable text file. Unreadable entries and binary files are skipped, not
// fatal; gitignore patterns at the root are honoured.
func Load(root string, opts Options) (*model.RepositoryTree, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("repotree: resolve root: %w", err)
	}

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	gitignore := loadGitignore(filepath.Join(absRoot, ".gitignore"))

	tree := &model.RepositoryTree{
		Root:  absRoot,
		Files: make(map[string]*model.FileRecord),
	}

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip entries we cannot read instead of aborting.
			return nil
		}

		if d.IsDir() {
			if alwaysSkippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if gitignore.matches(relPath) {
			return nil
		}
		if matchesAny(relPath, opts.Exclude) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > maxSize {
			return nil
		}

		rec, ok := readRecord(path, relPath, info.Size())
		if !ok {
			return nil
		}
		tree.Files[relPath] = rec
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repotree: traversal: %w", err)
	}

	return tree, nil
}

// FromContents builds a RepositoryTree directly from in-memory contents,
// keyed by repo-relative path. Used by tests and by collaborators that
// acquired the repository some other way (archive, API).
func FromContents(root string, contents map[string]string) *model.RepositoryTree {
	tree := &model.RepositoryTree{
		Root:  root,
		Files: make(map[string]*model.FileRecord, len(contents)),
	}
	for relPath, content := range contents {
		relPath = filepath.ToSlash(relPath)
		tree.Files[relPath] = newRecord(relPath, content)
	}
	return tree
}

// readRecord loads one file into a FileRecord. Binary content is rejected.
func readRecord(absPath, relPath string, size int64) (*model.FileRecord, bool) {
	data, err := readFile(absPath)
	if err != nil {
		return nil, false
	}
	if isBinary(data) {
		return nil, false
	}
	rec := newRecord(relPath, string(data))
	rec.Size = size
	return rec, true
}

func newRecord(relPath, content string) *model.FileRecord {
	name := filepath.Base(relPath)
	sum := sha256.Sum256([]byte(content))
	return &model.FileRecord{
		Path:        relPath,
		Name:        name,
		Extension:   strings.ToLower(filepath.Ext(name)),
		Size:        int64(len(content)),
		LineCount:   countLines(content),
		Language:    DetectLanguage(name),
		ContentHash: hex.EncodeToString(sum[:]),
		Content:     content,
	}
}

// countLines counts newline-delimited lines; a trailing fragment without a
// newline still counts as a line.
func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// isBinary checks the leading bytes for NULs, a simple but effective
// heuristic for binary content.
func isBinary(data []byte) bool {
	limit := len(data)
	if limit > 512 {
		limit = 512
	}
	for i := 0; i < limit; i++ {
		if data[i] == 0 {
			return true
		}
	}
	return false
}
