package trace

import (
	"sort"
	"time"

	"codelens/internal/model"
)

// ArtifactState is the serializable view of one artifact for persistence
// and for the UI's outdated-status display.
type ArtifactState struct {
	ID           string               `json:"id"`
	Evidence     []model.CodeEvidence `json:"evidence"`
	Outdated     bool                 `json:"outdated"`
	StaleReason  string               `json:"stale_reason,omitempty"`
	RegisteredAt time.Time            `json:"registered_at"`
	Hashes       map[string]string    `json:"hashes"`
}

// Snapshot is the full serializable index state.
type Snapshot struct {
	Artifacts []ArtifactState     `json:"artifacts"`
	Files     map[string]FileInfo `json:"files"`
}

// FileInfo is the persisted per-file stat.
type FileInfo struct {
	LineCount int    `json:"line_count"`
	Hash      string `json:"hash"`
}

// Export captures the current index state.
func (ix *Index) Export() Snapshot {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	snap := Snapshot{Files: make(map[string]FileInfo, len(ix.files))}
	for path, stat := range ix.files {
		snap.Files[path] = FileInfo{LineCount: stat.LineCount, Hash: stat.Hash}
	}
	for _, entry := range ix.artifacts {
		hashes := make(map[string]string, len(entry.Hashes))
		for k, v := range entry.Hashes {
			hashes[k] = v
		}
		snap.Artifacts = append(snap.Artifacts, ArtifactState{
			ID:           entry.ID,
			Evidence:     append([]model.CodeEvidence(nil), entry.Evidence...),
			Outdated:     entry.Outdated,
			StaleReason:  entry.StaleReason,
			RegisteredAt: entry.RegisteredAt,
			Hashes:       hashes,
		})
	}
	sort.Slice(snap.Artifacts, func(i, j int) bool { return snap.Artifacts[i].ID < snap.Artifacts[j].ID })
	return snap
}

// Import rebuilds an index from a snapshot.
func Import(snap Snapshot) *Index {
	ix := NewIndex()
	for path, fi := range snap.Files {
		ix.files[path] = fileStat{LineCount: fi.LineCount, Hash: fi.Hash}
	}
	for _, as := range snap.Artifacts {
		hashes := make(map[string]string, len(as.Hashes))
		for k, v := range as.Hashes {
			hashes[k] = v
		}
		ix.artifacts[as.ID] = &artifactEntry{
			ID:           as.ID,
			Evidence:     append([]model.CodeEvidence(nil), as.Evidence...),
			Outdated:     as.Outdated,
			StaleReason:  as.StaleReason,
			RegisteredAt: as.RegisteredAt,
			Hashes:       hashes,
		}
		for path := range hashes {
			ix.reverse[path] = appendUnique(ix.reverse[path], as.ID)
		}
	}
	return ix
}

// States returns every artifact's serializable state, sorted by ID.
func (ix *Index) States() []ArtifactState {
	return ix.Export().Artifacts
}
