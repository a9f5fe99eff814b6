// Package conceptindex provides semantic search over extracted concepts,
// so "how does auth work here" finds the login handler concept even when
// no keyword matches.
package conceptindex

import (
	"context"
	"fmt"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	"codelens/internal/model"
)

const collectionName = "concepts"

// Match is one search hit: the stored concept plus its similarity score.
type Match struct {
	ArtifactID  string                `json:"artifact_id"`
	Name        string                `json:"name"`
	Category    model.ConceptCategory `json:"category"`
	Description string                `json:"description"`
	FilePath    string                `json:"file_path"`
	Similarity  float32               `json:"similarity"`
}

// Index is an in-memory vector index over concepts.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
}

// New creates an empty concept index backed by the given embedder.
func New(embedder Embedder) (*Index, error) {
	db := chromem.NewDB()
	ef := toChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &Index{db: db, collection: col, embedFunc: ef}, nil
}

// Add indexes concepts keyed by their traceability artifact IDs. artifacts
// maps artifact ID to concept name; concepts without a registered artifact
// are skipped.
func (ix *Index) Add(ctx context.Context, artifacts map[string]string, concepts []*model.Concept) error {
	byName := make(map[string]*model.Concept, len(concepts))
	for _, c := range concepts {
		byName[c.Name] = c
	}

	var docs []chromem.Document
	for id, name := range artifacts {
		c, ok := byName[name]
		if !ok {
			continue
		}
		docs = append(docs, chromem.Document{
			ID:       id,
			Content:  documentText(c),
			Metadata: conceptMetadata(c),
		})
	}
	if len(docs) == 0 {
		return nil
	}
	return ix.collection.AddDocuments(ctx, docs, 1)
}

// Search returns up to limit concepts most similar to the query.
func (ix *Index) Search(ctx context.Context, query string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = 10
	}

	// chromem-go requires nResults <= collection size.
	count := ix.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := ix.collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("concept query: %w", err)
	}

	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{
			ArtifactID:  r.ID,
			Name:        r.Metadata["name"],
			Category:    model.ConceptCategory(r.Metadata["category"]),
			Description: r.Content,
			FilePath:    r.Metadata["file_path"],
			Similarity:  r.Similarity,
		}
	}
	return matches, nil
}

// Count reports how many concepts are indexed.
func (ix *Index) Count() int {
	return ix.collection.Count()
}

// Persist writes the index to a file under dir.
func (ix *Index) Persist(dir string) error {
	return ix.db.ExportToFile(dir+"/concepts.gob.gz", true, "")
}

// Load restores a previously persisted index from dir.
func (ix *Index) Load(dir string) error {
	if err := ix.db.ImportFromFile(dir+"/concepts.gob.gz", ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}
	col := ix.db.GetCollection(collectionName, ix.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	ix.collection = col
	return nil
}

// documentText is what gets embedded: the name, description, and evidence
// file paths, so path vocabulary contributes to similarity.
func documentText(c *model.Concept) string {
	var paths []string
	seen := make(map[string]bool)
	for _, ev := range c.Evidence {
		if !seen[ev.FilePath] {
			seen[ev.FilePath] = true
			paths = append(paths, ev.FilePath)
		}
	}
	return c.Name + ". " + c.Description + ". Files: " + strings.Join(paths, ", ")
}

func conceptMetadata(c *model.Concept) map[string]string {
	md := map[string]string{
		"name":     c.Name,
		"category": string(c.Category),
	}
	if len(c.Evidence) > 0 {
		md["file_path"] = c.Evidence[0].FilePath
	}
	return md
}
