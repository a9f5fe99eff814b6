// Package snapshot persists completed analysis runs so a repository does
// not have to be re-analyzed for a goal that was already answered, and so
// the traceability index survives restarts.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"codelens/internal/db"
	"codelens/internal/graph"
	"codelens/internal/model"
	"codelens/internal/pipeline"
	"codelens/internal/trace"
)

// Run is one persisted analysis run.
type Run struct {
	ID             string                   `json:"id"`
	RepoRoot       string                   `json:"repo_root"`
	Goal           string                   `json:"goal"`
	IntentCategory string                   `json:"intent_category"`
	Stage          string                   `json:"stage"`
	Selection      *model.SelectionResult   `json:"selection,omitempty"`
	Analysis       *model.MultiFileAnalysis `json:"analysis,omitempty"`
	Graph          graph.Serializable       `json:"graph"`
	Trace          trace.Snapshot           `json:"trace"`
	Artifacts      map[string]string        `json:"artifacts,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
}

// FromResult converts a pipeline result into a persistable run.
func FromResult(repoRoot, goal string, res *pipeline.Result) *Run {
	run := &Run{
		ID:        uuid.NewString(),
		RepoRoot:  repoRoot,
		Goal:      goal,
		Stage:     string(res.Stage),
		Selection: res.Selection,
		Analysis:  res.Analysis,
		Artifacts: res.Artifacts,
	}
	if res.Intent != nil {
		run.IntentCategory = string(res.Intent.Primary)
	}
	if res.Graph != nil {
		run.Graph = res.Graph.Serialize()
	}
	if res.Index != nil {
		run.Trace = res.Index.Export()
	}
	return run
}

// Index rebuilds the live traceability index from the persisted snapshot.
func (r *Run) Index() *trace.Index {
	return trace.Import(r.Trace)
}

// Store provides CRUD operations for runs.
type Store struct {
	db *db.DB
}

// NewStore creates a new run store.
func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

// Save inserts a run.
func (s *Store) Save(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	run.CreatedAt = time.Now().UTC()

	selection, err := json.Marshal(run.Selection)
	if err != nil {
		return fmt.Errorf("marshaling selection: %w", err)
	}
	analysis, err := json.Marshal(run.Analysis)
	if err != nil {
		return fmt.Errorf("marshaling analysis: %w", err)
	}
	graphJSON, err := json.Marshal(run.Graph)
	if err != nil {
		return fmt.Errorf("marshaling graph: %w", err)
	}
	traceJSON, err := json.Marshal(run.Trace)
	if err != nil {
		return fmt.Errorf("marshaling trace index: %w", err)
	}
	artifacts, err := json.Marshal(run.Artifacts)
	if err != nil {
		return fmt.Errorf("marshaling artifacts: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, repo_root, goal, intent_category, stage, selection, analysis, graph, trace_index, artifacts, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.RepoRoot, run.Goal, run.IntentCategory, run.Stage,
		string(selection), string(analysis), string(graphJSON), string(traceJSON), string(artifacts),
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	run, err := s.scanRun(s.db.QueryRowContext(ctx,
		`SELECT id, repo_root, goal, intent_category, stage, selection, analysis, graph, trace_index, artifacts, created_at
		 FROM runs WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("getting run: %w", err)
	}
	return run, nil
}

// Latest returns the most recent run for a repository and goal, or
// sql.ErrNoRows when none exists.
func (s *Store) Latest(ctx context.Context, repoRoot, goal string) (*Run, error) {
	run, err := s.scanRun(s.db.QueryRowContext(ctx,
		`SELECT id, repo_root, goal, intent_category, stage, selection, analysis, graph, trace_index, artifacts, created_at
		 FROM runs WHERE repo_root = ? AND goal = ? ORDER BY created_at DESC LIMIT 1`,
		repoRoot, goal))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("getting latest run: %w", err)
	}
	return run, nil
}

// List returns all runs for a repository, newest first, without the heavy
// payload columns.
func (s *Store) List(ctx context.Context, repoRoot string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, repo_root, goal, intent_category, stage, created_at
		 FROM runs WHERE repo_root = ? ORDER BY created_at DESC`, repoRoot)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var result []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.RepoRoot, &r.Goal, &r.IntentCategory, &r.Stage, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// Delete removes a run by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateTrace rewrites a run's persisted trace index, used after artifacts
// are marked outdated or revalidated.
func (s *Store) UpdateTrace(ctx context.Context, id string, snap trace.Snapshot) error {
	traceJSON, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling trace index: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE runs SET trace_index=? WHERE id=?`, string(traceJSON), id)
	if err != nil {
		return fmt.Errorf("updating trace index: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanRun(row rowScanner) (*Run, error) {
	var (
		r         Run
		selection string
		analysis  string
		graphJSON string
		traceJSON string
		artifacts string
	)
	if err := row.Scan(&r.ID, &r.RepoRoot, &r.Goal, &r.IntentCategory, &r.Stage,
		&selection, &analysis, &graphJSON, &traceJSON, &artifacts, &r.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(selection), &r.Selection); err != nil {
		return nil, fmt.Errorf("unmarshaling selection: %w", err)
	}
	if err := json.Unmarshal([]byte(analysis), &r.Analysis); err != nil {
		return nil, fmt.Errorf("unmarshaling analysis: %w", err)
	}
	if err := json.Unmarshal([]byte(graphJSON), &r.Graph); err != nil {
		return nil, fmt.Errorf("unmarshaling graph: %w", err)
	}
	if err := json.Unmarshal([]byte(traceJSON), &r.Trace); err != nil {
		return nil, fmt.Errorf("unmarshaling trace index: %w", err)
	}
	if err := json.Unmarshal([]byte(artifacts), &r.Artifacts); err != nil {
		return nil, fmt.Errorf("unmarshaling artifacts: %w", err)
	}
	return &r, nil
}
