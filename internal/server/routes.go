package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"codelens/internal/model"
	"codelens/internal/pipeline"
	"codelens/internal/repotree"
	"codelens/internal/snapshot"
)

func (s *Server) registerRoutes(r chi.Router) {
	r.Post("/api/analyze", s.handleAnalyze)
	r.Get("/api/runs", s.handleListRuns)
	r.Get("/api/runs/{id}", s.handleGetRun)
	r.Get("/api/runs/{id}/selection", s.handleGetSelection)
	r.Get("/api/runs/{id}/graph", s.handleGetGraph)
	r.Get("/api/runs/{id}/concepts", s.handleGetConcepts)
	r.Get("/api/runs/{id}/artifacts", s.handleListArtifacts)
	r.Get("/api/runs/{id}/artifacts/{artifactID}", s.handleTraceArtifact)
	r.Post("/api/runs/{id}/outdated", s.handleMarkOutdated)
	r.Post("/api/runs/{id}/artifacts/{artifactID}/revalidate", s.handleRevalidate)
	r.Get("/api/search", s.handleSearch)
}

type analyzeRequest struct {
	Path string `json:"path"`
	Goal string `json:"goal"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Path == "" || req.Goal == "" {
		http.Error(w, "path and goal are required", http.StatusBadRequest)
		return
	}

	tree, err := repotree.Load(req.Path, repotree.Options{Exclude: s.cfg.Selector.Denylist})
	if err != nil {
		http.Error(w, "loading repository: "+err.Error(), http.StatusBadRequest)
		return
	}

	pipe := pipeline.New(s.cfg, s.oracle)
	pipe.SetEventFunc(s.hub.Broadcast)

	result, runErr := pipe.Run(r.Context(), tree, req.Goal)

	run := snapshot.FromResult(req.Path, req.Goal, result)
	if err := s.store.Save(r.Context(), run); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if result.Index != nil {
		s.mu.Lock()
		s.indexes[run.ID] = result.Index
		s.mu.Unlock()
	}
	if s.concepts != nil && result.Analysis != nil {
		if err := s.concepts.Add(r.Context(), result.Artifacts, result.Analysis.Concepts); err != nil {
			// Search degrades, the run itself is fine.
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	status := http.StatusOK
	if runErr != nil {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	repo := r.URL.Query().Get("repo")
	if repo == "" {
		http.Error(w, "repo query parameter is required", http.StatusBadRequest)
		return
	}
	runs, err := s.store.List(r.Context(), repo)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []snapshot.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	if run.Selection == nil {
		http.Error(w, "run has no selection", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, run.Selection)
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run.Graph)
}

// conceptView pairs a concept with its artifact's current staleness.
type conceptView struct {
	ArtifactID string         `json:"artifact_id"`
	Concept    *model.Concept `json:"concept"`
	Outdated   bool           `json:"outdated"`
}

func (s *Server) handleGetConcepts(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	if run.Analysis == nil {
		writeJSON(w, http.StatusOK, []conceptView{})
		return
	}
	ix, err := s.indexFor(r.Context(), run.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	byName := make(map[string]string, len(run.Artifacts))
	for id, name := range run.Artifacts {
		byName[name] = id
	}
	views := make([]conceptView, 0, len(run.Analysis.Concepts))
	for _, c := range run.Analysis.Concepts {
		id := byName[c.Name]
		views = append(views, conceptView{
			ArtifactID: id,
			Concept:    c,
			Outdated:   id != "" && ix.Outdated(id),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	ix, err := s.indexFor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, ix.States())
}

func (s *Server) handleTraceArtifact(w http.ResponseWriter, r *http.Request) {
	ix, err := s.indexFor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	artifactID := chi.URLParam(r, "artifactID")
	evidence, err := ix.Trace(artifactID)
	if err != nil {
		http.Error(w, "artifact not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"artifact_id": artifactID,
		"evidence":    evidence,
		"outdated":    ix.Outdated(artifactID),
		"valid":       ix.Validate(artifactID),
	})
}

type outdatedRequest struct {
	File string `json:"file"`
	Hash string `json:"hash"`
}

func (s *Server) handleMarkOutdated(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	ix, err := s.indexFor(r.Context(), runID)
	if err != nil {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	var req outdatedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.File == "" || req.Hash == "" {
		http.Error(w, "file and hash are required", http.StatusBadRequest)
		return
	}

	flipped := ix.MarkOutdated(req.File, req.Hash)
	s.persistIndex(r.Context(), runID, ix)
	writeJSON(w, http.StatusOK, map[string]int{"invalidated": flipped})
}

func (s *Server) handleRevalidate(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	ix, err := s.indexFor(r.Context(), runID)
	if err != nil {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	artifactID := chi.URLParam(r, "artifactID")
	if err := ix.Revalidate(artifactID); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.persistIndex(r.Context(), runID, ix)
	writeJSON(w, http.StatusOK, map[string]bool{"outdated": false})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.concepts == nil {
		http.Error(w, "semantic search is not configured", http.StatusServiceUnavailable)
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "q query parameter is required", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	matches, err := s.concepts.Search(r.Context(), query, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*snapshot.Run, bool) {
	run, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "run not found", http.StatusNotFound)
		return nil, false
	}
	return run, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
