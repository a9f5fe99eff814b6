package model

import "errors"

// Sentinel errors for the failure taxonomy. Per-file and per-edge problems
// are recovered locally and aggregated into AnalysisSummary; only these are
// surfaced to callers.
var (
	// ErrSelectionEmpty is returned only when a repository contains zero
	// source files at all. "Few good matches" never produces it; the
	// fallback tiers resolve that case.
	ErrSelectionEmpty = errors.New("selection empty: repository contains no source files")

	// ErrNoAnalyzableFiles is the analyzer-level counterpart: every selected
	// file failed the per-file extraction pass.
	ErrNoAnalyzableFiles = errors.New("no analyzable files after per-file skip pass")

	// ErrEvidenceMissing rejects artifact or concept construction with an
	// empty evidence list.
	ErrEvidenceMissing = errors.New("evidence missing")

	// ErrEvidenceOutOfRange rejects evidence whose line range falls outside
	// the referenced file's actual length.
	ErrEvidenceOutOfRange = errors.New("evidence out of range")

	// ErrEnrichmentUnavailable marks a keyword-oracle timeout or failure.
	// It is handled internally (fall back to rule-derived keywords) and is
	// never surfaced to the end user as an error.
	ErrEnrichmentUnavailable = errors.New("keyword enrichment unavailable")

	// ErrArtifactNotFound is returned by traceability lookups for unknown
	// artifact IDs.
	ErrArtifactNotFound = errors.New("artifact not found")
)
