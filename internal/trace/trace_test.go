package trace

import (
	"errors"
	"reflect"
	"testing"

	"codelens/internal/model"
)

func seededIndex(t *testing.T) *Index {
	t.Helper()
	ix := NewIndex()
	ix.SetFile("src/auth.js", 100, "hash-auth-1")
	ix.SetFile("src/db.js", 40, "hash-db-1")
	return ix
}

func ev(path string, start, end int) model.CodeEvidence {
	return model.CodeEvidence{FilePath: path, StartLine: start, EndLine: end}
}

func TestRegisterAndTrace(t *testing.T) {
	ix := seededIndex(t)
	evidence := []model.CodeEvidence{ev("src/auth.js", 10, 25), ev("src/db.js", 1, 5)}

	if err := ix.Register("a1", evidence); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := ix.Trace("a1")
	if err != nil {
		t.Fatalf("Trace failed: %v", err)
	}
	if !reflect.DeepEqual(got, evidence) {
		t.Errorf("Trace = %+v, want %+v", got, evidence)
	}
	if !ix.Validate("a1") {
		t.Error("freshly registered artifact should validate")
	}
	if ix.Outdated("a1") {
		t.Error("freshly registered artifact should not be outdated")
	}
}

func TestRegisterRejectsEmptyEvidence(t *testing.T) {
	ix := seededIndex(t)
	if err := ix.Register("a1", nil); !errors.Is(err, model.ErrEvidenceMissing) {
		t.Fatalf("want ErrEvidenceMissing, got %v", err)
	}
}

func TestRegisterRejectsOutOfRangeAtomically(t *testing.T) {
	ix := seededIndex(t)

	// Second range exceeds db.js's 40 lines; nothing may be registered.
	evidence := []model.CodeEvidence{ev("src/auth.js", 1, 10), ev("src/db.js", 30, 60)}
	if err := ix.Register("a1", evidence); !errors.Is(err, model.ErrEvidenceOutOfRange) {
		t.Fatalf("want ErrEvidenceOutOfRange, got %v", err)
	}
	if _, err := ix.Trace("a1"); !errors.Is(err, model.ErrArtifactNotFound) {
		t.Errorf("failed registration must not leave the artifact behind: %v", err)
	}
	if ids := ix.ArtifactsFor("src/auth.js", 1, 100); len(ids) != 0 {
		t.Errorf("failed registration leaked reverse entries: %v", ids)
	}
}

func TestRegisterRejectsUnknownFile(t *testing.T) {
	ix := seededIndex(t)
	err := ix.Register("a1", []model.CodeEvidence{ev("src/ghost.js", 1, 5)})
	if !errors.Is(err, model.ErrEvidenceOutOfRange) {
		t.Fatalf("want ErrEvidenceOutOfRange for unknown file, got %v", err)
	}
}

func TestTraceUnknownArtifact(t *testing.T) {
	ix := seededIndex(t)
	if _, err := ix.Trace("nope"); !errors.Is(err, model.ErrArtifactNotFound) {
		t.Fatalf("want ErrArtifactNotFound, got %v", err)
	}
	if !ix.Outdated("nope") {
		t.Error("unknown artifacts report as outdated")
	}
}

func TestArtifactsForOverlap(t *testing.T) {
	ix := seededIndex(t)
	ix.Register("early", []model.CodeEvidence{ev("src/auth.js", 1, 10)})
	ix.Register("late", []model.CodeEvidence{ev("src/auth.js", 50, 60)})
	ix.Register("other", []model.CodeEvidence{ev("src/db.js", 1, 5)})

	if got := ix.ArtifactsFor("src/auth.js", 5, 55); !reflect.DeepEqual(got, []string{"early", "late"}) {
		t.Errorf("overlapping query = %v", got)
	}
	if got := ix.ArtifactsFor("src/auth.js", 20, 40); len(got) != 0 {
		t.Errorf("gap query = %v, want none", got)
	}
	if got := ix.ArtifactsFor("src/db.js", 1, 40); !reflect.DeepEqual(got, []string{"other"}) {
		t.Errorf("db query = %v", got)
	}
}

func TestMarkOutdatedFlipsOnlyAffected(t *testing.T) {
	ix := seededIndex(t)
	ix.Register("auth-only", []model.CodeEvidence{ev("src/auth.js", 1, 10)})
	ix.Register("db-only", []model.CodeEvidence{ev("src/db.js", 1, 10)})
	ix.Register("both", []model.CodeEvidence{ev("src/auth.js", 20, 30), ev("src/db.js", 20, 30)})

	flipped := ix.MarkOutdated("src/auth.js", "hash-auth-2")
	if flipped != 2 {
		t.Errorf("flipped = %d, want 2", flipped)
	}
	if !ix.Outdated("auth-only") || !ix.Outdated("both") {
		t.Error("artifacts citing auth.js should be outdated")
	}
	if ix.Outdated("db-only") {
		t.Error("artifact citing only db.js must be untouched")
	}
	if ix.Validate("auth-only") {
		t.Error("outdated artifact must not validate")
	}

	// Marking again with the same hash flips nothing further.
	if again := ix.MarkOutdated("src/auth.js", "hash-auth-2"); again != 0 {
		t.Errorf("repeat mark flipped %d, want 0", again)
	}
}

func TestMarkOutdatedSameHashNoop(t *testing.T) {
	ix := seededIndex(t)
	ix.Register("a1", []model.CodeEvidence{ev("src/auth.js", 1, 10)})

	if flipped := ix.MarkOutdated("src/auth.js", "hash-auth-1"); flipped != 0 {
		t.Errorf("unchanged hash flipped %d artifacts", flipped)
	}
	if ix.Outdated("a1") {
		t.Error("artifact outdated despite unchanged content")
	}
}

func TestRevalidate(t *testing.T) {
	ix := seededIndex(t)
	ix.Register("a1", []model.CodeEvidence{ev("src/auth.js", 1, 10)})
	ix.MarkOutdated("src/auth.js", "hash-auth-2")

	if !ix.Outdated("a1") {
		t.Fatal("setup: artifact should be outdated")
	}
	if err := ix.Revalidate("a1"); err != nil {
		t.Fatalf("Revalidate failed: %v", err)
	}
	if ix.Outdated("a1") || !ix.Validate("a1") {
		t.Error("revalidated artifact should be fresh")
	}

	// The new hash was re-recorded, so the same hash no longer invalidates.
	if flipped := ix.MarkOutdated("src/auth.js", "hash-auth-2"); flipped != 0 {
		t.Errorf("revalidation did not re-record hashes: flipped %d", flipped)
	}
}

func TestRevalidateFailsWhenRangeNoLongerFits(t *testing.T) {
	ix := seededIndex(t)
	ix.Register("a1", []model.CodeEvidence{ev("src/auth.js", 90, 100)})

	// The file shrank below the evidence range.
	ix.SetFile("src/auth.js", 50, "hash-auth-2")
	if err := ix.Revalidate("a1"); !errors.Is(err, model.ErrEvidenceOutOfRange) {
		t.Fatalf("want ErrEvidenceOutOfRange, got %v", err)
	}
	if err := ix.Revalidate("ghost"); !errors.Is(err, model.ErrArtifactNotFound) {
		t.Fatalf("want ErrArtifactNotFound, got %v", err)
	}
}

func TestValidateDetectsShrunkenFile(t *testing.T) {
	ix := seededIndex(t)
	ix.Register("a1", []model.CodeEvidence{ev("src/auth.js", 90, 100)})
	ix.SetFile("src/auth.js", 50, "hash-auth-1")

	if ix.Validate("a1") {
		t.Error("evidence beyond the current file length must not validate")
	}
}

func TestExportImportRoundtrip(t *testing.T) {
	ix := seededIndex(t)
	ix.Register("fresh", []model.CodeEvidence{ev("src/auth.js", 1, 10)})
	ix.Register("stale", []model.CodeEvidence{ev("src/db.js", 1, 10)})
	ix.MarkOutdated("src/db.js", "hash-db-2")

	restored := Import(ix.Export())

	if !reflect.DeepEqual(restored.IDs(), []string{"fresh", "stale"}) {
		t.Errorf("IDs = %v", restored.IDs())
	}
	if restored.Outdated("fresh") {
		t.Error("fresh artifact became outdated through the roundtrip")
	}
	if !restored.Outdated("stale") {
		t.Error("outdated flag lost through the roundtrip")
	}

	got, err := restored.Trace("fresh")
	if err != nil || len(got) != 1 || got[0] != ev("src/auth.js", 1, 10) {
		t.Errorf("Trace after import = %+v, %v", got, err)
	}
	// Reverse lookups work on the imported index too.
	if ids := restored.ArtifactsFor("src/db.js", 1, 40); !reflect.DeepEqual(ids, []string{"stale"}) {
		t.Errorf("ArtifactsFor after import = %v", ids)
	}
}
