package progress

import (
	"testing"

	"codelens/internal/pipeline"
)

type recordingReporter struct {
	total    int
	updates  []int
	messages []string
	finished bool
}

func (r *recordingReporter) Start(total int) { r.total = total }
func (r *recordingReporter) Update(current int, message string) {
	r.updates = append(r.updates, current)
	r.messages = append(r.messages, message)
}
func (r *recordingReporter) Finish() { r.finished = true }

func TestObservePipelineMapsStages(t *testing.T) {
	rec := &recordingReporter{}
	fn := ObservePipeline(rec)

	if rec.total != 4 {
		t.Fatalf("Start total = %d, want 4", rec.total)
	}

	fn(pipeline.Event{Stage: pipeline.StageSelecting, Message: "scoring files"})
	fn(pipeline.Event{Stage: pipeline.StageAnalyzing, Message: "analyzing"})
	fn(pipeline.Event{Stage: pipeline.StageIndexingEvidence, Message: "indexing"})
	fn(pipeline.Event{Stage: pipeline.StageReady, Message: "done"})

	want := []int{1, 2, 3, 4}
	if len(rec.updates) != len(want) {
		t.Fatalf("updates = %v, want %v", rec.updates, want)
	}
	for i := range want {
		if rec.updates[i] != want[i] {
			t.Errorf("update %d = %d, want %d", i, rec.updates[i], want[i])
		}
	}
	if rec.messages[0] != "scoring files" {
		t.Errorf("message = %q", rec.messages[0])
	}
}

func TestObservePipelineIgnoresUntrackedStages(t *testing.T) {
	rec := &recordingReporter{}
	fn := ObservePipeline(rec)

	fn(pipeline.Event{Stage: pipeline.StageFailed, Message: "boom"})
	if len(rec.updates) != 0 {
		t.Errorf("failed stage should not move the bar: %v", rec.updates)
	}
}

func TestNewReporterSelection(t *testing.T) {
	t.Setenv("CI", "1")
	if _, ok := NewReporter().(*CIReporter); !ok {
		t.Error("CI environment should select the CI reporter")
	}

	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	if _, ok := NewReporter().(*TerminalReporter); !ok {
		t.Error("interactive environment should select the terminal reporter")
	}
}
