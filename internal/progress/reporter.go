package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"codelens/internal/pipeline"
)

// Reporter provides progress feedback while a comprehension run advances
// through its stages.
type Reporter interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

// stageOrdinal maps pipeline stages onto reporter positions.
var stageOrdinal = map[pipeline.Stage]int{
	pipeline.StageSelecting:        1,
	pipeline.StageAnalyzing:        2,
	pipeline.StageIndexingEvidence: 3,
	pipeline.StageReady:            4,
}

// ObservePipeline starts the reporter over the pipeline's stages and
// returns the callback to register with Pipeline.SetEventFunc. Stages the
// reporter does not track (failed) are ignored; the caller still calls
// Finish when the run ends.
func ObservePipeline(r Reporter) pipeline.EventFunc {
	r.Start(len(stageOrdinal))
	return func(ev pipeline.Event) {
		if ord, ok := stageOrdinal[ev.Stage]; ok {
			r.Update(ord, ev.Message)
		}
	}
}

// NewReporter returns a TerminalReporter if running in an interactive
// terminal, or a CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Analyzing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int, message string) {
	if r.bar != nil {
		r.bar.Describe(message)
		_ = r.bar.Set(current)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	total int
}

func (r *CIReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(os.Stderr, "Starting analysis (%d stages)\n", total)
}

func (r *CIReporter) Update(current int, message string) {
	fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", current, r.total, message)
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(os.Stderr, "Analysis complete")
}
