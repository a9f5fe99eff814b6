// Package report renders a completed analysis run as a study guide:
// markdown first, then a standalone HTML page.
package report

import (
	"fmt"
	"strings"

	"codelens/internal/model"
	"codelens/internal/snapshot"
)

// Markdown renders the run as a markdown document. tree supplies file
// contents for evidence snippets; pass nil to omit snippets.
func Markdown(run *snapshot.Run, tree *model.RepositoryTree) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Code comprehension report\n\n")
	fmt.Fprintf(&sb, "**Repository:** `%s`\n\n", run.RepoRoot)
	fmt.Fprintf(&sb, "**Goal:** %s\n\n", run.Goal)
	if run.IntentCategory != "" {
		fmt.Fprintf(&sb, "**Detected intent:** %s\n\n", run.IntentCategory)
	}

	writeSelection(&sb, run.Selection)
	if run.Analysis != nil {
		writeSummary(&sb, run.Analysis.Summary)
		writeRelationships(&sb, run.Analysis.Relationships)
		writeGraph(&sb, run)
		writeExecutionPaths(&sb, run.Analysis.ExecutionPaths)
		writeDataFlows(&sb, run.Analysis.DataFlows)
		writeConcepts(&sb, run.Analysis.Concepts, tree)
	}

	return sb.String()
}

func writeSelection(sb *strings.Builder, sel *model.SelectionResult) {
	if sel == nil {
		return
	}
	fmt.Fprintf(sb, "## Selected files\n\n")
	fmt.Fprintf(sb, "Scanned %d files, excluded %d, selected %d.\n\n", sel.Scanned, sel.Excluded, sel.Selected)
	fmt.Fprintf(sb, "| File | Score | Role | Why |\n|---|---|---|---|\n")
	for _, sf := range sel.Files {
		fmt.Fprintf(sb, "| `%s` | %.2f | %s | %s |\n",
			sf.File.Path, sf.Score.Total, sf.Score.Role, sf.Explanation)
	}
	sb.WriteString("\n")
}

func writeSummary(sb *strings.Builder, s model.AnalysisSummary) {
	fmt.Fprintf(sb, "## Analysis summary\n\n")
	fmt.Fprintf(sb, "- Files analyzed: %d\n", s.FilesAnalyzed)
	if s.FilesSkipped > 0 {
		fmt.Fprintf(sb, "- Files skipped: %d (%s)\n", s.FilesSkipped, strings.Join(s.SkippedPaths, ", "))
	}
	if s.EdgesDropped > 0 {
		fmt.Fprintf(sb, "- Relationships to unselected files dropped: %d\n", s.EdgesDropped)
	}
	if s.EnrichmentUsed {
		fmt.Fprintf(sb, "- Keyword enrichment contributed to file selection\n")
	}
	sb.WriteString("\n")
}

func writeRelationships(sb *strings.Builder, rels []model.Relationship) {
	if len(rels) == 0 {
		return
	}
	fmt.Fprintf(sb, "## Relationships\n\n")
	for _, rel := range rels {
		fmt.Fprintf(sb, "- `%s` %s `%s`", rel.Source, rel.Kind, rel.Target)
		if rel.Symbol != "" {
			fmt.Fprintf(sb, " via `%s`", rel.Symbol)
		}
		if rel.EvidenceLine > 0 {
			fmt.Fprintf(sb, " (line %d)", rel.EvidenceLine)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func writeGraph(sb *strings.Builder, run *snapshot.Run) {
	if len(run.Graph.Cycles) == 0 {
		return
	}
	fmt.Fprintf(sb, "## Dependency cycles\n\n")
	for _, cycle := range run.Graph.Cycles {
		fmt.Fprintf(sb, "- %s\n", strings.Join(wrapCode(cycle), " → "))
	}
	sb.WriteString("\n")
}

func writeExecutionPaths(sb *strings.Builder, paths []model.ExecutionPath) {
	if len(paths) == 0 {
		return
	}
	fmt.Fprintf(sb, "## Execution paths\n\n")
	for _, p := range paths {
		fmt.Fprintf(sb, "### Entry `%s`\n\n", p.Entry)
		for i, step := range p.Steps {
			fmt.Fprintf(sb, "%d. `%s` in `%s`\n", i+1, step.Function, step.FilePath)
		}
		sb.WriteString("\n")
	}
}

func writeDataFlows(sb *strings.Builder, flows []model.DataFlow) {
	if len(flows) == 0 {
		return
	}
	fmt.Fprintf(sb, "## Data flows\n\n")
	for _, flow := range flows {
		fmt.Fprintf(sb, "- **%s**: ", flow.Name)
		var hops []string
		for _, hop := range flow.Hops {
			hops = append(hops, fmt.Sprintf("`%s:%d`", hop.FilePath, hop.Line))
		}
		sb.WriteString(strings.Join(hops, " → "))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func writeConcepts(sb *strings.Builder, concepts []*model.Concept, tree *model.RepositoryTree) {
	if len(concepts) == 0 {
		return
	}
	fmt.Fprintf(sb, "## Concepts\n\n")
	for _, c := range concepts {
		fmt.Fprintf(sb, "### %s\n\n", c.Name)
		fmt.Fprintf(sb, "_%s_ — %s\n\n", c.Category, c.Description)
		for _, ev := range c.Evidence {
			fmt.Fprintf(sb, "Evidence: `%s:%d-%d`\n\n", ev.FilePath, ev.StartLine, ev.EndLine)
			if snippet, lang, ok := evidenceSnippet(tree, ev); ok {
				fmt.Fprintf(sb, "```%s\n%s\n```\n\n", lang, snippet)
			}
		}
	}
}

// evidenceSnippet cuts the evidence lines out of the file content, capped
// so one concept cannot dominate the report.
func evidenceSnippet(tree *model.RepositoryTree, ev model.CodeEvidence) (string, string, bool) {
	const maxSnippetLines = 20

	if tree == nil {
		return "", "", false
	}
	rec, ok := tree.Files[ev.FilePath]
	if !ok || rec.Content == "" {
		return "", "", false
	}
	lines := strings.Split(rec.Content, "\n")
	start := ev.StartLine - 1
	end := ev.EndLine
	if start < 0 || start >= len(lines) {
		return "", "", false
	}
	if end > len(lines) {
		end = len(lines)
	}
	if end-start > maxSnippetLines {
		end = start + maxSnippetLines
	}
	return strings.Join(lines[start:end], "\n"), fenceLanguage(rec.Language), true
}

// fenceLanguage maps detected language names to fenced-code-block hints.
func fenceLanguage(language string) string {
	switch language {
	case "JavaScript":
		return "javascript"
	case "TypeScript":
		return "typescript"
	case "Python":
		return "python"
	case "Go":
		return "go"
	case "Java":
		return "java"
	case "Ruby":
		return "ruby"
	default:
		return ""
	}
}

func wrapCode(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = "`" + s + "`"
	}
	return out
}
