package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"codelens/internal/model"
	"codelens/internal/snapshot"
)

// WriteHTML renders the run as a standalone HTML file at outPath.
func WriteHTML(run *snapshot.Run, tree *model.RepositoryTree, outPath string) error {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)

	var htmlBuf bytes.Buffer
	if err := md.Convert([]byte(Markdown(run, tree)), &htmlBuf); err != nil {
		return fmt.Errorf("converting markdown: %w", err)
	}

	tmpl, err := template.New("report").Parse(pageTemplate)
	if err != nil {
		return fmt.Errorf("parsing report template: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return tmpl.Execute(f, pageData{
		Title:   "Code comprehension report",
		Goal:    run.Goal,
		Content: template.HTML(htmlBuf.String()),
	})
}

type pageData struct {
	Title   string
	Goal    string
	Content template.HTML
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 0; color: #1f2328; }
main { max-width: 880px; margin: 0 auto; padding: 2rem 1.5rem 4rem; }
h1, h2, h3 { line-height: 1.25; }
h2 { border-bottom: 1px solid #d1d9e0; padding-bottom: .3em; margin-top: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #d1d9e0; padding: 6px 12px; text-align: left; }
th { background: #f6f8fa; }
code { background: #f6f8fa; padding: .2em .4em; border-radius: 4px; font-size: 85%; }
pre { background: #f6f8fa; padding: 12px; border-radius: 6px; overflow-x: auto; }
pre code { background: none; padding: 0; }
</style>
</head>
<body>
<main>
{{.Content}}
</main>
</body>
</html>
`
