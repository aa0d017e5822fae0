package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// HTMLRenderer renders the markdown report and converts it to a
// self-contained HTML page.
type HTMLRenderer struct {
	writer io.Writer
	charts map[string]string
}

// NewHTMLRenderer creates a new HTML renderer.
func NewHTMLRenderer(w io.Writer, charts map[string]string) *HTMLRenderer {
	return &HTMLRenderer{writer: w, charts: charts}
}

var htmlPage = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 960px; margin: 2em auto; padding: 0 1em; color: #222; }
h1, h2 { border-bottom: 1px solid #ddd; padding-bottom: .3em; }
code { background: #f4f4f4; padding: .1em .3em; border-radius: 3px; }
img { max-width: 100%; }
blockquote { border-left: 4px solid #f0ad4e; margin-left: 0; padding-left: 1em; color: #555; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Render produces the HTML artifact by converting the markdown report.
func (r *HTMLRenderer) Render(rec *Record) error {
	var md bytes.Buffer
	if err := NewMarkdownRenderer(&md, r.charts).Render(rec); err != nil {
		return err
	}

	var body bytes.Buffer
	converter := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := converter.Convert(md.Bytes(), &body); err != nil {
		return fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	return htmlPage.Execute(r.writer, struct {
		Title string
		Body  template.HTML
	}{
		Title: "Database Analysis Report: " + rec.File.Name,
		Body:  template.HTML(body.String()),
	})
}
