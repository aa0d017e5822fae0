package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Format identifies one output artifact format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatMarkdown, FormatJSON, FormatHTML:
		return Format(s), nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("invalid format %q (must be markdown, json, or html)", s)
	}
}

func (f Format) extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	case FormatHTML:
		return ".html"
	}
	return ""
}

// Artifact is one rendered output file for a single pipeline invocation.
// Never mutated after creation; regenerating a report creates new artifacts.
type Artifact struct {
	Format      Format    `json:"format"`
	Path        string    `json:"path"`
	GeneratedAt time.Time `json:"generated_at"`
}

// RenderError reports an artifact that could not be written.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render report artifact %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Render serializes the record into outDir, one artifact per requested
// format, writing each to a temporary file and renaming into place so a
// cancelled invocation never leaves a partially written artifact. Artifact
// filenames carry the record's run ID.
func Render(rec *Record, outDir string, formats []Format, charts map[string]string) ([]Artifact, error) {
	if len(formats) == 0 {
		formats = []Format{FormatMarkdown, FormatJSON}
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, &RenderError{Path: outDir, Err: err}
	}

	artifacts := make([]Artifact, 0, len(formats))
	for _, format := range formats {
		name := fmt.Sprintf("report_%s%s", rec.Run.RunID, format.extension())
		path := filepath.Join(outDir, name)

		render := rendererFor(format, charts)
		if err := writeAtomic(path, func(w io.Writer) error { return render(rec, w) }); err != nil {
			return nil, &RenderError{Path: path, Err: err}
		}

		artifacts = append(artifacts, Artifact{
			Format:      format,
			Path:        path,
			GeneratedAt: rec.Run.GeneratedAt,
		})
	}

	return artifacts, nil
}

func rendererFor(format Format, charts map[string]string) func(*Record, io.Writer) error {
	switch format {
	case FormatJSON:
		return func(rec *Record, w io.Writer) error { return NewJSONRenderer(w).Render(rec) }
	case FormatHTML:
		return func(rec *Record, w io.Writer) error { return NewHTMLRenderer(w, charts).Render(rec) }
	default:
		return func(rec *Record, w io.Writer) error { return NewMarkdownRenderer(w, charts).Render(rec) }
	}
}

// writeAtomic writes through a temp file in the target directory and
// renames on success.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
