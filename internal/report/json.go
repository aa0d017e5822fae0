package report

import (
	"encoding/json"
	"io"
)

// JSONRenderer writes a structurally faithful serialization of a Record.
// Unlike markdown, the JSON artifact round-trips: decoding it yields the
// original record field for field.
type JSONRenderer struct {
	writer io.Writer
}

// NewJSONRenderer creates a new JSON renderer
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{writer: w}
}

// Render writes the record as indented JSON.
func (r *JSONRenderer) Render(rec *Record) error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

// ParseRecord decodes a JSON artifact back into a Record.
func ParseRecord(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
