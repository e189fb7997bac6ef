package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/linklens/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in JSON format.
func (w *JSONWriter) Write(report *model.LinkReport) (int, error) {
	return w.writeJSON(report)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// Summary holds the link counts of a report.
type Summary struct {
	Total         int            `json:"total"`
	Categories    map[string]int `json:"categories"`
	Reachable     int            `json:"reachable"`
	Broken        int            `json:"broken"`
	Indeterminate int            `json:"indeterminate"`
}

// JSONReport wraps a report with the tool version and a summary.
type JSONReport struct {
	Version string            `json:"version"`
	Summary Summary           `json:"summary"`
	Report  *model.LinkReport `json:"report"`
}

// NewJSONReport creates a JSONReport wrapper.
func NewJSONReport(report *model.LinkReport, version string) *JSONReport {
	s := summarize(report)
	return &JSONReport{
		Version: version,
		Summary: Summary{
			Total:         s.total,
			Categories:    s.byCategory,
			Reachable:     s.reachable,
			Broken:        s.broken,
			Indeterminate: s.indeterminate,
		},
		Report: report,
	}
}

// FullJSONWriter outputs reports wrapped with version and summary.
type FullJSONWriter struct {
	*JSONWriter

	version string
}

// NewFullJSONWriter creates a writer for wrapped reports.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the wrapped report.
func (w *FullJSONWriter) Write(report *model.LinkReport) (int, error) {
	return w.writeJSON(NewJSONReport(report, w.version))
}
