package report

import (
	"io"

	"github.com/nao1215/linklens/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.LinkReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.LinkReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// categoryOrder is the display order of link categories.
var categoryOrder = []model.CategoryKind{
	model.CategoryInternal,
	model.CategoryExternal,
	model.CategorySamePageAnchor,
	model.CategorySkip,
}

// summary counts a report's links.
type summary struct {
	total         int
	byCategory    map[string]int
	broken        int
	reachable     int
	indeterminate int
}

func summarize(report *model.LinkReport) summary {
	s := summary{total: len(report.Links), byCategory: make(map[string]int)}
	for _, l := range report.Links {
		s.byCategory[l.Category]++
		if l.Category != model.CategoryInternal.String() && l.Category != model.CategoryExternal.String() {
			continue
		}
		switch l.Verdict {
		case model.VerdictBroken.String():
			s.broken++
		case model.VerdictReachable.String():
			s.reachable++
		default:
			s.indeterminate++
		}
	}
	return s
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// dash replaces an empty cell.
func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
