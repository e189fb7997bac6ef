package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/linklens/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose lists every link, not only the broken ones.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose lists every link in the output.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.LinkReport) (int, error) {
	var sb strings.Builder
	s := summarize(report)

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, s)
	w.writeBroken(&sb, report)
	if w.verbose {
		w.writeLinks(&sb, report)
	}
	w.writeFooter(&sb, s)

	return w.output.Write([]byte(sb.String()))
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.LinkReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          LINKLENS REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Page:         %s\n", dash(report.PageURL))
	fmt.Fprintf(sb, "Checked:      %s\n", report.DateChecked.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Links:        %d\n", len(report.Links))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, s summary) {
	section(sb, "LINK SUMMARY")

	for _, kind := range categoryOrder {
		fmt.Fprintf(sb, "  %-10s %d\n", strings.ToUpper(kind.String())+":", s.byCategory[kind.String()])
	}
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  REACHABLE:     %d\n", s.reachable)
	fmt.Fprintf(sb, "  BROKEN:        %d\n", s.broken)
	fmt.Fprintf(sb, "  INDETERMINATE: %d\n", s.indeterminate)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeBroken(sb *strings.Builder, report *model.LinkReport) {
	broken := report.Broken()
	if len(broken) == 0 {
		return
	}

	section(sb, "BROKEN LINKS")
	for _, l := range broken {
		fmt.Fprintf(sb, "  [%d] %s\n", l.Status, l.Target)
		if l.Text != "" {
			fmt.Fprintf(sb, "      Text: %s\n", truncateString(l.Text, 60))
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeLinks(sb *strings.Builder, report *model.LinkReport) {
	section(sb, "ALL LINKS")
	for _, l := range report.Links {
		fmt.Fprintf(sb, "  %3d. %-9s %-14s %s\n", l.Index, l.Category, verdictLabel(l), truncateString(l.Href, 60))
		if l.Title != "" {
			fmt.Fprintf(sb, "       Title: %s\n", l.Title)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder, s summary) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	if s.broken > 0 {
		fmt.Fprintf(sb, "%d broken link(s) found.\n", s.broken)
	} else {
		sb.WriteString("No broken links found.\n")
	}
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// verdictLabel formats a link's verdict with its status when known.
func verdictLabel(l model.LinkEntry) string {
	if l.Category != model.CategoryInternal.String() && l.Category != model.CategoryExternal.String() {
		return "-"
	}
	if l.Status == 0 {
		return l.Verdict
	}
	return fmt.Sprintf("%s(%d)", l.Verdict, l.Status)
}
