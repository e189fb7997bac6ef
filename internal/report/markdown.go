package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/linklens/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for documentation and
// sharing, using nao1215/markdown for tables, alerts and a mermaid chart.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.LinkReport) (int, error) {
	md := markdown.NewMarkdown(w.output)
	s := summarize(report)

	w.writeHeader(md, report)
	w.writeSummary(md, s)
	w.writeBroken(md, report)
	w.writeLinks(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.LinkReport) {
	md.H1("Link Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Page", "`" + dash(report.PageURL) + "`"},
			{"Checked", report.DateChecked.Format("2006-01-02 15:04:05 MST")},
			{"Links", strconv.Itoa(len(report.Links))},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, s summary) {
	md.H2("Summary")
	md.PlainText("")

	rows := make([][]string, 0, len(categoryOrder)+4)
	for _, kind := range categoryOrder {
		rows = append(rows, []string{kind.String(), strconv.Itoa(s.byCategory[kind.String()])})
	}
	rows = append(rows,
		[]string{"✅ Reachable", strconv.Itoa(s.reachable)},
		[]string{"❌ Broken", strconv.Itoa(s.broken)},
		[]string{"❔ Indeterminate", strconv.Itoa(s.indeterminate)},
		[]string{"**Total**", "**" + strconv.Itoa(s.total) + "**"},
	)
	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if s.total > 0 {
		w.writePieChart(md, s)
	}

	if s.broken > 0 {
		md.Warningf("%d broken link(s) found.", s.broken)
	} else {
		md.Tip("No broken links found.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Link Categories"),
		piechart.WithShowData(true),
	)
	for _, kind := range categoryOrder {
		if n := s.byCategory[kind.String()]; n > 0 {
			chart.LabelAndIntValue(kind.String(), uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeBroken(md *markdown.Markdown, report *model.LinkReport) {
	broken := report.Broken()
	if len(broken) == 0 {
		return
	}

	md.H2("Broken Links")
	md.PlainText("")

	rows := make([][]string, len(broken))
	for i, l := range broken {
		rows[i] = []string{
			strconv.Itoa(l.Status),
			truncateString(l.Target, 60),
			truncateString(dash(l.Text), 40),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Status", "URL", "Text"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeLinks(md *markdown.Markdown, report *model.LinkReport) {
	md.H2("Links")
	md.PlainText("")

	if len(report.Links) == 0 {
		md.PlainText("No links found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Links))
	for i, l := range report.Links {
		rows[i] = []string{
			strconv.Itoa(l.Index),
			l.Category,
			verdictLabel(l),
			truncateString(l.Href, 50),
			truncateString(dash(l.Title), 40),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Category", "Verdict", "Href", "Tooltip"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [linklens](https://github.com/nao1215/linklens)*")
}
