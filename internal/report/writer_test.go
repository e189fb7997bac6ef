package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nao1215/linklens/internal/model"
)

// createTestReport creates a report with one link of each kind.
func createTestReport() *model.LinkReport {
	report := model.NewLinkReport("https://a.test/")
	report.Links = append(report.Links,
		model.LinkEntry{Index: 1, Href: "#missing", Text: "m", Category: "anchor", Target: "#missing", Verdict: "indeterminate", Title: "Reference not found: #missing"},
		model.LinkEntry{Index: 2, Href: "/ok", Text: "ok", Category: "internal", Target: "https://a.test/ok", Verdict: "reachable", Status: 200},
		model.LinkEntry{Index: 3, Href: "https://b.test/gone", Text: "gone link", Category: "external", Target: "https://b.test/gone", Verdict: "broken", Status: 404, Title: "Broken link (status: 404)"},
		model.LinkEntry{Index: 4, Href: "mailto:x@a.test", Text: "mail", Category: "skip", Verdict: "indeterminate"},
	)
	return report
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "LINKLENS REPORT") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "https://a.test/") {
			t.Error("expected output to contain page URL")
		}
	})

	t.Run("writes summary counts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"LINK SUMMARY", "INTERNAL:  1", "EXTERNAL:  1", "BROKEN:        1", "REACHABLE:     1"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("lists broken links", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[404] https://b.test/gone") {
			t.Error("expected output to list the broken link")
		}
		if !strings.Contains(output, "1 broken link(s) found.") {
			t.Error("expected footer with broken count")
		}
		if strings.Contains(output, "ALL LINKS") {
			t.Error("expected no link listing without verbose")
		}
	})

	t.Run("verbose mode lists every link", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "ALL LINKS") || !strings.Contains(output, "mailto:x@a.test") {
			t.Error("expected verbose output to list all links")
		}
		if !strings.Contains(output, "reachable(200)") {
			t.Error("expected verdict with status")
		}
		if !strings.Contains(output, "Title: Reference not found: #missing") {
			t.Error("expected tooltip in verbose output")
		}
	})

	t.Run("handles report without broken links", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(model.NewLinkReport("")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No broken links found.") {
			t.Error("expected no-broken footer")
		}
		if strings.Contains(output, "BROKEN LINKS") {
			t.Error("expected no broken section")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.LinkReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON output: %v", err)
		}
		if decoded.PageURL != "https://a.test/" || len(decoded.Links) != 4 {
			t.Errorf("unexpected decoded report: %+v", decoded)
		}
		if decoded.Links[2].Status != 404 {
			t.Errorf("expected status 404, got %d", decoded.Links[2].Status)
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("expected single-line JSON with trailing newline")
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"page_url\"") {
			t.Error("expected indented output")
		}
	})

	t.Run("custom prefix and indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithIndent(">", "\t")).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n>\t\"page_url\"") {
			t.Errorf("expected custom indentation, got %s", buf.String())
		}
	})
}

func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewFullJSONWriter(&buf, "1.2.3").Write(createTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded JSONReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if decoded.Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %q", decoded.Version)
	}
	want := Summary{
		Total:         4,
		Categories:    map[string]int{"anchor": 1, "internal": 1, "external": 1, "skip": 1},
		Reachable:     1,
		Broken:        1,
		Indeterminate: 0,
	}
	if decoded.Summary.Total != want.Total || decoded.Summary.Broken != want.Broken ||
		decoded.Summary.Reachable != want.Reachable || decoded.Summary.Indeterminate != want.Indeterminate {
		t.Errorf("unexpected summary: %+v", decoded.Summary)
	}
	for k, v := range want.Categories {
		if decoded.Summary.Categories[k] != v {
			t.Errorf("expected %d %s links, got %d", v, k, decoded.Summary.Categories[k])
		}
	}
	if decoded.Report == nil || len(decoded.Report.Links) != 4 {
		t.Error("expected wrapped report")
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))
		n, err := mw.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != text.Len()+js.Len() {
			t.Errorf("expected %d bytes, got %d", text.Len()+js.Len(), n)
		}
		if text.Len() == 0 || js.Len() == 0 {
			t.Error("expected output in both writers")
		}
	})

	t.Run("handles empty writers list", func(t *testing.T) {
		t.Parallel()

		n, err := NewMultiWriter().Write(createTestReport())
		if err != nil || n != 0 {
			t.Errorf("expected no output, got n=%d err=%v", n, err)
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	write := func(t *testing.T, report *model.LinkReport) string {
		t.Helper()
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return buf.String()
	}

	t.Run("writes header and tables", func(t *testing.T) {
		t.Parallel()

		output := write(t, createTestReport())
		for _, want := range []string{"# Link Report", "## Summary", "## Broken Links", "## Links", "`https://a.test/`", "Status", "https://b.test/gone"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("warns about broken links", func(t *testing.T) {
		t.Parallel()

		output := write(t, createTestReport())
		if !strings.Contains(output, "[!WARNING]") {
			t.Error("expected WARNING alert for broken links")
		}
	})

	t.Run("includes pie chart", func(t *testing.T) {
		t.Parallel()

		output := write(t, createTestReport())
		if !strings.Contains(output, "mermaid") || !strings.Contains(output, "pie") {
			t.Error("expected mermaid pie chart")
		}
	})

	t.Run("handles empty report", func(t *testing.T) {
		t.Parallel()

		output := write(t, model.NewLinkReport("https://a.test/"))
		if !strings.Contains(output, "No links found.") {
			t.Error("expected empty-links message")
		}
		if !strings.Contains(output, "[!TIP]") {
			t.Error("expected TIP alert without broken links")
		}
		if strings.Contains(output, "## Broken Links") {
			t.Error("expected no broken section")
		}
	})

	t.Run("writes footer with link", func(t *testing.T) {
		t.Parallel()

		output := write(t, createTestReport())
		if !strings.Contains(output, "https://github.com/nao1215/linklens") {
			t.Error("expected footer link")
		}
	})
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a longer string", 10, "this is..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"リンクの確認です", 5, "リン..."},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			result := truncateString(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("truncateString(%q, %d) = %q, want %q",
					tt.input, tt.maxLen, result, tt.expected)
			}
		})
	}
}
