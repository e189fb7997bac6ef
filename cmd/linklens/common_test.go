package main

import (
	"bytes"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/linklens/internal/annotate"
	"github.com/nao1215/linklens/internal/config"
	"github.com/nao1215/linklens/internal/dom"
	"github.com/nao1215/linklens/internal/settings"
)

func TestIsRemote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		target string
		want   bool
	}{
		{"https://example.com/", true},
		{"http://example.com/page", true},
		{"page.html", false},
		{"/tmp/page.html", false},
		{"file:///tmp/page.html", false},
		{"https://", false},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			t.Parallel()
			if got := isRemote(tt.target); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestOriginOf(t *testing.T) {
	t.Parallel()

	u, err := url.Parse("https://a.test:8443/docs/page?q=1#frag")
	if err != nil {
		t.Fatal(err)
	}
	if got := originOf(u); got != "https://a.test:8443" {
		t.Errorf("expected https://a.test:8443, got %q", got)
	}
	if got := originOf(nil); got != "" {
		t.Errorf("expected empty origin for nil URL, got %q", got)
	}
}

func TestFindAnchor(t *testing.T) {
	t.Parallel()

	doc, err := dom.Parse(strings.NewReader(`<body><a href="/one">1</a><a href=" /two ">2</a><a href="/one">again</a></body>`), "https://a.test/")
	if err != nil {
		t.Fatal(err)
	}

	el, err := findAnchor(doc, "/one")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doc.TextContent(el); got != "1" {
		t.Errorf("expected first match, got %q", got)
	}

	if _, err := findAnchor(doc, "/two"); err != nil {
		t.Errorf("expected trimmed href to match, got %v", err)
	}

	if _, err := findAnchor(doc, "/three"); !errors.Is(err, errNoAnchor) {
		t.Errorf("expected errNoAnchor, got %v", err)
	}
}

func TestOpenOutput(t *testing.T) {
	t.Parallel()

	t.Run("stdout when path is empty", func(t *testing.T) {
		t.Parallel()
		var stdout bytes.Buffer
		w, closeFn, err := openOutput(&stdout, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, _ = io.WriteString(w, "hello")
		if err := closeFn(); err != nil {
			t.Fatalf("unexpected close error: %v", err)
		}
		if stdout.String() != "hello" {
			t.Errorf("expected hello on stdout, got %q", stdout.String())
		}
	})

	t.Run("file in new directory", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "a", "b", "out.txt")
		w, closeFn, err := openOutput(io.Discard, path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, _ = io.WriteString(w, "report")
		if err := closeFn(); err != nil {
			t.Fatalf("unexpected close error: %v", err)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		if string(got) != "report" {
			t.Errorf("expected report, got %q", got)
		}
	})
}

func TestLoadDocumentLocal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	if err := os.WriteFile(page, []byte(`<body><a href="x">x</a></body>`), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := config.NewConfig()
	cfg.BaseURL = "https://a.test/docs/"
	client, err := newHTTPClient(cfg)
	if err != nil {
		t.Fatal(err)
	}

	doc, err := loadDocument(t.Context(), client, cfg, page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doc.PageURL().String(); got != "https://a.test/docs/" {
		t.Errorf("expected base as page URL, got %q", got)
	}

	if _, err := loadDocument(t.Context(), client, cfg, filepath.Join(dir, "missing.html")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestContentOptions(t *testing.T) {
	t.Parallel()

	t.Run("theme overrides", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.Theme = map[string]map[string]string{"broken": {"color": "black"}}
		opts, err := contentOptions(cfg, settings.NewMemory(), nil, setupLogger(io.Discard, false))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if opts.Theme == nil {
			t.Fatal("expected theme to be set")
		}
		if opts.Delay != cfg.DebounceDelay {
			t.Errorf("expected delay %v, got %v", cfg.DebounceDelay, opts.Delay)
		}
	})

	t.Run("unknown slot", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.Theme = map[string]map[string]string{"rainbow": {"color": "red"}}
		_, err := contentOptions(cfg, settings.NewMemory(), nil, setupLogger(io.Discard, false))
		if !errors.Is(err, annotate.ErrUnknownTreatment) {
			t.Errorf("expected ErrUnknownTreatment, got %v", err)
		}
	})
}

func TestOpenStoreFallsBack(t *testing.T) {
	t.Parallel()

	// A regular file where the database directory should be.
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0600); err != nil {
		t.Fatal(err)
	}

	cfg := config.NewConfig()
	cfg.DBDir = blocker
	store, closeFn := openStore(cfg, setupLogger(io.Discard, false))
	defer closeFn()

	if _, ok := store.(*settings.Memory); !ok {
		t.Errorf("expected in-memory store, got %T", store)
	}
}
