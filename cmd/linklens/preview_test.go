package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/linklens/internal/config"
	"github.com/nao1215/linklens/internal/preview"
)

const previewPage = `<!DOCTYPE html>
<html><head><title>Home</title></head>
<body>
<a href="/target">target</a>
<a href="#intro">intro</a>
<a href="/framed">framed</a>
<a href="javascript:void(0)">script</a>
<section id="intro"><p>Welcome to the intro.</p><a href="/x">inner</a></section>
</body></html>`

func newPreviewServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(previewPage))
	})
	mux.HandleFunc("/target", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title> Target Page </title></head><body><p>Hello from the target.</p></body></html>`))
	})
	mux.HandleFunc("/framed", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		_, _ = w.Write([]byte(`<html><body><p>no frames</p></body></html>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewPreviewCmd(t *testing.T) {
	t.Parallel()

	cmd := NewPreviewCmd()
	for _, name := range []string{"href", "pointer-x", "pointer-y", "delay", "chrome", "chrome-path", "base", "lang"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
}

func TestPreviewCmd(t *testing.T) {
	t.Parallel()

	srv := newPreviewServer(t)

	run := func(t *testing.T, extra ...string) (string, error) {
		t.Helper()
		args := append([]string{"preview", srv.URL + "/",
			"--delay", "10ms",
			"--db-dir", t.TempDir(),
			"--config", writeConfig(t, "language: en\n"),
		}, extra...)
		return execute(t, args...)
	}

	t.Run("loads the target page", func(t *testing.T) {
		t.Parallel()
		out, err := run(t, "--href", "/target")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Title:    Target Page") {
			t.Errorf("expected page title, got:\n%s", out)
		}
		if !strings.Contains(out, "Hello from the target.") {
			t.Errorf("expected page text, got:\n%s", out)
		}
		if !strings.Contains(out, "Position: 120,120") {
			t.Errorf("expected overlay at pointer offset, got:\n%s", out)
		}
	})

	t.Run("renders same-page fragment", func(t *testing.T) {
		t.Parallel()
		out, err := run(t, "--href", "#intro")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Surface:  about:srcdoc") {
			t.Errorf("expected fragment surface, got:\n%s", out)
		}
		if !strings.Contains(out, "Welcome to the intro.") {
			t.Errorf("expected fragment content, got:\n%s", out)
		}
	})

	t.Run("shows notice for framing refusal", func(t *testing.T) {
		t.Parallel()
		out, err := run(t, "--href", "/framed")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "This site does not allow previews.") {
			t.Errorf("expected blocked notice, got:\n%s", out)
		}
	})

	t.Run("rejects links without preview", func(t *testing.T) {
		t.Parallel()
		_, err := run(t, "--href", "javascript:void(0)")
		if !errors.Is(err, errNotPreviewable) {
			t.Errorf("expected errNotPreviewable, got %v", err)
		}
	})

	t.Run("unknown href", func(t *testing.T) {
		t.Parallel()
		_, err := run(t, "--href", "/nowhere")
		if !errors.Is(err, errNoAnchor) {
			t.Errorf("expected errNoAnchor, got %v", err)
		}
	})

	t.Run("href is required", func(t *testing.T) {
		t.Parallel()
		if _, err := run(t); err == nil {
			t.Error("expected error without --href")
		}
	})
}

func TestSignalScheduler(t *testing.T) {
	t.Parallel()

	s := newSignalScheduler()
	ran := make(chan struct{})
	s.AfterFunc(time.Millisecond, func() { close(ran) })

	select {
	case <-s.fired:
	case <-time.After(5 * time.Second):
		t.Fatal("expected fired signal")
	}
	select {
	case <-ran:
	default:
		t.Error("expected callback to run before the signal")
	}

	timer := s.AfterFunc(time.Hour, func() {})
	if !timer.Stop() {
		t.Error("expected pending timer to stop")
	}
}

func TestPrintOverlay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		state preview.OverlayState
		want  []string
	}{
		{
			name:  "hidden",
			state: preview.OverlayState{},
			want:  []string{"No preview shown."},
		},
		{
			name: "notice",
			state: preview.OverlayState{
				Visible:    true,
				Position:   preview.Position{X: 5, Y: 6},
				Size:       preview.Size{Width: 640, Height: 480},
				SurfaceURL: "https://a.test/",
				Notice:     "blocked",
			},
			want: []string{"Position: 5,6", "Size:     640x480", "Notice:   blocked"},
		},
		{
			name: "long text is truncated",
			state: preview.OverlayState{
				Visible: true,
				Page:    &preview.Page{Title: "T", Text: strings.Repeat("a", previewTextLimit+50)},
			},
			want: []string{"Title:    T", strings.Repeat("a", previewTextLimit) + "..."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			printOverlay(&buf, tt.state)
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("expected %q in output, got:\n%s", w, buf.String())
				}
			}
		})
	}
}

func TestNewPreviewLoader(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	client := &http.Client{}

	if _, ok := newPreviewLoader(cfg, client).(*preview.HTTPLoader); !ok {
		t.Error("expected the HTTP loader by default")
	}

	cfg.UseChrome = true
	cfg.ProxyAddress = "127.0.0.1:9050"
	cfg.ChromePath = "/opt/chrome"
	chrome, ok := newPreviewLoader(cfg, client).(*preview.ChromeLoader)
	if !ok {
		t.Fatal("expected the Chrome loader with --chrome")
	}
	opts := chrome.Options()
	if opts.ProxyAddress != "127.0.0.1:9050" {
		t.Errorf("expected proxy 127.0.0.1:9050, got %q", opts.ProxyAddress)
	}
	if opts.ExecPath != "/opt/chrome" {
		t.Errorf("expected exec path /opt/chrome, got %q", opts.ExecPath)
	}
}
