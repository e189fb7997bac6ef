package preview

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPLoader(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title> Hello </title><style>p{}</style></head>` +
			`<body><p>Some   text</p><script>var x;</script></body></html>`))
	})
	mux.HandleFunc("/deny", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		_, _ = w.Write([]byte(`<html><body><p>x</p></body></html>`))
	})
	mux.HandleFunc("/csp", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'")
		_, _ = w.Write([]byte(`<html><body><p>x</p></body></html>`))
	})
	mux.HandleFunc("/csp-any", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Security-Policy", "frame-ancestors *")
		_, _ = w.Write([]byte(`<html><body><p>x</p></body></html>`))
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>   </body></html>`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<html><head><title>Not Found</title></head><body><h1>404</h1></body></html>`))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	loader := NewHTTPLoader(srv.Client(), 0)

	t.Run("loads title and text", func(t *testing.T) {
		t.Parallel()
		page, err := loader.Load(context.Background(), srv.URL+"/ok")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if page.Title != "Hello" {
			t.Errorf("Title = %q, want Hello", page.Title)
		}
		if page.Text != "Some text" {
			t.Errorf("Text = %q, want %q", page.Text, "Some text")
		}
	})

	t.Run("error page is previewed", func(t *testing.T) {
		t.Parallel()
		page, err := loader.Load(context.Background(), srv.URL+"/missing")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if page.Title != "Not Found" || page.Text != "404" {
			t.Errorf("page = %+v, want the server's 404 page", page)
		}
	})

	tests := []struct {
		path    string
		wantErr error
	}{
		{path: "/deny", wantErr: ErrBlocked},
		{path: "/csp", wantErr: ErrBlocked},
		{path: "/csp-any", wantErr: nil},
		{path: "/empty", wantErr: ErrEmpty},
		{path: "/gone", wantErr: ErrEmpty},
	}
	for _, tt := range tests {
		t.Run(strings.TrimPrefix(tt.path, "/"), func(t *testing.T) {
			t.Parallel()
			_, err := loader.Load(context.Background(), srv.URL+tt.path)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Load() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("unreachable host", func(t *testing.T) {
		t.Parallel()
		_, err := loader.Load(context.Background(), "http://127.0.0.1:1/")
		if !errors.Is(err, ErrLoadFailed) {
			t.Errorf("Load() error = %v, want ErrLoadFailed", err)
		}
	})
}

func TestFramingBlocked(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header http.Header
		want   bool
	}{
		{name: "no headers", header: http.Header{}, want: false},
		{name: "sameorigin", header: http.Header{"X-Frame-Options": {"sameorigin"}}, want: true},
		{name: "allow-from is ignored", header: http.Header{"X-Frame-Options": {"ALLOW-FROM https://x"}}, want: false},
		{name: "frame-ancestors self", header: http.Header{"Content-Security-Policy": {"frame-ancestors 'self'"}}, want: true},
		{name: "frame-ancestors star", header: http.Header{"Content-Security-Policy": {"frame-ancestors *"}}, want: false},
		{name: "other directives", header: http.Header{"Content-Security-Policy": {"script-src 'self'"}}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FramingBlocked(tt.header); got != tt.want {
				t.Errorf("FramingBlocked() = %v, want %v", got, tt.want)
			}
		})
	}
}
