package background

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nao1215/linklens/internal/channel"
	"github.com/nao1215/linklens/internal/model"
	"github.com/nao1215/linklens/internal/probe"
)

type fixedProber map[string]model.Verdict

func (f fixedProber) Probe(_ context.Context, rawURL string) model.Verdict {
	if v, ok := f[rawURL]; ok {
		return v
	}
	return model.Indeterminate()
}

// TestService_CheckLink tests the checkLink round trip over the bus.
func TestService_CheckLink(t *testing.T) {
	t.Parallel()

	bus := channel.NewBus()
	New(fixedProber{
		"https://a.test/ok":   model.Reachable(200),
		"https://b.test/gone": model.Broken(404),
	}, nil).Register(bus)

	tests := []struct {
		url     string
		wantRaw string
	}{
		{"https://a.test/ok", `{"status":200,"ok":true}`},
		{"https://b.test/gone", `{"status":404,"ok":false}`},
		{"https://c.test/unknown", `{"status":0,"ok":false}`},
		{"", `{"status":0,"ok":false}`},
	}

	for _, tt := range tests {
		raw, err := bus.Send(t.Context(), channel.CheckLink(tt.url))
		if err != nil {
			t.Fatalf("Send(%q) failed: %v", tt.url, err)
		}
		if string(raw) != tt.wantRaw {
			t.Errorf("checkLink %q = %s, want %s", tt.url, raw, tt.wantRaw)
		}
	}
}

// TestService_EndToEnd tests the content-side prober against a real chain.
func TestService_EndToEnd(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	bus := channel.NewBus()
	New(probe.NewStandardChain(server.Client(), "", 0), nil).Register(bus)
	remote := probe.NewChannelProber(bus, nil)

	if got := remote.Probe(t.Context(), server.URL+"/ok"); got != model.Reachable(200) {
		t.Errorf("expected Reachable(200), got %v", got)
	}
	if got := remote.Probe(t.Context(), server.URL+"/gone"); got != model.Broken(404) {
		t.Errorf("expected Broken(404), got %v", got)
	}
}
