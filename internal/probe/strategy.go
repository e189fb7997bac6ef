package probe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/nao1215/linklens/internal/model"
)

// DefaultMaxBodySize bounds how much of a GET response body is drained.
const DefaultMaxBodySize = 5 * 1024 * 1024

// Prober probes a URL. Implementations never fail: anything that goes
// wrong becomes an indeterminate verdict.
type Prober interface {
	Probe(ctx context.Context, rawURL string) model.Verdict
}

// Outcome is the result of a single strategy.
type Outcome struct {
	// Verdict is meaningful only when Confident is true.
	Verdict model.Verdict

	// Confident ends the chain with Verdict.
	Confident bool

	// Status is the HTTP status observed, zero if none.
	Status int

	// Err explains why the step was inconclusive.
	Err error
}

func inconclusive(status int, err error) Outcome {
	return Outcome{Verdict: model.Indeterminate(), Status: status, Err: err}
}

// Strategy is one step of the probe chain.
type Strategy interface {
	// Name returns the step's name for logging.
	Name() string

	// Probe runs the step. ctx carries the step timeout.
	Probe(ctx context.Context, rawURL string) Outcome
}

// StatusReader is implemented by strategies that observe the real status
// code. Only such strategies may report a broken link.
type StatusReader interface {
	ReadsStatus() bool
}

func newRequest(ctx context.Context, method, rawURL string) (*http.Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	return http.NewRequestWithContext(ctx, method, u.String(), nil)
}

// HeadStrategy issues a HEAD request following redirects.
// A success status is conclusive; anything else passes the URL on.
type HeadStrategy struct {
	client *http.Client
}

// NewHeadStrategy creates a HEAD step using client.
func NewHeadStrategy(client *http.Client) *HeadStrategy {
	return &HeadStrategy{client: client}
}

// Name implements Strategy.
func (s *HeadStrategy) Name() string { return "head" }

// Probe implements Strategy.
func (s *HeadStrategy) Probe(ctx context.Context, rawURL string) Outcome {
	req, err := newRequest(ctx, http.MethodHead, rawURL)
	if err != nil {
		return inconclusive(0, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return inconclusive(0, err)
	}
	defer resp.Body.Close()

	if model.IsOKStatus(resp.StatusCode) {
		return Outcome{Verdict: model.Reachable(resp.StatusCode), Confident: true, Status: resp.StatusCode}
	}
	return inconclusive(resp.StatusCode, fmt.Errorf("%w: %d", ErrInconclusiveStatus, resp.StatusCode))
}

// CORSStrategy issues a full GET with an Origin header and drains the body.
type CORSStrategy struct {
	client      *http.Client
	origin      string
	maxBodySize int64
}

// NewCORSStrategy creates a GET step. origin is sent as the Origin header
// when non-empty; maxBodySize bounds the drained body (0 means the default).
func NewCORSStrategy(client *http.Client, origin string, maxBodySize int64) *CORSStrategy {
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	return &CORSStrategy{client: client, origin: origin, maxBodySize: maxBodySize}
}

// Name implements Strategy.
func (s *CORSStrategy) Name() string { return "cors" }

// ReadsStatus implements StatusReader.
func (s *CORSStrategy) ReadsStatus() bool { return true }

// Probe implements Strategy.
func (s *CORSStrategy) Probe(ctx context.Context, rawURL string) Outcome {
	req, err := newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return inconclusive(0, err)
	}
	if s.origin != "" {
		req.Header.Set("Origin", s.origin)
	}
	req.Header.Set("Sec-Fetch-Mode", "cors")

	resp, err := s.client.Do(req)
	if err != nil {
		return inconclusive(0, err)
	}
	defer resp.Body.Close()

	// The status is already known; a short read does not change it.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, s.maxBodySize)) //nolint:errcheck // status decides

	switch {
	case model.IsOKStatus(resp.StatusCode):
		return Outcome{Verdict: model.Reachable(resp.StatusCode), Confident: true, Status: resp.StatusCode}
	case model.IsErrorStatus(resp.StatusCode):
		return Outcome{Verdict: model.Broken(resp.StatusCode), Confident: true, Status: resp.StatusCode}
	default:
		return inconclusive(resp.StatusCode, fmt.Errorf("%w: %d", ErrInconclusiveStatus, resp.StatusCode))
	}
}

// OpaqueStrategy issues a no-cors GET whose response is never inspected.
// It always ends the chain with an indeterminate verdict.
type OpaqueStrategy struct {
	client *http.Client
	logger *slog.Logger
}

// NewOpaqueStrategy creates the final step. A nil logger uses slog.Default().
func NewOpaqueStrategy(client *http.Client, logger *slog.Logger) *OpaqueStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpaqueStrategy{client: client, logger: logger}
}

// Name implements Strategy.
func (s *OpaqueStrategy) Name() string { return "opaque" }

// Probe implements Strategy.
func (s *OpaqueStrategy) Probe(ctx context.Context, rawURL string) Outcome {
	req, err := newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return inconclusive(0, err)
	}
	req.Header.Set("Sec-Fetch-Mode", "no-cors")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("opaque probe", "url", rawURL, "result", "offline", "error", err)
		return Outcome{Verdict: model.Indeterminate(), Confident: true, Err: err}
	}
	resp.Body.Close()

	s.logger.Debug("opaque probe", "url", rawURL, "result", "answered")
	return Outcome{Verdict: model.Indeterminate(), Confident: true}
}
