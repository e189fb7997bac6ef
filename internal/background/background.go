// Package background is the execution context that owns network access.
// It answers checkLink messages by running the probe chain, so probes are
// never subject to the page's own fetch restrictions.
package background

import (
	"context"
	"log/slog"

	"github.com/nao1215/linklens/internal/channel"
	"github.com/nao1215/linklens/internal/probe"
)

// Service answers probe requests.
type Service struct {
	prober probe.Prober
	logger *slog.Logger
}

// New creates a Service around prober. A nil logger uses slog.Default().
func New(prober probe.Prober, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{prober: prober, logger: logger}
}

// Register installs the checkLink handler on bus.
func (s *Service) Register(bus *channel.Bus) {
	bus.Handle(channel.ActionCheckLink, s.handleCheckLink)
}

func (s *Service) handleCheckLink(ctx context.Context, msg channel.Message) (any, error) {
	if msg.URL == "" {
		return channel.LinkStatus{}, nil
	}

	v := s.prober.Probe(ctx, msg.URL)
	s.logger.Debug("checkLink", "url", msg.URL, "verdict", v.String())
	return probe.EncodeLinkStatus(v), nil
}
