package probe

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nao1215/linklens/internal/channel"
	"github.com/nao1215/linklens/internal/model"
)

// Sender delivers a message to another execution context.
type Sender interface {
	Send(ctx context.Context, msg channel.Message) (json.RawMessage, error)
}

// ChannelProber asks the background context to probe a URL over the
// message bus. A failed send or a malformed answer is indeterminate.
type ChannelProber struct {
	sender Sender
	logger *slog.Logger
}

// NewChannelProber creates a prober that forwards to sender.
func NewChannelProber(sender Sender, logger *slog.Logger) *ChannelProber {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChannelProber{sender: sender, logger: logger}
}

// Probe implements Prober.
func (p *ChannelProber) Probe(ctx context.Context, rawURL string) model.Verdict {
	raw, err := p.sender.Send(ctx, channel.CheckLink(rawURL))
	if err != nil {
		p.logger.Debug("checkLink failed", "url", rawURL, "error", err)
		return model.Indeterminate()
	}
	return DecodeLinkStatus(raw)
}

// DecodeLinkStatus maps a checkLink response to a verdict.
// ok=true is reachable, ok=false with a 4xx/5xx status is broken, and
// anything else (missing fields included) is indeterminate.
func DecodeLinkStatus(raw json.RawMessage) model.Verdict {
	var resp struct {
		Status *int  `json:"status"`
		OK     *bool `json:"ok"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || resp.OK == nil {
		return model.Indeterminate()
	}

	status := 0
	if resp.Status != nil {
		status = *resp.Status
	}
	switch {
	case *resp.OK:
		return model.Reachable(status)
	case model.IsErrorStatus(status):
		return model.Broken(status)
	default:
		return model.Indeterminate()
	}
}

// EncodeLinkStatus maps a verdict to its checkLink response.
func EncodeLinkStatus(v model.Verdict) channel.LinkStatus {
	switch v.Kind {
	case model.VerdictReachable:
		return channel.LinkStatus{Status: v.Status, OK: true}
	case model.VerdictBroken:
		return channel.LinkStatus{Status: v.Status, OK: false}
	default:
		return channel.LinkStatus{Status: 0, OK: false}
	}
}
