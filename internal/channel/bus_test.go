package channel

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

// TestBus_Send tests routing and JSON round trips.
func TestBus_Send(t *testing.T) {
	t.Parallel()

	t.Run("handler receives decoded message", func(t *testing.T) {
		t.Parallel()

		b := NewBus()
		var got Message
		b.Handle(ActionCheckLink, func(_ context.Context, msg Message) (any, error) {
			got = msg
			return LinkStatus{Status: 404, OK: false}, nil
		})

		raw, err := b.Send(t.Context(), CheckLink("https://b.test/gone"))
		if err != nil {
			t.Fatalf("Send failed: %v", err)
		}
		if got.URL != "https://b.test/gone" || got.Enabled != nil {
			t.Errorf("unexpected message at handler: %+v", got)
		}
		if string(raw) != `{"status":404,"ok":false}` {
			t.Errorf("unexpected wire response: %s", raw)
		}
	})

	t.Run("unknown action", func(t *testing.T) {
		t.Parallel()

		b := NewBus()
		if _, err := b.Send(t.Context(), CheckLink("x")); !errors.Is(err, ErrNoHandler) {
			t.Errorf("expected ErrNoHandler, got %v", err)
		}
	})

	t.Run("handler error is wrapped", func(t *testing.T) {
		t.Parallel()

		sentinel := errors.New("boom")
		b := NewBus()
		b.Handle(ActionCheckLink, func(context.Context, Message) (any, error) {
			return nil, sentinel
		})
		if _, err := b.Send(t.Context(), CheckLink("x")); !errors.Is(err, sentinel) {
			t.Errorf("expected wrapped handler error, got %v", err)
		}
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()

		b := NewBus()
		b.Handle(ActionCheckLink, func(context.Context, Message) (any, error) {
			return nil, nil
		})
		if _, err := b.Send(t.Context(), CheckLink("x")); !errors.Is(err, ErrNoResponse) {
			t.Errorf("expected ErrNoResponse, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		b := NewBus()
		b.Handle(ActionCheckLink, func(context.Context, Message) (any, error) {
			t.Error("handler must not run")
			return Ack{}, nil
		})
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		if _, err := b.Send(ctx, CheckLink("x")); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// TestBus_SendToggle tests toggle acknowledgement decoding.
func TestBus_SendToggle(t *testing.T) {
	t.Parallel()

	b := NewBus()
	var enabled *bool
	b.Handle(ActionTogglePreview, func(_ context.Context, msg Message) (any, error) {
		enabled = msg.Enabled
		return Ack{Success: true}, nil
	})
	b.Handle(ActionToggleHighlight, func(context.Context, Message) (any, error) {
		return json.RawMessage(`"not an object"`), nil
	})

	ack, err := b.SendToggle(t.Context(), ActionTogglePreview, false)
	if err != nil {
		t.Fatalf("SendToggle failed: %v", err)
	}
	if !ack.Success {
		t.Error("expected success ack")
	}
	if enabled == nil || *enabled {
		t.Errorf("expected enabled=false to survive the wire, got %v", enabled)
	}

	if _, err := b.SendToggle(t.Context(), ActionToggleHighlight, true); err == nil {
		t.Error("expected malformed acknowledgement error")
	}
}
