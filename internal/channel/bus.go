package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNoHandler is returned when no handler is registered for an action.
	ErrNoHandler = errors.New("no handler registered for action")

	// ErrNoResponse is returned when a handler answered with nothing.
	ErrNoResponse = errors.New("handler returned no response")
)

// Handler answers one message. The returned value is JSON-encoded before
// it reaches the sender. Returning nil means "no response".
type Handler func(ctx context.Context, msg Message) (any, error)

// Bus routes messages to the handler registered for their action.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Action]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Action]Handler)}
}

// Handle registers h for action, replacing any previous handler.
func (b *Bus) Handle(action Action, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[action] = h
}

// Send delivers msg and returns the raw JSON response.
// The message itself is encoded and decoded on the way in, so handlers
// only ever see what survives the wire format.
func (b *Bus) Send(ctx context.Context, msg Message) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	h, ok := b.handlers[msg.Action]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, msg.Action)
	}

	encoded, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	var received Message
	if err := json.Unmarshal(encoded, &received); err != nil {
		return nil, fmt.Errorf("failed to decode message: %w", err)
	}

	resp, err := h(ctx, received)
	if err != nil {
		return nil, fmt.Errorf("handler for %s failed: %w", msg.Action, err)
	}
	if resp == nil {
		return nil, ErrNoResponse
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	return raw, nil
}

// SendToggle sends a toggle message and decodes its acknowledgement.
func (b *Bus) SendToggle(ctx context.Context, action Action, enabled bool) (Ack, error) {
	raw, err := b.Send(ctx, Toggle(action, enabled))
	if err != nil {
		return Ack{}, err
	}
	var ack Ack
	if err := json.Unmarshal(raw, &ack); err != nil {
		return Ack{}, fmt.Errorf("malformed acknowledgement: %w", err)
	}
	return ack, nil
}
