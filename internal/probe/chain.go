package probe

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nao1215/linklens/internal/model"
)

// DefaultStepTimeout bounds a single strategy.
const DefaultStepTimeout = 10 * time.Second

// Chain evaluates strategies in order and stops at the first confident one.
// Concurrent probes of the same URL share a single run; nothing is cached
// once the run completes.
type Chain struct {
	// steps contains the ordered strategies.
	steps []Strategy

	// stepTimeout bounds each strategy.
	stepTimeout time.Duration

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// inflight coalesces probes of the same URL.
	inflight singleflight.Group
}

// Option is a function that configures a Chain.
type Option func(*Chain)

// WithLogger sets a custom logger for the chain.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) {
		c.logger = logger
	}
}

// WithStepTimeout sets the per-step timeout. Non-positive values keep the default.
func WithStepTimeout(d time.Duration) Option {
	return func(c *Chain) {
		if d > 0 {
			c.stepTimeout = d
		}
	}
}

// NewChain creates an empty chain. Steps are added with AddStep.
func NewChain(opts ...Option) *Chain {
	c := &Chain{
		steps:       make([]Strategy, 0),
		stepTimeout: DefaultStepTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// AddStep appends a strategy. Strategies run in the order they are added.
func (c *Chain) AddStep(step Strategy) {
	c.steps = append(c.steps, step)
}

// AddSteps appends multiple strategies.
func (c *Chain) AddSteps(steps ...Strategy) {
	c.steps = append(c.steps, steps...)
}

// StepNames returns the names of all strategies in execution order.
func (c *Chain) StepNames() []string {
	names := make([]string, len(c.steps))
	for i, step := range c.steps {
		names[i] = step.Name()
	}
	return names
}

// Probe implements Prober. If ctx ends first the caller gets an
// indeterminate verdict while the shared run carries on for other callers.
func (c *Chain) Probe(ctx context.Context, rawURL string) model.Verdict {
	ch := c.inflight.DoChan(rawURL, func() (any, error) {
		return c.run(context.WithoutCancel(ctx), rawURL), nil
	})

	select {
	case res := <-ch:
		v, ok := res.Val.(model.Verdict)
		if !ok {
			return model.Indeterminate()
		}
		return v
	case <-ctx.Done():
		return model.Indeterminate()
	}
}

func (c *Chain) run(ctx context.Context, rawURL string) model.Verdict {
	for _, step := range c.steps {
		stepCtx, cancel := context.WithTimeout(ctx, c.stepTimeout)
		start := time.Now()
		out := step.Probe(stepCtx, rawURL)
		cancel()

		if !out.Confident {
			c.logger.Debug("probe step inconclusive",
				"step", step.Name(),
				"url", rawURL,
				"status", out.Status,
				"elapsed", time.Since(start),
				"error", out.Err,
			)
			continue
		}

		v := out.Verdict
		if v.IsBroken() && !readsStatus(step) {
			v = model.Indeterminate()
		}
		c.logger.Debug("probe step concluded",
			"step", step.Name(),
			"url", rawURL,
			"verdict", v.String(),
			"elapsed", time.Since(start),
		)
		return v
	}

	c.logger.Debug("probe chain exhausted", "url", rawURL)
	return model.Indeterminate()
}

func readsStatus(step Strategy) bool {
	sr, ok := step.(StatusReader)
	return ok && sr.ReadsStatus()
}

// NewStandardChain creates the HEAD, CORS GET, opaque GET chain over client.
func NewStandardChain(client *http.Client, origin string, maxBodySize int64, opts ...Option) *Chain {
	c := NewChain(opts...)
	c.AddSteps(
		NewHeadStrategy(client),
		NewCORSStrategy(client, origin, maxBodySize),
		NewOpaqueStrategy(client, c.logger),
	)
	return c
}
