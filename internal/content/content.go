// Package content activates link annotation on one document.
//
// Activation loads the persisted feature flags, builds the annotation
// engine, the preview controller and the change watcher, and registers the
// toggle handlers that let the settings panel flip either feature while the
// page is open. Probes go through the message bus to the background
// context, never directly to the network.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nao1215/linklens/internal/annotate"
	"github.com/nao1215/linklens/internal/channel"
	"github.com/nao1215/linklens/internal/config"
	"github.com/nao1215/linklens/internal/dom"
	"github.com/nao1215/linklens/internal/i18n"
	"github.com/nao1215/linklens/internal/model"
	"github.com/nao1215/linklens/internal/preview"
	"github.com/nao1215/linklens/internal/probe"
	"github.com/nao1215/linklens/internal/settings"
	"github.com/nao1215/linklens/internal/watch"
)

var (
	// ErrNilDocument is returned when Activate is called without a document.
	ErrNilDocument = errors.New("document is nil")

	// ErrNilBus is returned when Activate is called without a message bus.
	ErrNilBus = errors.New("message bus is nil")
)

// Options configures activation. Zero values select defaults.
type Options struct {
	// Store holds the persisted flags. Nil means an empty in-memory store.
	Store settings.Store

	// Loader fetches preview pages. Nil means a plain HTTP loader.
	Loader preview.Loader

	// Theme overrides the default visual treatments.
	Theme *annotate.Theme

	// Language selects tooltip and notice messages.
	Language string

	// Delay is the hover debounce.
	Delay time.Duration

	// OverlaySize and Viewport drive preview placement.
	OverlaySize preview.Size
	Viewport    preview.Size

	// Scheduler replaces the runtime timer for the preview debounce.
	Scheduler preview.Scheduler

	// Dispatch replaces the goroutine per probe job.
	Dispatch annotate.Dispatcher

	// Logger receives diagnostics.
	Logger *slog.Logger
}

// Context is an activated document.
type Context struct {
	doc        *dom.Document
	features   *config.Features
	engine     *annotate.Engine
	overlay    *preview.Overlay
	controller *preview.Controller
	watcher    *watch.Watcher
	logger     *slog.Logger
}

// Activate starts annotation on doc. Probe requests and toggle messages
// travel over bus. A settings read failure is logged and the defaults
// (both features off) are used.
func Activate(ctx context.Context, doc *dom.Document, bus *channel.Bus, opts Options) (*Context, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	if bus == nil {
		return nil, ErrNilBus
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store := opts.Store
	if store == nil {
		store = settings.NewMemory()
	}
	loader := opts.Loader
	if loader == nil {
		loader = preview.NewHTTPLoader(http.DefaultClient, 0)
	}
	overlaySize := opts.OverlaySize
	if overlaySize.Width <= 0 || overlaySize.Height <= 0 {
		overlaySize = preview.DefaultOverlaySize
	}

	features, err := settings.LoadFeatures(ctx, store)
	if err != nil {
		logger.Warn("failed to read settings, using defaults", slog.String("error", err.Error()))
	}

	tr := i18n.New(opts.Language)
	overlay := preview.NewOverlay(overlaySize)

	ctrlOpts := []preview.Option{
		preview.WithTranslator(tr),
		preview.WithLogger(logger),
		preview.WithContext(ctx),
	}
	if opts.Delay > 0 {
		ctrlOpts = append(ctrlOpts, preview.WithDelay(opts.Delay))
	}
	if opts.Viewport.Width > 0 && opts.Viewport.Height > 0 {
		ctrlOpts = append(ctrlOpts, preview.WithViewport(opts.Viewport))
	}
	if opts.Scheduler != nil {
		ctrlOpts = append(ctrlOpts, preview.WithScheduler(opts.Scheduler))
	}
	controller := preview.New(doc, features, overlay, loader, ctrlOpts...)

	engineOpts := []annotate.Option{
		annotate.WithTranslator(tr),
		annotate.WithHoverHandler(controller),
		annotate.WithLogger(logger),
		annotate.WithProbeContext(ctx),
	}
	if opts.Theme != nil {
		engineOpts = append(engineOpts, annotate.WithTheme(*opts.Theme))
	}
	if opts.Dispatch != nil {
		engineOpts = append(engineOpts, annotate.WithDispatch(opts.Dispatch))
	}
	engine := annotate.New(doc, features, probe.NewChannelProber(bus, logger), engineOpts...)
	// The engine writes tooltips, so it also hides them during previews.
	controller.SetTitleKeeper(engine)

	c := &Context{
		doc:        doc,
		features:   features,
		engine:     engine,
		overlay:    overlay,
		controller: controller,
		watcher:    watch.New(doc, engine, logger),
		logger:     logger,
	}
	c.register(bus)
	c.watcher.Start()

	logger.Debug("content activated",
		slog.String("page", pageName(doc)),
		slog.Bool("highlight", features.Highlight()),
		slog.Bool("preview", features.Preview()),
	)
	return c, nil
}

// register installs the toggle handlers. The flag is updated before the
// acknowledgement is returned.
func (c *Context) register(bus *channel.Bus) {
	bus.Handle(channel.ActionToggleHighlight, func(_ context.Context, msg channel.Message) (any, error) {
		c.features.SetHighlight(enabled(msg))
		c.engine.Refresh()
		return channel.Ack{Success: true}, nil
	})
	bus.Handle(channel.ActionTogglePreview, func(_ context.Context, msg channel.Message) (any, error) {
		on := enabled(msg)
		c.features.SetPreview(on)
		if !on {
			c.controller.Cancel()
		}
		c.engine.SyncPreview()
		return channel.Ack{Success: true}, nil
	})
}

// enabled treats a missing flag as false.
func enabled(msg channel.Message) bool {
	return msg.Enabled != nil && *msg.Enabled
}

// Document returns the activated document.
func (c *Context) Document() *dom.Document {
	return c.doc
}

// Features returns the live feature flags.
func (c *Context) Features() *config.Features {
	return c.features
}

// Engine returns the annotation engine.
func (c *Context) Engine() *annotate.Engine {
	return c.engine
}

// Overlay returns the preview overlay.
func (c *Context) Overlay() *preview.Overlay {
	return c.overlay
}

// Controller returns the preview controller.
func (c *Context) Controller() *preview.Controller {
	return c.controller
}

// Settle delivers pending mutation batches and waits for probes and
// preview loads until nothing is left in flight.
func (c *Context) Settle() {
	for {
		c.doc.Flush()
		c.engine.Wait()
		c.controller.Wait()
		if c.doc.Flush() == 0 {
			return
		}
	}
}

// Stop disconnects the watcher and ends any preview session.
func (c *Context) Stop() {
	c.watcher.Stop()
	c.controller.Cancel()
}

// Report describes every anchor of the document in order.
func (c *Context) Report() *model.LinkReport {
	report := model.NewLinkReport(pageName(c.doc))

	for i, el := range c.doc.Anchors(c.doc.Body()) {
		href, _ := c.doc.Attr(el, "href")
		title, _ := c.doc.Attr(el, "title")
		style, _ := c.doc.Attr(el, "style")

		entry := model.LinkEntry{
			Index:   i + 1,
			Href:    href,
			Text:    c.doc.TextContent(el),
			Title:   title,
			Style:   style,
			Verdict: model.VerdictIndeterminate.String(),
		}
		if view, ok := c.engine.View(el); ok {
			entry.Category = view.Category.Kind.String()
			entry.Target = view.Category.Target()
			entry.Verdict = view.Verdict.Kind.String()
			entry.Status = view.Verdict.Status
		} else {
			entry.Category = model.CategorySkip.String()
		}
		report.Links = append(report.Links, entry)
	}
	return report
}

// String identifies the context in logs.
func (c *Context) String() string {
	return fmt.Sprintf("content(%s)", pageName(c.doc))
}

func pageName(doc *dom.Document) string {
	if u := doc.PageURL(); u != nil {
		return u.String()
	}
	return ""
}
