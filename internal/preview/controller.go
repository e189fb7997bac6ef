package preview

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/nao1215/linklens/internal/config"
	"github.com/nao1215/linklens/internal/dom"
	"github.com/nao1215/linklens/internal/i18n"
	"github.com/nao1215/linklens/internal/model"
)

const (
	// DefaultDelay is how long the pointer must rest before a preview opens.
	DefaultDelay = 300 * time.Millisecond

	titleAttr = "title"
)

// DefaultOverlaySize is the overlay size used when none is configured.
var DefaultOverlaySize = Size{Width: 640, Height: 480}

// DefaultViewport is the viewport assumed for placement.
var DefaultViewport = Size{Width: 1280, Height: 800}

// session is one hover, from enter to leave.
type session struct {
	id      uint64
	target  *html.Node
	cat     model.Category
	pointer dom.Pointer
	timer   Timer
	cancel  context.CancelFunc
}

// Controller drives the overlay from hover events.
type Controller struct {
	// mu guards current, nextID and titles. Lock order: Controller, then
	// the title keeper, Overlay or Document.
	mu      sync.Mutex
	current *session
	nextID  uint64
	titles  TitleKeeper

	doc      *dom.Document
	features *config.Features
	overlay  *Overlay
	loader   Loader

	scheduler Scheduler
	delay     time.Duration
	viewport  Size
	tr        *i18n.Translator
	logger    *slog.Logger
	ctx       context.Context

	loads sync.WaitGroup
}

// Option is a function that configures a Controller.
type Option func(*Controller)

// WithScheduler replaces the runtime timer.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		c.scheduler = s
	}
}

// WithDelay sets the hover debounce.
func WithDelay(d time.Duration) Option {
	return func(c *Controller) {
		c.delay = d
	}
}

// WithViewport sets the viewport used for placement.
func WithViewport(view Size) Option {
	return func(c *Controller) {
		c.viewport = view
	}
}

// WithTranslator sets the notice language.
func WithTranslator(tr *i18n.Translator) Option {
	return func(c *Controller) {
		c.tr = tr
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithContext sets the parent context of page loads.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) {
		c.ctx = ctx
	}
}

// WithTitleKeeper sets who hides and restores anchor titles.
func WithTitleKeeper(k TitleKeeper) Option {
	return func(c *Controller) {
		c.titles = k
	}
}

// New creates a controller over the given overlay.
func New(doc *dom.Document, features *config.Features, overlay *Overlay, loader Loader, opts ...Option) *Controller {
	c := &Controller{
		doc:       doc,
		features:  features,
		overlay:   overlay,
		loader:    loader,
		scheduler: RealScheduler{},
		delay:     DefaultDelay,
		viewport:  DefaultViewport,
		logger:    slog.Default(),
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.titles == nil {
		c.titles = newDocTitles(doc)
	}
	if c.tr == nil {
		c.tr = i18n.New("")
	}
	return c
}

// SetTitleKeeper replaces the title keeper. It is meant for wiring, when
// the keeper can only be built after the controller.
func (c *Controller) SetTitleKeeper(k TitleKeeper) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if k != nil {
		c.titles = k
	}
}

// Enter starts a session for el. Any previous session ends first.
func (c *Controller) Enter(el *html.Node, cat model.Category, p dom.Pointer) {
	if !c.features.Preview() || cat.Kind == model.CategorySkip {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.endLocked()

	c.nextID++
	s := &session{id: c.nextID, target: el, cat: cat, pointer: p}
	c.titles.HideTitle(el)
	id := s.id
	s.timer = c.scheduler.AfterFunc(c.delay, func() { c.fire(id) })
	c.current = s
}

// Leave ends the session if el is its anchor.
func (c *Controller) Leave(el *html.Node, _ dom.Pointer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || c.current.target != el {
		return
	}
	c.endLocked()
}

// Cancel ends the current session, if any.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLocked()
}

// Active reports whether a session is pending or showing.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// Wait blocks until all started page loads have finished.
func (c *Controller) Wait() {
	c.loads.Wait()
}

func (c *Controller) endLocked() {
	s := c.current
	if s == nil {
		return
	}
	c.current = nil

	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}
	c.overlay.Hide()
	c.overlay.Reset()

	c.titles.RestoreTitle(s.target)
}

// fire runs when the debounce elapses.
func (c *Controller) fire(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.current
	if s == nil || s.id != id {
		return
	}
	s.timer = nil

	switch s.cat.Kind {
	case model.CategorySamePageAnchor:
		if !c.renderFragmentLocked(s) {
			return
		}
	case model.CategoryInternal, model.CategoryExternal:
		c.navigateLocked(s)
	default:
		return
	}

	pos := Place(s.pointer.X, s.pointer.Y, c.overlay.Size(), c.viewport)
	c.overlay.Show(pos)
}

func (c *Controller) renderFragmentLocked(s *session) bool {
	target := c.doc.ElementByID(s.cat.ID)
	if target == nil {
		c.logger.Debug("preview target not found", slog.String("id", s.cat.ID))
		return false
	}
	fragment, err := c.doc.OuterHTML(c.doc.CloneInert(target))
	if err != nil {
		c.logger.Warn("failed to render preview fragment",
			slog.String("id", s.cat.ID),
			slog.String("error", err.Error()),
		)
		return false
	}
	c.overlay.RenderFragment(fragment, "#"+s.cat.ID)
	return true
}

func (c *Controller) navigateLocked(s *session) {
	if s.cat.URL == nil {
		return
	}
	rawURL := s.cat.URL.String()
	c.overlay.Navigate(rawURL)

	ctx, cancel := context.WithCancel(c.ctx)
	s.cancel = cancel
	id := s.id

	c.loads.Add(1)
	go func() {
		defer c.loads.Done()
		defer cancel()
		page, err := c.loader.Load(ctx, rawURL)
		c.finishLoad(id, rawURL, page, err)
	}()
}

func (c *Controller) finishLoad(id uint64, rawURL string, page Page, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || c.current.id != id {
		return
	}
	if err == nil {
		c.overlay.SetPage(page)
		return
	}

	if errors.Is(err, ErrBlocked) || errors.Is(err, ErrEmpty) {
		c.overlay.ShowNotice(c.tr.PreviewBlocked())
	} else {
		c.overlay.ShowNotice(c.tr.PreviewLoadError())
	}
	c.logger.Debug("preview load failed",
		slog.String("url", rawURL),
		slog.String("error", err.Error()),
	)
}
