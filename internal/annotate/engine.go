package annotate

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/nao1215/linklens/internal/classify"
	"github.com/nao1215/linklens/internal/config"
	"github.com/nao1215/linklens/internal/dom"
	"github.com/nao1215/linklens/internal/i18n"
	"github.com/nao1215/linklens/internal/model"
	"github.com/nao1215/linklens/internal/probe"
)

const (
	styleAttr = "style"
	titleAttr = "title"
)

// HoverHandler receives hover events from bound anchors.
type HoverHandler interface {
	Enter(el *html.Node, cat model.Category, p dom.Pointer)
	Leave(el *html.Node, p dom.Pointer)
}

// Dispatcher runs a probe job asynchronously.
type Dispatcher func(job func())

// Engine annotates the anchors of one document.
type Engine struct {
	// mu guards records. It is taken before the document lock, never after,
	// and after the preview controller's lock when the engine keeps titles
	// for it.
	mu sync.Mutex

	doc      *dom.Document
	features *config.Features
	prober   probe.Prober

	theme    Theme
	tr       *i18n.Translator
	hover    HoverHandler
	logger   *slog.Logger
	dispatch Dispatcher
	ctx      context.Context

	records map[*html.Node]*record

	// probes tracks dispatched probe jobs for Wait.
	probes sync.WaitGroup
}

// Option is a function that configures an Engine.
type Option func(*Engine)

// WithTheme sets the visual treatments.
func WithTheme(theme Theme) Option {
	return func(e *Engine) {
		e.theme = theme
	}
}

// WithTranslator sets the tooltip language.
func WithTranslator(tr *i18n.Translator) Option {
	return func(e *Engine) {
		e.tr = tr
	}
}

// WithHoverHandler sets the receiver of hover events. Without one no
// listeners are bound.
func WithHoverHandler(h HoverHandler) Option {
	return func(e *Engine) {
		e.hover = h
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithDispatch replaces the goroutine-per-probe dispatcher.
func WithDispatch(d Dispatcher) Option {
	return func(e *Engine) {
		e.dispatch = d
	}
}

// WithProbeContext sets the context probes run under.
func WithProbeContext(ctx context.Context) Option {
	return func(e *Engine) {
		e.ctx = ctx
	}
}

// New creates an engine for doc. features is shared with the toggle
// handler; the engine only reads it.
func New(doc *dom.Document, features *config.Features, prober probe.Prober, opts ...Option) *Engine {
	e := &Engine{
		doc:      doc,
		features: features,
		prober:   prober,
		theme:    DefaultTheme(),
		records:  make(map[*html.Node]*record),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.tr == nil {
		e.tr = i18n.New(config.DefaultLanguage)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.dispatch == nil {
		e.dispatch = func(job func()) { go job() }
	}
	if e.ctx == nil {
		e.ctx = context.Background()
	}
	return e
}

// Process feeds one anchor through the pipeline. Calling it again for an
// anchor that already reached the current phase's state changes nothing.
func (e *Engine) Process(el *html.Node) {
	if !dom.IsAnchor(el) {
		return
	}

	e.mu.Lock()
	job := e.processLocked(e.recordLocked(el))
	e.mu.Unlock()

	e.run(job)
}

// Reprocess handles an href or target change: the anchor's visuals are
// reverted and it is classified again as if it were new.
func (e *Engine) Reprocess(el *html.Node) {
	e.mu.Lock()
	rec, ok := e.records[el]
	if !ok {
		e.mu.Unlock()
		e.Process(el)
		return
	}

	if rec.state == model.StateAnnotated {
		e.revertLocked(rec)
	}
	rec.state = model.StateUnprocessed
	rec.classified = false
	rec.generation++

	var job func()
	if dom.IsAnchor(el) {
		job = e.processLocked(rec)
	} else {
		e.restoreTitleLocked(rec)
		e.unbindLocked(rec)
		delete(e.records, el)
	}
	e.mu.Unlock()

	e.run(job)
}

// ProcessAll feeds every anchor under root through Process.
func (e *Engine) ProcessAll(root *html.Node) {
	for _, el := range e.doc.Anchors(root) {
		e.Process(el)
	}
}

// Refresh reconciles every anchor with the current highlight flag: it
// annotates unprocessed and cleared anchors while highlighting is on and
// clears annotated ones while it is off. Records of anchors that left the
// document are dropped.
func (e *Engine) Refresh() {
	anchors := e.doc.Anchors(e.doc.Body())
	live := make(map[*html.Node]bool, len(anchors))
	for _, el := range anchors {
		live[el] = true
	}

	e.mu.Lock()
	for el, rec := range e.records {
		if live[el] {
			continue
		}
		if rec.state == model.StateAnnotated {
			e.revertLocked(rec)
		}
		e.restoreTitleLocked(rec)
		e.unbindLocked(rec)
		delete(e.records, el)
	}

	highlight := e.features.Highlight()
	jobs := make([]func(), 0)
	for _, el := range anchors {
		rec := e.recordLocked(el)
		switch {
		case highlight && rec.state != model.StateAnnotated:
			if job := e.processLocked(rec); job != nil {
				jobs = append(jobs, job)
			}
		case !highlight && rec.state == model.StateAnnotated:
			e.clearLocked(rec)
			e.syncBindingLocked(rec)
		default:
			if !rec.classified {
				e.classifyLocked(rec)
			}
			e.syncBindingLocked(rec)
		}
	}
	e.mu.Unlock()

	for _, job := range jobs {
		e.run(job)
	}
}

// SyncPreview binds or unbinds hover listeners to match the preview flag.
func (e *Engine) SyncPreview() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, rec := range e.records {
		e.syncBindingLocked(rec)
	}
}

// Wait blocks until every dispatched probe has been applied or discarded.
func (e *Engine) Wait() {
	e.probes.Wait()
}

// View returns a snapshot of the anchor's record.
func (e *Engine) View(el *html.Node) (model.AnchorView, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.records[el]
	if !ok {
		return model.AnchorView{}, false
	}
	return rec.view(), true
}

// Len returns the number of tracked anchors.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.records)
}

func (e *Engine) run(job func()) {
	if job != nil {
		e.dispatch(job)
	}
}

func (e *Engine) recordLocked(el *html.Node) *record {
	rec, ok := e.records[el]
	if !ok {
		rec = &record{el: el, state: model.StateUnprocessed, verdict: model.Indeterminate()}
		e.records[el] = rec
	}
	return rec
}

func (e *Engine) classifyLocked(rec *record) {
	rec.rawHref, _ = e.doc.Attr(rec.el, "href")
	rec.target, _ = e.doc.Attr(rec.el, "target")
	rec.category = classify.Classify(rec.rawHref, rec.target, e.doc.BaseURL())
	rec.classified = true
}

// processLocked moves an anchor into the current phase and returns the
// probe job to dispatch once the lock is released, if any.
func (e *Engine) processLocked(rec *record) func() {
	defer e.syncBindingLocked(rec)

	if !e.features.Highlight() {
		if !rec.classified {
			e.classifyLocked(rec)
		}
		return nil
	}
	if rec.state == model.StateAnnotated {
		return nil
	}

	e.classifyLocked(rec)
	rec.state = model.StateAnnotated
	rec.generation++
	rec.verdict = model.Indeterminate()
	rec.probed = false
	e.applyCategoryLocked(rec)

	if !rec.category.Probeable() {
		return nil
	}

	el := rec.el
	gen := rec.generation
	target := rec.category.URL.String()
	e.probes.Add(1)
	return func() {
		defer e.probes.Done()
		v := e.prober.Probe(e.ctx, target)
		e.applyVerdict(el, gen, v)
	}
}

func (e *Engine) applyCategoryLocked(rec *record) {
	href := strings.TrimSpace(rec.rawHref)
	switch rec.category.Kind {
	case model.CategorySamePageAnchor:
		if e.doc.ElementByID(rec.category.ID) != nil {
			e.applyTreatmentLocked(rec, e.theme.AnchorFound)
			e.setTitleLocked(rec, e.tr.AnchorFound(href))
		} else {
			e.applyTreatmentLocked(rec, e.theme.AnchorMissing)
			e.setTitleLocked(rec, e.tr.AnchorMissing(href))
		}
	case model.CategoryInternal:
		e.applyTreatmentLocked(rec, e.theme.Internal)
	case model.CategoryExternal:
		e.applyTreatmentLocked(rec, e.theme.External)
	case model.CategorySkip:
		return
	}
	if rec.category.OpensNewContext {
		e.applyTreatmentLocked(rec, e.theme.NewContext)
	}
}

// applyVerdict applies a probe result if the anchor is still in the phase
// that dispatched the probe.
func (e *Engine) applyVerdict(el *html.Node, gen uint64, v model.Verdict) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.records[el]
	if !ok || !e.features.Highlight() || rec.state != model.StateAnnotated || rec.generation != gen {
		e.logger.Debug("discarding stale verdict", "verdict", v.String())
		return
	}

	rec.verdict = v
	rec.probed = true
	if !v.IsBroken() {
		return
	}

	e.applyTreatmentLocked(rec, e.theme.Broken)
	if rec.category.Kind == model.CategoryInternal && !rec.category.OpensNewContext {
		e.applyTreatmentLocked(rec, e.theme.BrokenInternal)
	}
	e.setTitleLocked(rec, e.tr.Broken(v.Status))
	e.logger.Debug("broken link", "url", rec.category.Target(), "status", v.Status)
}

func (e *Engine) savedLocked(rec *record) *savedVisuals {
	if rec.saved == nil {
		style, had := e.doc.Attr(rec.el, styleAttr)
		rec.saved = newSavedVisuals(style, had)
	}
	return rec.saved
}

func (e *Engine) applyTreatmentLocked(rec *record, tr Treatment) {
	if len(tr) == 0 {
		return
	}
	saved := e.savedLocked(rec)
	for _, d := range tr {
		if _, seen := saved.properties[d.Property]; !seen {
			value, imp, present := e.doc.StyleProperty(rec.el, d.Property)
			saved.properties[d.Property] = originalProperty{value: value, important: imp, present: present}
			saved.order = append(saved.order, d.Property)
		}
		e.doc.SetStyleProperty(rec.el, d.Property, d.Value, d.Important)
	}
	saved.wroteStyle, saved.styleExists = e.doc.Attr(rec.el, styleAttr)
}

func (e *Engine) setTitleLocked(rec *record, title string) {
	saved := e.savedLocked(rec)
	if !saved.titleSaved {
		saved.title, saved.hadTitle = e.titleLocked(rec)
		saved.titleSaved = true
	}
	saved.wroteTitle = title
	e.putTitleLocked(rec, title, true)
}

// titleLocked returns the title the anchor carries, looking through a
// preview that hides it.
func (e *Engine) titleLocked(rec *record) (string, bool) {
	if rec.titleHidden {
		return rec.hiddenTitle, rec.hiddenHad
	}
	return e.doc.Attr(rec.el, titleAttr)
}

// putTitleLocked sets or removes the anchor's title. While a preview hides
// the title only the kept value changes.
func (e *Engine) putTitleLocked(rec *record, title string, present bool) {
	switch {
	case rec.titleHidden:
		rec.hiddenTitle, rec.hiddenHad = title, present
	case present:
		e.doc.SetAttr(rec.el, titleAttr, title)
	default:
		e.doc.RemoveAttr(rec.el, titleAttr)
	}
}

// HideTitle blanks the anchor's title while its preview is pending or
// visible. Titles written meanwhile are kept aside and shown by
// RestoreTitle.
func (e *Engine) HideTitle(el *html.Node) {
	if !dom.IsAnchor(el) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	rec := e.recordLocked(el)
	if rec.titleHidden {
		return
	}
	rec.hiddenTitle, rec.hiddenHad = e.doc.Attr(el, titleAttr)
	rec.titleHidden = true
	rec.titleBlanked = rec.hiddenHad
	if rec.titleBlanked {
		e.doc.SetAttr(el, titleAttr, "")
	}
}

// RestoreTitle ends HideTitle. A title set by someone else while it was
// hidden wins over the kept one.
func (e *Engine) RestoreTitle(el *html.Node) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if rec, ok := e.records[el]; ok {
		e.restoreTitleLocked(rec)
	}
}

func (e *Engine) restoreTitleLocked(rec *record) {
	if !rec.titleHidden {
		return
	}
	rec.titleHidden = false

	current, present := e.doc.Attr(rec.el, titleAttr)
	untouched := present == rec.titleBlanked && (!present || current == "")
	if untouched {
		e.putTitleLocked(rec, rec.hiddenTitle, rec.hiddenHad)
	}
	rec.hiddenTitle, rec.hiddenHad = "", false
}

// clearLocked moves an annotated anchor to Cleared.
func (e *Engine) clearLocked(rec *record) {
	e.revertLocked(rec)
	rec.state = model.StateCleared
	rec.generation++
}

// revertLocked restores the visuals saved before annotation.
func (e *Engine) revertLocked(rec *record) {
	saved := rec.saved
	rec.saved = nil
	rec.verdict = model.Indeterminate()
	rec.probed = false
	if saved == nil {
		return
	}

	current, exists := e.doc.Attr(rec.el, styleAttr)
	if exists == saved.styleExists && current == saved.wroteStyle {
		// Untouched since our last write: put the original text back verbatim.
		if saved.hadStyle {
			e.doc.SetAttr(rec.el, styleAttr, saved.style)
		} else {
			e.doc.RemoveAttr(rec.el, styleAttr)
		}
	} else {
		for _, prop := range saved.order {
			orig := saved.properties[prop]
			if orig.present {
				e.doc.SetStyleProperty(rec.el, prop, orig.value, orig.important)
			} else {
				e.doc.RemoveStyleProperty(rec.el, prop)
			}
		}
	}

	if saved.titleSaved {
		if current, _ := e.titleLocked(rec); current == saved.wroteTitle {
			e.putTitleLocked(rec, saved.title, saved.hadTitle)
		}
	}
}

func (e *Engine) syncBindingLocked(rec *record) {
	want := e.hover != nil && e.features.Preview() && rec.classified && !rec.category.IsSkip()
	switch {
	case want && !rec.bound:
		el := rec.el
		rec.enterID = e.doc.AddEventListener(el, dom.EventMouseEnter, func(ev dom.Event) {
			if cat, ok := e.boundCategory(el); ok {
				e.hover.Enter(el, cat, ev.Pointer)
			}
		})
		rec.leaveID = e.doc.AddEventListener(el, dom.EventMouseLeave, func(ev dom.Event) {
			e.hover.Leave(el, ev.Pointer)
		})
		rec.bound = true
	case !want && rec.bound:
		e.unbindLocked(rec)
	}
}

func (e *Engine) unbindLocked(rec *record) {
	if !rec.bound {
		return
	}
	e.doc.RemoveEventListener(rec.el, rec.enterID)
	e.doc.RemoveEventListener(rec.el, rec.leaveID)
	rec.bound = false
}

// boundCategory returns the category of a bound anchor at event time.
func (e *Engine) boundCategory(el *html.Node) (model.Category, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok := e.records[el]
	if !ok || !rec.bound || rec.category.IsSkip() {
		return model.Category{}, false
	}
	return rec.category, true
}
