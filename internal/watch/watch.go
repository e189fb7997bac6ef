// Package watch feeds anchors into the annotation pipeline as the page
// changes.
//
// The watcher makes an initial pass over every anchor present at start and
// then observes the body: inserted subtrees are scanned for a[href]
// (the inserted node itself included) and href/target changes force the
// affected anchor to be classified again.
package watch

import (
	"log/slog"

	"golang.org/x/net/html"

	"github.com/nao1215/linklens/internal/dom"
)

// Sink receives anchors from the watcher.
type Sink interface {
	// Process handles a newly discovered anchor.
	Process(el *html.Node)

	// Reprocess handles an anchor whose href or target changed.
	Reprocess(el *html.Node)
}

// watchedAttributes are the attributes that can change an anchor's category.
var watchedAttributes = []string{"href", "target"}

// Watcher observes a document body.
type Watcher struct {
	doc      *dom.Document
	sink     Sink
	logger   *slog.Logger
	observer *dom.Observer
}

// New creates a watcher. A nil logger uses slog.Default().
func New(doc *dom.Document, sink Sink, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{doc: doc, sink: sink, logger: logger}
}

// Start processes the anchors already in the page and starts observing.
// Calling Start on a running watcher does nothing.
func (w *Watcher) Start() {
	if w.observer != nil {
		return
	}

	body := w.doc.Body()
	anchors := w.doc.Anchors(body)
	for _, el := range anchors {
		w.sink.Process(el)
	}
	w.logger.Debug("initial anchor pass", "anchors", len(anchors))

	w.observer = w.doc.Observe(body, dom.ObserveOptions{
		ChildList:       true,
		Subtree:         true,
		AttributeFilter: watchedAttributes,
	}, w.handle)
}

// Stop disconnects the observer.
func (w *Watcher) Stop() {
	if w.observer == nil {
		return
	}
	w.observer.Disconnect()
	w.observer = nil
}

// handle processes one batch. An anchor is fed to the sink at most once per
// batch even when it appears both as an inserted node and inside an
// inserted subtree, or changes more than one attribute.
func (w *Watcher) handle(records []dom.MutationRecord) {
	processed := make(map[*html.Node]bool)
	reprocessed := make(map[*html.Node]bool)

	for _, rec := range records {
		switch rec.Type {
		case dom.MutationChildList:
			for _, n := range rec.Added {
				if n.Type != html.ElementNode || !w.doc.IsConnected(n) {
					continue
				}
				for _, el := range w.doc.Anchors(n) {
					if processed[el] || reprocessed[el] {
						continue
					}
					processed[el] = true
					w.sink.Process(el)
				}
			}
		case dom.MutationAttributes:
			el := rec.Target
			if reprocessed[el] || processed[el] || !w.doc.IsConnected(el) {
				continue
			}
			reprocessed[el] = true
			w.sink.Reprocess(el)
		}
	}

	if len(processed)+len(reprocessed) > 0 {
		w.logger.Debug("mutation batch",
			"records", len(records),
			"processed", len(processed),
			"reprocessed", len(reprocessed),
		)
	}
}
