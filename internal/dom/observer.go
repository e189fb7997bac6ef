package dom

import (
	"slices"

	"golang.org/x/net/html"
)

// maxFlushRounds bounds Flush when callbacks keep producing mutations.
const maxFlushRounds = 64

// MutationType is the kind of a mutation record.
type MutationType string

const (
	// MutationChildList records inserted or removed children.
	MutationChildList MutationType = "childList"

	// MutationAttributes records an attribute change.
	MutationAttributes MutationType = "attributes"
)

// MutationRecord describes one change to the tree.
type MutationRecord struct {
	Type MutationType

	// Target is the parent for childList records and the element for
	// attribute records.
	Target *html.Node

	Added   []*html.Node
	Removed []*html.Node

	AttributeName string
	// OldValue is the previous attribute value; HadValue is false when the
	// attribute was absent.
	OldValue string
	HadValue bool
}

// ObserveOptions selects the mutations an observer receives.
type ObserveOptions struct {
	ChildList  bool
	Attributes bool
	Subtree    bool

	// AttributeFilter limits attribute records to these names.
	// A non-empty filter implies Attributes.
	AttributeFilter []string
}

// MutationCallback receives a batch of records.
type MutationCallback func(records []MutationRecord)

// Observer watches a subtree for mutations.
type Observer struct {
	doc      *Document
	target   *html.Node
	opts     ObserveOptions
	callback MutationCallback
	pending  []MutationRecord
}

// Observe starts delivering mutations under target to callback.
// Records are queued and handed over in batches by Flush.
func (d *Document) Observe(target *html.Node, opts ObserveOptions, callback MutationCallback) *Observer {
	if len(opts.AttributeFilter) > 0 {
		opts.Attributes = true
	}
	o := &Observer{doc: d, target: target, opts: opts, callback: callback}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, o)
	return o
}

// Disconnect stops the observer and drops its queued records.
func (o *Observer) Disconnect() {
	d := o.doc
	d.mu.Lock()
	defer d.mu.Unlock()

	o.pending = nil
	d.observers = slices.DeleteFunc(d.observers, func(other *Observer) bool {
		return other == o
	})
}

// TakeRecords returns and clears the queued records without invoking the callback.
func (o *Observer) TakeRecords() []MutationRecord {
	o.doc.mu.Lock()
	defer o.doc.mu.Unlock()

	records := o.pending
	o.pending = nil
	return records
}

// Flush delivers queued records to every observer, one batch per observer.
// Mutations made by callbacks are delivered in a further round.
// It returns the number of batches delivered.
func (d *Document) Flush() int {
	batches := 0
	for range maxFlushRounds {
		type delivery struct {
			cb      MutationCallback
			records []MutationRecord
		}

		d.mu.Lock()
		deliveries := make([]delivery, 0, len(d.observers))
		for _, o := range d.observers {
			if len(o.pending) == 0 {
				continue
			}
			deliveries = append(deliveries, delivery{cb: o.callback, records: o.pending})
			o.pending = nil
		}
		d.mu.Unlock()

		if len(deliveries) == 0 {
			break
		}
		for _, dl := range deliveries {
			dl.cb(dl.records)
			batches++
		}
	}
	return batches
}

func (d *Document) queueAttributeLocked(n *html.Node, name, old string, had bool) {
	for _, o := range d.observers {
		if !o.opts.Attributes || !o.covers(n) {
			continue
		}
		if len(o.opts.AttributeFilter) > 0 && !slices.Contains(o.opts.AttributeFilter, name) {
			continue
		}
		o.pending = append(o.pending, MutationRecord{
			Type:          MutationAttributes,
			Target:        n,
			AttributeName: name,
			OldValue:      old,
			HadValue:      had,
		})
	}
}

func (d *Document) queueChildListLocked(parent *html.Node, added, removed []*html.Node) {
	for _, o := range d.observers {
		if !o.opts.ChildList || !o.covers(parent) {
			continue
		}
		o.pending = append(o.pending, MutationRecord{
			Type:    MutationChildList,
			Target:  parent,
			Added:   slices.Clone(added),
			Removed: slices.Clone(removed),
		})
	}
}

// covers reports whether a mutation on n is within the observer's reach.
func (o *Observer) covers(n *html.Node) bool {
	if n == o.target {
		return true
	}
	if !o.opts.Subtree {
		return false
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p == o.target {
			return true
		}
	}
	return false
}
