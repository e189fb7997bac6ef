package dom

import "golang.org/x/net/html"

// EventType names a DOM event.
type EventType string

const (
	// EventMouseEnter fires when the pointer enters an element. It does not bubble.
	EventMouseEnter EventType = "mouseenter"

	// EventMouseLeave fires when the pointer leaves an element. It does not bubble.
	EventMouseLeave EventType = "mouseleave"
)

// Pointer is a pointer position in viewport coordinates.
type Pointer struct {
	X int
	Y int
}

// Event is delivered to listeners.
type Event struct {
	Type    EventType
	Target  *html.Node
	Pointer Pointer
}

// Listener handles an event.
type Listener func(Event)

// ListenerID identifies a registered listener so it can be removed.
type ListenerID uint64

type listener struct {
	id  ListenerID
	typ EventType
	fn  Listener
}

// AddEventListener registers fn for events of type typ on n.
func (d *Document) AddEventListener(n *html.Node, typ EventType, fn Listener) ListenerID {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextListener++
	id := d.nextListener
	d.listeners[n] = append(d.listeners[n], listener{id: id, typ: typ, fn: fn})
	return id
}

// RemoveEventListener unregisters a listener. It reports whether the
// listener was registered on n.
func (d *Document) RemoveEventListener(n *html.Node, id ListenerID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	ls := d.listeners[n]
	for i, l := range ls {
		if l.id != id {
			continue
		}
		ls = append(ls[:i], ls[i+1:]...)
		if len(ls) == 0 {
			delete(d.listeners, n)
		} else {
			d.listeners[n] = ls
		}
		return true
	}
	return false
}

// ListenerCount returns the number of listeners of type typ on n.
func (d *Document) ListenerCount(n *html.Node, typ EventType) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	count := 0
	for _, l := range d.listeners[n] {
		if l.typ == typ {
			count++
		}
	}
	return count
}

// Dispatch delivers an event of type typ to the listeners on n, in
// registration order. It returns the number of listeners invoked.
func (d *Document) Dispatch(n *html.Node, typ EventType, p Pointer) int {
	d.mu.Lock()
	fns := make([]Listener, 0, len(d.listeners[n]))
	for _, l := range d.listeners[n] {
		if l.typ == typ {
			fns = append(fns, l.fn)
		}
	}
	d.mu.Unlock()

	ev := Event{Type: typ, Target: n, Pointer: p}
	for _, fn := range fns {
		fn(ev)
	}
	return len(fns)
}
