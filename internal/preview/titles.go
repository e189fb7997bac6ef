package preview

import (
	"sync"

	"golang.org/x/net/html"

	"github.com/nao1215/linklens/internal/dom"
)

// TitleKeeper hides an anchor's tooltip while its preview is pending or
// visible and puts it back when the session ends. A component that writes
// titles itself should be the keeper, so that the two never restore over
// each other.
type TitleKeeper interface {
	HideTitle(el *html.Node)
	RestoreTitle(el *html.Node)
}

// docTitles is the keeper used when nothing else owns the title attribute.
type docTitles struct {
	doc *dom.Document

	mu     sync.Mutex
	hidden map[*html.Node]string
}

func newDocTitles(doc *dom.Document) *docTitles {
	return &docTitles{doc: doc, hidden: make(map[*html.Node]string)}
}

// HideTitle blanks the title of el, if it has one.
func (t *docTitles) HideTitle(el *html.Node) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.hidden[el]; ok {
		return
	}
	if title, ok := t.doc.Attr(el, titleAttr); ok {
		t.hidden[el] = title
		t.doc.SetAttr(el, titleAttr, "")
	}
}

// RestoreTitle puts the hidden title back unless the title was rewritten
// in the meantime.
func (t *docTitles) RestoreTitle(el *html.Node) {
	t.mu.Lock()
	defer t.mu.Unlock()

	title, ok := t.hidden[el]
	if !ok {
		return
	}
	delete(t.hidden, el)
	if current, present := t.doc.Attr(el, titleAttr); present && current == "" {
		t.doc.SetAttr(el, titleAttr, title)
	}
}
