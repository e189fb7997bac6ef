package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// anchorSelector matches the anchors the annotator cares about.
const anchorSelector = "a[href]"

var (
	// ErrNoBody is returned when a parsed document has no <body> element.
	ErrNoBody = errors.New("document has no body element")

	// ErrNotElement is returned when an element is required but another node kind was given.
	ErrNotElement = errors.New("node is not an element")
)

// Document is a parsed HTML page that can be inspected and mutated.
type Document struct {
	mu sync.Mutex

	root    *html.Node
	pageURL *url.URL

	listeners    map[*html.Node][]listener
	nextListener ListenerID

	observers []*Observer
}

// Parse reads an HTML page. pageURL is the URL the page was loaded from;
// it may be empty for pages without an origin.
func Parse(r io.Reader, pageURL string) (*Document, error) {
	var u *url.URL
	if pageURL != "" {
		parsed, err := url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("invalid page URL: %w", err)
		}
		u = parsed
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	d := &Document{
		root:      root,
		pageURL:   u,
		listeners: make(map[*html.Node][]listener),
	}
	if d.Body() == nil {
		return nil, ErrNoBody
	}
	return d, nil
}

// PageURL returns a copy of the URL the page was loaded from, or nil.
func (d *Document) PageURL() *url.URL {
	if d.pageURL == nil {
		return nil
	}
	u := *d.pageURL
	return &u
}

// BaseURL returns the URL relative links resolve against: the first
// <base href> resolved against the page URL, or the page URL itself.
func (d *Document) BaseURL() *url.URL {
	d.mu.Lock()
	defer d.mu.Unlock()

	base := d.PageURL()
	sel := goquery.NewDocumentFromNode(d.root).Find("base[href]").First()
	if sel.Length() == 0 {
		return base
	}
	href, _ := sel.Attr("href")
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return base
	}
	if base == nil {
		return ref
	}
	return base.ResolveReference(ref)
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Body returns the <body> element, or nil when the tree has none.
func (d *Document) Body() *html.Node {
	var find func(*html.Node) *html.Node
	find = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := find(c); found != nil {
				return found
			}
		}
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return find(d.root)
}

// Anchors returns every a[href] element in the subtree rooted at root,
// including root itself, in document order and without duplicates.
func (d *Document) Anchors(root *html.Node) []*html.Node {
	if root == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	sel := goquery.NewDocumentFromNode(root).Selection
	anchors := make([]*html.Node, 0)
	if root.Type == html.ElementNode && sel.Is(anchorSelector) {
		anchors = append(anchors, root)
	}
	return append(anchors, sel.Find(anchorSelector).Nodes...)
}

// IsAnchor reports whether n is an a[href] element.
func IsAnchor(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode || n.DataAtom != atom.A {
		return false
	}
	_, ok := attr(n, "href")
	return ok
}

// ElementByID returns the first element whose id equals id, or nil.
func (d *Document) ElementByID(id string) *html.Node {
	if id == "" {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var found *html.Node
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			if v, ok := attr(n, "id"); ok && v == id {
				found = n
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(d.root)
	return found
}

// Attr returns the value of the named attribute and whether it is present.
func (d *Document) Attr(n *html.Node, name string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return attr(n, name)
}

// SetAttr sets the named attribute, adding it when absent.
// Observers are notified even when the value does not change.
func (d *Document) SetAttr(n *html.Node, name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setAttrLocked(n, name, value)
}

// RemoveAttr removes the named attribute. It is a no-op when absent.
func (d *Document) RemoveAttr(n *html.Node, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.removeAttrLocked(n, name)
}

func (d *Document) setAttrLocked(n *html.Node, name, value string) {
	name = strings.ToLower(name)
	old, had := attr(n, name)
	if had {
		for i := range n.Attr {
			if n.Attr[i].Namespace == "" && n.Attr[i].Key == name {
				n.Attr[i].Val = value
				break
			}
		}
	} else {
		n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
	}
	d.queueAttributeLocked(n, name, old, had)
}

func (d *Document) removeAttrLocked(n *html.Node, name string) {
	name = strings.ToLower(name)
	old, had := attr(n, name)
	if !had {
		return
	}
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
	d.queueAttributeLocked(n, name, old, true)
}

// AppendChild appends child to parent. A child that is still attached
// elsewhere is moved.
func (d *Document) AppendChild(parent, child *html.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if child.Parent != nil {
		old := child.Parent
		old.RemoveChild(child)
		d.queueChildListLocked(old, nil, []*html.Node{child})
	}
	parent.AppendChild(child)
	d.queueChildListLocked(parent, []*html.Node{child}, nil)
}

// RemoveChild detaches n from its parent.
func (d *Document) RemoveChild(n *html.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()

	parent := n.Parent
	if parent == nil {
		return
	}
	parent.RemoveChild(n)
	d.queueChildListLocked(parent, nil, []*html.Node{n})
}

// InsertHTML parses markup in the context of parent and appends the
// resulting nodes to it, as a single mutation. It returns the inserted nodes.
func (d *Document) InsertHTML(parent *html.Node, markup string) ([]*html.Node, error) {
	if parent == nil || parent.Type != html.ElementNode {
		return nil, ErrNotElement
	}

	nodes, err := html.ParseFragment(strings.NewReader(markup), parent)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fragment: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	d.queueChildListLocked(parent, nodes, nil)
	return nodes, nil
}

// IsConnected reports whether n is still attached to the document tree.
func (d *Document) IsConnected(n *html.Node) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

// TextContent returns the whitespace-collapsed text inside n.
func (d *Document) TextContent(n *html.Node) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
			sb.WriteString(" ")
		}
		for ch := c.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// CloneInert returns a detached deep copy of n that is safe to display
// elsewhere: ids, inline event handlers and scripts are dropped.
func (d *Document) CloneInert(n *html.Node) *html.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return cloneInert(n)
}

func cloneInert(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	for _, a := range n.Attr {
		if a.Key == "id" || strings.HasPrefix(a.Key, "on") {
			continue
		}
		c.Attr = append(c.Attr, a)
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.ElementNode && ch.DataAtom == atom.Script {
			continue
		}
		c.AppendChild(cloneInert(ch))
	}
	return c
}

// OuterHTML renders n and its subtree.
func (d *Document) OuterHTML(n *html.Node) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("failed to render node: %w", err)
	}
	return buf.String(), nil
}

// Render writes the whole document as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

func attr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	name = strings.ToLower(name)
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}
