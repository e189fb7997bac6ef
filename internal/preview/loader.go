package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultMaxBodySize bounds how much of a previewed page is read.
const DefaultMaxBodySize = 5 * 1024 * 1024

// maxPageText bounds the text kept from a loaded page.
const maxPageText = 2000

var (
	// ErrBlocked is returned when the page refuses to be framed.
	ErrBlocked = errors.New("page does not allow previews")

	// ErrEmpty is returned when the page loaded but has no content.
	ErrEmpty = errors.New("page has no content")

	// ErrLoadFailed is returned when the page could not be loaded.
	ErrLoadFailed = errors.New("failed to load page")
)

// Page is the content shown in the overlay after a navigation.
type Page struct {
	URL   string
	Title string
	Text  string
}

// Loader fetches the page a preview navigates to.
// Errors wrap ErrBlocked, ErrEmpty or ErrLoadFailed.
type Loader interface {
	Load(ctx context.Context, rawURL string) (Page, error)
}

// HTTPLoader loads pages with a plain HTTP client.
type HTTPLoader struct {
	client      *http.Client
	maxBodySize int64
}

// NewHTTPLoader creates a loader. maxBodySize 0 means the default.
func NewHTTPLoader(client *http.Client, maxBodySize int64) *HTTPLoader {
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	return &HTTPLoader{client: client, maxBodySize: maxBodySize}
}

// Load implements Loader. Only transport failures are load errors; a 4xx
// or 5xx response is previewed with the page the server sent.
func (l *HTTPLoader) Load(ctx context.Context, rawURL string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	req.Header.Set("Sec-Fetch-Dest", "iframe")

	resp, err := l.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	defer resp.Body.Close()

	// Error pages are shown like any other page, as a frame would.
	if FramingBlocked(resp.Header) {
		return Page{}, ErrBlocked
	}

	return parsePage(rawURL, io.LimitReader(resp.Body, l.maxBodySize))
}

// FramingBlocked reports whether response headers forbid embedding the
// page in a frame of another origin.
func FramingBlocked(h http.Header) bool {
	switch strings.ToUpper(strings.TrimSpace(h.Get("X-Frame-Options"))) {
	case "DENY", "SAMEORIGIN":
		return true
	}

	for _, csp := range h.Values("Content-Security-Policy") {
		for directive := range strings.SplitSeq(csp, ";") {
			fields := strings.Fields(directive)
			if len(fields) == 0 || !strings.EqualFold(fields[0], "frame-ancestors") {
				continue
			}
			allowed := false
			for _, src := range fields[1:] {
				if src == "*" {
					allowed = true
				}
			}
			if !allowed {
				return true
			}
		}
	}
	return false
}

// parsePage extracts title and text. A page whose body has no element
// children counts as empty.
func parsePage(rawURL string, r io.Reader) (Page, error) {
	root, err := html.Parse(r)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	page := Page{URL: rawURL}
	var body *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Title:
				if page.Title == "" && n.FirstChild != nil {
					page.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case atom.Body:
				if body == nil {
					body = n
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if body == nil || !hasElementChild(body) {
		return Page{}, ErrEmpty
	}
	page.Text = visibleText(body)
	return page, nil
}

func hasElementChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

func visibleText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Script || c.DataAtom == atom.Style) {
			return
		}
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
			sb.WriteString(" ")
		}
		for ch := c.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)

	text := strings.Join(strings.Fields(sb.String()), " ")
	if runes := []rune(text); len(runes) > maxPageText {
		text = string(runes[:maxPageText])
	}
	return text
}
