package preview

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// ChromeOptions configures a ChromeLoader.
type ChromeOptions struct {
	// ExecPath is the Chrome binary; empty means auto-detect.
	ExecPath string

	// UserAgent overrides the browser user agent when non-empty.
	UserAgent string

	// Headers are sent with every request.
	Headers map[string]string

	// Viewport is the browser window size.
	Viewport Size

	// ProxyAddress routes the browser through a SOCKS5 proxy ("host:port").
	// A value with a scheme is passed to Chrome as is.
	ProxyAddress string

	// NoSandbox disables the Chrome sandbox, which fails to start as root.
	NoSandbox bool
}

// ChromeLoader renders pages in headless Chrome, so script-built pages
// preview with their real content.
type ChromeLoader struct {
	opts ChromeOptions
}

// NewChromeLoader creates a loader. Chrome is started per load.
func NewChromeLoader(opts ChromeOptions) *ChromeLoader {
	if opts.Viewport.Width <= 0 || opts.Viewport.Height <= 0 {
		opts.Viewport = Size{Width: 1280, Height: 1000}
	}
	return &ChromeLoader{opts: opts}
}

// Options returns the loader's configuration.
func (l *ChromeLoader) Options() ChromeOptions {
	return l.opts
}

func (l *ChromeLoader) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Headless,
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(l.opts.Viewport.Width, l.opts.Viewport.Height),
	}
	if l.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(l.opts.UserAgent))
	}
	if l.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.opts.ExecPath))
	}
	if l.opts.ProxyAddress != "" {
		opts = append(opts, chromedp.ProxyServer(proxyServer(l.opts.ProxyAddress)))
	}
	if l.opts.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	return opts
}

// proxyServer returns the --proxy-server value for addr.
func proxyServer(addr string) string {
	if strings.Contains(addr, "://") {
		return addr
	}
	return "socks5://" + addr
}

// Load implements Loader. As with HTTPLoader, error pages are previewed.
func (l *ChromeLoader) Load(ctx context.Context, rawURL string) (Page, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, l.allocatorOptions()...)
	defer allocCancel()

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	var (
		mu      sync.Mutex
		headers = http.Header{}
	)
	chromedp.ListenTarget(tabCtx, func(ev any) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || resp.Type != network.ResourceTypeDocument || resp.Response == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		for k, v := range resp.Response.Headers {
			headers.Set(k, fmt.Sprint(v))
		}
	})

	extra := make(network.Headers, len(l.opts.Headers))
	for k, v := range l.opts.Headers {
		extra[k] = v
	}

	var outer string
	err := chromedp.Run(tabCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(extra),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &outer, chromedp.ByQuery),
	)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	mu.Lock()
	blocked := FramingBlocked(headers)
	mu.Unlock()
	if blocked {
		return Page{}, ErrBlocked
	}

	return parsePage(rawURL, strings.NewReader(outer))
}
