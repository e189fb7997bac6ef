package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/linklens/internal/channel"
	"github.com/nao1215/linklens/internal/config"
	"github.com/nao1215/linklens/internal/content"
	"github.com/nao1215/linklens/internal/dom"
	"github.com/nao1215/linklens/internal/preview"
)

// errNotPreviewable is returned when the anchor has no hover binding,
// for example a javascript: or mailto: link.
var errNotPreviewable = errors.New("link cannot be previewed")

// previewTextLimit bounds the page text printed for a preview.
const previewTextLimit = 300

// NewPreviewCmd creates the preview command.
func NewPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <url|file>",
		Short: "Show the hover preview of one link",
		Long: `Preview loads a page, turns hover previews on and rests the pointer on
the first link whose href matches --href. After the hover delay it prints
where the overlay appears and what it shows: an inert copy of the target
section for "#id" links, or the loaded page for other links.

Examples:
  # Preview an external link
  linklens preview https://example.com/ --href https://www.iana.org/

  # Preview a same-page section with the pointer at (400, 300)
  linklens preview page.html --base https://example.com/ --href "#install" --pointer-x 400 --pointer-y 300

  # Render the preview in headless Chrome
  linklens preview https://example.com/ --href /about --chrome`,
		Args: cobra.ExactArgs(1),
		RunE: runPreviewCmd,
	}

	addPageFlags(cmd)

	cmd.Flags().String("href", "", "href attribute of the link to hover (required)")
	cmd.Flags().Int("pointer-x", 100, "Pointer x position in the viewport")
	cmd.Flags().Int("pointer-y", 100, "Pointer y position in the viewport")
	cmd.Flags().Duration("delay", config.DefaultDebounceDelay, "Hover delay before the preview opens")
	cmd.Flags().Bool("chrome", false, "Render previews in headless Chrome")
	cmd.Flags().String("chrome-path", "", "Chrome binary (default: auto-detect)")
	_ = cmd.MarkFlagRequired("href")

	return cmd
}

func runPreviewCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildPageConfig(cmd, args)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	href, err := flags.GetString("href")
	if err != nil {
		return err
	}
	x, err := flags.GetInt("pointer-x")
	if err != nil {
		return err
	}
	y, err := flags.GetInt("pointer-y")
	if err != nil {
		return err
	}
	if flags.Changed("delay") {
		if cfg.DebounceDelay, err = flags.GetDuration("delay"); err != nil {
			return err
		}
	}
	if flags.Changed("chrome") {
		if cfg.UseChrome, err = flags.GetBool("chrome"); err != nil {
			return err
		}
	}
	if cfg.ChromePath, err = flags.GetString("chrome-path"); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	state, err := runPreview(ctx, cfg, href, dom.Pointer{X: x, Y: y}, logger)
	if err != nil {
		return err
	}
	printOverlay(cmd.OutOrStdout(), state)
	return nil
}

// signalScheduler reports on fired each time a scheduled callback returns.
type signalScheduler struct {
	fired chan struct{}
}

func newSignalScheduler() *signalScheduler {
	return &signalScheduler{fired: make(chan struct{}, 1)}
}

// AfterFunc implements preview.Scheduler.
func (s *signalScheduler) AfterFunc(d time.Duration, f func()) preview.Timer {
	return time.AfterFunc(d, func() {
		f()
		select {
		case s.fired <- struct{}{}:
		default:
		}
	})
}

// runPreview hovers the anchor and returns the overlay once the preview
// has settled.
func runPreview(ctx context.Context, cfg *config.Config, href string, p dom.Pointer, logger *slog.Logger) (preview.OverlayState, error) {
	client, err := newHTTPClient(cfg)
	if err != nil {
		return preview.OverlayState{}, err
	}

	doc, err := loadDocument(ctx, client, cfg, cfg.Targets[0])
	if err != nil {
		return preview.OverlayState{}, err
	}

	loader := newPreviewLoader(cfg, client)

	bus := newBus(cfg, client, originOf(doc.PageURL()), logger)
	store, closeStore := openStore(cfg, logger)
	defer closeStore()

	opts, err := contentOptions(cfg, store, loader, logger)
	if err != nil {
		return preview.OverlayState{}, err
	}
	sched := newSignalScheduler()
	opts.Scheduler = sched

	c, err := content.Activate(ctx, doc, bus, opts)
	if err != nil {
		return preview.OverlayState{}, err
	}
	defer c.Stop()

	if _, err := bus.SendToggle(ctx, channel.ActionTogglePreview, true); err != nil {
		return preview.OverlayState{}, fmt.Errorf("failed to enable previews: %w", err)
	}

	el, err := findAnchor(doc, href)
	if err != nil {
		return preview.OverlayState{}, err
	}
	if doc.ListenerCount(el, dom.EventMouseEnter) == 0 {
		return preview.OverlayState{}, fmt.Errorf("%w: %s", errNotPreviewable, href)
	}

	doc.Dispatch(el, dom.EventMouseEnter, p)
	select {
	case <-sched.fired:
	case <-ctx.Done():
		return preview.OverlayState{}, ctx.Err()
	}
	c.Settle()

	state := c.Overlay().State()
	doc.Dispatch(el, dom.EventMouseLeave, p)
	return state, nil
}

// newPreviewLoader returns the render surface selected by the configuration.
// Both surfaces go through the configured proxy.
func newPreviewLoader(cfg *config.Config, client *http.Client) preview.Loader {
	if !cfg.UseChrome {
		return preview.NewHTTPLoader(client, cfg.MaxBodySize)
	}
	return preview.NewChromeLoader(preview.ChromeOptions{
		ExecPath:     cfg.ChromePath,
		UserAgent:    cfg.UserAgent,
		Headers:      cfg.Headers,
		Viewport:     preview.Size{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight},
		ProxyAddress: cfg.ProxyAddress,
		NoSandbox:    os.Geteuid() == 0,
	})
}

// printOverlay prints an overlay snapshot.
func printOverlay(w io.Writer, s preview.OverlayState) {
	if !s.Visible {
		fmt.Fprintln(w, "No preview shown.")
		return
	}

	fmt.Fprintf(w, "Position: %d,%d\n", s.Position.X, s.Position.Y)
	fmt.Fprintf(w, "Size:     %dx%d\n", s.Size.Width, s.Size.Height)
	fmt.Fprintf(w, "Surface:  %s\n", s.SurfaceURL)

	switch {
	case s.Notice != "":
		fmt.Fprintf(w, "Notice:   %s\n", s.Notice)
	case s.Fragment != "":
		fmt.Fprintf(w, "Fragment:\n%s\n", s.Fragment)
	case s.Page != nil:
		fmt.Fprintf(w, "Title:    %s\n", s.Page.Title)
		text := []rune(s.Page.Text)
		if len(text) > previewTextLimit {
			text = append(text[:previewTextLimit], []rune("...")...)
		}
		fmt.Fprintf(w, "Text:     %s\n", string(text))
	}
}
