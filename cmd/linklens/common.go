package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/nao1215/linklens/internal/annotate"
	"github.com/nao1215/linklens/internal/background"
	"github.com/nao1215/linklens/internal/channel"
	"github.com/nao1215/linklens/internal/config"
	"github.com/nao1215/linklens/internal/content"
	"github.com/nao1215/linklens/internal/dom"
	seclog "github.com/nao1215/linklens/internal/log"
	"github.com/nao1215/linklens/internal/preview"
	"github.com/nao1215/linklens/internal/probe"
	"github.com/nao1215/linklens/internal/settings"
)

// addPageFlags registers the flags shared by commands that open a page.
func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().String("base", "",
		"Page URL used to resolve relative links (required for local files)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .linklens in current or home directory)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultProbeStepTimeout,
		"Timeout for each probe step")
	cmd.Flags().StringP("proxy", "x", "",
		"SOCKS5 proxy address for link checks and previews (host:port)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header for link checks and previews")
	cmd.Flags().String("lang", config.DefaultLanguage,
		"Tooltip and notice language (en, ja)")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the settings database")
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildPageConfig creates a Config from the shared page flags and the
// configuration file. Flags explicitly set on the command line win over
// the file.
func buildPageConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Targets = args
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}

	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	case explicitConfigPath:
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	flags := cmd.Flags()
	if cfg.BaseURL, err = flags.GetString("base"); err != nil {
		return nil, err
	}
	if flags.Changed("timeout") {
		if cfg.ProbeStepTimeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("lang") {
		if cfg.Language, err = flags.GetString("lang"); err != nil {
			return nil, err
		}
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setupLogger creates the structured logger. Sensitive attributes and URL
// credentials are redacted.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	return seclog.NewSecureLogger(w, verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// newHTTPClient creates the client used for page loads, probes and previews.
func newHTTPClient(cfg *config.Config) (*http.Client, error) {
	return probe.NewHTTPClient(probe.ClientOptions{
		ProxyAddress: cfg.ProxyAddress,
		UserAgent:    cfg.UserAgent,
		Headers:      cfg.Headers,
	})
}

// isRemote reports whether target is an http(s) URL.
func isRemote(target string) bool {
	u, err := url.Parse(target)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// loadDocument reads the page from a URL or a local file. The page URL is
// the --base value when given, else the final URL of a remote page.
func loadDocument(ctx context.Context, client *http.Client, cfg *config.Config, target string) (*dom.Document, error) {
	var (
		body    []byte
		pageURL = cfg.BaseURL
	)

	if isRemote(target) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("invalid page URL: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("failed to fetch page: status %d", resp.StatusCode)
		}
		if body, err = io.ReadAll(io.LimitReader(resp.Body, cfg.MaxBodySize)); err != nil {
			return nil, fmt.Errorf("failed to read page: %w", err)
		}
		if pageURL == "" {
			pageURL = resp.Request.URL.String()
		}
	} else {
		var err error
		if body, err = os.ReadFile(filepath.Clean(target)); err != nil {
			return nil, fmt.Errorf("failed to read page: %w", err)
		}
	}

	return dom.Parse(bytes.NewReader(body), pageURL)
}

// originOf returns the scheme://host origin of a page URL.
func originOf(pageURL *url.URL) string {
	if pageURL == nil || pageURL.Host == "" {
		return ""
	}
	return pageURL.Scheme + "://" + pageURL.Host
}

// newBus creates the message bus with the background probe service.
func newBus(cfg *config.Config, client *http.Client, origin string, logger *slog.Logger) *channel.Bus {
	chain := probe.NewStandardChain(client, origin, cfg.MaxBodySize,
		probe.WithLogger(logger),
		probe.WithStepTimeout(cfg.ProbeStepTimeout),
	)
	bus := channel.NewBus()
	background.New(chain, logger).Register(bus)
	return bus
}

// openStore opens the persisted settings. When the database cannot be
// opened an in-memory store is used instead.
func openStore(cfg *config.Config, logger *slog.Logger) (settings.Store, func()) {
	db, err := settings.Open(cfg.DBDir, settings.DefaultOptions())
	if err != nil {
		logger.Warn("settings database unavailable, using defaults",
			slog.String("dir", cfg.DBDir),
			slog.String("error", err.Error()),
		)
		return settings.NewMemory(), func() {}
	}
	return db, func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close settings database", slog.String("error", err.Error()))
		}
	}
}

// contentOptions maps the configuration onto activation options.
func contentOptions(cfg *config.Config, store settings.Store, loader preview.Loader, logger *slog.Logger) (content.Options, error) {
	opts := content.Options{
		Store:       store,
		Loader:      loader,
		Language:    cfg.Language,
		Delay:       cfg.DebounceDelay,
		OverlaySize: preview.Size{Width: cfg.PreviewWidth, Height: cfg.PreviewHeight},
		Viewport:    preview.Size{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight},
		Logger:      logger,
	}
	if len(cfg.Theme) > 0 {
		theme, err := annotate.DefaultTheme().WithOverrides(cfg.Theme)
		if err != nil {
			return content.Options{}, fmt.Errorf("invalid theme: %w", err)
		}
		opts.Theme = &theme
	}
	return opts, nil
}

// openOutput returns the file at path, or stdout when path is empty.
func openOutput(stdout io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // user-provided output path
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// errNoAnchor is returned when preview finds no anchor with the given href.
var errNoAnchor = errors.New("no anchor with that href")

// findAnchor returns the first anchor whose href attribute equals href.
func findAnchor(doc *dom.Document, href string) (*html.Node, error) {
	for _, el := range doc.Anchors(doc.Body()) {
		if v, _ := doc.Attr(el, "href"); strings.TrimSpace(v) == href {
			return el, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", errNoAnchor, href)
}
