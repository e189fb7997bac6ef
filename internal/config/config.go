package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultProbeStepTimeout bounds each step of the probe chain.
	// Three steps put the worst case for a single link at about 30 seconds,
	// which keeps one unreachable host from stalling its anchor forever.
	DefaultProbeStepTimeout = 10 * time.Second

	// DefaultDebounceDelay is how long the pointer must rest on a link before
	// the preview opens. 300ms filters out pointer sweeps across a page.
	DefaultDebounceDelay = 300 * time.Millisecond

	// DefaultViewportWidth and DefaultViewportHeight describe the viewport used
	// to clamp the preview overlay when the host does not report one.
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 800

	// DefaultPreviewWidth and DefaultPreviewHeight are the overlay dimensions.
	DefaultPreviewWidth  = 640
	DefaultPreviewHeight = 480

	// DefaultMaxBodySize limits how much of a response body the prober drains
	// and the preview loader reads.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultUserAgent identifies linklens in probe and preview requests.
	DefaultUserAgent = "linklens/1.0 (+https://github.com/nao1215/linklens)"

	// DefaultLanguage selects the tooltip and notice catalogue.
	DefaultLanguage = "en"

	// AppName is the application name used for XDG directory paths.
	AppName = "linklens"
)

// Config holds all configuration options for linklens.
// It is populated from CLI flags and the optional configuration file and
// passed down explicitly; nothing reads it from global state.
type Config struct {
	// Targets holds the page URLs or file paths given on the command line.
	Targets []string

	// BaseURL overrides the document URL used to resolve relative links.
	// Required when the page is read from a local file.
	BaseURL string

	// ProbeStepTimeout bounds every step of the probe chain.
	ProbeStepTimeout time.Duration

	// UserAgent is sent with probe and preview requests.
	UserAgent string

	// ProxyAddress routes probe and preview traffic through a SOCKS5 proxy
	// ("host:port"). Empty means direct connections.
	ProxyAddress string

	// Headers are extra HTTP headers added to probe and preview requests.
	Headers map[string]string

	// MaxBodySize limits response bodies read by the prober and the loader.
	MaxBodySize int64

	// DebounceDelay is the hover delay before the preview opens.
	DebounceDelay time.Duration

	// ViewportWidth and ViewportHeight bound the preview overlay placement.
	ViewportWidth  int
	ViewportHeight int

	// PreviewWidth and PreviewHeight are the overlay dimensions.
	PreviewWidth  int
	PreviewHeight int

	// Language selects the message catalogue for tooltips and notices.
	Language string

	// Theme overrides the inline style declarations applied per category.
	// Keys are theme slots (anchor_found, anchor_missing, internal, external,
	// broken, new_context); values map CSS properties to values.
	Theme map[string]map[string]string

	// UseChrome renders previews in headless Chrome instead of plain HTTP.
	UseChrome bool

	// ChromePath points at the Chrome binary; empty means auto-detect.
	ChromePath string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .linklens is searched in the current and home directories.
	ConfigFilePath string

	// DBDir is the directory holding the settings database.
	DBDir string

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile redirects the report to a file instead of stdout.
	ReportFile string

	// HTMLOut writes the annotated document to this path when set.
	HTMLOut string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ProbeStepTimeout: DefaultProbeStepTimeout,
		UserAgent:        DefaultUserAgent,
		Headers:          make(map[string]string),
		MaxBodySize:      DefaultMaxBodySize,
		DebounceDelay:    DefaultDebounceDelay,
		ViewportWidth:    DefaultViewportWidth,
		ViewportHeight:   DefaultViewportHeight,
		PreviewWidth:     DefaultPreviewWidth,
		PreviewHeight:    DefaultPreviewHeight,
		Language:         DefaultLanguage,
		DBDir:            XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for linklens.
// On Linux: ~/.local/share/linklens
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for linklens.
// On Linux: ~/.config/linklens
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors in errors.go.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.ProbeStepTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.DebounceDelay < 0 {
		return ErrInvalidDebounce
	}

	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		return ErrInvalidViewport
	}

	if c.PreviewWidth <= 0 || c.PreviewHeight <= 0 {
		return ErrInvalidPreviewSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
