package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".linklens"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .linklens configuration file.
// Every field is optional; zero values leave the flag or default in place.
type File struct {
	Probe    ProbeSection                 `yaml:"probe,omitempty"`
	Preview  PreviewSection               `yaml:"preview,omitempty"`
	Language string                       `yaml:"language,omitempty"`
	Theme    map[string]map[string]string `yaml:"theme,omitempty"`
}

// ProbeSection configures the link prober.
type ProbeSection struct {
	// Timeout bounds each probe step, e.g. "10s".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// UserAgent replaces the default User-Agent header.
	UserAgent string `yaml:"user_agent,omitempty"`

	// Proxy is a SOCKS5 proxy address in "host:port" form.
	Proxy string `yaml:"proxy,omitempty"`

	// Headers are added to every probe and preview request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MaxBodySize limits how many bytes of a body are read.
	MaxBodySize int64 `yaml:"max_body_size,omitempty"`
}

// PreviewSection configures the hover preview.
type PreviewSection struct {
	// Debounce is the hover delay, e.g. "300ms".
	Debounce time.Duration `yaml:"debounce,omitempty"`

	// Viewport is the area the overlay is clamped to.
	Viewport Size `yaml:"viewport,omitempty"`

	// Size is the overlay size.
	Size Size `yaml:"size,omitempty"`

	// Chrome renders previews in headless Chrome.
	Chrome bool `yaml:"chrome,omitempty"`
}

// Size is a width/height pair in CSS pixels.
type Size struct {
	Width  int `yaml:"width,omitempty"`
	Height int `yaml:"height,omitempty"`
}

// LoadConfigFile loads a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	if cf.Probe.Headers == nil {
		cf.Probe.Headers = make(map[string]string)
	}

	return &cf, nil
}

// Apply copies the non-zero values of the file onto cfg.
// Headers are merged, with file values overriding existing keys.
func (cf *File) Apply(cfg *Config) {
	if cf.Probe.Timeout > 0 {
		cfg.ProbeStepTimeout = cf.Probe.Timeout
	}
	if cf.Probe.UserAgent != "" {
		cfg.UserAgent = cf.Probe.UserAgent
	}
	if cf.Probe.Proxy != "" {
		cfg.ProxyAddress = cf.Probe.Proxy
	}
	if cf.Probe.MaxBodySize > 0 {
		cfg.MaxBodySize = cf.Probe.MaxBodySize
	}
	if len(cf.Probe.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		for k, v := range cf.Probe.Headers {
			cfg.Headers[k] = v
		}
	}

	if cf.Preview.Debounce > 0 {
		cfg.DebounceDelay = cf.Preview.Debounce
	}
	if cf.Preview.Viewport.Width > 0 {
		cfg.ViewportWidth = cf.Preview.Viewport.Width
	}
	if cf.Preview.Viewport.Height > 0 {
		cfg.ViewportHeight = cf.Preview.Viewport.Height
	}
	if cf.Preview.Size.Width > 0 {
		cfg.PreviewWidth = cf.Preview.Size.Width
	}
	if cf.Preview.Size.Height > 0 {
		cfg.PreviewHeight = cf.Preview.Size.Height
	}
	if cf.Preview.Chrome {
		cfg.UseChrome = true
	}

	if cf.Language != "" {
		cfg.Language = cf.Language
	}
	if len(cf.Theme) > 0 {
		cfg.Theme = cf.Theme
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .linklens in the current directory
// 3. Look for .linklens in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}
