// Package config provides configuration structures and utilities for linklens.
// It defines the probe, preview and report settings, the optional YAML
// configuration file, and the process-wide feature flags that the settings
// panel toggles at runtime.
package config
