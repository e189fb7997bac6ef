package config

import "sync"

// Settings store keys. The defaults for both are false.
const (
	KeyHighlightEnabled = "highlightEnabled"
	KeyPreviewEnabled   = "previewEnabled"
)

// Features is the process-wide feature configuration of a content context:
// whether links are highlighted and whether hover previews are shown.
//
// It is loaded once when the content context activates and then changed only
// through the setters, which the toggle message handler calls. Features never
// writes back to the settings store; persisting is the settings panel's job.
type Features struct {
	mu        sync.RWMutex
	highlight bool
	preview   bool
}

// NewFeatures creates a Features value with the given initial flags.
func NewFeatures(highlight, preview bool) *Features {
	return &Features{highlight: highlight, preview: preview}
}

// Highlight reports whether link highlighting is enabled.
func (f *Features) Highlight() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.highlight
}

// Preview reports whether hover previews are enabled.
func (f *Features) Preview() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.preview
}

// SetHighlight updates the highlighting flag and reports whether it changed.
func (f *Features) SetHighlight(enabled bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	changed := f.highlight != enabled
	f.highlight = enabled
	return changed
}

// SetPreview updates the preview flag and reports whether it changed.
func (f *Features) SetPreview(enabled bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	changed := f.preview != enabled
	f.preview = enabled
	return changed
}
