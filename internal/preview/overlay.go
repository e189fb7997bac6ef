package preview

import (
	"slices"
	"sync"
)

// BlankURL is the neutral surface target.
const BlankURL = "about:blank"

// fragmentURL marks a surface showing an inline fragment.
const fragmentURL = "about:srcdoc"

// OverlayState is a snapshot of the overlay.
type OverlayState struct {
	Visible  bool
	Position Position
	Size     Size

	// SurfaceURL is what the render surface shows: a page URL,
	// "about:srcdoc" for fragments, or "about:blank".
	SurfaceURL string

	// Fragment is the inert HTML shown for same-page anchors.
	Fragment string

	// Page is the loaded page, when a navigation completed.
	Page *Page

	// Notice replaces the content when loading failed or was refused.
	Notice string
}

// Overlay is the single preview surface. It is created once and reused.
type Overlay struct {
	mu    sync.Mutex
	state OverlayState

	// history lists every surface target in order, for diagnostics.
	history []string
}

// NewOverlay creates a hidden overlay of the given size.
func NewOverlay(size Size) *Overlay {
	return &Overlay{state: OverlayState{Size: size, SurfaceURL: BlankURL}}
}

// Size returns the overlay dimensions.
func (o *Overlay) Size() Size {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Size
}

// Show makes the overlay visible at pos.
func (o *Overlay) Show(pos Position) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.Position = pos
	o.state.Visible = true
}

// Hide makes the overlay invisible. Its content is kept.
func (o *Overlay) Hide() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.Visible = false
}

// Reset points the surface at about:blank and drops all content.
func (o *Overlay) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.SurfaceURL = BlankURL
	o.state.Fragment = ""
	o.state.Page = nil
	o.state.Notice = ""
}

// Navigate points the surface at url. Content arrives through SetPage.
func (o *Overlay) Navigate(url string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.SurfaceURL = url
	o.state.Fragment = ""
	o.state.Page = nil
	o.state.Notice = ""
	o.history = append(o.history, url)
}

// RenderFragment shows inert HTML on the surface.
func (o *Overlay) RenderFragment(fragment, label string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.SurfaceURL = fragmentURL
	o.state.Fragment = fragment
	o.state.Page = nil
	o.state.Notice = ""
	o.history = append(o.history, label)
}

// SetPage records a completed navigation.
func (o *Overlay) SetPage(p Page) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.Page = &p
	o.state.Notice = ""
}

// ShowNotice replaces the content with a message.
func (o *Overlay) ShowNotice(msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.Notice = msg
}

// State returns a snapshot.
func (o *Overlay) State() OverlayState {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.state
	if s.Page != nil {
		p := *s.Page
		s.Page = &p
	}
	return s
}

// History returns the surface targets rendered so far.
func (o *Overlay) History() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.history)
}
