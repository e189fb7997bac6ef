package annotate

import (
	"golang.org/x/net/html"

	"github.com/nao1215/linklens/internal/dom"
	"github.com/nao1215/linklens/internal/model"
)

// record is the engine's private state for one anchor.
type record struct {
	el *html.Node

	rawHref    string
	target     string
	category   model.Category
	classified bool

	state model.AnchorState

	// generation changes on every state transition; probe results carry
	// the generation that dispatched them.
	generation uint64

	verdict model.Verdict
	probed  bool

	saved *savedVisuals

	// While a preview covers the anchor its title attribute is blanked and
	// the title the anchor should carry is kept here instead.
	titleHidden  bool
	titleBlanked bool
	hiddenTitle  string
	hiddenHad    bool

	bound   bool
	enterID dom.ListenerID
	leaveID dom.ListenerID
}

// originalProperty is a style property as it was before annotation.
type originalProperty struct {
	value     string
	important bool
	present   bool
}

// savedVisuals remembers what the anchor looked like before annotation.
type savedVisuals struct {
	style    string
	hadStyle bool

	properties map[string]originalProperty
	order      []string

	title       string
	hadTitle    bool
	titleSaved  bool
	wroteTitle  string
	wroteStyle  string
	styleExists bool
}

func newSavedVisuals(style string, hadStyle bool) *savedVisuals {
	return &savedVisuals{
		style:      style,
		hadStyle:   hadStyle,
		properties: make(map[string]originalProperty),
	}
}

func (r *record) view() model.AnchorView {
	v := model.AnchorView{
		RawHref:        r.rawHref,
		Target:         r.target,
		Category:       r.category,
		State:          r.state,
		Verdict:        r.verdict,
		Probed:         r.probed,
		BoundListeners: r.bound,
	}
	if !r.probed {
		v.Verdict = model.Indeterminate()
	}
	return v
}
