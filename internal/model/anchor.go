package model

// AnchorState is the per-anchor annotation state.
type AnchorState int

const (
	// StateUnprocessed is the state of a freshly discovered anchor, or of an
	// anchor whose href/target changed and needs to be classified again.
	StateUnprocessed AnchorState = iota

	// StateAnnotated means visual state was applied in the current enabled phase.
	StateAnnotated

	// StateCleared means visual state was reverted after highlighting was disabled.
	StateCleared
)

// String returns the lower-case state name.
func (s AnchorState) String() string {
	switch s {
	case StateUnprocessed:
		return "unprocessed"
	case StateAnnotated:
		return "annotated"
	case StateCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// AnchorView is a read-only snapshot of an anchor record, used by reports
// and tests. It is detached from the live record.
type AnchorView struct {
	// RawHref is the href attribute as it was classified.
	RawHref string

	// Target is the target attribute, empty when absent.
	Target string

	// Category is the classification.
	Category Category

	// State is the annotation state.
	State AnchorState

	// Verdict is the last probe verdict applied, Indeterminate when none.
	Verdict Verdict

	// Probed is true once a probe verdict has been received in the current phase.
	Probed bool

	// BoundListeners is true when the hover listener pair is installed.
	BoundListeners bool
}
