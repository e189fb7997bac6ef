package channel

// Action names a message kind.
type Action string

const (
	// ActionCheckLink asks the background context to probe a URL.
	ActionCheckLink Action = "checkLink"

	// ActionToggleHighlight switches link highlighting on or off.
	ActionToggleHighlight Action = "toggleHighlight"

	// ActionTogglePreview switches hover previews on or off.
	ActionTogglePreview Action = "togglePreview"
)

// Message is a request sent over the bus.
type Message struct {
	Action Action `json:"action"`

	// URL is set for ActionCheckLink.
	URL string `json:"url,omitempty"`

	// Enabled is set for the toggle actions.
	Enabled *bool `json:"enabled,omitempty"`
}

// CheckLink builds a probe request.
func CheckLink(url string) Message {
	return Message{Action: ActionCheckLink, URL: url}
}

// Toggle builds a toggle request.
func Toggle(action Action, enabled bool) Message {
	return Message{Action: action, Enabled: &enabled}
}

// LinkStatus is the response to ActionCheckLink.
type LinkStatus struct {
	Status int  `json:"status"`
	OK     bool `json:"ok"`
}

// Ack is the response to the toggle actions.
type Ack struct {
	Success bool `json:"success"`
}
