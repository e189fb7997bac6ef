package model

import "time"

// LinkEntry is one anchor in a link report.
type LinkEntry struct {
	// Index is the position of the anchor in document order, starting at 1.
	Index int `json:"index"`

	// Href is the raw href attribute.
	Href string `json:"href"`

	// Text is the collapsed text content of the anchor.
	Text string `json:"text"`

	// Category is the link class name (skip, anchor, internal, external).
	Category string `json:"category"`

	// Target is the resolved target ("#id" or absolute URL).
	Target string `json:"target,omitempty"`

	// Verdict is the probe verdict name.
	Verdict string `json:"verdict"`

	// Status is the HTTP status behind the verdict, zero when unknown.
	Status int `json:"status,omitempty"`

	// Title is the tooltip the anchor carries after annotation.
	Title string `json:"title,omitempty"`

	// Style is the inline style attribute after annotation.
	Style string `json:"style,omitempty"`
}

// LinkReport summarises an annotated page.
type LinkReport struct {
	// PageURL is the URL the page was loaded from (or its base URL).
	PageURL string `json:"page_url"`

	// DateChecked is when the report was generated.
	DateChecked time.Time `json:"date_checked"`

	// Links lists every anchor in document order.
	Links []LinkEntry `json:"links"`
}

// NewLinkReport creates an empty report for the page.
func NewLinkReport(pageURL string) *LinkReport {
	return &LinkReport{
		PageURL:     pageURL,
		DateChecked: time.Now(),
		Links:       make([]LinkEntry, 0),
	}
}

// CountCategory returns the number of links with the given category name.
func (r *LinkReport) CountCategory(category string) int {
	n := 0
	for _, l := range r.Links {
		if l.Category == category {
			n++
		}
	}
	return n
}

// Broken returns the links with a broken verdict.
func (r *LinkReport) Broken() []LinkEntry {
	broken := make([]LinkEntry, 0)
	for _, l := range r.Links {
		if l.Verdict == VerdictBroken.String() {
			broken = append(broken, l)
		}
	}
	return broken
}
