package model

import "net/url"

// CategoryKind is the navigational class of a link.
type CategoryKind int

const (
	// CategorySkip marks links that are never annotated or probed:
	// script execution, mail, phone, inline data, blob, browser-internal
	// schemes, empty hrefs and malformed URLs.
	CategorySkip CategoryKind = iota

	// CategorySamePageAnchor marks "#id" links pointing into the current document.
	CategorySamePageAnchor

	// CategoryInternal marks links whose parsed hostname equals the page hostname.
	CategoryInternal

	// CategoryExternal marks links to any other hostname.
	CategoryExternal
)

// String returns the lower-case name used in reports and logs.
func (k CategoryKind) String() string {
	switch k {
	case CategorySkip:
		return "skip"
	case CategorySamePageAnchor:
		return "anchor"
	case CategoryInternal:
		return "internal"
	case CategoryExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Category is the tagged classification of a single anchor.
//
// Only the fields relevant to Kind are set: ID for same-page anchors,
// URL for internal and external links.
type Category struct {
	// Kind selects the variant.
	Kind CategoryKind

	// ID is the fragment without the leading '#' (CategorySamePageAnchor).
	ID string

	// URL is the resolved absolute URL (CategoryInternal, CategoryExternal).
	URL *url.URL

	// OpensNewContext is true when the anchor has target="_blank".
	OpensNewContext bool
}

// Skip returns the Skip category.
func Skip() Category {
	return Category{Kind: CategorySkip}
}

// SamePageAnchor returns a same-page anchor category for the given id.
func SamePageAnchor(id string) Category {
	return Category{Kind: CategorySamePageAnchor, ID: id}
}

// Internal returns an internal link category.
func Internal(u *url.URL) Category {
	return Category{Kind: CategoryInternal, URL: u}
}

// External returns an external link category.
func External(u *url.URL) Category {
	return Category{Kind: CategoryExternal, URL: u}
}

// IsSkip reports whether the category is Skip.
func (c Category) IsSkip() bool {
	return c.Kind == CategorySkip
}

// Probeable reports whether a network probe is warranted for the link.
// Only internal and external http(s) URLs are probed.
func (c Category) Probeable() bool {
	if c.Kind != CategoryInternal && c.Kind != CategoryExternal {
		return false
	}
	if c.URL == nil {
		return false
	}
	return c.URL.Scheme == "http" || c.URL.Scheme == "https"
}

// Target returns the string form of what the link points at:
// "#id" for same-page anchors, the resolved URL otherwise.
func (c Category) Target() string {
	switch c.Kind {
	case CategorySamePageAnchor:
		return "#" + c.ID
	case CategoryInternal, CategoryExternal:
		if c.URL != nil {
			return c.URL.String()
		}
	}
	return ""
}

// Equal reports whether two categories describe the same classification.
func (c Category) Equal(other Category) bool {
	return c.Kind == other.Kind &&
		c.ID == other.ID &&
		c.OpensNewContext == other.OpensNewContext &&
		c.Target() == other.Target()
}
