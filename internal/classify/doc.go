// Package classify decides the navigational category of a hyperlink.
//
// Classification is a pure function of the href, the target attribute and
// the page base URL. It never performs I/O, so the same inputs always give
// the same category.
//
// Hostnames are compared by parsed authority after IDNA normalisation.
// A link such as "https://example.com.evil.com/" is external to a page on
// example.com even though it contains the page hostname as a substring.
package classify
