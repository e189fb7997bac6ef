package classify

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"

	"github.com/nao1215/linklens/internal/model"
)

// skipSchemes lists URL schemes that are never annotated or probed.
// They either execute code, hand off to another application, or point into
// browser internals where a reachability probe is meaningless.
var skipSchemes = map[string]bool{
	"javascript":       true,
	"mailto":           true,
	"tel":              true,
	"sms":              true,
	"data":             true,
	"blob":             true,
	"about":            true,
	"chrome":           true,
	"chrome-extension": true,
	"moz-extension":    true,
	"edge":             true,
	"view-source":      true,
}

// targetNewContext is the target attribute value that opens a new browsing context.
const targetNewContext = "_blank"

// Classify returns the category of the link href found on a page whose
// base URL is base. target is the anchor's target attribute, empty if absent.
//
// A nil base means the page has no usable origin; relative links are then
// Skip because they cannot be resolved.
func Classify(href, target string, base *url.URL) model.Category {
	cat := classifyHref(strings.TrimSpace(href), base)
	if !cat.IsSkip() && strings.EqualFold(strings.TrimSpace(target), targetNewContext) {
		cat.OpensNewContext = true
	}
	return cat
}

func classifyHref(href string, base *url.URL) model.Category {
	if href == "" {
		return model.Skip()
	}

	if SkipScheme(href) {
		return model.Skip()
	}

	if strings.HasPrefix(href, "#") {
		id := href[1:]
		if id == "" {
			return model.Skip()
		}
		if unescaped, err := url.PathUnescape(id); err == nil {
			id = unescaped
		}
		return model.SamePageAnchor(id)
	}

	ref, err := url.Parse(href)
	if err != nil {
		return model.Skip()
	}

	resolved := ref
	if base != nil {
		resolved = base.ResolveReference(ref)
	}
	if !resolved.IsAbs() || resolved.Hostname() == "" {
		return model.Skip()
	}

	if base != nil && SameHost(resolved.Hostname(), base.Hostname()) {
		return model.Internal(resolved)
	}
	return model.External(resolved)
}

// SkipScheme reports whether href starts with a scheme from the skip list.
// The comparison is case-insensitive and tolerates surrounding whitespace.
func SkipScheme(href string) bool {
	scheme, ok := schemeOf(strings.TrimSpace(href))
	if !ok {
		return false
	}
	return skipSchemes[strings.ToLower(scheme)]
}

// schemeOf extracts the RFC 3986 scheme prefix of s, if any.
func schemeOf(s string) (string, bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' || c == '+' || c == '-' || c == '.':
			if i == 0 {
				return "", false
			}
		case c == ':':
			if i == 0 {
				return "", false
			}
			return s[:i], true
		default:
			return "", false
		}
	}
	return "", false
}

// SameHost reports whether two hostnames name the same host.
// Both are normalised to their ASCII (punycode) form, lower-cased and
// stripped of a trailing dot before an exact comparison.
func SameHost(a, b string) bool {
	na, nb := NormalizeHost(a), NormalizeHost(b)
	return na != "" && na == nb
}

// NormalizeHost returns the canonical comparison form of a hostname.
// Hosts that IDNA rejects fall back to plain lower-casing.
func NormalizeHost(host string) string {
	host = strings.TrimSuffix(strings.TrimSpace(host), ".")
	if host == "" {
		return ""
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	return strings.ToLower(host)
}
