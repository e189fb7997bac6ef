package dom

import (
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
)

// styleAttr is the inline style attribute name.
const styleAttr = "style"

// Style is an ordered list of inline style declarations.
type Style struct {
	decls []*css.Declaration
}

// ParseStyle parses the value of a style attribute. Declarations that
// follow a syntax error are dropped, the ones before it are kept.
func ParseStyle(text string) Style {
	text = strings.TrimSpace(text)
	if text == "" {
		return Style{}
	}
	// A declaration is only complete once its terminator is seen.
	if !strings.HasSuffix(text, ";") {
		text += ";"
	}

	decls, _ := parser.ParseDeclarations(text)
	s := Style{}
	for _, decl := range decls {
		if decl.Property == "" {
			continue
		}
		s.Set(decl.Property, decl.Value, decl.Important)
	}
	return s
}

// Get returns the value of a property and whether it is set.
func (s *Style) Get(property string) (value string, important, ok bool) {
	if i := s.index(property); i >= 0 {
		return s.decls[i].Value, s.decls[i].Important, true
	}
	return "", false, false
}

// Set sets a property, keeping its position when it already exists.
func (s *Style) Set(property, value string, important bool) {
	property = strings.ToLower(strings.TrimSpace(property))
	if i := s.index(property); i >= 0 {
		s.decls[i].Value = value
		s.decls[i].Important = important
		return
	}
	s.decls = append(s.decls, &css.Declaration{Property: property, Value: value, Important: important})
}

// Remove deletes a property. It is a no-op when the property is not set.
func (s *Style) Remove(property string) {
	i := s.index(property)
	if i < 0 {
		return
	}
	s.decls = append(s.decls[:i], s.decls[i+1:]...)
}

// Len returns the number of declarations.
func (s *Style) Len() int {
	return len(s.decls)
}

// String serializes the declarations as "prop: value; prop: value !important".
func (s *Style) String() string {
	parts := make([]string, 0, len(s.decls))
	for _, decl := range s.decls {
		parts = append(parts, strings.TrimSuffix(decl.String(), ";"))
	}
	return strings.Join(parts, "; ")
}

func (s *Style) index(property string) int {
	property = strings.ToLower(strings.TrimSpace(property))
	for i, decl := range s.decls {
		if decl.Property == property {
			return i
		}
	}
	return -1
}

// StyleProperty returns an inline style property of n.
func (d *Document) StyleProperty(n *html.Node, property string) (value string, important, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	raw, _ := attr(n, styleAttr)
	s := ParseStyle(raw)
	return s.Get(property)
}

// SetStyleProperty sets an inline style property of n.
func (d *Document) SetStyleProperty(n *html.Node, property, value string, important bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	raw, _ := attr(n, styleAttr)
	s := ParseStyle(raw)
	s.Set(property, value, important)
	d.setAttrLocked(n, styleAttr, s.String())
}

// RemoveStyleProperty removes an inline style property of n. The style
// attribute itself is removed once no declaration is left.
func (d *Document) RemoveStyleProperty(n *html.Node, property string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	raw, had := attr(n, styleAttr)
	if !had {
		return
	}
	s := ParseStyle(raw)
	if _, _, ok := s.Get(property); !ok {
		return
	}
	s.Remove(property)
	if s.Len() == 0 {
		d.removeAttrLocked(n, styleAttr)
		return
	}
	d.setAttrLocked(n, styleAttr, s.String())
}
