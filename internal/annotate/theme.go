package annotate

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownTreatment is returned for theme overrides naming no treatment.
var ErrUnknownTreatment = errors.New("unknown theme treatment")

// Declaration is one inline style property.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Treatment is the ordered list of declarations applied for one situation.
type Treatment []Declaration

// Theme holds the visual treatment per link situation.
type Theme struct {
	Internal       Treatment
	External       Treatment
	AnchorFound    Treatment
	AnchorMissing  Treatment
	Broken         Treatment
	BrokenInternal Treatment
	NewContext     Treatment
}

func important(property, value string) Declaration {
	return Declaration{Property: property, Value: value, Important: true}
}

// DefaultTheme returns the built-in colours.
func DefaultTheme() Theme {
	return Theme{
		Internal: Treatment{
			important("background-color", "lightgreen"),
			important("color", "black"),
			important("outline", "2px solid green"),
		},
		External: Treatment{
			important("background-color", "pink"),
			important("color", "black"),
		},
		AnchorFound: Treatment{
			important("background-color", "#ADD8E6"),
			important("color", "black"),
		},
		AnchorMissing: Treatment{
			important("background-color", "#D3D3D3"),
			important("color", "white"),
		},
		Broken: Treatment{
			important("background-color", "#8B4513"),
			important("color", "white"),
		},
		BrokenInternal: Treatment{
			important("outline", "none"),
		},
		NewContext: Treatment{
			important("outline", "5px solid red"),
		},
	}
}

// treatment returns a pointer to the named treatment.
func (t *Theme) treatment(name string) (*Treatment, bool) {
	switch strings.ToLower(strings.ReplaceAll(name, "-", "_")) {
	case "internal":
		return &t.Internal, true
	case "external":
		return &t.External, true
	case "anchor_found":
		return &t.AnchorFound, true
	case "anchor_missing":
		return &t.AnchorMissing, true
	case "broken":
		return &t.Broken, true
	case "broken_internal":
		return &t.BrokenInternal, true
	case "new_context":
		return &t.NewContext, true
	default:
		return nil, false
	}
}

// WithOverrides returns a copy of t with property values replaced or added.
// overrides maps a treatment name (internal, external, anchor_found,
// anchor_missing, broken, broken_internal, new_context) to property values.
// Existing properties keep their position; new ones are appended in name order.
func (t Theme) WithOverrides(overrides map[string]map[string]string) (Theme, error) {
	out := t.clone()
	for name, props := range overrides {
		tr, ok := out.treatment(name)
		if !ok {
			return Theme{}, fmt.Errorf("%w: %q", ErrUnknownTreatment, name)
		}

		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		for _, k := range keys {
			prop := strings.ToLower(strings.TrimSpace(k))
			value := strings.TrimSpace(props[k])
			idx := slices.IndexFunc(*tr, func(d Declaration) bool { return d.Property == prop })
			if idx >= 0 {
				(*tr)[idx].Value = value
				continue
			}
			*tr = append(*tr, important(prop, value))
		}
	}
	return out, nil
}

func (t Theme) clone() Theme {
	return Theme{
		Internal:       slices.Clone(t.Internal),
		External:       slices.Clone(t.External),
		AnchorFound:    slices.Clone(t.AnchorFound),
		AnchorMissing:  slices.Clone(t.AnchorMissing),
		Broken:         slices.Clone(t.Broken),
		BrokenInternal: slices.Clone(t.BrokenInternal),
		NewContext:     slices.Clone(t.NewContext),
	}
}
