package model

import "fmt"

// VerdictKind is the tri-state outcome of probing a URL.
type VerdictKind int

const (
	// VerdictIndeterminate means no step could tell whether the link works.
	// Network failures, opaque responses and status 0 all end up here.
	VerdictIndeterminate VerdictKind = iota

	// VerdictReachable means a status in [200,400) was observed.
	VerdictReachable

	// VerdictBroken means a status in [400,600) was observed by a step
	// that can read the real status code.
	VerdictBroken
)

// String returns the lower-case verdict name.
func (k VerdictKind) String() string {
	switch k {
	case VerdictIndeterminate:
		return "indeterminate"
	case VerdictReachable:
		return "reachable"
	case VerdictBroken:
		return "broken"
	default:
		return "unknown"
	}
}

// Verdict is the result of a link probe. Status is zero for Indeterminate.
type Verdict struct {
	Kind   VerdictKind
	Status int
}

// Indeterminate returns the Indeterminate verdict.
func Indeterminate() Verdict {
	return Verdict{Kind: VerdictIndeterminate}
}

// Reachable returns a Reachable verdict carrying the observed status.
func Reachable(status int) Verdict {
	return Verdict{Kind: VerdictReachable, Status: status}
}

// Broken returns a Broken verdict carrying the observed status.
func Broken(status int) Verdict {
	return Verdict{Kind: VerdictBroken, Status: status}
}

// IsBroken reports whether the verdict is Broken.
func (v Verdict) IsBroken() bool {
	return v.Kind == VerdictBroken
}

// String formats the verdict as "broken(404)", "reachable(200)" or "indeterminate".
func (v Verdict) String() string {
	if v.Kind == VerdictIndeterminate {
		return v.Kind.String()
	}
	return fmt.Sprintf("%s(%d)", v.Kind, v.Status)
}

// IsOKStatus reports whether an HTTP status counts as success (2xx and 3xx).
func IsOKStatus(status int) bool {
	return status >= 200 && status < 400
}

// IsErrorStatus reports whether an HTTP status counts as a broken link (4xx and 5xx).
func IsErrorStatus(status int) bool {
	return status >= 400 && status < 600
}
