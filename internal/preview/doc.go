// Package preview shows a floating preview of a link target while the
// pointer rests on an anchor.
//
// There is exactly one overlay and at most one session. Entering a new
// anchor always cancels the previous session; leaving the session's anchor
// hides the overlay and resets its surface at once, without waiting for a
// navigation in flight.
package preview
