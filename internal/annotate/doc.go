// Package annotate applies link classifications to a live document.
//
// Every anchor has a record in a side table keyed by element identity.
// A record moves between three states:
//
//	Unprocessed --highlight on--> Annotated --highlight off--> Cleared
//	     ^                                                       |
//	     +------------------- href/target change ----------------+
//
// Entering Annotated classifies the anchor afresh, applies the category's
// inline style and tooltip, and dispatches a probe for internal and
// external links. A probe verdict that arrives after the anchor left the
// phase that asked for it is discarded. Leaving Annotated restores every
// style property and the tooltip the anchor had before.
//
// While previews are enabled each classified, non-skip anchor carries
// exactly one mouseenter/mouseleave listener pair.
package annotate
