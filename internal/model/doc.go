// Package model defines the data shared by the annotator, the prober and
// the report writers.
//
//   - Category: the navigational class of one anchor
//   - Verdict: the outcome of probing a URL
//   - AnchorView: what the engine knows about one anchor
//   - LinkReport: the per-page summary written by the report package
//
// The types carry no behaviour beyond small helpers so that classify,
// probe, annotate and report can share them without import cycles.
package model
