// Package dom provides the live, mutable document model that linklens
// annotates.
//
// A Document wraps a golang.org/x/net/html tree and adds the parts of a
// browser DOM the annotator depends on: attribute and inline style access,
// event listeners, and mutation observers whose records are delivered in
// batches by Flush.
//
// All methods are safe for concurrent use. Listener and observer callbacks
// run outside the document lock, so they may call back into the Document.
package dom
