// Package channel is the message bus between the linklens execution
// contexts.
//
// The content context (which owns the page) talks to the background context
// (which owns network access) and receives toggle messages from the settings
// panel. Messages cross the boundary JSON-encoded, so both sides agree only
// on the wire format and never share memory.
package channel
