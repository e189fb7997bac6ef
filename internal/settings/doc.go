// Package settings persists the two feature flags that the settings panel
// edits: highlightEnabled and previewEnabled.
//
// Values are stored as JSON in a key-value table of a SQLite database
// (via modernc.org/sqlite, CGO-free). A missing key reads as false.
// Memory is an in-process store with the same behavior for tests and for
// one-shot commands that should not touch the user's data directory.
package settings
