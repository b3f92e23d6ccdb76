// Package appendengine implements the row-tier storage contract on top of
// an append-only database file: every insert and update appends a new
// DATA block, the container's offset list records insertion order, and a
// per-container set of secondary B-tree indexes resolves logical ids to
// offsets.
//
// Rollback does not undo DATA blocks already written — only the pending
// transaction log is discarded, a documented limitation carried from the
// engine this package replaces.
package appendengine
