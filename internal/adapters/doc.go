// Package adapters provides the two document-model façades built on
// top of a rowengine.RowEngine: Table, a schema-checked tabular view
// with auto-increment ids, and Collection, a schemaless document store
// with MongoDB-style update operators.
//
// Both façades are thin: they hold no storage of their own and delegate
// every read and write to the underlying RowEngine, adding only
// validation, id assignment and where-clause matching.
package adapters
