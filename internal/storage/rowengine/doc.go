// Package rowengine defines the row-tier storage contract shared by the
// append-only and LSM engines, so a Database or adapter can be written
// against one interface regardless of which engine backs a given
// container.
package rowengine
