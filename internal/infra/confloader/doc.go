// Package confloader provides configuration loading mechanism.
//
// This package implements a flexible configuration loader that supports
// multiple sources and formats using koanf as the underlying library.
//
// Features:
//
//   - Multiple Sources: files, environment variables, maps
//   - Type Safety: unmarshaling into typed structs
//   - Defaults: default value support for missing keys
//
// Priority (highest to lowest):
//
//  1. Environment variables
//  2. Configuration file
//  3. Default values
package confloader
