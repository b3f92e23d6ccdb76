// Package db hosts the Database handle: the single entry point that
// owns one row-tier rowengine.RowEngine plus optional columnar and
// vector stores, opened and closed together from one Config.
package db
