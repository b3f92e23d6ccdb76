// Package block implements the append-only block-framed file format that
// backs the row-tier append engine.
//
// A database file opens with a fixed-length header (magic + format
// version), immediately followed by one META block. Everything after
// that is a sequence of 16-byte-framed DATA or TLOG blocks, appended in
// write order and never rewritten in place except for the META block,
// which is the single known offset FileManager will overwrite on close.
package block
