package block

import (
	"encoding/binary"

	"github.com/hybriddb/hybriddb/internal/dberr"
)

// Type is a block type tag. Every tag is exactly four ASCII bytes.
type Type string

const (
	TypeMeta Type = "META"
	TypeData Type = "DATA"
	TypeTLog Type = "TLOG"

	// HeaderSize is the size in bytes of a block's framing header.
	HeaderSize = 16
)

func validType(t Type) bool {
	switch t {
	case TypeMeta, TypeData, TypeTLog:
		return true
	default:
		return false
	}
}

// checksum computes the sum of payload bytes modulo 2^32, little-endian
// as specified by the on-disk block format.
func checksum(payload []byte) uint32 {
	var sum uint32
	for _, b := range payload {
		sum += uint32(b)
	}
	return sum
}

// encode frames payload with the 16-byte block header:
// type(4) | length(4 LE) | checksum(4 LE) | reserved(4, zero).
func encode(t Type, payload []byte) []byte {
	out := make([]byte, HeaderSize+len(payload))
	copy(out[0:4], []byte(t))
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(payload)))
	binary.LittleEndian.PutUint32(out[8:12], checksum(payload))
	// out[12:16] reserved, left zero.
	copy(out[HeaderSize:], payload)
	return out
}

// decodeHeader parses a 16-byte header, returning its type tag and
// declared payload length. It does not validate the checksum, since the
// payload has not been read yet.
func decodeHeader(header []byte) (Type, uint32, uint32, error) {
	if len(header) != HeaderSize {
		return "", 0, 0, dberr.ErrTruncatedRecord.WithDetails("short block header")
	}

	t := Type(header[0:4])
	if !validType(t) {
		return "", 0, 0, dberr.ErrUnknownBlockType.WithDetails(string(header[0:4]))
	}

	length := binary.LittleEndian.Uint32(header[4:8])
	wantChecksum := binary.LittleEndian.Uint32(header[8:12])
	return t, length, wantChecksum, nil
}
