package block

import (
	"encoding/binary"
	"os"

	"github.com/hybriddb/hybriddb/internal/dberr"
)

const (
	// Magic identifies a hybriddb row-tier database file.
	Magic = "PHDB"

	// FormatVersion is the current on-disk format version.
	FormatVersion uint32 = 1

	// HeaderLen is the fixed-length file header: magic(4) + version(4).
	HeaderLen = 8

	// MetaSlotSize is the fixed space reserved for the META block
	// directly after the file header. The META block is the only block
	// rewritten in place (on close), so its slot must be large enough to
	// hold the container directory and index catalog for the life of the
	// file; outgrowing it is a hard error rather than silently
	// corrupting the first DATA block that follows.
	MetaSlotSize = 64 * 1024
)

// FileManager owns a single row-tier database file: header validation,
// block append, block read-at-offset, and the one sanctioned in-place
// rewrite (the META slot).
type FileManager struct {
	f *os.File
}

// Open opens path, creating and initializing it with a fresh header and
// an empty META slot if it does not exist.
func Open(path string) (*FileManager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, dberr.ErrIO.WithCause(err)
	}

	fm := &FileManager{f: f}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, dberr.ErrIO.WithCause(err)
	}

	if info.Size() == 0 {
		if err := fm.initialize(); err != nil {
			f.Close()
			return nil, err
		}
		return fm, nil
	}

	if err := fm.validateHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return fm, nil
}

func (fm *FileManager) initialize() error {
	header := make([]byte, HeaderLen)
	copy(header[0:4], Magic)
	binary.LittleEndian.PutUint32(header[4:8], FormatVersion)

	if _, err := fm.f.WriteAt(header, 0); err != nil {
		return dberr.ErrIO.WithCause(err)
	}

	emptyMeta := make([]byte, MetaSlotSize)
	if _, err := fm.f.WriteAt(emptyMeta, HeaderLen); err != nil {
		return dberr.ErrIO.WithCause(err)
	}
	return nil
}

func (fm *FileManager) validateHeader() error {
	header := make([]byte, HeaderLen)
	if _, err := fm.f.ReadAt(header, 0); err != nil {
		return dberr.ErrIO.WithCause(err)
	}
	if string(header[0:4]) != Magic {
		return dberr.ErrBadMagic
	}
	return nil
}

// MetaOffset is the fixed file offset at which the META block lives.
func (fm *FileManager) MetaOffset() int64 {
	return HeaderLen
}

// DataStartOffset is the first offset at which append-only blocks may be
// written.
func (fm *FileManager) DataStartOffset() int64 {
	return HeaderLen + MetaSlotSize
}

// AppendBlock frames payload as a block of type t and appends it to the
// end of the file, returning the offset it was written at.
func (fm *FileManager) AppendBlock(t Type, payload []byte) (int64, error) {
	size, err := fm.Size()
	if err != nil {
		return 0, err
	}
	if size < fm.DataStartOffset() {
		size = fm.DataStartOffset()
	}

	framed := encode(t, payload)
	if _, err := fm.f.WriteAt(framed, size); err != nil {
		return 0, dberr.ErrIO.WithCause(err)
	}
	return size, nil
}

// WriteMeta overwrites the META block in place. It is the only
// sanctioned non-append write.
func (fm *FileManager) WriteMeta(payload []byte) error {
	framed := encode(TypeMeta, payload)
	if len(framed) > MetaSlotSize {
		return dberr.ErrFull.WithDetails("metadata exceeds reserved META slot")
	}
	if _, err := fm.f.WriteAt(framed, fm.MetaOffset()); err != nil {
		return dberr.ErrIO.WithCause(err)
	}
	return nil
}

// ReadBlock reads the block at offset, validating its checksum.
func (fm *FileManager) ReadBlock(offset int64) (Type, []byte, error) {
	header := make([]byte, HeaderSize)
	if _, err := fm.f.ReadAt(header, offset); err != nil {
		return "", nil, dberr.ErrIO.WithCause(err)
	}

	t, length, wantChecksum, err := decodeHeader(header)
	if err != nil {
		return "", nil, err
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := fm.f.ReadAt(payload, offset+HeaderSize); err != nil {
			return "", nil, dberr.ErrIO.WithCause(err)
		}
	}

	if checksum(payload) != wantChecksum {
		return "", nil, dberr.ErrChecksumMismatch
	}

	return t, payload, nil
}

// ReadMeta reads the META block from its fixed slot. It returns
// dberr.ErrRecordNotFound if the slot has never been written (all zero).
func (fm *FileManager) ReadMeta() ([]byte, error) {
	header := make([]byte, HeaderSize)
	if _, err := fm.f.ReadAt(header, fm.MetaOffset()); err != nil {
		return nil, dberr.ErrIO.WithCause(err)
	}
	if isZero(header[0:4]) {
		return nil, dberr.ErrRecordNotFound.WithDetails("meta slot is empty")
	}

	t, payload, err := fm.ReadBlock(fm.MetaOffset())
	if err != nil {
		return nil, err
	}
	if t != TypeMeta {
		return nil, dberr.ErrUnknownBlockType.WithDetails(string(t))
	}
	return payload, nil
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// Size returns the current file size in bytes.
func (fm *FileManager) Size() (int64, error) {
	info, err := fm.f.Stat()
	if err != nil {
		return 0, dberr.ErrIO.WithCause(err)
	}
	return info.Size(), nil
}

// Close closes the underlying file.
func (fm *FileManager) Close() error {
	return fm.f.Close()
}
