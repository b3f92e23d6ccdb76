package columnar

import (
	"encoding/binary"
	"math"
	"os"

	"github.com/hybriddb/hybriddb/internal/dberr"
)

// ColumnType is the element type of a column's packed array.
type ColumnType byte

const (
	TypeInt64 ColumnType = iota
	TypeFloat64
	TypeString
)

// column is a single dense, typed array plus the disk blob it is
// persisted to.
type column struct {
	typ     ColumnType
	ints    []int64
	floats  []float64
	strings []string
}

func newColumn(typ ColumnType) *column {
	return &column{typ: typ}
}

func (c *column) len() int {
	switch c.typ {
	case TypeInt64:
		return len(c.ints)
	case TypeFloat64:
		return len(c.floats)
	default:
		return len(c.strings)
	}
}

// append coerces value to the column's type, appending its zero value
// when value is nil or of an unexpected type.
func (c *column) append(value any) {
	switch c.typ {
	case TypeInt64:
		c.ints = append(c.ints, toInt64(value))
	case TypeFloat64:
		c.floats = append(c.floats, toFloat64(value))
	default:
		c.strings = append(c.strings, toString(value))
	}
}

func (c *column) at(i int) any {
	switch c.typ {
	case TypeInt64:
		return c.ints[i]
	case TypeFloat64:
		return c.floats[i]
	default:
		return c.strings[i]
	}
}

func toInt64(value any) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func toFloat64(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

func toString(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

// save writes the column to path as a typed blob:
// [type:1][count:4 LE][data...]
func (c *column) save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return dberr.ErrIO.WithCause(err)
	}
	defer f.Close()

	header := make([]byte, 5)
	header[0] = byte(c.typ)
	binary.LittleEndian.PutUint32(header[1:5], uint32(c.len()))
	if _, err := f.Write(header); err != nil {
		return dberr.ErrIO.WithCause(err)
	}

	switch c.typ {
	case TypeInt64:
		buf := make([]byte, 8*len(c.ints))
		for i, v := range c.ints {
			binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
		}
		_, err = f.Write(buf)
	case TypeFloat64:
		buf := make([]byte, 8*len(c.floats))
		for i, v := range c.floats {
			binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
		}
		_, err = f.Write(buf)
	default:
		for _, s := range c.strings {
			lenBuf := make([]byte, 4)
			binary.LittleEndian.PutUint32(lenBuf, uint32(len(s)))
			if _, werr := f.Write(lenBuf); werr != nil {
				return dberr.ErrIO.WithCause(werr)
			}
			if _, werr := f.Write([]byte(s)); werr != nil {
				return dberr.ErrIO.WithCause(werr)
			}
		}
	}
	if err != nil {
		return dberr.ErrIO.WithCause(err)
	}
	return nil
}

func loadColumn(path string) (*column, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dberr.ErrIO.WithCause(err)
	}
	if len(data) < 5 {
		return nil, dberr.ErrTruncatedRecord.WithDetails("column blob header")
	}

	typ := ColumnType(data[0])
	count := binary.LittleEndian.Uint32(data[1:5])
	c := newColumn(typ)
	body := data[5:]

	switch typ {
	case TypeInt64:
		c.ints = make([]int64, count)
		for i := range c.ints {
			c.ints[i] = int64(binary.LittleEndian.Uint64(body[i*8:]))
		}
	case TypeFloat64:
		c.floats = make([]float64, count)
		for i := range c.floats {
			c.floats[i] = math.Float64frombits(binary.LittleEndian.Uint64(body[i*8:]))
		}
	default:
		c.strings = make([]string, count)
		offset := 0
		for i := range c.strings {
			if offset+4 > len(body) {
				return nil, dberr.ErrTruncatedRecord.WithDetails("column string entry")
			}
			l := binary.LittleEndian.Uint32(body[offset : offset+4])
			offset += 4
			c.strings[i] = string(body[offset : offset+int(l)])
			offset += int(l)
		}
	}
	return c, nil
}
