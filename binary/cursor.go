package binary

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/wippyai/ion-engine/errors"
)

// cursor is a position over an input buffer. Reads never copy; text and
// byte payloads are returned as sub-slices of the buffer. Running past the
// end surfaces errors.Incomplete so a streaming caller can retry with
// more input.
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) offset() int { return c.pos }

func (c *cursor) remaining() int { return len(c.buf) - c.pos }

func (c *cursor) readByte() (byte, error) {
	if c.pos >= len(c.buf) {
		return 0, errors.Incomplete
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

func (c *cursor) peekByte() (byte, bool) {
	if c.pos >= len(c.buf) {
		return 0, false
	}
	return c.buf[c.pos], true
}

func (c *cursor) readBytes(n int) ([]byte, error) {
	if c.remaining() < n {
		return nil, errors.Incomplete
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) skip(n int) error {
	if c.remaining() < n {
		return errors.Incomplete
	}
	c.pos += n
	return nil
}

// readUint reads an unsigned LEB128 value.
func (c *cursor) readUint() (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := c.readByte()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 70 {
			return 0, errors.New(errors.PhaseDecode, errors.KindOverflow).
				Offset(c.pos).Detail("LEB128 value exceeds 64 bits").Build()
		}
	}
}

// readInt reads a signed LEB128 value.
func (c *cursor) readInt() (int64, error) {
	var result int64
	var shift uint
	for {
		b, err := c.readByte()
		if err != nil {
			return 0, err
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				result |= -1 << shift
			}
			return result, nil
		}
		if shift >= 70 {
			return 0, errors.New(errors.PhaseDecode, errors.KindOverflow).
				Offset(c.pos).Detail("LEB128 value exceeds 64 bits").Build()
		}
	}
}

// readLen reads a uLEB length and bounds-checks it against the remaining
// input.
func (c *cursor) readLen() (int, error) {
	n, err := c.readUint()
	if err != nil {
		return 0, err
	}
	if n > uint64(c.remaining()) {
		return 0, errors.Incomplete
	}
	return int(n), nil
}

func (c *cursor) readFloat() (float64, error) {
	b, err := c.readBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// readText reads a length-prefixed UTF-8 payload.
func (c *cursor) readText() (string, error) {
	n, err := c.readLen()
	if err != nil {
		return "", err
	}
	b, err := c.readBytes(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.New(errors.PhaseDecode, errors.KindInvalidUTF8).
			Offset(c.pos).Detail("text payload is not valid UTF-8").Build()
	}
	return string(b), nil
}

// sub returns an independent cursor over the next n bytes and advances
// past them.
func (c *cursor) sub(n int) (cursor, error) {
	b, err := c.readBytes(n)
	if err != nil {
		return cursor{}, err
	}
	return cursor{buf: b}, nil
}
