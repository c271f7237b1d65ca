package binary

import (
	"time"

	"github.com/wippyai/ion-engine/errors"
	"github.com/wippyai/ion-engine/ion"
	"github.com/wippyai/ion-engine/raw"
)

// value is one complete value expression in the buffer, starting at its
// opcode (an annotations wrapper when present). It decodes nothing until
// asked.
type value struct {
	span []byte
	off  int
}

var _ raw.Value = (*value)(nil)

// body returns a cursor past any annotations wrapper, positioned at the
// wrapped value's opcode.
func (v *value) body() (cursor, error) {
	c := cursor{buf: v.span}
	op, ok := c.peekByte()
	if !ok {
		return cursor{}, errors.Incomplete
	}
	if op != opAnnotations {
		return c, nil
	}
	c.pos++
	count, err := c.readUint()
	if err != nil {
		return cursor{}, err
	}
	for i := uint64(0); i < count; i++ {
		if _, err := readAnnotationToken(&c); err != nil {
			return cursor{}, err
		}
	}
	return c, nil
}

func readAnnotationToken(c *cursor) (ion.SymbolToken, error) {
	tag, err := c.readByte()
	if err != nil {
		return ion.SymbolToken{}, err
	}
	switch tag {
	case 0x00:
		sid, err := c.readUint()
		if err != nil {
			return ion.SymbolToken{}, err
		}
		return ion.SymbolID(uint32(sid)), nil
	case 0x01:
		text, err := c.readText()
		if err != nil {
			return ion.SymbolToken{}, err
		}
		return ion.SymbolText(text), nil
	}
	return ion.SymbolToken{}, errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Offset(c.pos).Detail("invalid annotation token tag 0x%02x", tag).Build()
}

func (v *value) Type() ion.Type {
	c, err := v.body()
	if err != nil {
		return ion.NoType
	}
	op, ok := c.peekByte()
	if !ok {
		return ion.NoType
	}
	switch op {
	case opNullNull:
		return ion.Null
	case opNullTyped:
		if c.pos+1 < len(c.buf) {
			return ion.Type(c.buf[c.pos+1])
		}
		return ion.Null
	case opBool:
		return ion.Bool
	case opInt:
		return ion.Int
	case opFloat:
		return ion.Float
	case opDecimal:
		return ion.Decimal
	case opTimestamp:
		return ion.Timestamp
	case opString:
		return ion.String
	case opSymbolID, opSymbolTxt:
		return ion.Symbol
	case opBlob:
		return ion.Blob
	case opClob:
		return ion.Clob
	case opList:
		return ion.List
	case opSExp:
		return ion.SExp
	case opStruct:
		return ion.Struct
	}
	return ion.NoType
}

func (v *value) IsNull() bool {
	c, err := v.body()
	if err != nil {
		return false
	}
	op, ok := c.peekByte()
	return ok && (op == opNullNull || op == opNullTyped)
}

func (v *value) Annotations() ([]ion.SymbolToken, error) {
	c := cursor{buf: v.span}
	op, ok := c.peekByte()
	if !ok {
		return nil, errors.Incomplete
	}
	if op != opAnnotations {
		return nil, nil
	}
	c.pos++
	count, err := c.readUint()
	if err != nil {
		return nil, err
	}
	anns := make([]ion.SymbolToken, 0, count)
	for i := uint64(0); i < count; i++ {
		tok, err := readAnnotationToken(&c)
		if err != nil {
			return nil, err
		}
		anns = append(anns, tok)
	}
	return anns, nil
}

func (v *value) ReadScalar() (raw.Scalar, error) {
	c, err := v.body()
	if err != nil {
		return raw.Scalar{}, err
	}
	op, err := c.readByte()
	if err != nil {
		return raw.Scalar{}, err
	}
	switch op {
	case opNullNull:
		return raw.Scalar{Type: ion.Null, NullType: ion.Null}, nil
	case opNullTyped:
		t, err := c.readByte()
		if err != nil {
			return raw.Scalar{}, err
		}
		return raw.Scalar{Type: ion.Null, NullType: ion.Type(t)}, nil
	case opBool:
		b, err := c.readByte()
		if err != nil {
			return raw.Scalar{}, err
		}
		return raw.Scalar{Type: ion.Bool, Bool: b != 0}, nil
	case opInt:
		n, err := c.readInt()
		if err != nil {
			return raw.Scalar{}, err
		}
		return raw.Scalar{Type: ion.Int, Int: n}, nil
	case opFloat:
		f, err := c.readFloat()
		if err != nil {
			return raw.Scalar{}, err
		}
		return raw.Scalar{Type: ion.Float, Float: f}, nil
	case opDecimal:
		coeff, err := c.readInt()
		if err != nil {
			return raw.Scalar{}, err
		}
		exp, err := c.readInt()
		if err != nil {
			return raw.Scalar{}, err
		}
		return raw.Scalar{Type: ion.Decimal, Dec: ion.NewDec(coeff, int32(exp))}, nil
	case opTimestamp:
		ts, err := readTimestamp(&c)
		if err != nil {
			return raw.Scalar{}, err
		}
		return raw.Scalar{Type: ion.Timestamp, Time: ts}, nil
	case opString:
		s, err := c.readText()
		if err != nil {
			return raw.Scalar{}, err
		}
		return raw.Scalar{Type: ion.String, Text: s}, nil
	case opSymbolID:
		sid, err := c.readUint()
		if err != nil {
			return raw.Scalar{}, err
		}
		return raw.Scalar{Type: ion.Symbol, Sym: ion.SymbolID(uint32(sid))}, nil
	case opSymbolTxt:
		s, err := c.readText()
		if err != nil {
			return raw.Scalar{}, err
		}
		return raw.Scalar{Type: ion.Symbol, Sym: ion.SymbolText(s), Text: s}, nil
	case opBlob:
		n, err := c.readLen()
		if err != nil {
			return raw.Scalar{}, err
		}
		b, err := c.readBytes(n)
		if err != nil {
			return raw.Scalar{}, err
		}
		return raw.Scalar{Type: ion.Blob, Bytes: b}, nil
	case opClob:
		n, err := c.readLen()
		if err != nil {
			return raw.Scalar{}, err
		}
		b, err := c.readBytes(n)
		if err != nil {
			return raw.Scalar{}, err
		}
		return raw.Scalar{Type: ion.Clob, Bytes: b}, nil
	}
	return raw.Scalar{}, errors.New(errors.PhaseDecode, errors.KindWrongType).
		Offset(v.off).Detail("opcode 0x%02x is not a scalar", op).Build()
}

func readTimestamp(c *cursor) (ion.Time, error) {
	p, err := c.readByte()
	if err != nil {
		return ion.Time{}, err
	}
	precision := ion.TimestampPrecision(p)
	if precision > ion.PrecisionNanosecond {
		return ion.Time{}, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Offset(c.pos).Detail("invalid timestamp precision %d", p).Build()
	}
	parts := [7]int64{1, 1, 1, 0, 0, 0, 0}
	counts := map[ion.TimestampPrecision]int{
		ion.PrecisionYear:       1,
		ion.PrecisionMonth:      2,
		ion.PrecisionDay:        3,
		ion.PrecisionMinute:     5,
		ion.PrecisionSecond:     6,
		ion.PrecisionNanosecond: 7,
	}
	for i := 0; i < counts[precision]; i++ {
		n, err := c.readInt()
		if err != nil {
			return ion.Time{}, err
		}
		parts[i] = n
	}
	var offsetMinutes int64
	if precision >= ion.PrecisionMinute {
		present, err := c.readByte()
		if err != nil {
			return ion.Time{}, err
		}
		if present != 0 {
			if offsetMinutes, err = c.readInt(); err != nil {
				return ion.Time{}, err
			}
		}
	}
	return ion.NewTimestamp(
		int(parts[0]), time.Month(parts[1]), int(parts[2]),
		int(parts[3]), int(parts[4]), int(parts[5]), int(parts[6]),
		int(offsetMinutes), precision,
	), nil
}

func (v *value) Sequence() (raw.SequenceReader, error) {
	c, err := v.body()
	if err != nil {
		return nil, err
	}
	op, err := c.readByte()
	if err != nil {
		return nil, err
	}
	if op != opList && op != opSExp {
		return nil, errors.New(errors.PhaseDecode, errors.KindWrongType).
			Offset(v.off).Detail("opcode 0x%02x is not a sequence", op).Build()
	}
	n, err := c.readLen()
	if err != nil {
		return nil, err
	}
	body, err := c.sub(n)
	if err != nil {
		return nil, err
	}
	return &sequenceReader{c: body, base: v.off}, nil
}

func (v *value) Struct() (raw.StructReader, error) {
	c, err := v.body()
	if err != nil {
		return nil, err
	}
	op, err := c.readByte()
	if err != nil {
		return nil, err
	}
	if op != opStruct {
		return nil, errors.New(errors.PhaseDecode, errors.KindWrongType).
			Offset(v.off).Detail("opcode 0x%02x is not a struct", op).Build()
	}
	n, err := c.readLen()
	if err != nil {
		return nil, err
	}
	body, err := c.sub(n)
	if err != nil {
		return nil, err
	}
	return &structReader{c: body, base: v.off}, nil
}
