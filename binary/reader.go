package binary

import (
	"github.com/wippyai/ion-engine/errors"
	"github.com/wippyai/ion-engine/ion"
	"github.com/wippyai/ion-engine/macro"
	"github.com/wippyai/ion-engine/raw"
)

// NewStreamReader returns a reader over the top-level value expressions of
// an encoded buffer. NOP padding between top-level values is skipped.
func NewStreamReader(buf []byte) raw.StreamReader {
	return &sequenceReader{c: cursor{buf: buf}}
}

// skipExpr advances the cursor past one complete value or e-expression.
func skipExpr(c *cursor) error {
	op, err := c.readByte()
	if err != nil {
		return err
	}
	switch op {
	case opNullNull:
		return nil
	case opNullTyped, opBool:
		return c.skip(1)
	case opInt, opDecimal:
		if _, err := c.readInt(); err != nil {
			return err
		}
		if op == opDecimal {
			_, err := c.readInt()
			return err
		}
		return nil
	case opFloat:
		return c.skip(8)
	case opTimestamp:
		_, err := readTimestamp(c)
		return err
	case opString, opSymbolTxt, opBlob, opClob,
		opList, opSExp, opStruct, opArgGroup:
		n, err := c.readLen()
		if err != nil {
			return err
		}
		return c.skip(n)
	case opSymbolID:
		_, err := c.readUint()
		return err
	case opAnnotations:
		count, err := c.readUint()
		if err != nil {
			return err
		}
		for i := uint64(0); i < count; i++ {
			if _, err := readAnnotationToken(c); err != nil {
				return err
			}
		}
		return skipExpr(c)
	case opEExpAddr, opEExpSystem:
		if _, err := c.readUint(); err != nil {
			return err
		}
		n, err := c.readLen()
		if err != nil {
			return err
		}
		return c.skip(n)
	case opEExpName:
		if _, err := c.readText(); err != nil {
			return err
		}
		n, err := c.readLen()
		if err != nil {
			return err
		}
		return c.skip(n)
	}
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Offset(c.pos - 1).Detail("invalid opcode 0x%02x", op).Build()
}

// readValueSpan advances past one value expression and returns it as a
// lazy value.
func readValueSpan(c *cursor, base int) (*value, error) {
	start := c.pos
	if err := skipExpr(c); err != nil {
		return nil, err
	}
	return &value{span: c.buf[start:c.pos], off: base + start}, nil
}

// readInvocation decodes an e-expression header and captures its argument
// region without parsing it.
func readInvocation(c *cursor, base int) (*eexp, error) {
	op, err := c.readByte()
	if err != nil {
		return nil, err
	}
	inv := &eexp{off: base + c.pos - 1}
	switch op {
	case opEExpAddr:
		addr, err := c.readUint()
		if err != nil {
			return nil, err
		}
		inv.id = raw.MacroID{Address: macro.Address(addr)}
	case opEExpSystem:
		addr, err := c.readUint()
		if err != nil {
			return nil, err
		}
		inv.id = raw.MacroID{System: true, Address: macro.Address(addr)}
	case opEExpName:
		name, err := c.readText()
		if err != nil {
			return nil, err
		}
		inv.id = raw.MacroID{ByName: true, Name: name}
	default:
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Offset(base + c.pos - 1).Detail("opcode 0x%02x is not an e-expression", op).Build()
	}
	n, err := c.readLen()
	if err != nil {
		return nil, err
	}
	argBase := base + c.pos
	args, err := c.readBytes(n)
	if err != nil {
		return nil, err
	}
	inv.args = args
	inv.argBase = argBase
	return inv, nil
}

// sequenceReader yields the value expressions of a list, sexp, or the
// top-level stream, skipping NOP padding.
type sequenceReader struct {
	c    cursor
	base int
}

func (r *sequenceReader) NextExpr() (raw.ValueExpr, bool, error) {
	for {
		op, ok := r.c.peekByte()
		if !ok {
			return raw.ValueExpr{}, false, nil
		}
		switch {
		case op == opNop:
			r.c.pos++
		case op == opNopPad:
			r.c.pos++
			n, err := r.c.readLen()
			if err != nil {
				return raw.ValueExpr{}, false, err
			}
			if err := r.c.skip(n); err != nil {
				return raw.ValueExpr{}, false, err
			}
		case isValueOp(op):
			v, err := readValueSpan(&r.c, r.base)
			if err != nil {
				return raw.ValueExpr{}, false, err
			}
			return raw.LiteralOf(v), true, nil
		case isEExpOp(op):
			inv, err := readInvocation(&r.c, r.base)
			if err != nil {
				return raw.ValueExpr{}, false, err
			}
			return raw.InvocationOf(inv), true, nil
		default:
			return raw.ValueExpr{}, false, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Offset(r.base + r.c.pos).Detail("invalid opcode 0x%02x", op).Build()
		}
	}
}

// fieldName is an undecoded struct field name.
type fieldName struct {
	sid     uint32
	text    string
	hasText bool
}

func (n fieldName) ReadToken() (ion.SymbolToken, error) {
	if n.hasText {
		return ion.SymbolText(n.text), nil
	}
	return ion.SymbolID(n.sid), nil
}

// structReader yields the field expressions of a struct body. NOP padding
// skips the whole field position.
type structReader struct {
	c    cursor
	base int
}

func (r *structReader) NextField() (raw.FieldExpr, bool, error) {
	for {
		op, ok := r.c.peekByte()
		if !ok {
			return raw.FieldExpr{}, false, nil
		}
		switch {
		case op == opNop:
			r.c.pos++
		case op == opNopPad:
			r.c.pos++
			n, err := r.c.readLen()
			if err != nil {
				return raw.FieldExpr{}, false, err
			}
			if err := r.c.skip(n); err != nil {
				return raw.FieldExpr{}, false, err
			}
		case op == opFieldSID || op == opFieldTxt:
			name, err := r.readName(op)
			if err != nil {
				return raw.FieldExpr{}, false, err
			}
			return r.readNamedField(name)
		case isEExpOp(op):
			inv, err := readInvocation(&r.c, r.base)
			if err != nil {
				return raw.FieldExpr{}, false, err
			}
			return raw.FieldExpr{Kind: raw.FieldEExp, Invocation: inv}, true, nil
		default:
			return raw.FieldExpr{}, false, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Offset(r.base + r.c.pos).Detail("invalid opcode 0x%02x in struct body", op).Build()
		}
	}
}

func (r *structReader) readName(op byte) (fieldName, error) {
	r.c.pos++
	if op == opFieldTxt {
		text, err := r.c.readText()
		if err != nil {
			return fieldName{}, err
		}
		return fieldName{text: text, hasText: true}, nil
	}
	sid, err := r.c.readUint()
	if err != nil {
		return fieldName{}, err
	}
	return fieldName{sid: uint32(sid)}, nil
}

func (r *structReader) readNamedField(name fieldName) (raw.FieldExpr, bool, error) {
	op, ok := r.c.peekByte()
	if !ok {
		return raw.FieldExpr{}, false, errors.Incomplete
	}
	switch {
	case isValueOp(op):
		v, err := readValueSpan(&r.c, r.base)
		if err != nil {
			return raw.FieldExpr{}, false, err
		}
		return raw.FieldExpr{Kind: raw.FieldNameValue, Name: name, Value: v}, true, nil
	case isEExpOp(op):
		inv, err := readInvocation(&r.c, r.base)
		if err != nil {
			return raw.FieldExpr{}, false, err
		}
		return raw.FieldExpr{Kind: raw.FieldNameMacro, Name: name, Invocation: inv}, true, nil
	}
	return raw.FieldExpr{}, false, errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Offset(r.base + r.c.pos).Detail("opcode 0x%02x cannot follow a field name", op).Build()
}

// eexp is an unexpanded binary e-expression.
type eexp struct {
	id      raw.MacroID
	args    []byte
	argBase int
	off     int
}

var _ raw.MacroInvocation = (*eexp)(nil)

func (e *eexp) ID() raw.MacroID { return e.id }

func (e *eexp) Arguments() raw.ArgumentReader {
	return &argReader{c: cursor{buf: e.args}, base: e.argBase}
}

// argReader yields the argument expressions of an e-expression or the
// contents of an argument group.
type argReader struct {
	c    cursor
	base int
}

func (r *argReader) Clone() raw.ArgumentReader {
	return &argReader{c: cursor{buf: r.c.buf}, base: r.base}
}

func (r *argReader) NextArg() (raw.ArgExpr, bool, error) {
	op, ok := r.c.peekByte()
	if !ok {
		return raw.ArgExpr{}, false, nil
	}
	switch {
	case op == opArgGroup:
		r.c.pos++
		n, err := r.c.readLen()
		if err != nil {
			return raw.ArgExpr{}, false, err
		}
		groupBase := r.base + r.c.pos
		body, err := r.c.readBytes(n)
		if err != nil {
			return raw.ArgExpr{}, false, err
		}
		return raw.ArgExpr{Group: &argReader{c: cursor{buf: body}, base: groupBase}}, true, nil
	case isValueOp(op):
		v, err := readValueSpan(&r.c, r.base)
		if err != nil {
			return raw.ArgExpr{}, false, err
		}
		return raw.ArgExpr{Literal: v}, true, nil
	case isEExpOp(op):
		inv, err := readInvocation(&r.c, r.base)
		if err != nil {
			return raw.ArgExpr{}, false, err
		}
		return raw.ArgExpr{Invocation: inv}, true, nil
	}
	return raw.ArgExpr{}, false, errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Offset(r.base + r.c.pos).Detail("invalid opcode 0x%02x in argument position", op).Build()
}
