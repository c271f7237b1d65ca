package expand

import (
	"strconv"
	"strings"
	"time"

	"github.com/wippyai/ion-engine/errors"
	"github.com/wippyai/ion-engine/ion"
	"github.com/wippyai/ion-engine/macro"
)

var systemKinds = map[macro.SystemID]expansionKind{
	macro.SysNone:          expNone,
	macro.SysValues:        expValues,
	macro.SysDefault:       expDefault,
	macro.SysMeta:          expMeta,
	macro.SysRepeat:        expRepeat,
	macro.SysFlatten:       expFlatten,
	macro.SysDelta:         expDelta,
	macro.SysSum:           expSum,
	macro.SysAnnotate:      expAnnotate,
	macro.SysMakeString:    expMakeString,
	macro.SysMakeSymbol:    expMakeSymbol,
	macro.SysMakeDecimal:   expMakeDecimal,
	macro.SysMakeTimestamp: expMakeTimestamp,
	macro.SysMakeBlob:      expMakeBlob,
	macro.SysMakeList:      expMakeList,
	macro.SysMakeSExp:      expMakeSExp,
	macro.SysMakeField:     expMakeField,
	macro.SysMakeStruct:    expMakeStruct,
}

func (m *MacroExpr) expandSystem() (*Expansion, error) {
	id := m.def.System()
	kind, ok := systemKinds[id]
	if !ok {
		// parse_ion and the encoding directives occupy reserved addresses
		// but are a reader-level concern, not value producers.
		return nil, errors.New(errors.PhaseExpand, errors.KindUnsupported).
			Macro(id.String()).
			Detail("macro cannot be expanded in value position").
			Build()
	}
	x := m.ctx.expansions.Alloc()
	*x = Expansion{ctx: m.ctx, kind: kind, name: id.String(), args: m.args()}
	return x, nil
}

// nextDefault implements default(maybe_empty, fallback): the first
// argument's values pass through unless there are none, in which case the
// fallback expression is expanded instead.
func (x *Expansion) nextDefault() (ValueExpr, bool, error) {
	if !x.primed {
		x.primed = true
		primary, ok, err := x.args.next()
		if err != nil {
			return ValueExpr{}, false, err
		}
		if !ok {
			return ValueExpr{}, false, errors.Arity(x.name, "expected 2 arguments, found 0")
		}
		fallback, ok, err := x.args.next()
		if err != nil {
			return ValueExpr{}, false, err
		}
		if !ok {
			return ValueExpr{}, false, errors.Arity(x.name, "expected 2 arguments, found 1")
		}
		if _, extra, err := x.args.next(); err != nil {
			return ValueExpr{}, false, err
		} else if extra {
			return ValueExpr{}, false, errors.Arity(x.name, "expected 2 arguments, found more")
		}

		// Pull the primary's first value to learn whether it's empty.
		x.sub = x.ctx.NewEvaluator()
		pe := primary.valueExpr()
		if pe.IsLiteral() {
			// A literal is trivially non-empty; stream it then stay done.
			x.done = true
			return pe, true, nil
		}
		px, err := pe.invocation.Expand()
		if err != nil {
			return ValueExpr{}, false, err
		}
		if err := x.sub.Push(px); err != nil {
			return ValueExpr{}, false, err
		}
		v, ok, err := x.sub.Next()
		if err != nil {
			return ValueExpr{}, false, err
		}
		if ok {
			return ValueExpr{value: v}, true, nil
		}
		// Primary was empty: expand the fallback instead.
		x.done = true
		return fallback.valueExpr(), true, nil
	}
	if x.done || x.sub == nil {
		return ValueExpr{}, false, nil
	}
	v, ok, err := x.sub.Next()
	if err != nil || !ok {
		return ValueExpr{}, false, err
	}
	return ValueExpr{value: v}, true, nil
}

// nextRepeat implements repeat(n, value*): the value stream replayed n
// times. Replayed invocations re-expand from scratch.
func (x *Expansion) nextRepeat() (ValueExpr, bool, error) {
	if !x.primed {
		x.primed = true
		count, ok, err := x.args.next()
		if err != nil {
			return ValueExpr{}, false, err
		}
		if !ok {
			return ValueExpr{}, false, errors.Arity(x.name, "expected a repeat count")
		}
		n, err := evalInt(x.ctx, count, x.name)
		if err != nil {
			return ValueExpr{}, false, err
		}
		if n < 0 {
			return ValueExpr{}, false, errors.WrongType(x.name, "repeat count must not be negative")
		}
		x.repeatLeft = n
		for {
			a, ok, err := x.args.next()
			if err != nil {
				return ValueExpr{}, false, err
			}
			if !ok {
				break
			}
			x.items = append(x.items, a.valueExpr())
		}
		if len(x.items) == 0 {
			x.repeatLeft = 0
		}
	}
	for x.repeatLeft > 0 {
		if x.itemPos < len(x.items) {
			e := x.items[x.itemPos]
			x.itemPos++
			return e, true, nil
		}
		x.itemPos = 0
		x.repeatLeft--
	}
	return ValueExpr{}, false, nil
}

// nextFlatten implements flatten(sequence*): each sequence-valued
// argument contributes its elements individually.
func (x *Expansion) nextFlatten() (ValueExpr, bool, error) {
	for {
		if x.seq != nil {
			v, ok, err := x.seq.Next()
			if err != nil {
				return ValueExpr{}, false, err
			}
			if ok {
				return ValueExpr{value: v}, true, nil
			}
			x.seq = nil
		}
		v, ok, err := x.values().next()
		if err != nil || !ok {
			return ValueExpr{}, false, err
		}
		ref, err := v.Read()
		if err != nil {
			return ValueExpr{}, false, err
		}
		it, err := ref.ExpectSequence()
		if err != nil {
			return ValueExpr{}, false, errors.WrongType(x.name,
				"arguments must be lists or sexps, found a(n) "+ref.Kind.String())
		}
		x.seq = it
	}
}

// nextDelta implements delta(int*): a running sum, emitting each partial
// total.
func (x *Expansion) nextDelta() (ValueExpr, bool, error) {
	v, ok, err := x.values().next()
	if err != nil || !ok {
		return ValueExpr{}, false, err
	}
	ref, err := v.Read()
	if err != nil {
		return ValueExpr{}, false, err
	}
	n, err := ref.ExpectInt()
	if err != nil {
		return ValueExpr{}, false, errors.WrongType(x.name, "arguments must be ints")
	}
	x.acc += n
	return ValueExpr{value: x.ctx.newConstructedValue(ValueRef{Kind: ion.Int, Int: x.acc})}, true, nil
}

// construct builds the single value produced by a one-shot system macro.
func (x *Expansion) construct() (*Value, error) {
	switch x.kind {
	case expSum:
		return x.constructSum()
	case expAnnotate:
		return x.constructAnnotate()
	case expMakeString, expMakeSymbol:
		return x.constructText()
	case expMakeBlob:
		return x.constructBlob()
	case expMakeDecimal:
		return x.constructDecimal()
	case expMakeTimestamp:
		return x.constructTimestamp()
	case expMakeList:
		return x.constructSequence(ion.List)
	case expMakeSExp:
		return x.constructSequence(ion.SExp)
	case expMakeField:
		return x.constructField()
	case expMakeStruct:
		return x.constructStruct()
	}
	return nil, errors.Expansion("unknown system expansion %d", x.kind)
}

func (x *Expansion) constructSum() (*Value, error) {
	a, err := x.requireInt()
	if err != nil {
		return nil, err
	}
	b, err := x.requireInt()
	if err != nil {
		return nil, err
	}
	if err := x.requireEnd(2); err != nil {
		return nil, err
	}
	return x.ctx.newConstructedValue(ValueRef{Kind: ion.Int, Int: a + b}), nil
}

func (x *Expansion) constructAnnotate() (*Value, error) {
	anns, ok, err := x.args.next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Arity(x.name, "expected an annotation sequence and a value")
	}
	var tokens []ion.SymbolToken
	av := argValues{ctx: x.ctx, args: singleArgStream(x.ctx, anns)}
	for {
		v, ok, err := av.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		ref, err := v.Read()
		if err != nil {
			return nil, err
		}
		text, err := ref.ExpectText()
		if err != nil {
			return nil, errors.WrongType(x.name, "annotations must be symbols or strings")
		}
		tokens = append(tokens, ion.SymbolText(text))
	}
	target, ok, err := x.args.next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Arity(x.name, "expected a value to annotate")
	}
	inner, err := evalOneExpr(x.ctx, target.valueExpr())
	if err != nil {
		return nil, err
	}
	if err := x.requireNoMoreArgs(); err != nil {
		return nil, err
	}
	return x.ctx.newAnnotatedValue(tokens, inner), nil
}

func (x *Expansion) constructText() (*Value, error) {
	var b strings.Builder
	for {
		v, ok, err := x.values().next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		ref, err := v.Read()
		if err != nil {
			return nil, err
		}
		text, err := ref.ExpectText()
		if err != nil {
			return nil, errors.WrongType(x.name, "arguments must be strings or symbols")
		}
		b.WriteString(text)
	}
	if x.kind == expMakeSymbol {
		return x.ctx.newConstructedValue(ValueRef{Kind: ion.Symbol, Sym: ion.SymbolText(b.String())}), nil
	}
	return x.ctx.newConstructedValue(ValueRef{Kind: ion.String, Str: b.String()}), nil
}

func (x *Expansion) constructBlob() (*Value, error) {
	var out []byte
	for {
		v, ok, err := x.values().next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		ref, err := v.Read()
		if err != nil {
			return nil, err
		}
		bytes, err := ref.ExpectLob()
		if err != nil {
			return nil, errors.WrongType(x.name, "arguments must be blobs or clobs")
		}
		out = append(out, bytes...)
	}
	return x.ctx.newConstructedValue(ValueRef{Kind: ion.Blob, Bytes: out}), nil
}

func (x *Expansion) constructDecimal() (*Value, error) {
	coefficient, err := x.requireInt()
	if err != nil {
		return nil, err
	}
	exponent, err := x.requireInt()
	if err != nil {
		return nil, err
	}
	if err := x.requireEnd(2); err != nil {
		return nil, err
	}
	return x.ctx.newConstructedValue(ValueRef{
		Kind: ion.Decimal,
		Dec:  ion.NewDec(coefficient, int32(exponent)),
	}), nil
}

func (x *Expansion) constructTimestamp() (*Value, error) {
	var parts []int64
	for {
		v, ok, err := x.values().next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		ref, err := v.Read()
		if err != nil {
			return nil, err
		}
		n, err := ref.ExpectInt()
		if err != nil {
			return nil, errors.WrongType(x.name, "arguments must be ints")
		}
		parts = append(parts, n)
	}
	get := func(i int, dflt int64) int64 {
		if i < len(parts) {
			return parts[i]
		}
		return dflt
	}
	var precision ion.TimestampPrecision
	switch len(parts) {
	case 1:
		precision = ion.PrecisionYear
	case 2:
		precision = ion.PrecisionMonth
	case 3:
		precision = ion.PrecisionDay
	case 5:
		precision = ion.PrecisionMinute
	case 6, 7:
		precision = ion.PrecisionSecond
	default:
		return nil, errors.Arity(x.name, "expected 1-3 or 5-7 int arguments")
	}
	ts := ion.NewTimestamp(
		int(get(0, 1)), time.Month(get(1, 1)), int(get(2, 1)),
		int(get(3, 0)), int(get(4, 0)), int(get(5, 0)), 0,
		int(get(6, 0)), precision,
	)
	return x.ctx.newConstructedValue(ValueRef{Kind: ion.Timestamp, Time: ts}), nil
}

func (x *Expansion) constructSequence(t ion.Type) (*Value, error) {
	seq := sequence{ctx: x.ctx, kind: seqConstructed, typ: t, args: x.args.clone()}
	// The constructor owns the argument stream now; drop our copy so the
	// frame reads as exhausted.
	x.args = &argStream{ctx: x.ctx}
	if t == ion.List {
		l := x.ctx.lists.Alloc()
		*l = List{seq: seq}
		return x.ctx.newConstructedValue(ValueRef{Kind: ion.List, List: l}), nil
	}
	s := x.ctx.sexps.Alloc()
	*s = SExp{seq: seq}
	return x.ctx.newConstructedValue(ValueRef{Kind: ion.SExp, SExp: s}), nil
}

func (x *Expansion) constructField() (*Value, error) {
	nameArg, ok, err := x.args.next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Arity(x.name, "expected a field name and a value")
	}
	nameVal, err := evalOneExpr(x.ctx, nameArg.valueExpr())
	if err != nil {
		return nil, err
	}
	ref, err := nameVal.Read()
	if err != nil {
		return nil, err
	}
	text, err := ref.ExpectText()
	if err != nil {
		return nil, errors.WrongType(x.name, "field name must be a symbol or string")
	}
	valueArg, ok, err := x.args.next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Arity(x.name, "expected a field value")
	}
	value, err := evalOneExpr(x.ctx, valueArg.valueExpr())
	if err != nil {
		return nil, err
	}
	if err := x.requireNoMoreArgs(); err != nil {
		return nil, err
	}
	s := x.ctx.structs.Alloc()
	*s = Struct{
		ctx: x.ctx,
		src: structMakeField,
		mfField: &Field{
			Name:  FieldName{ctx: x.ctx, sym: ion.SymbolText(text), hasSym: true},
			Value: value,
		},
	}
	return x.ctx.newConstructedValue(ValueRef{Kind: ion.Struct, Struct: s}), nil
}

func (x *Expansion) constructStruct() (*Value, error) {
	s := x.ctx.structs.Alloc()
	*s = Struct{ctx: x.ctx, src: structMakeStruct, msArgs: x.args.clone()}
	x.args = &argStream{ctx: x.ctx}
	return x.ctx.newConstructedValue(ValueRef{Kind: ion.Struct, Struct: s}), nil
}

// requireInt pulls the next fully-expanded argument value as an int.
func (x *Expansion) requireInt() (int64, error) {
	v, ok, err := x.values().next()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.Arity(x.name, "missing int argument")
	}
	ref, err := v.Read()
	if err != nil {
		return 0, err
	}
	n, err := ref.ExpectInt()
	if err != nil {
		return 0, errors.WrongType(x.name, "arguments must be ints")
	}
	return n, nil
}

// requireEnd verifies the expanded argument stream held exactly n values.
func (x *Expansion) requireEnd(n int) error {
	if _, ok, err := x.values().next(); err != nil {
		return err
	} else if ok {
		return errors.Arity(x.name, "expected exactly "+strconv.Itoa(n)+" arguments")
	}
	return nil
}

func (x *Expansion) requireNoMoreArgs() error {
	if _, ok, err := x.args.next(); err != nil {
		return err
	} else if ok {
		return errors.Arity(x.name, "too many arguments")
	}
	return nil
}

// evalInt fully evaluates one argument expression to an int.
func evalInt(ctx *Context, a argExpr, macroName string) (int64, error) {
	v, err := evalOneExpr(ctx, a.valueExpr())
	if err != nil {
		return 0, err
	}
	ref, err := v.Read()
	if err != nil {
		return 0, err
	}
	n, err := ref.ExpectInt()
	if err != nil {
		return 0, errors.WrongType(macroName, "expected an int argument")
	}
	return n, nil
}

// singleArgStream wraps one already-pulled argument in its own stream.
func singleArgStream(ctx *Context, a argExpr) *argStream {
	if a.isGroup() {
		// Re-expose the group's contents as the stream.
		if a.group.streamRaw != nil {
			return &argStream{ctx: ctx, raw: a.group.streamRaw.Clone(), env: a.group.env}
		}
		return &argStream{ctx: ctx, tpl: a.group.streamTpl, env: a.group.env}
	}
	return &argStream{ctx: ctx, pre: &a}
}
