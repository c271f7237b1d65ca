package binary

// Opcodes for the binary encoding. A value expression starts with one
// opcode byte; variable-length payloads use LEB128 as documented per
// opcode.
//
//	0x00        NOP, single byte
//	0x01        NOP, uLEB pad length + that many bytes
//	0x10        null.null
//	0x11        typed null, one type-code byte
//	0x12        bool, one payload byte (0 or 1)
//	0x13        int, sLEB
//	0x14        float, 8 bytes little-endian IEEE 754
//	0x15        decimal, sLEB coefficient + sLEB exponent
//	0x16        timestamp, precision byte + component sLEBs (see below)
//	0x17        string, uLEB byte length + UTF-8 bytes
//	0x18        symbol, uLEB symbol ID
//	0x19        symbol, uLEB byte length + inline UTF-8 text
//	0x1A        blob, uLEB byte length + bytes
//	0x1B        clob, uLEB byte length + bytes
//	0x20        list, uLEB body length + body
//	0x21        sexp, uLEB body length + body
//	0x22        struct, uLEB body length + body
//	0x30        annotations, uLEB count + count annotation tokens +
//	            one annotated value expression
//	0x40        e-expression, uLEB user-table address + argument region
//	0x41        argument group, uLEB body length + body
//	0x42        e-expression, uLEB name length + name + argument region
//	0x43        e-expression, uLEB system-table address + argument region
//	0x50        field name, uLEB symbol ID
//	0x51        field name, uLEB byte length + inline UTF-8 text
//
// An argument region is a uLEB byte length followed by that many bytes of
// argument expressions (values, nested e-expressions, or 0x41 groups).
//
// An annotation token is one byte, 0x00 for a uLEB symbol ID or 0x01 for
// a uLEB length plus inline text.
//
// A timestamp payload is a precision byte (matching
// ion.TimestampPrecision) followed by sLEB year, then month, day, hour,
// minute, second, and nanoseconds as the precision requires; precisions
// of minute and finer end with one offset-presence byte and, when
// present, a sLEB offset in minutes.
//
// A struct body is a run of field positions: a field name opcode followed
// by one value expression, an e-expression opcode directly in name
// position, or NOP padding which skips the entire field position.
const (
	opNop    = 0x00
	opNopPad = 0x01

	opNullNull  = 0x10
	opNullTyped = 0x11
	opBool      = 0x12
	opInt       = 0x13
	opFloat     = 0x14
	opDecimal   = 0x15
	opTimestamp = 0x16
	opString    = 0x17
	opSymbolID  = 0x18
	opSymbolTxt = 0x19
	opBlob      = 0x1A
	opClob      = 0x1B

	opList   = 0x20
	opSExp   = 0x21
	opStruct = 0x22

	opAnnotations = 0x30

	opEExpAddr   = 0x40
	opArgGroup   = 0x41
	opEExpName   = 0x42
	opEExpSystem = 0x43

	opFieldSID = 0x50
	opFieldTxt = 0x51
)

func isScalarOp(op byte) bool    { return op >= opNullNull && op <= opClob }
func isContainerOp(op byte) bool { return op >= opList && op <= opStruct }
func isEExpOp(op byte) bool {
	return op == opEExpAddr || op == opEExpName || op == opEExpSystem
}
func isValueOp(op byte) bool {
	return isScalarOp(op) || isContainerOp(op) || op == opAnnotations
}
