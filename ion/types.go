package ion

// Type identifies the logical type of a value.
type Type uint8

const (
	NoType Type = iota
	Null
	Bool
	Int
	Float
	Decimal
	Timestamp
	Symbol
	String
	Clob
	Blob
	List
	SExp
	Struct
)

var typeNames = [...]string{
	NoType:    "none",
	Null:      "null",
	Bool:      "bool",
	Int:       "int",
	Float:     "float",
	Decimal:   "decimal",
	Timestamp: "timestamp",
	Symbol:    "symbol",
	String:    "string",
	Clob:      "clob",
	Blob:      "blob",
	List:      "list",
	SExp:      "sexp",
	Struct:    "struct",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// IsContainer reports whether values of this type hold other values.
func (t Type) IsContainer() bool {
	return t == List || t == SExp || t == Struct
}

// IsScalar reports whether values of this type carry a payload directly.
func (t Type) IsScalar() bool {
	return t > Null && t < List
}
