package decl

// BinOp is a binary operator.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpBitAnd
	OpBitOr
	OpShl
	OpShr
	OpLeq
	OpGeq
	OpLt
	OpGt
	OpEq
	OpNeq
)

var binOpSymbols = map[BinOp]string{
	OpAdd:    "+",
	OpSub:    "-",
	OpMul:    "*",
	OpDiv:    "/",
	OpMod:    "%",
	OpAnd:    "&&",
	OpOr:     "||",
	OpXor:    "^",
	OpBitAnd: "&",
	OpBitOr:  "|",
	OpShl:    "<<",
	OpShr:    ">>",
	OpLeq:    "<=",
	OpGeq:    ">=",
	OpLt:     "<",
	OpGt:     ">",
	OpEq:     "==",
	OpNeq:    "!=",
}

func (o BinOp) String() string {
	if s, ok := binOpSymbols[o]; ok {
		return s
	}
	return "<?>"
}

// Precedence of the operator, from 1 (||) to 10 (* / %).  Operators of the
// same precedence associate to the left.
func (o BinOp) Precedence() int {
	switch o {
	case OpOr:
		return 1
	case OpAnd:
		return 2
	case OpBitOr:
		return 3
	case OpXor:
		return 4
	case OpBitAnd:
		return 5
	case OpEq, OpNeq:
		return 6
	case OpLeq, OpGeq, OpLt, OpGt:
		return 7
	case OpShl, OpShr:
		return 8
	case OpAdd, OpSub:
		return 9
	}
	return 10
}

// IsComparison is true for operators that always produce a Bool.
func (o BinOp) IsComparison() bool {
	switch o {
	case OpLeq, OpGeq, OpLt, OpGt, OpEq, OpNeq:
		return true
	}
	return false
}

// UnOp is a unary operator.
type UnOp int

const (
	OpPos UnOp = iota
	OpNeg
	OpNot
	OpBitNot
)

func (o UnOp) String() string {
	switch o {
	case OpPos:
		return "+"
	case OpNeg:
		return "-"
	case OpNot:
		return "!"
	case OpBitNot:
		return "~"
	}
	return "<?>"
}

// BuiltIn names one of the functions callable from system code.
type BuiltIn int

const (
	BuiltInClone BuiltIn = iota
	BuiltInSpawn
	BuiltInDelete
	BuiltInPrint
)

var builtinNames = map[string]BuiltIn{
	"Clone":  BuiltInClone,
	"Spawn":  BuiltInSpawn,
	"Delete": BuiltInDelete,
	"Print":  BuiltInPrint,
}

// LookupBuiltIn returns the builtin with the given name.
func LookupBuiltIn(name string) (BuiltIn, bool) {
	b, ok := builtinNames[name]
	return b, ok
}

func (b BuiltIn) String() string {
	for name, v := range builtinNames {
		if v == b {
			return name
		}
	}
	return "<unknown builtin>"
}
