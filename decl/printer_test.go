package decl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatExpr(t *testing.T) {
	a, b, c := Ident("a"), Ident("b"), Ident("c")
	tests := []struct {
		expr     Expr
		expected string
	}{
		{Binary(Binary(IntAtom(1), OpAdd, IntAtom(2)), OpMul, IntAtom(3)), "(1 + 2) * 3"},
		{Binary(IntAtom(1), OpAdd, Binary(IntAtom(2), OpMul, IntAtom(3))), "1 + 2 * 3"},
		{Binary(Binary(a, OpSub, b), OpSub, c), "a - b - c"},
		{Binary(a, OpSub, Binary(b, OpSub, c)), "a - (b - c)"},
		{Binary(Binary(a, OpOr, b), OpAnd, c), "(a || b) && c"},
		{Binary(a, OpEq, Binary(b, OpLt, c)), "a == b < c"},
		{Assign(Assign(IntAtom(3), "b"), "a"), "a = b = 3"},
		{Binary(Assign(IntAtom(1), "x"), OpAdd, IntAtom(2)), "(x = 1) + 2"},
		{Ternary(a, Assign(IntAtom(1), "x"), Ternary(b, IntAtom(2), IntAtom(3))), "a ? x = 1 : b ? 2 : 3"},
		{Ternary(Ternary(a, b, c), IntAtom(1), IntAtom(2)), "(a ? b : c) ? 1 : 2"},
		{Ternary(a, b, Assign(IntAtom(1), "c")), "a ? b : (c = 1)"},
		{Unary(OpNeg, Binary(a, OpAdd, b)), "-(a + b)"},
		{Unary(OpNot, Unary(OpNot, a)), "!!a"},
		{Binary(a, OpSub, IntAtom(-1)), "a - -1"},
		{Ident("p", "pos", "x"), "p.pos.x"},
		{FloatAtom(1), "1.0"},
		{FloatAtom(2.5), "2.5"},
		{StringAtom("a\"b\n"), `"a\"b\n"`},
		{CharAtom('\''), `'\''`},
		{VoidAtom(), "void"},
		{Call(BuiltInPrint, ListInit(IntAtom(1), Binary(a, OpMul, b))), "Print([1, a * b])"},
		{StructInit("P", Field("x", Ternary(a, IntAtom(1), IntAtom(2))), Field("y", IntAtom(0))), "P { x: a ? 1 : 2, y: 0 }"},
		{StructInit("Tag"), "Tag {}"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatExpr(tt.expr))
	}
}

func TestFormatFile(t *testing.T) {
	file := &FileDecl{Declarations: []Node{
		&ShapeDecl{Kind: ShapeComponent, Name: "Pos", Fields: []*FieldDecl{{Name: "x", Type: IntType}}},
		&ShapeDecl{Kind: ShapeStruct, Name: "Range", Fields: []*FieldDecl{
			{Name: "lo", Type: IntType},
			{Name: "hi", Type: IntType},
		}},
		&StaticDecl{Name: "limits", Type: ListType(NamedType("Range")), Value: ListInit()},
		&SystemDecl{Name: "noop"},
		&SystemDecl{Name: "move", Filters: []*Filter{{Kind: FilterEntity, Args: []*Argument{{Type: NamedType("Pos"), Name: "p"}}}},
			Body: []Expr{Assign(Binary(Ident("p", "x"), OpAdd, IntAtom(1)), "p", "x")}},
		&ScheduleDecl{Kind: ScheduleInit, Systems: []string{"noop"}},
		&ScheduleDecl{Kind: ScheduleRun, Systems: []string{"move"}},
	}}

	expected := `component Pos { x: int }

struct Range {
  lo: int,
  hi: int,
}

static [Range] limits = [];

system noop(entity e(const Pos p)) {}

system move(entity(Pos p)) {
  p.x = p.x + 1;
}

init [noop]
run [move]
`
	assert.Equal(t, expected, Format(file))
}

func TestCodePrinter(t *testing.T) {
	cp := NewCodePrinter()
	cp.Print("a")
	cp.Print("b\n")
	WithIndent(2, cp, func(cp CodePrinter) {
		cp.Println("c")
		cp.Printf("%d\n\n", 1)
	})
	cp.Unindent(5)
	cp.Print("d")
	assert.Equal(t, "ab\n    c\n    1\n\nd", cp.String())
}
