package parser

import (
	"strings"
	"testing"

	"github.com/panyam/ecsl/decl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func printWithLineNumbers(t *testing.T, input string) {
	t.Log("============================")
	lines := strings.Split(input, "\n")
	for i, line := range lines {
		if len(line) > 0 {
			t.Logf("%03d: %s", i+1, line)
		}
	}
	t.Log("============================")
}

// --- Helper Functions ---
func parseString(t *testing.T, input string) *decl.FileDecl {
	t.Helper()
	printWithLineNumbers(t, input)
	_, ast, err := Parse(strings.NewReader(input))
	require.NoError(t, err, "Input:\n%s", input)
	require.NotNil(t, ast, "Input:\n%s", input)
	return ast
}

func parseStringWithError(t *testing.T, input string) (*Lexer, error) {
	t.Helper()
	printWithLineNumbers(t, input)
	lexer, _, err := Parse(strings.NewReader(input))
	require.Error(t, err, "Expected parsing to fail for Input:\n%s", input)
	return lexer, err
}

func mustParseExpr(t *testing.T, input string) decl.Expr {
	t.Helper()
	expr, err := ParseExpr(input)
	require.NoError(t, err, "Input: %s", input)
	return expr
}

func TestParseEmpty(t *testing.T) {
	ast := parseString(t, "")
	assert.Empty(t, ast.Declarations)

	ast = parseString(t, "  // just a comment\n ; ;")
	assert.Empty(t, ast.Declarations)
}

func TestParseShapes(t *testing.T) {
	ast := parseString(t, `
struct Point { x: int, y: int }
component Body { pos: Point, tags: [string], mass: float, }
resource Clock { tick: int }
component Tag {}
`)
	shapes := ast.Shapes()
	require.Len(t, shapes, 4)

	assert.Equal(t, decl.ShapeStruct, shapes[0].Kind)
	assert.Equal(t, "Point", shapes[0].Name)
	assert.Equal(t, "struct Point { x: Int, y: Int }", shapes[0].String())

	body := shapes[1]
	assert.Equal(t, decl.ShapeComponent, body.Kind)
	require.Len(t, body.Fields, 3)
	assert.True(t, body.Fields[0].Type.Equals(decl.NamedType("Point")))
	assert.True(t, body.Fields[1].Type.Equals(decl.ListType(decl.StrType)))
	assert.True(t, body.Fields[2].Type.Equals(decl.FloatType))

	assert.Equal(t, decl.ShapeResource, shapes[2].Kind)
	assert.Empty(t, shapes[3].Fields)

	assert.Equal(t, 1, shapes[0].Pos())
	assert.Equal(t, 32, shapes[0].End())
}

func TestParseStatics(t *testing.T) {
	ast := parseString(t, `
static int limit = 10;
static [Point] origin = [Point { x: 0, y: 0 }];
static string name = "world";
`)
	statics := ast.Statics()
	require.Len(t, statics, 3)
	assert.Equal(t, "limit", statics[0].Name)
	assert.True(t, statics[0].Type.Equals(decl.IntType))
	assert.Equal(t, "10", statics[0].Value.String())

	assert.True(t, statics[1].Type.Equals(decl.ListType(decl.NamedType("Point"))))
	assert.Equal(t, "[Point { x: 0, y: 0 }]", statics[1].Value.String())
	assert.Equal(t, `static String name = "world";`, statics[2].String())
}

func TestParseSystems(t *testing.T) {
	ast := parseString(t, `
system move(entity(Pos p, const Vel v), resource(Clock c)) {
	p.x = p.x + v.dx;
	;
	c.tick = c.tick + 1;
}
system hello() { Print("hi"); }
`)
	systems := ast.Systems()
	require.Len(t, systems, 2)

	move := systems[0]
	assert.Equal(t, "move", move.Name)
	require.Len(t, move.Filters, 2)
	assert.Equal(t, decl.FilterEntity, move.Filters[0].Kind)
	assert.Equal(t, "entity(Pos p, const Vel v)", move.Filters[0].String())
	assert.True(t, move.Filters[0].Args[1].IsConst)
	assert.Equal(t, decl.FilterResource, move.Filters[1].Kind)
	assert.Equal(t, "c", move.Filters[1].Args[0].Name)
	assert.Equal(t, []*decl.Filter{move.Filters[0]}, move.EntityFilters())
	assert.Empty(t, move.Filters[0].Name)

	require.Len(t, move.Body, 2)
	assert.Equal(t, "p.x = (p.x + v.dx)", move.Body[0].String())
	assert.Equal(t, "c.tick = (c.tick + 1)", move.Body[1].String())

	hello := systems[1]
	assert.Empty(t, hello.Filters)
	assert.Empty(t, hello.EntityFilters())
	require.Len(t, hello.Body, 1)
	call, ok := hello.Body[0].(*decl.CallExpr)
	require.True(t, ok)
	assert.Equal(t, decl.BuiltInPrint, call.Builtin)
}

func TestParseNamedEntityFilters(t *testing.T) {
	ast := parseString(t, `
system collide(entity a(Pos p), entity b(Pos q), resource(Clock c)) {
	p.x == q.x ? Delete(b) : void;
}
`)
	systems := ast.Systems()
	require.Len(t, systems, 1)
	sys := systems[0]
	filters := sys.EntityFilters()
	require.Len(t, filters, 2)
	assert.Equal(t, "a", filters[0].Name)
	assert.Equal(t, "b", filters[1].Name)
	assert.Equal(t, "entity a(Pos p)", filters[0].String())
	assert.Equal(t, "resource(Clock c)", sys.Filters[2].String())
	assert.Equal(t, "((p.x == q.x) ? Delete(b) : void)", sys.Body[0].String())

	_, _, err := Parse(strings.NewReader("system s(entity a b(Pos p)) {}"))
	assert.Error(t, err)
}

func TestParseSchedules(t *testing.T) {
	ast := parseString(t, `
system a() {}
system b() {}
init [a]
run [a, b,];
run []
`)
	init, run := ast.Schedules()
	assert.Equal(t, []string{"a"}, init)
	assert.Equal(t, []string{"a", "b"}, run)
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"a || b && c", "(a || (b && c))"},
		{"a | b ^ c & d", "(a | (b ^ (c & d)))"},
		{"a == b < c", "(a == (b < c))"},
		{"1 << 2 + 3", "(1 << (2 + 3))"},
		{"a & b == c", "(a & (b == c))"},
		{"-x * ~y", "(-x * ~y)"},
		{"!!done", "!!done"},
		{"- -1", "--1"},
		{"a ? b : c ? d : e", "(a ? b : (c ? d : e))"},
		{"a = b = 3", "a = b = 3"},
		{"x = c ? 1 : 2", "x = (c ? 1 : 2)"},
		{"p.pos.x", "p.pos.x"},
		{"Point { x: 1, y: y + 1 }", "Point { x: 1, y: (y + 1) }"},
		{"Tag {}", "Tag {}"},
		{"[]", "[]"},
		{"[1, [2], 'c', \"s\", 1.5, true, void]", `[1, [2], 'c', "s", 1.5, true, void]`},
		{"Spawn(Pos { x: 0, y: 0 }, Vel { dx: 1, dy: 1 })", "Spawn(Pos { x: 0, y: 0 }, Vel { dx: 1, dy: 1 })"},
		{"Delete()", "Delete()"},
		{"Clone(p);", "Clone(p)"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, mustParseExpr(t, tt.input).String())
		})
	}
}

func TestParseLiteralValues(t *testing.T) {
	tests := []struct {
		input string
		typ   *decl.Type
		value any
	}{
		{"42", decl.IntType, int64(42)},
		{"2.5", decl.FloatType, float32(2.5)},
		{"'z'", decl.CharType, 'z'},
		{`"a\tb"`, decl.StrType, "a\tb"},
		{"false", decl.BoolType, false},
		{"void", decl.VoidType, nil},
	}
	for _, tt := range tests {
		atom, ok := mustParseExpr(t, tt.input).(*decl.AtomExpr)
		require.True(t, ok, "input %s", tt.input)
		assert.Same(t, tt.typ, atom.Type, "input %s", tt.input)
		assert.Equal(t, tt.value, atom.Value, "input %s", tt.input)
	}
}

func TestParsePositions(t *testing.T) {
	expr := mustParseExpr(t, "a.b = 1 + foo")
	assign, ok := expr.(*decl.AssignExpr)
	require.True(t, ok)
	assert.Equal(t, 0, assign.Pos())
	assert.Equal(t, 13, assign.End())
	assert.Equal(t, 0, assign.Target.Pos())
	assert.Equal(t, 3, assign.Target.End())
	assert.Equal(t, 6, assign.Value.Pos())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"unknown top level", "foo Bar {}", "expected 'component'"},
		{"missing field type", "struct P { x }", "expected ':'"},
		{"bad type", "struct P { x: 1 }", "expected one of"},
		{"static without semicolon", "static int x = 1", "expected ';'"},
		{"static without value", "static int x;", "expected '='"},
		{"keyword as system name", "system run() {}", "system name"},
		{"unknown call", "system s() { foo(1); }", "unknown function 'foo'"},
		{"assign to literal", "system s() { 1 = 2; }", "cannot assign"},
		{"assign to call", "system s() { Clone(a) = 2; }", "cannot assign"},
		{"missing semicolon", "system s() { a = 1 }", "expected ';'"},
		{"resource filter arity", "system s(resource(Clock a, Clock b)) {}", "exactly one argument"},
		{"empty resource filter", "system s(resource()) {}", "exactly one argument"},
		{"bad filter", "system s(component(Pos p)) {}", "expected one of"},
		{"unclosed paren", "system s() { (1 + 2; }", "to close parenthesized"},
		{"unclosed system", "system s() { a = 1;", "unexpected end of input"},
		{"lexer error", `static string s = "abc`, "unterminated string literal"},
		{"bad field access", "system s() { a.1; }", "field name"},
		{"schedule of non identifiers", "run [1]", "expected IDENTIFIER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseStringWithError(t, tt.input)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := parseStringWithError(t, "struct P { x: int }\nstatic int x = ;")
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
	assert.Equal(t, 16, perr.Col)
	assert.Equal(t, ";", perr.Near)
}

func TestParseExprTrailingInput(t *testing.T) {
	_, err := ParseExpr("1 + 2 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected EOF")

	_, err = ParseExpr("")
	require.Error(t, err)
}

func TestPanicOnError(t *testing.T) {
	p := NewLLParser(NewLexer(strings.NewReader("struct {")))
	p.PanicOnError = true
	assert.Panics(t, func() { _ = p.Parse(&decl.FileDecl{}) })
}
