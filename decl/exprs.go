package decl

import (
	"fmt"
	"strconv"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// Expr represents an expression node.  The set of expressions is closed: only
// types in this package implement it.
type Expr interface {
	Node
	exprNode() // Marker method for expressions
}

type ExprBase struct {
	NodeInfo
}

func (e *ExprBase) exprNode() {}

// AtomExpr is a literal primitive value.  Value holds the Go representation
// matching Type: nil for Void, bool, int64, float32, rune or string.
type AtomExpr struct {
	ExprBase
	Type  *Type
	Value any
}

func VoidAtom() *AtomExpr { return &AtomExpr{Type: VoidType} }
func BoolAtom(b bool) *AtomExpr { return &AtomExpr{Type: BoolType, Value: b} }
func IntAtom(i int64) *AtomExpr { return &AtomExpr{Type: IntType, Value: i} }
func FloatAtom(f float32) *AtomExpr { return &AtomExpr{Type: FloatType, Value: f} }
func CharAtom(c rune) *AtomExpr { return &AtomExpr{Type: CharType, Value: c} }
func StringAtom(s string) *AtomExpr { return &AtomExpr{Type: StrType, Value: s} }

func (a *AtomExpr) String() string {
	switch v := a.Value.(type) {
	case nil:
		return "void"
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case rune:
		return strconv.QuoteRune(v)
	case string:
		return strconv.Quote(v)
	}
	return fmt.Sprintf("%v", a.Value)
}

// LValueExpr is an identifier optionally followed by a chain of field names.
type LValueExpr struct {
	ExprBase
	Path []string
}

func (l *LValueExpr) String() string { return strings.Join(l.Path, ".") }

// FieldInit is a single `name: expr` entry of a struct initializer.
type FieldInit struct {
	NodeInfo
	Name  string
	Value Expr
}

func (f *FieldInit) String() string { return fmt.Sprintf("%s: %s", f.Name, f.Value) }

// StructInitExpr represents `Name { field: expr, ... }`
type StructInitExpr struct {
	ExprBase
	Name   string
	Fields []*FieldInit
}

func (s *StructInitExpr) String() string {
	if len(s.Fields) == 0 {
		return s.Name + " {}"
	}
	return fmt.Sprintf("%s { %s }", s.Name, strings.Join(gfn.Map(s.Fields, func(f *FieldInit) string { return f.String() }), ", "))
}

// ListInitExpr represents `[a, b, c]`
type ListInitExpr struct {
	ExprBase
	Items []Expr
}

func (l *ListInitExpr) String() string {
	return fmt.Sprintf("[%s]", strings.Join(gfn.Map(l.Items, func(e Expr) string { return e.String() }), ", "))
}

// AssignExpr represents `target = value`
type AssignExpr struct {
	ExprBase
	Target *LValueExpr
	Value  Expr
}

func (a *AssignExpr) String() string { return fmt.Sprintf("%s = %s", a.Target, a.Value) }

// TernaryExpr represents `cond ? then : else`
type TernaryExpr struct {
	ExprBase
	Cond Expr
	Then Expr
	Else Expr
}

func (t *TernaryExpr) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", t.Cond, t.Then, t.Else)
}

// CallExpr is a call to one of the builtins.  Only builtins can be called.
type CallExpr struct {
	ExprBase
	Builtin BuiltIn
	Args    []Expr
}

func (c *CallExpr) String() string {
	return fmt.Sprintf("%s(%s)", c.Builtin, strings.Join(gfn.Map(c.Args, func(e Expr) string { return e.String() }), ", "))
}

// BinaryExpr represents `left operator right`
type BinaryExpr struct {
	ExprBase
	Left  Expr
	Op    BinOp
	Right Expr
}

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// UnaryExpr represents `operator operand`
type UnaryExpr struct {
	ExprBase
	Op      UnOp
	Operand Expr
}

func (u *UnaryExpr) String() string { return fmt.Sprintf("%s%s", u.Op, u.Operand) }

// Helpers for building trees by hand (tests, tooling).

func Ident(path ...string) *LValueExpr {
	return &LValueExpr{Path: path}
}

func Assign(value Expr, path ...string) *AssignExpr {
	return &AssignExpr{Target: Ident(path...), Value: value}
}

func StructInit(name string, fields ...*FieldInit) *StructInitExpr {
	return &StructInitExpr{Name: name, Fields: fields}
}

func Field(name string, value Expr) *FieldInit {
	return &FieldInit{Name: name, Value: value}
}

func ListInit(items ...Expr) *ListInitExpr {
	return &ListInitExpr{Items: items}
}

func Ternary(cond, then, els Expr) *TernaryExpr {
	return &TernaryExpr{Cond: cond, Then: then, Else: els}
}

func Call(builtin BuiltIn, args ...Expr) *CallExpr {
	return &CallExpr{Builtin: builtin, Args: args}
}

func Binary(left Expr, op BinOp, right Expr) *BinaryExpr {
	return &BinaryExpr{Left: left, Op: op, Right: right}
}

func Unary(op UnOp, operand Expr) *UnaryExpr {
	return &UnaryExpr{Op: op, Operand: operand}
}
