package decl

import (
	"fmt"
	"strconv"
	"strings"
)

type CodePrinter interface {
	Indent(n int)
	Unindent(n int)
	Print(str string)
	Printf(fmt string, args ...any)
	Println(str string)
	String() string
}

func WithIndent(n int, cp CodePrinter, block func(cp CodePrinter)) {
	cp.Indent(n)
	defer cp.Unindent(n)
	block(cp)
}

type codePrinter struct {
	indent      int
	col         int
	builder     strings.Builder
	linebuilder strings.Builder
}

func NewCodePrinter() CodePrinter {
	return &codePrinter{}
}

func (c *codePrinter) Indent(n int) {
	c.indent += n
}

func (c *codePrinter) Unindent(n int) {
	c.indent -= n
	if c.indent < 0 {
		c.indent = 0
	}
}

// Print appends str, starting every new non-empty line at the current
// indentation.
func (c *codePrinter) Print(str string) {
	for idx, l := range strings.Split(str, "\n") {
		if idx > 0 {
			c.builder.WriteString(c.linebuilder.String())
			c.builder.WriteRune('\n')
			c.linebuilder.Reset()
			c.col = 0
		}
		if l == "" {
			continue
		}
		if c.col == 0 {
			c.linebuilder.WriteString(c.IndentString())
		}
		c.linebuilder.WriteString(l)
		c.col += len(l)
	}
}

func (c *codePrinter) Println(str string) {
	c.Print(str + "\n")
}

func (c *codePrinter) Printf(format string, args ...any) {
	c.Print(fmt.Sprintf(format, args...))
}

func (c *codePrinter) IndentString() string {
	return strings.Repeat("  ", c.indent)
}

func (c *codePrinter) String() string {
	return c.builder.String() + c.linebuilder.String()
}

// Format renders a file as canonical ECSL source.  Declarations keep their
// order and expressions only carry the parentheses they need, so parsing the
// output yields an equivalent tree.
func Format(f *FileDecl) string {
	cp := NewCodePrinter()
	var prev Node
	for _, d := range f.Declarations {
		// Blank lines separate declarations of different kinds and
		// multi-line declarations
		if prev != nil && (declGroup(prev) != declGroup(d) || isMultiLine(prev) || isMultiLine(d)) {
			cp.Println("")
		}
		FormatDecl(cp, d)
		prev = d
	}
	return cp.String()
}

// FormatDecl prints a single top level declaration.
func FormatDecl(cp CodePrinter, d Node) {
	switch d := d.(type) {
	case *ShapeDecl:
		switch len(d.Fields) {
		case 0:
			cp.Printf("%s %s {}\n", d.Kind, d.Name)
			return
		case 1:
			cp.Printf("%s %s { %s: %s }\n", d.Kind, d.Name, d.Fields[0].Name, FormatType(d.Fields[0].Type))
			return
		}
		cp.Printf("%s %s {\n", d.Kind, d.Name)
		WithIndent(1, cp, func(cp CodePrinter) {
			for _, f := range d.Fields {
				cp.Printf("%s: %s,\n", f.Name, FormatType(f.Type))
			}
		})
		cp.Println("}")
	case *StaticDecl:
		cp.Printf("static %s %s = %s;\n", FormatType(d.Type), d.Name, FormatExpr(d.Value))
	case *SystemDecl:
		filters := make([]string, len(d.Filters))
		for i, f := range d.Filters {
			filters[i] = formatFilter(f)
		}
		if len(d.Body) == 0 {
			cp.Printf("system %s(%s) {}\n", d.Name, strings.Join(filters, ", "))
			return
		}
		cp.Printf("system %s(%s) {\n", d.Name, strings.Join(filters, ", "))
		WithIndent(1, cp, func(cp CodePrinter) {
			for _, e := range d.Body {
				cp.Printf("%s;\n", FormatExpr(e))
			}
		})
		cp.Println("}")
	default:
		cp.Println(d.String())
	}
}

// FormatType renders a type the way it is written in source.
func FormatType(t *Type) string {
	switch {
	case t.IsList():
		return "[" + FormatType(t.ElementType()) + "]"
	case t.IsNamed():
		return t.ShapeName()
	case t != nil && (t.Tag == TypeTagSimple || t.Tag == TypeTagVoid):
		return strings.ToLower(t.Info.(string))
	}
	return t.String()
}

func formatFilter(f *Filter) string {
	kw := "entity"
	if f.Kind == FilterResource {
		kw = "resource"
	} else if f.Name != "" {
		kw += " " + f.Name
	}
	args := make([]string, len(f.Args))
	for i, a := range f.Args {
		args[i] = FormatType(a.Type) + " " + a.Name
		if a.IsConst {
			args[i] = "const " + args[i]
		}
	}
	return kw + "(" + strings.Join(args, ", ") + ")"
}

func declGroup(d Node) string {
	switch d.(type) {
	case *ShapeDecl:
		return "shape"
	case *StaticDecl:
		return "static"
	case *SystemDecl:
		return "system"
	}
	return "schedule"
}

func isMultiLine(d Node) bool {
	switch d := d.(type) {
	case *ShapeDecl:
		return len(d.Fields) > 1
	case *SystemDecl:
		return len(d.Body) > 0
	}
	return false
}

// Binding strength of each expression form.  Binary operators sit between
// the ternary and unary levels at 1 + their Precedence.
const (
	precAssign  = 0
	precTernary = 1
	precUnary   = 12
	precPrimary = 13
)

func exprPrecedence(e Expr) int {
	switch e := e.(type) {
	case *AssignExpr:
		return precAssign
	case *TernaryExpr:
		return precTernary
	case *BinaryExpr:
		return 1 + e.Op.Precedence()
	case *UnaryExpr:
		return precUnary
	case *AtomExpr:
		// A negative literal reads as a unary minus
		if v, ok := e.Value.(int64); ok && v < 0 {
			return precUnary
		}
		if v, ok := e.Value.(float32); ok && v < 0 {
			return precUnary
		}
	}
	return precPrimary
}

// FormatExpr renders an expression with as few parentheses as the grammar
// allows.
func FormatExpr(e Expr) string {
	var sb strings.Builder
	formatExpr(&sb, e, precAssign)
	return sb.String()
}

func formatExpr(sb *strings.Builder, e Expr, minPrec int) {
	if exprPrecedence(e) < minPrec {
		sb.WriteByte('(')
		defer sb.WriteByte(')')
	}

	switch e := e.(type) {
	case *AtomExpr:
		sb.WriteString(formatAtom(e))
	case *LValueExpr:
		sb.WriteString(e.String())
	case *AssignExpr:
		sb.WriteString(e.Target.String())
		sb.WriteString(" = ")
		formatExpr(sb, e.Value, precAssign)
	case *TernaryExpr:
		// The condition is an || level expression, the else branch may chain
		formatExpr(sb, e.Cond, precTernary+1)
		sb.WriteString(" ? ")
		formatExpr(sb, e.Then, precAssign)
		sb.WriteString(" : ")
		formatExpr(sb, e.Else, precTernary)
	case *BinaryExpr:
		prec := 1 + e.Op.Precedence()
		formatExpr(sb, e.Left, prec)
		sb.WriteString(" " + e.Op.String() + " ")
		formatExpr(sb, e.Right, prec+1)
	case *UnaryExpr:
		sb.WriteString(e.Op.String())
		formatExpr(sb, e.Operand, precUnary)
	case *CallExpr:
		sb.WriteString(e.Builtin.String())
		sb.WriteByte('(')
		formatList(sb, e.Args)
		sb.WriteByte(')')
	case *ListInitExpr:
		sb.WriteByte('[')
		formatList(sb, e.Items)
		sb.WriteByte(']')
	case *StructInitExpr:
		sb.WriteString(e.Name)
		if len(e.Fields) == 0 {
			sb.WriteString(" {}")
			return
		}
		sb.WriteString(" { ")
		for i, f := range e.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name + ": ")
			formatExpr(sb, f.Value, precAssign)
		}
		sb.WriteString(" }")
	default:
		sb.WriteString(e.String())
	}
}

func formatList(sb *strings.Builder, items []Expr) {
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		formatExpr(sb, item, precAssign)
	}
}

func formatAtom(a *AtomExpr) string {
	switch v := a.Value.(type) {
	case float32:
		s := strconv.FormatFloat(float64(v), 'g', -1, 32)
		// Floats must not read back as ints
		if !strings.ContainsAny(s, ".eEIN") {
			s += ".0"
		}
		return s
	case rune:
		return quote(string(v), '\'')
	case string:
		return quote(v, '"')
	}
	return a.String()
}

// quote uses only the escapes the lexer understands.
func quote(s string, q rune) string {
	var sb strings.Builder
	sb.WriteRune(q)
	for _, r := range s {
		switch r {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case 0:
			sb.WriteString(`\0`)
		case '\\', q:
			sb.WriteRune('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteRune(q)
	return sb.String()
}
