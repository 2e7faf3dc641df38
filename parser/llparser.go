package parser

import (
	"fmt"
	"strings"

	"github.com/panyam/ecsl/decl"
	gfn "github.com/panyam/goutils/fn"
)

type LLParser struct {
	lexer            *Lexer
	peekedTokenValue *SymType
	peekedToken      int

	PanicOnError bool
}

func NewLLParser(lexer *Lexer) *LLParser {
	return &LLParser{lexer: lexer}
}

// Parse reads top level declarations until the end of input.
func (p *LLParser) Parse(file *decl.FileDecl) (err error) {
	for {
		var node decl.Node
		switch p.PeekToken() {
		case eof:
			file.StopPos = p.peekedTokenValue.End
			return p.lexer.LastError()
		case SEMICOLON:
			p.Advance()
			continue
		case COMPONENT, RESOURCE, STRUCT:
			node, err = p.ParseShapeDecl()
		case STATIC:
			node, err = p.ParseStaticDecl()
		case SYSTEM:
			node, err = p.ParseSystemDecl()
		case INIT, RUN:
			node, err = p.ParseScheduleDecl()
		default:
			return p.Errorf("expected 'component', 'resource', 'struct', 'static', 'system', 'init' or 'run', found: %s (%s)",
				TokenString(p.PeekToken()), p.lexer.Text())
		}
		if err != nil {
			return err
		}
		file.Declarations = append(file.Declarations, node)
	}
}

func (p *LLParser) Errorf(format string, args ...any) error {
	p.lexer.Error(fmt.Sprintf(format, args...))
	if p.PanicOnError {
		panic(p.lexer.lastError)
	}
	return p.lexer.lastError
}

func (p *LLParser) Advance() int {
	p.PeekToken()
	last := p.peekedToken
	p.peekedTokenValue = nil
	p.peekedToken = -1
	return last
}

func (p *LLParser) PeekToken() int {
	if p.peekedTokenValue == nil {
		p.peekedTokenValue = &SymType{}
		p.peekedToken = p.lexer.Lex(p.peekedTokenValue)
	}
	return p.peekedToken
}

// Expect checks if the current peeked token is one of the expected tokens.
// It does NOT advance.
func (p *LLParser) Expect(tokensIn ...int) (foundToken int, err error) {
	peekedToken := p.PeekToken()
	for _, tok := range tokensIn {
		if tok == peekedToken {
			return tok, nil
		}
	}
	if err := p.lexer.LastError(); err != nil {
		return -1, err
	}
	var errMsg string
	if len(tokensIn) == 1 {
		errMsg = fmt.Sprintf("expected %s, found: %s", TokenString(tokensIn[0]), TokenString(peekedToken))
	} else {
		expectedStrings := gfn.Map(tokensIn, func(t int) string { return TokenString(t) })
		errMsg = fmt.Sprintf("expected one of: [%s], found: %s", strings.Join(expectedStrings, ", "), TokenString(peekedToken))
	}
	if p.lexer.Text() != "" {
		errMsg = fmt.Sprintf("%s (%s)", errMsg, p.lexer.Text())
	}
	return -1, p.Errorf("%s", errMsg)
}

// AdvanceIf expects one of the given tokens and advances if found.
// Returns the matched token type and its semantic value.
func (p *LLParser) AdvanceIf(tokensIn ...int) (foundToken int, tokenValue *SymType, err error) {
	if _, err = p.Expect(tokensIn...); err != nil {
		return -1, nil, err
	}
	foundToken = p.peekedToken
	tokenValue = p.peekedTokenValue
	p.Advance()
	return
}

// ParseIdentifier consumes an identifier and returns its name.
func (p *LLParser) ParseIdentifier() (name string, tok *SymType, err error) {
	if _, tok, err = p.AdvanceIf(IDENTIFIER); err != nil {
		return "", nil, err
	}
	return tok.Text, tok, nil
}

// ParseShapeDecl parses a struct, component or resource declaration.
// Grammar: (COMPONENT | RESOURCE | STRUCT) IDENTIFIER LBRACE FieldListOpt RBRACE
func (p *LLParser) ParseShapeDecl() (out *decl.ShapeDecl, err error) {
	kwTok, kwVal, err := p.AdvanceIf(COMPONENT, RESOURCE, STRUCT)
	if err != nil {
		return nil, err
	}
	out = &decl.ShapeDecl{Kind: map[int]decl.ShapeKind{
		COMPONENT: decl.ShapeComponent,
		RESOURCE:  decl.ShapeResource,
		STRUCT:    decl.ShapeStruct,
	}[kwTok]}

	if out.Name, _, err = p.ParseIdentifier(); err != nil {
		return nil, err
	}
	if _, _, err = p.AdvanceIf(LBRACE); err != nil {
		return nil, err
	}
	for p.PeekToken() != RBRACE {
		name, nameTok, err := p.ParseIdentifier()
		if err != nil {
			return nil, err
		}
		if _, _, err = p.AdvanceIf(COLON); err != nil {
			return nil, err
		}
		fieldType, err := p.ParseType()
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, &decl.FieldDecl{
			NodeInfo: decl.NewNodeInfo(nameTok.Pos, p.lexer.End()),
			Name:     name,
			Type:     fieldType,
		})
		if p.PeekToken() != COMMA {
			break
		}
		p.Advance()
	}
	_, rbrace, err := p.AdvanceIf(RBRACE)
	if err != nil {
		return nil, err
	}
	out.NodeInfo = decl.NewNodeInfo(kwVal.Pos, rbrace.End)
	return out, nil
}

// ParseType parses a type reference.
// Grammar: TYPE_KEYWORD | VOID | IDENTIFIER | LSQUARE Type RSQUARE
func (p *LLParser) ParseType() (*decl.Type, error) {
	tok, val, err := p.AdvanceIf(TYPE_KEYWORD, VOID_LITERAL, IDENTIFIER, LSQUARE)
	if err != nil {
		return nil, err
	}
	switch tok {
	case TYPE_KEYWORD, VOID_LITERAL:
		return decl.PrimitiveType(val.Text), nil
	case IDENTIFIER:
		return decl.NamedType(val.Text), nil
	}
	elem, err := p.ParseType()
	if err != nil {
		return nil, err
	}
	if _, _, err = p.AdvanceIf(RSQUARE); err != nil {
		return nil, err
	}
	return decl.ListType(elem), nil
}

// ParseStaticDecl parses a static.
// Grammar: STATIC Type IDENTIFIER ASSIGN Expression SEMICOLON
func (p *LLParser) ParseStaticDecl() (out *decl.StaticDecl, err error) {
	_, kwVal, err := p.AdvanceIf(STATIC)
	if err != nil {
		return nil, err
	}
	out = &decl.StaticDecl{}
	if out.Type, err = p.ParseType(); err != nil {
		return nil, err
	}
	if out.Name, _, err = p.ParseIdentifier(); err != nil {
		return nil, err
	}
	if _, _, err = p.AdvanceIf(ASSIGN); err != nil {
		return nil, err
	}
	if out.Value, err = p.ParseExpression(); err != nil {
		return nil, err
	}
	_, semi, err := p.AdvanceIf(SEMICOLON)
	if err != nil {
		return nil, err
	}
	out.NodeInfo = decl.NewNodeInfo(kwVal.Pos, semi.End)
	return out, nil
}

// ParseSystemDecl parses a system declaration.
// Grammar: SYSTEM IDENTIFIER LPAREN FilterListOpt RPAREN LBRACE { Expression SEMICOLON } RBRACE
func (p *LLParser) ParseSystemDecl() (out *decl.SystemDecl, err error) {
	_, kwVal, err := p.AdvanceIf(SYSTEM)
	if err != nil {
		return nil, err
	}
	out = &decl.SystemDecl{}
	if p.PeekToken() != IDENTIFIER {
		return nil, p.Errorf("expected identifier for system name, found %s (%s)", TokenString(p.PeekToken()), p.lexer.Text())
	}
	out.Name = p.peekedTokenValue.Text
	p.Advance()

	if _, _, err = p.AdvanceIf(LPAREN); err != nil {
		return nil, err
	}
	for p.PeekToken() != RPAREN {
		filter, err := p.ParseFilter()
		if err != nil {
			return nil, err
		}
		out.Filters = append(out.Filters, filter)
		if p.PeekToken() != COMMA {
			break
		}
		p.Advance()
	}
	if _, _, err = p.AdvanceIf(RPAREN); err != nil {
		return nil, err
	}

	if p.PeekToken() != LBRACE {
		return nil, p.Errorf("expected '{' after system '%s' filters, found %s (%s)", out.Name, TokenString(p.PeekToken()), p.lexer.Text())
	}
	p.Advance()
	for p.PeekToken() != RBRACE {
		if p.PeekToken() == SEMICOLON {
			p.Advance()
			continue
		}
		if p.PeekToken() == eof {
			return nil, p.Errorf("unexpected end of input in system '%s'", out.Name)
		}
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if _, _, err = p.AdvanceIf(SEMICOLON); err != nil {
			return nil, err
		}
		out.Body = append(out.Body, expr)
	}
	_, rbrace, err := p.AdvanceIf(RBRACE)
	if err != nil {
		return nil, err
	}
	out.NodeInfo = decl.NewNodeInfo(kwVal.Pos, rbrace.End)
	return out, nil
}

// ParseFilter parses one system filter.
// Grammar: ENTITY [IDENTIFIER] LPAREN ArgListOpt RPAREN | RESOURCE LPAREN Arg RPAREN
func (p *LLParser) ParseFilter() (out *decl.Filter, err error) {
	tok, kwVal, err := p.AdvanceIf(ENTITY, RESOURCE)
	if err != nil {
		return nil, err
	}
	out = &decl.Filter{Kind: decl.FilterEntity}
	if tok == RESOURCE {
		out.Kind = decl.FilterResource
	} else if p.PeekToken() == IDENTIFIER {
		out.Name = p.peekedTokenValue.Text
		p.Advance()
	}
	if _, _, err = p.AdvanceIf(LPAREN); err != nil {
		return nil, err
	}
	for p.PeekToken() != RPAREN {
		arg, err := p.ParseArgument()
		if err != nil {
			return nil, err
		}
		out.Args = append(out.Args, arg)
		if p.PeekToken() != COMMA {
			break
		}
		p.Advance()
	}
	if out.Kind == decl.FilterResource && len(out.Args) != 1 {
		return nil, p.Errorf("resource filter takes exactly one argument")
	}
	_, rparen, err := p.AdvanceIf(RPAREN)
	if err != nil {
		return nil, err
	}
	out.NodeInfo = decl.NewNodeInfo(kwVal.Pos, rparen.End)
	return out, nil
}

// ParseArgument parses a filter argument.
// Grammar: [CONST] Type IDENTIFIER
func (p *LLParser) ParseArgument() (out *decl.Argument, err error) {
	out = &decl.Argument{}
	p.PeekToken()
	start := p.peekedTokenValue.Pos
	if p.PeekToken() == CONST {
		out.IsConst = true
		p.Advance()
	}
	if out.Type, err = p.ParseType(); err != nil {
		return nil, err
	}
	var nameTok *SymType
	if out.Name, nameTok, err = p.ParseIdentifier(); err != nil {
		return nil, err
	}
	out.NodeInfo = decl.NewNodeInfo(start, nameTok.End)
	return out, nil
}

// ParseScheduleDecl parses an init or run list.
// Grammar: (INIT | RUN) LSQUARE IdentListOpt RSQUARE
func (p *LLParser) ParseScheduleDecl() (out *decl.ScheduleDecl, err error) {
	tok, kwVal, err := p.AdvanceIf(INIT, RUN)
	if err != nil {
		return nil, err
	}
	out = &decl.ScheduleDecl{Kind: decl.ScheduleInit, Systems: []string{}}
	if tok == RUN {
		out.Kind = decl.ScheduleRun
	}
	if _, _, err = p.AdvanceIf(LSQUARE); err != nil {
		return nil, err
	}
	for p.PeekToken() != RSQUARE {
		name, _, err := p.ParseIdentifier()
		if err != nil {
			return nil, err
		}
		out.Systems = append(out.Systems, name)
		if p.PeekToken() != COMMA {
			break
		}
		p.Advance()
	}
	_, rsquare, err := p.AdvanceIf(RSQUARE)
	if err != nil {
		return nil, err
	}
	out.NodeInfo = decl.NewNodeInfo(kwVal.Pos, rsquare.End)
	return out, nil
}

// --- Expressions ---

// ParseExpression is the entry point for parsing any expression.
// Grammar: Ternary [ ASSIGN Expression ]
// Assignment is right associative and its target must be a path.
func (p *LLParser) ParseExpression() (decl.Expr, error) {
	left, err := p.ParseTernaryExpr()
	if err != nil {
		return nil, err
	}
	if p.PeekToken() != ASSIGN {
		return left, nil
	}
	target, ok := left.(*decl.LValueExpr)
	if !ok {
		return nil, p.Errorf("cannot assign to %s", left)
	}
	p.Advance()
	value, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	out := &decl.AssignExpr{Target: target, Value: value}
	out.NodeInfo = decl.NewNodeInfo(target.Pos(), value.End())
	return out, nil
}

// TernaryExpr: OrExpr [ QUESTION Expression COLON TernaryExpr ]
func (p *LLParser) ParseTernaryExpr() (decl.Expr, error) {
	cond, err := p.ParseOrExpr()
	if err != nil {
		return nil, err
	}
	if p.PeekToken() != QUESTION {
		return cond, nil
	}
	p.Advance()
	then, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if _, _, err = p.AdvanceIf(COLON); err != nil {
		return nil, err
	}
	els, err := p.ParseTernaryExpr()
	if err != nil {
		return nil, err
	}
	out := decl.Ternary(cond, then, els)
	out.NodeInfo = decl.NewNodeInfo(cond.Pos(), els.End())
	return out, nil
}

// Binary operators by precedence level, lowest first
var (
	orOps     = map[int]decl.BinOp{OR: decl.OpOr}
	andOps    = map[int]decl.BinOp{AND: decl.OpAnd}
	bitOrOps  = map[int]decl.BinOp{BITOR: decl.OpBitOr}
	xorOps    = map[int]decl.BinOp{XOR: decl.OpXor}
	bitAndOps = map[int]decl.BinOp{BITAND: decl.OpBitAnd}
	eqOps     = map[int]decl.BinOp{EQ: decl.OpEq, NEQ: decl.OpNeq}
	cmpOps    = map[int]decl.BinOp{LT: decl.OpLt, LTE: decl.OpLeq, GT: decl.OpGt, GTE: decl.OpGeq}
	shiftOps  = map[int]decl.BinOp{SHL: decl.OpShl, SHR: decl.OpShr}
	addOps    = map[int]decl.BinOp{PLUS: decl.OpAdd, MINUS: decl.OpSub}
	mulOps    = map[int]decl.BinOp{MUL: decl.OpMul, DIV: decl.OpDiv, MOD: decl.OpMod}
)

// Generic helper for parsing left-associative binary expressions for a given precedence level.
func (p *LLParser) parseBinaryExpr(
	parseHigherPrecedenceOperand func() (decl.Expr, error),
	operators map[int]decl.BinOp) (decl.Expr, error) {

	left, err := parseHigherPrecedenceOperand()
	if err != nil {
		return nil, err
	}

	for {
		opToken := p.PeekToken()
		op, ok := operators[opToken]
		if !ok {
			break
		}
		p.Advance()

		right, err := parseHigherPrecedenceOperand()
		if err != nil {
			return nil, err
		}
		bin := decl.Binary(left, op, right)
		bin.NodeInfo = decl.NewNodeInfo(left.Pos(), right.End())
		left = bin
	}
	return left, nil
}

func (p *LLParser) ParseOrExpr() (decl.Expr, error) {
	return p.parseBinaryExpr(p.ParseAndExpr, orOps)
}

func (p *LLParser) ParseAndExpr() (decl.Expr, error) {
	return p.parseBinaryExpr(p.ParseBitOrExpr, andOps)
}

func (p *LLParser) ParseBitOrExpr() (decl.Expr, error) {
	return p.parseBinaryExpr(p.ParseXorExpr, bitOrOps)
}

func (p *LLParser) ParseXorExpr() (decl.Expr, error) {
	return p.parseBinaryExpr(p.ParseBitAndExpr, xorOps)
}

func (p *LLParser) ParseBitAndExpr() (decl.Expr, error) {
	return p.parseBinaryExpr(p.ParseEqExpr, bitAndOps)
}

func (p *LLParser) ParseEqExpr() (decl.Expr, error) {
	return p.parseBinaryExpr(p.ParseCmpExpr, eqOps)
}

func (p *LLParser) ParseCmpExpr() (decl.Expr, error) {
	return p.parseBinaryExpr(p.ParseShiftExpr, cmpOps)
}

func (p *LLParser) ParseShiftExpr() (decl.Expr, error) {
	return p.parseBinaryExpr(p.ParseAddExpr, shiftOps)
}

func (p *LLParser) ParseAddExpr() (decl.Expr, error) {
	return p.parseBinaryExpr(p.ParseMulExpr, addOps)
}

func (p *LLParser) ParseMulExpr() (decl.Expr, error) {
	return p.parseBinaryExpr(p.ParseUnaryExpr, mulOps)
}

var unaryOps = map[int]decl.UnOp{PLUS: decl.OpPos, MINUS: decl.OpNeg, NOT: decl.OpNot, BITNOT: decl.OpBitNot}

// UnaryExpr: (PLUS | MINUS | NOT | BITNOT) UnaryExpr | PrimaryExpr
func (p *LLParser) ParseUnaryExpr() (decl.Expr, error) {
	op, ok := unaryOps[p.PeekToken()]
	if !ok {
		return p.ParsePrimaryExpr()
	}
	start := p.peekedTokenValue.Pos
	p.Advance()
	operand, err := p.ParseUnaryExpr()
	if err != nil {
		return nil, err
	}
	out := decl.Unary(op, operand)
	out.NodeInfo = decl.NewNodeInfo(start, operand.End())
	return out, nil
}

// PrimaryExpr: Literal
//
//	| IDENTIFIER { DOT IDENTIFIER }
//	| IDENTIFIER LBRACE FieldInitListOpt RBRACE
//	| BUILTIN LPAREN ExprListOpt RPAREN
//	| LSQUARE ExprListOpt RSQUARE
//	| LPAREN Expression RPAREN
func (p *LLParser) ParsePrimaryExpr() (expr decl.Expr, err error) {
	peeked := p.PeekToken()
	startTok := p.peekedTokenValue

	switch peeked {
	case INT_LITERAL, FLOAT_LITERAL, CHAR_LITERAL, STRING_LITERAL, BOOL_LITERAL, VOID_LITERAL:
		return p.ParseLiteralExpr()

	case LSQUARE:
		p.Advance()
		items, err := p.parseExprList(RSQUARE)
		if err != nil {
			return nil, err
		}
		_, rsquare, err := p.AdvanceIf(RSQUARE)
		if err != nil {
			return nil, err
		}
		out := decl.ListInit(items...)
		out.NodeInfo = decl.NewNodeInfo(startTok.Pos, rsquare.End)
		return out, nil

	case LPAREN:
		p.Advance()
		inner, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if p.PeekToken() != RPAREN {
			return nil, p.Errorf("expected ')' to close parenthesized expression, found %s (%s)", TokenString(p.PeekToken()), p.lexer.Text())
		}
		p.Advance()
		return inner, nil

	case IDENTIFIER:
		p.Advance()
		switch p.PeekToken() {
		case LPAREN:
			return p.parseCall(startTok)
		case LBRACE:
			return p.parseStructInit(startTok)
		}
		out := decl.Ident(startTok.Text)
		end := startTok.End
		for p.PeekToken() == DOT {
			p.Advance()
			if p.PeekToken() != IDENTIFIER {
				return nil, p.Errorf("expected field name after '.', found %s (%s)", TokenString(p.PeekToken()), p.lexer.Text())
			}
			out.Path = append(out.Path, p.peekedTokenValue.Text)
			end = p.peekedTokenValue.End
			p.Advance()
		}
		out.NodeInfo = decl.NewNodeInfo(startTok.Pos, end)
		return out, nil
	}

	if err := p.lexer.LastError(); err != nil {
		return nil, err
	}
	return nil, p.Errorf("unexpected token at start of expression: %s (%s)", TokenString(peeked), p.lexer.Text())
}

func (p *LLParser) parseExprList(closing int) (out []decl.Expr, err error) {
	for p.PeekToken() != closing {
		item, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
		if p.PeekToken() != COMMA {
			break
		}
		p.Advance()
	}
	return
}

// Only builtins can be called.
func (p *LLParser) parseCall(nameTok *SymType) (decl.Expr, error) {
	builtin, ok := decl.LookupBuiltIn(nameTok.Text)
	if !ok {
		return nil, p.Errorf("unknown function '%s', only Clone, Spawn, Delete and Print can be called", nameTok.Text)
	}
	p.Advance() // LPAREN
	args, err := p.parseExprList(RPAREN)
	if err != nil {
		return nil, err
	}
	_, rparen, err := p.AdvanceIf(RPAREN)
	if err != nil {
		return nil, err
	}
	out := decl.Call(builtin, args...)
	out.NodeInfo = decl.NewNodeInfo(nameTok.Pos, rparen.End)
	return out, nil
}

func (p *LLParser) parseStructInit(nameTok *SymType) (decl.Expr, error) {
	p.Advance() // LBRACE
	out := decl.StructInit(nameTok.Text)
	for p.PeekToken() != RBRACE {
		name, fieldTok, err := p.ParseIdentifier()
		if err != nil {
			return nil, err
		}
		if _, _, err = p.AdvanceIf(COLON); err != nil {
			return nil, err
		}
		value, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		field := decl.Field(name, value)
		field.NodeInfo = decl.NewNodeInfo(fieldTok.Pos, value.End())
		out.Fields = append(out.Fields, field)
		if p.PeekToken() != COMMA {
			break
		}
		p.Advance()
	}
	_, rbrace, err := p.AdvanceIf(RBRACE)
	if err != nil {
		return nil, err
	}
	out.NodeInfo = decl.NewNodeInfo(nameTok.Pos, rbrace.End)
	return out, nil
}

// ParseLiteralExpr parses a literal value.
// Grammar: INT_LITERAL | FLOAT_LITERAL | CHAR_LITERAL | STRING_LITERAL | BOOL_LITERAL | VOID
func (p *LLParser) ParseLiteralExpr() (*decl.AtomExpr, error) {
	tok, val, err := p.AdvanceIf(INT_LITERAL, FLOAT_LITERAL, CHAR_LITERAL, STRING_LITERAL, BOOL_LITERAL, VOID_LITERAL)
	if err != nil {
		return nil, err
	}
	var out *decl.AtomExpr
	switch tok {
	case INT_LITERAL:
		out = decl.IntAtom(val.Value.(int64))
	case FLOAT_LITERAL:
		out = decl.FloatAtom(val.Value.(float32))
	case CHAR_LITERAL:
		out = decl.CharAtom(val.Value.(rune))
	case STRING_LITERAL:
		out = decl.StringAtom(val.Value.(string))
	case BOOL_LITERAL:
		out = decl.BoolAtom(val.Value.(bool))
	default:
		out = decl.VoidAtom()
	}
	out.NodeInfo = decl.NewNodeInfo(val.Pos, val.End)
	return out, nil
}
