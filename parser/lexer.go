package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Ensure EOF is defined
const eof = 0

// Token kinds
const (
	IDENTIFIER = iota + 1
	INT_LITERAL
	FLOAT_LITERAL
	CHAR_LITERAL
	STRING_LITERAL
	BOOL_LITERAL
	VOID_LITERAL

	// Keywords
	COMPONENT
	RESOURCE
	STRUCT
	STATIC
	SYSTEM
	ENTITY
	CONST
	INIT
	RUN
	TYPE_KEYWORD // int, float, bool, char, string, void (in type position)

	// Punctuation
	LBRACE
	RBRACE
	LPAREN
	RPAREN
	LSQUARE
	RSQUARE
	COMMA
	SEMICOLON
	COLON
	DOT
	QUESTION
	ASSIGN

	// Operators
	OR
	AND
	BITOR
	XOR
	BITAND
	EQ
	NEQ
	LT
	LTE
	GT
	GTE
	SHL
	SHR
	PLUS
	MINUS
	MUL
	DIV
	MOD
	NOT
	BITNOT
)

var tokenNames = map[int]string{
	eof:            "EOF",
	IDENTIFIER:     "IDENTIFIER",
	INT_LITERAL:    "INT_LITERAL",
	FLOAT_LITERAL:  "FLOAT_LITERAL",
	CHAR_LITERAL:   "CHAR_LITERAL",
	STRING_LITERAL: "STRING_LITERAL",
	BOOL_LITERAL:   "BOOL_LITERAL",
	VOID_LITERAL:   "void",
	COMPONENT:      "component",
	RESOURCE:       "resource",
	STRUCT:         "struct",
	STATIC:         "static",
	SYSTEM:         "system",
	ENTITY:         "entity",
	CONST:          "const",
	INIT:           "init",
	RUN:            "run",
	TYPE_KEYWORD:   "TYPE",
	LBRACE:         "'{'",
	RBRACE:         "'}'",
	LPAREN:         "'('",
	RPAREN:         "')'",
	LSQUARE:        "'['",
	RSQUARE:        "']'",
	COMMA:          "','",
	SEMICOLON:      "';'",
	COLON:          "':'",
	DOT:            "'.'",
	QUESTION:       "'?'",
	ASSIGN:         "'='",
	OR:             "'||'",
	AND:            "'&&'",
	BITOR:          "'|'",
	XOR:            "'^'",
	BITAND:         "'&'",
	EQ:             "'=='",
	NEQ:            "'!='",
	LT:             "'<'",
	LTE:            "'<='",
	GT:             "'>'",
	GTE:            "'>='",
	SHL:            "'<<'",
	SHR:            "'>>'",
	PLUS:           "'+'",
	MINUS:          "'-'",
	MUL:            "'*'",
	DIV:            "'/'",
	MOD:            "'%'",
	NOT:            "'!'",
	BITNOT:         "'~'",
}

// TokenString returns a printable name for a token kind.
func TokenString(tok int) string {
	if s, ok := tokenNames[tok]; ok {
		return s
	}
	return fmt.Sprintf("<token %d>", tok)
}

var keywords = map[string]int{
	"component": COMPONENT,
	"resource":  RESOURCE,
	"struct":    STRUCT,
	"static":    STATIC,
	"system":    SYSTEM,
	"entity":    ENTITY,
	"const":     CONST,
	"init":      INIT,
	"run":       RUN,
	"true":      BOOL_LITERAL,
	"false":     BOOL_LITERAL,
	"void":      VOID_LITERAL,
	"int":       TYPE_KEYWORD,
	"float":     TYPE_KEYWORD,
	"bool":      TYPE_KEYWORD,
	"char":      TYPE_KEYWORD,
	"string":    TYPE_KEYWORD,
}

// SymType is the semantic value of a token.
type SymType struct {
	Pos   int    // Start byte offset
	End   int    // End byte offset
	Text  string // Raw text (string and char literals without quotes)
	Value any    // Parsed value of literals
}

// Error is a lexing or parsing error with the position of the offending token.
type Error struct {
	Line, Col int
	Near      string
	Msg       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("Error at Line %d, Col %d near '%s': %s", e.Line, e.Col, e.Near, e.Msg)
}

// Lexer structure
type Lexer struct {
	lookaheadRunes  []rune
	lookaheadWidths []int
	reader          *bufio.Reader
	buf             bytes.Buffer // Temporary buffer for scanned text
	pos             int          // Current byte offset from the beginning of the input
	lastError       error

	// Position tracking for the current token
	tokenStartPos  int    // Byte offset where the current token started
	tokenStartLine int    // Line number (1-based) where the current token started
	tokenStartCol  int    // Column number (rune-based, 1-based) where the current token started
	tokenText      string // Raw text of the current token

	// Current line and column (rune-based) in the input
	line int
	col  int
}

// NewLexer creates a new lexer instance
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{
		reader: bufio.NewReader(r),
		pos:    0,
		line:   1,
		col:    1,
	}
}

// Error records an error at the current token.  Only the first error is
// kept.
func (l *Lexer) Error(s string) {
	if l.lastError != nil {
		return
	}
	l.lastError = &Error{Line: l.tokenStartLine, Col: l.tokenStartCol, Near: l.tokenText, Msg: s}
}

// LastError returns the first error seen, if any.
func (l *Lexer) LastError() error {
	return l.lastError
}

// Pos returns the start byte offset of the most recently lexed token.
func (l *Lexer) Pos() int {
	return l.tokenStartPos
}

// End returns the end byte offset (current position) after lexing the most recent token.
func (l *Lexer) End() int {
	return l.pos
}

// Text returns the raw text of the most recently lexed token.
func (l *Lexer) Text() string {
	return l.tokenText
}

// Position returns the line and column of the most recently lexed token.
func (l *Lexer) Position() (line, col int) {
	return l.tokenStartLine, l.tokenStartCol
}

// --- Rune Reading Helpers (with line/col tracking) ---
func (l *Lexer) read() (r rune, width int) {
	if l.peek() == eof {
		return eof, 0
	}
	r, width = l.lookaheadRunes[0], l.lookaheadWidths[0]
	l.lookaheadRunes, l.lookaheadWidths = l.lookaheadRunes[1:], l.lookaheadWidths[1:]
	l.updatePosition(r, width)
	return r, width
}

func (l *Lexer) updatePosition(r rune, width int) {
	l.pos += width
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *Lexer) peekN(nthchar int) rune {
	l.ensureLookAhead(nthchar + 1)
	if nthchar >= len(l.lookaheadRunes) {
		return eof
	}
	return l.lookaheadRunes[nthchar]
}

func (l *Lexer) peek() rune {
	return l.peekN(0)
}

// ensureLookAhead buffers up to numchars runes and returns how many are
// buffered.
func (l *Lexer) ensureLookAhead(numchars int) int {
	for len(l.lookaheadRunes) < numchars {
		r, width, err := l.reader.ReadRune()
		if err != nil {
			break
		}
		l.lookaheadRunes = append(l.lookaheadRunes, r)
		l.lookaheadWidths = append(l.lookaheadWidths, width)
	}
	return len(l.lookaheadRunes)
}

// hasPrefix reports whether the upcoming runes spell prefix, consuming them
// if asked to.
func (l *Lexer) hasPrefix(prefix string, consume bool) bool {
	runes := []rune(prefix)
	if l.ensureLookAhead(len(runes)) < len(runes) {
		return false
	}
	for i, r := range runes {
		if l.lookaheadRunes[i] != r {
			return false
		}
	}
	if consume {
		for range runes {
			l.read()
		}
	}
	return true
}

func (l *Lexer) readTill(stop rune, skip bool) (foundeof bool) {
	for {
		r := l.peek()
		if r == eof {
			return true
		}
		if r == stop {
			if skip {
				l.read()
			}
			return false
		}
		l.read()
	}
}

// --- Scanning Functions ---
func (l *Lexer) skipWhitespace() bool {
	for {
		firstChar := l.peek()
		if firstChar == eof {
			return true
		}
		if unicode.IsSpace(firstChar) {
			l.read()
		} else if l.hasPrefix("//", true) {
			l.readTill('\n', true)
		} else if l.hasPrefix("/*", true) {
			for {
				if l.hasPrefix("*/", true) {
					break
				}
				if r, _ := l.read(); r == eof {
					l.Error("unterminated block comment")
					return true
				}
			}
		} else {
			return false
		}
	}
}

func (l *Lexer) scanIdentifierOrKeyword() (tok int, text string) {
	l.buf.Reset()
	for r := l.peek(); r != eof && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'); r = l.peek() {
		l.read()
		l.buf.WriteRune(r)
	}
	text = l.buf.String()
	if kw, ok := keywords[text]; ok {
		return kw, text
	}
	return IDENTIFIER, text
}

// Numbers are digits with an optional fraction ("1.5") and exponent
// ("1e3", "2.5e-2").  Anything with a fraction or exponent is a float.
func (l *Lexer) scanNumber() (tok int, text string) {
	l.buf.Reset()
	tok = INT_LITERAL
	for r := l.peek(); r != eof; r = l.peek() {
		if unicode.IsDigit(r) {
			l.read()
			l.buf.WriteRune(r)
		} else if r == '.' && tok == INT_LITERAL && unicode.IsDigit(l.peekN(1)) {
			l.read()
			tok = FLOAT_LITERAL
			l.buf.WriteRune(r)
		} else if r == 'e' || r == 'E' {
			next := l.peekN(1)
			skip := 1
			if next == '+' || next == '-' {
				next = l.peekN(2)
				skip = 2
			}
			if !unicode.IsDigit(next) {
				break
			}
			for range skip {
				r, _ := l.read()
				l.buf.WriteRune(r)
			}
			tok = FLOAT_LITERAL
		} else {
			break
		}
	}
	return tok, l.buf.String()
}

// scanEscape reads the rune after a backslash.
func (l *Lexer) scanEscape(quote rune) rune {
	esc, _ := l.read()
	switch esc {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	case '\\', quote:
		return esc
	case eof:
		l.Error("unterminated literal after escape")
		return eof
	}
	l.Error(fmt.Sprintf("invalid escape sequence \\%c", esc))
	return esc
}

// Undecodable bytes come back from ReadRune as a one byte RuneError.  A
// literal U+FFFD in the source is three bytes wide.
func invalidUTF8(r rune, width int) bool {
	return r == utf8.RuneError && width == 1
}

func (l *Lexer) scanString() (tok int, content string) {
	l.buf.Reset()
	l.read() // Consume opening '"'
	for {
		r, width := l.read()
		if r == eof {
			l.Error("unterminated string literal")
			return eof, ""
		}
		if invalidUTF8(r, width) {
			l.Error("invalid UTF-8 in string literal")
			return eof, ""
		}
		if r == '"' {
			break
		}
		if r == '\\' {
			r = l.scanEscape('"')
		}
		l.buf.WriteRune(r)
	}
	return STRING_LITERAL, l.buf.String()
}

func (l *Lexer) scanChar() (tok int, value rune) {
	l.read() // Consume opening '\''
	r, width := l.read()
	if invalidUTF8(r, width) {
		l.Error("invalid UTF-8 in char literal")
		return eof, 0
	}
	switch r {
	case eof, '\n':
		l.Error("unterminated char literal")
		return eof, 0
	case '\'':
		l.Error("empty char literal")
		return eof, 0
	case '\\':
		r = l.scanEscape('\'')
	}
	if closing, _ := l.read(); closing != '\'' {
		l.Error("char literal must hold exactly one character")
		return eof, 0
	}
	return CHAR_LITERAL, r
}

// Operators, longest first
var operators = []struct {
	text string
	tok  int
}{
	{"||", OR}, {"&&", AND}, {"==", EQ}, {"!=", NEQ}, {"<=", LTE}, {">=", GTE}, {"<<", SHL}, {">>", SHR},
	{"|", BITOR}, {"^", XOR}, {"&", BITAND}, {"<", LT}, {">", GT}, {"+", PLUS}, {"-", MINUS},
	{"*", MUL}, {"/", DIV}, {"%", MOD}, {"!", NOT}, {"~", BITNOT}, {"=", ASSIGN},
	{"{", LBRACE}, {"}", RBRACE}, {"(", LPAREN}, {")", RPAREN}, {"[", LSQUARE}, {"]", RSQUARE},
	{",", COMMA}, {";", SEMICOLON}, {":", COLON}, {".", DOT}, {"?", QUESTION},
}

// Lex is the main lexing function called by the parser.  It returns the token
// kind (eof at the end of input or on error) and fills lval.
func (l *Lexer) Lex(lval *SymType) int {
	*lval = SymType{}
	if l.skipWhitespace() {
		lval.Pos, lval.End = l.pos, l.pos
		return eof
	}

	l.tokenStartPos = l.pos
	l.tokenStartLine = l.line
	l.tokenStartCol = l.col
	l.tokenText = ""
	lval.Pos = l.pos

	tok := l.lexToken(lval)
	lval.End = l.pos
	if lval.Text == "" {
		lval.Text = l.tokenText
	}
	return tok
}

func (l *Lexer) lexToken(lval *SymType) int {
	r := l.peek()

	if unicode.IsLetter(r) || r == '_' {
		tok, text := l.scanIdentifierOrKeyword()
		l.tokenText = text
		if tok == BOOL_LITERAL {
			lval.Value = text == "true"
		}
		return tok
	}

	if unicode.IsDigit(r) {
		tok, text := l.scanNumber()
		l.tokenText = text
		if tok == INT_LITERAL {
			v, err := strconv.ParseInt(text, 10, 64)
			if err != nil {
				l.Error(fmt.Sprintf("invalid integer: %s", text))
				return eof
			}
			lval.Value = v
		} else {
			v, err := strconv.ParseFloat(text, 32)
			if err != nil {
				l.Error(fmt.Sprintf("invalid float: %s", text))
				return eof
			}
			lval.Value = float32(v)
		}
		return tok
	}

	if r == '"' {
		tok, content := l.scanString()
		l.tokenText = strconv.Quote(content)
		lval.Text, lval.Value = content, content
		return tok
	}

	if r == '\'' {
		tok, value := l.scanChar()
		l.tokenText = strconv.QuoteRune(value)
		lval.Text, lval.Value = string(value), value
		return tok
	}

	for _, op := range operators {
		if l.hasPrefix(op.text, true) {
			l.tokenText = op.text
			return op.tok
		}
	}

	l.tokenText = string(r)
	l.Error(fmt.Sprintf("unexpected character '%c'", r))
	return eof // Indicate an error that should halt parsing
}
