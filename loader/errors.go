package loader

import (
	"fmt"
	"io"
	"strings"

	"github.com/panyam/ecsl/decl"
)

// LoadError is a semantic error found while building a program, tagged with
// the file and position of the offending declaration.
type LoadError struct {
	Path      string
	Line, Col int
	Err       error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %v", e.Path, e.Line, e.Col, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

type ErrorCollector struct {
	// Errors for this file
	Errors []error

	// Max errors before we stop collecting
	// 0 => no limit
	MaxErrors int

	path   string
	source []byte
}

func (f *ErrorCollector) HasErrors() bool {
	return len(f.Errors) > 0
}

// Err returns the first collected error or nil.
func (f *ErrorCollector) Err() error {
	if len(f.Errors) == 0 {
		return nil
	}
	return f.Errors[0]
}

func (f *ErrorCollector) PrintErrors(w io.Writer) {
	for _, err := range f.Errors {
		fmt.Fprintln(w, err)
	}
}

// Full reports whether MaxErrors has been reached.
func (f *ErrorCollector) Full() bool {
	return f.MaxErrors > 0 && len(f.Errors) >= f.MaxErrors
}

func (f *ErrorCollector) AddErrors(errs ...error) {
	for _, err := range errs {
		if f.Full() {
			return
		}
		f.Errors = append(f.Errors, err)
	}
}

// Add records err against the position of node.  Always returns false so
// checks can be written as `return c.Add(node, err)`.
func (f *ErrorCollector) Add(node decl.Node, err error) bool {
	out := &LoadError{Path: f.path, Err: err}
	if node != nil {
		out.Line, out.Col = lineCol(f.source, node.Pos())
	}
	f.AddErrors(out)
	return false
}

func (f *ErrorCollector) Errorf(node decl.Node, format string, args ...any) bool {
	return f.Add(node, fmt.Errorf(format, args...))
}

// lineCol converts a byte offset into a 1-based line and rune column.
func lineCol(source []byte, pos int) (line, col int) {
	if pos < 0 || pos > len(source) {
		return 0, 0
	}
	before := string(source[:pos])
	line = strings.Count(before, "\n") + 1
	lastNL := strings.LastIndexByte(before, '\n')
	col = len([]rune(before[lastNL+1:])) + 1
	return
}
