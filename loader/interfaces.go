package loader

import (
	"io"

	"github.com/panyam/ecsl/decl"
)

// Parser turns ECSL source into a file AST.
type Parser interface {
	// Parse reads from the input reader and returns the root AST node.
	// sourceName is used for context in error messages (e.g., file path).
	Parse(input io.Reader, sourceName string) (*decl.FileDecl, error)
}

// FileResolver locates and opens program sources.
type FileResolver interface {
	// Resolve returns the content of the file at path along with its
	// canonical path (used in error messages).
	Resolve(path string) (content io.ReadCloser, canonicalPath string, err error)
}
