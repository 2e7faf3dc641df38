package runtime

import (
	"errors"
)

// Evaluation errors.  They are always wrapped with context so callers should
// test for them with errors.Is.
var (
	ErrUndefinedName           = errors.New("undefined name")
	ErrNotAStruct              = errors.New("not a struct")
	ErrUnknownField            = errors.New("unknown field")
	ErrFieldAlreadyInitialized = errors.New("field already initialized")
	ErrFieldCountMismatch      = errors.New("field count mismatch")
	ErrCannotReassignStruct    = errors.New("cannot reassign struct")
	ErrTypeMismatch            = errors.New("type mismatch")
	ErrNonBooleanCondition     = errors.New("non boolean condition")
	ErrArityMismatch           = errors.New("arity mismatch")
	ErrInvalidOperator         = errors.New("invalid operator")
	ErrDivisionByZero          = errors.New("division by zero")
	ErrConstBinding            = errors.New("cannot assign to const binding")
	ErrNoHost                  = errors.New("builtin requires an ECS world")
	ErrDuplicateName           = errors.New("duplicate name")
)
