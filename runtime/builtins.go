package runtime

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/panyam/ecsl/decl"
)

func checkArity(c *decl.CallExpr, lo, hi int) error {
	n := len(c.Args)
	if n >= lo && (hi < 0 || n <= hi) {
		return nil
	}
	switch {
	case lo == hi:
		return fmt.Errorf("%w: %s takes %d argument(s), %d given", ErrArityMismatch, c.Builtin, lo, n)
	case hi < 0:
		return fmt.Errorf("%w: %s takes at least %d argument(s), %d given", ErrArityMismatch, c.Builtin, lo, n)
	}
	return fmt.Errorf("%w: %s takes %d to %d arguments, %d given", ErrArityMismatch, c.Builtin, lo, hi, n)
}

func (e *Evaluator) evalArgs(args []decl.Expr, scope *Scope) ([]Var, error) {
	out := make([]Var, 0, len(args))
	for _, arg := range args {
		val, err := e.Eval(arg, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

// Builtins check their arity before evaluating any argument.
//
// Clone deep copies values but duplicates entities: given an entity handle it
// spawns a copy of the entity and returns the handle of the copy.  Delete
// removes the entity the invocation is bound to, or the one given.
func (e *Evaluator) evalCall(c *decl.CallExpr, scope *Scope) (Var, error) {
	switch c.Builtin {
	case decl.BuiltInPrint:
		if err := checkArity(c, 1, 1); err != nil {
			return Void, err
		}
		val, err := e.Eval(c.Args[0], scope)
		if err != nil {
			return Void, err
		}
		if _, err := fmt.Fprintln(e.out(), val.String()); err != nil {
			return Void, err
		}
		return Void, nil

	case decl.BuiltInClone:
		if err := checkArity(c, 1, 1); err != nil {
			return Void, err
		}
		val, err := e.Eval(c.Args[0], scope)
		if err != nil {
			return Void, err
		}
		id, isEntity := val.Value.(uuid.UUID)
		if !isEntity {
			return val.DeepCopy(), nil
		}
		if e.Host == nil {
			return Void, fmt.Errorf("%w: Clone", ErrNoHost)
		}
		copied, err := e.Host.CloneEntity(id)
		if err != nil {
			return Void, err
		}
		return EntityVar(copied), nil

	case decl.BuiltInSpawn:
		if err := checkArity(c, 1, -1); err != nil {
			return Void, err
		}
		args, err := e.evalArgs(c.Args, scope)
		if err != nil {
			return Void, err
		}
		for i, arg := range args {
			if !arg.IsStruct() {
				return Void, fmt.Errorf("%w: argument %d of Spawn is %s", ErrNotAStruct, i+1, arg.GetType())
			}
		}
		if e.Host == nil {
			return Void, fmt.Errorf("%w: Spawn", ErrNoHost)
		}
		return Void, e.Host.Spawn(args)

	case decl.BuiltInDelete:
		if err := checkArity(c, 0, 1); err != nil {
			return Void, err
		}
		target := uuid.Nil
		if len(c.Args) == 1 {
			val, err := e.Eval(c.Args[0], scope)
			if err != nil {
				return Void, err
			}
			if target, err = val.GetEntity(); err != nil {
				return Void, err
			}
		}
		if e.Host == nil {
			return Void, fmt.Errorf("%w: Delete", ErrNoHost)
		}
		return Void, e.Host.Delete(target)
	}
	panic(fmt.Sprintf("unknown builtin: %d", c.Builtin))
}
