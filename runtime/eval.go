package runtime

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/panyam/ecsl/decl"
)

// Host gives builtins access to the world a system runs in.
type Host interface {
	// Spawn adds the given component and resource values to the world.
	Spawn(values []Var) error

	// Delete removes an entity.  uuid.Nil stands for the entity the current
	// invocation is bound to.
	Delete(id uuid.UUID) error

	// CloneEntity spawns a copy of an entity's components and returns the
	// id of the copy.
	CloneEntity(id uuid.UUID) (uuid.UUID, error)
}

// Evaluator reduces expression trees to values.  It holds no program state
// of its own: bindings live in the Scope (and its Context) passed to Eval.
//
// The zero value is usable: Print goes to stdout and logs to the global
// logger.
type Evaluator struct {
	Out    io.Writer // Where Print writes
	Host   Host      // nil when evaluating outside of a world
	Logger Logger
}

// NewEvaluator creates an evaluator printing to out (stdout if nil).
func NewEvaluator(out io.Writer) *Evaluator {
	if out == nil {
		out = os.Stdout
	}
	return &Evaluator{Out: out, Logger: globalLogger}
}

func (e *Evaluator) out() io.Writer {
	if e.Out == nil {
		return os.Stdout
	}
	return e.Out
}

func (e *Evaluator) logger() Logger {
	if e.Logger == nil {
		return globalLogger
	}
	return e.Logger
}

// EvalBlock evaluates expressions in order, stopping at the first failure.
// Returns the value of the last expression.
func (e *Evaluator) EvalBlock(body []decl.Expr, scope *Scope) (result Var, err error) {
	result = Void
	for _, expr := range body {
		if result, err = e.Eval(expr, scope); err != nil {
			return Void, err
		}
	}
	return
}

// The main Eval loop of an expression
func (e *Evaluator) Eval(expr decl.Expr, scope *Scope) (Var, error) {
	switch n := expr.(type) {
	case *decl.AtomExpr:
		return e.evalAtom(n)
	case *decl.LValueExpr:
		return e.evalLValue(n, scope)
	case *decl.StructInitExpr:
		return e.evalStructInit(n, scope)
	case *decl.ListInitExpr:
		return e.evalListInit(n, scope)
	case *decl.AssignExpr:
		return e.evalAssign(n, scope)
	case *decl.TernaryExpr:
		return e.evalTernary(n, scope)
	case *decl.CallExpr:
		return e.evalCall(n, scope)
	case *decl.BinaryExpr:
		return e.evalBinary(n, scope)
	case *decl.UnaryExpr:
		return e.evalUnary(n, scope)
	default:
		panic(fmt.Errorf("Eval not implemented for node type %T", expr))
	}
}

func (e *Evaluator) evalAtom(a *decl.AtomExpr) (Var, error) {
	if a.Value == nil {
		return Void, nil
	}
	return Var{Type: a.Type, Value: a.Value}, nil
}

// Left values evaluate to the value at their path.  Lists and structs are
// returned by handle so the result aliases the binding.
func (e *Evaluator) evalLValue(l *decl.LValueExpr, scope *Scope) (Var, error) {
	return scope.GetVar(l.Path)
}

func (e *Evaluator) evalStructInit(s *decl.StructInitExpr, scope *Scope) (Var, error) {
	def, err := scope.Context().GetDef(s.Name)
	if err != nil {
		return Void, err
	}

	fields := make(map[string]Var, len(def.Fields))
	for _, f := range s.Fields {
		if !def.HasField(f.Name) {
			return Void, fmt.Errorf("%w: %s is not a field of %s", ErrUnknownField, f.Name, s.Name)
		}
		// The value is evaluated even when the field turns out to be a
		// duplicate, so its side effects happen before the error.
		val, err := e.Eval(f.Value, scope)
		if err != nil {
			return Void, err
		}
		if _, seen := fields[f.Name]; seen {
			return Void, fmt.Errorf("%w: %s is already initialized", ErrFieldAlreadyInitialized, f.Name)
		}
		fields[f.Name] = val
	}

	if err := def.Validate(fields); err != nil {
		return Void, err
	}
	return StructVar(NewStruct(def.Name, def.Order, fields)), nil
}

func (e *Evaluator) evalListInit(l *decl.ListInitExpr, scope *Scope) (Var, error) {
	items := make([]Var, 0, len(l.Items))
	for _, item := range l.Items {
		val, err := e.Eval(item, scope)
		if err != nil {
			return Void, err
		}
		items = append(items, val)
	}
	return Var{Type: decl.ListType(nil), Value: &List{Items: items}}, nil
}

// Assignments evaluate the right hand side first and only then touch the
// target, so a failure never leaves a partial write behind.
//
// Structs are never replaced wholesale, neither as a top-level binding nor as
// a field of another struct: only their primitive and list fields can be
// assigned.  Fields keep their type.
func (e *Evaluator) evalAssign(a *decl.AssignExpr, scope *Scope) (Var, error) {
	val, err := e.Eval(a.Value, scope)
	if err != nil {
		return Void, err
	}

	path := a.Target.Path
	if len(path) == 1 {
		if ref, _ := scope.lookup(path[0]); ref != nil && !ref.Const && ref.Value.IsStruct() {
			return Void, fmt.Errorf("%w: %s holds a %s", ErrCannotReassignStruct, a.Target, ref.Value.GetType())
		}
		if err := scope.SetVar(path[0], val); err != nil {
			return Void, err
		}
		e.logger().Debug("assign %s = %s", a.Target, val)
		return val, nil
	}

	err = scope.MutateVar(path, func(curr *Var) error {
		if curr.IsStruct() {
			return fmt.Errorf("%w: %s holds a %s", ErrCannotReassignStruct, a.Target, curr.GetType())
		}
		if !val.SameType(*curr) {
			return fmt.Errorf("%w: cannot assign %s to %s (%s)", ErrTypeMismatch, val.GetType(), curr.GetType(), a.Target)
		}
		*curr = val
		return nil
	})
	if err != nil {
		return Void, err
	}
	e.logger().Debug("assign %s = %s", a.Target, val)
	return val, nil
}

// Only the selected branch is evaluated.
func (e *Evaluator) evalTernary(t *decl.TernaryExpr, scope *Scope) (Var, error) {
	cond, err := e.Eval(t.Cond, scope)
	if err != nil {
		return Void, err
	}
	b, ok := cond.Value.(bool)
	if !ok {
		return Void, fmt.Errorf("%w: condition %s evaluated to %s", ErrNonBooleanCondition, t.Cond, cond.GetType())
	}
	if b {
		return e.Eval(t.Then, scope)
	}
	return e.Eval(t.Else, scope)
}

func (e *Evaluator) evalBinary(b *decl.BinaryExpr, scope *Scope) (Var, error) {
	left, err := e.Eval(b.Left, scope)
	if err != nil {
		return Void, err
	}
	right, err := e.Eval(b.Right, scope)
	if err != nil {
		return Void, err
	}
	return BinaryOp(b.Op, left, right)
}

func (e *Evaluator) evalUnary(u *decl.UnaryExpr, scope *Scope) (Var, error) {
	operand, err := e.Eval(u.Operand, scope)
	if err != nil {
		return Void, err
	}
	return UnaryOp(u.Op, operand)
}
