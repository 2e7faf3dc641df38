package runtime

import (
	"fmt"
	"strings"
)

// Scope is the binding environment a system body is evaluated in.  Lookups
// that miss the local bindings fall through to the statics of the Context.
//
// A path is a non-empty list of names: the first names a binding and every
// following one a field of the struct reached so far.
type Scope struct {
	ctx  *Context
	vars *Env[Var]
}

func (s *Scope) Context() *Context {
	return s.ctx
}

// Push returns a nested scope.  Bindings created in it are dropped with it.
func (s *Scope) Push() *Scope {
	return &Scope{ctx: s.ctx, vars: s.vars.Push()}
}

// Bind creates a binding in this scope, shadowing outer ones.
func (s *Scope) Bind(name string, value Var) {
	s.vars.Set(name, value)
}

// BindConst creates a binding that cannot be assigned to, neither directly nor
// through its fields.
func (s *Scope) BindConst(name string, value Var) {
	s.vars.SetConst(name, value)
}

func (s *Scope) IsBound(name string) bool {
	return s.vars.Has(name)
}

func (s *Scope) lookup(name string) (*Ref[Var], error) {
	ref := s.vars.GetRef(name)
	if ref == nil {
		return nil, fmt.Errorf("%w: %s", ErrUndefinedName, name)
	}
	return ref, nil
}

// GetVar reads the value at path.  Aggregates are returned by handle, marked
// read only when the path starts at a const binding.
func (s *Scope) GetVar(path []string) (Var, error) {
	if len(path) == 0 {
		return Var{}, fmt.Errorf("%w: empty path", ErrUndefinedName)
	}
	ref, err := s.lookup(path[0])
	if err != nil {
		return Var{}, err
	}
	curr := ref.Value
	readOnly := ref.Const || curr.readOnly
	for i := 1; i < len(path); i++ {
		st, ok := curr.Value.(*Struct)
		if !ok {
			return Var{}, fmt.Errorf("%w: %s is %s", ErrNotAStruct, strings.Join(path[:i], "."), curr.GetType())
		}
		field, ok := st.fields[path[i]]
		if !ok {
			return Var{}, fmt.Errorf("%w: %s is not a field of %s", ErrUnknownField, path[i], st.Name)
		}
		curr = field
		readOnly = readOnly || curr.readOnly
	}
	if readOnly {
		curr = curr.asReadOnly()
	}
	return curr, nil
}

// SetVar rebinds a top-level name.  Existing bindings are updated where they
// live (so statics stay statics); unknown names are bound in this scope.
func (s *Scope) SetVar(name string, value Var) error {
	ref := s.vars.GetRef(name)
	if ref == nil {
		s.vars.Set(name, value)
		return nil
	}
	if ref.Const {
		return fmt.Errorf("%w: %s", ErrConstBinding, name)
	}
	ref.Value = value
	return nil
}

// MutateVar runs update on the value stored at path and stores the result
// back.  If update fails nothing is written.  Fields of read only aggregates
// cannot be updated.
func (s *Scope) MutateVar(path []string, update func(curr *Var) error) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: empty path", ErrUndefinedName)
	}
	ref, err := s.lookup(path[0])
	if err != nil {
		return err
	}
	if ref.Const {
		return fmt.Errorf("%w: %s", ErrConstBinding, path[0])
	}
	if len(path) == 1 {
		val := ref.Value
		if err := update(&val); err != nil {
			return err
		}
		ref.Value = val
		return nil
	}

	// Walk down to the struct owning the last field
	curr := ref.Value
	var owner *Struct
	for i := 1; i < len(path); i++ {
		st, ok := curr.Value.(*Struct)
		if !ok {
			return fmt.Errorf("%w: %s is %s", ErrNotAStruct, strings.Join(path[:i], "."), curr.GetType())
		}
		if curr.readOnly {
			return fmt.Errorf("%w: %s aliases a const value", ErrConstBinding, strings.Join(path[:i], "."))
		}
		field, ok := st.fields[path[i]]
		if !ok {
			return fmt.Errorf("%w: %s is not a field of %s", ErrUnknownField, path[i], st.Name)
		}
		owner, curr = st, field
	}
	if err := update(&curr); err != nil {
		return err
	}
	owner.fields[path[len(path)-1]] = curr
	return nil
}
