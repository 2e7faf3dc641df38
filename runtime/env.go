package runtime

import (
	"slices"
)

// References to values.  Bindings are held by reference so that an update
// through any lookup is seen by every later lookup.
type Ref[T any] struct {
	Value T
	Const bool
}

// Env[T] holds the values bound to identifiers.
// Supports basic scoping via the 'outer' environment.
type Env[T any] struct {
	store map[string]*Ref[T]
	outer *Env[T]
}

// NewEnv[T] creates a new environment nested within an outer one.
// If outer is nil then returns a fresh top-level environment.
func NewEnv[T any](outer *Env[T]) *Env[T] {
	s := make(map[string]*Ref[T])
	return &Env[T]{store: s, outer: outer}
}

// GetRef retrieves the binding for a name. It checks the current environment
// first, then recursively checks outer environments.
func (e *Env[T]) GetRef(name string) *Ref[T] {
	for curr := e; curr != nil; curr = curr.outer {
		if ref, ok := curr.store[name]; ok && ref != nil {
			return ref
		}
	}
	return nil
}

func (e *Env[T]) Get(name string) (out T, found bool) {
	ref := e.GetRef(name)
	if ref != nil {
		out = ref.Value
		found = true
	}
	return
}

// Has reports whether the name is bound here or in an outer environment.
func (e *Env[T]) Has(name string) bool {
	return e.GetRef(name) != nil
}

// HasLocal reports whether the name is bound in this environment only.
func (e *Env[T]) HasLocal(name string) bool {
	_, ok := e.store[name]
	return ok
}

// Set creates or replaces the binding in this environment.
func (e *Env[T]) Set(key string, value T) {
	e.store[key] = &Ref[T]{Value: value}
}

// SetConst creates a binding that cannot be assigned to.
func (e *Env[T]) SetConst(key string, value T) {
	e.store[key] = &Ref[T]{Value: value, Const: true}
}

// Push returns a new environment nested in this one.
func (e *Env[T]) Push() *Env[T] {
	return NewEnv(e)
}

// Keys returns all keys in this environment (not including outer environments)
// in sorted order.
func (e *Env[T]) Keys() []string {
	keys := make([]string, 0, len(e.store))
	for k := range e.store {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
