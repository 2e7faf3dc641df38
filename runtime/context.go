package runtime

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/panyam/ecsl/decl"
)

// Def is the shape of a struct, component or resource: a fixed set of named,
// typed fields.  Defs are immutable once registered.
type Def struct {
	Kind   decl.ShapeKind
	Name   string
	Fields map[string]*decl.Type
	Order  []string // Field names in declaration order
}

// NewDef creates a shape from its field declarations.
func NewDef(kind decl.ShapeKind, name string, fields ...*decl.FieldDecl) (*Def, error) {
	out := &Def{Kind: kind, Name: name, Fields: make(map[string]*decl.Type, len(fields))}
	for _, f := range fields {
		if _, exists := out.Fields[f.Name]; exists {
			return nil, fmt.Errorf("%w: field '%s' declared twice in %s", ErrDuplicateName, f.Name, name)
		}
		out.Fields[f.Name] = f.Type
		out.Order = append(out.Order, f.Name)
	}
	return out, nil
}

func (d *Def) HasField(name string) bool {
	_, ok := d.Fields[name]
	return ok
}

// Validate checks a candidate field mapping against the shape: every field
// must be declared and the counts must match.
func (d *Def) Validate(fields map[string]Var) error {
	for name := range fields {
		if !d.HasField(name) {
			return fmt.Errorf("%w: %s is not a field of %s", ErrUnknownField, name, d.Name)
		}
	}
	if len(fields) != len(d.Fields) {
		return fmt.Errorf("%w: %s has %d fields, but %d fields were given", ErrFieldCountMismatch, d.Name, len(d.Fields), len(fields))
	}
	return nil
}

// Context is the registry of shapes and statics of a loaded program.  It is
// created once by the loader and then threaded through every evaluation.
type Context struct {
	defs    map[string]*Def
	statics *Env[Var]
}

func NewContext() *Context {
	return &Context{
		defs:    map[string]*Def{},
		statics: NewEnv[Var](nil),
	}
}

// Has reports whether a shape or a static is registered under name.
func (c *Context) Has(name string) bool {
	_, ok := c.defs[name]
	return ok || c.statics.HasLocal(name)
}

func (c *Context) RegisterDef(def *Def) error {
	if c.Has(def.Name) {
		return fmt.Errorf("%w: '%s' already registered", ErrDuplicateName, def.Name)
	}
	c.defs[def.Name] = def
	return nil
}

// DefineStatic registers a new static with its initial value.
func (c *Context) DefineStatic(name string, value Var) error {
	if c.Has(name) {
		return fmt.Errorf("%w: '%s' already registered", ErrDuplicateName, name)
	}
	c.statics.Set(name, value)
	return nil
}

// GetDef returns the shape registered under name.
func (c *Context) GetDef(name string) (*Def, error) {
	if def, ok := c.defs[name]; ok {
		return def, nil
	}
	if c.statics.HasLocal(name) {
		return nil, fmt.Errorf("%w: %s is a static, not a struct type", ErrNotAStruct, name)
	}
	return nil, fmt.Errorf("%w: %s", ErrUndefinedName, name)
}

// ValidateFields checks a candidate field mapping against the named shape.
func (c *Context) ValidateFields(name string, fields map[string]Var) error {
	def, err := c.GetDef(name)
	if err != nil {
		return err
	}
	return def.Validate(fields)
}

// Static returns the current value of a static.
func (c *Context) Static(name string) (Var, bool) {
	if !c.statics.HasLocal(name) {
		return Var{}, false
	}
	return c.statics.Get(name)
}

// Defs returns all registered shapes sorted by name.
func (c *Context) Defs() []*Def {
	out := make([]*Def, 0, len(c.defs))
	for _, d := range c.defs {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b *Def) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// StaticNames returns the names of all statics in sorted order.
func (c *Context) StaticNames() []string {
	return c.statics.Keys()
}

// NewScope returns a fresh scope whose lookups fall back to the statics.
func (c *Context) NewScope() *Scope {
	return &Scope{ctx: c, vars: c.statics.Push()}
}
