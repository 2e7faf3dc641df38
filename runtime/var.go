package runtime

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/panyam/ecsl/decl"
	gfn "github.com/panyam/goutils/fn"
)

// List is the shared backing store of a list value.  Every Var holding the
// same *List observes the same items.
type List struct {
	Items []Var
}

func (l *List) Len() int { return len(l.Items) }

// Struct is the shared backing store of a struct value.  The field set is
// fixed at construction: fields can be replaced but never added or removed.
type Struct struct {
	Name   string
	fields map[string]Var
	order  []string
}

// NewStruct creates a struct of the given shape.  order is the declaration
// order of the fields and is only used for display; when nil the field names
// are sorted.
func NewStruct(name string, order []string, fields map[string]Var) *Struct {
	if order == nil {
		for k := range fields {
			order = append(order, k)
		}
		slices.Sort(order)
	}
	return &Struct{Name: name, fields: fields, order: order}
}

func (s *Struct) Get(field string) (Var, bool) {
	v, ok := s.fields[field]
	return v, ok
}

func (s *Struct) Has(field string) bool {
	_, ok := s.fields[field]
	return ok
}

// FieldNames returns the field names in declaration order.
func (s *Struct) FieldNames() []string {
	return slices.Clone(s.order)
}

func (s *Struct) Len() int { return len(s.fields) }

// Var is the runtime value of every expression.  Value holds the Go
// representation matching Type:
//
//	Void    nil
//	Bool    bool
//	Int     int64
//	Float   float32
//	Char    rune
//	String  string
//	List    *List
//	Struct  *Struct
//	Entity  uuid.UUID
//
// Copying a Var copies the *List/*Struct handle, so copies of aggregates
// alias each other.  Use DeepCopy for an independent value.
//
// Aggregates read through a const binding are marked read only and keep the
// mark when rebound or stored, so no alias can write through them.
type Var struct {
	Type     *decl.Type
	Value    any
	readOnly bool
}

var Void = Var{Type: decl.VoidType}

// Helpers to create specific simple values
func BoolVar(val bool) Var { return Var{Type: decl.BoolType, Value: val} }
func IntVar(val int64) Var { return Var{Type: decl.IntType, Value: val} }
func FloatVar(val float32) Var { return Var{Type: decl.FloatType, Value: val} }
func CharVar(val rune) Var { return Var{Type: decl.CharType, Value: val} }
func StringVar(val string) Var { return Var{Type: decl.StrType, Value: val} }
func StructVar(val *Struct) Var { return Var{Type: decl.NamedType(val.Name), Value: val} }
func EntityVar(id uuid.UUID) Var { return Var{Type: decl.EntityType, Value: id} }

// ListVar creates a list value with a freshly allocated backing store.
func ListVar(items ...Var) Var {
	return Var{Type: decl.ListType(nil), Value: &List{Items: slices.Clone(items)}}
}

// GetType returns the runtime type of the value.  Lists are untyped and
// structs report the name of their shape.
func (v Var) GetType() *decl.Type {
	if v.Type == nil {
		return decl.VoidType
	}
	return v.Type
}

// SameType reports whether both values have the same runtime type.
func (v Var) SameType(other Var) bool {
	return v.GetType().Equals(other.GetType())
}

func (v Var) IsVoid() bool {
	return v.Value == nil
}

func (v Var) IsStruct() bool {
	_, ok := v.Value.(*Struct)
	return ok
}

func (v Var) IsList() bool {
	_, ok := v.Value.(*List)
	return ok
}

// ReadOnly reports whether the value is an aggregate reached through a const
// binding.  Copies made with DeepCopy are writable again.
func (v Var) ReadOnly() bool {
	return v.readOnly
}

func (v Var) asReadOnly() Var {
	if v.IsStruct() || v.IsList() {
		v.readOnly = true
	}
	return v
}

// Clone returns a copy of the value.  For lists and structs only the handle
// is copied and the result aliases v.
func (v Var) Clone() Var {
	return v
}

// --- Custom getter methods

func (v Var) GetBool() (bool, error) {
	val, ok := v.Value.(bool)
	if !ok {
		return false, fmt.Errorf("%w: cannot get Bool, value is type %s", ErrTypeMismatch, v.GetType())
	}
	return val, nil
}

func (v Var) GetInt() (int64, error) {
	val, ok := v.Value.(int64)
	if !ok {
		return 0, fmt.Errorf("%w: cannot get Int, value is type %s", ErrTypeMismatch, v.GetType())
	}
	return val, nil
}

func (v Var) GetFloat() (float32, error) {
	val, ok := v.Value.(float32)
	if !ok {
		return 0, fmt.Errorf("%w: cannot get Float, value is type %s", ErrTypeMismatch, v.GetType())
	}
	return val, nil
}

func (v Var) GetChar() (rune, error) {
	val, ok := v.Value.(rune)
	if !ok {
		return 0, fmt.Errorf("%w: cannot get Char, value is type %s", ErrTypeMismatch, v.GetType())
	}
	return val, nil
}

func (v Var) GetString() (string, error) {
	val, ok := v.Value.(string)
	if !ok {
		return "", fmt.Errorf("%w: cannot get String, value is type %s", ErrTypeMismatch, v.GetType())
	}
	return val, nil
}

func (v Var) GetList() (*List, error) {
	val, ok := v.Value.(*List)
	if !ok {
		return nil, fmt.Errorf("%w: cannot get List, value is type %s", ErrTypeMismatch, v.GetType())
	}
	return val, nil
}

func (v Var) GetStruct() (*Struct, error) {
	val, ok := v.Value.(*Struct)
	if !ok {
		return nil, fmt.Errorf("%w: %s value is not a struct", ErrNotAStruct, v.GetType())
	}
	return val, nil
}

func (v Var) GetEntity() (uuid.UUID, error) {
	val, ok := v.Value.(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: cannot get Entity, value is type %s", ErrTypeMismatch, v.GetType())
	}
	return val, nil
}

// DeepCopy returns a value sharing no list or struct storage with v.
// Aliasing inside v (including cycles) is reproduced in the copy.
func (v Var) DeepCopy() Var {
	return deepCopy(v, map[any]Var{})
}

func deepCopy(v Var, seen map[any]Var) Var {
	switch val := v.Value.(type) {
	case *List:
		if c, ok := seen[val]; ok {
			return c
		}
		out := &List{Items: make([]Var, len(val.Items))}
		res := Var{Type: v.Type, Value: out}
		seen[val] = res
		for i, item := range val.Items {
			out.Items[i] = deepCopy(item, seen)
		}
		return res
	case *Struct:
		if c, ok := seen[val]; ok {
			return c
		}
		out := &Struct{Name: val.Name, fields: make(map[string]Var, len(val.fields)), order: slices.Clone(val.order)}
		res := Var{Type: v.Type, Value: out}
		seen[val] = res
		for k, field := range val.fields {
			out.fields[k] = deepCopy(field, seen)
		}
		return res
	}
	return v
}

// Equal compares two values structurally.
func (v Var) Equal(other Var) bool {
	return equal(v, other, map[[2]any]bool{})
}

func equal(a, b Var, seen map[[2]any]bool) bool {
	if !a.SameType(b) {
		return false
	}
	switch av := a.Value.(type) {
	case *List:
		bv := b.Value.(*List)
		if av == bv {
			return true
		}
		key := [2]any{av, bv}
		if seen[key] {
			return true
		}
		seen[key] = true
		if len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !equal(av.Items[i], bv.Items[i], seen) {
				return false
			}
		}
		return true
	case *Struct:
		bv := b.Value.(*Struct)
		if av == bv {
			return true
		}
		key := [2]any{av, bv}
		if seen[key] {
			return true
		}
		seen[key] = true
		if len(av.fields) != len(bv.fields) {
			return false
		}
		for k, f := range av.fields {
			g, ok := bv.fields[k]
			if !ok || !equal(f, g, seen) {
				return false
			}
		}
		return true
	}
	return a.Value == b.Value
}

// String renders the value the way Print shows it.
func (v Var) String() string {
	return render(v, map[any]bool{})
}

func render(v Var, visiting map[any]bool) string {
	switch val := v.Value.(type) {
	case nil:
		return "void"
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return formatFloat(val)
	case rune:
		return string(val)
	case string:
		return val
	case uuid.UUID:
		return "Entity(" + val.String() + ")"
	case *List:
		if visiting[val] {
			return "..."
		}
		visiting[val] = true
		defer delete(visiting, val)
		return fmt.Sprintf("[%s]", strings.Join(gfn.Map(val.Items, func(item Var) string { return render(item, visiting) }), ", "))
	case *Struct:
		if visiting[val] {
			return "..."
		}
		visiting[val] = true
		defer delete(visiting, val)
		if len(val.order) == 0 {
			return val.Name + " {}"
		}
		fields := gfn.Map(val.order, func(name string) string {
			return fmt.Sprintf("%s: %s", name, render(val.fields[name], visiting))
		})
		return fmt.Sprintf("%s { %s }", val.Name, strings.Join(fields, ", "))
	}
	return fmt.Sprintf("%v", v.Value)
}

// Floats always carry a decimal point so they read back as floats.
func formatFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// Conforms reports whether a value can be stored where the declared type is
// expected.  List elements are checked one by one.
func Conforms(declared *decl.Type, v Var) bool {
	if declared == nil {
		return true
	}
	if declared.IsList() {
		list, ok := v.Value.(*List)
		if !ok {
			return false
		}
		elem := declared.ElementType()
		if elem == nil {
			return true
		}
		for _, item := range list.Items {
			if !Conforms(elem, item) {
				return false
			}
		}
		return true
	}
	return declared.Equals(v.GetType())
}
