package decl

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// --- Interfaces ---

// Node represents any node in the Abstract Syntax Tree.
type Node interface {
	Pos() int       // Starting position (for error reporting)
	End() int       // Ending position
	String() string // String representation for debugging/printing
}

// --- Base Struct ---

// NodeInfo embeddable struct for position tracking.
type NodeInfo struct{ StartPos, StopPos int }

func (n *NodeInfo) Pos() int       { return n.StartPos }
func (n *NodeInfo) End() int       { return n.StopPos }
func (n *NodeInfo) String() string { return "{Node}" } // Default stringer

func NewNodeInfo(start, end int) NodeInfo {
	return NodeInfo{StartPos: start, StopPos: end}
}

// --- Top Level declarations ---

// FileDecl represents the top-level node of a parsed ECSL file.
type FileDecl struct {
	NodeInfo
	Declarations []Node // ShapeDecl, StaticDecl, SystemDecl, ScheduleDecl
}

func (f *FileDecl) Shapes() (out []*ShapeDecl) {
	for _, d := range f.Declarations {
		if s, ok := d.(*ShapeDecl); ok {
			out = append(out, s)
		}
	}
	return
}

func (f *FileDecl) Statics() (out []*StaticDecl) {
	for _, d := range f.Declarations {
		if s, ok := d.(*StaticDecl); ok {
			out = append(out, s)
		}
	}
	return
}

func (f *FileDecl) Systems() (out []*SystemDecl) {
	for _, d := range f.Declarations {
		if s, ok := d.(*SystemDecl); ok {
			out = append(out, s)
		}
	}
	return
}

// Schedules returns the init and run lists in declaration order.  Multiple
// lists of the same kind are concatenated.
func (f *FileDecl) Schedules() (init []string, run []string) {
	for _, d := range f.Declarations {
		if s, ok := d.(*ScheduleDecl); ok {
			if s.Kind == ScheduleInit {
				init = append(init, s.Systems...)
			} else {
				run = append(run, s.Systems...)
			}
		}
	}
	return
}

func (f *FileDecl) String() string {
	lines := []string{}
	for _, d := range f.Declarations {
		lines = append(lines, d.String())
	}
	return strings.Join(lines, "\n")
}

// ShapeKind distinguishes the three struct-like declarations.  They share the
// same initialization rules and only differ in their role in the world.
type ShapeKind int

const (
	ShapeStruct ShapeKind = iota
	ShapeComponent
	ShapeResource
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeComponent:
		return "component"
	case ShapeResource:
		return "resource"
	}
	return "struct"
}

// FieldDecl represents `name: type` inside a shape.
type FieldDecl struct {
	NodeInfo
	Name string
	Type *Type
}

func (f *FieldDecl) String() string { return fmt.Sprintf("%s: %s", f.Name, f.Type) }

// ShapeDecl represents `component|resource|struct Name { field: type, ... }`
type ShapeDecl struct {
	NodeInfo
	Kind   ShapeKind
	Name   string
	Fields []*FieldDecl
}

func (s *ShapeDecl) String() string {
	if len(s.Fields) == 0 {
		return fmt.Sprintf("%s %s {}", s.Kind, s.Name)
	}
	return fmt.Sprintf("%s %s { %s }", s.Kind, s.Name, strings.Join(gfn.Map(s.Fields, func(f *FieldDecl) string { return f.String() }), ", "))
}

// StaticDecl represents `static type name = expr;`
type StaticDecl struct {
	NodeInfo
	Name  string
	Type  *Type
	Value Expr
}

func (s *StaticDecl) String() string {
	return fmt.Sprintf("static %s %s = %s;", s.Type, s.Name, s.Value)
}

// Argument is a typed binding introduced by a filter.
type Argument struct {
	NodeInfo
	IsConst bool
	Type    *Type
	Name    string
}

func (a *Argument) String() string {
	if a.IsConst {
		return fmt.Sprintf("const %s %s", a.Type, a.Name)
	}
	return fmt.Sprintf("%s %s", a.Type, a.Name)
}

type FilterKind int

const (
	FilterEntity FilterKind = iota
	FilterResource
)

// Filter selects what a system runs against: entities having a set of
// components or a resource.  An entity filter may name the matched entity,
// binding that name to an entity handle in the system body.
type Filter struct {
	NodeInfo
	Kind FilterKind
	Name string
	Args []*Argument
}

func (f *Filter) String() string {
	kw := "entity"
	if f.Kind == FilterResource {
		kw = "resource"
	} else if f.Name != "" {
		kw += " " + f.Name
	}
	return fmt.Sprintf("%s(%s)", kw, strings.Join(gfn.Map(f.Args, func(a *Argument) string { return a.String() }), ", "))
}

// SystemDecl represents `system name(filters...) { body }`
type SystemDecl struct {
	NodeInfo
	Name    string
	Filters []*Filter
	Body    []Expr
}

// EntityFilters returns the system's entity filters in declaration order.
func (s *SystemDecl) EntityFilters() (out []*Filter) {
	for _, f := range s.Filters {
		if f.Kind == FilterEntity {
			out = append(out, f)
		}
	}
	return
}

func (s *SystemDecl) String() string {
	return fmt.Sprintf("system %s(%s) { ... }", s.Name, strings.Join(gfn.Map(s.Filters, func(f *Filter) string { return f.String() }), ", "))
}

type ScheduleKind int

const (
	ScheduleInit ScheduleKind = iota
	ScheduleRun
)

// ScheduleDecl represents `init [a, b]` or `run [c, d]`
type ScheduleDecl struct {
	NodeInfo
	Kind    ScheduleKind
	Systems []string
}

func (s *ScheduleDecl) String() string {
	kw := "init"
	if s.Kind == ScheduleRun {
		kw = "run"
	}
	return fmt.Sprintf("%s [%s]", kw, strings.Join(s.Systems, ", "))
}
