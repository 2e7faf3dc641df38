package ecs

import (
	"fmt"

	"github.com/panyam/ecsl/decl"
	"github.com/panyam/ecsl/runtime"
)

// Program is a loaded, validated ECSL file: its shapes and statics (in the
// Context), its systems and the order they are scheduled in.
type Program struct {
	Context *runtime.Context
	Systems map[string]*decl.SystemDecl
	Order   []string // System names in declaration order
	Init    []string
	Run     []string
}

func NewProgram(ctx *runtime.Context) *Program {
	return &Program{Context: ctx, Systems: map[string]*decl.SystemDecl{}}
}

// AddSystem validates and registers a system.  System names share the
// namespace of shapes and statics.
func (p *Program) AddSystem(sys *decl.SystemDecl) error {
	if _, exists := p.Systems[sys.Name]; exists || p.Context.Has(sys.Name) {
		return fmt.Errorf("%w: '%s' already declared", runtime.ErrDuplicateName, sys.Name)
	}
	if err := p.validateFilters(sys); err != nil {
		return fmt.Errorf("system %s: %w", sys.Name, err)
	}
	p.Systems[sys.Name] = sys
	p.Order = append(p.Order, sys.Name)
	return nil
}

// Filter names and argument names share one namespace.  A system may have
// several entity filters, but then each of them must be named so Delete and
// Clone can tell their entities apart.
func (p *Program) validateFilters(sys *decl.SystemDecl) error {
	seen := map[string]bool{}
	entityFilters := sys.EntityFilters()
	for _, f := range sys.Filters {
		want := decl.ShapeComponent
		if f.Kind == decl.FilterResource {
			want = decl.ShapeResource
			if len(f.Args) != 1 {
				return fmt.Errorf("%w: resource filter takes exactly one argument", ErrInvalidFilter)
			}
		} else if f.Name != "" {
			if seen[f.Name] {
				return fmt.Errorf("%w: '%s' declared twice", runtime.ErrDuplicateName, f.Name)
			}
			seen[f.Name] = true
		} else if len(entityFilters) > 1 {
			return fmt.Errorf("%w: %s must be named when a system has several entity filters", ErrInvalidFilter, f)
		}
		for _, arg := range f.Args {
			if seen[arg.Name] {
				return fmt.Errorf("%w: argument '%s' declared twice", runtime.ErrDuplicateName, arg.Name)
			}
			seen[arg.Name] = true
			if !arg.Type.IsNamed() {
				return fmt.Errorf("%w: argument %s must name a %s", ErrInvalidFilter, arg, want)
			}
			def, err := p.Context.GetDef(arg.Type.ShapeName())
			if err != nil {
				return err
			}
			if def.Kind != want {
				return fmt.Errorf("%w: %s is a %s, expected a %s", ErrInvalidFilter, def.Name, def.Kind, want)
			}
		}
	}
	return nil
}

// SetSchedule sets the init and run lists.  Every name must be a system
// already added.
func (p *Program) SetSchedule(init, run []string) error {
	for _, names := range [][]string{init, run} {
		for _, name := range names {
			if _, ok := p.Systems[name]; !ok {
				return fmt.Errorf("%w: %s", ErrUnknownSystem, name)
			}
		}
	}
	p.Init, p.Run = init, run
	return nil
}
