package ecs

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/panyam/ecsl/decl"
	"github.com/panyam/ecsl/runtime"
)

// Entity is a bag of components, at most one per component shape.
type Entity struct {
	ID         uuid.UUID
	Components map[string]runtime.Var
}

// Has reports whether the entity carries all the named components.
func (e *Entity) Has(components ...string) bool {
	for _, c := range components {
		if _, ok := e.Components[c]; !ok {
			return false
		}
	}
	return true
}

func (e *Entity) Get(component string) (runtime.Var, bool) {
	v, ok := e.Components[component]
	return v, ok
}

// ComponentNames returns the names of the entity's components sorted.
func (e *Entity) ComponentNames() []string {
	out := make([]string, 0, len(e.Components))
	for k := range e.Components {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// World holds the entities and resources of a running program.
type World struct {
	ctx       *runtime.Context
	ids       IDGen
	entities  map[uuid.UUID]*Entity
	order     []uuid.UUID // spawn order
	resources map[string]runtime.Var
}

// NewWorld creates an empty world over the shapes of ctx.  ids defaults to
// random UUIDs.
func NewWorld(ctx *runtime.Context, ids IDGen) *World {
	if ids == nil {
		ids = RandomIDs{}
	}
	return &World{
		ctx:       ctx,
		ids:       ids,
		entities:  map[uuid.UUID]*Entity{},
		resources: map[string]runtime.Var{},
	}
}

func (w *World) Context() *runtime.Context {
	return w.ctx
}

// Spawn adds component and resource values to the world.  All component
// values form one new entity; resource values replace the current instance
// of their resource.  Values are copied in so later writes to the arguments
// do not leak into the world.
//
// Returns the new entity, or nil if only resources were given.  Nothing is
// changed if any value is rejected.
func (w *World) Spawn(values []runtime.Var) (*Entity, error) {
	components := map[string]runtime.Var{}
	resources := map[string]runtime.Var{}
	for _, v := range values {
		st, err := v.GetStruct()
		if err != nil {
			return nil, err
		}
		def, err := w.ctx.GetDef(st.Name)
		if err != nil {
			return nil, err
		}
		switch def.Kind {
		case decl.ShapeComponent:
			if _, dup := components[st.Name]; dup {
				return nil, fmt.Errorf("%w: %s given twice", ErrDuplicateComponent, st.Name)
			}
			components[st.Name] = v.DeepCopy()
		case decl.ShapeResource:
			resources[st.Name] = v.DeepCopy()
		default:
			return nil, fmt.Errorf("%w: %s is a %s", ErrNotSpawnable, st.Name, def.Kind)
		}
	}

	for name, v := range resources {
		w.resources[name] = v
	}
	if len(components) == 0 {
		return nil, nil
	}
	ent := &Entity{ID: w.ids.NextID(), Components: components}
	w.entities[ent.ID] = ent
	w.order = append(w.order, ent.ID)
	return ent, nil
}

// Despawn removes an entity.
func (w *World) Despawn(id uuid.UUID) error {
	if _, ok := w.entities[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNoEntity, id)
	}
	delete(w.entities, id)
	w.order = slices.DeleteFunc(w.order, func(other uuid.UUID) bool { return other == id })
	return nil
}

func (w *World) Entity(id uuid.UUID) (*Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// Entities returns the live entities in spawn order.  The slice is a
// snapshot: spawning or deleting afterwards does not change it.
func (w *World) Entities() []*Entity {
	out := make([]*Entity, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.entities[id])
	}
	return out
}

// Query returns the live entities having all the named components, in spawn
// order.
func (w *World) Query(components ...string) (out []*Entity) {
	for _, id := range w.order {
		if e := w.entities[id]; e.Has(components...) {
			out = append(out, e)
		}
	}
	return
}

func (w *World) Len() int {
	return len(w.order)
}

// Resource returns the current instance of a resource.  The value is a
// handle: writes to its fields are seen by the world.
func (w *World) Resource(name string) (runtime.Var, bool) {
	v, ok := w.resources[name]
	return v, ok
}

// ResourceNames returns the names of the installed resources sorted.
func (w *World) ResourceNames() []string {
	out := make([]string, 0, len(w.resources))
	for k := range w.resources {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
