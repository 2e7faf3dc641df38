package ecs

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/google/uuid"
	"github.com/panyam/ecsl/decl"
	"github.com/panyam/ecsl/runtime"
	gfn "github.com/panyam/goutils/fn"
)

// Scheduler runs the systems of a Program against a World.
type Scheduler struct {
	Program *Program
	World   *World
	Out     io.Writer // Where Print writes
	Logger  runtime.Logger

	// When set a failing invocation is logged and recorded and the scheduler
	// moves on to the next one.  Otherwise the first failure stops the run.
	ContinueOnError bool

	// Records phases, systems and invocations when set.
	Tracer *ExecutionTracer

	tick   int
	errors []error
}

// NewScheduler creates a scheduler over a fresh world.  Print writes to out
// (stdout if nil).
func NewScheduler(prog *Program, out io.Writer, ids IDGen) *Scheduler {
	if out == nil {
		out = os.Stdout
	}
	return &Scheduler{
		Program: prog,
		World:   NewWorld(prog.Context, ids),
		Out:     out,
		Logger:  runtime.GlobalLogger(),
	}
}

// Ticks returns the number of completed ticks.
func (s *Scheduler) Ticks() int {
	return s.tick
}

// Errors returns the failures recorded so far.
func (s *Scheduler) Errors() []error {
	return s.errors
}

// RunInit runs the init systems once, in order.
func (s *Scheduler) RunInit() (err error) {
	s.enter(LevelPhase, "init")
	defer func() { s.exit(err) }()
	return s.runAll(s.Program.Init)
}

// Tick runs the run systems once, in order.
func (s *Scheduler) Tick() (err error) {
	s.tick++
	s.Logger.Debug("tick %d", s.tick)
	s.enter(LevelPhase, "tick")
	defer func() { s.exit(err) }()
	return s.runAll(s.Program.Run)
}

// Run runs the init systems followed by the given number of ticks.
func (s *Scheduler) Run(ticks int) error {
	if err := s.RunInit(); err != nil {
		return err
	}
	for range ticks {
		if err := s.Tick(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) runAll(names []string) error {
	for _, name := range names {
		if err := s.RunSystem(name); err != nil {
			return err
		}
	}
	return nil
}

// RunSystem runs one system: once if it has no entity filter, otherwise once
// per matching entity.  With several entity filters it runs once per
// combination of distinct entities, one per filter, the first filter varying
// slowest.  Entities are taken from snapshots made before the first
// invocation, so entities spawned by the system are not visited and entities
// it deletes are skipped.
func (s *Scheduler) RunSystem(name string) (err error) {
	sys, ok := s.Program.Systems[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSystem, name)
	}

	scope := s.Program.Context.NewScope()
	for _, f := range sys.Filters {
		if f.Kind != decl.FilterResource {
			continue
		}
		arg := f.Args[0]
		res, ok := s.World.Resource(arg.Type.ShapeName())
		if !ok {
			s.Logger.Debug("skipping system %s: resource %s not present", name, arg.Type)
			if s.Tracer != nil {
				s.Tracer.Skip(s.tick, name, "missing resource "+arg.Type.String())
			}
			return nil
		}
		bind(scope, arg, res)
	}

	s.enter(LevelSystem, name)
	defer func() { s.exit(err) }()

	filters := sys.EntityFilters()
	if len(filters) == 0 {
		return s.invoke(sys, scope, nil)
	}
	matches := make([][]*Entity, len(filters))
	for i, f := range filters {
		matches[i] = s.World.Query(gfn.Map(f.Args, func(a *decl.Argument) string { return a.Type.ShapeName() })...)
	}
	return s.visit(sys, scope, filters, matches, nil)
}

// visit binds an entity for the next unbound filter and recurses.  Once every
// filter is bound the system is invoked.
func (s *Scheduler) visit(sys *decl.SystemDecl, scope *runtime.Scope, filters []*decl.Filter, matches [][]*Entity, bound []*Entity) error {
	depth := len(bound)
	if depth == len(filters) {
		return s.invoke(sys, scope, bound)
	}
	f := filters[depth]
	for _, ent := range matches[depth] {
		if !s.alive(bound...) {
			return nil
		}
		if !s.alive(ent) || slices.Contains(bound, ent) {
			continue
		}
		entScope := scope.Push()
		if f.Name != "" {
			entScope.BindConst(f.Name, runtime.EntityVar(ent.ID))
		}
		for _, arg := range f.Args {
			comp, _ := ent.Get(arg.Type.ShapeName())
			bind(entScope, arg, comp)
		}
		if err := s.visit(sys, entScope, filters, matches, append(bound[:depth:depth], ent)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) alive(ents ...*Entity) bool {
	for _, ent := range ents {
		if _, ok := s.World.Entity(ent.ID); !ok {
			return false
		}
	}
	return true
}

func bind(scope *runtime.Scope, arg *decl.Argument, value runtime.Var) {
	if arg.IsConst {
		scope.BindConst(arg.Name, value)
	} else {
		scope.Bind(arg.Name, value)
	}
}

func (s *Scheduler) invoke(sys *decl.SystemDecl, scope *runtime.Scope, ents []*Entity) error {
	e := &runtime.Evaluator{
		Out:    s.Out,
		Host:   &invocation{world: s.World, entities: ents},
		Logger: s.Logger,
	}
	s.enter(LevelInvocation, sys.Name, ents...)
	_, err := e.EvalBlock(sys.Body, scope)
	s.exit(err)
	if err == nil {
		return nil
	}

	ierr := &InvocationError{
		System:   sys.Name,
		Entities: gfn.Map(ents, func(ent *Entity) uuid.UUID { return ent.ID }),
		Tick:     s.tick,
		Err:      err,
	}
	s.errors = append(s.errors, ierr)
	if !s.ContinueOnError {
		return ierr
	}
	s.Logger.Warn("%s", ierr)
	return nil
}

func (s *Scheduler) enter(level TraceLevel, target string, ents ...*Entity) {
	if s.Tracer != nil {
		s.Tracer.Enter(s.tick, level, target, ents...)
	}
}

func (s *Scheduler) exit(err error) {
	if s.Tracer != nil {
		s.Tracer.Exit(s.tick, err)
	}
}

// invocation is the Host seen by the builtins of one system invocation.
type invocation struct {
	world    *World
	entities []*Entity // One per entity filter
}

func (h *invocation) Spawn(values []runtime.Var) error {
	_, err := h.world.Spawn(values)
	return err
}

// Delete without an id removes the entity of the system's only entity filter.
func (h *invocation) Delete(id uuid.UUID) error {
	if id != uuid.Nil {
		return h.world.Despawn(id)
	}
	switch len(h.entities) {
	case 0:
		return fmt.Errorf("%w: Delete called outside of an entity system", ErrNoEntity)
	case 1:
		return h.world.Despawn(h.entities[0].ID)
	}
	return fmt.Errorf("%w: Delete() is ambiguous with %d entity filters, pass the entity to delete", ErrNoEntity, len(h.entities))
}

func (h *invocation) CloneEntity(id uuid.UUID) (uuid.UUID, error) {
	ent, ok := h.world.Entity(id)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrNoEntity, id)
	}
	values := make([]runtime.Var, 0, len(ent.Components))
	for _, name := range ent.ComponentNames() {
		comp, _ := ent.Get(name)
		values = append(values, comp)
	}
	copied, err := h.world.Spawn(values)
	if err != nil {
		return uuid.Nil, err
	}
	return copied.ID, nil
}
