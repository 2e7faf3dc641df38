package ecs

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TraceEventKind defines the type of a trace event.
type TraceEventKind string

const (
	EventEnter TraceEventKind = "enter"
	EventExit  TraceEventKind = "exit"
	EventSkip  TraceEventKind = "skip"
)

// TraceLevel tells what an event is about.  Names alone cannot: a system may
// share its name with a phase.
type TraceLevel string

const (
	LevelPhase      TraceLevel = "phase"
	LevelSystem     TraceLevel = "system"
	LevelInvocation TraceLevel = "invocation"
)

// TraceEvent represents a single event in an execution trace.
type TraceEvent struct {
	Kind         TraceEventKind `json:"kind"`
	Level        TraceLevel     `json:"level,omitempty"`
	ParentID     int64          `json:"parent_id,omitempty"`
	ID           int64          `json:"id"`
	Tick         int            `json:"tick"`
	Duration     time.Duration  `json:"dur,omitempty"`
	Target       string         `json:"target,omitempty"`
	Entities     []string       `json:"entities,omitempty"`
	Reason       string         `json:"reason,omitempty"`
	ErrorMessage string         `json:"err,omitempty"`
}

// TraceData is the top-level structure for a trace file.
type TraceData struct {
	Program string        `json:"program"`
	Ticks   int           `json:"ticks"`
	Events  []*TraceEvent `json:"events"`
}

// ExecutionTracer records the phases, systems and invocations of a run.
// Enter events nest: a phase ("init" or "tick") encloses the systems run in
// it, and a system encloses one invocation per visited combination of
// entities (a single one without an entity filter).
type ExecutionTracer struct {
	mu     sync.Mutex
	Events []*TraceEvent
	nextID int64
	stack  []int64
	starts []time.Time
}

// NewExecutionTracer creates a new tracer.
func NewExecutionTracer() *ExecutionTracer {
	return &ExecutionTracer{
		Events: make([]*TraceEvent, 0),
		nextID: 1,
		stack:  []int64{0},
	}
}

func (t *ExecutionTracer) currentParentID() int64 {
	return t.stack[len(t.stack)-1]
}

// Enter opens a new event and makes it the parent of the events that follow
// until the matching Exit.  ents are the entities an invocation is bound to.
func (t *ExecutionTracer) Enter(tick int, level TraceLevel, target string, ents ...*Entity) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	event := &TraceEvent{
		Kind:     EventEnter,
		Level:    level,
		ID:       id,
		ParentID: t.currentParentID(),
		Tick:     tick,
		Target:   target,
	}
	for _, ent := range ents {
		event.Entities = append(event.Entities, ent.ID.String())
	}
	t.Events = append(t.Events, event)
	t.stack = append(t.stack, id)
	t.starts = append(t.starts, time.Now())
	return id
}

// Exit closes the innermost open event.
func (t *ExecutionTracer) Exit(tick int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.stack) <= 1 {
		return
	}
	opened := t.currentParentID()
	start := t.starts[len(t.starts)-1]
	t.stack = t.stack[:len(t.stack)-1]
	t.starts = t.starts[:len(t.starts)-1]

	event := &TraceEvent{
		Kind:     EventExit,
		ID:       opened,
		ParentID: t.currentParentID(),
		Tick:     tick,
		Duration: time.Since(start),
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	t.Events = append(t.Events, event)
}

// Skip records a system that was not run.
func (t *ExecutionTracer) Skip(tick int, target, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Events = append(t.Events, &TraceEvent{
		Kind:     EventSkip,
		Level:    LevelSystem,
		ID:       t.nextID,
		ParentID: t.currentParentID(),
		Tick:     tick,
		Target:   target,
		Reason:   reason,
	})
	t.nextID++
}

// Invocations returns the enter events of the invocations of the named
// system, in order.
func (t *ExecutionTracer) Invocations(system string) (out []*TraceEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.Events {
		if e.Kind == EventEnter && e.Level == LevelInvocation && e.Target == system {
			out = append(out, e)
		}
	}
	return
}

// Failures returns the exit events that carry an error.
func (t *ExecutionTracer) Failures() (out []*TraceEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.Events {
		if e.Kind == EventExit && e.ErrorMessage != "" {
			out = append(out, e)
		}
	}
	return
}

// EntityIDs returns the distinct entities that appear in the trace.
func (t *ExecutionTracer) EntityIDs() []uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()
	seen := map[string]bool{}
	var ids []uuid.UUID
	for _, e := range t.Events {
		for _, ent := range e.Entities {
			if seen[ent] {
				continue
			}
			seen[ent] = true
			if id, err := uuid.Parse(ent); err == nil {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// WriteJSON writes the trace as an indented TraceData document.
func (t *ExecutionTracer) WriteJSON(w io.Writer, program string, ticks int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&TraceData{Program: program, Ticks: ticks, Events: t.Events})
}
