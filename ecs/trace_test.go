package ecs

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/panyam/ecsl/decl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceNesting(t *testing.T) {
	s := NewScheduler(movementProgram(t), &bytes.Buffer{}, &SequentialIDs{})
	s.Tracer = NewExecutionTracer()
	require.NoError(t, s.Run(1))

	events := s.Tracer.Events
	require.NotEmpty(t, events)
	assert.Equal(t, EventEnter, events[0].Kind)
	assert.Equal(t, LevelPhase, events[0].Level)
	assert.Equal(t, "init", events[0].Target)
	assert.Equal(t, int64(0), events[0].ParentID)

	setup := s.Tracer.Invocations("setup")
	require.Len(t, setup, 1)
	assert.Empty(t, setup[0].Entities)
	assert.Equal(t, LevelInvocation, setup[0].Level)
	assert.Equal(t, int64(3), setup[0].ID)
	assert.Equal(t, int64(2), setup[0].ParentID)
	assert.Equal(t, 0, setup[0].Tick)

	move := s.Tracer.Invocations("move")
	require.Len(t, move, 1)
	assert.Equal(t, []string{"00000000-0000-0000-0000-000000000001"}, move[0].Entities)
	assert.Equal(t, 1, move[0].Tick)

	show := s.Tracer.Invocations("show")
	require.Len(t, show, 2)
	assert.Equal(t, []string{"00000000-0000-0000-0000-000000000002"}, show[1].Entities)

	assert.Len(t, s.Tracer.EntityIDs(), 2)
	assert.Empty(t, s.Tracer.Failures())

	// Every enter has a matching exit
	open := map[int64]bool{}
	for _, e := range events {
		switch e.Kind {
		case EventEnter:
			open[e.ID] = true
		case EventExit:
			assert.True(t, open[e.ID], "exit without enter: %d", e.ID)
			delete(open, e.ID)
		}
	}
	assert.Empty(t, open)
}

// A system named like a phase is still counted once per invocation.
func TestTraceSystemNamedLikePhase(t *testing.T) {
	prog := newProgram(t, nil, []string{"tick"}, system("tick", nil, printExpr(decl.IntAtom(1))))
	s := NewScheduler(prog, &bytes.Buffer{}, nil)
	s.Tracer = NewExecutionTracer()
	require.NoError(t, s.Run(1))

	invocations := s.Tracer.Invocations("tick")
	require.Len(t, invocations, 1)
	assert.Equal(t, int64(4), invocations[0].ID)
	assert.Equal(t, int64(3), invocations[0].ParentID)

	var levels []TraceLevel
	for _, e := range s.Tracer.Events {
		if e.Kind == EventEnter && e.Target == "tick" {
			levels = append(levels, e.Level)
		}
	}
	assert.Equal(t, []TraceLevel{LevelPhase, LevelSystem, LevelInvocation}, levels)
}

func TestTracePairs(t *testing.T) {
	prog := newProgram(t, []string{"setup"}, []string{"pairs"},
		system("setup", nil, spawnExpr(posInit(1, 0)), spawnExpr(posInit(2, 0))),
		system("pairs", []*decl.Filter{namedFilter("a", arg("Pos", "p")), namedFilter("b", arg("Pos", "q"))}))
	s := NewScheduler(prog, &bytes.Buffer{}, &SequentialIDs{})
	s.Tracer = NewExecutionTracer()
	require.NoError(t, s.Run(1))

	pairs := s.Tracer.Invocations("pairs")
	require.Len(t, pairs, 2)
	assert.Equal(t, []string{"00000000-0000-0000-0000-000000000002", "00000000-0000-0000-0000-000000000001"}, pairs[1].Entities)
	assert.Len(t, s.Tracer.EntityIDs(), 2)
}

func TestTraceSkipsAndFailures(t *testing.T) {
	prog := newProgram(t, []string{"bad"}, []string{"show"},
		system("bad", nil, decl.Call(decl.BuiltInDelete)),
		system("show", []*decl.Filter{resourceFilter(arg("Clock", "c"))}, printExpr(decl.Ident("c"))))
	s := NewScheduler(prog, &bytes.Buffer{}, nil)
	s.ContinueOnError = true
	s.Tracer = NewExecutionTracer()
	require.NoError(t, s.Run(1))

	failures := s.Tracer.Failures()
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].ErrorMessage, ErrNoEntity.Error())

	var skips []*TraceEvent
	for _, e := range s.Tracer.Events {
		if e.Kind == EventSkip {
			skips = append(skips, e)
		}
	}
	require.Len(t, skips, 1)
	assert.Equal(t, "show", skips[0].Target)
	assert.Equal(t, LevelSystem, skips[0].Level)
	assert.Equal(t, "missing resource Clock", skips[0].Reason)
	assert.Equal(t, 1, skips[0].Tick)
}

func TestTraceJSON(t *testing.T) {
	s := NewScheduler(movementProgram(t), &bytes.Buffer{}, &SequentialIDs{})
	s.Tracer = NewExecutionTracer()
	require.NoError(t, s.Run(2))

	buf := &bytes.Buffer{}
	require.NoError(t, s.Tracer.WriteJSON(buf, "movement", s.Ticks()))

	var data TraceData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, "movement", data.Program)
	assert.Equal(t, 2, data.Ticks)
	assert.Len(t, data.Events, len(s.Tracer.Events))
}

// Exit without an open event is ignored.
func TestTraceUnbalancedExit(t *testing.T) {
	tr := NewExecutionTracer()
	tr.Exit(0, nil)
	assert.Empty(t, tr.Events)
}
