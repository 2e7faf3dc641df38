package ecs

import (
	"testing"

	"github.com/google/uuid"
	"github.com/panyam/ecsl/decl"
	"github.com/panyam/ecsl/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Shapes used by the ecs tests:
//
//	component Pos { x: int, y: int }
//	component Vel { dx: int, dy: int }
//	resource Clock { tick: int }
//	struct Pair { a: int, b: int }
func testContext(t *testing.T) *runtime.Context {
	t.Helper()
	ctx := runtime.NewContext()
	shapes := []struct {
		kind   decl.ShapeKind
		name   string
		fields []string
	}{
		{decl.ShapeComponent, "Pos", []string{"x", "y"}},
		{decl.ShapeComponent, "Vel", []string{"dx", "dy"}},
		{decl.ShapeResource, "Clock", []string{"tick"}},
		{decl.ShapeStruct, "Pair", []string{"a", "b"}},
	}
	for _, s := range shapes {
		var fields []*decl.FieldDecl
		for _, f := range s.fields {
			fields = append(fields, &decl.FieldDecl{Name: f, Type: decl.IntType})
		}
		def, err := runtime.NewDef(s.kind, s.name, fields...)
		require.NoError(t, err)
		require.NoError(t, ctx.RegisterDef(def))
	}
	return ctx
}

func shape(name string, fields map[string]int64) runtime.Var {
	vals := map[string]runtime.Var{}
	for k, v := range fields {
		vals[k] = runtime.IntVar(v)
	}
	return runtime.StructVar(runtime.NewStruct(name, nil, vals))
}

func pos(x, y int64) runtime.Var { return shape("Pos", map[string]int64{"x": x, "y": y}) }
func vel(dx, dy int64) runtime.Var { return shape("Vel", map[string]int64{"dx": dx, "dy": dy}) }
func clock(tick int64) runtime.Var { return shape("Clock", map[string]int64{"tick": tick}) }
func pair(a, b int64) runtime.Var { return shape("Pair", map[string]int64{"a": a, "b": b}) }

func TestSequentialIDs(t *testing.T) {
	ids := &SequentialIDs{}
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", ids.NextID().String())
	assert.Equal(t, "00000000-0000-0000-0000-000000000002", ids.NextID().String())
	assert.NotEqual(t, uuid.Nil, RandomIDs{}.NextID())
}

func TestSpawnEntity(t *testing.T) {
	w := NewWorld(testContext(t), &SequentialIDs{})
	p := pos(1, 2)
	ent, err := w.Spawn([]runtime.Var{p, vel(3, 4)})
	require.NoError(t, err)
	require.NotNil(t, ent)
	assert.Equal(t, []string{"Pos", "Vel"}, ent.ComponentNames())
	assert.True(t, ent.Has("Pos", "Vel"))
	assert.False(t, ent.Has("Clock"))
	assert.Equal(t, 1, w.Len())

	// The world holds a copy of the spawned values
	scope := w.Context().NewScope()
	scope.Bind("p", p)
	require.NoError(t, scope.MutateVar([]string{"p", "x"}, func(curr *runtime.Var) error {
		*curr = runtime.IntVar(100)
		return nil
	}))
	got, _ := ent.Get("Pos")
	assert.Equal(t, "Pos { x: 1, y: 2 }", got.String())

	found, ok := w.Entity(ent.ID)
	assert.True(t, ok)
	assert.Same(t, ent, found)
}

func TestSpawnResources(t *testing.T) {
	w := NewWorld(testContext(t), nil)
	ent, err := w.Spawn([]runtime.Var{clock(1)})
	require.NoError(t, err)
	assert.Nil(t, ent)
	assert.Equal(t, 0, w.Len())

	c, ok := w.Resource("Clock")
	require.True(t, ok)
	assert.Equal(t, "Clock { tick: 1 }", c.String())

	// Resources are singletons, spawning again replaces
	_, err = w.Spawn([]runtime.Var{clock(5), pos(0, 0)})
	require.NoError(t, err)
	c, _ = w.Resource("Clock")
	assert.Equal(t, "Clock { tick: 5 }", c.String())
	assert.Equal(t, 1, w.Len())
	assert.Equal(t, []string{"Clock"}, w.ResourceNames())
}

func TestSpawnRejects(t *testing.T) {
	w := NewWorld(testContext(t), nil)

	_, err := w.Spawn([]runtime.Var{pos(0, 0), pos(1, 1)})
	assert.ErrorIs(t, err, ErrDuplicateComponent)
	_, err = w.Spawn([]runtime.Var{pair(1, 2)})
	assert.ErrorIs(t, err, ErrNotSpawnable)
	_, err = w.Spawn([]runtime.Var{runtime.IntVar(1)})
	assert.ErrorIs(t, err, runtime.ErrNotAStruct)
	_, err = w.Spawn([]runtime.Var{shape("Ghost", nil)})
	assert.ErrorIs(t, err, runtime.ErrUndefinedName)

	// Nothing is installed when any value is rejected
	_, err = w.Spawn([]runtime.Var{clock(1), pair(1, 2)})
	assert.Error(t, err)
	_, ok := w.Resource("Clock")
	assert.False(t, ok)
	assert.Equal(t, 0, w.Len())
}

func TestQueryAndDespawn(t *testing.T) {
	w := NewWorld(testContext(t), &SequentialIDs{})
	a, _ := w.Spawn([]runtime.Var{pos(0, 0)})
	b, _ := w.Spawn([]runtime.Var{pos(1, 1), vel(1, 1)})
	c, _ := w.Spawn([]runtime.Var{vel(2, 2)})

	assert.Equal(t, []*Entity{a, b, c}, w.Entities())
	assert.Equal(t, []*Entity{a, b}, w.Query("Pos"))
	assert.Equal(t, []*Entity{b}, w.Query("Pos", "Vel"))
	assert.Equal(t, []*Entity{a, b, c}, w.Query())

	snapshot := w.Entities()
	require.NoError(t, w.Despawn(b.ID))
	assert.Len(t, snapshot, 3)
	assert.Equal(t, []*Entity{a, c}, w.Entities())
	_, ok := w.Entity(b.ID)
	assert.False(t, ok)

	assert.ErrorIs(t, w.Despawn(b.ID), ErrNoEntity)
}
