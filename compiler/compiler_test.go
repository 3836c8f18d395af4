package compiler

import (
	"testing"

	"github.com/BoonLang/boon-sub004/ast"
	"github.com/BoonLang/boon-sub004/engine"
	"github.com/BoonLang/boon-sub004/host"
	"github.com/BoonLang/boon-sub004/internal/addr"
	"github.com/BoonLang/boon-sub004/internal/arena"
	"github.com/BoonLang/boon-sub004/internal/message"
	"github.com/stretchr/testify/require"
)

func newTestLoop() *engine.Loop {
	return engine.New(&host.RecordingAdapter{})
}

var srcCounter uint64

func src() ast.Source {
	srcCounter++
	return ast.Source{Id: addr.SourceId{StableId: srcCounter}}
}

func num(v float64) ast.Expression   { return ast.NumberLiteral{Source: src(), Value: v} }
func str(v string) ast.Expression    { return ast.TextLiteral{Source: src(), Value: v} }
func variable(n string) ast.Variable { return ast.Variable{Source: src(), Name: ast.StrSlice{Text: n}} }

func call(path string, args ...ast.Expression) ast.FunctionCall {
	arguments := make([]ast.Argument, len(args))
	for i, a := range args {
		arguments[i] = ast.Argument{Value: a}
	}
	return ast.FunctionCall{Source: src(), Path: []ast.StrSlice{{Text: path}}, Arguments: arguments}
}

// TestHoldThen_CounterIncrementsOncePerTrigger pins boundary scenario 1
// (spec.md §8): a HOLD register incremented through a THEN gate advances
// exactly once per trigger firing, never on the register's own update.
func TestHoldThen_CounterIncrementsOncePerTrigger(t *testing.T) {
	loop := newTestLoop()
	c := New(loop)

	trigger := engine.NewWire(loop, c.address(src().Id, addr.RootScope, addr.Port{}), addr.RootScope, arena.NilSlot)
	ctx := rootContext(addr.RootScope).withFrame(map[string]arena.SlotId{"trigger": trigger})

	hold := ast.Hold{
		Source: src(),
		Init:   num(0),
		Name:   ast.StrSlice{Text: "count"},
		Body: ast.Then{
			Source:  src(),
			Trigger: variable("trigger"),
			Body:    call("+", variable("count"), num(1)),
		},
	}

	slot, err := c.compileExpr(ctx, hold)
	require.NoError(t, err)
	_, err = loop.RunUntilIdle(20)
	require.NoError(t, err)

	v, ok := loop.Value(slot)
	require.True(t, ok)
	require.True(t, v.Equal(message.Num(0)))

	for i, want := range []float64{1, 2, 3} {
		loop.Enqueue(trigger, addr.Port{Kind: addr.PortDefault}, message.Unit())
		_, err := loop.RunUntilIdle(20)
		require.NoError(t, err, "iteration %d", i)
		v, ok := loop.Value(slot)
		require.True(t, ok)
		require.True(t, v.Equal(message.Num(want)), "iteration %d: got %v want %v", i, v, want)
	}
}

// TestLatest_LastWins pins boundary scenario 2: a bare LATEST with no
// explicit combiner emits once every input has been seen, then re-emits
// whichever input most recently updated (spec.md §9 Open Question 1).
func TestLatest_LastWins(t *testing.T) {
	loop := newTestLoop()
	c := New(loop)

	a := engine.NewWire(loop, c.address(src().Id, addr.RootScope, addr.Port{}), addr.RootScope, arena.NilSlot)
	b := engine.NewWire(loop, c.address(src().Id, addr.RootScope, addr.Port{}), addr.RootScope, arena.NilSlot)
	ctx := rootContext(addr.RootScope).withFrame(map[string]arena.SlotId{"a": a, "b": b})

	latest := ast.Latest{Source: src(), Inputs: []ast.Expression{variable("a"), variable("b")}}
	slot, err := c.compileExpr(ctx, latest)
	require.NoError(t, err)

	loop.Enqueue(a, addr.Port{Kind: addr.PortDefault}, message.Num(1))
	_, err = loop.RunUntilIdle(20)
	require.NoError(t, err)
	_, ok := loop.Value(slot)
	require.False(t, ok, "must not emit until every input has been seen at least once")

	loop.Enqueue(b, addr.Port{Kind: addr.PortDefault}, message.Num(2))
	_, err = loop.RunUntilIdle(20)
	require.NoError(t, err)
	v, ok := loop.Value(slot)
	require.True(t, ok)
	require.True(t, v.Equal(message.Num(2)), "once all seen, emits the most recently updated input")

	loop.Enqueue(a, addr.Port{Kind: addr.PortDefault}, message.Num(3))
	_, err = loop.RunUntilIdle(20)
	require.NoError(t, err)
	v, ok = loop.Value(slot)
	require.True(t, ok)
	require.True(t, v.Equal(message.Num(3)))
}

// TestWhen_FilterSemantics pins boundary scenario 3: WHEN tests patterns
// in source order and only the first matching arm's body is live.
func TestWhen_FilterSemantics(t *testing.T) {
	loop := newTestLoop()
	c := New(loop)

	x := engine.NewWire(loop, c.address(src().Id, addr.RootScope, addr.Port{}), addr.RootScope, arena.NilSlot)
	ctx := rootContext(addr.RootScope).withFrame(map[string]arena.SlotId{"x": x})

	when := ast.When{
		Source:  src(),
		Subject: variable("x"),
		Arms: []ast.WhenArm{
			{Pattern: ast.NumberPattern{Value: 5}, Body: str("five")},
			{Pattern: ast.WildcardPattern{}, Body: str("other")},
		},
	}
	slot, err := c.compileExpr(ctx, when)
	require.NoError(t, err)

	loop.Enqueue(x, addr.Port{Kind: addr.PortDefault}, message.Num(5))
	_, err = loop.RunUntilIdle(20)
	require.NoError(t, err)
	v, ok := loop.Value(slot)
	require.True(t, ok)
	require.True(t, v.Equal(message.Str("five")))

	loop.Enqueue(x, addr.Port{Kind: addr.PortDefault}, message.Num(3))
	_, err = loop.RunUntilIdle(20)
	require.NoError(t, err)
	v, ok = loop.Value(slot)
	require.True(t, ok)
	require.True(t, v.Equal(message.Str("other")))
}

// TestTextTemplate_RendersOnDependencyChange pins boundary scenario 4:
// a TEXT template re-renders whenever any interpolated dependency changes.
func TestTextTemplate_RendersOnDependencyChange(t *testing.T) {
	loop := newTestLoop()
	c := New(loop)

	name := engine.NewWire(loop, c.address(src().Id, addr.RootScope, addr.Port{}), addr.RootScope, arena.NilSlot)
	ctx := rootContext(addr.RootScope).withFrame(map[string]arena.SlotId{"name": name})

	tmpl := ast.TextTemplate{
		Source: src(),
		Parts: []ast.TextPart{
			{Text: "hello, "},
			{IsInterpolation: true, Value: variable("name")},
			{Text: "!"},
		},
	}
	slot, err := c.compileExpr(ctx, tmpl)
	require.NoError(t, err)

	loop.Enqueue(name, addr.Port{Kind: addr.PortDefault}, message.Str("ada"))
	_, err = loop.RunUntilIdle(20)
	require.NoError(t, err)
	v, ok := loop.Value(slot)
	require.True(t, ok)
	require.Equal(t, "hello, ada!", v.Text.String())

	loop.Enqueue(name, addr.Port{Kind: addr.PortDefault}, message.Str("grace"))
	_, err = loop.RunUntilIdle(20)
	require.NoError(t, err)
	v, ok = loop.Value(slot)
	require.True(t, ok)
	require.Equal(t, "hello, grace!", v.Text.String())
}

// TestListMap_CapturesExternalDependencyBySharedSlot pins boundary
// scenario 5: each List/map item instantiation shares (rather than
// copies) a name resolved from outside the template, so a later change to
// that captured value live-updates every item's result.
func TestListMap_CapturesExternalDependencyBySharedSlot(t *testing.T) {
	loop := newTestLoop()
	c := New(loop)

	source := engine.NewBus(loop, c.address(src().Id, addr.RootScope, addr.Port{}), addr.RootScope)
	loop.ListInsert(source, 0, message.Num(1))
	loop.ListInsert(source, 1, message.Num(2))

	offset := engine.NewWire(loop, c.address(src().Id, addr.RootScope, addr.Port{}), addr.RootScope, arena.NilSlot)
	loop.Enqueue(offset, addr.Port{Kind: addr.PortDefault}, message.Num(10))
	_, err := loop.RunUntilIdle(20)
	require.NoError(t, err)

	ctx := rootContext(addr.RootScope).withFrame(map[string]arena.SlotId{"source": source, "offset": offset})

	listMap := ast.List{
		Source:    src(),
		MapSource: variable("source"),
		Template: &ast.ListItemTemplate{
			ItemName: ast.StrSlice{Text: "item"},
			Body:     call("+", variable("item"), variable("offset")),
		},
	}
	resultBus, err := c.compileExpr(ctx, listMap)
	require.NoError(t, err)
	_, err = loop.RunUntilIdle(20)
	require.NoError(t, err)

	items := loop.ListItems(resultBus)
	require.Len(t, items, 2)
	v0, ok := loop.ListItemValue(resultBus, items[0])
	require.True(t, ok)
	require.True(t, v0.Equal(message.Num(11)))
	v1, ok := loop.ListItemValue(resultBus, items[1])
	require.True(t, ok)
	require.True(t, v1.Equal(message.Num(12)))

	loop.Enqueue(offset, addr.Port{Kind: addr.PortDefault}, message.Num(20))
	_, err = loop.RunUntilIdle(20)
	require.NoError(t, err)

	v0, ok = loop.ListItemValue(resultBus, items[0])
	require.True(t, ok)
	require.True(t, v0.Equal(message.Num(21)), "captured slot is shared, not copied: it drives every item's result")
	v1, ok = loop.ListItemValue(resultBus, items[1])
	require.True(t, ok)
	require.True(t, v1.Equal(message.Num(22)))

	// Boundary scenario 5's other half: an item appended to source *after*
	// the map graph already exists must get its own template instantiation,
	// sharing (not snapshotting) the same captured offset slot.
	loop.ListInsert(source, 2, message.Num(3))
	_, err = loop.RunUntilIdle(20)
	require.NoError(t, err)

	items = loop.ListItems(resultBus)
	require.Len(t, items, 3, "a post-compile insert into source gets a fresh template instantiation")
	v2, ok := loop.ListItemValue(resultBus, items[2])
	require.True(t, ok)
	require.True(t, v2.Equal(message.Num(23)))

	loop.Enqueue(offset, addr.Port{Kind: addr.PortDefault}, message.Num(30))
	_, err = loop.RunUntilIdle(20)
	require.NoError(t, err)

	v0, ok = loop.ListItemValue(resultBus, items[0])
	require.True(t, ok)
	require.True(t, v0.Equal(message.Num(31)))
	v2, ok = loop.ListItemValue(resultBus, items[2])
	require.True(t, ok)
	require.True(t, v2.Equal(message.Num(33)), "the item inserted after compile observes a later change to the captured dependency exactly like the pre-existing items")
}

// TestHold_FlushDoesNotCommit pins boundary scenario 6 through the
// compiler: a HOLD body that evaluates to Flushed(_) (here, division by
// zero) is forwarded to subscribers but never committed as the register's
// stored value.
func TestHold_FlushDoesNotCommit(t *testing.T) {
	loop := newTestLoop()
	c := New(loop)

	trigger := engine.NewWire(loop, c.address(src().Id, addr.RootScope, addr.Port{}), addr.RootScope, arena.NilSlot)
	ctx := rootContext(addr.RootScope).withFrame(map[string]arena.SlotId{"trigger": trigger})

	hold := ast.Hold{
		Source: src(),
		Init:   num(0),
		Name:   ast.StrSlice{Text: "count"},
		Body: ast.Then{
			Source:  src(),
			Trigger: variable("trigger"),
			Body:    call("/", num(1), num(0)),
		},
	}
	slot, err := c.compileExpr(ctx, hold)
	require.NoError(t, err)
	_, err = loop.RunUntilIdle(20)
	require.NoError(t, err)

	loop.Enqueue(trigger, addr.Port{Kind: addr.PortDefault}, message.Unit())
	_, err = loop.RunUntilIdle(20)
	require.NoError(t, err)

	v, ok := loop.Value(slot)
	require.True(t, ok)
	require.True(t, v.IsFlushed(), "subscribers observe the flushed payload")

	for _, n := range loop.ExportSnapshot().Nodes {
		if n.Register != nil {
			require.True(t, n.Register.Value.Equal(message.Num(0)), "the register's stored value is still the init value")
		}
	}
}
