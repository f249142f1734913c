package capture

import (
	"testing"

	"github.com/cottand/kiln/frontend/types"
	"github.com/cottand/kiln/internal/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureReusesSlots(t *testing.T) {
	x := &types.Variable{Name: "x", Kind: types.VarLocal}
	y := &types.Variable{Name: "y", Kind: types.VarParameter}
	table := NewTable()
	require.True(t, table.Empty())

	first := table.Capture(x)
	assert.Same(t, first, table.Capture(x))
	second := table.Capture(y)

	assert.Equal(t, 0, first.Index)
	assert.Equal(t, 1, second.Index)
	assert.Equal(t, "cap$1$y", second.SyntheticName())
	assert.Equal(t, []*Slot{first, second}, table.Slots())
	assert.True(t, x.Captured)
	assert.True(t, y.Captured)

	found, ok := table.Lookup(y)
	assert.True(t, ok)
	assert.Same(t, second, found)
}

func TestNestedLambdaCapturesThroughOuterSlot(t *testing.T) {
	x := &types.Variable{Name: "x"}
	outer, inner := NewTable(), NewTable()

	outerSlot := outer.Capture(x)
	innerSlot := inner.Capture(outerSlot)

	assert.Same(t, x, Root(innerSlot))
	assert.Equal(t, "x", innerSlot.MemberName())
	assert.True(t, inner.Variables().Contains(x))
	assert.Equal(t, 1, inner.Variables().Size())
}

func TestCaptureThis(t *testing.T) {
	box := &types.Class{Name: "Box"}
	table := NewTable()
	assert.False(t, table.CapturesThis())

	slot := table.Capture(&This{Class: box})
	assert.Same(t, slot, table.Capture(&This{Class: box}), "one slot for the enclosing instance")
	assert.True(t, table.CapturesThis())
	assert.Equal(t, "cap$0$this", slot.SyntheticName())
	assert.Zero(t, table.Variables().Size())

	found, ok := table.Lookup(&This{Class: box})
	assert.True(t, ok)
	assert.Same(t, slot, found)
}

func TestFrozenTable(t *testing.T) {
	x := &types.Variable{Name: "x"}
	table := NewTable()
	slot := table.Capture(x)
	table.Freeze()

	assert.True(t, table.Frozen())
	assert.Same(t, slot, table.Capture(x), "existing slots can still be looked up")
	defer func() {
		f, ok := recover().(*failure.Failure)
		require.True(t, ok, "capturing into a frozen table fails the compilation")
		assert.EqualError(t, f, "internal compiler failure: capture of 'z' into a frozen capture table")
	}()
	table.Capture(&types.Variable{Name: "z"})
	t.Fatal("capture into a frozen table returned")
}
