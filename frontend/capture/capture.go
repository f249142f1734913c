// Package capture records the outer bindings a lambda refers to.
//
// Every Lambda owns one Table. While the lambda body is type checked, any read
// of a local variable, parameter or `this` declared outside the lambda is
// forwarded to its Table, which allocates a Slot for it or reuses the slot
// allocated by an earlier read. A nested lambda capturing a binding of an
// outer-outer scope makes the enclosing lambda capture it as well, so the
// Source of a Slot is either the original binding or a Slot of the enclosing
// lambda.
//
// Tables only grow, and are frozen before code generation.
package capture

import (
	"fmt"

	"github.com/cottand/kiln/frontend/types"
	"github.com/cottand/kiln/internal/failure"
	"github.com/hashicorp/go-set/v3"
)

// Slot is a synthetic field of a lambda holding one captured binding.
// It is itself a DataMember so that references inside the lambda body resolve
// to it instead of the outer binding.
type Slot struct {
	// Index is the position of the slot in the synthetic parameter list of the lambda
	Index  int
	Source types.DataMember
}

var _ types.DataMember = (*Slot)(nil)

func (s *Slot) MemberName() string     { return s.Source.MemberName() }
func (s *Slot) MemberType() types.Type { return s.Source.MemberType() }

// SyntheticName is the name the slot is emitted with
func (s *Slot) SyntheticName() string {
	return fmt.Sprintf("cap$%d$%s", s.Index, s.Source.MemberName())
}

func (s *Slot) String() string { return s.SyntheticName() }

// This is the binding of the enclosing instance, captured when a lambda
// refers to `this` or to an instance member of its class
type This struct {
	Class *types.Class
}

func (t *This) MemberName() string     { return "this" }
func (t *This) MemberType() types.Type { return t.Class.ThisType() }

// Root follows slots back to the binding that was originally captured
func Root(member types.DataMember) types.DataMember {
	for {
		slot, ok := member.(*Slot)
		if !ok {
			return member
		}
		member = slot.Source
	}
}

type Table struct {
	slots    []*Slot
	bySource map[types.DataMember]*Slot
	this     *Slot
	frozen   bool
}

func NewTable() *Table {
	return &Table{bySource: map[types.DataMember]*Slot{}}
}

// Capture returns the slot holding source, allocating it on first use.
// Allocating into a frozen table panics.
func (t *Table) Capture(source types.DataMember) *Slot {
	if _, isThis := source.(*This); isThis {
		return t.CaptureThis(source)
	}
	if slot, ok := t.bySource[source]; ok {
		return slot
	}
	slot := t.allocate(source)
	t.bySource[source] = slot
	if v, ok := Root(source).(*types.Variable); ok {
		v.Captured = true
	}
	return slot
}

// CaptureThis returns the slot holding the enclosing instance
func (t *Table) CaptureThis(this types.DataMember) *Slot {
	if t.this == nil {
		t.this = t.allocate(this)
	}
	return t.this
}

func (t *Table) allocate(source types.DataMember) *Slot {
	if t.frozen {
		failure.Fail("capture of '%s' into a frozen capture table", source.MemberName())
	}
	slot := &Slot{Index: len(t.slots), Source: source}
	t.slots = append(t.slots, slot)
	return slot
}

// Lookup returns the slot already holding source, if any
func (t *Table) Lookup(source types.DataMember) (*Slot, bool) {
	if _, isThis := source.(*This); isThis {
		return t.this, t.this != nil
	}
	slot, ok := t.bySource[source]
	return slot, ok
}

// Slots returns the slots in allocation order, which is the order of the
// synthetic parameters of the lambda
func (t *Table) Slots() []*Slot { return t.slots }

func (t *Table) Len() int { return len(t.slots) }

// Empty reports whether the lambda captures nothing, in which case it can be
// emitted as a static function
func (t *Table) Empty() bool { return len(t.slots) == 0 }

// CapturesThis reports whether an enclosing instance must be passed to the lambda
func (t *Table) CapturesThis() bool { return t.this != nil }

// Variables returns the local variables and parameters captured, directly or
// through an enclosing lambda
func (t *Table) Variables() *set.Set[*types.Variable] {
	vars := set.New[*types.Variable](len(t.slots))
	for _, slot := range t.slots {
		if v, ok := Root(slot).(*types.Variable); ok {
			vars.Insert(v)
		}
	}
	return vars
}

func (t *Table) Freeze()      { t.frozen = true }
func (t *Table) Frozen() bool { return t.frozen }
