package scope

import (
	"github.com/cottand/kiln/frontend/capture"
	"github.com/cottand/kiln/frontend/types"
)

var _ Context = (*Lambda)(nil)

// Lambda is the body of a lambda: its parameters combined with the context
// the lambda appears in. Bindings of the enclosing context that the body
// reads are captured into the lambda's table.
type Lambda struct {
	*Combining
	table *capture.Table
	ret   types.Type
}

// NewLambda returns the context of a lambda body. ret is the return type of
// the functional method the lambda implements, nil while it is being inferred.
func NewLambda(outer Context, params []*types.Variable, table *capture.Table, ret types.Type) *Lambda {
	return &Lambda{
		Combining: Combine(NewBindings(params...), outer),
		table:     table,
		ret:       ret,
	}
}

func (l *Lambda) Table() *capture.Table  { return l.table }
func (l *Lambda) ReturnType() types.Type { return l.ret }

// Capture returns the parameters of the lambda as they are, and the capture
// slot of anything declared further out
func (l *Lambda) Capture(member types.DataMember) (types.DataMember, bool) {
	if own, ok := l.inner.Capture(member); ok {
		return own, true
	}
	outer, ok := l.outer.Capture(member)
	if !ok {
		return nil, false
	}
	return l.table.Capture(outer), true
}

func (l *Lambda) CaptureThis() (types.DataMember, bool) {
	outer, ok := l.outer.CaptureThis()
	if !ok {
		return nil, false
	}
	return l.table.CaptureThis(outer), true
}
