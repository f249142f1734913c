package scope

import (
	"github.com/cottand/kiln/frontend/types"
)

var _ Context = (*Method)(nil)

// Method is the body of a method, constructor or top-level function: its
// type parameters and parameters
type Method struct {
	link
	typeParams []*types.TypeParameter
	params     []*types.Variable
	ret        types.Type
	static     bool
}

func NewMethod(parent Context, m *types.Method, params []*types.Variable) *Method {
	return &Method{
		link:       link{parent: parent},
		typeParams: m.TypeParams,
		params:     params,
		ret:        m.ReturnType(),
		static:     m.IsStatic() || parent.IsStatic(),
	}
}

// NewConstructor is the body of a constructor, which returns nothing and
// sees the type parameters of its class through parent
func NewConstructor(parent Context, params []*types.Variable) *Method {
	return &Method{
		link:   link{parent: parent},
		params: params,
		ret:    types.Void,
	}
}

func (m *Method) ResolveTypeParameter(name string) *types.TypeParameter {
	for _, p := range m.typeParams {
		if p.Name == name {
			return p
		}
	}
	return m.parent.ResolveTypeParameter(name)
}

func (m *Method) ResolveField(name string) types.DataMember {
	for _, v := range m.params {
		if v.Name == name {
			return v
		}
	}
	return m.parent.ResolveField(name)
}

func (m *Method) IsStatic() bool         { return m.static }
func (m *Method) ReturnType() types.Type { return m.ret }

func (m *Method) Capture(member types.DataMember) (types.DataMember, bool) {
	for _, v := range m.params {
		if types.DataMember(v) == member {
			return v, true
		}
	}
	return m.parent.Capture(member)
}

func (m *Method) CaptureThis() (types.DataMember, bool) {
	if m.static {
		return nil, false
	}
	return m.parent.CaptureThis()
}
