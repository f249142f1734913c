package types

import (
	"fmt"
	"go/token"
	"strings"
)

// DataMember is anything a name can resolve to as a value:
// a Field, a Variable, or a captured binding
type DataMember interface {
	MemberName() string
	MemberType() Type
}

// Callable is the contract shared by methods and constructors
type Callable interface {
	CallableName() string
	OwnerClass() *Class
	Parameters() []*Parameter
	// TypeParameters are the type parameters inferred at a call site
	TypeParameters() []*TypeParameter
	ReturnType() Type
	Mods() Modifiers
	Signature() string
}

var (
	_ DataMember = (*Field)(nil)
	_ DataMember = (*Variable)(nil)
	_ Callable   = (*Method)(nil)
	_ Callable   = (*Constructor)(nil)
)

type Field struct {
	Name      string
	Owner     *Class
	Type      Type
	Modifiers Modifiers
	// Constant is the folded value of a static final field with a literal
	// initializer: int64, float64, bool or string
	Constant any
	Pos      token.Pos
}

func (f *Field) MemberName() string { return f.Name }
func (f *Field) MemberType() Type   { return f.Type }
func (f *Field) IsStatic() bool     { return f.Modifiers.Has(Static) }

type VariableKind uint8

const (
	VarLocal VariableKind = iota
	VarParameter
	VarPattern
)

// Variable is a local binding: a local variable, a parameter of a method or
// lambda body, or a binding introduced by a pattern
type Variable struct {
	Name  string
	Type  Type
	Kind  VariableKind
	Final bool
	// Index is the position of a parameter in its parameter list
	Index int
	// Assignments counts assignments after initialisation
	Assignments int
	// Captured is set once any closure captured this variable
	Captured bool
	Pos      token.Pos
}

func (v *Variable) MemberName() string { return v.Name }
func (v *Variable) MemberType() Type {
	if v.Type == nil {
		return Unknown
	}
	return v.Type
}

// EffectivelyFinal reports whether v is never reassigned
func (v *Variable) EffectivelyFinal() bool { return v.Assignments == 0 }

// Parameter is a parameter in a method or constructor signature
type Parameter struct {
	Name string
	Type Type
}

type Method struct {
	Name       string
	Owner      *Class
	TypeParams []*TypeParameter
	Params     []*Parameter
	Return     Type
	Modifiers  Modifiers
	// Intrinsic names the built-in operation implementing this method, if any
	Intrinsic string
	Pos       token.Pos
}

func (m *Method) CallableName() string              { return m.Name }
func (m *Method) OwnerClass() *Class                { return m.Owner }
func (m *Method) Parameters() []*Parameter          { return m.Params }
func (m *Method) TypeParameters() []*TypeParameter  { return m.TypeParams }
func (m *Method) Mods() Modifiers                   { return m.Modifiers }
func (m *Method) IsStatic() bool                    { return m.Modifiers.Has(Static) }
func (m *Method) IsAbstract() bool                  { return m.Modifiers.Has(Abstract) }
func (m *Method) ReturnType() Type {
	if m.Return == nil {
		return Void
	}
	return m.Return
}

func (m *Method) ParamDescriptor() string {
	return paramDescriptor(m.Params)
}

// Descriptor is the ABI-shaped method descriptor, e.g. (IJ)D
func (m *Method) Descriptor() string {
	return m.ParamDescriptor() + Descriptor(m.ReturnType())
}

func (m *Method) Signature() string {
	return m.Name + paramSignature(m.Params)
}

func (m *Method) String() string {
	if m.Owner == nil {
		return m.Signature()
	}
	return m.Owner.Name + "." + m.Signature()
}

type Constructor struct {
	Owner     *Class
	Params    []*Parameter
	Modifiers Modifiers
	// Synthetic constructors are generated from the fields of a class
	// declaring no constructor
	Synthetic bool
	Pos       token.Pos
}

func (c *Constructor) CallableName() string     { return "<init>" }
func (c *Constructor) OwnerClass() *Class       { return c.Owner }
func (c *Constructor) Parameters() []*Parameter { return c.Params }
func (c *Constructor) Mods() Modifiers          { return c.Modifiers }

// TypeParameters of a constructor are those of its class, so that `Box(5)`
// infers Box<Int>
func (c *Constructor) TypeParameters() []*TypeParameter { return c.Owner.TypeParams }
func (c *Constructor) ReturnType() Type                 { return c.Owner.ThisType() }
func (c *Constructor) Descriptor() string               { return paramDescriptor(c.Params) + "V" }
func (c *Constructor) Signature() string {
	return c.Owner.Name + paramSignature(c.Params)
}
func (c *Constructor) String() string { return c.Signature() }

func paramDescriptor(params []*Parameter) string {
	sb := strings.Builder{}
	sb.WriteString("(")
	for _, p := range params {
		sb.WriteString(Descriptor(p.Type))
	}
	sb.WriteString(")")
	return sb.String()
}

func paramSignature(params []*Parameter) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = fmt.Sprintf("%s: %s", p.Name, typeNameOrUnknown(p.Type))
	}
	return "(" + strings.Join(names, ", ") + ")"
}

func typeNameOrUnknown(t Type) string {
	if t == nil {
		return Unknown.TypeName()
	}
	return t.TypeName()
}
