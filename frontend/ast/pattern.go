package ast

import "github.com/cottand/kiln/frontend/types"

var (
	_ Pattern = (*WildcardPattern)(nil)
	_ Pattern = (*BindingPattern)(nil)
	_ Pattern = (*LiteralPattern)(nil)
	_ Pattern = (*TypePattern)(nil)
)

func (*WildcardPattern) patternNode() {}
func (*BindingPattern) patternNode()  {}
func (*LiteralPattern) patternNode()  {}
func (*TypePattern) patternNode()     {}

func (*WildcardPattern) Describe() string { return "wildcard pattern" }
func (*BindingPattern) Describe() string  { return "binding pattern" }
func (*LiteralPattern) Describe() string  { return "literal pattern" }
func (*TypePattern) Describe() string     { return "type pattern" }

// WildcardPattern is `_`, matching anything
type WildcardPattern struct {
	Range
}

// BindingPattern binds the matched value to Name. With a Type, it only
// matches values of that type, and the binding has that type.
type BindingPattern struct {
	Range
	Name string
	Type TypeRef

	Variable *types.Variable
}

type LiteralPattern struct {
	Range
	Value *Literal
}

// TypePattern matches values of Type without binding them
type TypePattern struct {
	Range
	Type TypeRef
}
