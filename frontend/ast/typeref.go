package ast

import "strings"

var (
	_ TypeRef = (*NamedTypeRef)(nil)
	_ TypeRef = (*FunctionTypeRef)(nil)
)

// NamedTypeRef is a class or type parameter name, possibly qualified and
// applied to type arguments, such as List<Int>
type NamedTypeRef struct {
	typeRefBase
	Name string
	Args []TypeRef
}

func (*NamedTypeRef) Describe() string { return "type" }

func (t *NamedTypeRef) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	args := make([]string, len(t.Args))
	for i, arg := range t.Args {
		args[i] = TypeRefString(arg)
	}
	return t.Name + "<" + strings.Join(args, ", ") + ">"
}

// FunctionTypeRef is the sugar (A, B) -> R for Function2<A, B, R>
type FunctionTypeRef struct {
	typeRefBase
	Params []TypeRef
	Return TypeRef
}

func (*FunctionTypeRef) Describe() string { return "function type" }

func (t *FunctionTypeRef) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = TypeRefString(p)
	}
	return "(" + strings.Join(params, ", ") + ") -> " + TypeRefString(t.Return)
}

// TypeRefString prints ref as written in the source
func TypeRefString(ref TypeRef) string {
	switch ref := ref.(type) {
	case nil:
		return "void"
	case *NamedTypeRef:
		return ref.String()
	case *FunctionTypeRef:
		return ref.String()
	default:
		return ref.Describe()
	}
}

// Named is a shorthand to build a NamedTypeRef
func Named(name string, args ...TypeRef) *NamedTypeRef {
	return &NamedTypeRef{Name: name, Args: args}
}
