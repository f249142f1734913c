package ast

import "github.com/cottand/kiln/frontend/types"

// Unit is one compilation unit: a source file's classes, top-level functions
// and top-level fields. Top-level members are owned by the synthetic Header
// class of the unit.
type Unit struct {
	Range
	Package   string
	Name      string
	Imports   []*Import
	Classes   []*ClassDecl
	Functions []*MethodDecl
	Fields    []*FieldDecl

	// Header is the synthetic class of the top-level members, set by resolveTypes
	Header *types.Class
}

func (*Unit) Describe() string { return "unit" }

// HeaderName is the name of the synthetic class holding the top-level members of u
func (u *Unit) HeaderName() string {
	if u.Name == "" {
		return "UnitKt"
	}
	return u.Name + "Kt"
}

// Import brings a class, or every class of a package when Wildcard is set,
// into scope.
type Import struct {
	Range
	Path     string
	Alias    string
	Wildcard bool

	// Class is the imported class, nil for wildcard imports or when unresolved
	Class *types.Class
}

func (*Import) Describe() string { return "import" }

// LocalName is the name the imported class is known as in the unit
func (i *Import) LocalName() string {
	if i.Alias != "" {
		return i.Alias
	}
	for j := len(i.Path) - 1; j >= 0; j-- {
		if i.Path[j] == '.' {
			return i.Path[j+1:]
		}
	}
	return i.Path
}

type ClassDecl struct {
	Range
	Name         string
	Kind         types.ClassKind
	Modifiers    types.Modifiers
	TypeParams   []*TypeParamDecl
	SuperType    TypeRef
	Interfaces   []TypeRef
	Fields       []*FieldDecl
	Methods      []*MethodDecl
	Constructors []*ConstructorDecl

	Class *types.Class
}

func (d *ClassDecl) Describe() string { return d.Kind.String() + " declaration" }

type TypeParamDecl struct {
	Range
	Name        string
	Variance    types.Variance
	UpperBounds []TypeRef
	LowerBound  TypeRef

	Param *types.TypeParameter
}

func (*TypeParamDecl) Describe() string { return "type parameter" }

type FieldDecl struct {
	Range
	Name      string
	Modifiers types.Modifiers
	// Type may be omitted when Init is given
	Type TypeRef
	Init Expr

	Field *types.Field
}

func (*FieldDecl) Describe() string { return "field declaration" }

// MethodDecl is a method of a class or a top-level function. Abstract methods
// have no Body.
type MethodDecl struct {
	Range
	Name       string
	Modifiers  types.Modifiers
	TypeParams []*TypeParamDecl
	Params     []*ParamDecl
	// Return is nil for methods returning nothing
	Return TypeRef
	Body   *Block

	Method *types.Method
}

func (*MethodDecl) Describe() string { return "method declaration" }

type ConstructorDecl struct {
	Range
	Modifiers types.Modifiers
	Params    []*ParamDecl
	Body      *Block

	Constructor *types.Constructor
}

func (*ConstructorDecl) Describe() string { return "constructor declaration" }

// ParamDecl is a parameter of a method, constructor or lambda.
// Lambda parameters may leave Type out.
type ParamDecl struct {
	Range
	Name  string
	Type  TypeRef
	Final bool

	Variable *types.Variable
}

func (*ParamDecl) Describe() string { return "parameter" }
