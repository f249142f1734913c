package types

import (
	"go/token"

	"github.com/hashicorp/go-set/v3"
)

type ClassKind uint8

const (
	_ ClassKind = iota
	KindClass
	KindInterface
)

func (k ClassKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	default:
		return "invalid"
	}
}

// Class is a resolved class or interface declaration, either compiled from
// source, loaded from a header, or built in.
type Class struct {
	Name      string
	Package   string
	Kind      ClassKind
	Modifiers Modifiers
	// Primitive is the descriptor letter of primitive classes, 0 otherwise
	Primitive byte
	// Header marks the synthetic class holding a unit's top-level functions
	Header bool

	TypeParams []*TypeParameter
	// SuperType is nil only for the root class; interfaces extend it too
	SuperType  Type
	Interfaces []Type

	Fields       []*Field
	Methods      []*Method
	Constructors []*Constructor

	Pos token.Pos

	thisType Type
}

func (c *Class) QualifiedName() string {
	if c.Package == "" {
		return c.Name
	}
	return c.Package + "." + c.Name
}

func (c *Class) String() string { return c.QualifiedName() }

func (c *Class) IsInterface() bool { return c.Kind == KindInterface }

// IsAbstract reports whether c cannot be instantiated
func (c *Class) IsAbstract() bool {
	return c.IsInterface() || c.Modifiers.Has(Abstract)
}

func (c *Class) IsGeneric() bool { return len(c.TypeParams) > 0 }

// ThisType is the type of `this` inside c: c applied to its own type parameters
func (c *Class) ThisType() Type {
	if c.thisType != nil {
		return c.thisType
	}
	if !c.IsGeneric() {
		c.thisType = &ClassType{Class: c}
		return c.thisType
	}
	args := make([]Type, len(c.TypeParams))
	for i, param := range c.TypeParams {
		args[i] = &TypeVar{Param: param}
	}
	c.thisType = &GenericType{Class: c, Args: args}
	return c.thisType
}

// DirectSuperTypes returns the declared super class followed by the interfaces
func (c *Class) DirectSuperTypes() []Type {
	supers := make([]Type, 0, len(c.Interfaces)+1)
	if c.SuperType != nil {
		supers = append(supers, c.SuperType)
	}
	return append(supers, c.Interfaces...)
}

// IsSubclassOf reports whether other is c or one of its ancestors
func (c *Class) IsSubclassOf(other *Class) bool {
	visited := set.New[*Class](4)
	var walk func(*Class) bool
	walk = func(current *Class) bool {
		if current == other {
			return true
		}
		if !visited.Insert(current) {
			return false
		}
		for _, super := range current.DirectSuperTypes() {
			if superClass := ClassOf(super); superClass != nil && walk(superClass) {
				return true
			}
		}
		return false
	}
	return walk(c)
}

func (c *Class) OwnField(name string) *Field {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (c *Class) OwnMethods(name string) []*Method {
	var found []*Method
	for _, m := range c.Methods {
		if m.Name == name {
			found = append(found, m)
		}
	}
	return found
}

func (c *Class) AddField(f *Field) *Field {
	f.Owner = c
	c.Fields = append(c.Fields, f)
	return f
}

func (c *Class) AddMethod(m *Method) *Method {
	m.Owner = c
	c.Methods = append(c.Methods, m)
	return m
}

func (c *Class) AddConstructor(ctor *Constructor) *Constructor {
	ctor.Owner = c
	c.Constructors = append(c.Constructors, ctor)
	return ctor
}

// FunctionalMethod returns the single abstract method of a SAM interface, nil
// if c is not one
func (c *Class) FunctionalMethod() *Method {
	if !c.IsInterface() {
		return nil
	}
	abstract := c.AbstractMethods()
	if len(abstract) != 1 {
		return nil
	}
	return abstract[0]
}

// Conversions returns the implicit conversion methods declared on c
func (c *Class) Conversions() []*Method {
	var conversions []*Method
	for _, m := range c.Methods {
		if m.Modifiers.Has(Implicit|Static) && len(m.Params) == 1 {
			conversions = append(conversions, m)
		}
	}
	return conversions
}

// FindConversion looks for an implicit conversion from a value of type from to
// the type to, declared either on the class of from or on the class of to
func FindConversion(from, to Type) *Method {
	for _, c := range []*Class{ClassOf(from), ClassOf(to)} {
		if c == nil {
			continue
		}
		for _, conv := range c.Conversions() {
			if Equal(conv.Params[0].Type, from) && IsSuperType(to, conv.Return) {
				return conv
			}
		}
	}
	return nil
}
