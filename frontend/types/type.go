package types

import (
	"encoding/binary"
	"hash/fnv"
	"strings"
)

// Type is a resolved (possibly generic) type.
//
// The following types exist:
//
//	ClassType:         a non-generic class, or a generic class used raw
//	GenericType:       a generic class applied to type arguments
//	TypeVar:           a reference to a TypeParameter
//	IntersectionType:  the conjunction of several types, see TypeParameter.DefaultType
//	Unknown, Void, Null: sentinels
type Type interface {
	// TypeName is what to call this type in diagnostics
	TypeName() string
	Hash() uint64
	isType()
}

var (
	_ Type = (*ClassType)(nil)
	_ Type = (*GenericType)(nil)
	_ Type = (*TypeVar)(nil)
	_ Type = (*IntersectionType)(nil)
	_ Type = (*sentinelType)(nil)
)

type sentinelType struct {
	name string
}

func (t *sentinelType) TypeName() string { return t.name }
func (t *sentinelType) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("sentinel"))
	_, _ = h.Write([]byte(t.name))
	return h.Sum64()
}
func (*sentinelType) isType() {}

var (
	// Unknown is substituted for the type of anything that failed to resolve.
	// It is compatible with every other type so that one error does not cascade.
	Unknown Type = &sentinelType{name: "<unknown>"}
	// Void is the type of expressions that produce no value
	Void Type = &sentinelType{name: "void"}
	// Null is the type of the null literal, a subtype of every reference type
	Null Type = &sentinelType{name: "null"}
)

// IsUnknown reports whether t is missing or the Unknown sentinel
func IsUnknown(t Type) bool {
	return t == nil || t == Unknown
}

// ContainsUnknown reports whether t mentions Unknown anywhere
func ContainsUnknown(t Type) bool {
	switch t := t.(type) {
	case nil:
		return true
	case *GenericType:
		for _, arg := range t.Args {
			if ContainsUnknown(arg) {
				return true
			}
		}
		return false
	case *IntersectionType:
		for _, member := range t.Types {
			if ContainsUnknown(member) {
				return true
			}
		}
		return false
	default:
		return t == Unknown
	}
}

type ClassType struct {
	Class *Class
}

func (t *ClassType) TypeName() string { return t.Class.Name }
func (t *ClassType) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("ClassType"))
	_, _ = h.Write([]byte(t.Class.QualifiedName()))
	return h.Sum64()
}
func (*ClassType) isType() {}

type GenericType struct {
	Class *Class
	Args  []Type
}

func (t *GenericType) TypeName() string {
	sb := strings.Builder{}
	sb.WriteString(t.Class.Name)
	sb.WriteString("<")
	for i, arg := range t.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.TypeName())
	}
	sb.WriteString(">")
	return sb.String()
}

func (t *GenericType) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("GenericType"))
	_, _ = h.Write([]byte(t.Class.QualifiedName()))
	arr := make([]byte, 0, 8*len(t.Args))
	for _, arg := range t.Args {
		arr = binary.LittleEndian.AppendUint64(arr, arg.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}
func (*GenericType) isType() {}

type TypeVar struct {
	Param *TypeParameter
}

func (t *TypeVar) TypeName() string { return t.Param.Name }
func (t *TypeVar) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("TypeVar"))
	_, _ = h.Write(binary.LittleEndian.AppendUint64(nil, t.Param.id))
	return h.Sum64()
}
func (*TypeVar) isType() {}

type IntersectionType struct {
	Types []Type
}

func (t *IntersectionType) TypeName() string {
	names := make([]string, len(t.Types))
	for i, member := range t.Types {
		names[i] = member.TypeName()
	}
	return strings.Join(names, " & ")
}

func (t *IntersectionType) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("IntersectionType"))
	arr := make([]byte, 0, 8*len(t.Types))
	for _, member := range t.Types {
		arr = binary.LittleEndian.AppendUint64(arr, member.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}
func (*IntersectionType) isType() {}

// Apply returns c applied to args, or the raw ClassType when args is empty
func Apply(c *Class, args ...Type) Type {
	if len(args) == 0 {
		return &ClassType{Class: c}
	}
	return &GenericType{Class: c, Args: args}
}

// ClassOf returns the class a value of type t is an instance of.
// Type variables answer their erasure; sentinels and intersections of
// unrelated classes answer nil.
func ClassOf(t Type) *Class {
	switch t := t.(type) {
	case *ClassType:
		return t.Class
	case *GenericType:
		return t.Class
	case *TypeVar:
		return t.Param.Erasure()
	case *IntersectionType:
		for _, member := range t.Types {
			if c := ClassOf(member); c != nil {
				return c
			}
		}
	}
	return nil
}

// Equal is structural equality; Unknown is only equal to itself
func Equal(a, b Type) bool {
	if a == b {
		return true
	}
	switch a := a.(type) {
	case *ClassType:
		switch b := b.(type) {
		case *ClassType:
			return a.Class == b.Class
		case *GenericType:
			return false
		}
	case *GenericType:
		b, ok := b.(*GenericType)
		if !ok || a.Class != b.Class || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !Equal(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case *TypeVar:
		b, ok := b.(*TypeVar)
		return ok && a.Param == b.Param
	case *IntersectionType:
		b, ok := b.(*IntersectionType)
		if !ok || len(a.Types) != len(b.Types) {
			return false
		}
		for i := range a.Types {
			if !Equal(a.Types[i], b.Types[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Descriptor is the ABI-shaped descriptor of t: a single letter for
// primitives and void, L<qualified/name>; for reference types.
// Type variables are described by their erasure.
func Descriptor(t Type) string {
	if t == Void {
		return "V"
	}
	c := ClassOf(t)
	if c == nil {
		return "Lkiln/lang/Any;"
	}
	if c.Primitive != 0 {
		return string(c.Primitive)
	}
	return "L" + strings.ReplaceAll(c.QualifiedName(), ".", "/") + ";"
}
