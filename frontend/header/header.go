// Package header exports the API of compiled units so that other units can be
// compiled against it without their source.
//
// A Header lists the classes a unit declares, its synthetic class of
// top-level members included, with every type written out as text:
// qualified class names applied to arguments, like kiln.lang.List<T>, and the
// bare names of type parameters.
package header

import (
	"fmt"
	"strings"

	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Header struct {
	ID      uuid.UUID `yaml:"id"`
	Package string    `yaml:"package"`
	Unit    string    `yaml:"unit"`
	Classes []*Class  `yaml:"classes"`
}

type Class struct {
	Name         string         `yaml:"name"`
	Kind         string         `yaml:"kind"`
	Modifiers    string         `yaml:"modifiers,omitempty"`
	Header       bool           `yaml:"header,omitempty"`
	TypeParams   []*TypeParam   `yaml:"typeParams,omitempty"`
	Extends      string         `yaml:"extends,omitempty"`
	Implements   []string       `yaml:"implements,omitempty"`
	Fields       []*Field       `yaml:"fields,omitempty"`
	Methods      []*Method      `yaml:"methods,omitempty"`
	Constructors []*Constructor `yaml:"constructors,omitempty"`
}

type TypeParam struct {
	Name     string   `yaml:"name"`
	Variance string   `yaml:"variance,omitempty"`
	Upper    []string `yaml:"upper,omitempty"`
	Lower    string   `yaml:"lower,omitempty"`
}

type Field struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Modifiers string `yaml:"modifiers,omitempty"`
	Constant  any    `yaml:"constant,omitempty"`
}

type Param struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type Method struct {
	Name       string       `yaml:"name"`
	Modifiers  string       `yaml:"modifiers,omitempty"`
	TypeParams []*TypeParam `yaml:"typeParams,omitempty"`
	Params     []*Param     `yaml:"params,omitempty"`
	// Returns is empty for methods returning nothing
	Returns   string `yaml:"returns,omitempty"`
	Intrinsic string `yaml:"intrinsic,omitempty"`
}

type Constructor struct {
	Modifiers string   `yaml:"modifiers,omitempty"`
	Params    []*Param `yaml:"params,omitempty"`
	Synthetic bool     `yaml:"synthetic,omitempty"`
}

// FromUnit exports the non-private classes and members of a unit whose types
// are resolved. It refuses members with types that failed to resolve.
func FromUnit(unit *ast.Unit) (*Header, error) {
	if unit.Header == nil {
		return nil, fmt.Errorf("unit %s has no resolved types", unit.Name)
	}
	h := &Header{ID: uuid.New(), Package: unit.Package, Unit: unit.Name}
	e := exporter{}

	h.Classes = append(h.Classes, e.class(unit.Header))
	for _, decl := range unit.Classes {
		if decl.Class == nil {
			return nil, fmt.Errorf("class %s of unit %s is not resolved", decl.Name, unit.Name)
		}
		if decl.Class.Modifiers.Has(types.Private) {
			continue
		}
		h.Classes = append(h.Classes, e.class(decl.Class))
	}
	if len(e.errs) > 0 {
		return nil, errors.Wrapf(errors.New(strings.Join(e.errs, "; ")), "exporting unit %s", unit.Name)
	}
	return h, nil
}

func (h *Header) String() string {
	return fmt.Sprintf("%s.%s (%s)", h.Package, h.Unit, h.ID)
}

func (h *Header) Marshal() ([]byte, error) {
	return yaml.Marshal(h)
}

func Unmarshal(data []byte) (*Header, error) {
	h := &Header{}
	if err := yaml.Unmarshal(data, h); err != nil {
		return nil, errors.Wrap(err, "decoding header")
	}
	if h.Package == "" {
		return nil, errors.New("decoding header: missing package")
	}
	return h, nil
}

type exporter struct {
	errs []string
}

func (e *exporter) class(c *types.Class) *Class {
	out := &Class{
		Name:       c.Name,
		Kind:       c.Kind.String(),
		Modifiers:  c.Modifiers.String(),
		Header:     c.Header,
		TypeParams: e.typeParams(c.TypeParams, c.Name),
	}
	if c.SuperType != nil {
		out.Extends = e.typeName(c.SuperType, c.Name)
	}
	for _, i := range c.Interfaces {
		out.Implements = append(out.Implements, e.typeName(i, c.Name))
	}
	for _, f := range c.Fields {
		if f.Modifiers.Has(types.Private) {
			continue
		}
		where := c.Name + "." + f.Name
		out.Fields = append(out.Fields, &Field{
			Name:      f.Name,
			Type:      e.typeName(f.Type, where),
			Modifiers: f.Modifiers.String(),
			Constant:  f.Constant,
		})
	}
	for _, m := range c.Methods {
		if m.Modifiers.Has(types.Private) {
			continue
		}
		where := c.Name + "." + m.Name
		method := &Method{
			Name:       m.Name,
			Modifiers:  m.Modifiers.String(),
			TypeParams: e.typeParams(m.TypeParams, where),
			Params:     e.params(m.Params, where),
			Intrinsic:  m.Intrinsic,
		}
		if m.Return != nil && m.Return != types.Void {
			method.Returns = e.typeName(m.Return, where)
		}
		out.Methods = append(out.Methods, method)
	}
	for _, ctor := range c.Constructors {
		if ctor.Modifiers.Has(types.Private) {
			continue
		}
		out.Constructors = append(out.Constructors, &Constructor{
			Modifiers: ctor.Modifiers.String(),
			Params:    e.params(ctor.Params, c.Name+".<init>"),
			Synthetic: ctor.Synthetic,
		})
	}
	return out
}

func (e *exporter) typeParams(params []*types.TypeParameter, where string) []*TypeParam {
	var out []*TypeParam
	for _, p := range params {
		tp := &TypeParam{Name: p.Name}
		if p.Variance != types.Invariant {
			tp.Variance = p.Variance.String()
		}
		for _, b := range p.UpperBounds {
			tp.Upper = append(tp.Upper, e.typeName(b, where))
		}
		if p.LowerBound != nil {
			tp.Lower = e.typeName(p.LowerBound, where)
		}
		out = append(out, tp)
	}
	return out
}

func (e *exporter) params(params []*types.Parameter, where string) []*Param {
	var out []*Param
	for _, p := range params {
		out = append(out, &Param{Name: p.Name, Type: e.typeName(p.Type, where+"("+p.Name+")")})
	}
	return out
}

// typeName writes t the way ParseType reads it back
func (e *exporter) typeName(t types.Type, where string) string {
	switch t := t.(type) {
	case *types.ClassType:
		return t.Class.QualifiedName()
	case *types.GenericType:
		args := make([]string, len(t.Args))
		for i, arg := range t.Args {
			args[i] = e.typeName(arg, where)
		}
		return t.Class.QualifiedName() + "<" + strings.Join(args, ", ") + ">"
	case *types.TypeVar:
		return t.Param.Name
	}
	if types.IsUnknown(t) {
		e.errs = append(e.errs, fmt.Sprintf("%s has an unresolved type", where))
	} else {
		e.errs = append(e.errs, fmt.Sprintf("%s has type %s which cannot be exported", where, t.TypeName()))
	}
	return ""
}
