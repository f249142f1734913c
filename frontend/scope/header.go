package scope

import (
	"github.com/cottand/kiln/frontend/match"
	"github.com/cottand/kiln/frontend/types"
	"github.com/cottand/kiln/frontend/universe"
)

var _ Context = (*Header)(nil)

// Header is the top level of a unit: its classes, its imports, the other
// classes of its package and its top-level members, which belong to the
// synthetic header class.
//
// A Header is filled in by Declare, Import and ImportAll before it is handed
// to any inner link.
type Header struct {
	link
	header    *types.Class
	pkg       string
	classes   map[string]*types.Class
	imports   map[string]*types.Class
	wildcards []*universe.Package
}

func NewHeader(parent Context, header *types.Class) *Header {
	return &Header{
		link:    link{parent: parent},
		header:  header,
		pkg:     header.Package,
		classes: map[string]*types.Class{},
		imports: map[string]*types.Class{},
	}
}

// Declare adds a class declared in the unit
func (h *Header) Declare(c *types.Class) { h.classes[c.Name] = c }

// Import makes c known as name
func (h *Header) Import(name string, c *types.Class) { h.imports[name] = c }

// ImportAll makes every class of p known by its simple name. Classes of
// earlier wildcard imports take precedence.
func (h *Header) ImportAll(p *universe.Package) { h.wildcards = append(h.wildcards, p) }

func (h *Header) Class() *types.Class { return h.header }

func (h *Header) ResolveClass(name string) *types.Class {
	if c, ok := h.classes[name]; ok {
		return c
	}
	if c, ok := h.imports[name]; ok {
		return c
	}
	if own, ok := h.Universe().ResolvePackage(h.pkg); ok && h.pkg != "" {
		if c := own.Class(name); c != nil && !c.Header {
			return c
		}
	}
	for _, p := range h.wildcards {
		if c := p.Class(name); c != nil {
			return c
		}
	}
	return h.parent.ResolveClass(name)
}

func (h *Header) ResolveField(name string) types.DataMember {
	if f := h.header.OwnField(name); f != nil {
		return f
	}
	return h.parent.ResolveField(name)
}

func (h *Header) ContributeMethods(set *match.CandidateSet, name string) {
	for _, m := range h.header.OwnMethods(name) {
		set.Add(m, nil)
	}
	if set.Found() {
		return
	}
	set.NextScope()
	h.parent.ContributeMethods(set, name)
}

func (h *Header) IsStatic() bool          { return true }
func (h *Header) ThisClass() *types.Class { return nil }
func (h *Header) ReturnType() types.Type  { return nil }
