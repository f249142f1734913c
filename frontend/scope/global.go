package scope

import (
	"strings"

	"github.com/cottand/kiln/frontend/match"
	"github.com/cottand/kiln/frontend/types"
	"github.com/cottand/kiln/frontend/universe"
)

var _ Context = (*Global)(nil)

// Global is the outermost link: the built-in classes of kiln.lang, and every
// class of the universe by qualified name
type Global struct {
	universe *universe.Universe
}

func NewGlobal(u *universe.Universe) *Global {
	return &Global{universe: u}
}

func (g *Global) ResolveClass(name string) *types.Class {
	if strings.ContainsRune(name, '.') {
		c, _ := g.universe.ResolveClass(name)
		return c
	}
	lang, ok := g.universe.ResolvePackage(universe.LangPackage)
	if !ok {
		return nil
	}
	return lang.Class(name)
}

func (g *Global) ResolveTypeParameter(string) *types.TypeParameter { return nil }
func (g *Global) ResolveField(string) types.DataMember              { return nil }
func (g *Global) ContributeMethods(*match.CandidateSet, string)     {}

func (g *Global) ContributeConstructors(set *match.CandidateSet, c *types.Class) {
	for _, ctor := range c.Constructors {
		set.Add(ctor, nil)
	}
}

func (g *Global) IsStatic() bool                        { return true }
func (g *Global) ThisClass() *types.Class               { return nil }
func (g *Global) ReturnType() types.Type                { return nil }
func (g *Global) CaptureThis() (types.DataMember, bool) { return nil, false }
func (g *Global) Universe() *universe.Universe          { return g.universe }

func (g *Global) Capture(types.DataMember) (types.DataMember, bool) {
	return nil, false
}
