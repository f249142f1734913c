package types

import (
	"sort"
	"strings"

	"github.com/benbjohnson/immutable"
)

type paramHasher struct{}

func (paramHasher) Hash(p *TypeParameter) uint32 { return uint32(p.id ^ p.id>>32) }
func (paramHasher) Equal(a, b *TypeParameter) bool {
	return a == b
}

// TypeContext maps type parameters to the types they stand for.
//
// It only ever grows: Set never replaces an existing mapping. A nil
// *TypeContext is a valid, empty context. Fork is cheap, so a context can be
// copied before a speculative inference.
type TypeContext struct {
	m *immutable.Map[*TypeParameter, Type]
}

func NewTypeContext() *TypeContext {
	return &TypeContext{m: immutable.NewMap[*TypeParameter, Type](paramHasher{})}
}

// ContextOf maps the type parameters of the class of t to the arguments of t
func ContextOf(t Type) *TypeContext {
	ctx := NewTypeContext()
	if generic, ok := t.(*GenericType); ok {
		for i, param := range generic.Class.TypeParams {
			if i < len(generic.Args) {
				ctx.Set(param, generic.Args[i])
			}
		}
	}
	return ctx
}

// Get returns what p maps to; ok is false when p is still unresolved
func (c *TypeContext) Get(p *TypeParameter) (t Type, ok bool) {
	if c == nil || c.m == nil {
		return nil, false
	}
	return c.m.Get(p)
}

// Set maps p to t unless p is already mapped, and reports whether it did
func (c *TypeContext) Set(p *TypeParameter, t Type) bool {
	if c.m == nil {
		c.m = immutable.NewMap[*TypeParameter, Type](paramHasher{})
	}
	if _, exists := c.m.Get(p); exists {
		return false
	}
	c.m = c.m.Set(p, t)
	return true
}

// Fork returns a copy of c that can grow independently
func (c *TypeContext) Fork() *TypeContext {
	if c == nil || c.m == nil {
		return NewTypeContext()
	}
	return &TypeContext{m: c.m}
}

func (c *TypeContext) Len() int {
	if c == nil || c.m == nil {
		return 0
	}
	return c.m.Len()
}

// Params returns the mapped type parameters ordered by declaration index then name
func (c *TypeContext) Params() []*TypeParameter {
	if c.Len() == 0 {
		return nil
	}
	params := make([]*TypeParameter, 0, c.m.Len())
	itr := c.m.Iterator()
	for !itr.Done() {
		p, _, _ := itr.Next()
		params = append(params, p)
	}
	sort.Slice(params, func(i, j int) bool {
		if params[i].Index != params[j].Index {
			return params[i].Index < params[j].Index
		}
		return params[i].Name < params[j].Name
	})
	return params
}

// Missing returns the parameters among params that c does not map
func (c *TypeContext) Missing(params []*TypeParameter) []*TypeParameter {
	var missing []*TypeParameter
	for _, p := range params {
		if _, ok := c.Get(p); !ok {
			missing = append(missing, p)
		}
	}
	return missing
}

func (c *TypeContext) String() string {
	params := c.Params()
	entries := make([]string, len(params))
	for i, p := range params {
		t, _ := c.Get(p)
		entries[i] = p.Name + " := " + t.TypeName()
	}
	return "{" + strings.Join(entries, ", ") + "}"
}
