package scope

import (
	"github.com/benbjohnson/immutable"
	"github.com/cottand/kiln/frontend/types"
)

var _ Context = (*Block)(nil)

// Block holds the local variables declared so far in a block, or bound by a
// pattern. Declaring a variable does not change a Block but returns a new one,
// so that code before the declaration never sees it.
type Block struct {
	link
	vars *immutable.Map[string, *types.Variable]
}

func NewBlock(parent Context) *Block {
	return &Block{
		link: link{parent: parent},
		vars: immutable.NewMap[string, *types.Variable](nil),
	}
}

// With returns a block where v is declared too, shadowing any variable of
// the same name
func (b *Block) With(v *types.Variable) *Block {
	return &Block{link: b.link, vars: b.vars.Set(v.Name, v)}
}

// Declared returns the variable called name declared in this very block
func (b *Block) Declared(name string) (*types.Variable, bool) {
	return b.vars.Get(name)
}

func (b *Block) ResolveField(name string) types.DataMember {
	if v, ok := b.vars.Get(name); ok {
		return v
	}
	return b.parent.ResolveField(name)
}

func (b *Block) Capture(member types.DataMember) (types.DataMember, bool) {
	if v, ok := member.(*types.Variable); ok {
		if declared, found := b.vars.Get(v.Name); found && declared == v {
			return v, true
		}
	}
	return b.parent.Capture(member)
}
