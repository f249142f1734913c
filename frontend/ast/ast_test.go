package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sum() *If {
	call := &MethodCall{
		Receiver: &FieldAccess{Name: "a"},
		Name:     "+",
		Args:     []*Argument{{Value: &Literal{Kind: LitInt, Value: int64(1)}}},
		Applied:  true,
	}
	return &If{
		Cond: &Literal{Kind: LitBool, Value: true},
		Then: call,
		Else: &Literal{Kind: LitNull},
	}
}

func TestExprString(t *testing.T) {
	assert.Equal(t, "if (true) a.+(1) else null", ExprString(sum(), false))

	bare := &MethodCall{Name: "f"}
	assert.Equal(t, "f", ExprString(bare, false))
	assert.Equal(t, `"hi" as String`, ExprString(&Cast{Value: &Literal{Kind: LitString, Value: "hi"}, Target: Named("String")}, false))
}

func TestInspect(t *testing.T) {
	var nodes, literals int
	Inspect(sum(), func(n Node) bool {
		nodes++
		if _, ok := n.(*Literal); ok {
			literals++
		}
		return true
	})
	assert.Equal(t, 7, nodes)
	assert.Equal(t, 3, literals)

	nodes = 0
	Inspect(sum(), func(n Node) bool {
		nodes++
		_, isCall := n.(*MethodCall)
		return !isCall
	})
	assert.Equal(t, 4, nodes, "children of the call are skipped")
}

func TestRewriteVisitsChildrenFirst(t *testing.T) {
	var order []string
	rewritten := Rewrite(sum(), func(e Expr) Expr {
		order = append(order, e.Describe())
		if lit, ok := e.(*Literal); ok && lit.Kind == LitInt {
			return &Literal{Kind: LitInt, Value: lit.Value.(int64) * 2}
		}
		return e
	})

	assert.Equal(t, "if (true) a.+(2) else null", ExprString(rewritten, false))
	assert.Equal(t, "if", order[len(order)-1])
	assert.Equal(t, "literal", order[0])
}
