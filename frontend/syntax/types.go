package syntax

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/types"
)

// ParseType parses a type as written in a unit:
//
//	Int
//	kiln.lang.List<T>
//	(Int, String) -> Boolean
func ParseType(s string) (ast.TypeRef, error) {
	p := &typeParser{src: s}
	t, err := p.typeRef()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, p.errorf("unexpected %q", p.rest())
	}
	return t, nil
}

// ParseTypeParam parses a type parameter declaration:
//
//	T
//	out T
//	T : Comparable<T> & Cloneable
//	T super Int
func ParseTypeParam(s string) (*ast.TypeParamDecl, error) {
	p := &typeParser{src: s}
	decl := &ast.TypeParamDecl{}
	name := p.ident()
	switch name {
	case "in", "out":
		if next := p.ident(); next != "" {
			decl.Variance = types.Contravariant
			if name == "out" {
				decl.Variance = types.Covariant
			}
			name = next
		}
	}
	if name == "" {
		return nil, p.errorf("missing type parameter name")
	}
	decl.Name = name

	if p.accept(":") {
		for {
			bound, err := p.typeRef()
			if err != nil {
				return nil, err
			}
			decl.UpperBounds = append(decl.UpperBounds, bound)
			if !p.accept("&") {
				break
			}
		}
	}
	if p.acceptWord("super") {
		lower, err := p.typeRef()
		if err != nil {
			return nil, err
		}
		decl.LowerBound = lower
	}
	if !p.done() {
		return nil, p.errorf("unexpected %q", p.rest())
	}
	return decl, nil
}

// ParseParam parses `name` or `name: Type`
func ParseParam(s string) (*ast.ParamDecl, error) {
	p := &typeParser{src: s}
	decl := &ast.ParamDecl{}
	if p.acceptWord("final") {
		decl.Final = true
	}
	decl.Name = p.ident()
	if decl.Name == "" {
		return nil, p.errorf("missing parameter name")
	}
	if p.accept(":") {
		t, err := p.typeRef()
		if err != nil {
			return nil, err
		}
		decl.Type = t
	}
	if !p.done() {
		return nil, p.errorf("unexpected %q", p.rest())
	}
	return decl, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("in %q at %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) done() bool {
	p.skipSpace()
	return p.pos == len(p.src)
}

func (p *typeParser) rest() string { return p.src[p.pos:] }

func (p *typeParser) accept(token string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.rest(), token) {
		p.pos += len(token)
		return true
	}
	return false
}

// acceptWord accepts word only when it is not the prefix of a longer name
func (p *typeParser) acceptWord(word string) bool {
	start := p.pos
	if p.ident() == word {
		return true
	}
	p.pos = start
	return false
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *typeParser) typeRef() (ast.TypeRef, error) {
	if p.accept("(") {
		fn := &ast.FunctionTypeRef{}
		if !p.accept(")") {
			for {
				param, err := p.typeRef()
				if err != nil {
					return nil, err
				}
				fn.Params = append(fn.Params, param)
				if p.accept(")") {
					break
				}
				if !p.accept(",") {
					return nil, p.errorf("expected ',' or ')'")
				}
			}
		}
		if !p.accept("->") {
			return nil, p.errorf("expected '->'")
		}
		ret, err := p.typeRef()
		if err != nil {
			return nil, err
		}
		fn.Return = ret
		return fn, nil
	}

	name := p.ident()
	if name == "" {
		return nil, p.errorf("expected a type")
	}
	for p.accept(".") {
		part := p.ident()
		if part == "" {
			return nil, p.errorf("expected a name after '.'")
		}
		name += "." + part
	}
	ref := ast.Named(name)
	if !p.accept("<") {
		return ref, nil
	}
	for {
		arg, err := p.typeRef()
		if err != nil {
			return nil, err
		}
		ref.Args = append(ref.Args, arg)
		if p.accept(">") {
			return ref, nil
		}
		if !p.accept(",") {
			return nil, p.errorf("expected ',' or '>'")
		}
	}
}
