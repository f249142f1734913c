package backend

import (
	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/types"
)

// match stores the subject in a temporary and tries the cases in order.
// A value no case matches aborts.
func (l *lowering) match(f *frame, e *ast.Match, want bool) {
	want = want && producesValue(e)
	subject := f.temp()
	l.value(f, e.Subject)
	f.emit(Instruction{Op: OpStore, Arg: subject})

	var ends []int
	for _, c := range e.Cases {
		misses := l.pattern(f, c.Pattern, subject)
		if c.Guard != nil {
			l.value(f, c.Guard)
			misses = append(misses, f.emit(Instruction{Op: OpJumpIfFalse}))
		}
		l.lower(f, c.Body, want)
		ends = append(ends, f.emit(Instruction{Op: OpJump}))
		for _, miss := range misses {
			f.patch(miss)
		}
	}
	f.emit(Instruction{Op: OpFail, Value: "no case matched"})
	for _, end := range ends {
		f.patch(end)
	}
}

// pattern emits the test of p against the subject in local subject and
// returns the jumps taken when it does not match
func (l *lowering) pattern(f *frame, p ast.Pattern, subject int) []int {
	switch p := p.(type) {
	case nil, *ast.WildcardPattern:
		return nil
	case *ast.LiteralPattern:
		f.emit(Instruction{Op: OpLoad, Arg: subject})
		l.value(f, p.Value)
		f.emit(Instruction{Op: OpIntrinsic, Ref: "eq", Arg: 1})
		return []int{f.emit(Instruction{Op: OpJumpIfFalse})}
	case *ast.TypePattern:
		return l.instanceOf(f, ast.ResolvedOr(p.Type, nil), subject)
	case *ast.BindingPattern:
		var misses []int
		if p.Type != nil {
			misses = l.instanceOf(f, ast.ResolvedOr(p.Type, nil), subject)
		}
		f.emit(Instruction{Op: OpLoad, Arg: subject})
		if p.Type != nil {
			f.emit(Instruction{Op: OpCheckCast, Ref: types.Descriptor(p.Variable.MemberType())})
		}
		f.emit(Instruction{Op: OpStore, Arg: f.declare(p.Variable)})
		return misses
	default:
		l.fail("unexpected pattern %T", p)
		return nil
	}
}

func (l *lowering) instanceOf(f *frame, t types.Type, subject int) []int {
	if t == nil || types.IsUnknown(t) {
		l.fail("pattern of unresolved type")
		return nil
	}
	f.emit(Instruction{Op: OpLoad, Arg: subject})
	f.emit(Instruction{Op: OpInstanceOf, Ref: types.Descriptor(t)})
	return []int{f.emit(Instruction{Op: OpJumpIfFalse})}
}
