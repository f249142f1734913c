package backend

import (
	"fmt"
	"strings"

	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/capture"
	"github.com/cottand/kiln/frontend/types"
)

// lower emits e, leaving its value on the stack only when want is set
func (l *lowering) lower(f *frame, e ast.Expr, want bool) {
	switch e := e.(type) {
	case nil:
	case *ast.Block:
		l.block(f, e, want)
	case *ast.If:
		l.ifExpr(f, e, want)
	case *ast.Match:
		l.match(f, e, want)
	case *ast.Assignment:
		l.assign(f, e)
	default:
		l.value(f, e)
		if !want && producesValue(e) {
			f.emit(Instruction{Op: OpPop})
		}
	}
}

func producesValue(e ast.Expr) bool {
	t := ast.TypeOf(e)
	return t != nil && t != types.Void
}

func (l *lowering) block(f *frame, b *ast.Block, want bool) {
	if b == nil {
		return
	}
	last := len(b.Stmts) - 1
	for i, stmt := range b.Stmts {
		l.stmt(f, stmt, want && i == last)
	}
}

func (l *lowering) stmt(f *frame, stmt ast.Stmt, want bool) {
	switch stmt := stmt.(type) {
	case *ast.VarDecl:
		slot := f.declare(stmt.Variable)
		if stmt.Init != nil {
			l.value(f, stmt.Init)
			f.emit(Instruction{Op: OpStore, Arg: slot})
		}
	case *ast.ExprStmt:
		l.lower(f, stmt.Expr, want)
	case *ast.Return:
		if stmt.Value == nil {
			f.emit(Instruction{Op: OpReturn})
			return
		}
		l.value(f, stmt.Value)
		f.emit(Instruction{Op: OpReturnValue})
	default:
		l.fail("unexpected statement %T", stmt)
	}
}

// value emits e and leaves its value on the stack
func (l *lowering) value(f *frame, e ast.Expr) {
	switch e := e.(type) {
	case *ast.Literal:
		if e.Kind == ast.LitNull {
			f.emit(Instruction{Op: OpNull})
		} else {
			f.emit(Instruction{Op: OpConst, Value: e.Value})
		}
	case *ast.FieldAccess:
		l.access(f, e)
	case *ast.MethodCall:
		l.call(f, e)
	case *ast.ConstructorCall:
		if e.Constructor == nil {
			l.fail("%v: unresolved constructor call", e.Range)
			return
		}
		class := e.Constructor.Owner.QualifiedName()
		f.emit(Instruction{Op: OpNew, Ref: class})
		f.emit(Instruction{Op: OpDup})
		l.args(f, e.Args)
		f.emit(Instruction{Op: OpInvokeSpecial, Ref: class + ".<init>" + e.Constructor.Descriptor(), Arg: len(e.Args)})
	case *ast.This:
		l.this(f, e.Capture)
	case *ast.Lambda:
		l.closure(f, e)
	case *ast.MethodRef:
		f.emit(Instruction{Op: OpMethodRef, Ref: methodRef(e.Method), Value: e.SAM.Owner.QualifiedName()})
	case *ast.Block, *ast.If, *ast.Match:
		l.lower(f, e, true)
	case *ast.Cast:
		l.value(f, e.Value)
		if types.ClassOf(ast.TypeOf(e.Value)) != types.ClassOf(e.Type()) {
			f.emit(Instruction{Op: OpCheckCast, Ref: types.Descriptor(e.Type())})
		}
	case *ast.Conversion:
		l.value(f, e.Value)
		f.emit(Instruction{Op: OpIntrinsic, Ref: e.Method.Intrinsic, Arg: 1})
	case *ast.Assignment:
		l.fail("%v: assignment used as a value", e.Range)
	case *ast.ClassAccess:
		l.fail("%v: class %s used as a value", e.Range, e.Name)
	default:
		l.fail("unexpected expression %T", e)
	}
}

func (l *lowering) args(f *frame, args []*ast.Argument) {
	for _, arg := range args {
		l.value(f, arg.Value)
	}
}

// this loads the enclosing instance, from slot inside lambdas
func (l *lowering) this(f *frame, slot *capture.Slot) {
	if slot != nil {
		f.emit(Instruction{Op: OpLoad, Arg: slot.Index})
		return
	}
	if f.static {
		l.fail("'this' in static code of %s", f.class.Name)
	}
	f.emit(Instruction{Op: OpLoad, Arg: 0})
}

func (l *lowering) local(f *frame, v *types.Variable, slot *capture.Slot) int {
	if slot != nil {
		return slot.Index
	}
	index, ok := f.slots[v]
	if !ok {
		l.fail("variable %s is not in scope", v.Name)
	}
	return index
}

func (l *lowering) access(f *frame, e *ast.FieldAccess) {
	switch m := e.Member.(type) {
	case *types.Variable:
		f.emit(Instruction{Op: OpLoad, Arg: l.local(f, m, e.Capture)})
	case *types.Field:
		if m.IsStatic() {
			f.emit(Instruction{Op: OpGetStatic, Ref: fieldRef(m)})
			return
		}
		if e.Receiver == nil {
			l.this(f, e.Capture)
		} else {
			l.value(f, e.Receiver)
		}
		f.emit(Instruction{Op: OpGetField, Ref: fieldRef(m)})
		l.castErased(f, m.Type, e.Type())
	default:
		l.fail("%v: unresolved name %s", e.Range, e.Name)
	}
}

func (l *lowering) assign(f *frame, a *ast.Assignment) {
	target, ok := a.Target.(*ast.FieldAccess)
	if !ok {
		l.fail("%v: invalid assignment target", a.Range)
		return
	}
	switch m := target.Member.(type) {
	case *types.Variable:
		if target.Capture != nil {
			l.fail("%v: assignment to captured variable %s", a.Range, m.Name)
			return
		}
		l.value(f, a.Value)
		f.emit(Instruction{Op: OpStore, Arg: l.local(f, m, nil)})
	case *types.Field:
		if m.IsStatic() {
			l.value(f, a.Value)
			f.emit(Instruction{Op: OpPutStatic, Ref: fieldRef(m)})
			return
		}
		if target.Receiver == nil {
			l.this(f, target.Capture)
		} else {
			l.value(f, target.Receiver)
		}
		l.value(f, a.Value)
		f.emit(Instruction{Op: OpPutField, Ref: fieldRef(m)})
	default:
		l.fail("%v: unresolved assignment target %s", a.Range, target.Name)
	}
}

func (l *lowering) call(f *frame, call *ast.MethodCall) {
	m := call.Method
	if m == nil {
		l.fail("%v: unresolved call of %s", call.Range, call.Name)
		return
	}
	switch m.Intrinsic {
	case "and", "or":
		l.shortCircuit(f, call, m.Intrinsic == "and")
		return
	}
	if !m.IsStatic() {
		switch {
		case call.Receiver != nil:
			l.value(f, call.Receiver)
		case call.ImplicitThis:
			l.this(f, call.Capture)
		}
	}
	l.args(f, call.Args)

	switch {
	case m.Intrinsic != "":
		f.emit(Instruction{Op: OpIntrinsic, Ref: m.Intrinsic, Arg: len(call.Args)})
	case m.IsStatic():
		f.emit(Instruction{Op: OpInvokeStatic, Ref: methodRef(m), Arg: len(call.Args)})
	case m.Owner.IsInterface():
		f.emit(Instruction{Op: OpInvokeInterface, Ref: methodRef(m), Arg: len(call.Args)})
	default:
		f.emit(Instruction{Op: OpInvokeVirtual, Ref: methodRef(m), Arg: len(call.Args)})
	}
	l.castErased(f, m.ReturnType(), call.Type())
}

// shortCircuit emits a && b and a || b without evaluating b when a decides
func (l *lowering) shortCircuit(f *frame, call *ast.MethodCall, and bool) {
	if len(call.Args) != 1 {
		l.fail("%v: %s takes one operand", call.Range, call.Name)
		return
	}
	l.value(f, call.Receiver)
	skip := f.emit(Instruction{Op: OpJumpIfFalse})
	if and {
		l.value(f, call.Args[0].Value)
		end := f.emit(Instruction{Op: OpJump})
		f.patch(skip)
		f.emit(Instruction{Op: OpConst, Value: false})
		f.patch(end)
		return
	}
	f.emit(Instruction{Op: OpConst, Value: true})
	end := f.emit(Instruction{Op: OpJump})
	f.patch(skip)
	l.value(f, call.Args[0].Value)
	f.patch(end)
}

// castErased narrows the erased value of a member declared as declared to
// the type it was used at
func (l *lowering) castErased(f *frame, declared, used types.Type) {
	if _, generic := declared.(*types.TypeVar); !generic || used == nil || types.IsUnknown(used) {
		return
	}
	if types.ClassOf(declared) != types.ClassOf(used) {
		f.emit(Instruction{Op: OpCheckCast, Ref: types.Descriptor(used)})
	}
}

func (l *lowering) ifExpr(f *frame, e *ast.If, want bool) {
	want = want && e.Else != nil && producesValue(e)
	l.value(f, e.Cond)
	otherwise := f.emit(Instruction{Op: OpJumpIfFalse})
	l.lower(f, e.Then, want)
	if e.Else == nil {
		f.patch(otherwise)
		return
	}
	end := f.emit(Instruction{Op: OpJump})
	f.patch(otherwise)
	l.lower(f, e.Else, want)
	f.patch(end)
}

// closure emits the body of a lambda as a static synthetic method of the
// current class taking the captured values first, and pushes the closure
func (l *lowering) closure(f *frame, e *ast.Lambda) {
	if e.SAM == nil || e.Captures == nil {
		l.fail("%v: lambda without a functional type", e.Range)
		return
	}
	if !e.Captures.Frozen() {
		l.fail("%v: capture table is not frozen", e.Range)
	}
	name := fmt.Sprintf("lambda$%d", f.file.lambdas)
	f.file.lambdas++

	slots := e.Captures.Slots()
	for _, slot := range slots {
		l.captured(f, slot.Source)
	}

	body := newFrame(f.file, f.class, true)
	body.locals = len(slots)
	descriptor := strings.Builder{}
	descriptor.WriteString("(")
	for _, slot := range slots {
		descriptor.WriteString(types.Descriptor(slot.MemberType()))
	}
	for _, p := range e.Params {
		body.declare(p.Variable)
		descriptor.WriteString(types.Descriptor(p.Variable.MemberType()))
	}
	descriptor.WriteString(")")
	returns := e.SAM.ReturnType() != types.Void
	if returns {
		descriptor.WriteString(types.Descriptor(ast.TypeOf(e.Body)))
	} else {
		descriptor.WriteString("V")
	}
	l.body(body, e.Body, returns)
	f.file.Methods = append(f.file.Methods, body.code(name, descriptor.String(), "static synthetic"))

	f.emit(Instruction{
		Op:    OpMakeClosure,
		Ref:   f.file.Name + "." + name + descriptor.String(),
		Arg:   len(slots),
		Value: e.SAM.Owner.QualifiedName(),
	})
}

// captured loads the binding a capture slot of a nested lambda holds
func (l *lowering) captured(f *frame, source types.DataMember) {
	switch s := source.(type) {
	case *capture.Slot:
		f.emit(Instruction{Op: OpLoad, Arg: s.Index})
	case *capture.This:
		l.this(f, nil)
	case *types.Variable:
		f.emit(Instruction{Op: OpLoad, Arg: l.local(f, s, nil)})
	default:
		l.fail("cannot capture %s", source.MemberName())
	}
}
