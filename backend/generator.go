// Package backend lowers fully typed units to a small stack machine code.
package backend

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/types"
	"github.com/cottand/kiln/internal/log"
)

type Generator struct {
	*slog.Logger
}

func NewGenerator() *Generator {
	return &Generator{Logger: log.DefaultLogger.With("section", "backend")}
}

// Generate lowers unit and encodes the program as YAML
func (g *Generator) Generate(unit *ast.Unit) ([]byte, error) {
	p, err := g.Lower(unit)
	if err != nil {
		return nil, err
	}
	return p.Marshal()
}

// Lower turns unit into a Program. The unit must have been through every
// phase of the frontend without errors.
func (g *Generator) Lower(unit *ast.Unit) (*Program, error) {
	if unit.Header == nil {
		return nil, fmt.Errorf("unit %s was not compiled", unit.Name)
	}
	l := &lowering{Generator: g}
	p := &Program{Package: unit.Package, Unit: unit.Name}

	p.Classes = append(p.Classes, l.class(unit.Header, unit.Fields, unit.Functions, nil))
	for _, decl := range unit.Classes {
		if decl.Class == nil {
			l.fail("class %s was not declared", decl.Name)
			continue
		}
		p.Classes = append(p.Classes, l.class(decl.Class, decl.Fields, decl.Methods, decl.Constructors))
	}
	if len(l.errs) > 0 {
		return nil, errors.Join(l.errs...)
	}
	g.Debug("lowered unit", "unit", unit.Name, "classes", len(p.Classes))
	return p, nil
}

type lowering struct {
	*Generator
	errs []error
}

func (l *lowering) fail(format string, args ...any) {
	l.errs = append(l.errs, fmt.Errorf(format, args...))
}

func (l *lowering) class(class *types.Class, fields []*ast.FieldDecl, methods []*ast.MethodDecl, ctors []*ast.ConstructorDecl) *ClassFile {
	cf := &ClassFile{Name: class.QualifiedName(), Flags: class.Modifiers.String()}
	if super := types.ClassOf(class.SuperType); super != nil {
		cf.Super = super.QualifiedName()
	}
	for _, i := range class.Interfaces {
		if c := types.ClassOf(i); c != nil {
			cf.Interfaces = append(cf.Interfaces, c.QualifiedName())
		}
	}

	var staticInit, instanceInit []*ast.FieldDecl
	for _, decl := range fields {
		f := decl.Field
		if f == nil || f.Owner != class {
			continue
		}
		cf.Fields = append(cf.Fields, FieldInfo{Name: f.Name, Descriptor: types.Descriptor(f.Type), Flags: f.Modifiers.String(), Constant: f.Constant})
		switch {
		case decl.Init == nil || f.Constant != nil:
		case f.IsStatic():
			staticInit = append(staticInit, decl)
		default:
			instanceInit = append(instanceInit, decl)
		}
	}
	if len(staticInit) > 0 {
		cf.Methods = append(cf.Methods, l.staticInitializer(cf, class, staticInit))
	}

	if !class.IsInterface() && !class.Header {
		for _, decl := range ctors {
			if decl.Constructor != nil {
				cf.Methods = append(cf.Methods, l.constructor(cf, class, decl.Constructor, decl, instanceInit))
			}
		}
		for _, ctor := range class.Constructors {
			if ctor.Synthetic {
				cf.Methods = append(cf.Methods, l.constructor(cf, class, ctor, nil, instanceInit))
			}
		}
	}
	for _, decl := range methods {
		if decl.Method != nil {
			cf.Methods = append(cf.Methods, l.method(cf, class, decl))
		}
	}
	return cf
}

func (l *lowering) staticInitializer(cf *ClassFile, class *types.Class, inits []*ast.FieldDecl) *MethodCode {
	f := newFrame(cf, class, true)
	for _, decl := range inits {
		l.value(f, decl.Init)
		f.emit(Instruction{Op: OpPutStatic, Ref: fieldRef(decl.Field)})
	}
	f.emit(Instruction{Op: OpReturn})
	return f.code("<clinit>", "()V", "static")
}

func (l *lowering) constructor(cf *ClassFile, class *types.Class, ctor *types.Constructor, decl *ast.ConstructorDecl, inits []*ast.FieldDecl) *MethodCode {
	f := newFrame(cf, class, false)
	f.emit(Instruction{Op: OpLoad, Arg: 0})
	f.emit(Instruction{Op: OpInvokeSpecial, Ref: superInit(class)})
	for _, init := range inits {
		f.emit(Instruction{Op: OpLoad, Arg: 0})
		l.value(f, init.Init)
		f.emit(Instruction{Op: OpPutField, Ref: fieldRef(init.Field)})
	}

	if decl == nil {
		// the synthetic constructor stores its parameters into the fields of the same name
		for i, p := range ctor.Params {
			field := class.OwnField(p.Name)
			if field == nil {
				l.fail("%s: no field for constructor parameter %s", class.Name, p.Name)
				continue
			}
			f.emit(Instruction{Op: OpLoad, Arg: 0})
			f.emit(Instruction{Op: OpLoad, Arg: i + 1})
			f.emit(Instruction{Op: OpPutField, Ref: fieldRef(field)})
		}
		f.locals += len(ctor.Params)
	} else {
		for _, p := range decl.Params {
			f.declare(p.Variable)
		}
		l.block(f, decl.Body, false)
	}
	f.terminate()
	return f.code("<init>", ctor.Descriptor(), ctor.Modifiers.String())
}

func superInit(class *types.Class) string {
	super := types.ClassOf(class.SuperType)
	if super == nil {
		return "kiln.lang.Any.<init>()V"
	}
	return super.QualifiedName() + ".<init>()V"
}

func (l *lowering) method(cf *ClassFile, class *types.Class, decl *ast.MethodDecl) *MethodCode {
	m := decl.Method
	f := newFrame(cf, class, m.IsStatic())
	if decl.Body == nil {
		return f.code(m.Name, m.Descriptor(), m.Modifiers.String())
	}
	for _, p := range decl.Params {
		f.declare(p.Variable)
	}
	l.body(f, decl.Body, m.ReturnType() != types.Void)
	return f.code(m.Name, m.Descriptor(), m.Modifiers.String())
}

// body lowers the body of a method or lambda. A body returning a value
// returns the value of its last expression statement.
func (l *lowering) body(f *frame, body ast.Expr, returns bool) {
	if block, ok := body.(*ast.Block); ok && returns {
		last := len(block.Stmts) - 1
		for i, stmt := range block.Stmts {
			if expr, ok := stmt.(*ast.ExprStmt); ok && i == last {
				l.lower(f, expr.Expr, true)
				f.emit(Instruction{Op: OpReturnValue})
				continue
			}
			l.stmt(f, stmt, false)
		}
		f.terminate()
		return
	}
	l.lower(f, body, returns)
	if returns {
		f.emit(Instruction{Op: OpReturnValue})
	}
	f.terminate()
}

func fieldRef(f *types.Field) string {
	return f.Owner.QualifiedName() + "." + f.Name + ":" + types.Descriptor(f.Type)
}

func methodRef(m *types.Method) string {
	return m.Owner.QualifiedName() + "." + m.Name + m.Descriptor()
}

// frame tracks the locals and the code of the method being lowered
type frame struct {
	file   *ClassFile
	class  *types.Class
	static bool
	slots  map[*types.Variable]int
	locals int
	ins    []Instruction
}

func newFrame(file *ClassFile, class *types.Class, static bool) *frame {
	f := &frame{file: file, class: class, static: static, slots: map[*types.Variable]int{}}
	if !static {
		f.locals = 1
	}
	return f
}

func (f *frame) emit(ins Instruction) int {
	f.ins = append(f.ins, ins)
	return len(f.ins) - 1
}

// patch makes the jump at index at go to the next instruction emitted
func (f *frame) patch(at int) {
	f.ins[at].Arg = len(f.ins)
}

func (f *frame) declare(v *types.Variable) int {
	if slot, ok := f.slots[v]; ok {
		return slot
	}
	slot := f.temp()
	if v != nil {
		f.slots[v] = slot
	}
	return slot
}

func (f *frame) temp() int {
	f.locals++
	return f.locals - 1
}

// terminate ends code that can fall off its end with a return
func (f *frame) terminate() {
	if n := len(f.ins); n > 0 {
		switch f.ins[n-1].Op {
		case OpReturn, OpReturnValue, OpFail:
			return
		}
	}
	f.emit(Instruction{Op: OpReturn})
}

func (f *frame) code(name, descriptor, flags string) *MethodCode {
	if f.static && flags == "" {
		flags = "static"
	}
	return &MethodCode{Name: name, Descriptor: descriptor, Flags: flags, Locals: f.locals, Code: f.ins}
}
