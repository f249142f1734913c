package backend

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Op is an instruction of the stack machine
type Op uint8

const (
	OpNop Op = iota
	// OpConst pushes Value
	OpConst
	OpNull
	// OpLoad and OpStore move local Arg to and from the stack
	OpLoad
	OpStore
	OpPop
	OpDup
	// OpGetField pops the instance and pushes its field Ref
	OpGetField
	// OpPutField pops the value then the instance
	OpPutField
	OpGetStatic
	OpPutStatic
	// Invocations pop Arg arguments, and the receiver when not static
	OpInvokeStatic
	OpInvokeVirtual
	OpInvokeInterface
	OpInvokeSpecial
	// OpIntrinsic runs the built-in operation Ref over the Arg+1 top values,
	// or over Arg values when it has no receiver
	OpIntrinsic
	OpNew
	OpCheckCast
	OpInstanceOf
	// OpJump and OpJumpIfFalse go to the instruction at index Arg
	OpJump
	OpJumpIfFalse
	OpReturn
	OpReturnValue
	// OpMakeClosure pops Arg captured values and pushes an instance of the
	// functional interface Value whose method runs the synthetic method Ref
	OpMakeClosure
	// OpMethodRef pushes an instance of the functional interface Value whose
	// method calls the static method Ref
	OpMethodRef
	// OpFail aborts with the message Value
	OpFail
)

var opNames = [...]string{
	OpNop:             "nop",
	OpConst:           "const",
	OpNull:            "null",
	OpLoad:            "load",
	OpStore:           "store",
	OpPop:             "pop",
	OpDup:             "dup",
	OpGetField:        "getfield",
	OpPutField:        "putfield",
	OpGetStatic:       "getstatic",
	OpPutStatic:       "putstatic",
	OpInvokeStatic:    "invokestatic",
	OpInvokeVirtual:   "invokevirtual",
	OpInvokeInterface: "invokeinterface",
	OpInvokeSpecial:   "invokespecial",
	OpIntrinsic:       "intrinsic",
	OpNew:             "new",
	OpCheckCast:       "checkcast",
	OpInstanceOf:      "instanceof",
	OpJump:            "jump",
	OpJumpIfFalse:     "jumpiffalse",
	OpReturn:          "return",
	OpReturnValue:     "returnvalue",
	OpMakeClosure:     "makeclosure",
	OpMethodRef:       "methodref",
	OpFail:            "fail",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", o)
}

func (o Op) MarshalYAML() (any, error) { return o.String(), nil }

type Instruction struct {
	Op    Op     `yaml:"op"`
	Arg   int    `yaml:"arg,omitempty"`
	Ref   string `yaml:"ref,omitempty"`
	Value any    `yaml:"value,omitempty"`
}

func (i Instruction) String() string {
	sb := strings.Builder{}
	sb.WriteString(i.Op.String())
	switch i.Op {
	case OpLoad, OpStore, OpJump, OpJumpIfFalse:
		fmt.Fprintf(&sb, " %d", i.Arg)
	}
	if i.Ref != "" {
		sb.WriteString(" ")
		sb.WriteString(i.Ref)
	}
	if i.Value != nil {
		fmt.Fprintf(&sb, " %#v", i.Value)
	}
	return sb.String()
}

// Program is the compiled form of one unit
type Program struct {
	Package string       `yaml:"package"`
	Unit    string       `yaml:"unit"`
	Classes []*ClassFile `yaml:"classes"`
}

type ClassFile struct {
	Name       string        `yaml:"name"`
	Super      string        `yaml:"super,omitempty"`
	Interfaces []string      `yaml:"interfaces,omitempty"`
	Flags      string        `yaml:"flags,omitempty"`
	Fields     []FieldInfo   `yaml:"fields,omitempty"`
	Methods    []*MethodCode `yaml:"methods,omitempty"`

	lambdas int
}

type FieldInfo struct {
	Name       string `yaml:"name"`
	Descriptor string `yaml:"descriptor"`
	Flags      string `yaml:"flags,omitempty"`
	Constant   any    `yaml:"constant,omitempty"`
}

type MethodCode struct {
	Name       string        `yaml:"name"`
	Descriptor string        `yaml:"descriptor"`
	Flags      string        `yaml:"flags,omitempty"`
	Locals     int           `yaml:"locals"`
	Code       []Instruction `yaml:"code,omitempty"`
}

// Class returns the class called name, nil if p has none
func (p *Program) Class(name string) *ClassFile {
	for _, c := range p.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Method returns the first method called name, nil if c has none
func (c *ClassFile) Method(name string) *MethodCode {
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Marshal encodes p as YAML
func (p *Program) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// String disassembles p
func (p *Program) String() string {
	sb := strings.Builder{}
	for _, c := range p.Classes {
		fmt.Fprintf(&sb, "class %s extends %s\n", c.Name, c.Super)
		for _, f := range c.Fields {
			fmt.Fprintf(&sb, "  field %s %s\n", f.Name, f.Descriptor)
		}
		for _, m := range c.Methods {
			fmt.Fprintf(&sb, "  method %s%s locals=%d\n", m.Name, m.Descriptor, m.Locals)
			for i, ins := range m.Code {
				fmt.Fprintf(&sb, "    %3d: %s\n", i, ins)
			}
		}
	}
	return sb.String()
}
