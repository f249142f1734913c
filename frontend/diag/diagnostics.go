package diag

import (
	"fmt"
	"strings"

	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/types"
)

type errorLevel struct{}

func (errorLevel) Severity() Severity { return Error }
func (errorLevel) Info() []string     { return nil }

type warningLevel struct{}

func (warningLevel) Severity() Severity { return Warning }
func (warningLevel) Info() []string     { return nil }

func typeName(t types.Type) string {
	if t == nil {
		return types.Unknown.TypeName()
	}
	return t.TypeName()
}

func typeList(ts []types.Type) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = typeName(t)
	}
	return "(" + strings.Join(names, ", ") + ")"
}

func callInfo(receiver types.Type, args []types.Type, candidates []string) []string {
	var info []string
	if receiver != nil {
		info = append(info, "receiver type: "+typeName(receiver))
	}
	info = append(info, "argument types: "+typeList(args))
	for _, c := range candidates {
		info = append(info, "candidate: "+c)
	}
	return info
}

type NewUnresolvedName struct {
	ast.Range
	errorLevel
	Name string
}

func (e NewUnresolvedName) Code() Code { return UnresolvedName }
func (e NewUnresolvedName) Error() string {
	return fmt.Sprintf("'%s' is not defined", e.Name)
}

type NewUnresolvedType struct {
	ast.Range
	errorLevel
	Name string
}

func (e NewUnresolvedType) Code() Code { return UnresolvedType }
func (e NewUnresolvedType) Error() string {
	return fmt.Sprintf("type '%s' is not defined", e.Name)
}

type NewUnresolvedImport struct {
	ast.Range
	errorLevel
	Path string
}

func (e NewUnresolvedImport) Code() Code { return UnresolvedClass }
func (e NewUnresolvedImport) Error() string {
	return fmt.Sprintf("imported '%s' is neither a class nor a package", e.Path)
}

type NewMethodNotFound struct {
	ast.Range
	errorLevel
	Receiver types.Type
	Name     string
	Args     []types.Type
	// Candidates are the signatures of the methods called Name that were not applicable
	Candidates []string
}

func (e NewMethodNotFound) Code() Code { return MethodNotFound }
func (e NewMethodNotFound) Error() string {
	if e.Receiver != nil {
		return fmt.Sprintf("no method '%s' of '%s' accepts arguments %s", e.Name, typeName(e.Receiver), typeList(e.Args))
	}
	return fmt.Sprintf("no method '%s' accepts arguments %s", e.Name, typeList(e.Args))
}
func (e NewMethodNotFound) Info() []string { return callInfo(e.Receiver, e.Args, e.Candidates) }

type NewAmbiguousCall struct {
	ast.Range
	errorLevel
	Receiver   types.Type
	Name       string
	Args       []types.Type
	Candidates []string
}

func (e NewAmbiguousCall) Code() Code { return AmbiguousCall }
func (e NewAmbiguousCall) Error() string {
	return fmt.Sprintf("call to '%s' with arguments %s is ambiguous between %d candidates", e.Name, typeList(e.Args), len(e.Candidates))
}
func (e NewAmbiguousCall) Info() []string { return callInfo(e.Receiver, e.Args, e.Candidates) }

type NewConstructorNotFound struct {
	ast.Range
	errorLevel
	Class      types.Type
	Args       []types.Type
	Candidates []string
}

func (e NewConstructorNotFound) Code() Code { return ConstructorNotFound }
func (e NewConstructorNotFound) Error() string {
	return fmt.Sprintf("no constructor of '%s' accepts arguments %s", typeName(e.Class), typeList(e.Args))
}
func (e NewConstructorNotFound) Info() []string { return callInfo(nil, e.Args, e.Candidates) }

type NewTypeMismatch struct {
	ast.Range
	errorLevel
	Expected types.Type
	Found    types.Type
}

func (e NewTypeMismatch) Code() Code { return TypeMismatch }
func (e NewTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: expected '%s', but found '%s'", typeName(e.Expected), typeName(e.Found))
}

type NewBoundViolation struct {
	ast.Range
	errorLevel
	Param *types.TypeParameter
	Arg   types.Type
}

func (e NewBoundViolation) Code() Code { return BoundViolation }
func (e NewBoundViolation) Error() string {
	return fmt.Sprintf("type argument '%s' is not within the bounds of type parameter '%s'", typeName(e.Arg), e.Param.String())
}
func (e NewBoundViolation) Info() []string {
	if e.Param.Owner == "" {
		return nil
	}
	return []string{"type parameter declared by: " + e.Param.Owner}
}

type NewInvalidBound struct {
	ast.Range
	errorLevel
	Param  string
	Reason string
}

func (e NewInvalidBound) Code() Code { return InvalidBound }
func (e NewInvalidBound) Error() string {
	return fmt.Sprintf("invalid bound for type parameter '%s': %s", e.Param, e.Reason)
}

type NewInferenceIncomplete struct {
	ast.Range
	errorLevel
	Callable string
	Params   []string
}

func (e NewInferenceIncomplete) Code() Code { return InferenceIncomplete }
func (e NewInferenceIncomplete) Error() string {
	return fmt.Sprintf("cannot infer type parameters %s of '%s'", strings.Join(e.Params, ", "), e.Callable)
}

type NewUntypedLambda struct {
	ast.Range
	errorLevel
}

func (e NewUntypedLambda) Code() Code { return UntypedLambda }
func (e NewUntypedLambda) Error() string {
	return "cannot infer the parameter types of this lambda, no functional interface is expected here"
}

type NewTypeArgumentCount struct {
	ast.Range
	errorLevel
	Name     string
	Expected int
	Found    int
}

func (e NewTypeArgumentCount) Code() Code { return TypeArgumentCount }
func (e NewTypeArgumentCount) Error() string {
	return fmt.Sprintf("'%s' expects %d type arguments, but %d were given", e.Name, e.Expected, e.Found)
}

type NewVarianceViolation struct {
	ast.Range
	errorLevel
	Param    *types.TypeParameter
	Position types.Variance
	Member   string
}

func (e NewVarianceViolation) Code() Code { return VarianceViolation }
func (e NewVarianceViolation) Error() string {
	return fmt.Sprintf("%s type parameter '%s' occurs in %s position in '%s'", e.Param.Variance, e.Param.Name, e.Position, e.Member)
}

type NewCaptureNotFinal struct {
	ast.Range
	errorLevel
	Name string
}

func (e NewCaptureNotFinal) Code() Code { return CaptureNotFinal }
func (e NewCaptureNotFinal) Error() string {
	return fmt.Sprintf("variable '%s' is captured by a lambda but reassigned, captured variables must be effectively final", e.Name)
}

type NewNotVisible struct {
	ast.Range
	errorLevel
	Member     string
	Visibility types.Modifiers
}

func (e NewNotVisible) Code() Code { return NotVisible }
func (e NewNotVisible) Error() string {
	return fmt.Sprintf("'%s' is %s and not visible here", e.Member, e.Visibility)
}

type NewModifierConflict struct {
	ast.Range
	errorLevel
	Subject string
	Reason  string
}

func (e NewModifierConflict) Code() Code { return ModifierConflict }
func (e NewModifierConflict) Error() string {
	return fmt.Sprintf("illegal modifiers on '%s': %s", e.Subject, e.Reason)
}

type NewAbstractInstantiation struct {
	ast.Range
	errorLevel
	Class *types.Class
}

func (e NewAbstractInstantiation) Code() Code { return AbstractInstantiation }
func (e NewAbstractInstantiation) Error() string {
	return fmt.Sprintf("cannot instantiate %s '%s'", e.Class.Kind, e.Class.Name)
}

type NewMissingImplementation struct {
	ast.Range
	errorLevel
	Class   *types.Class
	Methods []string
}

func (e NewMissingImplementation) Code() Code { return MissingImplementation }
func (e NewMissingImplementation) Error() string {
	return fmt.Sprintf("class '%s' is not abstract and does not implement %d abstract methods", e.Class.Name, len(e.Methods))
}
func (e NewMissingImplementation) Info() []string {
	info := make([]string, len(e.Methods))
	for i, m := range e.Methods {
		info[i] = "not implemented: " + m
	}
	return info
}

type NewStaticContext struct {
	ast.Range
	errorLevel
	Subject string
}

func (e NewStaticContext) Code() Code { return StaticContext }
func (e NewStaticContext) Error() string {
	return fmt.Sprintf("'%s' cannot be used from a static context", e.Subject)
}

type NewDeprecatedUse struct {
	ast.Range
	warningLevel
	Member string
}

func (e NewDeprecatedUse) Code() Code { return DeprecatedUse }
func (e NewDeprecatedUse) Error() string {
	return fmt.Sprintf("'%s' is deprecated", e.Member)
}

type NewFinalAssignment struct {
	ast.Range
	errorLevel
	Name string
}

func (e NewFinalAssignment) Code() Code { return FinalAssignment }
func (e NewFinalAssignment) Error() string {
	return fmt.Sprintf("'%s' is final and cannot be reassigned", e.Name)
}

type NewInvalidAssignment struct {
	ast.Range
	errorLevel
}

func (e NewInvalidAssignment) Code() Code { return InvalidAssignment }
func (e NewInvalidAssignment) Error() string {
	return "left side of an assignment must be a variable or a field"
}

type NewRedeclared struct {
	ast.Range
	errorLevel
	Name string
}

func (e NewRedeclared) Code() Code { return Redeclared }
func (e NewRedeclared) Error() string {
	return fmt.Sprintf("'%s' is already declared in this scope", e.Name)
}

type NewCyclicInheritance struct {
	ast.Range
	errorLevel
	Class string
}

func (e NewCyclicInheritance) Code() Code { return CyclicInheritance }
func (e NewCyclicInheritance) Error() string {
	return fmt.Sprintf("class '%s' inherits from itself", e.Class)
}

type NewInvalidSupertype struct {
	ast.Range
	errorLevel
	Class  string
	Super  types.Type
	Reason string
}

func (e NewInvalidSupertype) Code() Code { return InvalidSupertype }
func (e NewInvalidSupertype) Error() string {
	return fmt.Sprintf("'%s' cannot extend '%s': %s", e.Class, typeName(e.Super), e.Reason)
}

type NewInvalidReturn struct {
	ast.Range
	errorLevel
	Reason string
}

func (e NewInvalidReturn) Code() Code    { return ReturnMismatch }
func (e NewInvalidReturn) Error() string { return e.Reason }

type NewInvalidCast struct {
	ast.Range
	errorLevel
	From types.Type
	To   types.Type
}

func (e NewInvalidCast) Code() Code { return InvalidCast }
func (e NewInvalidCast) Error() string {
	return fmt.Sprintf("'%s' can never be cast to '%s'", typeName(e.From), typeName(e.To))
}

type NewMissingType struct {
	ast.Range
	errorLevel
	Name string
}

func (e NewMissingType) Code() Code { return MissingType }
func (e NewMissingType) Error() string {
	return fmt.Sprintf("cannot infer the type of '%s', declare it explicitly", e.Name)
}
