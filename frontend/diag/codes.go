package diag

type Code int

const (
	None Code = iota
	UnresolvedName
	UnresolvedType
	UnresolvedClass
	MethodNotFound
	AmbiguousCall
	ConstructorNotFound
	TypeMismatch
	BoundViolation
	InvalidBound
	InferenceIncomplete
	UntypedLambda
	TypeArgumentCount
	VarianceViolation
	CaptureNotFinal
	NotVisible
	ModifierConflict
	AbstractInstantiation
	MissingImplementation
	StaticContext
	DeprecatedUse
	FinalAssignment
	InvalidAssignment
	Redeclared
	CyclicInheritance
	InvalidSupertype
	ReturnMismatch
	InvalidCast
	MissingType
)

var codeKeys = map[Code]string{
	None:                  "none",
	UnresolvedName:        "resolve.name",
	UnresolvedType:        "resolve.type",
	UnresolvedClass:       "resolve.class",
	MethodNotFound:        "resolve.method.not_found",
	AmbiguousCall:         "resolve.method.ambiguous",
	ConstructorNotFound:   "resolve.constructor.not_found",
	TypeMismatch:          "type.mismatch",
	BoundViolation:        "type.bound.violation",
	InvalidBound:          "type.bound.invalid",
	InferenceIncomplete:   "type.inference.incomplete",
	UntypedLambda:         "type.lambda.untyped",
	TypeArgumentCount:     "type.arguments.count",
	VarianceViolation:     "type.variance",
	CaptureNotFinal:       "capture.not_final",
	NotVisible:            "check.visibility",
	ModifierConflict:      "check.modifiers",
	AbstractInstantiation: "check.abstract.instantiation",
	MissingImplementation: "check.abstract.missing",
	StaticContext:         "check.static",
	DeprecatedUse:         "check.deprecated",
	FinalAssignment:       "check.final.assignment",
	InvalidAssignment:     "resolve.assignment.target",
	Redeclared:            "resolve.redeclared",
	CyclicInheritance:     "resolve.inheritance.cycle",
	InvalidSupertype:      "resolve.inheritance.supertype",
	ReturnMismatch:        "type.return",
	InvalidCast:           "type.cast",
	MissingType:           "type.missing",
}

// String is the message key of the code, e.g. resolve.method.ambiguous
func (c Code) String() string {
	if key, ok := codeKeys[c]; ok {
		return key
	}
	return "unknown"
}
