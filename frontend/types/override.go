package types

import "github.com/hashicorp/go-set/v3"

// Hierarchy returns t followed by every type it inherits from, each
// parameterised as seen from t: for ArrayList<Int> it holds List<Int> rather
// than List<T>. Closer super types come first; a class reached twice is only
// listed the first time.
func Hierarchy(t Type) []Type {
	var hierarchy []Type
	visited := set.New[*Class](8)
	queue := []Type{t}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		c := ClassOf(current)
		if c == nil || !visited.Insert(c) {
			continue
		}
		hierarchy = append(hierarchy, current)
		queue = append(queue, SuperTypesOf(current)...)
	}
	return hierarchy
}

// MethodView is a method together with the type it is seen through
type MethodView struct {
	Method *Method
	View   Type
}

// ParamTypes returns the parameter types of the method as seen through its view
func (v MethodView) ParamTypes() []Type {
	ctx := ContextOf(v.View)
	params := make([]Type, len(v.Method.Params))
	for i, p := range v.Method.Params {
		params[i], _ = Substitute(p.Type, ctx)
	}
	return params
}

// SameSignature reports whether the two methods have the same name and
// parameter types, once seen through their views
func SameSignature(a, b MethodView) bool {
	if a.Method.Name != b.Method.Name || len(a.Method.Params) != len(b.Method.Params) {
		return false
	}
	aParams, bParams := a.ParamTypes(), b.ParamTypes()
	for i := range aParams {
		if !Equal(aParams[i], bParams[i]) {
			return false
		}
	}
	return true
}

// InstanceMethods returns the instance methods of c and its ancestors seen
// from c's own type, closest declarations first
func (c *Class) InstanceMethods() []MethodView {
	var methods []MethodView
	for _, view := range Hierarchy(c.ThisType()) {
		for _, m := range ClassOf(view).Methods {
			if !m.IsStatic() {
				methods = append(methods, MethodView{Method: m, View: view})
			}
		}
	}
	return methods
}

// Overridden returns the methods of the ancestors of c that m, declared in
// c, overrides
func (c *Class) Overridden(m *Method) []*Method {
	self := MethodView{Method: m, View: c.ThisType()}
	var overridden []*Method
	for _, other := range c.InstanceMethods() {
		if other.Method.Owner != c && SameSignature(self, other) {
			overridden = append(overridden, other.Method)
		}
	}
	return overridden
}

// AbstractMethods returns the abstract methods of c and its ancestors that no
// class on the way down implements, closest declarations first
func (c *Class) AbstractMethods() []*Method {
	all := c.InstanceMethods()
	var result []MethodView
	for _, candidate := range all {
		if !candidate.Method.IsAbstract() {
			continue
		}
		implemented := false
		for _, other := range all {
			if !other.Method.IsAbstract() && SameSignature(candidate, other) {
				implemented = true
				break
			}
		}
		for _, already := range result {
			if SameSignature(candidate, already) {
				implemented = true
				break
			}
		}
		if !implemented {
			result = append(result, candidate)
		}
	}
	methods := make([]*Method, len(result))
	for i, view := range result {
		methods[i] = view.Method
	}
	return methods
}
