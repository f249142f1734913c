package types

import "strings"

type Modifiers uint32

const (
	Public Modifiers = 1 << iota
	Private
	Protected
	Internal
	Static
	Final
	Abstract
	Deprecated
	// Implicit marks a static single-parameter method as a conversion the
	// compiler may insert on its own
	Implicit
	Override
)

const visibilityMask = Public | Private | Protected | Internal

var modifierNames = []struct {
	m    Modifiers
	name string
}{
	{Public, "public"},
	{Private, "private"},
	{Protected, "protected"},
	{Internal, "internal"},
	{Static, "static"},
	{Final, "final"},
	{Abstract, "abstract"},
	{Deprecated, "deprecated"},
	{Implicit, "implicit"},
	{Override, "override"},
}

func (m Modifiers) Has(other Modifiers) bool { return m&other == other }

// Visibility returns the visibility modifier in m, Public when none was given
func (m Modifiers) Visibility() Modifiers {
	if v := m & visibilityMask; v != 0 {
		return v
	}
	return Public
}

func (m Modifiers) String() string {
	var names []string
	for _, mod := range modifierNames {
		if m.Has(mod.m) {
			names = append(names, mod.name)
		}
	}
	return strings.Join(names, " ")
}

// ParseModifier returns the modifier called name
func ParseModifier(name string) (Modifiers, bool) {
	for _, mod := range modifierNames {
		if mod.name == name {
			return mod.m, true
		}
	}
	return 0, false
}
