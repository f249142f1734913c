// Package universe is the registry of packages and classes units are
// compiled against: the built-in kiln.lang package, classes installed from
// compiled headers, and classes imported from Go packages.
//
// A Universe is populated first, then only read while units compile. It is
// not safe to populate while a unit is being compiled.
package universe

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cottand/kiln/frontend/types"
)

// LangPackage is the package imported implicitly by every unit
const LangPackage = "kiln.lang"

type Package struct {
	Name    string
	classes map[string]*types.Class
	order   []*types.Class
}

func NewPackage(name string) *Package {
	return &Package{Name: name, classes: map[string]*types.Class{}}
}

// Add registers c in p and sets its package
func (p *Package) Add(c *types.Class) error {
	if _, exists := p.classes[c.Name]; exists {
		return fmt.Errorf("class %s already declared in package %s", c.Name, p.Name)
	}
	c.Package = p.Name
	p.classes[c.Name] = c
	p.order = append(p.order, c)
	return nil
}

// Class returns the class called name, nil if there is none
func (p *Package) Class(name string) *types.Class {
	if p == nil {
		return nil
	}
	return p.classes[name]
}

// Classes returns the classes of p in the order they were added
func (p *Package) Classes() []*types.Class { return p.order }

type Universe struct {
	packages map[string]*Package
	builtins *Builtins
}

// New returns a universe holding only the built-in kiln.lang package
func New() *Universe {
	u := &Universe{packages: map[string]*Package{}}
	u.builtins = installBuiltins(u.Package(LangPackage))
	return u
}

// Package returns the package called name, creating it when missing
func (u *Universe) Package(name string) *Package {
	if p, ok := u.packages[name]; ok {
		return p
	}
	p := NewPackage(name)
	u.packages[name] = p
	return p
}

func (u *Universe) ResolvePackage(name string) (*Package, bool) {
	p, ok := u.packages[name]
	return p, ok
}

// ResolveClass finds a class by its qualified name, like kiln.lang.Int
func (u *Universe) ResolveClass(qualifiedName string) (*types.Class, bool) {
	dot := strings.LastIndexByte(qualifiedName, '.')
	if dot < 0 {
		return nil, false
	}
	p, ok := u.packages[qualifiedName[:dot]]
	if !ok {
		return nil, false
	}
	c := p.Class(qualifiedName[dot+1:])
	return c, c != nil
}

// Packages returns the names of every package, sorted
func (u *Universe) Packages() []string {
	names := make([]string, 0, len(u.packages))
	for name := range u.packages {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (u *Universe) Builtins() *Builtins { return u.builtins }

// Seal computes what classes derive lazily. Once sealed, u can be read by
// units compiling concurrently until it is populated again.
func (u *Universe) Seal() {
	for _, p := range u.packages {
		for _, c := range p.order {
			c.ThisType()
		}
	}
}
