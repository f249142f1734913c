// Package kiln loads and compiles a folder of units written as YAML.
package kiln

import (
	"context"
	"fmt"
	"go/token"
	"io/fs"
	"path"
	"strings"
	"testing/fstest"

	"github.com/cottand/kiln/frontend"
	"github.com/cottand/kiln/frontend/ast"
	"github.com/cottand/kiln/frontend/diag"
	"github.com/cottand/kiln/frontend/header"
	"github.com/cottand/kiln/frontend/syntax"
	"github.com/cottand/kiln/frontend/universe"
	"github.com/cottand/kiln/internal/log"
	"golang.org/x/sync/errgroup"
)

var packageLogger = log.DefaultLogger.With("section", "package")

// UnitExtension is the suffix of the files LoadPackage reads
const UnitExtension = ".yaml"

// Package is the set of units found in one folder, compiled against the
// same universe
type Package struct {
	fset     *token.FileSet
	universe *universe.Universe
	units    []*Unit
}

// Unit is a file of a Package along with the outcome of compiling it
type Unit struct {
	File   string
	Syntax *ast.Unit
	Result *frontend.Result
}

type LoadSettings struct {
	// Dir is the path of the folder in the filesystem where the package is located,
	// `.` by default
	Dir string
	// Universe holds the classes units may use besides their own, a fresh
	// universe by default
	Universe *universe.Universe
	Options  frontend.Options
}

// LoadPackage decodes every unit in the folder and compiles them. Units are
// compiled concurrently and do not see each other's classes; install their
// headers into the universe to compile units that depend on them.
//
// Problems in the units are reported through the diagnostics of each Unit;
// the error is for units that could not be read or decoded, and for
// failures of the compiler.
func LoadPackage(ctx context.Context, dir fs.FS, settings LoadSettings) (*Package, error) {
	dirPath := settings.Dir
	if dirPath == "" {
		dirPath = "."
	}
	u := settings.Universe
	if u == nil {
		u = universe.New()
	}
	entries, err := fs.ReadDir(dir, dirPath)
	if err != nil {
		return nil, fmt.Errorf("reading package folder: %w", err)
	}

	pkg := &Package{fset: token.NewFileSet(), universe: u}
	var syntaxes []*ast.Unit
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), UnitExtension) {
			continue
		}
		file := path.Join(dirPath, entry.Name())
		data, err := fs.ReadFile(dir, file)
		if err != nil {
			return nil, fmt.Errorf("reading unit: %w", err)
		}
		unit, err := syntax.Decode(pkg.fset, entry.Name(), data)
		if err != nil {
			return nil, err
		}
		pkg.units = append(pkg.units, &Unit{File: entry.Name(), Syntax: unit})
		syntaxes = append(syntaxes, unit)
	}
	if len(pkg.units) == 0 {
		packageLogger.Warn("no units found", "dir", dirPath)
	}

	results, err := CompileAll(ctx, syntaxes, u, settings.Options)
	if err != nil {
		return nil, err
	}
	for i, res := range results {
		pkg.units[i].Result = res
	}
	return pkg, nil
}

// CompileAll compiles each unit in its own goroutine against u, which must
// not be populated meanwhile. The results are in the order of units.
func CompileAll(ctx context.Context, units []*ast.Unit, u *universe.Universe, opts frontend.Options) ([]*frontend.Result, error) {
	u.Seal()
	results := make([]*frontend.Result, len(units))
	g, ctx := errgroup.WithContext(ctx)
	for i, unit := range units {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := frontend.Compile(unit, u, opts)
			if err != nil {
				return err
			}
			results[i] = res
			packageLogger.Debug("compiled unit", "unit", unit.Name, "diagnostics", res.Diagnostics)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// NewPackageFromBytes compiles the single unit in data, mostly meant for testing
func NewPackageFromBytes(data []byte, filename string) (*Package, error) {
	filesystem := fstest.MapFS{
		filename: &fstest.MapFile{Data: data},
	}
	return LoadPackage(context.Background(), filesystem, LoadSettings{})
}

func (p *Package) Units() []*Unit { return p.units }

func (p *Package) Universe() *universe.Universe { return p.universe }

func (p *Package) FileSet() *token.FileSet { return p.fset }

// HasError reports whether any unit has an error diagnostic
func (p *Package) HasError() bool {
	for _, u := range p.units {
		if u.Result.Diagnostics.HasError() {
			return true
		}
	}
	return false
}

// Diagnostics renders every diagnostic of every unit with its position
func (p *Package) Diagnostics() []string {
	var lines []string
	for _, u := range p.units {
		for _, d := range u.Result.Diagnostics.All() {
			lines = append(lines, p.Format(d))
		}
	}
	return lines
}

// Format renders d as `file.yaml:4:12: error[code]: message`, followed by
// its additional information, one line each
func (p *Package) Format(d diag.Diagnostic) string {
	sb := strings.Builder{}
	if d.Pos().IsValid() {
		sb.WriteString(p.fset.Position(d.Pos()).String())
		sb.WriteString(": ")
	}
	sb.WriteString(diag.Format(d))
	for _, info := range d.Info() {
		sb.WriteString("\n\t")
		sb.WriteString(info)
	}
	return sb.String()
}

// Headers exports the headers of every unit. It fails when a unit has errors.
func (p *Package) Headers() ([]*header.Header, error) {
	headers := make([]*header.Header, 0, len(p.units))
	for _, u := range p.units {
		if u.Result.Diagnostics.HasError() {
			return nil, fmt.Errorf("unit %s has errors", u.File)
		}
		h, err := header.FromUnit(u.Syntax)
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
	return headers, nil
}
