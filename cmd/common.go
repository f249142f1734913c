package cmd

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cottand/kiln/frontend"
	"github.com/cottand/kiln/frontend/header"
	"github.com/cottand/kiln/frontend/match"
	"github.com/cottand/kiln/frontend/universe"
	"github.com/cottand/kiln/internal/log"
	"github.com/cottand/kiln/kiln"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// compileFlags are shared by the commands that compile a package
type compileFlags struct {
	logLevel  int
	headers   string
	goImports []string
	tie       string
	sections  []string
}

func (f *compileFlags) register(c *cobra.Command) {
	c.Flags().IntVarP(&f.logLevel, "log-level", "l", int(slog.LevelError), "log level")
	c.Flags().StringSliceVar(&f.sections, "log-section", nil, "also print debug logs of these sections")
	c.Flags().StringVar(&f.headers, "headers", "", "SQLite database of headers to compile against")
	c.Flags().StringSliceVar(&f.goImports, "go", nil, "Go packages to make available, as go.<import path>")
	c.Flags().StringVar(&f.tie, "tie", match.TieAmbiguous.String(), "what to do with equally good overloads: ambiguous or first-wins")
}

func (f *compileFlags) options() (frontend.Options, error) {
	log.SetLevel(slog.Level(f.logLevel))
	log.EnableSections(f.sections...)
	policy, ok := match.ParseTiePolicy(f.tie)
	if !ok {
		return frontend.Options{}, fmt.Errorf("unknown tie policy %q", f.tie)
	}
	return frontend.Options{TiePolicy: policy}, nil
}

// openStore opens the header store named by --headers, nil when there is none
func (f *compileFlags) openStore(ctx context.Context) (*header.Store, error) {
	if f.headers == "" {
		return nil, nil
	}
	return header.OpenStore(ctx, f.headers)
}

// universe holds the stored headers and the Go packages asked for
func (f *compileFlags) universe(ctx context.Context, store *header.Store) (*universe.Universe, error) {
	u := universe.New()
	if store != nil {
		n, err := store.InstallAll(ctx, func(h *header.Header) error {
			_, err := header.Install(u, h)
			return err
		})
		if err != nil {
			return nil, err
		}
		log.DefaultLogger.Debug("installed headers", "section", "pipeline", "count", n)
	}
	if len(f.goImports) > 0 {
		if _, err := u.ImportGo(f.goImports...); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// loadTarget compiles the folder target, or the folder of the file target
func loadTarget(ctx context.Context, target string, u *universe.Universe, opts frontend.Options) (*kiln.Package, error) {
	target, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute path of target: %w", err)
	}
	stat, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("could not stat target: %w", err)
	}

	var folderFS fs.FS
	if stat.IsDir() {
		folderFS = os.DirFS(target)
	} else {
		folderFS = os.DirFS(filepath.Dir(target))
	}
	return kiln.LoadPackage(ctx, folderFS, kiln.LoadSettings{Universe: u, Options: opts})
}

const (
	red   = "\x1b[31m"
	reset = "\x1b[0m"
)

func colourful(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// printDiagnostics writes the diagnostics of pkg to w and fails when any is an error
func printDiagnostics(w io.Writer, pkg *kiln.Package) error {
	colour := colourful(w)
	for _, d := range pkg.Diagnostics() {
		if colour {
			d = red + d + reset
		}
		_, _ = fmt.Fprintln(w, d)
	}
	if pkg.HasError() {
		return fmt.Errorf("errors found during compilation")
	}
	return nil
}
