package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cottand/kiln/backend"
	"github.com/cottand/kiln/kiln"
	"github.com/spf13/cobra"
)

var BuildCmd = &cobra.Command{
	Use:          "build ./folder|unit.yaml",
	Short:        "Compile the units of a folder into programs",
	RunE:         runBuild,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var (
	buildFlags   compileFlags
	buildOutPath string
	saveHeaders  bool
)

func init() {
	buildFlags.register(BuildCmd)
	BuildCmd.Flags().StringVarP(&buildOutPath, "out", "o", "out", "output path")
	BuildCmd.Flags().BoolVar(&saveHeaders, "save-headers", false, "store the headers of the compiled units in --headers")
}

func runBuild(cmd *cobra.Command, args []string) error {
	opts, err := buildFlags.options()
	if err != nil {
		return err
	}
	opts.Generator = backend.NewGenerator()
	ctx := cmd.Context()
	store, err := buildFlags.openStore(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}
	if saveHeaders && store == nil {
		return fmt.Errorf("--save-headers needs --headers")
	}
	u, err := buildFlags.universe(ctx, store)
	if err != nil {
		return err
	}

	pkg, err := loadTarget(ctx, args[0], u, opts)
	if err != nil {
		return fmt.Errorf("could not load package (this is a bug and not a compile error): %w", err)
	}
	if err := printDiagnostics(cmd.ErrOrStderr(), pkg); err != nil {
		return err
	}
	if err := writePrograms(pkg, buildOutPath); err != nil {
		return err
	}

	if saveHeaders {
		headers, err := pkg.Headers()
		if err != nil {
			return err
		}
		for _, h := range headers {
			if err := store.Put(ctx, h); err != nil {
				return err
			}
			cmd.Printf("stored header %s\n", h)
		}
	}
	return nil
}

func writePrograms(pkg *kiln.Package, outPath string) error {
	err := os.MkdirAll(outPath, os.ModePerm)
	if err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}
	for _, u := range pkg.Units() {
		name := strings.TrimSuffix(u.File, kiln.UnitExtension) + ".program.yaml"
		if err := os.WriteFile(filepath.Join(outPath, name), u.Result.Output, 0o644); err != nil {
			return fmt.Errorf("could not write program of %s: %w", u.File, err)
		}
	}
	return nil
}
