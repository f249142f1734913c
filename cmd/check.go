package cmd

import (
	"github.com/cottand/kiln/frontend"
	"github.com/spf13/cobra"
)

var CheckCmd = &cobra.Command{
	Use:          "check ./folder|unit.yaml",
	Short:        "Type-check the units of a folder and report their diagnostics",
	RunE:         runCheck,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var checkFlags compileFlags

func init() {
	checkFlags.register(CheckCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	opts, err := checkFlags.options()
	if err != nil {
		return err
	}
	opts.StopAfter = frontend.PhaseCheck
	ctx := cmd.Context()
	store, err := checkFlags.openStore(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}
	u, err := checkFlags.universe(ctx, store)
	if err != nil {
		return err
	}
	pkg, err := loadTarget(ctx, args[0], u, opts)
	if err != nil {
		return err
	}
	if err := printDiagnostics(cmd.ErrOrStderr(), pkg); err != nil {
		return err
	}
	cmd.Printf("%d units ok\n", len(pkg.Units()))
	return nil
}
