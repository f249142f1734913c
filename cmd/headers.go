package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/cottand/kiln/frontend/header"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var HeadersCmd = &cobra.Command{
	Use:   "headers",
	Short: "Inspect the headers of compiled units",
}

var headersPath string

func init() {
	HeadersCmd.PersistentFlags().StringVar(&headersPath, "headers", "headers.db", "SQLite database of headers")
	HeadersCmd.AddCommand(
		&cobra.Command{
			Use:          "list",
			Short:        "List the stored headers",
			Args:         cobra.NoArgs,
			RunE:         runHeadersList,
			SilenceUsage: true,
		},
		&cobra.Command{
			Use:          "show <id>|<package>.<unit>",
			Short:        "Print a stored header",
			Args:         cobra.ExactArgs(1),
			RunE:         runHeadersShow,
			SilenceUsage: true,
		},
		&cobra.Command{
			Use:          "delete <id>",
			Short:        "Delete a stored header",
			Args:         cobra.ExactArgs(1),
			RunE:         runHeadersDelete,
			SilenceUsage: true,
		},
	)
}

func runHeadersList(cmd *cobra.Command, _ []string) error {
	store, err := header.OpenStore(cmd.Context(), headersPath)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tUNIT\tSTORED")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s.%s\t%s\n", e.ID, e.Package, e.Unit, e.Stored.Format(time.DateTime))
	}
	return w.Flush()
}

// findHeader looks ref up as an id first, then as a qualified unit name
func findHeader(cmd *cobra.Command, store *header.Store, ref string) (*header.Header, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return store.Get(cmd.Context(), id)
	}
	for i := len(ref) - 1; i >= 0; i-- {
		if ref[i] == '.' {
			return store.Find(cmd.Context(), ref[:i], ref[i+1:])
		}
	}
	return nil, fmt.Errorf("%q is neither a header id nor a qualified unit name", ref)
}

func runHeadersShow(cmd *cobra.Command, args []string) error {
	store, err := header.OpenStore(cmd.Context(), headersPath)
	if err != nil {
		return err
	}
	defer store.Close()

	h, err := findHeader(cmd, store, args[0])
	if err != nil {
		return err
	}
	if h == nil {
		return fmt.Errorf("no header %s", args[0])
	}
	out, err := h.Marshal()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func runHeadersDelete(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid header id: %w", err)
	}
	store, err := header.OpenStore(cmd.Context(), headersPath)
	if err != nil {
		return err
	}
	defer store.Close()

	deleted, err := store.Delete(cmd.Context(), id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("no header %s", id)
	}
	return nil
}
