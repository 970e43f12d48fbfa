package commands

import (
	"context"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/five82/storefront/internal/app"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Fetch the catalog and dump the normalized cache",
	Long: `Fetch the catalog and print every cached collection in sorted order,
followed by query statuses and catalog stats. Useful for debugging
normalization.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
			if err := rt.Coordinator.Refresh(ctx); err != nil {
				return err
			}
			snap := rt.Store.Snapshot()
			cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
			w := out(cmd)
			fmt.Fprintf(w, "categories: %s\n", cfg.Sdump(snap.Tables.Categories.SelectAll()))
			fmt.Fprintf(w, "products: %s\n", cfg.Sdump(snap.Tables.Products.SelectAll()))
			fmt.Fprintf(w, "users: %s\n", cfg.Sdump(snap.Tables.Users.SelectAll()))
			fmt.Fprintf(w, "reviews: %s\n", cfg.Sdump(snap.Tables.Reviews.SelectAll()))
			fmt.Fprintf(w, "queries: %s\n", cfg.Sdump(snap.Queries))
			fmt.Fprintf(w, "stats: %s", cfg.Sdump(snap.Stats()))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
