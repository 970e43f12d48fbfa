package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/storefront/internal/app"
	"github.com/five82/storefront/internal/catalog"
)

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search products by name or description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
			if err := rt.Coordinator.FetchCategories(ctx); err != nil {
				return err
			}
			ids, err := rt.Coordinator.SearchProducts(ctx, query)
			if err != nil {
				return err
			}
			snap := rt.Store.Snapshot()
			products := make([]catalog.Product, 0, len(ids))
			for _, id := range ids {
				if p, ok := snap.Tables.Products.SelectByID(id); ok {
					products = append(products, p)
				}
			}
			printProducts(cmd, snap, products)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
