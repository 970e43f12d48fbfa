package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/storefront/cmd/storefront/output"
	"github.com/five82/storefront/internal/app"
	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/state"
)

var (
	// List flags
	listCategory int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	Long: `Fetch the catalog and list products sorted by name.

Examples:
  storefront list               # Every product
  storefront list --category 2  # Only products in category 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
			if err := rt.Coordinator.Refresh(ctx); err != nil {
				return err
			}
			if listCategory != catalog.NoCategory {
				if err := rt.Coordinator.FetchProductsByCategory(ctx, listCategory); err != nil {
					return err
				}
			}
			snap := rt.Store.Snapshot()
			printProducts(cmd, snap, snap.ProductsByCategory(listCategory))
			return nil
		})
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
			if err := rt.Coordinator.Refresh(ctx); err != nil {
				return err
			}
			snap := rt.Store.Snapshot()
			counts := make(map[int]int)
			for _, p := range snap.Tables.Products.SelectAll() {
				counts[p.CategoryID]++
			}
			var rows [][]string
			for _, c := range snap.Tables.Categories.SelectAll() {
				rows = append(rows, []string{fmt.Sprint(c.ID), c.Name, fmt.Sprint(counts[c.ID]), c.Description})
			}
			output.Table(out(cmd), []string{"ID", "Name", "Products", "Description"}, rows)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(categoriesCmd)

	listCmd.Flags().IntVarP(&listCategory, "category", "c", catalog.NoCategory, "Only list products in this category id")
}

func printProducts(cmd *cobra.Command, snap state.Snapshot, products []catalog.Product) {
	if len(products) == 0 {
		output.Muted(out(cmd), "No products")
		return
	}
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		category := "-"
		if c, ok := snap.Tables.Categories.SelectByID(p.CategoryID); ok {
			category = c.Name
		}
		stock := "out"
		if p.InStock {
			stock = "in"
		}
		rows = append(rows, []string{
			fmt.Sprint(p.ID),
			p.Name,
			fmt.Sprintf("%.2f", p.Price),
			category,
			stock,
			fmt.Sprint(len(p.ReviewIDs)),
		})
	}
	output.Table(out(cmd), []string{"ID", "Name", "Price", "Category", "Stock", "Reviews"}, rows)
}
