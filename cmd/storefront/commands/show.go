package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/storefront/cmd/storefront/output"
	"github.com/five82/storefront/internal/app"
	"github.com/five82/storefront/internal/catalog"
)

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one product with its category and reviews",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
			if err := rt.Coordinator.FetchCategories(ctx); err != nil {
				return err
			}
			if err := rt.Coordinator.FetchProduct(ctx, id); errors.Is(err, catalog.ErrNotFound) {
				return fmt.Errorf("product %d not found", id)
			} else if err != nil {
				return err
			}
			d := rt.Store.Snapshot().ProductWithDetails(id)
			if d == nil {
				return fmt.Errorf("product %d not found", id)
			}

			w := out(cmd)
			output.Primary(w, "%s", d.Product.Name)
			stock := "in stock"
			if !d.Product.InStock {
				stock = "out of stock"
			}
			fmt.Fprintf(w, "Price:    %.2f (%s)\n", d.Product.Price, stock)
			if d.Category != nil {
				fmt.Fprintf(w, "Category: %s\n", d.Category.Name)
			}
			if desc := strings.TrimSpace(d.Product.Description); desc != "" {
				fmt.Fprintf(w, "\n%s\n", desc)
			}
			fmt.Fprintln(w)
			output.Info(w, "Reviews (%d)", len(d.Reviews))
			for _, r := range d.Reviews {
				author := "unknown"
				if r.Author != nil {
					author = r.Author.Name
				}
				fmt.Fprintf(w, "  %d/5  %s: %s\n", r.Rating, author, r.Text)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", arg)
	}
	return id, nil
}
