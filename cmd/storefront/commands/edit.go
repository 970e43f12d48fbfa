package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/five82/storefront/cmd/storefront/output"
	"github.com/five82/storefront/internal/app"
	"github.com/five82/storefront/internal/catalog"
)

var (
	// Product flags
	productName        string
	productPrice       float64
	productDescription string
	productCategory    int
	productImageURL    string
	productInStock     bool

	// Review flags
	reviewText   string
	reviewRating int
	reviewAuthor int
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a product",
	Long: `Create a product. The cache is updated once the server confirms.

Examples:
  storefront create --name Lamp --price 19.99 --category 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := catalog.NewProduct{
			Name:        productName,
			Price:       productPrice,
			Description: productDescription,
			CategoryID:  productCategory,
			ImageURL:    productImageURL,
			InStock:     productInStock,
		}
		return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
			p, err := rt.Coordinator.CreateProduct(ctx, in)
			if err != nil {
				return err
			}
			output.Success(out(cmd), "Created product %d (%s)", p.ID, p.Name)
			return nil
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update product fields",
	Long: `Update the given product fields. Only flags that are set are sent.

Examples:
  storefront update 3 --price 899
  storefront update 3 --in-stock=false`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		patch := patchFromFlags(cmd)
		if patch.IsEmpty() {
			return errors.New("nothing to update: set at least one field flag")
		}
		return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
			// Fetch first so the optimistic patch has something to apply to.
			if err := rt.Coordinator.FetchProduct(ctx, id); err != nil {
				return err
			}
			p, err := rt.Coordinator.UpdateProduct(ctx, id, patch)
			if err != nil {
				return err
			}
			output.Success(out(cmd), "Updated product %d (%s): %s", p.ID, p.Name, patch.Fields())
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
			if err := rt.Coordinator.DeleteProduct(ctx, id); err != nil {
				return err
			}
			output.Success(out(cmd), "Deleted product %d", id)
			return nil
		})
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review PRODUCT_ID",
	Short: "Add a review to a product",
	Long: `Add a review to a product.

Examples:
  storefront review 3 --rating 5 --author 1 --text "Works great"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		in := catalog.NewReview{ProductID: id, Text: reviewText, Rating: reviewRating, AuthorID: reviewAuthor}
		return withRuntime(cmd.Context(), func(ctx context.Context, rt *app.Runtime) error {
			r, err := rt.Coordinator.CreateReview(ctx, in)
			if err != nil {
				return err
			}
			output.Success(out(cmd), "Added review %d to product %d", r.ID, id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(reviewCmd)

	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().StringVar(&productName, "name", "", "Product name")
		c.Flags().Float64Var(&productPrice, "price", 0, "Product price")
		c.Flags().StringVar(&productDescription, "description", "", "Product description")
		c.Flags().IntVar(&productCategory, "category", 0, "Category id")
		c.Flags().StringVar(&productImageURL, "image-url", "", "Image URL")
		c.Flags().BoolVar(&productInStock, "in-stock", true, "Whether the product is in stock")
	}
	_ = createCmd.MarkFlagRequired("name")
	_ = createCmd.MarkFlagRequired("category")

	reviewCmd.Flags().StringVar(&reviewText, "text", "", "Review text (required)")
	reviewCmd.Flags().IntVar(&reviewRating, "rating", 0, "Rating from 1 to 5 (required)")
	reviewCmd.Flags().IntVar(&reviewAuthor, "author", 0, "Author user id (required)")
	_ = reviewCmd.MarkFlagRequired("text")
	_ = reviewCmd.MarkFlagRequired("rating")
	_ = reviewCmd.MarkFlagRequired("author")
}

// patchFromFlags builds a patch from the flags the user actually set.
func patchFromFlags(cmd *cobra.Command) catalog.ProductPatch {
	var p catalog.ProductPatch
	flags := cmd.Flags()
	if flags.Changed("name") {
		p.Name = catalog.Ptr(productName)
	}
	if flags.Changed("price") {
		p.Price = catalog.Ptr(productPrice)
	}
	if flags.Changed("description") {
		p.Description = catalog.Ptr(productDescription)
	}
	if flags.Changed("category") {
		p.CategoryID = catalog.Ptr(productCategory)
	}
	if flags.Changed("image-url") {
		p.ImageURL = catalog.Ptr(productImageURL)
	}
	if flags.Changed("in-stock") {
		p.InStock = catalog.Ptr(productInStock)
	}
	return p
}
