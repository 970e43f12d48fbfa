package state

import "github.com/five82/storefront/internal/catalog"

// Command is one cache transition. The set of commands is closed.
type Command interface {
	apply(c catalog.Collections) Effect
}

// Effect reports what a command did beyond its state change.
type Effect struct {
	// Found is false when the command targeted a product that is not cached
	// (Update, Delete, CreateChild, LinkReview).
	Found bool
	// Inverse restores the fields an Update overwrote.
	Inverse catalog.ProductPatch
}

// FetchAll replaces the products with Data.Products. Categories, users and
// reviews gathered along the way are merged, never pruned.
type FetchAll struct{ Data catalog.Normalized }

// FetchOne merges a partial fetch (one product, a category listing, a search).
type FetchOne struct{ Data catalog.Normalized }

// ReplaceCategories replaces the categories with a full category listing.
type ReplaceCategories struct{ Categories []catalog.Category }

// Create merges a confirmed creation.
type Create struct{ Data catalog.Normalized }

// Update merges Patch onto one product, field by field.
type Update struct {
	ProductID int
	Patch     catalog.ProductPatch
}

// Delete removes a product. Other collections are untouched.
type Delete struct{ ProductID int }

// CreateChild merges a confirmed child record (a review and its author) and
// links each review to its product.
type CreateChild struct {
	ProductID int
	Data      catalog.Normalized
}

// LinkReview appends ReviewID to a product's review list unless present.
type LinkReview struct {
	ProductID int
	ReviewID  int
}

func (cmd FetchAll) apply(c catalog.Collections) Effect {
	c.Categories.UpsertMany(cmd.Data.Categories)
	c.Users.UpsertMany(cmd.Data.Users)
	c.Reviews.UpsertMany(cmd.Data.Reviews)
	c.Products.SetAll(cmd.Data.Products)
	return Effect{Found: true}
}

func (cmd FetchOne) apply(c catalog.Collections) Effect {
	c.Merge(cmd.Data)
	return Effect{Found: true}
}

func (cmd ReplaceCategories) apply(c catalog.Collections) Effect {
	c.Categories.SetAll(cmd.Categories)
	return Effect{Found: true}
}

func (cmd Create) apply(c catalog.Collections) Effect {
	c.Merge(cmd.Data)
	return Effect{Found: true}
}

func (cmd Update) apply(c catalog.Collections) Effect {
	var eff Effect
	eff.Found = c.Products.Modify(cmd.ProductID, func(p catalog.Product) catalog.Product {
		next, inverse := p.Apply(cmd.Patch)
		eff.Inverse = inverse
		return next
	})
	return eff
}

func (cmd Delete) apply(c catalog.Collections) Effect {
	found := c.Products.Has(cmd.ProductID)
	c.Products.RemoveOne(cmd.ProductID)
	return Effect{Found: found}
}

func (cmd CreateChild) apply(c catalog.Collections) Effect {
	c.Users.UpsertMany(cmd.Data.Users)
	c.Reviews.UpsertMany(cmd.Data.Reviews)
	found := c.Products.Has(cmd.ProductID)
	for _, r := range cmd.Data.Reviews {
		productID := r.ProductID
		if productID == 0 {
			productID = cmd.ProductID
		}
		link(c, productID, r.ID)
	}
	return Effect{Found: found}
}

func (cmd LinkReview) apply(c catalog.Collections) Effect {
	return Effect{Found: link(c, cmd.ProductID, cmd.ReviewID)}
}

func link(c catalog.Collections, productID, reviewID int) bool {
	return c.Products.Modify(productID, func(p catalog.Product) catalog.Product {
		next, _ := p.AddReviewID(reviewID)
		return next
	})
}

// Apply runs cmd against c. Views frozen from c before the call are not
// affected.
func Apply(c catalog.Collections, cmd Command) Effect {
	return cmd.apply(c)
}

// Reduce returns the tables that result from running cmd on prev. prev is
// left unchanged.
func Reduce(prev catalog.Tables, cmd Command) (catalog.Tables, Effect) {
	c := prev.Edit()
	eff := cmd.apply(c)
	return c.Freeze(), eff
}
