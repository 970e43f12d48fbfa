package api

import (
	"slices"

	"github.com/five82/storefront/internal/catalog"
)

// ordered collects entities by ID in first-seen order; a repeated ID
// replaces the earlier value in place.
type ordered[T any] struct {
	index map[int]int
	items []T
}

func (o *ordered[T]) put(id int, v T) {
	if o.index == nil {
		o.index = make(map[int]int)
	}
	if i, ok := o.index[id]; ok {
		o.items[i] = v
		return
	}
	o.index[id] = len(o.items)
	o.items = append(o.items, v)
}

// NormalizeProducts flattens product payloads into per-type lists.
// Embedded categories and authors are filed by ID (last write wins), reviews
// reference their author and product by ID, and each product keeps its
// review IDs in response order.
func NormalizeProducts(items []Product) catalog.Normalized {
	var (
		products   ordered[catalog.Product]
		categories ordered[catalog.Category]
		users      ordered[catalog.User]
		reviews    ordered[catalog.Review]
	)
	for _, item := range items {
		category := toCategory(item.Category)
		categories.put(category.ID, category)

		reviewIDs := make([]int, 0, len(item.Reviews))
		for _, r := range item.Reviews {
			if author := toUser(r.Author); author.ID != 0 {
				users.put(author.ID, author)
			}
			reviews.put(r.ID, toReview(r, item.ID))
			if !slices.Contains(reviewIDs, r.ID) {
				reviewIDs = append(reviewIDs, r.ID)
			}
		}

		products.put(item.ID, catalog.Product{
			ID:          item.ID,
			Name:        item.Name,
			Price:       item.Price,
			Description: item.Description,
			CategoryID:  category.ID,
			ReviewIDs:   reviewIDs,
			ImageURL:    item.ImageURL,
			InStock:     item.InStock,
		})
	}
	return catalog.Normalized{
		Products:   products.items,
		Categories: categories.items,
		Users:      users.items,
		Reviews:    reviews.items,
	}
}

// NormalizeProduct flattens a single product payload.
func NormalizeProduct(item Product) catalog.Normalized {
	return NormalizeProducts([]Product{item})
}

// NormalizeCategories converts /categories payloads, coercing IDs.
func NormalizeCategories(items []Category) []catalog.Category {
	var out ordered[catalog.Category]
	for _, item := range items {
		c := toCategory(item)
		out.put(c.ID, c)
	}
	return out.items
}

// NormalizeReview flattens a created review. productID fills in the parent
// when the payload omits it.
func NormalizeReview(r Review, productID int) catalog.Normalized {
	if r.ProductID != 0 {
		productID = r.ProductID
	}
	n := catalog.Normalized{Reviews: []catalog.Review{toReview(r, productID)}}
	if author := toUser(r.Author); author.ID != 0 {
		n.Users = []catalog.User{author}
	}
	return n
}

// Denormalize rebuilds product payloads from normalized lists. References
// that cannot be resolved become zero values carrying only the ID (for
// categories and authors) or are skipped (for reviews).
func Denormalize(n catalog.Normalized) []Product {
	categories := make(map[int]catalog.Category, len(n.Categories))
	for _, c := range n.Categories {
		categories[c.ID] = c
	}
	users := make(map[int]catalog.User, len(n.Users))
	for _, u := range n.Users {
		users[u.ID] = u
	}
	reviews := make(map[int]catalog.Review, len(n.Reviews))
	for _, r := range n.Reviews {
		reviews[r.ID] = r
	}

	out := make([]Product, 0, len(n.Products))
	for _, p := range n.Products {
		category, ok := categories[p.CategoryID]
		if !ok {
			category = catalog.Category{ID: p.CategoryID}
		}
		item := Product{
			ID:          p.ID,
			Name:        p.Name,
			Price:       p.Price,
			Description: p.Description,
			Category:    fromCategory(category),
			Reviews:     make([]Review, 0, len(p.ReviewIDs)),
			ImageURL:    p.ImageURL,
			InStock:     p.InStock,
		}
		for _, id := range p.ReviewIDs {
			r, ok := reviews[id]
			if !ok {
				continue
			}
			author, ok := users[r.AuthorID]
			if !ok {
				author = catalog.User{ID: r.AuthorID}
			}
			item.Reviews = append(item.Reviews, Review{
				ID:        r.ID,
				Text:      r.Text,
				Rating:    r.Rating,
				CreatedAt: formatTime(r.CreatedAt),
				ProductID: r.ProductID,
				Author:    User(author),
			})
		}
		out = append(out, item)
	}
	return out
}

func toCategory(c Category) catalog.Category {
	return catalog.Category{ID: int(c.ID), Name: c.Name, Description: c.Description, Icon: c.Icon}
}

func fromCategory(c catalog.Category) Category {
	return Category{ID: FlexibleID(c.ID), Name: c.Name, Description: c.Description, Icon: c.Icon}
}

func toUser(u User) catalog.User {
	return catalog.User(u)
}

func toReview(r Review, productID int) catalog.Review {
	return catalog.Review{
		ID:        r.ID,
		Text:      r.Text,
		Rating:    r.Rating,
		AuthorID:  r.Author.ID,
		ProductID: productID,
		CreatedAt: r.ParsedCreatedAt(),
	}
}
