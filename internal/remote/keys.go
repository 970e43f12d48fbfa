package remote

import (
	"strconv"
	"strings"
)

// Query keys. Requests sharing a key are ordered by last-committed-wins.
const (
	KeyProducts   = "products"
	KeyCategories = "categories"
)

// KeyProduct is the query key of a single-product fetch.
func KeyProduct(id int) string { return "product:" + strconv.Itoa(id) }

// KeyCategoryProducts is the query key of a by-category listing.
func KeyCategoryProducts(categoryID int) string {
	return "category:" + strconv.Itoa(categoryID) + ":products"
}

// KeySearch is the query key of a search. Queries differing only in case
// or surrounding space share a key.
func KeySearch(q string) string {
	return "search:" + strings.ToLower(strings.TrimSpace(q))
}
