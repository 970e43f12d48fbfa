// Package selector derives denormalized views from catalog tables and
// memoizes them by input identity.
//
// # Views
//
//   - ProductWithDetails: product + category + reviews + review authors
//   - ProductsByCategory: products filtered by category, in collection order
//   - ProductsWithCategories: every product joined with its category
//   - Stats: counts and average rating
//
// # Invalidation
//
// List views and Stats are keyed on the versions of the collections they
// read and are recomputed whenever one of those versions changes.
//
// ProductWithDetails is scoped finer. Each memo entry records the revision
// of every entity it resolved (the product, its category, each review, each
// author) and the absence of every reference it could not resolve. When a
// collection version changes, the entry is still reused if none of those
// revisions changed, so a write to another category or another product
// leaves the returned pointer untouched. A previously missing reference
// that later arrives invalidates the entry.
//
// Missing references never produce errors: a missing category or author is
// nil and a missing review is left out of the list.
package selector
