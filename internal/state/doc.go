// Package state holds the root aggregate of the storefront cache.
//
// # Overview
//
// A Store owns the four normalized entity collections (products,
// categories, users, reviews) together with request lifecycle metadata and
// the UI's selected category. Every transition goes through one command
// type, applied under a single lock, so readers never observe a partially
// applied update.
//
// # Commands
//
//	FetchAll          replace products, merge categories/users/reviews
//	FetchOne          merge a partial fetch
//	ReplaceCategories replace categories
//	Create            merge a confirmed creation
//	Update            patch one product field by field
//	Delete            remove one product
//	CreateChild       merge a review and its author, link it to the product
//	LinkReview        append a review id to a product
//
// Apply runs a command against mutable collections; Reduce runs it against
// an immutable Tables value and returns the next one. Both report an Effect,
// which carries the inverse patch of an Update.
//
// # Query Lifecycle
//
// Each logical query (for example "products" or "product:7") has a key.
// BeginQuery issues a Ticket and marks the key loading. FinishQuery applies
// the result unless a ticket issued later for the same key has already
// committed, so among overlapping requests the most recently issued one
// that succeeds determines the cache. Status transitions, the last error and
// the consecutive failure count follow only the latest ticket.
// FinishQueryWith also takes an Overlay, run under the store lock right
// after the result is applied, which the optimistic ledger uses to keep its
// pending patches on top of fetched data.
//
// # Snapshots
//
// Snapshot freezes the collections and returns them with copies of the
// status maps. Derived views (ProductWithDetails, ProductsByCategory,
// ProductsWithCategories, Stats) are computed from the snapshot through a
// memoizing selector engine shared by the store; repeated calls against
// unchanged inputs return the same result.
//
// # Concurrency Model
//
// All methods are safe for concurrent use. Snapshot takes the write lock
// because freezing marks the collections shared; the next write after a
// snapshot copies the affected collection once.
package state
