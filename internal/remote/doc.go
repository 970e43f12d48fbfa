// Package remote connects the catalog API to the store.
//
// Queries go through the store's ticketed lifecycle, so when requests for
// the same key overlap, the latest issued request that succeeds wins.
// UpdateProduct is optimistic and settles through the optimistic ledger;
// the other mutations write to the cache only after the server confirms.
// Input is validated before any request is sent.
//
// Every request runs in a client span named after its query key or
// mutation.
package remote
