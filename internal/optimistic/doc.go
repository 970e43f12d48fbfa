// Package optimistic keeps a ledger of product patches that were applied to
// the cache before the server confirmed them.
//
// Each Patch records, per field, the value it overwrote. Settling a patch
// consults the patches still pending for the same product:
//
//   - Rollback restores only fields no later pending patch wrote. For a
//     field that a later patch did write, the pre-image moves to that patch.
//   - Commit writes the server's product into the cache but skips fields
//     owned by other pending patches, and later patches adopt the committed
//     values as their pre-images.
//
// Settling in any order therefore leaves fields untouched by the failed
// patches at their confirmed values, and restores the rest to what they
// were before the first failed write.
//
// Query results go through Manager.FinishQuery. When a result rewrites a
// product with pending patches, the patches are applied again on top of the
// fetched value in the order they began, and their pre-images become the
// fetched values. A fetch therefore never hides a pending write, and a later
// rollback lands on fresh server data.
package optimistic
