// Package store provides SQLite-backed durable storage for pending
// tracking records.
//
// The store buffers Events and CustomerUpdates until the flush collaborator
// uploads and acknowledges them, and holds the single per-install customer
// identity.
//
// # Contracts
//
//   - Atomic inserts: a record row and all of its property rows land in one
//     transaction; a half-written record is never observable.
//   - Row-identity dedup: re-inserting a record whose id is already present
//     is a successful no-op, never a duplicate row and never an error.
//   - Single identity: the identity fetch-or-create sequence runs under the
//     write lock, so concurrent callers converge on one cookie.
//   - Insertion-order fetch: pending reads order by the monotonic row id.
//   - Explicit cascade: deleting a record removes its property rows in the
//     same transaction; deleting an absent record returns ErrNotFound.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
