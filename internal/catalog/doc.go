// Package catalog provides SQLite-backed durable storage for the
// trigger catalog:
//   - Registrations: named callback registrations, unique per
//     (event, name)
//   - Firings: append-only audit log of callback invocations, with
//     content-addressed idempotency
//
// Ordering rules:
//   - Registration scans order by name with COLLATE BINARY, served by
//     the (event, name) unique index; the dispatch cache inherits this
//     order and never sorts.
//   - Firing scans order by seq (logical clock), never wall time.
//
// Mutations broadcast synchronously to subscribers; sessions use this
// to invalidate their dispatch caches. The database is configured with
// WAL mode, synchronous=NORMAL, busy_timeout=5000, foreign_keys=ON and
// a single connection, matching SQLite's one-writer model.
//
// Firing IDs are computed in internal/trigger/hash.go from RFC 8785
// canonical JSON with SHA-256 domain separation, so re-appending the
// same firing is a no-op.
package catalog
