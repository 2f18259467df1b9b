// Package dispatch drives callback firing over the command lifecycle.
//
// A session owns one Cache and one Engine. The cache snapshots the
// registration catalog into per-event buckets (wildcard and per-tag)
// and rebuilds lazily after invalidation; the engine classifies each
// command once, deparses it at most once, and invokes the matching
// callbacks in global name order at every lifecycle event.
//
// Ordering is the load-bearing guarantee: within one event, callbacks
// fire in registration-name order (byte order, uppercase before
// lowercase) regardless of whether they matched through the wildcard
// bucket or a tag bucket, and regardless of registration age or
// timing. MergeByName is the pure merge that establishes this.
//
// Cancellation is narrow. Only a Before- or InsteadOf-timed
// registration can veto, and only at events preceding command
// execution; everything else that tries is logged and ignored. A veto
// stops further invocation and surfaces as CanceledError.
//
// Nothing in this package is safe for concurrent use. Sessions are
// single-threaded; cross-session coordination happens in the catalog
// store, not here.
package dispatch
