// Package trigger defines the persisted record types of the event trigger
// subsystem: lifecycle events, registrations, and firing-log entries.
//
// This package contains type definitions and identity helpers only. All
// other internal packages import trigger; trigger imports nothing internal.
// That keeps it the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - NO float types anywhere - use int64 for numbers
//   - All JSON tags use snake_case
//   - Ordering uses logical seq numbers, never wall-clock timestamps
//   - Firing identity is content-addressed over RFC 8785 canonical JSON
package trigger
