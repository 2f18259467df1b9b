package dispatch

import "github.com/google/uuid"

// CommandIDGenerator produces the identity each BeginCommand stamps on
// its run. Implemented by UUIDv7Generator (production) and by the
// fixed generator in internal/testutil (tests).
type CommandIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 command IDs.
//
// UUIDv7 embeds a timestamp in the most significant bits, so command
// IDs sort by creation time in the firing log.
//
// Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
