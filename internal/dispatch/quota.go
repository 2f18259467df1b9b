package dispatch

import (
	"errors"
	"fmt"
)

// DefaultMaxDepth is the default command nesting-depth limit.
//
// Callbacks may themselves execute commands through the engine; the
// depth guard bounds that recursion so a callback that re-triggers
// its own command class cannot run away.
const DefaultMaxDepth = 16

// DepthGuard tracks command nesting depth for one engine.
//
// BeginCommand enters the guard, FinishCommand leaves it. The guard
// counts commands currently in flight, not total commands, so long
// sessions never exhaust it.
type DepthGuard struct {
	max     int
	current int
}

// NewDepthGuard creates a guard with the given nesting limit.
func NewDepthGuard(max int) *DepthGuard {
	return &DepthGuard{max: max}
}

// Enter claims a nesting slot for the command.
//
// Returns DepthExceededError if the command would nest deeper than
// the limit; no slot is claimed in that case.
func (g *DepthGuard) Enter(commandID string) error {
	if g.current >= g.max {
		return &DepthExceededError{
			CommandID: commandID,
			Depth:     g.current + 1,
			Limit:     g.max,
		}
	}
	g.current++
	return nil
}

// Leave releases the innermost nesting slot.
func (g *DepthGuard) Leave() {
	if g.current > 0 {
		g.current--
	}
}

// Depth returns the current nesting depth.
// Used for logging and diagnostics.
func (g *DepthGuard) Depth() int {
	return g.current
}

// Max returns the nesting limit.
// Used for logging and diagnostics.
func (g *DepthGuard) Max() int {
	return g.max
}

// DepthExceededError is returned when a command would nest beyond the
// depth limit. The command never starts; no callbacks fire for it.
type DepthExceededError struct {
	CommandID string // The command that was refused
	Depth     int    // Depth the command would have run at
	Limit     int    // Maximum allowed nesting depth
}

// Error implements the error interface.
func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("command %s exceeded nesting depth: %d > %d limit",
		e.CommandID, e.Depth, e.Limit)
}

// IsDepthExceeded returns true if the error is a DepthExceededError.
// Uses errors.As to handle wrapped errors.
func IsDepthExceeded(err error) bool {
	var de *DepthExceededError
	return errors.As(err, &de)
}
