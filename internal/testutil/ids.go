package testutil

import (
	"fmt"
	"sync"
)

// CommandIDSequence generates predictable command IDs for tests.
//
// IDs come out as "<prefix>-000001", "<prefix>-000002", ... so firing
// logs and golden traces are byte-stable across runs. Unlike a fixed
// token list, the sequence never exhausts, so a scenario may run any
// number of commands.
//
// Thread-safety: safe for concurrent use via internal mutex.
type CommandIDSequence struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewCommandIDSequence creates a sequence with the given prefix.
// An empty prefix defaults to "cmd".
func NewCommandIDSequence(prefix string) *CommandIDSequence {
	if prefix == "" {
		prefix = "cmd"
	}
	return &CommandIDSequence{prefix: prefix}
}

// Generate returns the next ID in the sequence.
//
// Implements dispatch.CommandIDGenerator.
func (g *CommandIDSequence) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%06d", g.prefix, g.n)
}

// Reset restarts the sequence. After Reset, Generate returns
// "<prefix>-000001" again.
func (g *CommandIDSequence) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
