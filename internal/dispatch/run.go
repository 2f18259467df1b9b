package dispatch

import (
	"github.com/heeddb/heed/internal/ddl"
	"github.com/heeddb/heed/internal/deparse"
)

// CommandRun is the engine's per-command state, created by
// BeginCommand and released by FinishCommand.
//
// The run pins what must only happen once per command: classification
// happens at BeginCommand, deparsing on the first Fire that has
// callbacks to deliver to. Later events reuse both.
type CommandRun struct {
	// ID identifies this command execution in payloads and firings.
	ID string

	// Tag is the classified command tag. Only meaningful when the
	// command is supported.
	Tag ddl.Tag

	// Node is the command being executed.
	Node ddl.Node

	supported bool
	deparsed  bool
	result    deparse.Result
	finished  bool
}

// Supported reports whether the command participates in dispatch.
// Unsupported commands fire nothing at every event.
func (r *CommandRun) Supported() bool {
	return r.supported
}
