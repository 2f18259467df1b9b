package trigger

import "context"

// Payload is what a callback receives when its registration fires.
//
// One command execution produces one payload per invocation; only the
// Event, Timing and Seq fields vary between invocations of the same
// command. CommandText, SchemaName and ObjectName come from the
// deparser and are empty when the command's shape has no rendering.
type Payload struct {
	// Event is the lifecycle point being dispatched.
	Event Event `json:"event"`

	// Tag is the canonical command tag of the classified command.
	Tag string `json:"tag"`

	// SchemaName is the schema of the touched object, if known.
	SchemaName string `json:"schema_name,omitempty"`

	// ObjectName is the name of the touched object, if known.
	ObjectName string `json:"object_name,omitempty"`

	// CommandText is the normalized statement text, if the command's
	// shape has a rendering.
	CommandText string `json:"command_text,omitempty"`

	// Node is the classified command node. Typed loosely because the
	// node union lives in the taxonomy layer, which builds on top of
	// these records.
	Node any `json:"-"`

	// Timing is the firing registration's declared timing.
	Timing Timing `json:"timing"`

	// CommandID correlates every invocation of one command execution.
	CommandID string `json:"command_id"`

	// Seq is the logical clock value of this invocation.
	Seq int64 `json:"seq"`
}

// CancelSignal is a callback's veto of the command in flight.
//
// Only Before- and InsteadOf-timed registrations may cancel, and only
// at events preceding command execution. Cancels from anywhere else
// are logged and ignored.
type CancelSignal struct {
	// Reason is the callback's stated justification, carried into the
	// cancellation error the host sees.
	Reason string `json:"reason"`
}

// CallbackRuntime executes registered callbacks. The dispatch engine
// consumes this interface; hosts supply the real execution environment
// and tests supply scripted ones.
//
// A nil CancelSignal with a nil error means the callback ran and the
// command proceeds. A non-nil error aborts the command.
type CallbackRuntime interface {
	Invoke(ctx context.Context, callbackID string, payload Payload) (*CancelSignal, error)
}
