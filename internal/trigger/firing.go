package trigger

// Firing is one callback invocation recorded in the firing log.
//
// Firings are append-only audit rows. The ID is content-addressed over
// the identity fields (command, event, tag, registration, callback, seq)
// so re-appending the same firing is a no-op at the store layer.
type Firing struct {
	// ID is the content-addressed firing identity.
	ID string `json:"id"`

	// CommandID correlates every firing of one command execution.
	CommandID string `json:"command_id"`

	// Event is the lifecycle point that fired.
	Event Event `json:"event"`

	// Tag is the canonical command tag of the classified command.
	Tag string `json:"tag"`

	// Registration is the name of the registration that matched.
	Registration string `json:"registration"`

	// CallbackID is the callback that was invoked.
	CallbackID string `json:"callback_id"`

	// SchemaName is the deparsed schema of the touched object, if any.
	SchemaName string `json:"schema_name,omitempty"`

	// ObjectName is the deparsed name of the touched object, if any.
	ObjectName string `json:"object_name,omitempty"`

	// Canceled records whether this invocation vetoed the command.
	Canceled bool `json:"canceled,omitempty"`

	// Seq is the logical clock value of the invocation.
	Seq int64 `json:"seq"`
}
