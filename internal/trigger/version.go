package trigger

// Version constants for the payload schema and the subsystem.
const (
	// PayloadVersion is the callback payload schema version.
	PayloadVersion = "1"

	// Version is the heed subsystem version.
	Version = "0.1.0"
)
