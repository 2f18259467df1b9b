package trigger

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Event is a lifecycle point at which trigger firing can occur.
//
// Events are ordered: EventCommandStart is always the first point in a
// command's lifecycle and EventCommandEnd the last. The zero value is
// EventCommandStart.
type Event int

const (
	// EventCommandStart fires before any work for the command is done.
	EventCommandStart Event = iota

	// EventSecurityCheck fires after the command's privilege checks.
	EventSecurityCheck

	// EventConsistencyCheck fires after internal consistency validation.
	EventConsistencyCheck

	// EventNameLookup fires after target-name resolution.
	EventNameLookup

	// EventCommandEnd fires after the command has executed.
	EventCommandEnd
)

// eventTags maps events to their persisted string form.
// The mapping is bijective; ParseEvent is the inverse.
var eventTags = map[Event]string{
	EventCommandStart:     "command_start",
	EventSecurityCheck:    "security_check",
	EventConsistencyCheck: "consistency_check",
	EventNameLookup:       "name_lookup",
	EventCommandEnd:       "command_end",
}

// Events returns all events in lifecycle order.
func Events() []Event {
	return []Event{
		EventCommandStart,
		EventSecurityCheck,
		EventConsistencyCheck,
		EventNameLookup,
		EventCommandEnd,
	}
}

// String returns the persisted tag for the event ("command_start", ...).
func (e Event) String() string {
	if s, ok := eventTags[e]; ok {
		return s
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Valid reports whether e is a member of the closed event set.
func (e Event) Valid() bool {
	_, ok := eventTags[e]
	return ok
}

// ParseEvent resolves an event tag case-insensitively.
// Unknown tags produce a ConfigError with code ErrCodeEventUnknown.
func ParseEvent(s string) (Event, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for e, tag := range eventTags {
		if tag == needle {
			return e, nil
		}
	}
	return 0, &ConfigError{
		Code:    ErrCodeEventUnknown,
		Message: fmt.Sprintf("unrecognized event %q", s),
		Value:   s,
	}
}

// EventClass partitions events into the phase they belong to.
// Cancellation is honored only at before-class events.
type EventClass int

const (
	// EventClassBefore marks events that precede command execution.
	EventClassBefore EventClass = iota

	// EventClassAfter marks events that follow command execution.
	EventClassAfter
)

// Class returns the phase of the event. Every event except
// EventCommandEnd precedes execution.
func (e Event) Class() EventClass {
	if e == EventCommandEnd {
		return EventClassAfter
	}
	return EventClassBefore
}

// MarshalJSON encodes the event as its string tag.
func (e Event) MarshalJSON() ([]byte, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("marshal event: invalid value %d", int(e))
	}
	return json.Marshal(e.String())
}

// UnmarshalJSON decodes an event from its string tag (case-insensitive).
func (e *Event) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshal event: %w", err)
	}
	parsed, err := ParseEvent(s)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
