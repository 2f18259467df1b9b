package trigger

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Timing states when a registration's callback runs relative to the
// command at the events it subscribes to.
//
// Timing never affects firing order - callbacks always fire in global
// name order. It gates cancellation: only Before and InsteadOf callbacks
// may veto a command, and only at before-class events.
type Timing int

const (
	// TimingBefore runs the callback ahead of the command's effect.
	TimingBefore Timing = iota

	// TimingAfter runs the callback once the effect is in place.
	// After callbacks cannot veto.
	TimingAfter

	// TimingInsteadOf marks callbacks that substitute for the command.
	// Treated like Before for cancellation purposes.
	TimingInsteadOf
)

var timingTags = map[Timing]string{
	TimingBefore:    "before",
	TimingAfter:     "after",
	TimingInsteadOf: "instead_of",
}

// String returns the persisted tag for the timing.
func (t Timing) String() string {
	if s, ok := timingTags[t]; ok {
		return s
	}
	return fmt.Sprintf("timing(%d)", int(t))
}

// Valid reports whether t is a member of the closed timing set.
func (t Timing) Valid() bool {
	_, ok := timingTags[t]
	return ok
}

// CanCancel reports whether a callback with this timing may veto.
func (t Timing) CanCancel() bool {
	return t == TimingBefore || t == TimingInsteadOf
}

// ParseTiming resolves a timing tag case-insensitively.
func ParseTiming(s string) (Timing, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for t, tag := range timingTags {
		if tag == needle {
			return t, nil
		}
	}
	return 0, &ConfigError{
		Code:    ErrCodeTimingUnknown,
		Message: fmt.Sprintf("unrecognized timing %q", s),
		Value:   s,
	}
}

// MarshalJSON encodes the timing as its string tag.
func (t Timing) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("marshal timing: invalid value %d", int(t))
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a timing from its string tag (case-insensitive).
func (t *Timing) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshal timing: %w", err)
	}
	parsed, err := ParseTiming(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// EnabledState controls whether a registration participates in dispatch,
// optionally conditioned on the session replication role.
type EnabledState int

const (
	// EnabledAlways fires regardless of session role.
	EnabledAlways EnabledState = iota

	// EnabledOriginOnly fires only when the session role is origin.
	EnabledOriginOnly

	// EnabledReplicaOnly fires only when the session role is replica.
	EnabledReplicaOnly

	// EnabledDisabled never fires.
	EnabledDisabled
)

var enabledTags = map[EnabledState]string{
	EnabledAlways:      "always",
	EnabledOriginOnly:  "origin",
	EnabledReplicaOnly: "replica",
	EnabledDisabled:    "disabled",
}

// String returns the persisted tag for the enabled state.
func (s EnabledState) String() string {
	if tag, ok := enabledTags[s]; ok {
		return tag
	}
	return fmt.Sprintf("enabled(%d)", int(s))
}

// Valid reports whether s is a member of the closed enabled-state set.
func (s EnabledState) Valid() bool {
	_, ok := enabledTags[s]
	return ok
}

// ParseEnabled resolves an enabled-state tag case-insensitively.
func ParseEnabled(s string) (EnabledState, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for st, tag := range enabledTags {
		if tag == needle {
			return st, nil
		}
	}
	return 0, &ConfigError{
		Code:    ErrCodeEnabledUnknown,
		Message: fmt.Sprintf("unrecognized enabled state %q", s),
		Value:   s,
	}
}

// MarshalJSON encodes the enabled state as its string tag.
func (s EnabledState) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("marshal enabled state: invalid value %d", int(s))
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes an enabled state from its string tag.
func (s *EnabledState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("unmarshal enabled state: %w", err)
	}
	parsed, err := ParseEnabled(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Role is the replication role of the session doing the dispatching.
type Role int

const (
	// RoleOrigin is the ordinary read-write session role.
	RoleOrigin Role = iota

	// RoleReplica marks sessions applying replicated changes.
	RoleReplica
)

var roleTags = map[Role]string{
	RoleOrigin:  "origin",
	RoleReplica: "replica",
}

// String returns the tag for the role.
func (r Role) String() string {
	if s, ok := roleTags[r]; ok {
		return s
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole resolves a role tag case-insensitively.
func ParseRole(s string) (Role, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for r, tag := range roleTags {
		if tag == needle {
			return r, nil
		}
	}
	return 0, &ConfigError{
		Code:    ErrCodeRoleUnknown,
		Message: fmt.Sprintf("unrecognized session role %q", s),
		Value:   s,
	}
}

// ActiveFor reports whether a registration in state s participates in
// dispatch under the given session role.
func (s EnabledState) ActiveFor(role Role) bool {
	switch s {
	case EnabledAlways:
		return true
	case EnabledOriginOnly:
		return role == RoleOrigin
	case EnabledReplicaOnly:
		return role == RoleReplica
	default:
		return false
	}
}

// Registration is a named, persisted binding of a lifecycle event
// (plus an optional command-tag filter) to a callback.
//
// Names are case-sensitive and unique per event. A nil Tags slice means
// the registration is a wildcard and fires for every command tag at its
// event. Tags hold canonical tag strings; they are validated against the
// command taxonomy when a registration is created and re-checked during
// dispatch cache rebuild, so catalog drift is caught rather than
// silently dispatched.
//
// The catalog store owns registrations exclusively; the dispatch cache
// only ever reads snapshots.
type Registration struct {
	// ID is the store rowid. Zero until inserted.
	ID int64 `json:"id,omitempty"`

	// Name identifies the registration within its event.
	Name string `json:"name"`

	// Event is the lifecycle point the registration subscribes to.
	Event Event `json:"event"`

	// Timing states when the callback runs relative to the command.
	Timing Timing `json:"timing"`

	// Enabled controls participation, optionally by session role.
	Enabled EnabledState `json:"enabled"`

	// CallbackID references the callback in the execution runtime.
	CallbackID string `json:"callback_id"`

	// Tags is the optional command-tag filter (canonical strings).
	// nil means wildcard.
	Tags []string `json:"tags,omitempty"`
}

// Wildcard reports whether the registration fires for every command tag.
func (r Registration) Wildcard() bool {
	return len(r.Tags) == 0
}

// Validate checks the registration against structural rules.
// Returns all errors, not fail-fast. Taxonomy membership of Tags is
// checked by callers that can see the taxonomy (manifest compiler,
// dispatch cache rebuild).
func (r Registration) Validate() []ValidationError {
	var errs []ValidationError

	if r.Name == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if strings.ContainsRune(r.Name, 0) {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "name must not contain NUL",
		})
	}
	if !r.Event.Valid() {
		errs = append(errs, ValidationError{
			Field:   "event",
			Message: fmt.Sprintf("invalid event %d", int(r.Event)),
		})
	}
	if !r.Timing.Valid() {
		errs = append(errs, ValidationError{
			Field:   "timing",
			Message: fmt.Sprintf("invalid timing %d", int(r.Timing)),
		})
	}
	if !r.Enabled.Valid() {
		errs = append(errs, ValidationError{
			Field:   "enabled",
			Message: fmt.Sprintf("invalid enabled state %d", int(r.Enabled)),
		})
	}
	if r.CallbackID == "" {
		errs = append(errs, ValidationError{
			Field:   "callback_id",
			Message: "callback reference is required",
		})
	}

	seen := make(map[string]bool, len(r.Tags))
	for i, tag := range r.Tags {
		if tag == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("tags[%d]", i),
				Message: "empty tag",
			})
			continue
		}
		if seen[tag] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("tags[%d]", i),
				Message: fmt.Sprintf("duplicate tag %q", tag),
			})
		}
		seen[tag] = true
	}

	return errs
}
