package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a dispatch conformance scenario.
// Scenarios register callbacks against a fresh catalog, walk a list of
// commands through the full lifecycle, and assert on the resulting
// firing trace and command outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Role is the session replication role ("origin" or "replica").
	// Defaults to origin.
	Role string `yaml:"role,omitempty"`

	// SearchPath resolves unqualified relation names during deparse.
	SearchPath []string `yaml:"search_path,omitempty"`

	// MaxDepth overrides the command nesting-depth limit.
	// Zero keeps the engine default.
	MaxDepth int `yaml:"max_depth,omitempty"`

	// Registrations are applied to the catalog before any command runs.
	Registrations []RegistrationStep `yaml:"registrations,omitempty"`

	// Cancel scripts callbacks to veto every command they see.
	Cancel []CancelStep `yaml:"cancel,omitempty"`

	// Fail scripts callbacks to error on every invocation.
	Fail []FailStep `yaml:"fail,omitempty"`

	// Commands are walked through the lifecycle in order.
	Commands []CommandStep `yaml:"commands"`

	// Expect validates the final trace and command outcomes.
	// Supported types: fired, order, count, status, text
	Expect []Assertion `yaml:"expect"`
}

// RegistrationStep is one catalog registration in YAML form.
// Timing defaults to "after" and enabled to "always", mirroring the
// manifest defaults.
type RegistrationStep struct {
	Name     string   `yaml:"name"`
	Event    string   `yaml:"event"`
	Timing   string   `yaml:"timing,omitempty"`
	Enabled  string   `yaml:"enabled,omitempty"`
	Callback string   `yaml:"callback"`
	Tags     []string `yaml:"tags,omitempty"`
}

// CancelStep scripts a veto for a callback.
type CancelStep struct {
	Callback string `yaml:"callback"`
	Reason   string `yaml:"reason"`
}

// FailStep scripts a failure for a callback.
type FailStep struct {
	Callback string `yaml:"callback"`
	Error    string `yaml:"error"`
}

// CommandStep is one command walked through the lifecycle.
//
// Node holds the command's JSON envelope as a YAML map; it is
// round-tripped through the strict node codec, so unknown fields and
// floats are rejected the same way they would be on the wire. Nested
// commands execute inside their parent, between the before-class
// events and command_end, which is how the depth quota is exercised.
type CommandStep struct {
	// Label names the command for assertions and the trace.
	// Defaults to "commands[i]" by position.
	Label string `yaml:"label,omitempty"`

	// Node is the command's structured form.
	Node map[string]interface{} `yaml:"node"`

	// Nested commands run inside this one.
	Nested []CommandStep `yaml:"nested,omitempty"`
}

// Assertion validates the trace or a command outcome.
type Assertion struct {
	// Type specifies the assertion type:
	// - "fired": a registration appears in the trace
	// - "order": registrations first fire in the given order
	// - "count": a registration fires exactly N times
	// - "status": a command ended with the given status
	// - "text": a command's normalized text contains a substring
	Type string `yaml:"type"`

	// Registration names the registration (fired, count).
	Registration string `yaml:"registration,omitempty"`

	// Registrations is the expected firing order (order).
	Registrations []string `yaml:"registrations,omitempty"`

	// Event restricts fired/count matching to one lifecycle event.
	Event string `yaml:"event,omitempty"`

	// Command is the command label (fired, status, text).
	Command string `yaml:"command,omitempty"`

	// Count is the expected number of firings (count).
	Count int `yaml:"count,omitempty"`

	// Status is the expected command status (status).
	Status string `yaml:"status,omitempty"`

	// Reason is the expected veto reason (status, optional).
	Reason string `yaml:"reason,omitempty"`

	// Contains is the expected text fragment (text).
	Contains string `yaml:"contains,omitempty"`
}

// Assertion type constants.
const (
	AssertFired  = "fired"
	AssertOrder  = "order"
	AssertCount  = "count"
	AssertStatus = "status"
	AssertText   = "text"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "expects:" vs "expect:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Commands) == 0 {
		return fmt.Errorf("commands list is required and must be non-empty")
	}

	if len(s.Expect) == 0 {
		return fmt.Errorf("expect list is required and must be non-empty")
	}

	if s.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be non-negative")
	}

	for i, reg := range s.Registrations {
		if reg.Name == "" {
			return fmt.Errorf("registrations[%d]: name is required", i)
		}
		if reg.Event == "" {
			return fmt.Errorf("registrations[%d]: event is required", i)
		}
		if reg.Callback == "" {
			return fmt.Errorf("registrations[%d]: callback is required", i)
		}
	}

	for i, step := range s.Cancel {
		if step.Callback == "" {
			return fmt.Errorf("cancel[%d]: callback is required", i)
		}
		if step.Reason == "" {
			return fmt.Errorf("cancel[%d]: reason is required", i)
		}
	}

	for i, step := range s.Fail {
		if step.Callback == "" {
			return fmt.Errorf("fail[%d]: callback is required", i)
		}
		if step.Error == "" {
			return fmt.Errorf("fail[%d]: error is required", i)
		}
	}

	if err := validateCommands("commands", s.Commands); err != nil {
		return err
	}

	for i, assertion := range s.Expect {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateCommands validates command steps recursively.
func validateCommands(path string, commands []CommandStep) error {
	for i, step := range commands {
		at := fmt.Sprintf("%s[%d]", path, i)
		if len(step.Node) == 0 {
			return fmt.Errorf("%s: node is required", at)
		}
		if err := validateCommands(at+".nested", step.Nested); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("expect[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFired:
		if a.Registration == "" {
			return fmt.Errorf("expect[%d]: registration is required for fired", index)
		}
	case AssertOrder:
		if len(a.Registrations) < 2 {
			return fmt.Errorf("expect[%d]: at least two registrations are required for order", index)
		}
	case AssertCount:
		if a.Registration == "" {
			return fmt.Errorf("expect[%d]: registration is required for count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("expect[%d]: count must be non-negative", index)
		}
	case AssertStatus:
		if a.Command == "" {
			return fmt.Errorf("expect[%d]: command is required for status", index)
		}
		if a.Status == "" {
			return fmt.Errorf("expect[%d]: status is required for status", index)
		}
		switch a.Status {
		case StatusCompleted, StatusCanceled, StatusFailed, StatusRefused:
		default:
			return fmt.Errorf("expect[%d]: unknown status %q", index, a.Status)
		}
	case AssertText:
		if a.Command == "" {
			return fmt.Errorf("expect[%d]: command is required for text", index)
		}
		if a.Contains == "" {
			return fmt.Errorf("expect[%d]: contains is required for text", index)
		}
	default:
		return fmt.Errorf("expect[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
