package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	// Header with assertion type
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	// Full trace for context
	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		marker := ""
		if event.Canceled {
			marker = " (canceled)"
		}
		fmt.Fprintf(&buf, "  [%d] %s %s %s: %s%s\n",
			event.Seq, event.Command, event.Event, event.Tag, event.Registration, marker)
	}

	return buf.String()
}

// matchesFiring reports whether a trace event satisfies the assertion's
// registration/event/command filters.
func matchesFiring(event TraceEvent, a Assertion) bool {
	if event.Registration != a.Registration {
		return false
	}
	if a.Event != "" && event.Event != a.Event {
		return false
	}
	if a.Command != "" && event.Command != a.Command {
		return false
	}
	return true
}

// assertFired checks that the trace contains a firing of the given
// registration, optionally restricted to one event and command.
func assertFired(trace []TraceEvent, a Assertion) error {
	for _, event := range trace {
		if matchesFiring(event, a) {
			return nil
		}
	}

	expected := fmt.Sprintf("registration %s fired", a.Registration)
	if a.Event != "" {
		expected += fmt.Sprintf(" at %s", a.Event)
	}
	if a.Command != "" {
		expected += fmt.Sprintf(" for command %s", a.Command)
	}
	return &AssertionError{
		Type:     AssertFired,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertOrder checks that registrations first fire in the given order.
// Firings don't need to be consecutive (intervening firings are allowed).
func assertOrder(trace []TraceEvent, a Assertion) error {
	// Step 1: Find first position of each expected registration
	positions := make(map[string]int)

	for i, event := range trace {
		for _, name := range a.Registrations {
			if event.Registration == name && positions[name] == 0 {
				positions[name] = i + 1 // 1-indexed for readability
			}
		}
	}

	// Step 2: Verify all registrations found
	for _, name := range a.Registrations {
		if positions[name] == 0 {
			return &AssertionError{
				Type:     AssertOrder,
				Expected: fmt.Sprintf("all registrations present: %v", a.Registrations),
				Actual:   fmt.Sprintf("missing registration: %s", name),
				Trace:    trace,
			}
		}
	}

	// Step 3: Verify order
	for i := 1; i < len(a.Registrations); i++ {
		prev := a.Registrations[i-1]
		curr := a.Registrations[i]

		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertOrder,
				Expected: fmt.Sprintf("registrations in order: %v", a.Registrations),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertCount checks that the registration fired exactly the specified
// number of times.
func assertCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if matchesFiring(event, a) {
			count++
		}
	}

	if count != a.Count {
		expected := fmt.Sprintf("%d firing(s) of %s", a.Count, a.Registration)
		if a.Event != "" {
			expected += fmt.Sprintf(" at %s", a.Event)
		}
		return &AssertionError{
			Type:     AssertCount,
			Expected: expected,
			Actual:   fmt.Sprintf("%d firing(s)", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertStatus checks a command's end state, and its veto reason when
// one is expected.
func assertStatus(result *Result, a Assertion) error {
	outcome := result.Outcome(a.Command)
	if outcome == nil {
		return &AssertionError{
			Type:     AssertStatus,
			Expected: fmt.Sprintf("command %s in outcomes", a.Command),
			Actual:   fmt.Sprintf("no outcome recorded; have %s", outcomeLabels(result)),
			Trace:    result.Trace,
		}
	}

	if outcome.Status != a.Status {
		actual := outcome.Status
		if outcome.Reason != "" {
			actual += fmt.Sprintf(" (reason: %s)", outcome.Reason)
		}
		if outcome.Error != "" {
			actual += fmt.Sprintf(" (error: %s)", outcome.Error)
		}
		return &AssertionError{
			Type:     AssertStatus,
			Expected: fmt.Sprintf("command %s %s", a.Command, a.Status),
			Actual:   actual,
			Trace:    result.Trace,
		}
	}

	if a.Reason != "" && outcome.Reason != a.Reason {
		return &AssertionError{
			Type:     AssertStatus,
			Expected: fmt.Sprintf("command %s canceled with reason %q", a.Command, a.Reason),
			Actual:   fmt.Sprintf("reason %q", outcome.Reason),
			Trace:    result.Trace,
		}
	}

	return nil
}

// assertText checks a command's normalized text for a fragment.
func assertText(result *Result, a Assertion) error {
	outcome := result.Outcome(a.Command)
	if outcome == nil {
		return &AssertionError{
			Type:     AssertText,
			Expected: fmt.Sprintf("command %s in outcomes", a.Command),
			Actual:   fmt.Sprintf("no outcome recorded; have %s", outcomeLabels(result)),
			Trace:    result.Trace,
		}
	}

	if outcome.Text == "" {
		return &AssertionError{
			Type:     AssertText,
			Expected: fmt.Sprintf("command %s text containing %q", a.Command, a.Contains),
			Actual:   "no normalized text (deparse not available for this shape)",
			Trace:    result.Trace,
		}
	}

	if !strings.Contains(outcome.Text, a.Contains) {
		return &AssertionError{
			Type:     AssertText,
			Expected: fmt.Sprintf("text containing %q", a.Contains),
			Actual:   outcome.Text,
			Trace:    result.Trace,
		}
	}

	return nil
}

// outcomeLabels lists the command labels with recorded outcomes.
func outcomeLabels(result *Result) string {
	if len(result.Outcomes) == 0 {
		return "(none)"
	}
	labels := make([]string, len(result.Outcomes))
	for i, outcome := range result.Outcomes {
		labels[i] = outcome.Command
	}
	return strings.Join(labels, ", ")
}

// EvaluateAssertions evaluates all expect clauses against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertFired:
			err = assertFired(result.Trace, assertion)
		case AssertOrder:
			err = assertOrder(result.Trace, assertion)
		case AssertCount:
			err = assertCount(result.Trace, assertion)
		case AssertStatus:
			err = assertStatus(result, assertion)
		case AssertText:
			err = assertText(result, assertion)
		default:
			err = fmt.Errorf("expect[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
