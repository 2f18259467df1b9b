package harness

// TraceEvent is one callback invocation recorded during a scenario
// run. Events come from the firing log, so their order and seq values
// are exactly what a catalog audit would show.
type TraceEvent struct {
	Seq          int64  `json:"seq"`
	Command      string `json:"command"` // scenario-local command label
	Event        string `json:"event"`
	Tag          string `json:"tag"`
	Registration string `json:"registration"`
	CallbackID   string `json:"callback_id"`
	Canceled     bool   `json:"canceled,omitempty"`
}

// CommandOutcome records how one scenario command ended.
//
// Status is one of:
//   - "completed": the command ran its whole lifecycle
//   - "canceled":  a callback vetoed it at a before-class event
//   - "failed":    a callback returned an error
//   - "refused":   the nesting-depth limit rejected it before any event
type CommandOutcome struct {
	Command string `json:"command"`
	Tag     string `json:"tag,omitempty"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"` // veto reason when canceled
	Error   string `json:"error,omitempty"`  // callback error when failed
	Text    string `json:"text,omitempty"`   // normalized command text when available
}

// Command status constants.
const (
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
	StatusFailed    = "failed"
	StatusRefused   = "refused"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if all expect clauses match.
	Pass bool `json:"pass"`

	// Trace contains every callback invocation in firing order.
	Trace []TraceEvent `json:"trace"`

	// Outcomes contains the end state of each command, in scenario
	// order, including nested commands.
	Outcomes []CommandOutcome `json:"outcomes"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Trace:    []TraceEvent{},
		Outcomes: []CommandOutcome{},
		Errors:   []string{},
	}
}

// AddError adds an assertion error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Outcome returns the outcome recorded for a command label, or nil.
func (r *Result) Outcome(command string) *CommandOutcome {
	for i := range r.Outcomes {
		if r.Outcomes[i].Command == command {
			return &r.Outcomes[i]
		}
	}
	return nil
}
