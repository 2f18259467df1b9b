package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/heeddb/heed/internal/catalog"
	"github.com/heeddb/heed/internal/ddl"
	"github.com/heeddb/heed/internal/deparse"
	"github.com/heeddb/heed/internal/dispatch"
	"github.com/heeddb/heed/internal/exprtext"
	"github.com/heeddb/heed/internal/testutil"
	"github.com/heeddb/heed/internal/trigger"
)

// Harness is the scenario execution engine.
// It runs commands against a real dispatch engine with scripted
// callbacks and deterministic IDs.
type Harness struct {
	store    *catalog.Store
	engine   *dispatch.Engine
	runtime  *testutil.ScriptedRuntime
	deparser *deparse.Deparser
	labels   map[string]string // command ID -> scenario label
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory catalog for isolation.
//
// Execution flow:
//  1. Open an in-memory catalog and apply the registrations
//  2. Script the callback runtime from the cancel/fail sections
//  3. Walk each command through classify, fire, finish
//  4. Read the trace back from the firing log
//  5. Evaluate the expect clauses
func Run(scenario *Scenario) (*Result, error) {
	st, err := catalog.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory catalog: %w", err)
	}
	defer st.Close()

	ctx := context.Background()

	regs, err := buildRegistrations(scenario.Registrations)
	if err != nil {
		return nil, err
	}
	if len(regs) > 0 {
		if _, err := st.InsertBatch(ctx, regs); err != nil {
			return nil, fmt.Errorf("failed to apply registrations: %w", err)
		}
	}

	runtime := testutil.NewScriptedRuntime()
	for _, step := range scenario.Cancel {
		runtime.Cancel(step.Callback, step.Reason)
	}
	for _, step := range scenario.Fail {
		runtime.Fail(step.Callback, errors.New(step.Error))
	}

	role := trigger.RoleOrigin
	if scenario.Role != "" {
		role, err = trigger.ParseRole(scenario.Role)
		if err != nil {
			return nil, fmt.Errorf("invalid scenario role: %w", err)
		}
	}
	cache := dispatch.NewCache(st, dispatch.WithRole(role))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	opts := []dispatch.EngineOption{
		dispatch.WithCommandIDs(testutil.NewCommandIDSequence("cmd")),
		dispatch.WithSearchPath(scenario.SearchPath...),
		dispatch.WithLogger(logger),
	}
	if scenario.MaxDepth > 0 {
		opts = append(opts, dispatch.WithMaxDepth(scenario.MaxDepth))
	}

	h := &Harness{
		store:    st,
		engine:   dispatch.NewEngine(st, cache, runtime, opts...),
		runtime:  runtime,
		deparser: deparse.New(exprtext.NewRenderer(), scenario.SearchPath),
		labels:   make(map[string]string),
		logger:   logger,
	}

	result := NewResult()
	for i, step := range scenario.Commands {
		if err := h.executeCommand(ctx, step, defaultLabel("commands", i, step.Label), result); err != nil {
			return nil, err
		}
	}

	if err := h.collectTrace(ctx, result); err != nil {
		return nil, err
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Expect) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeCommand walks one command through the lifecycle, recursing
// into nested commands between the before-class events and
// command_end. The parent stays on the depth stack while its children
// run, which is what the quota counts.
func (h *Harness) executeCommand(ctx context.Context, step CommandStep, label string, result *Result) error {
	node, err := decodeNode(step.Node)
	if err != nil {
		return fmt.Errorf("command %s: %w", label, err)
	}

	run, err := h.engine.BeginCommand(ctx, node)
	if err != nil {
		if dispatch.IsDepthExceeded(err) {
			result.Outcomes = append(result.Outcomes, CommandOutcome{
				Command: label,
				Status:  StatusRefused,
				Error:   err.Error(),
			})
			return nil
		}
		return fmt.Errorf("command %s: %w", label, err)
	}
	defer h.engine.FinishCommand(run)

	h.labels[run.ID] = label

	outcome := CommandOutcome{Command: label, Status: StatusCompleted}
	if run.Supported() {
		outcome.Tag = run.Tag.String()
		if rendered, err := h.deparser.Deparse(node); err == nil && rendered.Available {
			outcome.Text = rendered.Text
		}
	}

	// A veto or failure aborts the command: later events do not fire
	// and nested commands never start.
	nestedRun := false
	for _, event := range trigger.Events() {
		// The command "executes" between the before-class events and
		// command_end; nested commands run there.
		if event.Class() == trigger.EventClassAfter && !nestedRun {
			nestedRun = true
			for i, nested := range step.Nested {
				if err := h.executeCommand(ctx, nested, defaultLabel(label+".nested", i, nested.Label), result); err != nil {
					return err
				}
			}
		}

		err := h.engine.Fire(ctx, run, event)
		if err == nil {
			continue
		}

		var canceled *dispatch.CanceledError
		if errors.As(err, &canceled) {
			outcome.Status = StatusCanceled
			outcome.Reason = canceled.Reason
			break
		}
		if dispatch.IsFiringError(err) {
			outcome.Status = StatusFailed
			outcome.Error = err.Error()
			break
		}
		return fmt.Errorf("command %s: fire %s: %w", label, event, err)
	}

	result.Outcomes = append(result.Outcomes, outcome)
	return nil
}

// collectTrace reads the firing log back into the result, attaching
// scenario command labels.
func (h *Harness) collectTrace(ctx context.Context, result *Result) error {
	firings, err := h.store.ListFirings(ctx, catalog.FiringQuery{})
	if err != nil {
		return fmt.Errorf("failed to read firing log: %w", err)
	}

	for _, firing := range firings {
		label := h.labels[firing.CommandID]
		if label == "" {
			label = firing.CommandID
		}
		result.Trace = append(result.Trace, TraceEvent{
			Seq:          firing.Seq,
			Command:      label,
			Event:        firing.Event.String(),
			Tag:          firing.Tag,
			Registration: firing.Registration,
			CallbackID:   firing.CallbackID,
			Canceled:     firing.Canceled,
		})
	}

	return nil
}

// buildRegistrations converts YAML registration steps into catalog
// registrations, applying the manifest defaults.
func buildRegistrations(steps []RegistrationStep) ([]trigger.Registration, error) {
	regs := make([]trigger.Registration, 0, len(steps))
	for i, step := range steps {
		reg := trigger.Registration{
			Name:       step.Name,
			Timing:     trigger.TimingAfter,
			Enabled:    trigger.EnabledAlways,
			CallbackID: step.Callback,
		}

		event, err := trigger.ParseEvent(step.Event)
		if err != nil {
			return nil, fmt.Errorf("registrations[%d]: %w", i, err)
		}
		reg.Event = event

		if step.Timing != "" {
			timing, err := trigger.ParseTiming(step.Timing)
			if err != nil {
				return nil, fmt.Errorf("registrations[%d]: %w", i, err)
			}
			reg.Timing = timing
		}

		if step.Enabled != "" {
			enabled, err := trigger.ParseEnabled(step.Enabled)
			if err != nil {
				return nil, fmt.Errorf("registrations[%d]: %w", i, err)
			}
			reg.Enabled = enabled
		}

		if len(step.Tags) > 0 {
			tags, err := ddl.NormalizeTags(step.Tags)
			if err != nil {
				return nil, fmt.Errorf("registrations[%d]: %w", i, err)
			}
			reg.Tags = tags
		}

		regs = append(regs, reg)
	}
	return regs, nil
}

// decodeNode round-trips a YAML node map through the strict JSON
// codec, so scenarios get the same envelope validation as the wire.
func decodeNode(node map[string]interface{}) (ddl.Node, error) {
	data, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("failed to encode node: %w", err)
	}
	decoded, err := ddl.DecodeNode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode node: %w", err)
	}
	return decoded, nil
}

// defaultLabel names an unlabeled command by its position.
func defaultLabel(prefix string, index int, label string) string {
	if label != "" {
		return label
	}
	return fmt.Sprintf("%s[%d]", prefix, index)
}
