package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heeddb/heed/internal/catalog"
	"github.com/heeddb/heed/internal/ddl"
	"github.com/heeddb/heed/internal/deparse"
	"github.com/heeddb/heed/internal/exprtext"
	"github.com/heeddb/heed/internal/trigger"
)

// Engine drives callback dispatch for one session's command stream.
//
// The host walks each command through the lifecycle:
//
//	run, err := engine.BeginCommand(ctx, node)
//	if err != nil { ... }
//	defer engine.FinishCommand(run)
//	for _, event := range trigger.Events() {
//	    if err := engine.Fire(ctx, run, event); err != nil { ... }
//	}
//
// BeginCommand classifies once; Fire deparses at most once per run and
// invokes matching callbacks in name order, recording every invocation
// in the firing log. A CanceledError from Fire means the host must
// abort the command; FinishCommand still runs.
//
// Not safe for concurrent use; an engine belongs to one session.
type Engine struct {
	store   *catalog.Store
	cache   *Cache
	runtime trigger.CallbackRuntime

	deparser *deparse.Deparser
	clock    *Clock
	ids      CommandIDGenerator
	guard    *DepthGuard
	logger   *slog.Logger

	maxDepth   int
	searchPath []string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMaxDepth sets the command nesting-depth limit.
// Default: DefaultMaxDepth.
func WithMaxDepth(max int) EngineOption {
	return func(e *Engine) {
		e.maxDepth = max
	}
}

// WithSearchPath sets the schema search path the engine's deparser
// resolves unqualified relation names against. Default: empty, names
// render as written.
func WithSearchPath(path ...string) EngineOption {
	return func(e *Engine) {
		e.searchPath = path
	}
}

// WithClock sets the logical clock. Used to resume seq numbering after
// loading an existing firing log.
func WithClock(clock *Clock) EngineOption {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithCommandIDs sets the command ID generator. Tests install a fixed
// generator for stable IDs.
func WithCommandIDs(ids CommandIDGenerator) EngineOption {
	return func(e *Engine) {
		e.ids = ids
	}
}

// WithLogger sets the engine's logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine over the catalog store, a dispatch
// cache, and a callback runtime.
func NewEngine(store *catalog.Store, cache *Cache, runtime trigger.CallbackRuntime, opts ...EngineOption) *Engine {
	e := &Engine{
		store:    store,
		cache:    cache,
		runtime:  runtime,
		clock:    NewClock(),
		ids:      UUIDv7Generator{},
		logger:   slog.Default(),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.guard = NewDepthGuard(e.maxDepth)
	e.deparser = deparse.New(exprtext.NewRenderer(), e.searchPath)

	return e
}

// BeginCommand opens a run for a command about to execute.
//
// The node is classified exactly once. A node outside the taxonomy
// yields a run that fires nothing, not an error; the host executes
// the command as usual. A command nesting deeper than the limit is
// refused with DepthExceededError before anything fires.
func (e *Engine) BeginCommand(ctx context.Context, node ddl.Node) (*CommandRun, error) {
	id := e.ids.Generate()

	if err := e.guard.Enter(id); err != nil {
		e.logger.Error("command refused",
			slog.String("command_id", id),
			slog.Int("limit", e.guard.Max()),
		)
		return nil, err
	}

	run := &CommandRun{ID: id, Node: node}

	tag, err := ddl.Classify(node)
	switch {
	case err == nil:
		run.Tag = tag
		run.supported = true
		e.logger.Debug("command classified",
			slog.String("command_id", id),
			slog.String("tag", tag.String()),
			slog.Int("depth", e.guard.Depth()),
		)
	case errors.Is(err, ddl.ErrUnsupportedCommand):
		e.logger.Debug("command outside taxonomy, fires nothing",
			slog.String("command_id", id),
		)
	default:
		e.guard.Leave()
		return nil, fmt.Errorf("classify command %s: %w", id, err)
	}

	return run, nil
}

// Fire dispatches one lifecycle event for the run.
//
// Matching callbacks fire in registration-name order. The first veto
// from a cancel-capable callback at a before-class event stops the
// event and returns CanceledError. A failing callback stops the event
// and returns FiringError. Every invocation, including the vetoing or
// failing one, lands in the firing log.
func (e *Engine) Fire(ctx context.Context, run *CommandRun, event trigger.Event) error {
	if !run.supported {
		return nil
	}

	entries, err := e.cache.Lookup(ctx, event, run.Tag)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	result, err := e.deparseOnce(run)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := e.invoke(ctx, run, event, entry, result); err != nil {
			return err
		}
	}

	return nil
}

// FinishCommand releases the run's nesting slot. Safe to call with a
// nil run and safe to call twice; only the first call releases.
func (e *Engine) FinishCommand(run *CommandRun) {
	if run == nil || run.finished {
		return
	}
	run.finished = true
	e.guard.Leave()
}

// deparseOnce memoizes the command's deparse across events.
func (e *Engine) deparseOnce(run *CommandRun) (deparse.Result, error) {
	if run.deparsed {
		return run.result, nil
	}

	result, err := e.deparser.Deparse(run.Node)
	if err != nil {
		return deparse.Result{}, fmt.Errorf("deparse command %s: %w", run.ID, err)
	}

	run.result = result
	run.deparsed = true
	return result, nil
}

// invoke runs one callback and records its firing.
func (e *Engine) invoke(ctx context.Context, run *CommandRun, event trigger.Event, entry Entry, result deparse.Result) error {
	seq := e.clock.Next()

	payload := trigger.Payload{
		Event:       event,
		Tag:         run.Tag.String(),
		SchemaName:  result.SchemaName,
		ObjectName:  result.ObjectName,
		CommandText: result.Text,
		Node:        run.Node,
		Timing:      entry.Timing,
		CommandID:   run.ID,
		Seq:         seq,
	}

	signal, invokeErr := e.runtime.Invoke(ctx, entry.CallbackID, payload)

	// A veto only takes effect from a cancel-capable timing at a
	// before-class event, and only if the callback itself succeeded.
	canceled := invokeErr == nil && signal != nil &&
		entry.Timing.CanCancel() && event.Class() == trigger.EventClassBefore

	firing := trigger.Firing{
		CommandID:    run.ID,
		Event:        event,
		Tag:          run.Tag.String(),
		Registration: entry.Name,
		CallbackID:   entry.CallbackID,
		SchemaName:   result.SchemaName,
		ObjectName:   result.ObjectName,
		Canceled:     canceled,
		Seq:          seq,
	}
	if _, err := e.store.AppendFiring(ctx, firing); err != nil {
		return fmt.Errorf("record firing of registration %q: %w", entry.Name, err)
	}

	if invokeErr != nil {
		e.logger.Error("callback failed",
			slog.String("command_id", run.ID),
			slog.String("registration", entry.Name),
			slog.String("callback_id", entry.CallbackID),
			slog.String("event", event.String()),
		)
		return &FiringError{
			Event:        event,
			Registration: entry.Name,
			CallbackID:   entry.CallbackID,
			Err:          invokeErr,
		}
	}

	if signal != nil {
		if canceled {
			e.logger.Info("command canceled",
				slog.String("command_id", run.ID),
				slog.String("registration", entry.Name),
				slog.String("event", event.String()),
				slog.String("reason", signal.Reason),
			)
			return &CanceledError{
				Event:        event,
				Registration: entry.Name,
				Reason:       signal.Reason,
			}
		}
		e.logger.Warn("cancel ignored",
			slog.String("command_id", run.ID),
			slog.String("registration", entry.Name),
			slog.String("event", event.String()),
			slog.String("timing", entry.Timing.String()),
			slog.String("reason", signal.Reason),
		)
	}

	return nil
}
