package testutil

import (
	"context"
	"sync"

	"github.com/heeddb/heed/internal/trigger"
)

// ScriptedRuntime is a callback runtime for tests.
//
// Every callback proceeds by default. Tests script deviations per
// callback ID: Cancel makes a callback return a veto signal, Fail
// makes it return an error. Every invocation is recorded in order
// with its full payload, so tests can assert on exactly what the
// engine delivered.
//
// Implements trigger.CallbackRuntime.
//
// Thread-safety: safe for concurrent use via internal mutex, though
// the engine invokes sequentially.
type ScriptedRuntime struct {
	mu       sync.Mutex
	cancels  map[string]string
	failures map[string]error
	payloads []trigger.Payload
}

// NewScriptedRuntime creates a runtime where every callback proceeds.
func NewScriptedRuntime() *ScriptedRuntime {
	return &ScriptedRuntime{
		cancels:  make(map[string]string),
		failures: make(map[string]error),
	}
}

// Cancel scripts a callback to return a veto signal with the given
// reason on every invocation.
func (r *ScriptedRuntime) Cancel(callbackID, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancels[callbackID] = reason
}

// Fail scripts a callback to return an error on every invocation.
func (r *ScriptedRuntime) Fail(callbackID string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[callbackID] = err
}

// Invoke records the payload and plays back the scripted behavior.
func (r *ScriptedRuntime) Invoke(ctx context.Context, callbackID string, payload trigger.Payload) (*trigger.CancelSignal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.payloads = append(r.payloads, payload)

	if err, ok := r.failures[callbackID]; ok {
		return nil, err
	}
	if reason, ok := r.cancels[callbackID]; ok {
		return &trigger.CancelSignal{Reason: reason}, nil
	}
	return nil, nil
}

// Invocations returns a copy of every recorded payload, in invocation
// order.
func (r *ScriptedRuntime) Invocations() []trigger.Payload {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]trigger.Payload, len(r.payloads))
	copy(out, r.payloads)
	return out
}

// Reset clears the recorded payloads. Scripted behaviors stay.
func (r *ScriptedRuntime) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = nil
}
