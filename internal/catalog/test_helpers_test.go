package catalog

import (
	"path/filepath"
	"testing"

	"github.com/heeddb/heed/internal/trigger"
)

// createTestStore creates a fresh on-disk store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRegistration builds a registration with minimal required fields.
func createTestRegistration(name string, event trigger.Event, tags ...string) trigger.Registration {
	return trigger.Registration{
		Name:       name,
		Event:      event,
		Timing:     trigger.TimingAfter,
		Enabled:    trigger.EnabledAlways,
		CallbackID: "cb-" + name,
		Tags:       tags,
	}
}

// createTestFiring builds a firing with minimal required fields.
func createTestFiring(commandID, registration string, seq int64) trigger.Firing {
	return trigger.Firing{
		CommandID:    commandID,
		Event:        trigger.EventCommandEnd,
		Tag:          "CREATE TABLE",
		Registration: registration,
		CallbackID:   "cb-" + registration,
		SchemaName:   "app",
		ObjectName:   "orders",
		Seq:          seq,
	}
}
