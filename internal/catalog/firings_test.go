package catalog

import (
	"context"
	"testing"

	"github.com/heeddb/heed/internal/trigger"
)

func TestAppendFiring_Basic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	firing := createTestFiring("cmd-1", "audit_ddl", 7)
	firing.Canceled = true

	id, err := s.AppendFiring(ctx, firing)
	if err != nil {
		t.Fatalf("AppendFiring() failed: %v", err)
	}

	want := trigger.MustFiringID("cmd-1", trigger.EventCommandEnd, "CREATE TABLE", "audit_ddl", "cb-audit_ddl", 7)
	if id != want {
		t.Errorf("firing ID = %q, want content-addressed %q", id, want)
	}

	firings, err := s.ListFirings(ctx, FiringQuery{CommandID: "cmd-1"})
	if err != nil {
		t.Fatalf("ListFirings() failed: %v", err)
	}
	if len(firings) != 1 {
		t.Fatalf("got %d firings, want 1", len(firings))
	}

	got := firings[0]
	if got.ID != id {
		t.Errorf("ID = %q, want %q", got.ID, id)
	}
	if got.Event != trigger.EventCommandEnd {
		t.Errorf("Event = %v, want EventCommandEnd", got.Event)
	}
	if got.Tag != "CREATE TABLE" {
		t.Errorf("Tag = %q, want %q", got.Tag, "CREATE TABLE")
	}
	if got.SchemaName != "app" || got.ObjectName != "orders" {
		t.Errorf("object = %q.%q, want app.orders", got.SchemaName, got.ObjectName)
	}
	if !got.Canceled {
		t.Error("Canceled = false, want true")
	}
	if got.Seq != 7 {
		t.Errorf("Seq = %d, want 7", got.Seq)
	}
}

func TestAppendFiring_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	firing := createTestFiring("cmd-1", "audit_ddl", 7)

	id1, err := s.AppendFiring(ctx, firing)
	if err != nil {
		t.Fatalf("first AppendFiring() failed: %v", err)
	}
	id2, err := s.AppendFiring(ctx, firing)
	if err != nil {
		t.Fatalf("second AppendFiring() failed: %v", err)
	}
	if id1 != id2 {
		t.Errorf("IDs differ across appends: %q vs %q", id1, id2)
	}

	firings, err := s.ListFirings(ctx, FiringQuery{CommandID: "cmd-1"})
	if err != nil {
		t.Fatalf("ListFirings() failed: %v", err)
	}
	if len(firings) != 1 {
		t.Errorf("got %d firings after double append, want 1", len(firings))
	}
}

func TestListFirings_SeqOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Appended out of order; reads come back in seq order
	for _, seq := range []int64{5, 2, 9} {
		if _, err := s.AppendFiring(ctx, createTestFiring("cmd-1", "reg", seq)); err != nil {
			t.Fatalf("AppendFiring(seq=%d) failed: %v", seq, err)
		}
	}
	if _, err := s.AppendFiring(ctx, createTestFiring("cmd-other", "reg", 3)); err != nil {
		t.Fatalf("AppendFiring(cmd-other) failed: %v", err)
	}

	firings, err := s.ListFirings(ctx, FiringQuery{CommandID: "cmd-1"})
	if err != nil {
		t.Fatalf("ListFirings() failed: %v", err)
	}

	want := []int64{2, 5, 9}
	if len(firings) != len(want) {
		t.Fatalf("got %d firings, want %d", len(firings), len(want))
	}
	for i, seq := range want {
		if firings[i].Seq != seq {
			t.Errorf("firings[%d].Seq = %d, want %d", i, firings[i].Seq, seq)
		}
		if firings[i].CommandID != "cmd-1" {
			t.Errorf("firings[%d].CommandID = %q, want cmd-1", i, firings[i].CommandID)
		}
	}
}

func TestListFirings_EventFilter(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	early := createTestFiring("cmd-1", "reg", 1)
	early.Event = trigger.EventCommandStart
	if _, err := s.AppendFiring(ctx, early); err != nil {
		t.Fatalf("AppendFiring(start) failed: %v", err)
	}
	if _, err := s.AppendFiring(ctx, createTestFiring("cmd-1", "reg", 2)); err != nil {
		t.Fatalf("AppendFiring(end) failed: %v", err)
	}

	firings, err := s.ListFirings(ctx, FiringQuery{Event: "command_start"})
	if err != nil {
		t.Fatalf("ListFirings() failed: %v", err)
	}
	if len(firings) != 1 || firings[0].Event != trigger.EventCommandStart {
		t.Errorf("got %v, want only the command_start firing", firings)
	}
}

func TestListFirings_UnknownEvent(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ListFirings(context.Background(), FiringQuery{Event: "bogus"})
	if !trigger.ConfigErrorHasCode(err, trigger.ErrCodeEventUnknown) {
		t.Errorf("expected EVENT_UNKNOWN error, got %v", err)
	}
}

func TestListFirings_Limit(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for seq := int64(1); seq <= 5; seq++ {
		if _, err := s.AppendFiring(ctx, createTestFiring("cmd-1", "reg", seq)); err != nil {
			t.Fatalf("AppendFiring(seq=%d) failed: %v", seq, err)
		}
	}

	firings, err := s.ListFirings(ctx, FiringQuery{Limit: 3})
	if err != nil {
		t.Fatalf("ListFirings() failed: %v", err)
	}

	want := []int64{1, 2, 3}
	if len(firings) != len(want) {
		t.Fatalf("got %d firings, want %d", len(firings), len(want))
	}
	for i, seq := range want {
		if firings[i].Seq != seq {
			t.Errorf("firings[%d].Seq = %d, want %d", i, firings[i].Seq, seq)
		}
	}
}

func TestListFirings_Empty(t *testing.T) {
	s := createTestStore(t)

	firings, err := s.ListFirings(context.Background(), FiringQuery{CommandID: "no-such-command"})
	if err != nil {
		t.Fatalf("ListFirings() failed: %v", err)
	}
	if firings == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(firings) != 0 {
		t.Errorf("expected no firings, got %d", len(firings))
	}
}

func TestSubscribe_FiringsDoNotNotify(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	var calls int
	s.Subscribe(func() { calls++ })

	if _, err := s.AppendFiring(ctx, createTestFiring("cmd-1", "reg", 1)); err != nil {
		t.Fatalf("AppendFiring() failed: %v", err)
	}

	// Only registration mutations invalidate dispatch state
	if calls != 0 {
		t.Errorf("firing appends must not notify, calls = %d", calls)
	}
}
