package catalog

import (
	"context"
	"testing"

	"github.com/heeddb/heed/internal/trigger"
)

func TestInsert_Basic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	reg := createTestRegistration("audit_ddl", trigger.EventCommandEnd, "CREATE TABLE", "DROP TABLE")

	id, err := s.Insert(ctx, reg)
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("expected positive rowid, got %d", id)
	}

	got, err := s.GetByEventAndName(ctx, trigger.EventCommandEnd, "audit_ddl")
	if err != nil {
		t.Fatalf("GetByEventAndName() failed: %v", err)
	}
	if got.ID != id {
		t.Errorf("ID = %d, want %d", got.ID, id)
	}
	if got.Name != reg.Name {
		t.Errorf("Name = %q, want %q", got.Name, reg.Name)
	}
	if got.Event != reg.Event {
		t.Errorf("Event = %v, want %v", got.Event, reg.Event)
	}
	if got.Timing != reg.Timing {
		t.Errorf("Timing = %v, want %v", got.Timing, reg.Timing)
	}
	if got.Enabled != reg.Enabled {
		t.Errorf("Enabled = %v, want %v", got.Enabled, reg.Enabled)
	}
	if got.CallbackID != reg.CallbackID {
		t.Errorf("CallbackID = %q, want %q", got.CallbackID, reg.CallbackID)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "CREATE TABLE" || got.Tags[1] != "DROP TABLE" {
		t.Errorf("Tags = %v, want [CREATE TABLE DROP TABLE]", got.Tags)
	}
}

func TestInsert_CanonicalTagsJSON(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	reg := createTestRegistration("filtered", trigger.EventCommandEnd, "DROP TABLE", "CREATE TABLE")
	if _, err := s.Insert(ctx, reg); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	var tagsJSON string
	err := s.db.QueryRow(`
		SELECT tags FROM registrations WHERE name = ?
	`, "filtered").Scan(&tagsJSON)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	// Canonical JSON: no whitespace, array order preserved
	expected := `["DROP TABLE","CREATE TABLE"]`
	if tagsJSON != expected {
		t.Errorf("tags JSON = %q, want %q", tagsJSON, expected)
	}
}

func TestInsert_WildcardStoresNull(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	reg := createTestRegistration("wildcard", trigger.EventCommandStart)
	if _, err := s.Insert(ctx, reg); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM registrations WHERE name = ? AND tags IS NULL
	`, "wildcard").Scan(&count)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected NULL tags column for wildcard, count = %d", count)
	}

	got, err := s.GetByEventAndName(ctx, trigger.EventCommandStart, "wildcard")
	if err != nil {
		t.Fatalf("GetByEventAndName() failed: %v", err)
	}
	if !got.Wildcard() {
		t.Errorf("expected wildcard registration, got tags %v", got.Tags)
	}
}

func TestInsert_DuplicateName(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.Insert(ctx, createTestRegistration("dup", trigger.EventCommandEnd)); err != nil {
		t.Fatalf("first Insert() failed: %v", err)
	}

	_, err := s.Insert(ctx, createTestRegistration("dup", trigger.EventCommandEnd))
	if !trigger.ConfigErrorHasCode(err, trigger.ErrCodeDuplicateName) {
		t.Errorf("expected DUPLICATE_NAME error, got %v", err)
	}

	// Same name under a different event is a distinct registration
	if _, err := s.Insert(ctx, createTestRegistration("dup", trigger.EventCommandStart)); err != nil {
		t.Errorf("Insert() under different event failed: %v", err)
	}
}

func TestInsert_Invalid(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	reg := createTestRegistration("no_callback", trigger.EventCommandEnd)
	reg.CallbackID = ""

	_, err := s.Insert(ctx, reg)
	if !trigger.ConfigErrorHasCode(err, trigger.ErrCodeInvalidRegistration) {
		t.Errorf("expected INVALID_REGISTRATION error, got %v", err)
	}
}

func TestScanByEvent_NameOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Inserted out of order; scans must come back in byte order,
	// uppercase before lowercase.
	for _, name := range []string{"b_check", "Audit", "a_check", "Zebra"} {
		if _, err := s.Insert(ctx, createTestRegistration(name, trigger.EventCommandEnd)); err != nil {
			t.Fatalf("Insert(%q) failed: %v", name, err)
		}
	}

	regs, err := s.ScanByEvent(ctx, trigger.EventCommandEnd)
	if err != nil {
		t.Fatalf("ScanByEvent() failed: %v", err)
	}

	want := []string{"Audit", "Zebra", "a_check", "b_check"}
	if len(regs) != len(want) {
		t.Fatalf("got %d registrations, want %d", len(regs), len(want))
	}
	for i, name := range want {
		if regs[i].Name != name {
			t.Errorf("regs[%d].Name = %q, want %q", i, regs[i].Name, name)
		}
	}
}

func TestScanByEvent_Empty(t *testing.T) {
	s := createTestStore(t)

	regs, err := s.ScanByEvent(context.Background(), trigger.EventNameLookup)
	if err != nil {
		t.Fatalf("ScanByEvent() failed: %v", err)
	}
	if regs == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(regs) != 0 {
		t.Errorf("expected no registrations, got %d", len(regs))
	}
}

func TestScanByEvent_FiltersEvent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	s.Insert(ctx, createTestRegistration("at_end", trigger.EventCommandEnd))
	s.Insert(ctx, createTestRegistration("at_start", trigger.EventCommandStart))

	regs, err := s.ScanByEvent(ctx, trigger.EventCommandStart)
	if err != nil {
		t.Fatalf("ScanByEvent() failed: %v", err)
	}
	if len(regs) != 1 || regs[0].Name != "at_start" {
		t.Errorf("got %v, want only at_start", regs)
	}
}

func TestGetByEventAndName_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetByEventAndName(context.Background(), trigger.EventCommandEnd, "missing")
	if !trigger.ConfigErrorHasCode(err, trigger.ErrCodeNameNotFound) {
		t.Errorf("expected NAME_NOT_FOUND error, got %v", err)
	}
}

func TestUpdateEnabled(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, createTestRegistration("toggle_me", trigger.EventCommandEnd))
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	if err := s.UpdateEnabled(ctx, id, trigger.EnabledDisabled); err != nil {
		t.Fatalf("UpdateEnabled() failed: %v", err)
	}

	got, err := s.GetByEventAndName(ctx, trigger.EventCommandEnd, "toggle_me")
	if err != nil {
		t.Fatalf("GetByEventAndName() failed: %v", err)
	}
	if got.Enabled != trigger.EnabledDisabled {
		t.Errorf("Enabled = %v, want EnabledDisabled", got.Enabled)
	}
}

func TestUpdateEnabled_NotFound(t *testing.T) {
	s := createTestStore(t)

	err := s.UpdateEnabled(context.Background(), 999, trigger.EnabledDisabled)
	if !trigger.ConfigErrorHasCode(err, trigger.ErrCodeNameNotFound) {
		t.Errorf("expected NAME_NOT_FOUND error, got %v", err)
	}
}

func TestUpdateEnabled_InvalidState(t *testing.T) {
	s := createTestStore(t)

	err := s.UpdateEnabled(context.Background(), 1, trigger.EnabledState(42))
	if !trigger.ConfigErrorHasCode(err, trigger.ErrCodeEnabledUnknown) {
		t.Errorf("expected ENABLED_UNKNOWN error, got %v", err)
	}
}

func TestRename_Basic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, createTestRegistration("old_name", trigger.EventCommandEnd))
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	if err := s.Rename(ctx, id, "new_name"); err != nil {
		t.Fatalf("Rename() failed: %v", err)
	}

	got, err := s.GetByEventAndName(ctx, trigger.EventCommandEnd, "new_name")
	if err != nil {
		t.Fatalf("GetByEventAndName(new_name) failed: %v", err)
	}
	if got.ID != id {
		t.Errorf("renamed registration ID = %d, want %d", got.ID, id)
	}

	_, err = s.GetByEventAndName(ctx, trigger.EventCommandEnd, "old_name")
	if !trigger.ConfigErrorHasCode(err, trigger.ErrCodeNameNotFound) {
		t.Errorf("expected old name gone, got %v", err)
	}
}

func TestRename_Duplicate(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, createTestRegistration("first", trigger.EventCommandEnd))
	if err != nil {
		t.Fatalf("Insert(first) failed: %v", err)
	}
	if _, err := s.Insert(ctx, createTestRegistration("second", trigger.EventCommandEnd)); err != nil {
		t.Fatalf("Insert(second) failed: %v", err)
	}

	err = s.Rename(ctx, id, "second")
	if !trigger.ConfigErrorHasCode(err, trigger.ErrCodeDuplicateName) {
		t.Errorf("expected DUPLICATE_NAME error, got %v", err)
	}

	// Renaming to the current name is a no-op, not a collision
	if err := s.Rename(ctx, id, "first"); err != nil {
		t.Errorf("Rename() to own name failed: %v", err)
	}
}

func TestRename_NotFound(t *testing.T) {
	s := createTestStore(t)

	err := s.Rename(context.Background(), 999, "anything")
	if !trigger.ConfigErrorHasCode(err, trigger.ErrCodeNameNotFound) {
		t.Errorf("expected NAME_NOT_FOUND error, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, createTestRegistration("doomed", trigger.EventCommandEnd))
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	_, err = s.GetByEventAndName(ctx, trigger.EventCommandEnd, "doomed")
	if !trigger.ConfigErrorHasCode(err, trigger.ErrCodeNameNotFound) {
		t.Errorf("expected NAME_NOT_FOUND after delete, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	s := createTestStore(t)

	err := s.Delete(context.Background(), 999)
	if !trigger.ConfigErrorHasCode(err, trigger.ErrCodeNameNotFound) {
		t.Errorf("expected NAME_NOT_FOUND error, got %v", err)
	}
}

func TestSubscribe_NotifiesOnMutation(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	var calls int
	s.Subscribe(func() { calls++ })

	id, err := s.Insert(ctx, createTestRegistration("watched", trigger.EventCommandEnd))
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("after Insert: calls = %d, want 1", calls)
	}

	if err := s.UpdateEnabled(ctx, id, trigger.EnabledDisabled); err != nil {
		t.Fatalf("UpdateEnabled() failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("after UpdateEnabled: calls = %d, want 2", calls)
	}

	if err := s.Rename(ctx, id, "renamed"); err != nil {
		t.Fatalf("Rename() failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("after Rename: calls = %d, want 3", calls)
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if calls != 4 {
		t.Errorf("after Delete: calls = %d, want 4", calls)
	}
}

func TestSubscribe_NoNotifyOnFailure(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.Insert(ctx, createTestRegistration("taken", trigger.EventCommandEnd)); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	var calls int
	s.Subscribe(func() { calls++ })

	if _, err := s.Insert(ctx, createTestRegistration("taken", trigger.EventCommandEnd)); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := s.Delete(ctx, 999); err == nil {
		t.Fatal("expected not-found error")
	}

	if calls != 0 {
		t.Errorf("failed mutations must not notify, calls = %d", calls)
	}
}

func TestInsertBatch_Basic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	var calls int
	s.Subscribe(func() { calls++ })

	regs := []trigger.Registration{
		createTestRegistration("a_check", trigger.EventCommandStart),
		createTestRegistration("b_audit", trigger.EventCommandEnd, "CREATE TABLE"),
		createTestRegistration("c_log", trigger.EventCommandEnd),
	}

	ids, err := s.InsertBatch(ctx, regs)
	if err != nil {
		t.Fatalf("InsertBatch() failed: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("len(ids) = %d, want 3", len(ids))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Errorf("ids not ascending: %v", ids)
		}
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (one broadcast per batch)", calls)
	}

	got, err := s.GetByEventAndName(ctx, trigger.EventCommandEnd, "b_audit")
	if err != nil {
		t.Fatalf("GetByEventAndName() failed: %v", err)
	}
	if got.ID != ids[1] {
		t.Errorf("ID = %d, want %d", got.ID, ids[1])
	}
}

func TestInsertBatch_AllOrNothing(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.Insert(ctx, createTestRegistration("taken", trigger.EventCommandEnd)); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	var calls int
	s.Subscribe(func() { calls++ })

	regs := []trigger.Registration{
		createTestRegistration("fresh", trigger.EventCommandEnd),
		createTestRegistration("taken", trigger.EventCommandEnd),
	}

	_, err := s.InsertBatch(ctx, regs)
	if !trigger.ConfigErrorHasCode(err, trigger.ErrCodeDuplicateName) {
		t.Fatalf("expected DUPLICATE_NAME, got %v", err)
	}

	_, err = s.GetByEventAndName(ctx, trigger.EventCommandEnd, "fresh")
	if !trigger.ConfigErrorHasCode(err, trigger.ErrCodeNameNotFound) {
		t.Errorf("expected rollback of %q, got %v", "fresh", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0 after failed batch", calls)
	}
}

func TestInsertBatch_CollisionInsideBatch(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	regs := []trigger.Registration{
		createTestRegistration("twice", trigger.EventCommandEnd),
		createTestRegistration("twice", trigger.EventCommandEnd),
	}

	_, err := s.InsertBatch(ctx, regs)
	if !trigger.ConfigErrorHasCode(err, trigger.ErrCodeDuplicateName) {
		t.Fatalf("expected DUPLICATE_NAME, got %v", err)
	}

	all, err := s.ScanByEvent(ctx, trigger.EventCommandEnd)
	if err != nil {
		t.Fatalf("ScanByEvent() failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("len = %d, want 0 after rollback", len(all))
	}
}

func TestInsertBatch_InvalidRegistration(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	bad := createTestRegistration("bad", trigger.EventCommandEnd)
	bad.CallbackID = ""

	regs := []trigger.Registration{
		createTestRegistration("good", trigger.EventCommandEnd),
		bad,
	}

	_, err := s.InsertBatch(ctx, regs)
	if !trigger.ConfigErrorHasCode(err, trigger.ErrCodeInvalidRegistration) {
		t.Fatalf("expected INVALID_REGISTRATION, got %v", err)
	}

	all, err := s.ScanByEvent(ctx, trigger.EventCommandEnd)
	if err != nil {
		t.Fatalf("ScanByEvent() failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("len = %d, want 0 (validation precedes any write)", len(all))
	}
}

func TestInsertBatch_Empty(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	var calls int
	s.Subscribe(func() { calls++ })

	ids, err := s.InsertBatch(ctx, nil)
	if err != nil {
		t.Fatalf("InsertBatch() failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("len(ids) = %d, want 0", len(ids))
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0 for empty batch", calls)
	}
}
