package store

import (
	"context"
	"errors"
	"testing"

	"github.com/spoolkit/spool/internal/record"
)

func TestInsertEvent_AssignsIdentity(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	ev := createTestEvent("session_start", 1000.0)
	if err := s.InsertEvent(ctx, ev); err != nil {
		t.Fatalf("InsertEvent() failed: %v", err)
	}
	if ev.ID == 0 {
		t.Error("InsertEvent() did not assign a row identity")
	}

	ev2 := createTestEvent("session_end", 1001.0)
	if err := s.InsertEvent(ctx, ev2); err != nil {
		t.Fatalf("second InsertEvent() failed: %v", err)
	}
	if ev2.ID == ev.ID {
		t.Errorf("both events got identity %d", ev.ID)
	}
}

func TestInsertEvent_RoundTripsFields(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	ev := createTestEvent("purchase", 1234.5)
	ev.Properties = []record.Property{
		record.P("screen", record.String("checkout")),
		record.P("amount", record.Float(19.99)),
		record.P("items", record.Int(3)),
		record.P("gift", record.Bool(false)),
		record.P("note", record.Null{}),
	}
	if err := s.InsertEvent(ctx, ev); err != nil {
		t.Fatalf("InsertEvent() failed: %v", err)
	}

	events, err := s.PendingEvents(ctx)
	if err != nil {
		t.Fatalf("PendingEvents() failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, expected 1", len(events))
	}

	got := events[0]
	if got.ID != ev.ID {
		t.Errorf("ID = %d, expected %d", got.ID, ev.ID)
	}
	if got.ProjectToken != "P1" || got.EventType != "purchase" || got.Timestamp != 1234.5 {
		t.Errorf("fields did not round-trip: %+v", got)
	}
	if got.CustomerIDKey != "cookie" || got.CustomerIDValue != record.String("c-1") {
		t.Errorf("customer id did not round-trip: %q=%v", got.CustomerIDKey, got.CustomerIDValue)
	}
	if len(got.Properties) != len(ev.Properties) {
		t.Fatalf("got %d properties, expected %d", len(got.Properties), len(ev.Properties))
	}
	for i, p := range ev.Properties {
		if got.Properties[i].Key != p.Key {
			t.Errorf("property %d key = %q, expected %q", i, got.Properties[i].Key, p.Key)
		}
	}
	if got.Properties[4].Value != (record.Null{}) {
		t.Errorf("null property did not round-trip: %v", got.Properties[4].Value)
	}
}

func TestInsertEvent_KeepsDuplicatePropertyKeys(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	ev := createTestEvent("click", 1.0)
	ev.Properties = []record.Property{
		record.P("tag", record.String("first")),
		record.P("tag", record.String("second")),
		record.P("tag", record.String("third")),
	}
	if err := s.InsertEvent(ctx, ev); err != nil {
		t.Fatalf("InsertEvent() failed: %v", err)
	}

	events, err := s.PendingEvents(ctx)
	if err != nil {
		t.Fatalf("PendingEvents() failed: %v", err)
	}
	props := events[0].Properties
	if len(props) != 3 {
		t.Fatalf("got %d properties, expected 3 (duplicates must be kept)", len(props))
	}
	for i, want := range []string{"first", "second", "third"} {
		if props[i].Value != record.String(want) {
			t.Errorf("property %d = %v, expected %q (order must be kept)", i, props[i].Value, want)
		}
	}
}

func TestInsertCustomerUpdate_RoundTripsFields(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	cu := createTestCustomerUpdate(55.5)
	cu.Properties = []record.Property{record.P("plan", record.String("pro"))}
	if err := s.InsertCustomerUpdate(ctx, cu); err != nil {
		t.Fatalf("InsertCustomerUpdate() failed: %v", err)
	}
	if cu.ID == 0 {
		t.Error("InsertCustomerUpdate() did not assign a row identity")
	}

	updates, err := s.PendingCustomerUpdates(ctx)
	if err != nil {
		t.Fatalf("PendingCustomerUpdates() failed: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("got %d updates, expected 1", len(updates))
	}
	got := updates[0]
	if got.CustomerIDKey != "registered" || got.CustomerIDValue != record.String("jane@example.com") {
		t.Errorf("customer id did not round-trip: %q=%v", got.CustomerIDKey, got.CustomerIDValue)
	}
	if len(got.Properties) != 1 || got.Properties[0].Key != "plan" {
		t.Errorf("properties did not round-trip: %+v", got.Properties)
	}
}

func TestReinsertEvent_DuplicateIsNoOp(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	ev := createTestEvent("session_start", 1000.0)
	if err := s.InsertEvent(ctx, ev); err != nil {
		t.Fatalf("InsertEvent() failed: %v", err)
	}

	// Re-inserting the same persisted record must not create a second row
	// and must not error.
	inserted, err := s.ReinsertEvent(ctx, ev)
	if err != nil {
		t.Fatalf("ReinsertEvent() failed: %v", err)
	}
	if inserted {
		t.Error("ReinsertEvent() reported inserted=true for a duplicate")
	}

	if got := countRows(t, s, "events"); got != 1 {
		t.Errorf("got %d event rows, expected 1", got)
	}
}

func TestReinsertEvent_RestoresFetchedRecord(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	ev := createTestEvent("session_start", 1000.0)
	ev.Properties = []record.Property{record.P("screen", record.String("home"))}
	if err := s.InsertEvent(ctx, ev); err != nil {
		t.Fatalf("InsertEvent() failed: %v", err)
	}

	events, err := s.PendingEvents(ctx)
	if err != nil {
		t.Fatalf("PendingEvents() failed: %v", err)
	}
	fetched := events[0]

	if err := s.DeleteEvent(ctx, &fetched); err != nil {
		t.Fatalf("DeleteEvent() failed: %v", err)
	}

	// Replaying the fetched record keeps its original identity and
	// properties.
	inserted, err := s.ReinsertEvent(ctx, &fetched)
	if err != nil {
		t.Fatalf("ReinsertEvent() failed: %v", err)
	}
	if !inserted {
		t.Error("ReinsertEvent() reported inserted=false for a deleted record")
	}

	events, err = s.PendingEvents(ctx)
	if err != nil {
		t.Fatalf("PendingEvents() after reinsert failed: %v", err)
	}
	if len(events) != 1 || events[0].ID != ev.ID {
		t.Fatalf("reinserted record lost its identity: %+v", events)
	}
	if len(events[0].Properties) != 1 {
		t.Errorf("reinserted record lost its properties: %+v", events[0].Properties)
	}
}

func TestReinsertCustomerUpdate_DuplicateIsNoOp(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	cu := createTestCustomerUpdate(10.0)
	if err := s.InsertCustomerUpdate(ctx, cu); err != nil {
		t.Fatalf("InsertCustomerUpdate() failed: %v", err)
	}

	inserted, err := s.ReinsertCustomerUpdate(ctx, cu)
	if err != nil {
		t.Fatalf("ReinsertCustomerUpdate() failed: %v", err)
	}
	if inserted {
		t.Error("ReinsertCustomerUpdate() reported inserted=true for a duplicate")
	}
	if got := countRows(t, s, "customer_updates"); got != 1 {
		t.Errorf("got %d customer update rows, expected 1", got)
	}
}

func TestInsertEvent_MidInsertFailureLeavesNothing(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Fail after the parent row write but before the property writes.
	fault := errors.New("simulated storage failure")
	s.insertFault = func() error { return fault }

	ev := createTestEvent("session_start", 1000.0)
	ev.Properties = []record.Property{
		record.P("screen", record.String("home")),
		record.P("depth", record.Int(1)),
	}

	err := s.InsertEvent(ctx, ev)
	if err == nil {
		t.Fatal("InsertEvent() succeeded despite injected fault")
	}
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Errorf("error %v is not a PersistenceError", err)
	}
	if !errors.Is(err, fault) {
		t.Errorf("error %v does not wrap the injected fault", err)
	}

	// The transaction must have rolled back completely: no event row and
	// no property rows.
	if got := countRows(t, s, "events"); got != 0 {
		t.Errorf("got %d event rows after failed insert, expected 0", got)
	}
	if got := countRows(t, s, "event_properties"); got != 0 {
		t.Errorf("got %d property rows after failed insert, expected 0", got)
	}

	// The store stays usable after the failure.
	s.insertFault = nil
	if err := s.InsertEvent(ctx, ev); err != nil {
		t.Fatalf("InsertEvent() after cleared fault failed: %v", err)
	}
}

func TestInsertEvent_FailureDoesNotCorruptExistingRecords(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := createTestEvent("session_start", 1.0)
	first.Properties = []record.Property{record.P("screen", record.String("home"))}
	if err := s.InsertEvent(ctx, first); err != nil {
		t.Fatalf("InsertEvent() failed: %v", err)
	}

	s.insertFault = func() error { return errors.New("boom") }
	second := createTestEvent("session_end", 2.0)
	if err := s.InsertEvent(ctx, second); err == nil {
		t.Fatal("InsertEvent() succeeded despite injected fault")
	}
	s.insertFault = nil

	events, err := s.PendingEvents(ctx)
	if err != nil {
		t.Fatalf("PendingEvents() failed: %v", err)
	}
	if len(events) != 1 || events[0].EventType != "session_start" {
		t.Fatalf("previously persisted record was disturbed: %+v", events)
	}
	if len(events[0].Properties) != 1 {
		t.Errorf("previously persisted properties were disturbed: %+v", events[0].Properties)
	}
}
