// Package tracker is the SDK facade over the local store.
//
// Producers call TrackEvent/TrackCustomer with typed field lists; the flush
// collaborator consumes PendingEvents/PendingCustomerUpdates and calls
// Acknowledge* after a successful upload. The tracker owns all diagnostic
// logging; the store underneath stays silent.
package tracker

import (
	"context"
	"io"
	"log/slog"

	"github.com/spoolkit/spool/internal/record"
	"github.com/spoolkit/spool/internal/store"
)

// Tracker buffers tracking records in a local store until they are
// acknowledged by the flush collaborator. It decides nothing about when to
// flush and never retries - that policy lives with the caller.
type Tracker struct {
	store  *store.Store
	logger *slog.Logger
}

// New creates a tracker over an open store.
// A nil logger suppresses diagnostics.
func New(s *store.Store, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Tracker{store: s, logger: logger}
}

// TrackEvent materializes an event from tagged field entries and persists
// it atomically with its properties. Unrecognized field kinds are skipped.
func (t *Tracker) TrackEvent(ctx context.Context, fields ...record.Field) error {
	ev := record.NewEvent(fields...)
	if err := t.store.InsertEvent(ctx, ev); err != nil {
		return err
	}
	t.logger.Info("event buffered", "id", ev.ID, "event_type", ev.EventType)
	return nil
}

// TrackCustomer materializes a customer update from tagged field entries
// and persists it atomically with its properties.
func (t *Tracker) TrackCustomer(ctx context.Context, fields ...record.Field) error {
	cu := record.NewCustomerUpdate(fields...)
	if err := t.store.InsertCustomerUpdate(ctx, cu); err != nil {
		return err
	}
	t.logger.Info("customer update buffered", "id", cu.ID)
	return nil
}

// EnqueueEvent persists a pre-built event. If a record with the same
// storage identity is already buffered the call succeeds without writing -
// concurrent enqueue of the same record is an expected race, worth a
// warning but never an error.
func (t *Tracker) EnqueueEvent(ctx context.Context, ev *record.Event) error {
	inserted, err := t.store.ReinsertEvent(ctx, ev)
	if err != nil {
		return err
	}
	if !inserted {
		t.logger.Warn("event already buffered, skipping", "id", ev.ID)
		return nil
	}
	t.logger.Info("event buffered", "id", ev.ID, "event_type", ev.EventType)
	return nil
}

// EnqueueCustomerUpdate persists a pre-built customer update with the same
// dedup contract as EnqueueEvent.
func (t *Tracker) EnqueueCustomerUpdate(ctx context.Context, cu *record.CustomerUpdate) error {
	inserted, err := t.store.ReinsertCustomerUpdate(ctx, cu)
	if err != nil {
		return err
	}
	if !inserted {
		t.logger.Warn("customer update already buffered, skipping", "id", cu.ID)
		return nil
	}
	t.logger.Info("customer update buffered", "id", cu.ID)
	return nil
}

// PendingEvents returns a consistent snapshot of all buffered events in
// insertion order.
func (t *Tracker) PendingEvents(ctx context.Context) ([]record.Event, error) {
	return t.store.PendingEvents(ctx)
}

// PendingCustomerUpdates returns a consistent snapshot of all buffered
// customer updates in insertion order.
func (t *Tracker) PendingCustomerUpdates(ctx context.Context) ([]record.CustomerUpdate, error) {
	return t.store.PendingCustomerUpdates(ctx)
}

// AcknowledgeEvent removes an uploaded event and its properties.
// Returns store.ErrNotFound when the record is already gone.
func (t *Tracker) AcknowledgeEvent(ctx context.Context, ev *record.Event) error {
	if err := t.store.DeleteEvent(ctx, ev); err != nil {
		return err
	}
	t.logger.Info("event acknowledged", "id", ev.ID)
	return nil
}

// AcknowledgeCustomerUpdate removes an uploaded customer update and its
// properties. Returns store.ErrNotFound when the record is already gone.
func (t *Tracker) AcknowledgeCustomerUpdate(ctx context.Context, cu *record.CustomerUpdate) error {
	if err := t.store.DeleteCustomerUpdate(ctx, cu); err != nil {
		return err
	}
	t.logger.Info("customer update acknowledged", "id", cu.ID)
	return nil
}

// Identity returns the durable customer identity for attaching to outgoing
// payloads. Never fails: persistence problems degrade to an in-memory
// identity and a logged diagnostic.
func (t *Tracker) Identity(ctx context.Context) record.Identity {
	identity, err := t.store.FetchOrCreateIdentity(ctx)
	if err != nil {
		t.logger.Error("identity persistence degraded", "error", err)
	}
	return identity
}
