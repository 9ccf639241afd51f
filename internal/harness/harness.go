package harness

import (
	"context"
	"fmt"

	"github.com/spoolkit/spool/internal/record"
	"github.com/spoolkit/spool/internal/tracker"
)

// Harness runs scenarios against one tracker and remembers every record it
// buffered, so later steps can address records by insertion position.
type Harness struct {
	tracker *tracker.Tracker

	events  []*record.Event
	updates []*record.CustomerUpdate
}

// New wraps a tracker for scenario execution. The tracker should sit on a
// fresh store - scenarios assume an empty buffer at step one.
func New(t *tracker.Tracker) *Harness {
	return &Harness{tracker: t}
}

// Run executes every step in order. Execution stops at the first failing
// step; the buffer keeps whatever the completed steps wrote.
func (h *Harness) Run(ctx context.Context, sc *Scenario) error {
	for i, step := range sc.Steps {
		if err := h.runStep(ctx, step); err != nil {
			return fmt.Errorf("scenario %s step %d: %w", sc.Name, i+1, err)
		}
	}
	return nil
}

func (h *Harness) runStep(ctx context.Context, step Step) error {
	switch {
	case step.Track != nil:
		return h.track(ctx, step.Track)
	case step.Identify != nil:
		return h.identify(ctx, step.Identify)
	case step.AckEvent != 0:
		ev, err := h.eventAt(step.AckEvent)
		if err != nil {
			return err
		}
		return h.tracker.AcknowledgeEvent(ctx, ev)
	case step.AckCustomer != 0:
		cu, err := h.updateAt(step.AckCustomer)
		if err != nil {
			return err
		}
		return h.tracker.AcknowledgeCustomerUpdate(ctx, cu)
	case step.ReenqueueEvent != 0:
		ev, err := h.eventAt(step.ReenqueueEvent)
		if err != nil {
			return err
		}
		return h.tracker.EnqueueEvent(ctx, ev)
	default:
		return fmt.Errorf("step has no action")
	}
}

func (h *Harness) track(ctx context.Context, ts *TrackStep) error {
	fields, err := recordFields(ts.Token, ts.IDKey, ts.IDValue, ts.Timestamp, ts.Properties)
	if err != nil {
		return err
	}
	fields = append(fields, record.EventTypeField{Name: ts.Type})

	ev := record.NewEvent(fields...)
	if err := h.tracker.EnqueueEvent(ctx, ev); err != nil {
		return err
	}
	h.events = append(h.events, ev)
	return nil
}

func (h *Harness) identify(ctx context.Context, is *IdentifyStep) error {
	fields, err := recordFields(is.Token, is.IDKey, is.IDValue, is.Timestamp, is.Properties)
	if err != nil {
		return err
	}

	cu := record.NewCustomerUpdate(fields...)
	if err := h.tracker.EnqueueCustomerUpdate(ctx, cu); err != nil {
		return err
	}
	h.updates = append(h.updates, cu)
	return nil
}

// recordFields assembles the field list shared by track and identify steps.
func recordFields(token, idKey string, idValue any, timestamp float64, entries []PropertyEntry) ([]record.Field, error) {
	fields := []record.Field{
		record.ProjectTokenField{Token: token},
		record.TimestampField{Seconds: timestamp},
	}
	if idKey != "" {
		value, err := convertValue(idValue)
		if err != nil {
			return nil, fmt.Errorf("id value: %w", err)
		}
		fields = append(fields, record.CustomerIDField{Key: idKey, Value: value})
	}
	if len(entries) > 0 {
		props, err := convertProperties(entries)
		if err != nil {
			return nil, err
		}
		fields = append(fields, record.PropertiesField{Properties: props})
	}
	return fields, nil
}

func (h *Harness) eventAt(position int) (*record.Event, error) {
	if position < 1 || position > len(h.events) {
		return nil, fmt.Errorf("no tracked event at position %d", position)
	}
	return h.events[position-1], nil
}

func (h *Harness) updateAt(position int) (*record.CustomerUpdate, error) {
	if position < 1 || position > len(h.updates) {
		return nil, fmt.Errorf("no customer update at position %d", position)
	}
	return h.updates[position-1], nil
}

// Snapshot is the buffer state after a scenario run, in a JSON-friendly
// shape for golden comparison.
type Snapshot struct {
	Events          []RecordSnapshot `json:"events"`
	CustomerUpdates []RecordSnapshot `json:"customer_updates"`
}

// RecordSnapshot is the display form of one buffered record.
type RecordSnapshot struct {
	ID              int64              `json:"id"`
	ProjectToken    string             `json:"project_token"`
	CustomerIDKey   string             `json:"customer_id_key,omitempty"`
	CustomerIDValue any                `json:"customer_id_value,omitempty"`
	EventType       string             `json:"event_type,omitempty"`
	Timestamp       float64            `json:"timestamp"`
	Properties      []PropertySnapshot `json:"properties"`
}

// PropertySnapshot is one key/value pair in a record snapshot.
type PropertySnapshot struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Snapshot fetches the pending buffer contents in insertion order.
func (h *Harness) Snapshot(ctx context.Context) (*Snapshot, error) {
	events, err := h.tracker.PendingEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot events: %w", err)
	}
	updates, err := h.tracker.PendingCustomerUpdates(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot customer updates: %w", err)
	}

	snap := &Snapshot{
		Events:          make([]RecordSnapshot, 0, len(events)),
		CustomerUpdates: make([]RecordSnapshot, 0, len(updates)),
	}
	for _, ev := range events {
		snap.Events = append(snap.Events, RecordSnapshot{
			ID:              ev.ID,
			ProjectToken:    ev.ProjectToken,
			CustomerIDKey:   ev.CustomerIDKey,
			CustomerIDValue: record.Plain(ev.CustomerIDValue),
			EventType:       ev.EventType,
			Timestamp:       ev.Timestamp,
			Properties:      propertySnapshots(ev.Properties),
		})
	}
	for _, cu := range updates {
		snap.CustomerUpdates = append(snap.CustomerUpdates, RecordSnapshot{
			ID:              cu.ID,
			ProjectToken:    cu.ProjectToken,
			CustomerIDKey:   cu.CustomerIDKey,
			CustomerIDValue: record.Plain(cu.CustomerIDValue),
			Timestamp:       cu.Timestamp,
			Properties:      propertySnapshots(cu.Properties),
		})
	}
	return snap, nil
}

func propertySnapshots(props []record.Property) []PropertySnapshot {
	snaps := make([]PropertySnapshot, 0, len(props))
	for _, p := range props {
		snaps = append(snaps, PropertySnapshot{Key: p.Key, Value: record.Plain(p.Value)})
	}
	return snaps
}

// Verify checks a scenario's expectations against a snapshot.
func Verify(sc *Scenario, snap *Snapshot) error {
	if sc.Expect == nil {
		return nil
	}
	if want := sc.Expect.Events; want != nil && *want != len(snap.Events) {
		return fmt.Errorf("scenario %s: expected %d pending events, got %d",
			sc.Name, *want, len(snap.Events))
	}
	if want := sc.Expect.CustomerUpdates; want != nil && *want != len(snap.CustomerUpdates) {
		return fmt.Errorf("scenario %s: expected %d pending customer updates, got %d",
			sc.Name, *want, len(snap.CustomerUpdates))
	}
	return nil
}
