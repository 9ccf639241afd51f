package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spoolkit/spool/internal/record"
)

// PendingEvents returns all buffered events with their properties attached,
// ordered by row identity (insertion order). Both queries run inside one
// read transaction so the result is a consistent snapshot - a record is
// never returned with only some of its properties.
//
// Returns an empty slice (not nil) when the buffer is empty.
func (s *Store) PendingEvents(ctx context.Context) ([]record.Event, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("pending events: begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, project_token, customer_id_key, customer_id_value, event_type, timestamp
		FROM events
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []record.Event
	for rows.Next() {
		var ev record.Event
		var idValue string
		if err := rows.Scan(&ev.ID, &ev.ProjectToken, &ev.CustomerIDKey, &idValue, &ev.EventType, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if ev.CustomerIDValue, err = record.DecodeValue(idValue); err != nil {
			return nil, fmt.Errorf("event %d: %w", ev.ID, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	rows.Close()

	props, err := readProperties(ctx, tx, "event_properties", "event_id")
	if err != nil {
		return nil, fmt.Errorf("pending events: %w", err)
	}
	for i := range events {
		events[i].Properties = props[events[i].ID]
	}

	// Return empty slice instead of nil
	if events == nil {
		events = []record.Event{}
	}

	return events, nil
}

// PendingCustomerUpdates returns all buffered customer updates with their
// properties attached, ordered by row identity. Same snapshot contract as
// PendingEvents.
func (s *Store) PendingCustomerUpdates(ctx context.Context) ([]record.CustomerUpdate, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("pending customer updates: begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, project_token, customer_id_key, customer_id_value, timestamp
		FROM customer_updates
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query customer updates: %w", err)
	}
	defer rows.Close()

	var updates []record.CustomerUpdate
	for rows.Next() {
		var cu record.CustomerUpdate
		var idValue string
		if err := rows.Scan(&cu.ID, &cu.ProjectToken, &cu.CustomerIDKey, &idValue, &cu.Timestamp); err != nil {
			return nil, fmt.Errorf("scan customer update: %w", err)
		}
		if cu.CustomerIDValue, err = record.DecodeValue(idValue); err != nil {
			return nil, fmt.Errorf("customer update %d: %w", cu.ID, err)
		}
		updates = append(updates, cu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer updates: %w", err)
	}
	rows.Close()

	props, err := readProperties(ctx, tx, "customer_update_properties", "customer_update_id")
	if err != nil {
		return nil, fmt.Errorf("pending customer updates: %w", err)
	}
	for i := range updates {
		updates[i].Properties = props[updates[i].ID]
	}

	if updates == nil {
		updates = []record.CustomerUpdate{}
	}

	return updates, nil
}

// readProperties loads every property row from the given table, grouped by
// parent record id in caller-supplied order.
func readProperties(ctx context.Context, tx *sql.Tx, table, parentCol string) (map[int64][]record.Property, error) {
	query := fmt.Sprintf(`
		SELECT %s, key, value
		FROM %s
		ORDER BY %s ASC, position ASC, id ASC
	`, parentCol, table, parentCol)

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()

	props := make(map[int64][]record.Property)
	for rows.Next() {
		var parentID int64
		var p record.Property
		var encoded string
		if err := rows.Scan(&parentID, &p.Key, &encoded); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		if p.Value, err = record.DecodeValue(encoded); err != nil {
			return nil, fmt.Errorf("property %q: %w", p.Key, err)
		}
		props[parentID] = append(props[parentID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate properties: %w", err)
	}

	return props, nil
}
