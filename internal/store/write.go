package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spoolkit/spool/internal/record"
)

// InsertEvent persists a newly built event together with all of its
// properties in a single transaction. On success the store-assigned row
// identity is written back to ev.ID. On failure no partial state is
// retained and a PersistenceError is returned.
func (s *Store) InsertEvent(ctx context.Context, ev *record.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistErr("insert event", fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback() // No-op if committed

	id, err := s.insertEventTx(ctx, tx, ev, false)
	if err != nil {
		return persistErr("insert event", err)
	}

	if err := tx.Commit(); err != nil {
		return persistErr("insert event", fmt.Errorf("commit: %w", err))
	}

	ev.ID = id
	return nil
}

// InsertCustomerUpdate persists a newly built customer update together with
// all of its properties in a single transaction. On success the
// store-assigned row identity is written back to cu.ID.
func (s *Store) InsertCustomerUpdate(ctx context.Context, cu *record.CustomerUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistErr("insert customer update", fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback()

	id, err := s.insertCustomerUpdateTx(ctx, tx, cu, false)
	if err != nil {
		return persistErr("insert customer update", err)
	}

	if err := tx.Commit(); err != nil {
		return persistErr("insert customer update", fmt.Errorf("commit: %w", err))
	}

	cu.ID = id
	return nil
}

// ReinsertEvent inserts a pre-built event, deduplicating on its row
// identity. If a row with the same id already exists the call is a
// successful no-op and inserted is false - "already present" is an expected
// benign race, not an error. Events that were never persisted (ID zero)
// are inserted fresh.
func (s *Store) ReinsertEvent(ctx context.Context, ev *record.Event) (inserted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, persistErr("reinsert event", fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback()

	if ev.ID != 0 {
		exists, err := rowExists(ctx, tx, "events", ev.ID)
		if err != nil {
			return false, persistErr("reinsert event", err)
		}
		if exists {
			return false, nil
		}
	}

	id, err := s.insertEventTx(ctx, tx, ev, ev.ID != 0)
	if err != nil {
		return false, persistErr("reinsert event", err)
	}

	if err := tx.Commit(); err != nil {
		return false, persistErr("reinsert event", fmt.Errorf("commit: %w", err))
	}

	ev.ID = id
	return true, nil
}

// ReinsertCustomerUpdate inserts a pre-built customer update, deduplicating
// on its row identity. Same contract as ReinsertEvent.
func (s *Store) ReinsertCustomerUpdate(ctx context.Context, cu *record.CustomerUpdate) (inserted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, persistErr("reinsert customer update", fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback()

	if cu.ID != 0 {
		exists, err := rowExists(ctx, tx, "customer_updates", cu.ID)
		if err != nil {
			return false, persistErr("reinsert customer update", err)
		}
		if exists {
			return false, nil
		}
	}

	id, err := s.insertCustomerUpdateTx(ctx, tx, cu, cu.ID != 0)
	if err != nil {
		return false, persistErr("reinsert customer update", err)
	}

	if err := tx.Commit(); err != nil {
		return false, persistErr("reinsert customer update", fmt.Errorf("commit: %w", err))
	}

	cu.ID = id
	return true, nil
}

// insertEventTx writes the event row and its property rows inside tx.
// When keepID is true the event's existing row identity is preserved
// (pre-built reinsertion); otherwise SQLite assigns a fresh one.
func (s *Store) insertEventTx(ctx context.Context, tx *sql.Tx, ev *record.Event, keepID bool) (int64, error) {
	idValue, err := record.EncodeValue(ev.CustomerIDValue)
	if err != nil {
		return 0, fmt.Errorf("encode customer id value: %w", err)
	}

	var res sql.Result
	if keepID {
		res, err = tx.ExecContext(ctx, `
			INSERT INTO events
			(id, project_token, customer_id_key, customer_id_value, event_type, timestamp)
			VALUES (?, ?, ?, ?, ?, ?)
		`, ev.ID, ev.ProjectToken, ev.CustomerIDKey, idValue, ev.EventType, ev.Timestamp)
	} else {
		res, err = tx.ExecContext(ctx, `
			INSERT INTO events
			(project_token, customer_id_key, customer_id_value, event_type, timestamp)
			VALUES (?, ?, ?, ?, ?)
		`, ev.ProjectToken, ev.CustomerIDKey, idValue, ev.EventType, ev.Timestamp)
	}
	if err != nil {
		return 0, fmt.Errorf("insert event row: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	if s.insertFault != nil {
		if err := s.insertFault(); err != nil {
			return 0, fmt.Errorf("insert event row: %w", err)
		}
	}

	if err := insertProperties(ctx, tx, "event_properties", "event_id", id, ev.Properties); err != nil {
		return 0, err
	}

	return id, nil
}

// insertCustomerUpdateTx writes the customer update row and its property
// rows inside tx. See insertEventTx for the keepID contract.
func (s *Store) insertCustomerUpdateTx(ctx context.Context, tx *sql.Tx, cu *record.CustomerUpdate, keepID bool) (int64, error) {
	idValue, err := record.EncodeValue(cu.CustomerIDValue)
	if err != nil {
		return 0, fmt.Errorf("encode customer id value: %w", err)
	}

	var res sql.Result
	if keepID {
		res, err = tx.ExecContext(ctx, `
			INSERT INTO customer_updates
			(id, project_token, customer_id_key, customer_id_value, timestamp)
			VALUES (?, ?, ?, ?, ?)
		`, cu.ID, cu.ProjectToken, cu.CustomerIDKey, idValue, cu.Timestamp)
	} else {
		res, err = tx.ExecContext(ctx, `
			INSERT INTO customer_updates
			(project_token, customer_id_key, customer_id_value, timestamp)
			VALUES (?, ?, ?, ?)
		`, cu.ProjectToken, cu.CustomerIDKey, idValue, cu.Timestamp)
	}
	if err != nil {
		return 0, fmt.Errorf("insert customer update row: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	if s.insertFault != nil {
		if err := s.insertFault(); err != nil {
			return 0, fmt.Errorf("insert customer update row: %w", err)
		}
	}

	if err := insertProperties(ctx, tx, "customer_update_properties", "customer_update_id", id, cu.Properties); err != nil {
		return 0, err
	}

	return id, nil
}

// insertProperties writes the property rows for a parent record.
// Position preserves the caller-supplied order; duplicate keys are kept.
func insertProperties(ctx context.Context, tx *sql.Tx, table, parentCol string, parentID int64, props []record.Property) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, position, key, value)
		VALUES (?, ?, ?, ?)
	`, table, parentCol)

	for i, p := range props {
		encoded, err := record.EncodeValue(p.Value)
		if err != nil {
			return fmt.Errorf("encode property %q: %w", p.Key, err)
		}
		if _, err := tx.ExecContext(ctx, query, parentID, i, p.Key, encoded); err != nil {
			return fmt.Errorf("insert property %q: %w", p.Key, err)
		}
	}

	return nil
}

// rowExists reports whether a record row with the given id is present.
func rowExists(ctx context.Context, tx *sql.Tx, table string, id int64) (bool, error) {
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", table)
	if err := tx.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return false, fmt.Errorf("check existing row: %w", err)
	}
	return count > 0, nil
}
