package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spoolkit/spool/internal/record"
)

// DeleteEvent removes exactly one event and all of its properties in a
// single transaction. Returns ErrNotFound if no row with the event's
// identity exists - acknowledging a record twice is a flush-layer bug this
// core refuses to hide.
func (s *Store) DeleteEvent(ctx context.Context, ev *record.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := deleteRecord(ctx, s.db, "events", "event_properties", "event_id", ev.ID); err != nil {
		if err == ErrNotFound {
			return err
		}
		return persistErr("delete event", err)
	}
	return nil
}

// DeleteCustomerUpdate removes exactly one customer update and all of its
// properties in a single transaction. Same ErrNotFound contract as
// DeleteEvent.
func (s *Store) DeleteCustomerUpdate(ctx context.Context, cu *record.CustomerUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := deleteRecord(ctx, s.db, "customer_updates", "customer_update_properties", "customer_update_id", cu.ID); err != nil {
		if err == ErrNotFound {
			return err
		}
		return persistErr("delete customer update", err)
	}
	return nil
}

// deleteRecord removes the property rows and then the parent row inside one
// transaction. The explicit two-step cascade keeps referential integrity
// independent of the foreign-key backstop in the schema.
func deleteRecord(ctx context.Context, db *sql.DB, table, propTable, parentCol string, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	propQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", propTable, parentCol)
	if _, err := tx.ExecContext(ctx, propQuery, id); err != nil {
		return fmt.Errorf("delete properties: %w", err)
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", table)
	res, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete row: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}
