package store

import (
	"path/filepath"
	"testing"

	"github.com/spoolkit/spool/internal/record"
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

// createTestEvent creates a test event with minimal required fields.
func createTestEvent(eventType string, timestamp float64) *record.Event {
	return &record.Event{
		ProjectToken:    "P1",
		CustomerIDKey:   "cookie",
		CustomerIDValue: record.String("c-1"),
		EventType:       eventType,
		Timestamp:       timestamp,
	}
}

// createTestCustomerUpdate creates a test customer update with minimal
// required fields.
func createTestCustomerUpdate(timestamp float64) *record.CustomerUpdate {
	return &record.CustomerUpdate{
		ProjectToken:    "P1",
		CustomerIDKey:   "registered",
		CustomerIDValue: record.String("jane@example.com"),
		Timestamp:       timestamp,
	}
}

// countRows counts rows in a table, failing the test on query errors.
func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return count
}
