package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/spoolkit/spool/internal/record"
)

// FetchOrCreateIdentity returns the single durable customer identity,
// creating it with a fresh cookie on first access. The returned identity is
// always usable; a non-nil error is diagnostic only and means the identity
// could not be read or persisted (availability wins over durability on this
// one path - callers log the error and carry on with the in-memory value).
//
// An existing readable cookie is never overwritten. The whole
// read-construct-write sequence runs under the write lock, so concurrent
// callers converge on a single cookie and at most one identity row ever
// exists.
func (s *Store) FetchOrCreateIdentity(ctx context.Context) (record.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cookie string
	fetchErr := s.db.QueryRowContext(ctx, `SELECT cookie FROM identity WHERE id = 1`).Scan(&cookie)

	switch {
	case fetchErr == nil:
		parsed, parseErr := uuid.Parse(cookie)
		if parseErr == nil {
			return record.Identity{Cookie: parsed}, nil
		}
		// Stored cookie is unreadable. Mint a fresh one and replace it -
		// a cookie nothing can parse identifies nothing.
		identity := record.NewIdentity()
		if _, err := s.db.ExecContext(ctx, `
			UPDATE identity SET cookie = ? WHERE id = 1
		`, identity.Cookie.String()); err != nil {
			return identity, fmt.Errorf("replace unreadable cookie: %w", err)
		}
		return identity, fmt.Errorf("replaced unreadable cookie: %w", parseErr)

	case fetchErr == sql.ErrNoRows:
		identity := record.NewIdentity()
		// DO NOTHING keeps any existing row authoritative.
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO identity (id, cookie) VALUES (1, ?)
			ON CONFLICT(id) DO NOTHING
		`, identity.Cookie.String()); err != nil {
			return identity, fmt.Errorf("create identity: %w", err)
		}
		return identity, nil

	default:
		// Fetch itself failed (storage unavailable). Still hand the caller
		// a usable identity; persisting is attempted best-effort.
		identity := record.NewIdentity()
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO identity (id, cookie) VALUES (1, ?)
			ON CONFLICT(id) DO NOTHING
		`, identity.Cookie.String()); err != nil {
			return identity, fmt.Errorf("create identity: %w (after fetch: %v)", err, fetchErr)
		}
		return identity, fmt.Errorf("fetch identity: %w", fetchErr)
	}
}
