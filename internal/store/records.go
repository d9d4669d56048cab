package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetAll returns every payload in the collection. Order is
// unspecified; callers sort by whatever field suits them.
func (s *Store) GetAll(ctx context.Context, collection string) ([][]byte, error) {
	if err := s.checkCollection(collection); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM records WHERE collection = ?`, collection)
	if err != nil {
		return nil, fmt.Errorf("get all %q: %w", collection, err)
	}
	defer func() { _ = rows.Close() }()

	var out [][]byte
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("get all %q: scan: %w", collection, err)
		}
		out = append(out, payload)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get all %q: %w", collection, err)
	}
	return out, nil
}

// Get returns the payload under id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, error) {
	if err := s.checkCollection(collection); err != nil {
		return nil, err
	}
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM records WHERE collection = ? AND id = ?`,
		collection, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return payload, nil
}

// Put upserts the payload under id. Repeated writes to the same id are
// idempotent (last-write-wins).
func (s *Store) Put(ctx context.Context, collection, id string, payload []byte) error {
	if err := s.checkCollection(collection); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (collection, id, payload) VALUES (?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET payload = excluded.payload
	`, collection, id, payload)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, err)
	}
	return nil
}

// Add inserts the payload under id, failing with ErrDuplicateID if the
// id already exists. Conflict detection uses ON CONFLICT DO NOTHING +
// rows-affected rather than driver error inspection.
func (s *Store) Add(ctx context.Context, collection, id string, payload []byte) error {
	if err := s.checkCollection(collection); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO records (collection, id, payload) VALUES (?, ?, ?)
		ON CONFLICT(collection, id) DO NOTHING
	`, collection, id, payload)
	if err != nil {
		return fmt.Errorf("add %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("add %s/%s: rows affected: %w", collection, id, err)
	}
	if n == 0 {
		return fmt.Errorf("add %s/%s: %w", collection, id, ErrDuplicateID)
	}
	return nil
}

// Delete removes the record under id. Deleting an absent id is a
// no-op, not an error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := s.checkCollection(collection); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}
