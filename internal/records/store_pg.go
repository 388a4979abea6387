package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PGStore implements Store on Postgres, one JSONB table per collection.
type PGStore struct {
	DB *sql.DB
}

// Insert implements Store. The id and created_at come from column defaults.
func (s *PGStore) Insert(ctx context.Context, collection string, document json.RawMessage) (Record, error) {
	if !validCollection(collection) {
		return Record{}, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	query := fmt.Sprintf(`INSERT INTO %s (document) VALUES ($1) RETURNING id, created_at`, collection)

	rec := Record{Collection: collection, Document: document}
	if err := s.DB.QueryRowContext(ctx, query, []byte(document)).Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return Record{}, fmt.Errorf("insert %s: %w", collection, err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}

// Get implements Store.
func (s *PGStore) Get(ctx context.Context, collection, id string) (Record, error) {
	if !validCollection(collection) {
		return Record{}, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	if _, err := uuid.Parse(id); err != nil {
		return Record{}, ErrNotFound
	}
	query := fmt.Sprintf(`SELECT id, document, created_at FROM %s WHERE id = $1 LIMIT 1`, collection)

	rec := Record{Collection: collection}
	var doc []byte
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&rec.ID, &doc, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	rec.Document = json.RawMessage(doc)
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}

// List implements Store.
func (s *PGStore) List(ctx context.Context, collection string, limit, offset int) ([]Record, error) {
	if !validCollection(collection) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	limit, offset = ClampPage(limit, offset)
	query := fmt.Sprintf(`
SELECT id, document, created_at
FROM %s
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2`, collection)

	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0, limit)
	for rows.Next() {
		rec := Record{Collection: collection}
		var doc []byte
		if err := rows.Scan(&rec.ID, &doc, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Document = json.RawMessage(doc)
		rec.CreatedAt = rec.CreatedAt.UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ Store = (*PGStore)(nil)
