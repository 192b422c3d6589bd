package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/wtmobile/internal/gym"
)

const selectGymColumns = `SELECT id, name, city, notes, created_at FROM gyms`

// Insert adds a new record. Returns ErrAlreadyExists if the id is taken.
func (s *Store) Insert(ctx context.Context, g gym.Gym) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("insert gym: %w", err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gyms (id, name, city, notes, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		g.ID,
		g.Name,
		nullable(g.City),
		nullable(g.Notes),
		gym.FormatTimestamp(g.CreatedAt),
	)
	if err != nil {
		if isPrimaryKeyViolation(err) {
			return fmt.Errorf("insert gym %s: %w", g.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("insert gym: %w", err)
	}

	return nil
}

// Upsert replaces the record with the same id in full, or inserts it.
func (s *Store) Upsert(ctx context.Context, g gym.Gym) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("upsert gym: %w", err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gyms (id, name, city, notes, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			city = excluded.city,
			notes = excluded.notes,
			created_at = excluded.created_at
	`,
		g.ID,
		g.Name,
		nullable(g.City),
		nullable(g.Notes),
		gym.FormatTimestamp(g.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert gym: %w", err)
	}

	return nil
}

// Delete removes the record with the given id. Deleting an unknown id is a
// no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM gyms WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete gym: %w", err)
	}
	return nil
}

// Get retrieves a single record by id.
// Returns ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, id string) (gym.Gym, error) {
	row := s.db.QueryRowContext(ctx, selectGymColumns+` WHERE id = ?`, id)

	g, err := scanGym(row)
	if errors.Is(err, sql.ErrNoRows) {
		return gym.Gym{}, fmt.Errorf("get gym %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return gym.Gym{}, fmt.Errorf("get gym: %w", err)
	}
	return g, nil
}

// ListAll returns every record, most recently created first.
//
// Returns an empty slice (not nil) if no records exist.
func (s *Store) ListAll(ctx context.Context) ([]gym.Gym, error) {
	rows, err := s.db.QueryContext(ctx, selectGymColumns+`
		ORDER BY created_at DESC, id COLLATE BINARY DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query gyms: %w", err)
	}
	defer rows.Close()

	gyms := []gym.Gym{}
	for rows.Next() {
		g, err := scanGym(rows)
		if err != nil {
			return nil, err
		}
		gyms = append(gyms, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gyms: %w", err)
	}

	return gyms, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM gyms`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count gyms: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGym(row rowScanner) (gym.Gym, error) {
	var (
		g         gym.Gym
		city      sql.NullString
		notes     sql.NullString
		createdAt string
	)
	if err := row.Scan(&g.ID, &g.Name, &city, &notes, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return gym.Gym{}, err
		}
		return gym.Gym{}, fmt.Errorf("scan gym: %w", err)
	}

	ts, err := gym.ParseTimestamp(createdAt)
	if err != nil {
		return gym.Gym{}, fmt.Errorf("scan gym %s: %w", g.ID, err)
	}
	g.CreatedAt = ts
	if city.Valid && city.String != "" {
		g.City = gym.Optional(city.String)
	}
	if notes.Valid && notes.String != "" {
		g.Notes = gym.Optional(notes.String)
	}
	return g, nil
}

func nullable(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
