package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/coursesearch/internal/core/ports/driven"
)

// preferenceStore implements driven.PreferenceStore.
type preferenceStore struct {
	store *Store
}

var _ driven.PreferenceStore = (*preferenceStore)(nil)

// SetPreference stores value under key. A nil value deletes the key.
func (s *preferenceStore) SetPreference(ctx context.Context, key string, value *string) error {
	if value == nil {
		if _, err := s.store.db.ExecContext(ctx, "DELETE FROM preferences WHERE name = ?", key); err != nil {
			return fmt.Errorf("deleting preference %s: %w", key, err)
		}
		return nil
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO preferences (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, *value, s.store.clock().Unix())
	if err != nil {
		return fmt.Errorf("saving preference %s: %w", key, err)
	}
	return nil
}

// Preference returns the value stored under key.
func (s *preferenceStore) Preference(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.store.db.QueryRowContext(ctx, "SELECT value FROM preferences WHERE name = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading preference %s: %w", key, err)
	}
	return value, true, nil
}
