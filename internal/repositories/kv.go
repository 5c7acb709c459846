package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tripx/internal/shared"
)

// KVRepository stores string values by key in the kv_store table.
//
// It satisfies session.Storage so identity keys survive restarts.
type KVRepository struct {
	db *sql.DB
}

// NewKVRepository creates a new [KVRepository] with the given database connection
func NewKVRepository(db *sql.DB) *KVRepository {
	return &KVRepository{db: db}
}

// Get returns the value for key. A missing key reports ok=false with a nil error.
func (r *KVRepository) Get(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM kv_store WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: failed to read %s: %v", shared.ErrStorage, key, err)
	}
	return value, true, nil
}

// Set inserts or replaces the value for key.
func (r *KVRepository) Set(key, value string) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", shared.ErrStorage, key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *KVRepository) Delete(key string) error {
	if _, err := r.db.Exec("DELETE FROM kv_store WHERE key = ?", key); err != nil {
		return fmt.Errorf("%w: failed to delete %s: %v", shared.ErrStorage, key, err)
	}
	return nil
}

// Keys lists every stored key in lexical order.
func (r *KVRepository) Keys() ([]string, error) {
	rows, err := r.db.Query("SELECT key FROM kv_store ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list keys: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%w: failed to scan key: %v", shared.ErrStorage, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	return keys, nil
}
