package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"wordmark/db"
)

// StateRepository stores session state in the design_state table
type StateRepository struct{}

// NewStateRepository creates a new StateRepository
func NewStateRepository() *StateRepository {
	return &StateRepository{}
}

// Ensure StateRepository implements StateRepositoryInterface
var _ StateRepositoryInterface = (*StateRepository)(nil)

// Load retrieves the value stored for a session key
func (r *StateRepository) Load(ctx context.Context, sessionID, key string) ([]byte, error) {
	query := `SELECT value FROM design_state WHERE session_id = $1 AND state_key = $2`

	var value []byte
	err := db.DB.QueryRowContext(ctx, query, sessionID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Printf("❌ Error loading %s for session %s: %v", key, sessionID, err)
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return value, nil
}

// Save upserts the value for a session key
func (r *StateRepository) Save(ctx context.Context, sessionID, key string, value []byte) error {
	query := `
		INSERT INTO design_state (session_id, state_key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (session_id, state_key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`

	if _, err := db.DB.ExecContext(ctx, query, sessionID, key, string(value)); err != nil {
		log.Printf("❌ Error saving %s for session %s: %v", key, sessionID, err)
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Delete removes every key of a session
func (r *StateRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := db.DB.ExecContext(ctx, `DELETE FROM design_state WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

// ListSessions returns the ids of all stored sessions, most recently updated first
func (r *StateRepository) ListSessions(ctx context.Context) ([]string, error) {
	query := `
		SELECT session_id
		FROM design_state
		GROUP BY session_id
		ORDER BY MAX(updated_at) DESC
	`

	rows, err := db.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return ids, nil
}
