package repository

import (
	"context"
	"database/sql"
	"fmt"

	"faceit-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type StateRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewStateRepository(sqlDB *sql.DB, logger zerolog.Logger) *StateRepository {
	return &StateRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// LoadNotificationState returns the persisted gate state and whether any
// state existed at all. LastRunTs stays zero for legacy state written
// before the run timestamp was introduced.
func (r *StateRepository) LoadNotificationState(ctx context.Context) (*domain.NotificationState, bool, error) {
	state := &domain.NotificationState{LastMatch: make(map[string]string)}
	exists := false

	var lastRunTs int64
	err := r.db.QueryRowContext(ctx, `SELECT last_run_ts FROM run_state WHERE id = 1`).Scan(&lastRunTs)
	switch {
	case err == sql.ErrNoRows:
		// no run marker yet
	case err != nil:
		r.logger.Warn().Err(err).Msg("unreadable run marker, treating as absent")
	default:
		state.LastRunTs = lastRunTs
		exists = true
	}

	rows, err := r.db.QueryContext(ctx, `SELECT player_id, last_match_id FROM notification_state`)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query notification state: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var playerID, matchID string
		if err := rows.Scan(&playerID, &matchID); err != nil {
			return nil, false, fmt.Errorf("failed to scan notification state: %w", err)
		}
		state.LastMatch[playerID] = matchID
		exists = true
	}
	return state, exists, rows.Err()
}

// SaveNotificationState persists the gate state for the next run.
func (r *StateRepository) SaveNotificationState(ctx context.Context, state *domain.NotificationState) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO run_state (id, last_run_ts) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET last_run_ts = excluded.last_run_ts`,
		state.LastRunTs); err != nil {
		return fmt.Errorf("failed to upsert run marker: %w", err)
	}

	for playerID, matchID := range state.LastMatch {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO notification_state (player_id, last_match_id) VALUES (?, ?)
			 ON CONFLICT(player_id) DO UPDATE SET last_match_id = excluded.last_match_id`,
			playerID, matchID); err != nil {
			return fmt.Errorf("failed to upsert notification state for %s: %w", playerID, err)
		}
	}

	r.logger.Debug().Int("players", len(state.LastMatch)).Int64("last_run_ts", state.LastRunTs).Msg("notification state saved")
	return tx.Commit()
}
