package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"faceit-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type RatingRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewRatingRepository(sqlDB *sql.DB, logger zerolog.Logger) *RatingRepository {
	return &RatingRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// GetPeriodTable loads one rolling snapshot table. An empty table is not
// an error.
func (r *RatingRepository) GetPeriodTable(ctx context.Context, period domain.Period) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT player_id, rating FROM period_ratings WHERE period = ?`, string(period))
	if err != nil {
		return nil, fmt.Errorf("failed to query period table %s: %w", period, err)
	}
	defer rows.Close()

	table := make(map[string]int)
	for rows.Next() {
		var playerID string
		var rating int
		if err := rows.Scan(&playerID, &rating); err != nil {
			return nil, fmt.Errorf("failed to scan period row: %w", err)
		}
		table[playerID] = rating
	}
	return table, rows.Err()
}

// SavePeriodTable replaces one rolling snapshot table atomically.
func (r *RatingRepository) SavePeriodTable(ctx context.Context, period domain.Period, table map[string]int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM period_ratings WHERE period = ?`, string(period)); err != nil {
		return fmt.Errorf("failed to clear period table %s: %w", period, err)
	}
	for playerID, rating := range table {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO period_ratings (period, player_id, rating) VALUES (?, ?, ?)`,
			string(period), playerID, rating); err != nil {
			return fmt.Errorf("failed to insert period row for %s: %w", playerID, err)
		}
	}

	r.logger.Debug().Str("period", string(period)).Int("rows", len(table)).Msg("period table saved")
	return tx.Commit()
}

// GetPeriodMeta returns the period's last-updated marker. Absent or
// unreadable markers are reported as missing, never as errors, so the
// reconciler falls back to its first-run path.
func (r *RatingRepository) GetPeriodMeta(ctx context.Context, period domain.Period) (string, bool) {
	var updatedOn string
	err := r.db.QueryRowContext(ctx,
		`SELECT updated_on FROM period_meta WHERE period = ?`, string(period)).Scan(&updatedOn)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		r.logger.Warn().Err(err).Str("period", string(period)).Msg("unreadable period marker, treating as absent")
		return "", false
	}
	if updatedOn == "" {
		return "", false
	}
	return updatedOn, true
}

func (r *RatingRepository) SetPeriodMeta(ctx context.Context, period domain.Period, updatedOn string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO period_meta (period, updated_on) VALUES (?, ?)
		 ON CONFLICT(period) DO UPDATE SET updated_on = excluded.updated_on`,
		string(period), updatedOn)
	if err != nil {
		return fmt.Errorf("failed to set period marker %s: %w", period, err)
	}
	return nil
}

// GetLatestRatings loads the global current-rating table.
func (r *RatingRepository) GetLatestRatings(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT player_id, rating FROM latest_ratings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest ratings: %w", err)
	}
	defer rows.Close()

	ratings := make(map[string]int)
	for rows.Next() {
		var playerID string
		var rating int
		if err := rows.Scan(&playerID, &rating); err != nil {
			return nil, fmt.Errorf("failed to scan latest rating: %w", err)
		}
		ratings[playerID] = rating
	}
	return ratings, rows.Err()
}

// SaveLatestRatings rewrites the global current-rating table from the
// profiles fetched this run.
func (r *RatingRepository) SaveLatestRatings(ctx context.Context, profiles []domain.Profile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, p := range profiles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO latest_ratings (player_id, nickname, rating, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(player_id) DO UPDATE SET nickname = excluded.nickname,
			                                      rating = excluded.rating,
			                                      updated_at = excluded.updated_at`,
			p.PlayerID, p.Nickname, p.Rating, now); err != nil {
			return fmt.Errorf("failed to upsert latest rating for %s: %w", p.PlayerID, err)
		}
	}

	r.logger.Debug().Int("rows", len(profiles)).Msg("latest ratings saved")
	return tx.Commit()
}
