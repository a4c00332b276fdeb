// Package cache holds the match stats cache. Finished match scoreboards
// never change, so entries persist across runs in the state database and
// redundant network calls are avoided both within a run (players sharing
// a match) and between scheduled runs.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"faceit-tracker/internal/constants"
	"faceit-tracker/internal/domain"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

type MatchStatsCache struct {
	db     *sql.DB
	hot    *gocache.Cache
	logger zerolog.Logger
}

func NewMatchStatsCache(sqlDB *sql.DB, logger zerolog.Logger) *MatchStatsCache {
	c := &MatchStatsCache{
		db:     sqlDB,
		hot:    gocache.New(constants.MatchStatsCacheTTL, constants.MatchStatsCacheCleanup),
		logger: logger.With().Str("component", "match-stats-cache").Logger(),
	}
	c.purgeExpired()
	return c
}

// purgeExpired drops rows older than the TTL. Scoreboards never change,
// the TTL only bounds table growth as matches age out of every player's
// history window.
func (c *MatchStatsCache) purgeExpired() {
	cutoff := time.Now().Add(-constants.MatchStatsCacheTTL).Unix()
	res, err := c.db.Exec(`DELETE FROM match_stats WHERE fetched_at < ?`, cutoff)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to purge expired match stats")
		return
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		c.logger.Debug().Int64("rows", n).Msg("expired match stats purged")
	}
}

// Get serves memory-first, then the persisted table. An unreadable row is
// reported as a miss so the scoreboard is simply re-fetched.
func (c *MatchStatsCache) Get(ctx context.Context, matchID string) (domain.MatchStats, bool) {
	if v, ok := c.hot.Get(matchID); ok {
		if stats, ok := v.(domain.MatchStats); ok {
			return stats, true
		}
	}

	var mapName, score, playersJSON string
	err := c.db.QueryRowContext(ctx,
		`SELECT map, score, players FROM match_stats WHERE match_id = ?`, matchID).
		Scan(&mapName, &score, &playersJSON)
	if err == sql.ErrNoRows {
		return domain.MatchStats{}, false
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("match_id", matchID).Msg("unreadable cached match stats, treating as miss")
		return domain.MatchStats{}, false
	}

	var players map[string]domain.PlayerMatchStats
	if err := json.Unmarshal([]byte(playersJSON), &players); err != nil {
		c.logger.Warn().Err(err).Str("match_id", matchID).Msg("corrupt cached match stats, treating as miss")
		return domain.MatchStats{}, false
	}

	stats := domain.MatchStats{Map: mapName, Score: score, Complete: true, Players: players}
	c.hot.SetDefault(matchID, stats)
	return stats, true
}

// Put stores only complete scoreboards. Placeholders are not cached so a
// degraded upstream answer is retried on the next run.
func (c *MatchStatsCache) Put(ctx context.Context, matchID string, stats domain.MatchStats) {
	if !stats.Complete {
		return
	}
	c.hot.SetDefault(matchID, stats)

	payload, err := json.Marshal(stats.Players)
	if err != nil {
		c.logger.Warn().Err(err).Str("match_id", matchID).Msg("failed to encode match stats for caching")
		return
	}
	if _, err := c.db.ExecContext(ctx,
		`INSERT INTO match_stats (match_id, map, score, players, fetched_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(match_id) DO NOTHING`,
		matchID, stats.Map, stats.Score, string(payload), time.Now().Unix()); err != nil {
		c.logger.Warn().Err(err).Str("match_id", matchID).Msg("failed to persist match stats")
	}
}
