package constants

import "time"

const (
	// MatchHistoryLimit caps how many recent matches we pull per player.
	MatchHistoryLimit = 30

	// RecentWindow is the number of most-recent matches with usable stats
	// that feed the aggregate totals.
	RecentWindow = 30

	// LastResultsLimit is the length of the short-form result sequence.
	LastResultsLimit = 5
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RunTimeout         = 5 * time.Minute
)

const (
	// FetchConcurrency bounds the per-player fan-out against the stats API.
	FetchConcurrency = 3

	APIMaxRetries     = 3
	APIRetryBaseDelay = 500 * time.Millisecond
)

const (
	// MatchStatsCacheTTL is month-scale: finished match stats never change.
	MatchStatsCacheTTL     = 30 * 24 * time.Hour
	MatchStatsCacheCleanup = 24 * time.Hour
)

const (
	DBMaxOpenConns    = 1
	DBBusyTimeoutMS   = 5000
	DBConnMaxLifetime = 1 * time.Hour
)

const (
	// DefaultNotifyGraceWindow covers one missed scheduled run when
	// migrating legacy notification state without a last-run timestamp.
	DefaultNotifyGraceWindow = 24 * time.Hour
)
