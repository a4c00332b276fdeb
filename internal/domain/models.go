package domain

// Profile is the player identity as reported by the stats API, enriched
// with lifetime aggregates.
type Profile struct {
	PlayerID   string
	Nickname   string
	Avatar     string
	ProfileURL string
	SkillLevel int
	Rating     int

	LifetimeWinrate int
	LifetimeMatches int
}

// RosterPlayer is one participant on one side of a match.
type RosterPlayer struct {
	PlayerID   string
	Nickname   string
	ProfileURL string
	Avatar     string
}

// Roster is the set of players on one side.
type Roster struct {
	Players []RosterPlayer
}

// MatchHistoryItem is one entry of a player's match history, newest-first.
type MatchHistoryItem struct {
	MatchID    string
	FinishedAt int64 // epoch seconds
	Teams      map[string]Roster
	// WinningSide names the key in Teams that won; empty when unknown.
	WinningSide string
}

// PlayerMatchStats is one player's line from a single match scoreboard.
type PlayerMatchStats struct {
	Kills        int
	Deaths       int
	Assists      int
	ADR          float64
	Headshots    int
	HeadshotPct  int
	MVPs         int
	RoundsPlayed int
}

// MatchStats is the normalized per-match scoreboard. When the upstream
// per-match endpoint degrades, Complete is false and only Map carries
// information; Players must not be consulted.
type MatchStats struct {
	Map      string
	Score    string
	Complete bool
	Players  map[string]PlayerMatchStats
}

// RatingPoint is one point of the rating-history curve, oldest-first once
// normalized.
type RatingPoint struct {
	Timestamp int64 // epoch seconds
	Rating    int
	Delta     *int
}

// RawRatingPoint is rating telemetry as delivered upstream: newest-first,
// millisecond dates, numerics as strings. Malformed entries are dropped
// during normalization.
type RawRatingPoint struct {
	DateMs string
	Elo    string
	Delta  string
}

// RecentStats aggregates the recent-window totals.
type RecentStats struct {
	Kills      int
	Deaths     int
	Assists    int
	KD         string
	ADR        float64
	HSPercent  int
	KR         string
	WinratePct int
	Matches    int
}

const (
	StreakWin  = "win"
	StreakLoss = "loss"
	StreakNone = "none"
)

// Streak is the run of identical results counting from the newest match.
type Streak struct {
	Type  string
	Count int
}

// MapStats aggregates outcomes and personal performance on one map.
type MapStats struct {
	Name       string
	Wins       int
	Losses     int
	Matches    int
	WinratePct int
	KD         string
}

// TeammateStats is the affinity record for one co-player.
type TeammateStats struct {
	PlayerID   string
	Nickname   string
	ProfileURL string
	Avatar     string
	Played     int
	Wins       int
	Losses     int
	WinratePct int
}

// MatchRecord is one row of the per-match detail log, newest-first.
type MatchRecord struct {
	MatchID   string
	Date      int64 // epoch seconds
	Result    string
	Map       string
	Score     string
	Kills     int
	Deaths    int
	Assists   int
	ADR       float64
	HSPercent int
	MVPs      int
	KD        string
}

// PlayerStatsSnapshot is the consolidated statistics for one player,
// rebuilt from scratch every run.
type PlayerStatsSnapshot struct {
	Recent        RecentStats
	Streak        Streak
	Last5         []string
	Maps          []MapStats
	Teammates     []TeammateStats
	RatingHistory []RatingPoint
	Matches       []MatchRecord
}

// PlayerResult pairs a profile with its computed snapshot for rendering.
type PlayerResult struct {
	Profile  Profile
	Snapshot PlayerStatsSnapshot
}

// Award is one entry of the summary block.
type Award struct {
	Title    string
	Nickname string
	Value    string
}

// NotificationState is the persisted between-runs gate state.
type NotificationState struct {
	LastRunTs int64
	// LastMatch maps player id to the last announced match id.
	LastMatch map[string]string
}

// MatchEvent is the structured payload handed to the notification
// transport when a player's newest match clears the gate.
type MatchEvent struct {
	EventID     string
	PlayerID    string
	Nickname    string
	Match       MatchRecord
	RatingDelta *int
	// Teammates lists nicknames of tracked players who shared the match.
	Teammates []string
}
