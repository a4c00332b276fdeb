// Package notify decides which freshly seen matches are worth announcing
// and carries them to the chat transport.
package notify

import (
	"time"

	"faceit-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// Gate compares each player's newest match against the persisted
// last-announced state and emits events for genuinely new matches.
type Gate struct {
	state        *domain.NotificationState
	comparisonTs int64
	logger       zerolog.Logger
}

// NewGate builds the per-run gate. The comparison threshold depends on
// what state survived from earlier runs: a brand-new install announces
// nothing historical, legacy state without a run timestamp falls back to
// the grace window, and normal state uses the prior run's start time.
func NewGate(state *domain.NotificationState, stateExists bool, runStart time.Time, grace time.Duration, logger zerolog.Logger) *Gate {
	var comparisonTs int64
	switch {
	case !stateExists:
		comparisonTs = runStart.Unix()
	case state.LastRunTs == 0:
		comparisonTs = runStart.Add(-grace).Unix()
	default:
		comparisonTs = state.LastRunTs
	}
	return &Gate{
		state:        state,
		comparisonTs: comparisonTs,
		logger:       logger.With().Str("component", "notify-gate").Logger(),
	}
}

// ComparisonTs exposes the active threshold, mostly for logging.
func (g *Gate) ComparisonTs() int64 {
	return g.comparisonTs
}

// Evaluate inspects one player's snapshot. It returns a MatchEvent when
// the newest match should be announced, and nil otherwise. The stored
// last-announced id advances whenever the newest match changed, even when
// the announcement itself is suppressed, so re-runs stay quiet.
func (g *Gate) Evaluate(result domain.PlayerResult, history []domain.MatchHistoryItem, tracked map[string]string) *domain.MatchEvent {
	snapshot := result.Snapshot
	if len(snapshot.Matches) == 0 {
		return nil
	}
	latest := snapshot.Matches[0]

	playerID := result.Profile.PlayerID
	if g.state.LastMatch[playerID] == latest.MatchID {
		return nil
	}
	g.state.LastMatch[playerID] = latest.MatchID

	if latest.Date <= g.comparisonTs {
		g.logger.Debug().
			Str("player_id", playerID).
			Str("match_id", latest.MatchID).
			Int64("finished_at", latest.Date).
			Int64("comparison_ts", g.comparisonTs).
			Msg("match predates comparison threshold, suppressed")
		return nil
	}

	eventID, err := gonanoid.New()
	if err != nil {
		eventID = latest.MatchID
	}

	return &domain.MatchEvent{
		EventID:     eventID,
		PlayerID:    playerID,
		Nickname:    result.Profile.Nickname,
		Match:       latest,
		RatingDelta: latestRatingDelta(snapshot.RatingHistory),
		Teammates:   trackedParticipants(playerID, latest.MatchID, history, tracked),
	}
}

// latestRatingDelta is the difference between the two most recent rating
// points, or nil when fewer than two exist.
func latestRatingDelta(history []domain.RatingPoint) *int {
	if len(history) < 2 {
		return nil
	}
	delta := history[len(history)-1].Rating - history[len(history)-2].Rating
	return &delta
}

// trackedParticipants lists nicknames of tracked players (excluding the
// subject) who took part in the match.
func trackedParticipants(playerID, matchID string, history []domain.MatchHistoryItem, tracked map[string]string) []string {
	for _, item := range history {
		if item.MatchID != matchID {
			continue
		}
		var names []string
		for _, roster := range item.Teams {
			for _, p := range roster.Players {
				if p.PlayerID == playerID {
					continue
				}
				if nick, ok := tracked[p.PlayerID]; ok {
					names = append(names, nick)
				}
			}
		}
		return names
	}
	return nil
}
