package api

import (
	"strconv"
	"strings"

	"faceit-tracker/internal/domain"
)

// Lifetime block keys as FACEIT spells them.
const (
	lifetimeWinrateKey = "Win Rate %"
	lifetimeMatchesKey = "Matches"
)

// NormalizeProfile folds the player and lifetime responses into a domain
// profile. lifetime may be nil on upstream failure.
func NormalizeProfile(p *PlayerResponse, lifetime *LifetimeStatsResponse) domain.Profile {
	profile := domain.Profile{
		PlayerID:   p.PlayerID,
		Nickname:   p.Nickname,
		Avatar:     p.Avatar,
		ProfileURL: strings.Replace(p.FaceitURL, "{lang}", "en", 1),
		SkillLevel: p.Games.CS2.SkillLevel,
		Rating:     p.Games.CS2.FaceitElo,
	}
	if lifetime != nil {
		profile.LifetimeWinrate = atoi(lifetime.Lifetime[lifetimeWinrateKey])
		profile.LifetimeMatches = atoi(lifetime.Lifetime[lifetimeMatchesKey])
	}
	return profile
}

// NormalizeHistory maps raw history items, keeping the upstream
// newest-first order and skipping unfinished entries.
func NormalizeHistory(items []MatchHistoryItem) []domain.MatchHistoryItem {
	out := make([]domain.MatchHistoryItem, 0, len(items))
	for _, it := range items {
		if it.Status != "" && !strings.EqualFold(it.Status, "finished") {
			continue
		}
		teams := make(map[string]domain.Roster, len(it.Teams))
		for side, faction := range it.Teams {
			roster := domain.Roster{Players: make([]domain.RosterPlayer, 0, len(faction.Players))}
			for _, p := range faction.Players {
				roster.Players = append(roster.Players, domain.RosterPlayer{
					PlayerID:   p.PlayerID,
					Nickname:   p.Nickname,
					ProfileURL: strings.Replace(p.FaceitURL, "{lang}", "en", 1),
					Avatar:     p.Avatar,
				})
			}
			teams[side] = roster
		}
		out = append(out, domain.MatchHistoryItem{
			MatchID:     it.MatchID,
			FinishedAt:  it.FinishedAt,
			Teams:       teams,
			WinningSide: it.Results.Winner,
		})
	}
	return out
}

// NormalizeMatchStats maps a per-match stats response into the tagged
// domain shape. Any response without a usable scoreboard degrades to the
// map-only placeholder; a nil response degrades to the unknown-map
// placeholder.
func NormalizeMatchStats(resp *MatchStatsResponse) domain.MatchStats {
	if resp == nil || len(resp.Rounds) == 0 {
		return domain.MatchStats{}
	}

	round := resp.Rounds[0]
	stats := domain.MatchStats{
		Map:   round.RoundStats.Map,
		Score: round.RoundStats.Score,
	}

	rounds := atoi(round.RoundStats.Rounds)
	players := make(map[string]domain.PlayerMatchStats)
	for _, team := range round.Teams {
		for _, p := range team.Players {
			if p.PlayerID == "" || len(p.PlayerStats) == 0 {
				continue
			}
			players[p.PlayerID] = domain.PlayerMatchStats{
				Kills:        atoi(p.PlayerStats["Kills"]),
				Deaths:       atoi(p.PlayerStats["Deaths"]),
				Assists:      atoi(p.PlayerStats["Assists"]),
				ADR:          atof(p.PlayerStats["ADR"]),
				Headshots:    atoi(p.PlayerStats["Headshots"]),
				HeadshotPct:  atoi(p.PlayerStats["Headshots %"]),
				MVPs:         atoi(p.PlayerStats["MVPs"]),
				RoundsPlayed: rounds,
			}
		}
	}
	if len(players) == 0 {
		return stats
	}

	stats.Complete = true
	stats.Players = players
	return stats
}

// NormalizeRatingHistory keeps the raw telemetry shape; parsing and
// reordering belong to the aggregator.
func NormalizeRatingHistory(items []RatingHistoryItem) []domain.RawRatingPoint {
	out := make([]domain.RawRatingPoint, 0, len(items))
	for _, it := range items {
		out = append(out, domain.RawRatingPoint{
			DateMs: it.Date.String(),
			Elo:    it.Elo,
			Delta:  it.EloDelta,
		})
	}
	return out
}

// atoi coerces malformed numerics to zero rather than propagating errors.
func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func atof(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
