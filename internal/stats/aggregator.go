// Package stats turns a raw, possibly-incomplete match history into a
// consolidated per-player statistics snapshot.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"faceit-tracker/internal/constants"
	"faceit-tracker/internal/domain"
)

// UnknownMap buckets history items whose map could not be resolved.
const UnknownMap = "Unknown"

// maxKDSentinel stands in for a deathless match with kills.
const maxKDSentinel = "10.0"

// ComputeSnapshot consolidates a player's match history, per-match stats
// and raw rating telemetry into a statistics snapshot. Pure function of
// its inputs: missing or degraded per-match stats skip personal
// accumulation but still count toward outcomes and map buckets, and
// malformed numerics coerce to zero.
func ComputeSnapshot(playerID string, history []domain.MatchHistoryItem, statsByMatch map[string]domain.MatchStats, rawRating []domain.RawRatingPoint) domain.PlayerStatsSnapshot {
	var (
		kills, deaths, assists int
		headshots, rounds      int
		adrSum                 float64
		processed              int
		wins                   int
	)

	results := make([]string, 0, len(history))
	records := make([]domain.MatchRecord, 0, len(history))
	mapAgg := make(map[string]*mapAccumulator)
	mapOrder := make([]string, 0)
	mates := make(map[string]*domain.TeammateStats)

	for _, item := range history {
		matchStats, hasStats := statsByMatch[item.MatchID]

		line, hasLine := domain.PlayerMatchStats{}, false
		if hasStats && matchStats.Complete {
			line, hasLine = matchStats.Players[playerID]
		}

		side, onRoster := findSide(playerID, item.Teams)
		won := onRoster && item.WinningSide != "" && side == item.WinningSide
		if won {
			wins++
		}

		symbol := "L"
		if won {
			symbol = "W"
		}
		results = append(results, symbol)

		// Teammate attribution needs both a resolved side and a known
		// outcome.
		if onRoster && item.WinningSide != "" {
			for _, p := range item.Teams[side].Players {
				if p.PlayerID == playerID {
					continue
				}
				m, seen := mates[p.PlayerID]
				if !seen {
					m = &domain.TeammateStats{
						PlayerID:   p.PlayerID,
						Nickname:   p.Nickname,
						ProfileURL: p.ProfileURL,
						Avatar:     p.Avatar,
					}
					mates[p.PlayerID] = m
				}
				m.Played++
				if won {
					m.Wins++
				} else {
					m.Losses++
				}
			}
		}

		mapName := UnknownMap
		if hasStats && strings.TrimSpace(matchStats.Map) != "" {
			mapName = strings.TrimSpace(matchStats.Map)
		}
		agg, seen := mapAgg[mapName]
		if !seen {
			agg = &mapAccumulator{}
			mapAgg[mapName] = agg
			mapOrder = append(mapOrder, mapName)
		}
		agg.matches++
		if won {
			agg.wins++
		} else {
			agg.losses++
		}

		if hasLine && processed < constants.RecentWindow {
			kills += line.Kills
			deaths += line.Deaths
			assists += line.Assists
			headshots += line.Headshots
			rounds += line.RoundsPlayed
			adrSum += line.ADR
			processed++

			agg.kills += line.Kills
			agg.deaths += line.Deaths
		}

		record := domain.MatchRecord{
			MatchID: item.MatchID,
			Date:    item.FinishedAt,
			Result:  symbol,
			Map:     mapName,
			KD:      "0.00",
		}
		if hasStats {
			record.Score = matchStats.Score
		}
		if hasLine {
			record.Kills = line.Kills
			record.Deaths = line.Deaths
			record.Assists = line.Assists
			record.ADR = line.ADR
			record.HSPercent = line.HeadshotPct
			record.MVPs = line.MVPs
			record.KD = matchKD(line.Kills, line.Deaths)
		}
		records = append(records, record)
	}

	recent := domain.RecentStats{
		Kills:   kills,
		Deaths:  deaths,
		Assists: assists,
		KD:      formatRatio(kills, deaths),
		KR:      formatRatio(kills, rounds),
		Matches: processed,
	}
	if processed > 0 {
		recent.ADR = adrSum / float64(processed)
	}
	if kills > 0 {
		recent.HSPercent = roundPct(headshots, kills)
	}
	if len(results) > 0 {
		recent.WinratePct = roundPct(wins, len(results))
	}

	return domain.PlayerStatsSnapshot{
		Recent:        recent,
		Streak:        computeStreak(results),
		Last5:         lastResults(results, constants.LastResultsLimit),
		Maps:          buildMapStats(mapAgg, mapOrder),
		Teammates:     buildTeammates(mates),
		RatingHistory: TransformRatingHistory(rawRating),
		Matches:       records,
	}
}

type mapAccumulator struct {
	wins, losses, matches int
	kills, deaths         int
}

// findSide locates the side whose roster contains the player.
func findSide(playerID string, teams map[string]domain.Roster) (string, bool) {
	sides := make([]string, 0, len(teams))
	for side := range teams {
		sides = append(sides, side)
	}
	sort.Strings(sides)
	for _, side := range sides {
		for _, p := range teams[side].Players {
			if p.PlayerID == playerID {
				return side, true
			}
		}
	}
	return "", false
}

// computeStreak counts consecutive identical results from the newest match.
func computeStreak(results []string) domain.Streak {
	if len(results) == 0 {
		return domain.Streak{Type: domain.StreakNone}
	}
	count := 1
	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			break
		}
		count++
	}
	kind := domain.StreakLoss
	if results[0] == "W" {
		kind = domain.StreakWin
	}
	return domain.Streak{Type: kind, Count: count}
}

func lastResults(results []string, n int) []string {
	if len(results) < n {
		n = len(results)
	}
	out := make([]string, n)
	copy(out, results[:n])
	return out
}

func buildMapStats(agg map[string]*mapAccumulator, order []string) []domain.MapStats {
	out := make([]domain.MapStats, 0, len(agg))
	for _, name := range order {
		a := agg[name]
		out = append(out, domain.MapStats{
			Name:       name,
			Wins:       a.wins,
			Losses:     a.losses,
			Matches:    a.matches,
			WinratePct: roundPct(a.wins, a.matches),
			KD:         formatRatio(a.kills, a.deaths),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Matches > out[j].Matches
	})
	return out
}

func buildTeammates(mates map[string]*domain.TeammateStats) []domain.TeammateStats {
	out := make([]domain.TeammateStats, 0, len(mates))
	for _, m := range mates {
		if m.Nickname == "" {
			continue
		}
		m.WinratePct = roundPct(m.Wins, m.Played)
		out = append(out, *m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Played != out[j].Played {
			return out[i].Played > out[j].Played
		}
		return out[i].Nickname < out[j].Nickname
	})
	return out
}

// TransformRatingHistory normalizes raw rating telemetry: millisecond
// dates become epoch seconds, malformed entries are dropped, and the
// newest-first upstream order is reversed to oldest-first.
func TransformRatingHistory(raw []domain.RawRatingPoint) []domain.RatingPoint {
	points := make([]domain.RatingPoint, 0, len(raw))
	for _, rp := range raw {
		ms, err := strconv.ParseInt(strings.TrimSpace(rp.DateMs), 10, 64)
		if err != nil {
			continue
		}
		rating, err := strconv.Atoi(strings.TrimSpace(rp.Elo))
		if err != nil {
			continue
		}
		point := domain.RatingPoint{Timestamp: ms / 1000, Rating: rating}
		if delta, err := strconv.Atoi(strings.TrimSpace(rp.Delta)); err == nil && rp.Delta != "" {
			point.Delta = &delta
		}
		points = append(points, point)
	}
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points
}

// matchKD formats a single-match K/D, standing in a fixed sentinel for
// deathless matches with kills.
func matchKD(kills, deaths int) string {
	if deaths == 0 {
		if kills > 0 {
			return maxKDSentinel
		}
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(kills)/float64(deaths))
}

func formatRatio(num, den int) string {
	if den == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(num)/float64(den))
}

func roundPct(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
