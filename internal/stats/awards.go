package stats

import (
	"fmt"

	"faceit-tracker/internal/domain"
)

// ComputeAwards scans the per-player results and hands out the summary
// awards. Only players with at least one stat-bearing match compete, and
// ties go to the first player encountered.
func ComputeAwards(results []domain.PlayerResult) []domain.Award {
	active := make([]domain.PlayerResult, 0, len(results))
	for _, r := range results {
		if r.Snapshot.Recent.Matches > 0 {
			active = append(active, r)
		}
	}
	if len(active) == 0 {
		return nil
	}

	awards := make([]domain.Award, 0, 6)

	if w, v := pickMax(active, func(r domain.PlayerResult) float64 {
		return kdValue(r.Snapshot.Recent.Kills, r.Snapshot.Recent.Deaths)
	}); w != nil {
		awards = append(awards, domain.Award{Title: "Best K/D", Nickname: w.Profile.Nickname, Value: fmt.Sprintf("%.2f", v)})
	}
	if w, v := pickMax(active, func(r domain.PlayerResult) float64 {
		return float64(r.Snapshot.Recent.HSPercent)
	}); w != nil {
		awards = append(awards, domain.Award{Title: "Best Headshot %", Nickname: w.Profile.Nickname, Value: fmt.Sprintf("%d%%", int(v))})
	}
	if w, v := pickMax(active, func(r domain.PlayerResult) float64 {
		return r.Snapshot.Recent.ADR
	}); w != nil {
		awards = append(awards, domain.Award{Title: "Best ADR", Nickname: w.Profile.Nickname, Value: fmt.Sprintf("%.1f", v)})
	}
	if w, v := pickMax(active, func(r domain.PlayerResult) float64 {
		return float64(r.Snapshot.Recent.WinratePct)
	}); w != nil {
		awards = append(awards, domain.Award{Title: "Best Winrate", Nickname: w.Profile.Nickname, Value: fmt.Sprintf("%d%%", int(v))})
	}
	if w, v := pickMax(active, func(r domain.PlayerResult) float64 {
		if r.Snapshot.Streak.Type != domain.StreakWin {
			return 0
		}
		return float64(r.Snapshot.Streak.Count)
	}); w != nil && v > 0 {
		awards = append(awards, domain.Award{Title: "Longest Win Streak", Nickname: w.Profile.Nickname, Value: fmt.Sprintf("%d", int(v))})
	}
	if w, v := pickMin(active, func(r domain.PlayerResult) float64 {
		return float64(r.Snapshot.Recent.Deaths)
	}); w != nil {
		awards = append(awards, domain.Award{Title: "Fewest Deaths", Nickname: w.Profile.Nickname, Value: fmt.Sprintf("%d", int(v))})
	}

	return awards
}

// pickMax returns the first player whose value strictly exceeds all seen
// before it.
func pickMax(results []domain.PlayerResult, value func(domain.PlayerResult) float64) (*domain.PlayerResult, float64) {
	if len(results) == 0 {
		return nil, 0
	}
	best := &results[0]
	bestV := value(results[0])
	for i := 1; i < len(results); i++ {
		if v := value(results[i]); v > bestV {
			best = &results[i]
			bestV = v
		}
	}
	return best, bestV
}

func pickMin(results []domain.PlayerResult, value func(domain.PlayerResult) float64) (*domain.PlayerResult, float64) {
	if len(results) == 0 {
		return nil, 0
	}
	best := &results[0]
	bestV := value(results[0])
	for i := 1; i < len(results); i++ {
		if v := value(results[i]); v < bestV {
			best = &results[i]
			bestV = v
		}
	}
	return best, bestV
}

func kdValue(kills, deaths int) float64 {
	if deaths == 0 {
		return float64(kills)
	}
	return float64(kills) / float64(deaths)
}
