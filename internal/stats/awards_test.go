package stats

import (
	"testing"

	"faceit-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playerResult(nick string, recent domain.RecentStats, streak domain.Streak) domain.PlayerResult {
	return domain.PlayerResult{
		Profile:  domain.Profile{PlayerID: nick, Nickname: nick},
		Snapshot: domain.PlayerStatsSnapshot{Recent: recent, Streak: streak},
	}
}

func awardByTitle(t *testing.T, awards []domain.Award, title string) domain.Award {
	t.Helper()
	for _, a := range awards {
		if a.Title == title {
			return a
		}
	}
	t.Fatalf("award %q not found", title)
	return domain.Award{}
}

func TestComputeAwards_NoActivePlayers(t *testing.T) {
	results := []domain.PlayerResult{
		playerResult("idle", domain.RecentStats{}, domain.Streak{Type: domain.StreakNone}),
	}
	assert.Nil(t, ComputeAwards(results))
}

func TestComputeAwards_Winners(t *testing.T) {
	results := []domain.PlayerResult{
		playerResult("alpha", domain.RecentStats{
			Matches: 10, Kills: 150, Deaths: 100, ADR: 85.5, HSPercent: 40, WinratePct: 60,
		}, domain.Streak{Type: domain.StreakWin, Count: 4}),
		playerResult("bravo", domain.RecentStats{
			Matches: 10, Kills: 200, Deaths: 100, ADR: 80.0, HSPercent: 55, WinratePct: 50,
		}, domain.Streak{Type: domain.StreakLoss, Count: 2}),
		playerResult("idle", domain.RecentStats{}, domain.Streak{Type: domain.StreakNone}),
	}

	awards := ComputeAwards(results)
	require.NotEmpty(t, awards)

	assert.Equal(t, "bravo", awardByTitle(t, awards, "Best K/D").Nickname)
	assert.Equal(t, "bravo", awardByTitle(t, awards, "Best Headshot %").Nickname)
	assert.Equal(t, "alpha", awardByTitle(t, awards, "Best ADR").Nickname)
	assert.Equal(t, "alpha", awardByTitle(t, awards, "Best Winrate").Nickname)
	assert.Equal(t, "alpha", awardByTitle(t, awards, "Longest Win Streak").Nickname)
	assert.Equal(t, "alpha", awardByTitle(t, awards, "Fewest Deaths").Nickname)
}

func TestComputeAwards_TiesGoToFirstEncountered(t *testing.T) {
	recent := domain.RecentStats{Matches: 5, Kills: 100, Deaths: 80, ADR: 75, HSPercent: 45, WinratePct: 55}
	results := []domain.PlayerResult{
		playerResult("first", recent, domain.Streak{Type: domain.StreakWin, Count: 2}),
		playerResult("second", recent, domain.Streak{Type: domain.StreakWin, Count: 2}),
	}

	awards := ComputeAwards(results)
	for _, a := range awards {
		assert.Equal(t, "first", a.Nickname, "%s should go to the first player on a tie", a.Title)
	}
}

func TestComputeAwards_NoWinStreakOmitsAward(t *testing.T) {
	results := []domain.PlayerResult{
		playerResult("down", domain.RecentStats{Matches: 3, Kills: 30, Deaths: 40}, domain.Streak{Type: domain.StreakLoss, Count: 3}),
	}

	awards := ComputeAwards(results)
	for _, a := range awards {
		assert.NotEqual(t, "Longest Win Streak", a.Title)
	}
}
