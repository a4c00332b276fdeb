package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faceit-tracker/internal/config"
	"faceit-tracker/internal/domain"
)

func renderedPage(t *testing.T, page *Page) string {
	t.Helper()
	dir := t.TempDir()
	r, err := NewRenderer(&config.Config{OutputDir: dir}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, r.Render(page))

	body, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	return string(body)
}

func TestRenderIncludesLifetimeStats(t *testing.T) {
	page := &Page{
		GeneratedAt: time.Unix(1_700_000_000, 0),
		Players: []domain.PlayerResult{{
			Profile: domain.Profile{
				Nickname:        "nick",
				Rating:          1720,
				LifetimeWinrate: 52,
				LifetimeMatches: 812,
			},
			Snapshot: domain.PlayerStatsSnapshot{
				Streak: domain.Streak{Type: domain.StreakNone},
			},
		}},
	}

	body := renderedPage(t, page)

	assert.Contains(t, body, "<td>52%</td>")
	assert.Contains(t, body, "<td>812</td>")
}

func TestRenderIncludesMapAndTeammateTables(t *testing.T) {
	page := &Page{
		GeneratedAt: time.Now(),
		Players: []domain.PlayerResult{{
			Profile: domain.Profile{Nickname: "nick"},
			Snapshot: domain.PlayerStatsSnapshot{
				Streak: domain.Streak{Type: domain.StreakNone},
				Maps: []domain.MapStats{
					{Name: "de_mirage", Matches: 4, Wins: 3, Losses: 1, WinratePct: 75, KD: "1.10"},
				},
				Teammates: []domain.TeammateStats{
					{Nickname: "mate", Played: 6, Wins: 4, Losses: 2, WinratePct: 67},
				},
			},
		}},
	}

	body := renderedPage(t, page)

	assert.Contains(t, body, "de_mirage")
	assert.Contains(t, body, "<td>75%</td>")
	assert.Contains(t, body, "mate")
	assert.Contains(t, body, "<td>67%</td>")
}

func TestRenderPeriodTablesKeepDailyToYearlyOrder(t *testing.T) {
	var tables []PeriodTable
	for _, p := range domain.Periods {
		tables = append(tables, PeriodTable{Period: p})
	}
	page := &Page{GeneratedAt: time.Now(), Deltas: tables}

	body := renderedPage(t, page)

	var last int
	for _, p := range domain.Periods {
		idx := strings.Index(body, "<h2>"+string(p)+" rating</h2>")
		require.GreaterOrEqual(t, idx, 0, "period %s missing", p)
		assert.Greater(t, idx, last, "period %s out of order", p)
		last = idx
	}
}
