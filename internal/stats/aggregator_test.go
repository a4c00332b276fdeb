package stats

import (
	"testing"

	"faceit-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const subject = "player-1"

// makeItem builds one history entry with the subject on faction1 plus the
// given teammates, and two opponents on faction2.
func makeItem(matchID string, finishedAt int64, won bool, teammates ...domain.RosterPlayer) domain.MatchHistoryItem {
	own := append([]domain.RosterPlayer{{PlayerID: subject, Nickname: "subject"}}, teammates...)
	winner := "faction2"
	if won {
		winner = "faction1"
	}
	return domain.MatchHistoryItem{
		MatchID:    matchID,
		FinishedAt: finishedAt,
		Teams: map[string]domain.Roster{
			"faction1": {Players: own},
			"faction2": {Players: []domain.RosterPlayer{
				{PlayerID: "opp-1", Nickname: "opp1"},
				{PlayerID: "opp-2", Nickname: "opp2"},
			}},
		},
		WinningSide: winner,
	}
}

func completeStats(mapName string, kills, deaths int, adr float64) domain.MatchStats {
	return domain.MatchStats{
		Map:      mapName,
		Score:    "13 / 9",
		Complete: true,
		Players: map[string]domain.PlayerMatchStats{
			subject: {
				Kills:        kills,
				Deaths:       deaths,
				Assists:      3,
				ADR:          adr,
				Headshots:    kills / 2,
				HeadshotPct:  50,
				RoundsPlayed: 22,
			},
		},
	}
}

func TestComputeSnapshot_EmptyHistory(t *testing.T) {
	snap := ComputeSnapshot(subject, nil, nil, nil)

	assert.Equal(t, 0, snap.Recent.Matches)
	assert.Equal(t, 0, snap.Recent.Kills)
	assert.Equal(t, "0.00", snap.Recent.KD)
	assert.Equal(t, "0.00", snap.Recent.KR)
	assert.Equal(t, 0, snap.Recent.WinratePct)
	assert.Equal(t, domain.StreakNone, snap.Streak.Type)
	assert.Equal(t, 0, snap.Streak.Count)
	assert.Empty(t, snap.Last5)
	assert.Empty(t, snap.Maps)
	assert.Empty(t, snap.Teammates)
	assert.Empty(t, snap.RatingHistory)
	assert.Empty(t, snap.Matches)
}

func TestComputeSnapshot_RecentTotalsAndMapBucket(t *testing.T) {
	history := []domain.MatchHistoryItem{
		makeItem("m1", 2000, true),
		makeItem("m2", 1000, false),
	}
	statsByMatch := map[string]domain.MatchStats{
		"m1": completeStats("de_mirage", 20, 10, 90),
		"m2": completeStats("de_mirage", 15, 18, 70),
	}

	snap := ComputeSnapshot(subject, history, statsByMatch, nil)

	assert.Equal(t, 35, snap.Recent.Kills)
	assert.Equal(t, 28, snap.Recent.Deaths)
	assert.Equal(t, "1.25", snap.Recent.KD)
	assert.Equal(t, 2, snap.Recent.Matches)
	assert.InDelta(t, 80.0, snap.Recent.ADR, 1e-9)
	assert.Equal(t, 50, snap.Recent.WinratePct)

	require.Len(t, snap.Maps, 1)
	m := snap.Maps[0]
	assert.Equal(t, "de_mirage", m.Name)
	assert.Equal(t, 2, m.Matches)
	assert.Equal(t, 1, m.Wins)
	assert.Equal(t, 1, m.Losses)
	assert.Equal(t, 50, m.WinratePct)
}

func TestComputeSnapshot_PlaceholderAndMissingStats(t *testing.T) {
	history := []domain.MatchHistoryItem{
		makeItem("m1", 3000, true),
		makeItem("m2", 2000, false),
		makeItem("m3", 1000, true),
	}
	statsByMatch := map[string]domain.MatchStats{
		"m1": completeStats("de_inferno", 25, 20, 85),
		// m2 degraded to map-only, m3 missing entirely
		"m2": {Map: "de_nuke"},
	}

	snap := ComputeSnapshot(subject, history, statsByMatch, nil)

	// only m1 contributes personal stats
	assert.Equal(t, 1, snap.Recent.Matches)
	assert.Equal(t, 25, snap.Recent.Kills)

	// every item lands in exactly one map bucket
	total := 0
	names := make(map[string]int)
	for _, m := range snap.Maps {
		total += m.Matches
		names[m.Name] = m.Matches
	}
	assert.Equal(t, len(history), total)
	assert.Equal(t, 1, names["de_inferno"])
	assert.Equal(t, 1, names["de_nuke"])
	assert.Equal(t, 1, names[UnknownMap])

	// outcomes still tallied for degraded matches
	assert.Equal(t, []string{"W", "L", "W"}, snap.Last5)

	// detail log keeps degraded rows with zeroed personal stats
	require.Len(t, snap.Matches, 3)
	assert.Equal(t, 0, snap.Matches[1].Kills)
	assert.Equal(t, "0.00", snap.Matches[1].KD)
	assert.Equal(t, "de_nuke", snap.Matches[1].Map)
}

func TestComputeSnapshot_StreakAndLast5(t *testing.T) {
	cases := []struct {
		name       string
		outcomes   []bool
		streakType string
		streak     int
		last5Len   int
	}{
		{"three wins then loss", []bool{true, true, true, false}, domain.StreakWin, 3, 4},
		{"single loss", []bool{false}, domain.StreakLoss, 1, 1},
		{"six losses", []bool{false, false, false, false, false, false}, domain.StreakLoss, 6, 5},
		{"alternating", []bool{true, false, true, false, true, false, true}, domain.StreakWin, 1, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			history := make([]domain.MatchHistoryItem, len(tc.outcomes))
			for i, won := range tc.outcomes {
				history[i] = makeItem(string(rune('a'+i)), int64(1000-i), won)
			}

			snap := ComputeSnapshot(subject, history, nil, nil)

			assert.Equal(t, tc.streakType, snap.Streak.Type)
			assert.Equal(t, tc.streak, snap.Streak.Count)
			require.Len(t, snap.Last5, tc.last5Len)

			// last5 is a prefix of the outcome sequence
			for i, sym := range snap.Last5 {
				want := "L"
				if tc.outcomes[i] {
					want = "W"
				}
				assert.Equal(t, want, sym)
			}
			// the first streak.Count outcomes match last5[0]
			for i := 0; i < tc.streak && i < len(snap.Last5); i++ {
				assert.Equal(t, snap.Last5[0], snap.Last5[i])
			}
		})
	}
}

func TestComputeSnapshot_UnknownSideCountsAsLoss(t *testing.T) {
	mate := domain.RosterPlayer{PlayerID: "mate-1", Nickname: "mate"}
	item := makeItem("m1", 1000, true, mate)
	// subject missing from every roster
	item.Teams["faction1"] = domain.Roster{Players: []domain.RosterPlayer{mate}}

	snap := ComputeSnapshot(subject, []domain.MatchHistoryItem{item}, nil, nil)

	assert.Equal(t, []string{"L"}, snap.Last5)
	assert.Equal(t, domain.StreakLoss, snap.Streak.Type)
	// no teammate attribution without a resolved side
	assert.Empty(t, snap.Teammates)
}

func TestComputeSnapshot_MissingWinnerSkipsTeammates(t *testing.T) {
	mate := domain.RosterPlayer{PlayerID: "mate-1", Nickname: "mate"}
	item := makeItem("m1", 1000, true, mate)
	item.WinningSide = ""

	snap := ComputeSnapshot(subject, []domain.MatchHistoryItem{item}, nil, nil)

	assert.Equal(t, []string{"L"}, snap.Last5)
	assert.Empty(t, snap.Teammates)
}

func TestComputeSnapshot_TeammateAffinity(t *testing.T) {
	mate := domain.RosterPlayer{PlayerID: "mate-1", Nickname: "mate", Avatar: "a1"}
	mateRenamed := domain.RosterPlayer{PlayerID: "mate-1", Nickname: "renamed", Avatar: "a2"}
	nameless := domain.RosterPlayer{PlayerID: "ghost-1"}

	history := []domain.MatchHistoryItem{
		makeItem("m1", 3000, true, mate, nameless),
		makeItem("m2", 2000, false, mateRenamed),
	}

	snap := ComputeSnapshot(subject, history, nil, nil)

	require.Len(t, snap.Teammates, 1, "nameless co-players are dropped")
	tm := snap.Teammates[0]
	assert.Equal(t, "mate-1", tm.PlayerID)
	assert.Equal(t, "mate", tm.Nickname, "first sighting wins")
	assert.Equal(t, "a1", tm.Avatar)
	assert.Equal(t, 2, tm.Played)
	assert.Equal(t, 1, tm.Wins)
	assert.Equal(t, 1, tm.Losses)
	assert.Equal(t, 50, tm.WinratePct)
}

func TestComputeSnapshot_DeathlessMatchKDSentinel(t *testing.T) {
	history := []domain.MatchHistoryItem{makeItem("m1", 1000, true)}
	statsByMatch := map[string]domain.MatchStats{
		"m1": completeStats("de_dust2", 12, 0, 100),
	}

	snap := ComputeSnapshot(subject, history, statsByMatch, nil)

	require.Len(t, snap.Matches, 1)
	assert.Equal(t, "10.0", snap.Matches[0].KD)
	// aggregate KD with zero deaths stays zeroed, not the sentinel
	assert.Equal(t, "0.00", snap.Recent.KD)
}

func TestComputeSnapshot_MapsSortedByMatchesDesc(t *testing.T) {
	history := []domain.MatchHistoryItem{
		makeItem("m1", 4000, true),
		makeItem("m2", 3000, false),
		makeItem("m3", 2000, true),
	}
	statsByMatch := map[string]domain.MatchStats{
		"m1": {Map: "de_ancient"},
		"m2": {Map: "de_train"},
		"m3": {Map: "de_train"},
	}

	snap := ComputeSnapshot(subject, history, statsByMatch, nil)

	require.Len(t, snap.Maps, 2)
	assert.Equal(t, "de_train", snap.Maps[0].Name)
	assert.Equal(t, 2, snap.Maps[0].Matches)
	assert.Equal(t, "de_ancient", snap.Maps[1].Name)
}

func TestTransformRatingHistory(t *testing.T) {
	raw := []domain.RawRatingPoint{
		{DateMs: "2000", Elo: "1600"},
		{DateMs: "1000", Elo: "1550"},
	}

	points := TransformRatingHistory(raw)

	require.Len(t, points, 2)
	assert.Equal(t, int64(1), points[0].Timestamp)
	assert.Equal(t, 1550, points[0].Rating)
	assert.Equal(t, int64(2), points[1].Timestamp)
	assert.Equal(t, 1600, points[1].Rating)
}

func TestTransformRatingHistory_DropsMalformedEntries(t *testing.T) {
	raw := []domain.RawRatingPoint{
		{DateMs: "3000", Elo: "1700", Delta: "25"},
		{DateMs: "not-a-date", Elo: "1650"},
		{DateMs: "1000", Elo: ""},
	}

	points := TransformRatingHistory(raw)

	require.Len(t, points, 1)
	assert.Equal(t, 1700, points[0].Rating)
	require.NotNil(t, points[0].Delta)
	assert.Equal(t, 25, *points[0].Delta)
}
