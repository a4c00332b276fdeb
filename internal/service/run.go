// Package service orchestrates one batch run: fetch, aggregate,
// reconcile, notify, render.
package service

import (
	"context"
	"sort"
	"time"

	"faceit-tracker/internal/api"
	"faceit-tracker/internal/cache"
	"faceit-tracker/internal/config"
	"faceit-tracker/internal/constants"
	"faceit-tracker/internal/domain"
	"faceit-tracker/internal/notify"
	"faceit-tracker/internal/render"
	"faceit-tracker/internal/repository"
	"faceit-tracker/internal/snapshot"
	"faceit-tracker/internal/stats"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type RunService struct {
	cfg        *config.Config
	client     *api.FaceitClient
	statsCache *cache.MatchStatsCache
	ratingRepo *repository.RatingRepository
	stateRepo  *repository.StateRepository
	reconciler *snapshot.Reconciler
	telegram   *notify.TelegramClient
	renderer   *render.Renderer
	logger     zerolog.Logger
}

func NewRunService(
	cfg *config.Config,
	client *api.FaceitClient,
	statsCache *cache.MatchStatsCache,
	ratingRepo *repository.RatingRepository,
	stateRepo *repository.StateRepository,
	reconciler *snapshot.Reconciler,
	telegram *notify.TelegramClient,
	renderer *render.Renderer,
	logger zerolog.Logger,
) *RunService {
	return &RunService{
		cfg:        cfg,
		client:     client,
		statsCache: statsCache,
		ratingRepo: ratingRepo,
		stateRepo:  stateRepo,
		reconciler: reconciler,
		telegram:   telegram,
		renderer:   renderer,
		logger:     logger,
	}
}

// playerData bundles everything one player contributes to the run.
// ok is false when even the profile could not be fetched.
type playerData struct {
	result  domain.PlayerResult
	history []domain.MatchHistoryItem
	ok      bool
}

// Execute performs one full run. A single player's upstream failure
// degrades that player to an empty result; the run continues for all
// others.
func (s *RunService) Execute(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.RunTimeout)
	defer cancel()

	runStart := time.Now()
	logger := s.logger.With().Str("run_id", uuid.New().String()).Logger()
	logger.Info().Int("players", len(s.cfg.PlayerIDs)).Msg("run started")

	state, stateExists, err := s.stateRepo.LoadNotificationState(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load notification state, treating as absent")
		state = &domain.NotificationState{LastMatch: make(map[string]string)}
		stateExists = false
	}

	players := s.fetchAll(ctx, logger)

	var results []domain.PlayerResult
	var profiles []domain.Profile
	for _, p := range players {
		if !p.ok {
			continue
		}
		results = append(results, p.result)
		profiles = append(profiles, p.result.Profile)
	}
	logger.Info().Int("fetched", len(results)).Msg("player data aggregated")

	if err := s.ratingRepo.SaveLatestRatings(ctx, profiles); err != nil {
		logger.Error().Err(err).Msg("failed to save latest ratings")
	}

	s.reconciler.Run(ctx, reconcilerStates(results), runStart)

	gate := notify.NewGate(state, stateExists, runStart, s.cfg.NotifyGraceWindow, logger)
	logger.Debug().Int64("comparison_ts", gate.ComparisonTs()).Msg("notification threshold resolved")

	tracked := make(map[string]string, len(results))
	for _, r := range results {
		tracked[r.Profile.PlayerID] = r.Profile.Nickname
	}
	for _, p := range players {
		if !p.ok {
			continue
		}
		event := gate.Evaluate(p.result, p.history, tracked)
		if event == nil {
			continue
		}
		sent, err := s.telegram.Send(ctx, event)
		if err != nil {
			logger.Error().Err(err).Str("event_id", event.EventID).Msg("notification delivery failed")
		} else if sent {
			logger.Info().Str("player_id", event.PlayerID).Str("match_id", event.Match.MatchID).Msg("new match announced")
		}
	}

	state.LastRunTs = runStart.Unix()
	if err := s.stateRepo.SaveNotificationState(ctx, state); err != nil {
		logger.Error().Err(err).Msg("failed to save notification state")
	}

	page := &render.Page{
		GeneratedAt: runStart,
		Players:     results,
		Awards:      stats.ComputeAwards(results),
		Deltas:      s.periodDeltas(ctx, results, logger),
	}
	if err := s.renderer.Render(page); err != nil {
		logger.Error().Err(err).Msg("failed to render dashboard")
	}

	logger.Info().Dur("duration", time.Since(runStart)).Msg("run completed")
	return nil
}

// fetchAll pulls raw data for every tracked player with a bounded
// fan-out against the stats API.
func (s *RunService) fetchAll(ctx context.Context, logger zerolog.Logger) []playerData {
	players := make([]playerData, len(s.cfg.PlayerIDs))

	g := new(errgroup.Group)
	g.SetLimit(constants.FetchConcurrency)
	for i, playerID := range s.cfg.PlayerIDs {
		i, playerID := i, playerID
		g.Go(func() error {
			players[i] = s.fetchPlayer(ctx, playerID, logger)
			return nil
		})
	}
	_ = g.Wait()

	return players
}

func (s *RunService) fetchPlayer(ctx context.Context, playerID string, logger zerolog.Logger) playerData {
	log := logger.With().Str("player_id", playerID).Logger()

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	profileResp, err := s.client.GetPlayer(apiCtx, playerID)
	cancel()
	if err != nil {
		log.Warn().Err(err).Msg("failed to fetch profile, skipping player this run")
		return playerData{}
	}

	// The three history-shaped fetches degrade independently: any of
	// them missing still yields a usable snapshot.
	var (
		historyResp  *api.MatchHistoryResponse
		lifetimeResp *api.LifetimeStatsResponse
		ratingItems  []api.RatingHistoryItem
	)
	fetchCtx, fetchCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		if historyResp, err = s.client.GetMatchHistory(fetchCtx, playerID, constants.MatchHistoryLimit); err != nil {
			log.Warn().Err(err).Msg("failed to fetch match history")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if lifetimeResp, err = s.client.GetLifetimeStats(fetchCtx, playerID); err != nil {
			log.Warn().Err(err).Msg("failed to fetch lifetime stats")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if ratingItems, err = s.client.GetRatingHistory(fetchCtx, playerID); err != nil {
			log.Warn().Err(err).Msg("failed to fetch rating history")
		}
		return nil
	})
	_ = g.Wait()
	fetchCancel()

	profile := api.NormalizeProfile(profileResp, lifetimeResp)

	var history []domain.MatchHistoryItem
	if historyResp != nil {
		history = api.NormalizeHistory(historyResp.Items)
	}

	statsByMatch := make(map[string]domain.MatchStats, len(history))
	for _, item := range history {
		statsByMatch[item.MatchID] = s.matchStats(ctx, item.MatchID, log)
	}

	raw := api.NormalizeRatingHistory(ratingItems)

	return playerData{
		result: domain.PlayerResult{
			Profile:  profile,
			Snapshot: stats.ComputeSnapshot(playerID, history, statsByMatch, raw),
		},
		history: history,
		ok:      true,
	}
}

// matchStats serves per-match stats cache-first. Upstream failure yields
// the unknown-map placeholder, which is deliberately not cached.
func (s *RunService) matchStats(ctx context.Context, matchID string, log zerolog.Logger) domain.MatchStats {
	if cached, ok := s.statsCache.Get(ctx, matchID); ok {
		return cached
	}

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	resp, err := s.client.GetMatchStats(apiCtx, matchID)
	cancel()
	if err != nil {
		log.Warn().Err(err).Str("match_id", matchID).Msg("failed to fetch match stats")
		return domain.MatchStats{}
	}

	normalized := api.NormalizeMatchStats(resp)
	s.statsCache.Put(ctx, matchID, normalized)
	return normalized
}

func reconcilerStates(results []domain.PlayerResult) []snapshot.PlayerState {
	states := make([]snapshot.PlayerState, 0, len(results))
	for _, r := range results {
		st := snapshot.PlayerState{
			PlayerID:      r.Profile.PlayerID,
			CurrentRating: r.Profile.Rating,
			RatingHistory: r.Snapshot.RatingHistory,
		}
		if len(r.Snapshot.Matches) > 0 {
			st.LastMatchTs = r.Snapshot.Matches[0].Date
		}
		states = append(states, st)
	}
	return states
}

// periodDeltas builds the page's rating-delta tables from the reconciled
// period tables, in daily-to-yearly order.
func (s *RunService) periodDeltas(ctx context.Context, results []domain.PlayerResult, logger zerolog.Logger) []render.PeriodTable {
	deltas := make([]render.PeriodTable, 0, len(domain.Periods))
	for _, period := range domain.Periods {
		table, err := s.ratingRepo.GetPeriodTable(ctx, period)
		if err != nil {
			logger.Warn().Err(err).Str("period", string(period)).Msg("failed to load period table for rendering")
			continue
		}
		rows := make([]render.PeriodDelta, 0, len(results))
		for _, r := range results {
			baseline, ok := table[r.Profile.PlayerID]
			if !ok {
				baseline = r.Profile.Rating
			}
			rows = append(rows, render.PeriodDelta{
				Nickname: r.Profile.Nickname,
				Baseline: baseline,
				Current:  r.Profile.Rating,
				Delta:    r.Profile.Rating - baseline,
			})
		}
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Delta > rows[j].Delta
		})
		deltas = append(deltas, render.PeriodTable{Period: period, Rows: rows})
	}
	return deltas
}
