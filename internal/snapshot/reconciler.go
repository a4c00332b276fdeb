// Package snapshot maintains the four rolling-period rating tables,
// self-healing them across irregular run cadence.
package snapshot

import (
	"context"
	"time"

	"faceit-tracker/internal/config"
	"faceit-tracker/internal/domain"
	"faceit-tracker/internal/repository"

	"github.com/rs/zerolog"
)

const metaDateLayout = "2006-01-02"

// PlayerState carries everything the reconciler needs about one tracked
// player for the current run.
type PlayerState struct {
	PlayerID      string
	CurrentRating int
	// RatingHistory is oldest-first, as produced by the aggregator.
	RatingHistory []domain.RatingPoint
	// LastMatchTs is the finish time of the newest match, zero if none.
	LastMatchTs int64
}

type Reconciler struct {
	repo   *repository.RatingRepository
	loc    *time.Location
	logger zerolog.Logger
}

func NewReconciler(repo *repository.RatingRepository, cfg *config.Config, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		repo:   repo,
		loc:    cfg.Location,
		logger: logger.With().Str("component", "reconciler").Logger(),
	}
}

// Run evaluates every period's state machine once. A failing period is
// logged and skipped; the remaining periods still reconcile.
func (r *Reconciler) Run(ctx context.Context, players []PlayerState, now time.Time) {
	for _, period := range domain.Periods {
		if err := r.reconcilePeriod(ctx, period, players, now); err != nil {
			r.logger.Error().Err(err).Str("period", string(period)).Msg("period reconciliation failed")
		}
	}
}

func (r *Reconciler) reconcilePeriod(ctx context.Context, period domain.Period, players []PlayerState, now time.Time) error {
	boundary := period.Start(now, r.loc)
	boundaryDate := boundary.Format(metaDateLayout)
	log := r.logger.With().Str("period", string(period)).Str("boundary", boundaryDate).Logger()

	meta, hasMeta := r.repo.GetPeriodMeta(ctx, period)
	if !hasMeta {
		// First run for this period: backfill from history and stop here.
		table := BackfillTable(players, boundary.Unix())
		if err := r.repo.SavePeriodTable(ctx, period, table); err != nil {
			return err
		}
		if err := r.repo.SetPeriodMeta(ctx, period, boundaryDate); err != nil {
			return err
		}
		log.Info().Int("rows", len(table)).Msg("period table backfilled")
		return nil
	}

	table, err := r.repo.GetPeriodTable(ctx, period)
	if err != nil {
		return err
	}

	rolled := false
	if isStale(meta, boundaryDate, r.loc) {
		// Period rolled over: every player's baseline becomes their
		// current rating.
		table = make(map[string]int, len(players))
		for _, p := range players {
			table[p.PlayerID] = p.CurrentRating
		}
		rolled = true
		log.Info().Str("previous", meta).Msg("period rolled forward")
	}

	changed := RepairTable(table, players, boundary.Unix())
	if changed {
		log.Info().Msg("period table repaired")
	}

	if rolled || changed {
		if err := r.repo.SavePeriodTable(ctx, period, table); err != nil {
			return err
		}
	}
	if rolled {
		if err := r.repo.SetPeriodMeta(ctx, period, boundaryDate); err != nil {
			return err
		}
	}
	return nil
}

// isStale reports whether the persisted marker predates the current
// period boundary. Unparseable markers count as stale so a safe re-roll
// repairs them.
func isStale(meta, boundaryDate string, loc *time.Location) bool {
	metaDay, err := time.ParseInLocation(metaDateLayout, meta, loc)
	if err != nil {
		return true
	}
	boundaryDay, err := time.ParseInLocation(metaDateLayout, boundaryDate, loc)
	if err != nil {
		return true
	}
	return metaDay.Before(boundaryDay)
}

// BackfillTable builds a first-ever period table: each player gets the
// rating they held at the boundary instant. A player whose last match
// predates the boundary had no activity inside the window, so their live
// rating is the boundary rating even when telemetry lags behind it.
func BackfillTable(players []PlayerState, boundary int64) map[string]int {
	table := make(map[string]int, len(players))
	for _, p := range players {
		if p.LastMatchTs < boundary {
			table[p.PlayerID] = p.CurrentRating
			continue
		}
		table[p.PlayerID] = RatingAtOrBefore(p.RatingHistory, boundary, p.CurrentRating)
	}
	return table
}

// RepairTable fixes drift in a period table in place and reports whether
// anything changed. Players active since the boundary gain a missing row
// from the at-boundary lookup; inactive players gain a current-rating row
// (so a newly tracked player is never absent), and an inactive player's
// stale row is forced to current so their period delta reads as zero.
// Every tracked player has exactly one row once this pass completes.
func RepairTable(table map[string]int, players []PlayerState, boundary int64) bool {
	changed := false
	for _, p := range players {
		active := p.LastMatchTs >= boundary
		existing, hasRow := table[p.PlayerID]
		switch {
		case active && !hasRow:
			table[p.PlayerID] = RatingAtOrBefore(p.RatingHistory, boundary, p.CurrentRating)
			changed = true
		case !active && !hasRow:
			table[p.PlayerID] = p.CurrentRating
			changed = true
		case !active && existing != p.CurrentRating:
			table[p.PlayerID] = p.CurrentRating
			changed = true
		}
	}
	return changed
}

// RatingAtOrBefore returns the latest rating point at or before the
// boundary, the earliest point if every point is newer, or current when
// the history is empty.
func RatingAtOrBefore(history []domain.RatingPoint, boundary int64, current int) int {
	if len(history) == 0 {
		return current
	}
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Timestamp <= boundary {
			return history[i].Rating
		}
	}
	return history[0].Rating
}
