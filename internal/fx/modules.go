package fx

import (
	"faceit-tracker/internal/api"
	"faceit-tracker/internal/cache"
	"faceit-tracker/internal/config"
	"faceit-tracker/internal/database"
	"faceit-tracker/internal/logger"
	"faceit-tracker/internal/notify"
	"faceit-tracker/internal/render"
	"faceit-tracker/internal/repository"
	"faceit-tracker/internal/service"
	"faceit-tracker/internal/snapshot"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// ProvideLogger builds the application logger at the configured level.
func ProvideLogger(cfg *config.Config) zerolog.Logger {
	return logger.SetLevel(cfg.LogLevel)
}

var Module = fx.Options(
	fx.Provide(config.Load),
	fx.Provide(ProvideLogger),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewRatingRepository),
	fx.Provide(repository.NewStateRepository),
	// api client + cache
	fx.Provide(api.NewFaceitClient),
	fx.Provide(cache.NewMatchStatsCache),
	// core
	fx.Provide(snapshot.NewReconciler),
	fx.Provide(notify.NewTelegramClient),
	fx.Provide(render.NewRenderer),
	// svc
	fx.Provide(service.NewRunService),
)
