package main

import (
	"context"
	"database/sql"

	fxmodules "faceit-tracker/internal/fx"
	"faceit-tracker/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runOnce),
	).Run()
}

// runOnce executes a single batch run and shuts the app down. The job is
// meant to be invoked periodically by a scheduler, not to stay resident.
func runOnce(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	runSvc *service.RunService,
	db *sql.DB,
	logger zerolog.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := runSvc.Execute(context.Background()); err != nil {
					logger.Error().Err(err).Msg("run failed")
				}
				if err := shutdowner.Shutdown(); err != nil {
					logger.Error().Err(err).Msg("shutdown failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			logger.Info().Msg("tracker stopped")
			return nil
		},
	})
}
