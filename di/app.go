package di

import (
	"context"
	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/infras/websocket"
	"roombook/internal/jobs"
	"roombook/shared/notifier"
	"roombook/transport/http"

	"github.com/rs/zerolog/log"
)

// App is everything a process needs to serve requests and run background work.
type App struct {
	HTTP      *http.HTTP
	Notifier  notifier.Notifier
	Scheduler jobs.Scheduler
	Hub       websocket.Hub
	Otel      otel.Otel
	DB        *postgres.Connection
}

// Run starts the broker relay and the scheduler, then serves HTTP until the
// process receives SIGTERM.
func (a *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())

	go a.Notifier.Relay(ctx)

	a.Scheduler.Start()

	a.HTTP.OnShutdown(func(shutdownCtx context.Context) {
		cancel()
		a.Scheduler.Stop(shutdownCtx)

		if err := a.Hub.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close websocket hub")
		}

		if err := a.DB.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database connections")
		}

		if err := a.Otel.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to flush traces")
		}
	})

	a.HTTP.Serve()
}
