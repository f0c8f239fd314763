package handler

import (
	"net/http"
	"roombook/config"
	"roombook/di"
	"roombook/shared/logger"
	"roombook/transport/http/response"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	app     *di.App
	initErr error
	once    sync.Once
)

// Handler serves the API from a serverless function. Background work such as
// the expiry scheduler and broker relay is left to a long-running instance.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.Get()

		logger.Init(cfg)

		app, initErr = di.InitializeService()
		if initErr != nil {
			log.Error().Err(initErr).Msg("Failed to initialize service")
		}
	})

	if initErr != nil {
		response.WithUnhealthy(w)

		return
	}

	app.HTTP.ServeHTTP(w, r)
}
