package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/app/arena"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/app/challenge"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/app/registry"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/config"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/store"
)

func newRouter(st store.Store, cfg config.ServerConfig, ar *arena.Service, ch *challenge.Service, reg *registry.Service) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(apiLogMiddleware()).Get("/healthz", healthHandler(st))

	r.Route("/api", func(r chi.Router) {
		r.Use(apiLogMiddleware())
		r.Use(bodyCaptureMiddleware(4096))

		r.Post("/games", startGameHandler(ar))
		r.Get("/games/{session_id}", getGameHandler(ar))
		r.Get("/games/{session_id}/playback", getPlaybackHandler(ar))
		r.Post("/games/{session_id}/commit", commitMovesHandler(ar))
		r.Post("/games/{session_id}/reveal", revealMovesHandler(ar))
		r.Post("/games/{session_id}/resolve", resolveBattleHandler(ar))

		r.Post("/challenges", sendChallengeHandler(ch))
		r.Post("/challenges/{challenge_id}/accept", acceptChallengeHandler(ch))

		r.Get("/players/{address}/challenges", playerChallengesHandler(ch))
		r.Get("/players/{address}/account", playerAccountHandler(st))
		r.Get("/players/{address}/username", getUsernameHandler(reg))
		r.Put("/players/{address}/username", setUsernameHandler(reg))

		r.Group(func(r chi.Router) {
			r.Use(adminAuthMiddleware(cfg.AdminAPIKey))
			r.Get("/ledger", ledgerHandler(st))
			r.Post("/topup", topupHandler(st, cfg.InitialBalance))
		})
	})

	return r
}

func logRoutes(r chi.Router) {
	_ = chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		log.Debug().Str("method", method).Str("route", route).Msg("route registered")
		return nil
	})
}
