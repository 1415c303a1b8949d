package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/app/arena"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/app/challenge"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/app/registry"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/circuits/commit"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/config"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/ledger"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/logging"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/proof"
	"github.com/Clash-Of-Pirates/Clash-of-pirates/internal/store"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load server config failed")
	}

	st, err := newStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()

	verifier, err := newVerifier(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("verifier init failed")
	}

	led := ledger.New(st)
	ar := arena.NewService(st, led, verifier, cfg.InitialBalance)
	ch := challenge.NewService(st, ar, time.Duration(cfg.ChallengeTTLMinutes)*time.Minute)
	ar.OnResolved = ch.CompleteForSession
	reg := registry.NewService(st)

	r := newRouter(st, cfg, ar, ch, reg)
	logRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Str("backend", cfg.StoreBackend).
		Str("proof_mode", cfg.ProofMode).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

func newStore(cfg config.ServerConfig) (store.Store, error) {
	if cfg.StoreBackend == "memory" {
		return store.NewMemory(), nil
	}
	pg, err := store.NewPostgres(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	if err := pg.Ping(ctx); err != nil {
		return nil, err
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return pg, nil
}

func newVerifier(cfg config.ServerConfig) (proof.Verifier, error) {
	if cfg.ProofMode == "insecure" {
		log.Warn().Msg("proof verification disabled, commitments are not checked cryptographically")
		return proof.Insecure{}, nil
	}
	if cfg.CommitVKPath != "" {
		vk, err := os.ReadFile(cfg.CommitVKPath)
		if err != nil {
			return nil, err
		}
		return commit.NewVerifier(vk)
	}
	// No key on disk: run the full setup in-process. Fine for development,
	// slow at startup.
	log.Info().Msg("no verifying key configured, running ephemeral groth16 setup")
	return commit.NewEphemeralVerifier()
}
