package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// StoreBackend selects "postgres" or "memory". The DSN is only needed
	// for postgres.
	StoreBackend string `env:"STORE_BACKEND" envDefault:"postgres"`
	PostgresDSN  string `env:"POSTGRES_DSN"`

	// ProofMode selects "groth16" or "insecure". Groth16 loads the
	// verifying key from CommitVKPath, or runs an ephemeral setup when the
	// path is empty.
	ProofMode    string `env:"PROOF_MODE" envDefault:"groth16"`
	CommitVKPath string `env:"COMMIT_VK_PATH"`

	AdminAPIKey string `env:"ADMIN_API_KEY"`

	ChallengeTTLMinutes int   `env:"CHALLENGE_TTL_MINUTES" envDefault:"1440"`
	InitialBalance      int64 `env:"INITIAL_BALANCE" envDefault:"100000"`
}

var (
	ErrMissingPostgresDSN = errors.New("POSTGRES_DSN required for the postgres backend")
	ErrUnknownBackend     = errors.New("STORE_BACKEND must be postgres or memory")
	ErrUnknownProofMode   = errors.New("PROOF_MODE must be groth16 or insecure")
)

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	switch cfg.StoreBackend {
	case "postgres":
		if cfg.PostgresDSN == "" {
			return cfg, ErrMissingPostgresDSN
		}
	case "memory":
	default:
		return cfg, ErrUnknownBackend
	}
	switch cfg.ProofMode {
	case "groth16", "insecure":
	default:
		return cfg, ErrUnknownProofMode
	}
	return cfg, nil
}
