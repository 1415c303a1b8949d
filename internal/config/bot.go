package config

import "github.com/caarlos0/env/v11"

type BotConfig struct {
	ServerURL string `env:"SERVER_URL" envDefault:"http://localhost:8080"`
	// Player1 and Player2 are 32-byte hex addresses the bot plays as.
	Player1 string `env:"BOT_PLAYER1" envDefault:"0000000000000000000000000000000000000000000000000000000000000001"`
	Player2 string `env:"BOT_PLAYER2" envDefault:"0000000000000000000000000000000000000000000000000000000000000002"`
	Stake   int64  `env:"BOT_STAKE" envDefault:"100"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
