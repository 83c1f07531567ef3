package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	LeaderboardFile string        `env:"LEADERBOARD_FILE" envDefault:"leaderboard.json"`
	RoundTimeSec    int           `env:"ROUND_TIME" envDefault:"15"`
	RoomTTL         time.Duration `env:"ROOM_TTL" envDefault:"2h"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
