package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server ServerConfig
	API    APIConfig
	Mirror MirrorConfig
	Sweep  SweepConfig
}

type ServerConfig struct {
	Address      string        `envconfig:"SERVER_ADDRESS" default:":7600"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	IdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"30s"`
}

type APIConfig struct {
	BaseURL string        `envconfig:"PETSIT_API_URL" default:"https://api.pawhaven.app"`
	Token   string        `envconfig:"PETSIT_API_TOKEN"`
	Timeout time.Duration `envconfig:"PETSIT_API_TIMEOUT" default:"15s"`
}

const (
	MirrorBackendFile  = "file"
	MirrorBackendRedis = "redis"
)

type MirrorConfig struct {
	Backend       string `envconfig:"MIRROR_BACKEND" default:"file"`
	FilePath      string `envconfig:"MIRROR_FILE_PATH" default:"bookings.json"`
	RedisAddr     string `envconfig:"MIRROR_REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"MIRROR_REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"MIRROR_REDIS_DB" default:"0"`
	Key           string `envconfig:"MIRROR_KEY" default:"bookings"`
}

type SweepConfig struct {
	Enabled  bool          `envconfig:"SWEEP_ENABLED" default:"true"`
	Interval time.Duration `envconfig:"SWEEP_INTERVAL" default:"60s"`
}

func NewConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	switch cfg.Mirror.Backend {
	case MirrorBackendFile, MirrorBackendRedis:
	default:
		return nil, fmt.Errorf("unknown mirror backend %q", cfg.Mirror.Backend)
	}
	return &cfg, nil
}
