package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode             string        `mapstructure:"mode"`
	Port             int           `mapstructure:"port"`
	Secret           string        `mapstructure:"secret"`
	SessionCookie    string        `mapstructure:"session_cookie"`
	ReadLimit        int64         `mapstructure:"read_limit"`
	PingPeriod       time.Duration `mapstructure:"ping_period"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	MessageRateLimit int           `mapstructure:"message_rate_limit"`
	Store            string        `mapstructure:"store"`
	RedisAddr        string        `mapstructure:"redis_addr"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("session_cookie", "session")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("handshake_timeout", "10s")
	v.SetDefault("message_rate_limit", 100)
	v.SetDefault("store", "memory")
	v.SetDefault("redis_addr", "localhost:6379")

	if err := v.ReadInConfig(); err != nil {
		// A missing file means defaults; anything else (e.g. broken
		// yaml) must not be silently swallowed.
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config %s: %w", fileName, err)
		}
		log.Warn().Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.PingPeriod <= 0 {
		return nil, fmt.Errorf("ping_period must be positive, got %s", cfg.PingPeriod)
	}
	if cfg.HandshakeTimeout <= 0 {
		return nil, fmt.Errorf("handshake_timeout must be positive, got %s", cfg.HandshakeTimeout)
	}
	log.Info().Str("mode", cfg.Mode).Int("port", cfg.Port).Str("store", cfg.Store).Msg("config ready")
	return &cfg, nil
}
