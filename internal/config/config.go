package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

// RedisConfig holds the optional reference-data cache settings. An
// empty Addr disables caching entirely.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	// File enables rotated file output next to stderr when set.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max-size-mb"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAgeDays int    `yaml:"max-age-days"`
}

// Config is the full process configuration.
type Config struct {
	Listen     string      `yaml:"listen"`
	Database   string      `yaml:"database"`
	BcryptCost int         `yaml:"bcrypt-cost"`
	JWT        JWTConfig   `yaml:"jwt"`
	Redis      RedisConfig `yaml:"redis"`
	Log        LogConfig   `yaml:"log"`
}

// Load reads the YAML config at path and applies environment
// overrides. A missing file is not an error; defaults plus the
// environment must then provide everything required.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Listen:     ":8080",
		Database:   "mountbook.db",
		BcryptCost: 0,
		JWT:        JWTConfig{Issuer: "mountbook"},
		Log:        LogConfig{Level: "info", MaxSizeMB: 50, MaxBackups: 5, MaxAgeDays: 28},
	}

	if strings.TrimSpace(path) != "" {
		data, errRead := os.ReadFile(path)
		if errRead != nil {
			if !os.IsNotExist(errRead) {
				return nil, fmt.Errorf("config: read %s: %w", path, errRead)
			}
		} else if errUnmarshal := yaml.Unmarshal(data, cfg); errUnmarshal != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
		}
	}

	applyEnvOverrides(cfg)

	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, fmt.Errorf("config: jwt secret is required (jwt.secret or MOUNTBOOK_JWT_SECRET)")
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := lookupEnv("MOUNTBOOK_LISTEN"); ok {
		cfg.Listen = v
	}
	if v, ok := lookupEnv("MOUNTBOOK_DSN"); ok {
		cfg.Database = v
	}
	if v, ok := lookupEnv("MOUNTBOOK_JWT_SECRET"); ok {
		cfg.JWT.Secret = v
	}
	if v, ok := lookupEnv("MOUNTBOOK_JWT_ISSUER"); ok {
		cfg.JWT.Issuer = v
	}
	if v, ok := lookupEnv("MOUNTBOOK_REDIS_ADDR"); ok {
		cfg.Redis.Addr = v
	}
	if v, ok := lookupEnv("MOUNTBOOK_REDIS_PASSWORD"); ok {
		cfg.Redis.Password = v
	}
	if v, ok := lookupEnv("MOUNTBOOK_LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := lookupEnv("MOUNTBOOK_BCRYPT_COST"); ok {
		if cost, errParse := strconv.Atoi(v); errParse == nil {
			cfg.BcryptCost = cost
		}
	}
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}
