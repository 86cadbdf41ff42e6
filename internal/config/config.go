// Package config loads the YAML configuration file and applies environment
// overrides on top of it.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Redis struct {
		Addr   string `yaml:"addr"`
		DB     int    `yaml:"db"`
		Prefix string `yaml:"prefix"`
	} `yaml:"redis"`

	OAuth struct {
		Issuer     string `yaml:"issuer"`
		TokenTTL   string `yaml:"token_ttl"`
		IDTokenKey string `yaml:"id_token_key"`
	} `yaml:"oauth"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		Token   struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"token"`
	} `yaml:"rate"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.OAuth.TokenTTL == "" {
		c.OAuth.TokenTTL = "1h"
	}
	if c.Rate.Token.Limit == 0 {
		c.Rate.Token.Limit = 30
	}
	if c.Rate.Token.Window == "" {
		c.Rate.Token.Window = "1m"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "gk:"
	}

	c.applyEnvOverrides()

	// validate string durations
	if c.Storage.Postgres.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Storage.Postgres.ConnMaxLifetime); err != nil {
			return nil, err
		}
	}
	if _, err := time.ParseDuration(c.OAuth.TokenTTL); err != nil {
		return nil, err
	}
	if _, err := time.ParseDuration(c.Rate.Token.Window); err != nil {
		return nil, err
	}

	return &c, nil
}

// TokenTTL returns the parsed access-token lifetime.
func (c *Config) TokenTTL() time.Duration {
	d, _ := time.ParseDuration(c.OAuth.TokenTTL)
	return d
}

// RateWindow returns the parsed token-endpoint rate window.
func (c *Config) RateWindow() time.Duration {
	d, _ := time.ParseDuration(c.Rate.Token.Window)
	return d
}

// ---- env helpers ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

// applyEnvOverrides lets environment variables win over config.yaml.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_IDLE_CONNS"); ok {
		c.Storage.Postgres.MaxIdleConns = v
	}
	if v, ok := getEnvStr("POSTGRES_CONN_MAX_LIFETIME"); ok {
		c.Storage.Postgres.ConnMaxLifetime = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Redis.Prefix = v
	}
	if v, ok := getEnvStr("OAUTH_ISSUER"); ok {
		c.OAuth.Issuer = v
	}
	if v, ok := getEnvStr("OAUTH_TOKEN_TTL"); ok {
		c.OAuth.TokenTTL = v
	}
	if v, ok := getEnvStr("OAUTH_ID_TOKEN_KEY"); ok {
		c.OAuth.IDTokenKey = v
	}
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvInt("RATE_TOKEN_LIMIT"); ok {
		c.Rate.Token.Limit = v
	}
	if v, ok := getEnvStr("RATE_TOKEN_WINDOW"); ok {
		c.Rate.Token.Window = v
	}
}
