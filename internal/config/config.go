package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config describes all runtime settings for the bot.
//
// Best practice for Go services:
//   - load config once in main
//   - validate
//   - pass further via DI (no global variables)
type Config struct {
	Env string // dev|stage|prod

	Log struct {
		Format string // text|json
	}

	Telegram struct {
		Token string
	}

	State struct {
		Backend string // file|redis
		Path    string // file backend only
	}

	Redis struct {
		Addr string
		DB   int
		Key  string
	}

	Postgres struct {
		URL           string // empty => solve archive disabled
		RunMigrations bool
		MigrationsDir string
	}

	HTTP struct {
		Addr              string
		ReadHeaderTimeout time.Duration
		IdleTimeout       time.Duration
		ShutdownTimeout   time.Duration
	}

	Dash struct {
		Secret       string
		PasswordHash string // bcrypt; empty => dashboard login disabled
		TokenTTL     time.Duration
	}
}

func LoadFromEnv() (Config, error) {
	var c Config

	c.Env = envString("APP_ENV", "dev")
	c.Log.Format = envString("LOG_FORMAT", "text")

	c.Telegram.Token = envString("TELEGRAM_TOKEN", "")

	c.State.Backend = envString("STATE_BACKEND", "file")
	c.State.Path = envString("STATE_PATH", "state.json")

	c.Redis.Addr = envString("REDIS_ADDR", "localhost:6379")
	c.Redis.DB = envInt("REDIS_DB", 0)
	c.Redis.Key = envString("REDIS_STATE_KEY", "cop:state:snapshot")

	c.Postgres.URL = envString("DATABASE_URL", "")
	c.Postgres.RunMigrations = envBool("RUN_MIGRATIONS", false)
	c.Postgres.MigrationsDir = envString("MIGRATIONS_DIR", "./db/migrations")

	port := envString("PORT", "8080")
	c.HTTP.Addr = envString("HTTP_ADDR", ":"+port)
	c.HTTP.ReadHeaderTimeout = envDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second)
	c.HTTP.IdleTimeout = envDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)
	c.HTTP.ShutdownTimeout = envDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second)

	c.Dash.Secret = envString("DASH_SECRET", "dev-secret-change-me")
	c.Dash.PasswordHash = envString("DASH_PASSWORD_HASH", "")
	c.Dash.TokenTTL = envDuration("DASH_TOKEN_TTL", 24*time.Hour)

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.Telegram.Token == "" {
		return errors.New("TELEGRAM_TOKEN is empty")
	}
	switch c.State.Backend {
	case "file":
		if c.State.Path == "" {
			return errors.New("STATE_PATH is empty")
		}
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR is empty")
		}
	default:
		return fmt.Errorf("unsupported STATE_BACKEND=%q (want file|redis)", c.State.Backend)
	}
	if c.HTTP.Addr == "" {
		return errors.New("HTTP addr is empty")
	}
	if c.Dash.Secret == "" {
		return errors.New("DASH_SECRET is empty")
	}
	if c.Env != "dev" && c.Dash.Secret == "dev-secret-change-me" {
		return fmt.Errorf("refuse to run with default DASH_SECRET in %s", c.Env)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("unsupported LOG_FORMAT=%q (want text|json)", c.Log.Format)
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
