package config

import (
	"errors"
	"fmt"
	"time"

	"flashq/internal/model"

	"github.com/joeshaw/envdecode"
)

// Config holds settings shared by the server and the CLI. Defaults come from
// the env tags; cobra flags override them.
type Config struct {
	// Port the web server listens on. ENV: FLASHQ_PORT
	Port string `env:"FLASHQ_PORT,default=3000"`
	// RedisAddr like "localhost:6379". ENV: FLASHQ_REDIS_ADDR
	RedisAddr string `env:"FLASHQ_REDIS_ADDR,default=localhost:6379"`
	// BadgerPath for the durable session copy; empty means Redis only. ENV: FLASHQ_BADGER_PATH
	BadgerPath string `env:"FLASHQ_BADGER_PATH,default=./badger-data"`
	// Mode is toastr, bootstrap or unset. ENV: FLASHQ_MODE
	Mode string `env:"FLASHQ_MODE,default=toastr"`
	// CloseButton shows a dismiss control on rendered messages. ENV: FLASHQ_CLOSE_BUTTON
	CloseButton bool `env:"FLASHQ_CLOSE_BUTTON,default=true"`
	// SessionTTL bounds how long stored sessions live. ENV: FLASHQ_SESSION_TTL
	SessionTTL time.Duration `env:"FLASHQ_SESSION_TTL,default=24h"`
	// CookieName for the session id. ENV: FLASHQ_COOKIE_NAME
	CookieName string `env:"FLASHQ_COOKIE_NAME,default=flashq_session"`
}

// Load decodes the environment. A missing variable falls back to its default.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode env: %w", err)
	}
	return &cfg, nil
}

// PresentationMode parses Mode.
func (c *Config) PresentationMode() (model.Mode, error) {
	return model.ParseMode(c.Mode)
}
