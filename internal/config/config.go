// Package config loads the gateway settings from an optional YAML file and the
// environment, then validates them.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	Env         string `yaml:"env" env:"ENV" env-default:"local" validate:"oneof=local dev prod"`
	UpstreamURL string `yaml:"upstream_url" env:"UPSTREAM_URL" validate:"omitempty,url"`
	// TierHeader carries the caller's subscription tier, set by the
	// authenticating proxy. It also decides the premium ceilings.
	TierHeader string `yaml:"tier_header" env:"TIER_HEADER" env-default:"X-User-Tier" validate:"required"`

	HTTPServer  `yaml:"http_server"`
	RateLimit   `yaml:"rate_limit"`
	Redis       `yaml:"redis"`
	Stats       `yaml:"stats"`
	Concurrency `yaml:"concurrency"`
}

type HTTPServer struct {
	Address           string        `yaml:"address" env:"LISTEN_ADDR" env-default:":8080" validate:"required"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s"`
	ReadTimeout       time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"30s"`
	// WriteTimeout 0 leaves streamed AI responses unbounded.
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"0s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"90s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s" validate:"gt=0"`
	// TrustForwardedFor must only be on behind a proxy that overwrites
	// X-Forwarded-For and X-Real-IP.
	TrustForwardedFor bool `yaml:"trust_forwarded_for" env:"TRUST_FORWARDED_FOR" env-default:"false"`
}

type RateLimit struct {
	Enabled    bool   `yaml:"enabled" env:"RATE_ENABLED" env-default:"true"`
	Backend    string `yaml:"backend" env:"RATE_BACKEND" env-default:"memory" validate:"oneof=memory redis"`
	FailClosed bool   `yaml:"fail_closed" env:"RATE_FAIL_CLOSED" env-default:"false"`
	// SweepEvery throttles the memory backend's opportunistic sweep.
	SweepEvery time.Duration `yaml:"sweep_every" env:"RATE_SWEEP_EVERY" env-default:"1m" validate:"gt=0"`
	// JanitorEvery 0 disables the background sweep.
	JanitorEvery time.Duration `yaml:"janitor_every" env:"RATE_JANITOR_EVERY" env-default:"5m"`
	KeyPrefix    string        `yaml:"key_prefix" env:"RATE_REDIS_PREFIX" env-default:"ratelimit:window"`

	General PolicyOverride `yaml:"general" env-prefix:"RATE_GENERAL_"`
	AIChat  PolicyOverride `yaml:"ai_chat" env-prefix:"RATE_AI_CHAT_"`
	Upload  PolicyOverride `yaml:"upload" env-prefix:"RATE_UPLOAD_"`
	Auth    PolicyOverride `yaml:"auth" env-prefix:"RATE_AUTH_"`
	Webhook PolicyOverride `yaml:"webhook" env-prefix:"RATE_WEBHOOK_"`
}

// PolicyOverride replaces the non-zero fields of a built-in policy.
type PolicyOverride struct {
	Window     time.Duration `yaml:"window" env:"WINDOW" validate:"gte=0"`
	Max        int           `yaml:"max" env:"MAX" validate:"gte=0"`
	PremiumMax int           `yaml:"premium_max" env:"PREMIUM_MAX" validate:"gte=0"`
}

type Redis struct {
	Addr        string        `yaml:"addr" env:"REDIS_ADDR"`
	Password    string        `yaml:"password" env:"REDIS_PASSWORD"`
	User        string        `yaml:"user" env:"REDIS_USER"`
	DB          int           `yaml:"db" env:"REDIS_DB" env-default:"0" validate:"gte=0"`
	MaxRetries  int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"2s"`
	Timeout     time.Duration `yaml:"timeout" env:"REDIS_TIMEOUT" env-default:"500ms"`
}

type Stats struct {
	Memory     bool          `yaml:"memory" env:"RATE_STATS_MEMORY" env-default:"true"`
	Prometheus bool          `yaml:"prometheus" env:"RATE_STATS_PROMETHEUS" env-default:"true"`
	Redis      bool          `yaml:"redis" env:"RATE_STATS_REDIS" env-default:"false"`
	Prefix     string        `yaml:"prefix" env:"RATE_STATS_PREFIX" env-default:"ratelimit:stats"`
	TTL        time.Duration `yaml:"ttl" env:"RATE_STATS_TTL" env-default:"24h"`
	Bucket     string        `yaml:"bucket" env:"RATE_STATS_BUCKET" env-default:"minute" validate:"oneof=minute hour none"`
	TrackKeys  bool          `yaml:"track_keys" env:"RATE_STATS_TRACK_KEYS" env-default:"false"`
}

type Concurrency struct {
	// Max bounds every in-flight request; 0 disables it.
	Max int `yaml:"max" env:"CONCURRENCY_MAX" env-default:"100" validate:"gte=0"`
	// AIChatMax bounds open AI chat streams.
	AIChatMax      int           `yaml:"ai_chat_max" env:"CONCURRENCY_AI_CHAT_MAX" env-default:"20" validate:"gte=0"`
	AcquireTimeout time.Duration `yaml:"acquire_timeout" env:"CONCURRENCY_TIMEOUT" env-default:"2s" validate:"gte=0"`
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return (c.RateLimit.Enabled && c.RateLimit.Backend == BackendRedis) || c.Stats.Redis
}

// Load reads CONFIG_PATH when it is set, otherwise the environment only.
// Environment variables win over the file.
func Load() (*Config, error) {
	const op = "config.Load"

	var cfg Config
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("%s: read %s: %w", op, path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: read env: %w", op, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad is Load for main packages.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot load config: %s", err)
	}
	return cfg
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return validationError(verrs)
		}
		return err
	}
	if c.UsesRedis() && strings.TrimSpace(c.Redis.Addr) == "" {
		return errors.New("REDIS_ADDR is required when the redis backend or redis stats are enabled")
	}
	return nil
}

func validationError(errs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", e.Namespace()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field %s must be one of [%s], got %q", e.Namespace(), e.Param(), e.Value()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("field %s is not a valid URL", e.Namespace()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s fails %s=%s", e.Namespace(), e.ActualTag(), e.Param()))
		}
	}
	return errors.New(strings.Join(msgs, ", "))
}
