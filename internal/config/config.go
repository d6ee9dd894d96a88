package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-composer/internal/logging"
	"github.com/goliatone/go-composer/pkg/components"
	"github.com/goliatone/go-composer/pkg/submit"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the host process configuration file.
type Config struct {
	Listen    string `yaml:"listen"`
	SchemaDir string `yaml:"schema_dir"`
	LogLevel  string `yaml:"log_level"`

	// TemplatesDir holds widget templates that shadow the embedded ones.
	TemplatesDir string `yaml:"templates_dir"`
	Store        Store  `yaml:"store"`
	Forms        Forms  `yaml:"forms"`
	Submit       Submit `yaml:"submit"`
}

// Store selects where page and form documents persist.
type Store struct {
	Backend string `yaml:"backend"`
	Redis   Redis  `yaml:"redis"`
}

// Redis holds the redis backend connection settings.
type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// Forms configures the form compiler.
type Forms struct {
	Honeypot string `yaml:"honeypot"`
}

// Submit configures the submission gate.
type Submit struct {
	Policy      string        `yaml:"policy"`
	Endpoint    string        `yaml:"endpoint"`
	Timeout     time.Duration `yaml:"timeout"`
	TrapDelay   time.Duration `yaml:"trap_delay"`
	TrapCeiling time.Duration `yaml:"trap_ceiling"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:    ":8080",
		SchemaDir: "schemas",
		LogLevel:  "info",
		Store: Store{
			Backend: BackendMemory,
			Redis: Redis{
				Addr:   "localhost:6379",
				Prefix: "composer:",
			},
		},
		Forms: Forms{Honeypot: components.HoneypotName},
		Submit: Submit{
			Policy:      "eager",
			Timeout:     10 * time.Second,
			TrapDelay:   150 * time.Millisecond,
			TrapCeiling: 2 * time.Second,
		},
	}
}

// Load reads path over the defaults. An empty path, or a missing file,
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(c.Store.Redis.Addr) == "" {
			return errors.New("store.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Submit.TrapDelay < 0 || c.Submit.TrapCeiling < 0 {
		return errors.New("submit trap delays must not be negative")
	}
	if c.Submit.TrapCeiling > 0 && c.Submit.TrapDelay > c.Submit.TrapCeiling {
		return errors.New("submit.trap_delay exceeds submit.trap_ceiling")
	}
	return nil
}

// Policy parses the configured validation policy.
func (c Config) Policy() (submit.Policy, error) {
	return submit.ParsePolicy(c.Submit.Policy)
}
