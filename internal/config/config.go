// Package config loads the syllabus configuration from a YAML file,
// SYLLABUS_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/syllabus/internal/logging"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. SYLLABUS_STORE_BACKEND.
const EnvPrefix = "SYLLABUS"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

type Config struct {
	LogLevel   string           `mapstructure:"log_level"`
	Server     ServerConfig     `mapstructure:"server"`
	Repository RepositoryConfig `mapstructure:"repository"`
	Store      StoreConfig      `mapstructure:"store"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// ValidateRequests checks requests against the embedded OpenAPI description.
	ValidateRequests bool `mapstructure:"validate_requests"`
}

// RepositoryConfig points at the course service published courses go to.
type RepositoryConfig struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StoreConfig struct {
	Backend string      `mapstructure:"backend"`
	Path    string      `mapstructure:"path"`
	Redis   RedisConfig `mapstructure:"redis"`

	// EncryptionKey is a base64 AES-256 key; drafts are stored in clear
	// when empty. FallbackKeys are tried on load for key rotation.
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"log-level":      "log_level",
	"addr":           "server.addr",
	"repository-url": "repository.url",
	"store":          "store.backend",
	"store-path":     "store.path",
	"redis-addr":     "store.redis.addr",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.validate_requests", true)
	v.SetDefault("repository.url", "http://localhost:8000/api")
	v.SetDefault("repository.token", "")
	v.SetDefault("repository.timeout", 30*time.Second)
	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("store.path", ".syllabus/drafts")
	v.SetDefault("store.encryption_key", "")
	v.SetDefault("store.fallback_keys", []string{})
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.prefix", "syllabus:draft:")
	v.SetDefault("store.redis.ttl", 0)
}

// Load reads the configuration. An empty path searches for syllabus.yaml in
// the working directory and in .syllabus/; a missing file is not an error
// unless path was given explicitly. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("syllabus")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(".syllabus")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return fmt.Errorf("unknown store backend %q (want memory, file or redis)", c.Store.Backend)
	}
	if c.Store.Backend == BackendFile && c.Store.Path == "" {
		return errors.New("store.path is required for the file backend")
	}
	if c.Store.Backend == BackendRedis && c.Store.Redis.Addr == "" {
		return errors.New("store.redis.addr is required for the redis backend")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
