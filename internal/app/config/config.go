// Package config loads the process configuration from defaults, an optional .env file,
// the environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"account_backend/internal/feature/account/credential"
	"account_backend/internal/platform/db"
	mongodb "account_backend/internal/platform/mongodb"
	"account_backend/internal/platform/redis"
	"account_backend/internal/platform/session"
)

// EnvProduction is the APP_ENV value that enables production behaviour.
const EnvProduction = "production"

// Store drivers.
const (
	StoreMongo    = "mongo"
	StorePostgres = db.DriverPostgres
	StoreSQLite   = db.DriverSQLite
)

var (
	// ErrJWTSecretMissing is returned when production runs without a signing secret.
	ErrJWTSecretMissing = errors.New("JWT_SECRET must be set in production")
	// ErrUnknownStore is returned for an unsupported STORE_DRIVER.
	ErrUnknownStore = errors.New("STORE_DRIVER must be one of mongo, postgres, sqlite")
)

// Config is the full process configuration.
type Config struct {
	Env  string
	Port string

	StoreDriver string
	Mongo       mongodb.Config
	DB          db.Config

	Redis        redis.Config
	UserCacheTTL time.Duration

	JWTSecret    string
	TokenTTL     time.Duration
	CookieMaxAge time.Duration
	BcryptCost   int

	CORSOrigins []string

	LogLevel string
	LogFile  string

	ExposePasswordHash bool
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// CookieOptions returns the session cookie attributes for this environment.
func (c *Config) CookieOptions() session.CookieOptions {
	return session.CookieOptions{MaxAge: c.CookieMaxAge, Secure: c.IsProduction()}
}

// envConfig is the flat koanf view of the environment. Keys are lower-cased variable names.
type envConfig struct {
	AppEnv      string `koanf:"app_env"`
	Port        string `koanf:"port"`
	StoreDriver string `koanf:"store_driver"`

	MongoURI      string `koanf:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database"`

	DBHost        string `koanf:"db_host"`
	DBPort        string `koanf:"db_port"`
	DBUser        string `koanf:"db_user"`
	DBPassword    string `koanf:"db_password"`
	DBName        string `koanf:"db_name"`
	DBSSLMode     string `koanf:"db_sslmode"`
	SQLitePath    string `koanf:"sqlite_path"`
	RunMigrations bool   `koanf:"run_migrations"`

	RedisHost     string        `koanf:"redis_host"`
	RedisPort     string        `koanf:"redis_port"`
	RedisPassword string        `koanf:"redis_password"`
	UserCacheTTL  time.Duration `koanf:"user_cache_ttl"`

	JWTSecret    string        `koanf:"jwt_secret"`
	TokenTTL     time.Duration `koanf:"token_ttl"`
	CookieMaxAge time.Duration `koanf:"cookie_max_age"`
	BcryptCost   int           `koanf:"bcrypt_cost"`

	CORSOrigins string `koanf:"cors_origins"`

	LogLevel string `koanf:"log_level"`
	LogFile  string `koanf:"log_file"`

	ExposePasswordHash bool `koanf:"expose_password_hash"`
}

func defaults() envConfig {
	return envConfig{
		AppEnv:        "development",
		Port:          "4000",
		StoreDriver:   StoreMongo,
		MongoDatabase: "accounts",
		DBHost:        "localhost",
		DBPort:        "5432",
		DBSSLMode:     "disable",
		RunMigrations: true,
		RedisPort:     "6379",
		UserCacheTTL:  5 * time.Minute,
		TokenTTL:      time.Hour,
		CookieMaxAge:  session.DefaultMaxAge,
		BcryptCost:    credential.DefaultCost,
		LogLevel:      "info",
	}
}

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"port":      "port",
	"store":     "store_driver",
	"log-level": "log_level",
}

// Load reads envFile (if it exists) into the environment and builds a Config.
// Variables already set in the environment win over the file; flags that were
// set explicitly on fs win over both. fs may be nil.
func Load(envFile string, fs *pflag.FlagSet) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	k, err := loadEnv()
	if err != nil {
		return nil, err
	}
	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, f.Value.String()
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}
	return build(k)
}

// FromEnv builds a Config from the environment alone.
func FromEnv() (*Config, error) {
	k, err := loadEnv()
	if err != nil {
		return nil, err
	}
	return build(k)
}

// loadEnv loads every non-empty environment variable under its lower-cased name.
func loadEnv() (*koanf.Koanf, error) {
	k := koanf.New(".")
	provider := env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return strings.ToLower(key), value
	})
	if err := k.Load(provider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	return k, nil
}

func build(k *koanf.Koanf) (*Config, error) {
	e := defaults()
	if err := k.Unmarshal("", &e); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Config{
		Env:         e.AppEnv,
		Port:        e.Port,
		StoreDriver: e.StoreDriver,
		Mongo: mongodb.Config{
			URI:      e.MongoURI,
			Database: e.MongoDatabase,
		},
		DB: db.Config{
			Driver:        e.StoreDriver,
			User:          e.DBUser,
			Password:      e.DBPassword,
			Name:          e.DBName,
			Host:          e.DBHost,
			Port:          e.DBPort,
			SSLMode:       e.DBSSLMode,
			SQLitePath:    e.SQLitePath,
			RunMigrations: e.RunMigrations,
		},
		Redis: redis.Config{
			Host:     e.RedisHost,
			Port:     e.RedisPort,
			Password: e.RedisPassword,
		},
		UserCacheTTL:       e.UserCacheTTL,
		JWTSecret:          e.JWTSecret,
		TokenTTL:           e.TokenTTL,
		CookieMaxAge:       e.CookieMaxAge,
		BcryptCost:         e.BcryptCost,
		CORSOrigins:        splitList(e.CORSOrigins),
		LogLevel:           e.LogLevel,
		LogFile:            e.LogFile,
		ExposePasswordHash: e.ExposePasswordHash,
	}, nil
}

// Validate checks the settings that would otherwise fail at first use.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMongo:
		if c.Mongo.URI == "" {
			return mongodb.ErrURIMissing
		}
	case StorePostgres, StoreSQLite:
	default:
		return ErrUnknownStore
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return ErrJWTSecretMissing
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
