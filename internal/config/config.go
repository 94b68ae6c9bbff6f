package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables
// and command-line flags.
type Config struct {
	Server   ServerConfig
	App      AppConfig
	Storage  StorageConfig
	Lock     LockConfig
	Activity ActivityConfig
	Cleanup  CleanupConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"inventory-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// StorageConfig holds the cache directory layout settings.
type StorageConfig struct {
	CacheDir       string `envconfig:"CACHE_DIR" default:""`
	UploadMaxBytes int64  `envconfig:"UPLOAD_MAX_BYTES" default:"10485760"`
}

// LockConfig selects how the inventory read-modify-write cycle is guarded.
type LockConfig struct {
	Type string `envconfig:"LOCK_TYPE" default:"memory"` // memory, file, or redis

	RedisHost     string        `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int           `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	RedisKey      string        `envconfig:"LOCK_REDIS_KEY" default:"inventory:store:lock"`
	TTL           time.Duration `envconfig:"LOCK_TTL" default:"30s"`
}

// ActivityConfig holds activity log database settings.
type ActivityConfig struct {
	Type string `envconfig:"ACTIVITY_DB_TYPE" default:"sqlite"` // sqlite, mysql, postgres, or none
	Path string `envconfig:"ACTIVITY_DB_PATH" default:""`        // sqlite only, defaults to <cache>/activity.db
	// MySQL / PostgreSQL settings
	Host     string `envconfig:"ACTIVITY_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"ACTIVITY_DB_PORT" default:"0"`
	Name     string `envconfig:"ACTIVITY_DB_NAME" default:"inventory"`
	User     string `envconfig:"ACTIVITY_DB_USER" default:""`
	Password string `envconfig:"ACTIVITY_DB_PASS" default:""`
	SSLMode  string `envconfig:"ACTIVITY_DB_SSLMODE" default:"disable"`

	Retention time.Duration `envconfig:"ACTIVITY_RETENTION" default:"720h"`
}

// CleanupConfig holds background maintenance settings.
type CleanupConfig struct {
	Interval    time.Duration `envconfig:"CLEANUP_INTERVAL" default:"1h"`
	SweepPhotos bool          `envconfig:"PHOTO_SWEEP_ENABLED" default:"false"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// RedisAddress returns the Redis address in host:port format.
func (l *LockConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", l.RedisHost, l.RedisPort)
}

// SQLitePath returns the activity database file, defaulting into cacheDir.
func (a *ActivityConfig) SQLitePath(cacheDir string) string {
	if a.Path != "" {
		return a.Path
	}
	return filepath.Join(cacheDir, "activity.db")
}

// MySQLDSN returns the MySQL data source name.
func (a *ActivityConfig) MySQLDSN() string {
	port := a.Port
	if port == 0 {
		port = 3306
	}
	user := a.User
	if user == "" {
		user = "root"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		user, a.Password, a.Host, port, a.Name)
}

// PostgresDSN returns the PostgreSQL connection string.
func (a *ActivityConfig) PostgresDSN() string {
	port := a.Port
	if port == 0 {
		port = 5432
	}
	user := a.User
	if user == "" {
		user = "postgres"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		user, a.Password, a.Host, port, a.Name, a.SSLMode)
}

// ErrCacheDirRequired is returned when neither -c nor CACHE_DIR is set.
var ErrCacheDirRequired = errors.New("cache directory is required (use -c/--cache or CACHE_DIR)")

// Load reads configuration from environment variables, then applies
// command-line flags from args on top.
func Load(args []string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := parseFlags(&cfg, args); err != nil {
		return nil, err
	}

	if cfg.Storage.CacheDir == "" {
		return nil, ErrCacheDirRequired
	}

	dir, err := filepath.Abs(cfg.Storage.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache dir: %w", err)
	}
	cfg.Storage.CacheDir = dir

	return &cfg, nil
}

// MustLoad loads configuration from the environment and os.Args or exits.
func MustLoad() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return cfg
}
