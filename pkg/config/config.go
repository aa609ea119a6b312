// Package config reads process settings from the environment, optionally
// seeded by a .env file in the working directory.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage drivers understood by the API binary.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	Env            string
	Port           int
	APIPrefix      string
	RequestTimeout time.Duration
	StorageDriver  string
	SeedSampleData bool
	SeedPassword   string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Log       LogConfig
	Dashboard DashboardConfig
	Backup    BackupConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	AutoMigrate     bool
	ConnectAttempts int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// AuthConfig controls whether bearer tokens are enforced on the API routes.
type AuthConfig struct {
	Required bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DashboardConfig governs cache tuning for the dashboard counters.
type DashboardConfig struct {
	CacheTTL time.Duration
}

// BackupConfig controls snapshot archiving to local storage.
type BackupConfig struct {
	ArchiveEnabled  bool
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	Workers         int
	Retries         int
}

const devJWTSecret = "dev_secret"

var defaults = map[string]any{
	"ENV":              EnvDevelopment,
	"PORT":             8080,
	"API_PREFIX":       "/api",
	"REQUEST_TIMEOUT":  "10s",
	"STORAGE_DRIVER":   StorageDriverPostgres,
	"SEED_SAMPLE_DATA": false,
	"SEED_PASSWORD":    "123456",

	"DB_HOST":             "localhost",
	"DB_PORT":             5432,
	"DB_USER":             "postgres",
	"DB_PASSWORD":         "postgres",
	"DB_NAME":             "sistema_chamada",
	"DB_SSL_MODE":         "disable",
	"DB_MAX_OPEN_CONNS":   10,
	"DB_MAX_IDLE_CONNS":   5,
	"DB_AUTO_MIGRATE":     true,
	"DB_CONNECT_ATTEMPTS": 5,

	"REDIS_ENABLED":  false,
	"REDIS_HOST":     "localhost",
	"REDIS_PORT":     6379,
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,

	"JWT_SECRET":     devJWTSecret,
	"JWT_EXPIRATION": "24h",
	"JWT_ISSUER":     "sistema-chamada",
	"AUTH_REQUIRED":  false,

	"ALLOWED_ORIGINS": "",
	"LOG_LEVEL":       "info",
	"LOG_FORMAT":      "json",

	"DASHBOARD_CACHE_TTL": "30s",

	"BACKUP_ARCHIVE_ENABLED":   false,
	"BACKUP_STORAGE_DIR":       "./backups",
	"BACKUP_SIGNED_URL_SECRET": "dev_backup_secret",
	"BACKUP_SIGNED_URL_TTL":    "1h",
	"BACKUP_WORKERS":           1,
	"BACKUP_RETRIES":           3,
}

// Load resolves the configuration. Real environment variables win over the
// .env file, which wins over the built-in defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v, err := newViper()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:            v.GetString("ENV"),
		Port:           v.GetInt("PORT"),
		APIPrefix:      v.GetString("API_PREFIX"),
		RequestTimeout: duration(v, "REQUEST_TIMEOUT"),
		StorageDriver:  strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
		SeedSampleData: v.GetBool("SEED_SAMPLE_DATA"),
		SeedPassword:   v.GetString("SEED_PASSWORD"),

		Database:  databaseSection(v),
		Redis:     redisSection(v),
		JWT:       JWTConfig{Secret: v.GetString("JWT_SECRET"), Expiration: duration(v, "JWT_EXPIRATION"), Issuer: v.GetString("JWT_ISSUER")},
		Auth:      AuthConfig{Required: v.GetBool("AUTH_REQUIRED")},
		CORS:      CORSConfig{AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS"))},
		Log:       LogConfig{Level: v.GetString("LOG_LEVEL"), Format: v.GetString("LOG_FORMAT")},
		Dashboard: DashboardConfig{CacheTTL: duration(v, "DASHBOARD_CACHE_TTL")},
		Backup:    backupSection(v),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return v, nil
}

func databaseSection(v *viper.Viper) DatabaseConfig {
	return DatabaseConfig{
		Host:            v.GetString("DB_HOST"),
		Port:            v.GetInt("DB_PORT"),
		User:            v.GetString("DB_USER"),
		Password:        v.GetString("DB_PASSWORD"),
		Name:            v.GetString("DB_NAME"),
		SSLMode:         v.GetString("DB_SSL_MODE"),
		MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		ConnectAttempts: v.GetInt("DB_CONNECT_ATTEMPTS"),
	}
}

func redisSection(v *viper.Viper) RedisConfig {
	return RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}
}

func backupSection(v *viper.Viper) BackupConfig {
	return BackupConfig{
		ArchiveEnabled:  v.GetBool("BACKUP_ARCHIVE_ENABLED"),
		StorageDir:      v.GetString("BACKUP_STORAGE_DIR"),
		SignedURLSecret: v.GetString("BACKUP_SIGNED_URL_SECRET"),
		SignedURLTTL:    duration(v, "BACKUP_SIGNED_URL_TTL"),
		Workers:         max(v.GetInt("BACKUP_WORKERS"), 1),
		Retries:         v.GetInt("BACKUP_RETRIES"),
	}
}

// validate collects every problem so a misconfigured deploy fails once.
func (c *Config) validate() error {
	var errs []error
	if c.StorageDriver != StorageDriverPostgres && c.StorageDriver != StorageDriverMemory {
		errs = append(errs, errors.New("STORAGE_DRIVER must be postgres or memory"))
	}
	if c.Env == EnvProduction && (c.JWT.Secret == "" || c.JWT.Secret == devJWTSecret) {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.Backup.ArchiveEnabled && (c.Backup.SignedURLSecret == "" || c.Backup.SignedURLTTL <= 0) {
		errs = append(errs, errors.New("BACKUP_SIGNED_URL_SECRET and a positive BACKUP_SIGNED_URL_TTL are required for archiving"))
	}
	return errors.Join(errs...)
}

// duration parses key, falling back to the registered default when the
// value is malformed.
func duration(v *viper.Viper, key string) time.Duration {
	if d, err := time.ParseDuration(v.GetString(key)); err == nil {
		return d
	}
	fallback, _ := time.ParseDuration(defaults[key].(string))
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
