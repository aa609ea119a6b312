package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/chamada-api/pkg/config"
)

const (
	pingTimeout  = 5 * time.Second
	retryBackoff = 2 * time.Second
)

// DSN renders cfg as a libpq keyword/value string. Empty settings are left
// out so libpq falls back to its own environment defaults.
func DSN(cfg config.DatabaseConfig) string {
	pairs := []struct {
		key, value string
	}{
		{"host", cfg.Host},
		{"port", portString(cfg.Port)},
		{"user", cfg.User},
		{"password", cfg.Password},
		{"dbname", cfg.Name},
		{"sslmode", cfg.SSLMode},
	}

	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p.value == "" {
			continue
		}
		parts = append(parts, p.key+"="+quoteValue(p.value))
	}
	return strings.Join(parts, " ")
}

// NewPostgres opens the pool and waits until the server answers a ping.
// A container that is still booting gets cfg.ConnectAttempts tries before
// the error is returned.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*sqlx.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sqlx.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	attempts := max(cfg.ConnectAttempts, 1)
	for attempt := 1; ; attempt++ {
		if err = ping(ctx, db); err == nil {
			return db, nil
		}
		if attempt == attempts {
			break
		}
		logger.Warn("postgres not ready", zap.Int("attempt", attempt), zap.Error(err))
		if waitErr := sleep(ctx, retryBackoff); waitErr != nil {
			err = waitErr
			break
		}
	}

	_ = db.Close()
	return nil, fmt.Errorf("ping postgres: %w", err)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func ping(ctx context.Context, db *sqlx.DB) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return db.PingContext(pingCtx)
}

func portString(port int) string {
	if port <= 0 {
		return ""
	}
	return fmt.Sprint(port)
}

func quoteValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
