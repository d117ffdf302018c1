package history

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnvDBURL — переменная окружения со строкой подключения к PostgreSQL.
// Пустое значение означает, что журнал запусков выключен.
const EnvDBURL = "CRUCIBLE_DB_URL"

// Enabled возвращает true, если журнал запусков сконфигурирован.
func Enabled() bool {
	return os.Getenv(EnvDBURL) != ""
}

// NewPool открывает пул подключений к базе журнала запусков.
func NewPool(ctx context.Context) (*pgxpool.Pool, error) {
	dsn := os.Getenv(EnvDBURL)
	if dsn == "" {
		return nil, fmt.Errorf("%s is not set", EnvDBURL)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 4
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}
