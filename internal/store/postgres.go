package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // драйвер "pgx"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq" // драйвер "postgres" и коды ошибок
)

//go:embed schema.sql
var schemaSQL string

//go:embed data.sql
var dataSQL string

// Коды ошибок PostgreSQL, которые мы различаем.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PoolOptions параметры пула соединений.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Connect открывает соединение с PostgreSQL через драйвер driverName
// ("postgres" для lib/pq или "pgx") и проверяет его ping-ом.
func Connect(ctx context.Context, driverName, dbURL string, pool PoolOptions, logger *slog.Logger) (*sqlx.DB, error) {
	logger.Info("Attempting to connect to database", slog.String("driver", driverName), slog.String("dbURL", redactURL(dbURL)))

	db, err := sqlx.ConnectContext(ctx, driverName, dbURL)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	if err := db.PingContext(ctx); err != nil {
		logger.Error("Failed to ping PostgreSQL database", slog.String("error", err.Error()))
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	logger.Info("Successfully connected to PostgreSQL database.")
	return db, nil
}

// InitSchema создает таблицы (если их нет) и заполняет справочники.
// Повторный запуск ничего не меняет.
func InitSchema(ctx context.Context, db *sqlx.DB, logger *slog.Logger) error {
	for _, script := range []string{schemaSQL, dataSQL} {
		for _, stmt := range strings.Split(script, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				logger.ErrorContext(ctx, "Failed to apply schema statement", slog.String("error", err.Error()))
				return fmt.Errorf("failed to init schema: %w", err)
			}
		}
	}
	logger.InfoContext(ctx, "Database schema is ready")
	return nil
}

// pgErrorCode SQLSTATE ошибки от любого из двух драйверов или пустая строка.
func pgErrorCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// redactURL строка подключения без пароля, для логов.
func redactURL(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "<unparseable>"
	}
	return u.Redacted()
}
