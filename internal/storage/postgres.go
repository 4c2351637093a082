package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Postgres хранит пары ключ-значение в таблице kv_store.
type Postgres struct {
	pool   *pgxpool.Pool
	delays []time.Duration
}

// NewPostgres подключается к БД и применяет миграции схемы.
func NewPostgres(dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := &Postgres{
		pool:   pool,
		delays: []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second},
	}

	if err := p.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return p, nil
}

func (p *Postgres) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(p.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// withRetry повторяет операцию при конфликтах сериализации, дедлоках и обрывах соединения.
func (p *Postgres) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for i := 0; i <= len(p.delays); i++ {
		err = fn()
		if err == nil || !retryable(err) || i == len(p.delays) {
			return err
		}

		timer := time.NewTimer(p.delays[i])
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}

	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// Get возвращает значение ключа.
func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.withRetry(ctx, func() error {
		return p.pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get key %s: %w", key, err)
	}
	return value, true, nil
}

// Set сохраняет значение ключа.
func (p *Postgres) Set(ctx context.Context, key, value string) error {
	err := p.withRetry(ctx, func() error {
		_, err := p.pool.Exec(ctx,
			`INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, now())
			 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
			key, value,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("set key %s: %w", key, err)
	}
	return nil
}

// Remove удаляет ключ.
func (p *Postgres) Remove(ctx context.Context, key string) error {
	err := p.withRetry(ctx, func() error {
		_, err := p.pool.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, key)
		return err
	})
	if err != nil {
		return fmt.Errorf("remove key %s: %w", key, err)
	}
	return nil
}
