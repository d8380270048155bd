// Package postgres is the hosted directory store, on a pgx connection pool.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kamai/internal/core"
	"kamai/internal/directory"
	applog "kamai/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	insertCreator = `
INSERT INTO featured_creators (name, follower_label, profile_link)
VALUES ($1, $2, $3)
RETURNING id, is_active, created_at`

	listActiveCreators = `
SELECT id, name, follower_label, profile_link, is_active, created_at
FROM featured_creators
WHERE is_active
ORDER BY id DESC`

	deactivateCreator = `
UPDATE featured_creators SET is_active = FALSE WHERE id = $1 AND is_active`
)

// Store is the directory store backed by PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger *applog.Logger
}

// Open connects to databaseURL, applies migrations and returns a ready
// store.
func Open(ctx context.Context, databaseURL string, logger *applog.Logger) (*Store, error) {
	logger = logger.WithComponent(applog.ComponentStorage)

	if err := RunMigrations(databaseURL, logger); err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("Postgres directory store ready")
	return &Store{pool: pool, logger: logger}, nil
}

// RunMigrations applies the embedded schema to databaseURL.
func RunMigrations(databaseURL string, logger *applog.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	logger.Info("Database migration completed", "version", version, "dirty", dirty)
	return nil
}

func (s *Store) Insert(ctx context.Context, name, followerLabel, profileLink string) (core.FeaturedCreator, error) {
	c := core.FeaturedCreator{Name: name, FollowerLabel: followerLabel, ProfileLink: profileLink}
	if err := c.Validate(); err != nil {
		return core.FeaturedCreator{}, err
	}
	err := s.pool.QueryRow(ctx, insertCreator, name, followerLabel, profileLink).
		Scan(&c.ID, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return core.FeaturedCreator{}, fmt.Errorf("insert featured creator: %w", err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func (s *Store) ListActive(ctx context.Context) ([]core.FeaturedCreator, error) {
	rows, err := s.pool.Query(ctx, listActiveCreators)
	if err != nil {
		return nil, fmt.Errorf("list featured creators: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.FeaturedCreator, error) {
		var c core.FeaturedCreator
		err := row.Scan(&c.ID, &c.Name, &c.FollowerLabel, &c.ProfileLink, &c.IsActive, &c.CreatedAt)
		c.CreatedAt = c.CreatedAt.UTC()
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan featured creators: %w", err)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, deactivateCreator, id)
	if err != nil {
		return fmt.Errorf("delete featured creator %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return directory.ErrNotFound
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
