package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kamai/internal/core"
	"kamai/internal/directory"
	applog "kamai/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the directory store backed by a local SQLite file.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *applog.Logger
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc sqlite serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger = logger.WithComponent(applog.ComponentStorage)
	logger.Info("SQLite directory store ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{db: db, queries: New(db), logger: logger, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Insert(ctx context.Context, name, followerLabel, profileLink string) (core.FeaturedCreator, error) {
	c := core.FeaturedCreator{Name: name, FollowerLabel: followerLabel, ProfileLink: profileLink, IsActive: true}
	if err := c.Validate(); err != nil {
		return core.FeaturedCreator{}, err
	}
	created := r.now().UTC().Truncate(time.Second)

	id, err := r.queries.InsertCreator(ctx, InsertCreatorParams{
		Name:          name,
		FollowerLabel: followerLabel,
		ProfileLink:   profileLink,
		CreatedAt:     created.Unix(),
	})
	if err != nil {
		return core.FeaturedCreator{}, fmt.Errorf("insert featured creator: %w", err)
	}
	c.ID = id
	c.CreatedAt = created

	r.logger.DebugContext(ctx, "Featured creator inserted", applog.FieldCreatorID, id)
	return c, nil
}

func (r *SQLiteRepository) ListActive(ctx context.Context) ([]core.FeaturedCreator, error) {
	rows, err := r.queries.ListActiveCreators(ctx)
	if err != nil {
		return nil, fmt.Errorf("list featured creators: %w", err)
	}
	out := make([]core.FeaturedCreator, len(rows))
	for i, row := range rows {
		out[i] = core.FeaturedCreator{
			ID:            row.ID,
			Name:          row.Name,
			FollowerLabel: row.FollowerLabel,
			ProfileLink:   row.ProfileLink,
			IsActive:      row.IsActive,
			CreatedAt:     time.Unix(row.CreatedAt, 0).UTC(),
		}
	}
	return out, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.queries.DeactivateCreator(ctx, id)
	if err != nil {
		return fmt.Errorf("delete featured creator %d: %w", id, err)
	}
	if n == 0 {
		return directory.ErrNotFound
	}
	r.logger.DebugContext(ctx, "Featured creator deactivated", applog.FieldCreatorID, id)
	return nil
}
