package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the statements used against the featured_creators table.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// FeaturedCreatorRow mirrors one featured_creators row.
type FeaturedCreatorRow struct {
	ID            int64
	Name          string
	FollowerLabel string
	ProfileLink   string
	IsActive      bool
	CreatedAt     int64 // unix seconds
}

const insertCreator = `
INSERT INTO featured_creators (name, follower_label, profile_link, is_active, created_at)
VALUES (?, ?, ?, 1, ?)
`

type InsertCreatorParams struct {
	Name          string
	FollowerLabel string
	ProfileLink   string
	CreatedAt     int64
}

func (q *Queries) InsertCreator(ctx context.Context, arg InsertCreatorParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertCreator, arg.Name, arg.FollowerLabel, arg.ProfileLink, arg.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const listActiveCreators = `
SELECT id, name, follower_label, profile_link, is_active, created_at
FROM featured_creators
WHERE is_active = 1
ORDER BY id DESC
`

func (q *Queries) ListActiveCreators(ctx context.Context) ([]FeaturedCreatorRow, error) {
	rows, err := q.db.QueryContext(ctx, listActiveCreators)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []FeaturedCreatorRow
	for rows.Next() {
		var i FeaturedCreatorRow
		if err := rows.Scan(&i.ID, &i.Name, &i.FollowerLabel, &i.ProfileLink, &i.IsActive, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deactivateCreator = `
UPDATE featured_creators SET is_active = 0 WHERE id = ? AND is_active = 1
`

// DeactivateCreator returns the number of rows changed.
func (q *Queries) DeactivateCreator(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deactivateCreator, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
