package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"kamai/internal/core"
	"kamai/internal/directory"
	applog "kamai/internal/log"
)

var _ directory.Store = (*SQLiteRepository)(nil)
var _ directory.Pinger = (*SQLiteRepository)(nil)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "kamai.db")
	repo, err := NewSQLiteRepository(path, applog.New(applog.Config{Output: io.Discard}))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteInsertListDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	fixed := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	a, err := repo.Insert(ctx, "Asha", "1.2M", "https://instagram.com/asha")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	b, err := repo.Insert(ctx, "Bilal", "", "")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if b.ID <= a.ID {
		t.Fatalf("ids not increasing: %d then %d", a.ID, b.ID)
	}

	list, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != b.ID || list[1].ID != a.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if !list[1].CreatedAt.Equal(fixed) || list[1].FollowerLabel != "1.2M" || !list[1].IsActive {
		t.Fatalf("row round trip lost data: %+v", list[1])
	}

	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ = repo.ListActive(ctx)
	if len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("deleted row still listed: %+v", list)
	}
	if err := repo.Delete(ctx, a.ID); !errors.Is(err, directory.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestSQLiteListEmpty(t *testing.T) {
	list, err := newTestRepo(t).ListActive(context.Background())
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %v %v", list, err)
	}
}

func TestSQLiteInsertRejectsInvalid(t *testing.T) {
	_, err := newTestRepo(t).Insert(context.Background(), "Asha", "", "ftp://example.com")
	if !errors.Is(err, core.ErrInvalidLink) {
		t.Fatalf("got %v, want ErrInvalidLink", err)
	}
}

func TestSQLiteReopenKeepsRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kamai.db")
	logger := applog.New(applog.Config{Output: io.Discard})

	repo, err := NewSQLiteRepository(path, logger)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Insert(ctx, "Asha", "", ""); err != nil {
		t.Fatal(err)
	}
	repo.Close()

	repo, err = NewSQLiteRepository(path, logger)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	list, err := repo.ListActive(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected 1 row after reopen, got %v %v", list, err)
	}
	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
