// Package memory is the in-process directory store used for local runs and
// tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"kamai/internal/core"
	"kamai/internal/directory"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]core.FeaturedCreator
	now    func() time.Time
}

func New() *Store {
	return &Store{rows: make(map[int64]core.FeaturedCreator), now: time.Now}
}

// NewSeeded returns a store pre-filled with active rows, in insertion order.
func NewSeeded(seed []core.FeaturedCreator) *Store {
	s := New()
	for _, c := range seed {
		_, _ = s.Insert(context.Background(), c.Name, c.FollowerLabel, c.ProfileLink)
	}
	return s
}

func (s *Store) Insert(ctx context.Context, name, followerLabel, profileLink string) (core.FeaturedCreator, error) {
	if err := ctx.Err(); err != nil {
		return core.FeaturedCreator{}, err
	}
	c := core.FeaturedCreator{Name: name, FollowerLabel: followerLabel, ProfileLink: profileLink, IsActive: true}
	if err := c.Validate(); err != nil {
		return core.FeaturedCreator{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	c.CreatedAt = s.now().UTC().Truncate(time.Second)
	s.rows[c.ID] = c
	return c, nil
}

func (s *Store) ListActive(ctx context.Context) ([]core.FeaturedCreator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.FeaturedCreator, 0, len(s.rows))
	for _, c := range s.rows {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[id]
	if !ok || !c.IsActive {
		return directory.ErrNotFound
	}
	c.IsActive = false
	s.rows[id] = c
	return nil
}

func (s *Store) Close() error { return nil }
