// Package directory defines the featured creators store and the errors its
// adapters share.
package directory

import (
	"context"
	"errors"

	"kamai/internal/core"
)

// ErrNotFound is returned by Delete when no active row has the given id.
var ErrNotFound = errors.New("featured creator not found")

// Store persists the featured creators directory. Adapters make a single
// attempt per call and return driver errors wrapped, never retried.
type Store interface {
	// Insert adds an active row and returns it with id and creation time.
	Insert(ctx context.Context, name, followerLabel, profileLink string) (core.FeaturedCreator, error)
	// ListActive returns active rows, newest first.
	ListActive(ctx context.Context) ([]core.FeaturedCreator, error)
	// Delete deactivates the row with the given id.
	Delete(ctx context.Context, id int64) error
	Close() error
}

// Pinger is implemented by stores backed by a connection that can be
// health checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks s when it supports it and reports healthy otherwise.
func Ping(ctx context.Context, s Store) error {
	if p, ok := s.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
