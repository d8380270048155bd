// Package memory is an in-process DirectoryMirror for local runs and tests.
package memory

import (
	"context"
	"sync"

	"kamai/internal/core"
	"kamai/internal/sheets"
)

var _ sheets.DirectoryMirror = (*Mirror)(nil)

type Mirror struct {
	mu   sync.Mutex
	rows []core.FeaturedCreator
	runs int
	fail error
}

func New() *Mirror {
	return &Mirror{}
}

// FailWith makes the following Mirror calls return err; nil clears it.
func (m *Mirror) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

func (m *Mirror) Mirror(ctx context.Context, rows []core.FeaturedCreator) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.rows = append([]core.FeaturedCreator(nil), rows...)
	m.runs++
	return nil
}

// Snapshot returns the rows of the last successful Mirror call and how many
// calls succeeded.
func (m *Mirror) Snapshot() ([]core.FeaturedCreator, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.FeaturedCreator(nil), m.rows...), m.runs
}
