// Package worker keeps the spreadsheet mirror in step with the directory
// store.
package worker

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"kamai/internal/amqp"
	"kamai/internal/core"
	applog "kamai/internal/log"
	"kamai/internal/metrics"
	"kamai/internal/sheets"
)

// Triggers label why a resync ran.
const (
	TriggerEvent    = "event"
	TriggerStartup  = "startup"
	TriggerPeriodic = "periodic"
)

// Lister is the read side of the directory store.
type Lister interface {
	ListActive(ctx context.Context) ([]core.FeaturedCreator, error)
}

// MirrorWorker rewrites the mirror from the store. Events carry no row data;
// every trigger re-reads the store, so out of order or duplicate events
// converge on the same sheet.
type MirrorWorker struct {
	store   Lister
	mirror  sheets.DirectoryMirror
	metrics *metrics.Metrics
	logger  *applog.Logger

	mu   sync.Mutex
	last []core.FeaturedCreator
	have bool
}

func NewMirrorWorker(store Lister, mirror sheets.DirectoryMirror, m *metrics.Metrics, logger *applog.Logger) *MirrorWorker {
	return &MirrorWorker{
		store:   store,
		mirror:  mirror,
		metrics: m,
		logger:  logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleEvent is the AMQP handler. A returned error requeues the event.
func (w *MirrorWorker) HandleEvent(ctx context.Context, e *amqp.DirectoryEvent) error {
	w.logger.InfoContext(ctx, "Directory event received",
		applog.FieldEventID, e.EventID,
		applog.FieldEventType, e.Type,
		applog.FieldCreatorID, e.CreatorID)
	_, err := w.Resync(ctx, TriggerEvent)
	return err
}

// Resync mirrors the current active rows. It reports whether the sheet was
// written; an unchanged directory is not rewritten, except on startup.
func (w *MirrorWorker) Resync(ctx context.Context, trigger string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	rows, err := w.store.ListActive(ctx)
	if err != nil {
		w.count(trigger, err)
		return false, fmt.Errorf("list directory: %w", err)
	}

	if trigger != TriggerStartup && w.have && sameRows(w.last, rows) {
		w.logger.DebugContext(ctx, "Directory unchanged, mirror skipped", "trigger", trigger)
		return false, nil
	}

	if err := w.mirror.Mirror(ctx, rows); err != nil {
		w.count(trigger, err)
		return false, fmt.Errorf("mirror directory: %w", err)
	}
	w.count(trigger, nil)
	if w.metrics != nil {
		w.metrics.MirrorRows.Set(float64(len(rows)))
	}
	w.last, w.have = rows, true
	return true, nil
}

// RunPeriodic resyncs every interval until ctx is cancelled. Failures are
// logged and retried on the next tick.
func (w *MirrorWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.Resync(ctx, TriggerPeriodic); err != nil && ctx.Err() == nil {
				applog.LogError(ctx, "Periodic resync failed", err, applog.ComponentWorker, applog.OpMirror, nil)
			}
		}
	}
}

func (w *MirrorWorker) count(trigger string, err error) {
	if w.metrics != nil {
		w.metrics.MirrorRuns.WithLabelValues(trigger, metrics.Result(err)).Inc()
	}
}

func sameRows(a, b []core.FeaturedCreator) bool {
	return slices.EqualFunc(a, b, func(x, y core.FeaturedCreator) bool {
		return x.ID == y.ID && x.Name == y.Name && x.FollowerLabel == y.FollowerLabel &&
			x.ProfileLink == y.ProfileLink && x.CreatedAt.Equal(y.CreatedAt)
	})
}
