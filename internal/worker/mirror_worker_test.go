package worker

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"kamai/internal/amqp"
	dirmemory "kamai/internal/directory/memory"
	applog "kamai/internal/log"
	"kamai/internal/metrics"
	sheetmemory "kamai/internal/sheets/memory"
)

func newWorker(t *testing.T) (*MirrorWorker, *dirmemory.Store, *sheetmemory.Mirror, *metrics.Metrics) {
	t.Helper()
	store := dirmemory.New()
	mirror := sheetmemory.New()
	m := metrics.New(nil)
	w := NewMirrorWorker(store, mirror, m, applog.New(applog.Config{Output: io.Discard}))
	return w, store, mirror, m
}

func TestHandleEventMirrorsActiveRows(t *testing.T) {
	ctx := context.Background()
	w, store, mirror, m := newWorker(t)

	a, _ := store.Insert(ctx, "Asha", "", "")
	_, _ = store.Insert(ctx, "Bilal", "", "")
	if err := store.Delete(ctx, a.ID); err != nil {
		t.Fatal(err)
	}

	if err := w.HandleEvent(ctx, amqp.NewDirectoryEvent(amqp.EventCreatorRemoved, a.ID)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	rows, runs := mirror.Snapshot()
	if runs != 1 || len(rows) != 1 || rows[0].Name != "Bilal" {
		t.Fatalf("unexpected mirror %v after %d runs", rows, runs)
	}
	if got := testutil.ToFloat64(m.MirrorRows); got != 1 {
		t.Fatalf("mirror rows gauge = %v", got)
	}
}

func TestResyncSkipsUnchangedDirectory(t *testing.T) {
	ctx := context.Background()
	w, store, mirror, _ := newWorker(t)
	_, _ = store.Insert(ctx, "Asha", "", "")

	if wrote, err := w.Resync(ctx, TriggerStartup); err != nil || !wrote {
		t.Fatalf("startup resync: wrote=%v err=%v", wrote, err)
	}
	if wrote, _ := w.Resync(ctx, TriggerPeriodic); wrote {
		t.Fatal("unchanged directory should not be rewritten")
	}
	if wrote, _ := w.Resync(ctx, TriggerStartup); !wrote {
		t.Fatal("startup always rewrites")
	}

	_, _ = store.Insert(ctx, "Bilal", "", "")
	if wrote, _ := w.Resync(ctx, TriggerEvent); !wrote {
		t.Fatal("changed directory should be rewritten")
	}
	if _, runs := mirror.Snapshot(); runs != 3 {
		t.Fatalf("expected 3 writes, got %d", runs)
	}
}

func TestMirrorFailureIsReturnedForRequeue(t *testing.T) {
	ctx := context.Background()
	w, _, mirror, m := newWorker(t)
	mirror.FailWith(errors.New("quota exceeded"))

	err := w.HandleEvent(ctx, amqp.NewDirectoryEvent(amqp.EventCreatorListed, 1))
	if err == nil {
		t.Fatal("expected error so the event is requeued")
	}
	if got := testutil.ToFloat64(m.MirrorRuns.WithLabelValues(TriggerEvent, metrics.ResultError)); got != 1 {
		t.Fatalf("error run not counted: %v", got)
	}

	mirror.FailWith(nil)
	if err := w.HandleEvent(ctx, amqp.NewDirectoryEvent(amqp.EventCreatorListed, 1)); err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
}

func TestRunPeriodicStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w, store, mirror, _ := newWorker(t)
	_, _ = store.Insert(context.Background(), "Asha", "", "")

	done := make(chan error, 1)
	go func() { done <- w.RunPeriodic(ctx, 5*time.Millisecond) }()

	deadline := time.After(2 * time.Second)
	for {
		if _, runs := mirror.Snapshot(); runs > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("periodic resync never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("RunPeriodic returned %v", err)
	}
}
