package memory

import (
	"context"
	"errors"
	"testing"

	"kamai/internal/core"
)

func TestMirrorKeepsLastSnapshot(t *testing.T) {
	ctx := context.Background()
	m := New()
	_ = m.Mirror(ctx, []core.FeaturedCreator{{ID: 1, Name: "Asha"}})
	_ = m.Mirror(ctx, []core.FeaturedCreator{{ID: 2, Name: "Bilal"}, {ID: 1, Name: "Asha"}})

	rows, runs := m.Snapshot()
	if runs != 2 || len(rows) != 2 || rows[0].Name != "Bilal" {
		t.Fatalf("unexpected snapshot %v after %d runs", rows, runs)
	}
}

func TestMirrorFailure(t *testing.T) {
	m := New()
	boom := errors.New("quota exceeded")
	m.FailWith(boom)
	if err := m.Mirror(context.Background(), nil); !errors.Is(err, boom) {
		t.Fatalf("got %v, want %v", err, boom)
	}
	if _, runs := m.Snapshot(); runs != 0 {
		t.Fatal("failed run counted")
	}
	m.FailWith(nil)
	if err := m.Mirror(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
}
