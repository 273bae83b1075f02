package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/uzochukwuV/lendcore/internal/domain/state"
)

func TestStateRepository_BoolDefaultsFalse(t *testing.T) {
	r := NewStateRepository(openTestDB(t))

	v, err := r.GetBool(context.Background(), state.KeyBreakerPaused)
	if err != nil {
		t.Fatalf("GetBool: %v", err)
	}
	if v {
		t.Fatal("unwritten flag reads true")
	}
}

func TestStateRepository_BoolUpsert(t *testing.T) {
	r := NewStateRepository(openTestDB(t))
	ctx := context.Background()

	if err := r.SetBool(ctx, state.KeyBreakerPaused, true); err != nil {
		t.Fatalf("SetBool: %v", err)
	}
	if v, _ := r.GetBool(ctx, state.KeyBreakerPaused); !v {
		t.Fatal("flag not set")
	}

	// second write must update, not collide on the primary key
	if err := r.SetBool(ctx, state.KeyBreakerPaused, false); err != nil {
		t.Fatalf("SetBool overwrite: %v", err)
	}
	if v, _ := r.GetBool(ctx, state.KeyBreakerPaused); v {
		t.Fatal("flag not cleared")
	}
}

func TestStateRepository_TimeRoundTrip(t *testing.T) {
	r := NewStateRepository(openTestDB(t))
	ctx := context.Background()

	zero, err := r.GetTime(ctx, state.KeyScannerLastRun)
	if err != nil {
		t.Fatalf("GetTime: %v", err)
	}
	if !zero.IsZero() {
		t.Fatalf("unwritten marker = %v, want zero", zero)
	}

	mark := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	if err := r.SetTime(ctx, state.KeyScannerLastRun, mark); err != nil {
		t.Fatalf("SetTime: %v", err)
	}
	got, err := r.GetTime(ctx, state.KeyScannerLastRun)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(mark) {
		t.Fatalf("marker = %v, want %v", got, mark)
	}
}

func TestStateRepository_KeysAreIndependent(t *testing.T) {
	r := NewStateRepository(openTestDB(t))
	ctx := context.Background()

	if err := r.SetBool(ctx, state.KeyBreakerPaused, true); err != nil {
		t.Fatal(err)
	}
	if v, err := r.GetTime(ctx, state.KeyScannerLastRun); err != nil || !v.IsZero() {
		t.Fatalf("unrelated key affected: %v, %v", v, err)
	}
}
