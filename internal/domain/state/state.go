// Package state persists small engine flags that must survive restarts: the
// circuit-breaker switch and the liquidation scanner's last-run marker.
package state

import (
	"context"
	"time"
)

const (
	KeyBreakerPaused  = "breaker.paused"
	KeyScannerLastRun = "scanner.last_run"
)

type Repository interface {
	GetBool(ctx context.Context, key string) (bool, error)
	SetBool(ctx context.Context, key string, v bool) error
	// GetTime returns the zero time when the key was never written.
	GetTime(ctx context.Context, key string) (time.Time, error)
	SetTime(ctx context.Context, key string, t time.Time) error
}
