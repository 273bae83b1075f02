// Package breaker implements the global circuit breaker. Every mutating use
// case calls Ensure before any validation or external call; the flag is
// persisted so a restart comes back up in the same position.
package breaker

import (
	"context"

	"github.com/uzochukwuV/lendcore/internal/domain/fault"
	"github.com/uzochukwuV/lendcore/internal/domain/state"
)

type Breaker struct{ states state.Repository }

func New(states state.Repository) *Breaker { return &Breaker{states: states} }

// Ensure fails fast with a paused fault while the breaker is engaged.
func (b *Breaker) Ensure(ctx context.Context) error {
	paused, err := b.states.GetBool(ctx, state.KeyBreakerPaused)
	if err != nil {
		return fault.Newf(fault.KindUnavailable, "breaker state unreadable: %v", err)
	}
	if paused {
		return fault.New(fault.KindPaused, "engine is paused")
	}
	return nil
}

func (b *Breaker) Pause(ctx context.Context) error {
	if err := b.states.SetBool(ctx, state.KeyBreakerPaused, true); err != nil {
		return fault.Newf(fault.KindUnavailable, "persist pause: %v", err)
	}
	return nil
}

func (b *Breaker) Unpause(ctx context.Context) error {
	if err := b.states.SetBool(ctx, state.KeyBreakerPaused, false); err != nil {
		return fault.Newf(fault.KindUnavailable, "persist unpause: %v", err)
	}
	return nil
}

func (b *Breaker) Paused(ctx context.Context) (bool, error) {
	return b.states.GetBool(ctx, state.KeyBreakerPaused)
}
