package tasks

import (
	"context"
	"time"
)

// Pacer waits between remote calls. call is the 1-based count of calls issued so far in the current phase.
type Pacer interface {
	Pause(ctx context.Context, call int) error
}

// PacerFunc adapts a function to [Pacer].
type PacerFunc func(ctx context.Context, call int) error

func (f PacerFunc) Pause(ctx context.Context, call int) error {
	return f(ctx, call)
}

// FixedPacer sleeps for the same interval after every call.
type FixedPacer struct {
	Delay time.Duration
}

func (p FixedPacer) Pause(ctx context.Context, call int) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoPacing never waits.
var NoPacing Pacer = FixedPacer{}

func pacerOrDefault(p Pacer) Pacer {
	if p == nil {
		return NoPacing
	}
	return p
}
