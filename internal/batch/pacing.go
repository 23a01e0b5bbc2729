package batch

import (
	"context"
	"time"
)

const (
	// JitterFraction bounds the random share of the delay added or removed
	// between queries.
	JitterFraction = 0.2

	// MinDelay is the floor for any pacing delay.
	MinDelay = time.Second
)

// PacingDelay returns the wait before the next query: delay scaled by
// (1 + jitter), never less than MinDelay. jitter is expected in
// [-JitterFraction, JitterFraction).
func PacingDelay(delay time.Duration, jitter float64) time.Duration {
	return max(MinDelay, delay+time.Duration(jitter*float64(delay)))
}

// jitter maps a uniform [0, 1) sample onto [-JitterFraction, JitterFraction).
func jitter(u float64) float64 {
	return (u*2 - 1) * JitterFraction
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
