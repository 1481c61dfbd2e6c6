package transport

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// BackoffConfig tunes a Backoff sequence. Mirrors the shape the teacher
// broker uses for reconnect backoff, repurposed here as the caller-policy
// helper spec.md §4.B tie-break 4 describes ("a higher layer may open a
// new Connection and replay subscriptions" — Reconnector is that layer).
type BackoffConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	MaxRetries      int
	Jitter          bool
	JitterFactor    float64
}

// DefaultBackoffConfig matches spec.md §6's reconnect defaults: 3 attempts,
// 1s apart, no growth beyond that unless the caller asks for more.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		InitialInterval: 1 * time.Second,
		MaxInterval:     10 * time.Second,
		Multiplier:      1.0,
		MaxRetries:      3,
		Jitter:          true,
		JitterFactor:    0.2,
	}
}

// Backoff produces a sequence of increasing, jittered wait intervals.
type Backoff struct {
	config  BackoffConfig
	attempt int
}

func NewBackoff(config BackoffConfig) *Backoff {
	if config.InitialInterval <= 0 {
		config = DefaultBackoffConfig()
	}
	return &Backoff{config: config}
}

// Next returns the next interval to wait, or ok=false once MaxRetries is
// exhausted (MaxRetries <= 0 means unlimited).
func (b *Backoff) Next() (time.Duration, bool) {
	if b.config.MaxRetries > 0 && b.attempt >= b.config.MaxRetries {
		return 0, false
	}
	interval := b.calculate()
	b.attempt++
	return interval, true
}

func (b *Backoff) calculate() time.Duration {
	interval := float64(b.config.InitialInterval) * math.Pow(b.config.Multiplier, float64(b.attempt))
	if interval > float64(b.config.MaxInterval) {
		interval = float64(b.config.MaxInterval)
	}
	if b.config.Jitter {
		jitter := interval * b.config.JitterFactor
		interval = interval - jitter + (rand.Float64() * 2 * jitter)
	}
	return time.Duration(interval)
}

func (b *Backoff) Reset()        { b.attempt = 0 }
func (b *Backoff) Attempt() int  { return b.attempt }

// Reconnector retries a dial function with backoff. Connection itself never
// reconnects transparently (spec.md §4.B tie-break 4); Reconnector is the
// opt-in policy layer a service can wrap around Open.
type Reconnector struct {
	backoff   *Backoff
	connectFn func(context.Context) (*Connection, error)
}

func NewReconnector(config BackoffConfig, connectFn func(context.Context) (*Connection, error)) *Reconnector {
	return &Reconnector{backoff: NewBackoff(config), connectFn: connectFn}
}

// Connect retries connectFn until it succeeds, the backoff is exhausted, or
// ctx is cancelled.
func (r *Reconnector) Connect(ctx context.Context) (*Connection, error) {
	r.backoff.Reset()
	for {
		conn, err := r.connectFn(ctx)
		if err == nil {
			return conn, nil
		}
		wait, ok := r.backoff.Next()
		if !ok {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// recoverCallback runs fn and turns a panic into a logged event instead of
// crashing the read loop. Subscription callbacks run under this guard.
func recoverCallback(onPanic func(recovered any)) {
	if r := recover(); r != nil && onPanic != nil {
		onPanic(r)
	}
}
