package core

import (
	"math"
	"time"
)

// TokenBucket rate-limits one session. Refill is computed lazily from the
// elapsed time whenever Allow is called, so no timer goroutine is needed.
type TokenBucket struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewTokenBucket returns a full bucket. A non-positive capacity disables
// limiting entirely.
func NewTokenBucket(capacity, refillRate float64, now time.Time) TokenBucket {
	return TokenBucket{
		tokens:     capacity,
		capacity:   capacity,
		refillRate: refillRate,
		lastRefill: now,
	}
}

// Allow consumes one token if available and reports whether it could.
func (b *TokenBucket) Allow(now time.Time) bool {
	if b.capacity <= 0 {
		return true
	}
	if elapsed := now.Sub(b.lastRefill).Seconds(); elapsed > 0 {
		b.tokens = math.Min(b.capacity, b.tokens+elapsed*b.refillRate)
		b.lastRefill = now
	}
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
