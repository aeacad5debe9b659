// Package ratelimit implements named token-bucket limits keyed by an
// arbitrary string (a user id or a client IP).
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

var ErrUnknownRule = errors.New("ratelimit: unknown rule")

// Rule refills Requests tokens every Period and holds at most Burst.
type Rule struct {
	Requests int
	Period   time.Duration
	Burst    int
}

func (r Rule) limit() rate.Limit {
	if r.Requests <= 0 || r.Period <= 0 {
		return rate.Inf
	}
	return rate.Every(r.Period / time.Duration(r.Requests))
}

// ExceededError is returned when a bucket is empty. RetryAfter is always positive.
type ExceededError struct {
	Rule       string
	RetryAfter time.Duration
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("rate limit %q exceeded, retry after %s", e.Rule, e.RetryAfter)
}

type bucketKey struct {
	rule string
	key  string
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Limiter struct {
	mtx     sync.Mutex
	rules   map[string]Rule
	buckets map[bucketKey]*bucket
	now     func() time.Time
}

func New(rules map[string]Rule) *Limiter {
	return NewWithClock(rules, time.Now)
}

func NewWithClock(rules map[string]Rule, now func() time.Time) *Limiter {
	copied := make(map[string]Rule, len(rules))
	for name, r := range rules {
		copied[name] = r
	}
	return &Limiter{
		rules:   copied,
		buckets: make(map[bucketKey]*bucket),
		now:     now,
	}
}

// Limit takes one token from the bucket for (rule, key).
func (l *Limiter) Limit(rule, key string) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	r, ok := l.rules[rule]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRule, rule)
	}

	now := l.now()
	bk := bucketKey{rule: rule, key: key}
	b, ok := l.buckets[bk]
	if !ok {
		burst := r.Burst
		if burst <= 0 {
			burst = 1
		}
		b = &bucket{limiter: rate.NewLimiter(r.limit(), burst)}
		l.buckets[bk] = b
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return &ExceededError{Rule: rule, RetryAfter: r.Period}
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return &ExceededError{Rule: rule, RetryAfter: delay}
	}
	return nil
}

// Sweep drops buckets not touched for idle and returns how many were removed.
// A dropped bucket starts full again on next use.
func (l *Limiter) Sweep(idle time.Duration) int {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	cutoff := l.now().Add(-idle)
	removed := 0
	for k, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, k)
			removed++
		}
	}
	return removed
}

func (l *Limiter) Len() int {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return len(l.buckets)
}
