package bot

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// minIdleEviction is the shortest time a channel limiter is kept without use
const minIdleEviction = 10 * time.Minute

type channelLimiter struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// ChannelThrottle holds one token bucket per channel so a busy channel
// cannot flood Discord with replies. Buckets idle long enough to have refilled
// are dropped, so memory follows the set of recently active channels.
type ChannelThrottle struct {
	limiters  map[string]*channelLimiter
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	idleAfter time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewChannelThrottle allows perSecond replies per channel with the given burst.
// A non-positive rate disables throttling.
func NewChannelThrottle(perSecond float64, burst int) *ChannelThrottle {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}

	// An evicted bucket must have been full again, or eviction would reset a limit early
	idleAfter := minIdleEviction
	if perSecond > 0 {
		if refill := time.Duration(float64(burst) / perSecond * float64(time.Second)); refill > idleAfter {
			idleAfter = refill
		}
	}

	return &ChannelThrottle{
		limiters:  make(map[string]*channelLimiter),
		rate:      limit,
		burst:     burst,
		idleAfter: idleAfter,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (t *ChannelThrottle) getLimiter(channelID string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if now.Sub(t.lastSweep) >= t.idleAfter {
		t.sweep(now)
	}

	entry, exists := t.limiters[channelID]
	if !exists {
		entry = &channelLimiter{limiter: rate.NewLimiter(t.rate, t.burst)}
		t.limiters[channelID] = entry
	}
	entry.lastUsed = now
	return entry.limiter
}

// sweep drops limiters unused for idleAfter. Callers hold t.mu.
func (t *ChannelThrottle) sweep(now time.Time) {
	for channelID, entry := range t.limiters {
		if now.Sub(entry.lastUsed) >= t.idleAfter {
			delete(t.limiters, channelID)
		}
	}
	t.lastSweep = now
}

// Wait blocks until the channel may receive another reply or ctx is done
func (t *ChannelThrottle) Wait(ctx context.Context, channelID string) error {
	return t.getLimiter(channelID).Wait(ctx)
}
