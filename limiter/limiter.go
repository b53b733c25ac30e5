package limiter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/amonks/albumengine/refresh"
	"github.com/rs/zerolog"
)

// New returns a Limiter that, when filename is non-empty, persists its
// window there so that a restarted process keeps honoring it. Delay is the
// window used when the upstream does not say how long to back off.
func New(filename string, delay time.Duration, log zerolog.Logger) *Limiter {
	return &Limiter{
		filename: filename,
		delay:    delay,
		log:      log,
		now:      time.Now,
	}
}

// Limiter tracks a backoff window during which upstream requests should not
// be made.
type Limiter struct {
	filename string
	delay    time.Duration
	log      zerolog.Logger
	now      func() time.Time

	mu     sync.Mutex
	nextAt time.Time
}

// Load reads a persisted window, if there is one.
func (lim *Limiter) Load() error {
	if lim.filename == "" {
		return nil
	}
	bs, err := os.ReadFile(lim.filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("error reading limiter file '%s': %w", lim.filename, err)
	}

	nextAt, err := time.Parse(time.RFC3339, strings.TrimSpace(string(bs)))
	if err != nil {
		return fmt.Errorf("error parsing limiter file '%s': %w", lim.filename, err)
	}

	lim.mu.Lock()
	defer lim.mu.Unlock()
	lim.nextAt = nextAt
	return nil
}

// NextAt is when the window closes. It is zero if there is no window.
func (lim *Limiter) NextAt() time.Time {
	lim.mu.Lock()
	defer lim.mu.Unlock()
	return lim.nextAt
}

// Check fails fast with an error wrapping refresh.ErrRateLimited while the
// window is open.
func (lim *Limiter) Check() error {
	nextAt := lim.NextAt()
	if nextAt.IsZero() || !lim.now().Before(nextAt) {
		return nil
	}
	return fmt.Errorf("backing off until %s: %w", nextAt.Format(time.RFC3339), refresh.ErrRateLimited)
}

// Wait blocks until the window closes or ctx is done.
func (lim *Limiter) Wait(ctx context.Context) error {
	nextAt := lim.NextAt()
	if nextAt.IsZero() {
		return nil
	}
	dur := nextAt.Sub(lim.now())
	if dur <= 0 {
		return nil
	}
	if dur > time.Second {
		lim.log.Info().
			Dur("wait", dur.Truncate(time.Second)).
			Time("until", nextAt).
			Msg("waiting for rate limit to clear")
	}

	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SetNextAt opens a window from a Retry-After header value, which may be a
// number of seconds or an HTTP date. An empty or unparseable value opens a
// window of the default delay.
func (lim *Limiter) SetNextAt(retryAfter string) error {
	now := lim.now()
	nextAt := now.Add(lim.delay)
	if seconds, err := strconv.ParseInt(strings.TrimSpace(retryAfter), 10, 64); err == nil && seconds >= 0 {
		nextAt = now.Add(time.Duration(seconds) * time.Second)
	} else if at, err := http.ParseTime(retryAfter); err == nil {
		nextAt = at
	}

	lim.mu.Lock()
	if nextAt.After(lim.nextAt) {
		lim.nextAt = nextAt
	}
	nextAt = lim.nextAt
	lim.mu.Unlock()

	lim.log.Warn().Time("until", nextAt).Msg("rate limited")

	if lim.filename == "" {
		return nil
	}
	if err := os.WriteFile(lim.filename, []byte(nextAt.UTC().Format(time.RFC3339)), 0666); err != nil {
		return fmt.Errorf("error writing limiter file '%s': %w", lim.filename, err)
	}
	return nil
}
