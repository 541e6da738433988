package authclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/pr-admin-client/identity"
	"github.com/rs/zerolog"
)

type refreshResult struct {
	token string
	err   error
}

// waiter is the continuation of a request blocked on a refresh. It is called exactly once
// and must not block.
type waiter func(refreshResult)

// refresher collapses concurrent forced refreshes into one mint call. While a mint is
// outstanding every other caller is queued; when it settles the queue is delivered front to
// back, then the caller that started the mint.
type refresher struct {
	provider identity.Provider
	timeout  time.Duration
	metrics  *Metrics
	logger   zerolog.Logger

	mu         sync.Mutex
	refreshing bool
	generation uint64
	cancel     context.CancelFunc
	leader     waiter
	queue      []waiter
}

func newRefresher(provider identity.Provider, timeout time.Duration, metrics *Metrics, logger zerolog.Logger) *refresher {
	return &refresher{
		provider: provider,
		timeout:  timeout,
		metrics:  metrics,
		logger:   logger,
	}
}

// refresh joins the refresh in flight, or starts one for id. The mint outlives ctx's
// cancellation since other callers may be waiting on it.
func (r *refresher) refresh(ctx context.Context, id identity.Identity, done waiter) {
	r.mu.Lock()
	if r.refreshing {
		r.queue = append(r.queue, done)
		depth := len(r.queue)
		r.mu.Unlock()

		r.metrics.enqueued()
		r.logger.Debug().Int("queued", depth).Msg("Waiting on token refresh in flight")
		return
	}

	var mintCtx context.Context
	var cancel context.CancelFunc
	if r.timeout > 0 {
		mintCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	} else {
		mintCtx, cancel = context.WithCancel(context.WithoutCancel(ctx))
	}

	r.refreshing = true
	r.generation++
	generation := r.generation
	r.cancel = cancel
	r.leader = done
	r.mu.Unlock()

	r.logger.Debug().Uint64("generation", generation).Str("subject", id.Subject()).Msg("Starting token refresh")
	go r.run(mintCtx, generation, id)
}

func (r *refresher) run(ctx context.Context, generation uint64, id identity.Identity) {
	start := time.Now()
	minted := make(chan refreshResult, 1)
	go func() {
		tok, err := r.provider.MintToken(ctx, id, true)
		minted <- refreshResult{token: tok, err: err}
	}()

	var result refreshResult
	select {
	case result = <-minted:
	case <-ctx.Done():
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			// aborted; the waiters have already been failed
			return
		}
		result = refreshResult{err: fmt.Errorf("%w after %s", ErrRefreshTimeout, r.timeout)}
	}
	if result.err != nil && errors.Is(result.err, context.DeadlineExceeded) && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		result.err = fmt.Errorf("%w after %s: %w", ErrRefreshTimeout, r.timeout, result.err)
	}

	r.settle(generation, result, time.Since(start))
}

// settle delivers result to everyone waiting on generation. A result for a generation that
// was aborted or superseded is dropped.
func (r *refresher) settle(generation uint64, result refreshResult, elapsed time.Duration) {
	r.mu.Lock()
	if !r.refreshing || generation != r.generation {
		r.mu.Unlock()
		r.logger.Debug().Uint64("generation", generation).Msg("Discarding stale token refresh")
		return
	}
	waiters := r.drainLocked()
	r.mu.Unlock()

	switch {
	case result.err == nil:
		r.metrics.refreshed(outcomeSuccess)
		r.logger.Info().Int("waiters", len(waiters)).Dur("elapsed", elapsed).Msg("Token refreshed")
	case errors.Is(result.err, ErrRefreshTimeout):
		r.metrics.refreshed(outcomeTimeout)
		r.logger.Warn().Int("waiters", len(waiters)).Dur("elapsed", elapsed).Msg("Token refresh timed out")
	default:
		r.metrics.refreshed(outcomeFailure)
		r.logger.Warn().Err(result.err).Int("waiters", len(waiters)).Msg("Token refresh failed")
	}

	for _, w := range waiters {
		w(result)
	}
}

// abort fails everyone waiting with err and returns to idle. The mint in flight is cancelled
// and its result ignored.
func (r *refresher) abort(err error) {
	r.mu.Lock()
	if !r.refreshing {
		r.mu.Unlock()
		return
	}
	waiters := r.drainLocked()
	r.mu.Unlock()

	r.metrics.refreshed(outcomeAborted)
	r.logger.Info().Int("waiters", len(waiters)).Msg("Session ended, abandoning token refresh")

	for _, w := range waiters {
		w(refreshResult{err: err})
	}
}

// drainLocked resets to idle and returns the waiters in delivery order. r.mu must be held.
func (r *refresher) drainLocked() []waiter {
	waiters := make([]waiter, 0, len(r.queue)+1)
	waiters = append(waiters, r.queue...)
	if r.leader != nil {
		waiters = append(waiters, r.leader)
	}

	if r.cancel != nil {
		r.cancel()
	}
	r.refreshing = false
	r.cancel = nil
	r.leader = nil
	r.queue = nil
	return waiters
}

func (r *refresher) inFlight() (refreshing bool, queued int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refreshing, len(r.queue)
}
