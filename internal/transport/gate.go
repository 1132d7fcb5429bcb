package transport

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Gate bounds the number of in-flight outbound requests and, optionally,
// the rate at which they start. A single Gate is shared by every provider
// client so the bound covers feed polls, series fetches and image
// downloads together.
type Gate struct {
	sem     chan struct{}
	limiter *rate.Limiter
}

// NewGate returns a Gate admitting at most maxConcurrent requests at a
// time. A positive requestsPerSecond additionally paces request starts;
// zero disables pacing.
func NewGate(maxConcurrent int, requestsPerSecond float64) *Gate {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	g := &Gate{sem: make(chan struct{}, maxConcurrent)}
	if requestsPerSecond > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return g
}

// Acquire blocks until a slot is free or ctx is done.
func (g *Gate) Acquire(ctx context.Context) error {
	select {
	case g.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			<-g.sem
			return err
		}
	}
	return nil
}

// Release frees a slot taken by Acquire.
func (g *Gate) Release() {
	<-g.sem
}

// NewHTTPClient returns an http.Client with the given overall request
// timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
