package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sony/gobreaker"

	"ragpipe/internal/domain"
	"ragpipe/internal/port"
)

// BreakerGenerator stops calling a failing backend for a cool-down period
// after repeated errors.
type BreakerGenerator struct {
	next    port.Generator
	breaker *gobreaker.CircuitBreaker
}

// WithCircuitBreaker wraps next. onChange may be nil.
func WithCircuitBreaker(next port.Generator, onChange func(from, to string)) *BreakerGenerator {
	settings := gobreaker.Settings{
		Name:        "generator:" + next.ModelName(),
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			// the caller giving up says nothing about backend health
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	if onChange != nil {
		settings.OnStateChange = func(_ string, from, to gobreaker.State) {
			onChange(from.String(), to.String())
		}
	}
	return &BreakerGenerator{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (g *BreakerGenerator) GenerateResponse(ctx context.Context, context, query string) (string, error) {
	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.next.GenerateResponse(ctx, context, query)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %s unavailable: %v", domain.ErrGeneration, g.next.ModelName(), err)
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (g *BreakerGenerator) ModelName() string {
	return g.next.ModelName()
}

// State reports the breaker state, for logs.
func (g *BreakerGenerator) State() string {
	return g.breaker.State().String()
}

// Close releases the wrapped backend when it holds a client.
func (g *BreakerGenerator) Close() error {
	if c, ok := g.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
