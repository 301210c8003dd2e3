// Package circuitbreaker keeps one github.com/sony/gobreaker breaker per news
// source. A source whose fetches keep failing is rejected without a network
// round trip until its cooldown elapses.
package circuitbreaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"catchup-server/internal/observability/metrics"
)

// Policy decides when a source breaker opens and how it recovers.
type Policy struct {
	// ProbeRequests is how many fetches a half-open breaker lets through.
	ProbeRequests uint32
	// Window resets the closed-state counters. Zero keeps them until the breaker
	// changes state. A window shorter than MinSamples ticks never trips on ratio.
	Window time.Duration
	// Cooldown is how long an open breaker rejects fetches.
	Cooldown time.Duration
	// TripAfter opens the breaker after that many failures in a row. Zero disables it.
	TripAfter uint32
	// TripRatio is the failure share at which the breaker opens.
	TripRatio float64
	// MinSamples is the number of fetches needed before TripRatio applies.
	// Zero disables the ratio rule.
	MinSamples uint32
}

// SourcePolicy is used for scheduled source fetches. A source is fetched once
// per tick, which can be as rare as every 30 minutes, so the counters are
// never windowed and the breaker trips on consecutive failures alone.
var SourcePolicy = Policy{
	ProbeRequests: 1,
	Cooldown:      10 * time.Minute,
	TripAfter:     3,
}

// Breaker guards the fetches of a single source.
type Breaker struct {
	source string
	cb     *gobreaker.CircuitBreaker
}

// ForSource builds the breaker for source. The breaker state is exported
// as the source_breaker_state gauge.
func ForSource(source string, p Policy) *Breaker {
	b := &Breaker{source: source}
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:          "source-" + source,
		MaxRequests:   p.ProbeRequests,
		Interval:      p.Window,
		Timeout:       p.Cooldown,
		ReadyToTrip:   p.shouldTrip,
		IsSuccessful:  countsAsSuccess,
		OnStateChange: b.stateChanged,
	})
	metrics.SetBreakerState(source, gobreaker.StateClosed.String())
	return b
}

func (p Policy) shouldTrip(c gobreaker.Counts) bool {
	if p.TripAfter > 0 && c.ConsecutiveFailures >= p.TripAfter {
		return true
	}
	if p.MinSamples == 0 || c.Requests < p.MinSamples {
		return false
	}
	return float64(c.TotalFailures)/float64(c.Requests) >= p.TripRatio
}

// A fetch abandoned by its caller says nothing about the source.
func countsAsSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

func (b *Breaker) stateChanged(name string, from, to gobreaker.State) {
	slog.Warn("source breaker state changed",
		slog.String("source", b.source),
		slog.String("breaker", name),
		slog.String("from", from.String()),
		slog.String("to", to.String()))
	metrics.SetBreakerState(b.source, to.String())
}

// Do runs fn unless the breaker is open or its half-open probes are used up.
// A rejected call returns an error for which Rejected is true and never calls fn.
func Do[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var out T
	res, err := b.cb.Execute(func() (any, error) {
		v, err := fn()
		return v, err
	})
	if err != nil {
		return out, err
	}
	out, _ = res.(T)
	return out, nil
}

// Rejected reports whether err is the breaker refusing a call.
func Rejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func (b *Breaker) Source() string { return b.source }

func (b *Breaker) State() gobreaker.State { return b.cb.State() }
