// Package pacing implements the inter-call delay that keeps batch
// verification below the remote service's abuse-detection thresholds.
package pacing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for pacing decisions.
var (
	pacerDelaySeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bcverify_pacer_delay_seconds",
		Help:    "Applied inter-call delay in seconds",
		Buckets: []float64{0.5, 1, 2, 3, 4, 5, 10},
	})
)

// Default delay bounds between verification calls.
const (
	DefaultMinDelay = 1 * time.Second
	DefaultMaxDelay = 5 * time.Second
)

// Pacer produces independent uniform delays within a configured inclusive
// range. It holds no state beyond its bounds; every draw is independent and
// there is no adaptive backoff.
type Pacer struct {
	min time.Duration
	max time.Duration
}

// New creates a Pacer for the inclusive range [min, max].
func New(min, max time.Duration) (*Pacer, error) {
	if min < 0 {
		return nil, fmt.Errorf("min delay must not be negative (got %s)", min)
	}
	if max < min {
		return nil, fmt.Errorf("max delay %s must not be less than min delay %s", max, min)
	}
	return &Pacer{min: min, max: max}, nil
}

// Default returns a Pacer with the default 1..5 second range.
func Default() *Pacer {
	p, _ := New(DefaultMinDelay, DefaultMaxDelay)
	return p
}

// Next returns the delay to apply before the next call.
// Draws are quantized to whole seconds so that both endpoints of the range
// are reachable; ranges narrower than a second use millisecond steps.
func (p *Pacer) Next() time.Duration {
	delay := p.min
	if span := p.max - p.min; span > 0 {
		unit := time.Second
		if span < time.Second {
			unit = time.Millisecond
		}
		steps := int64(span/unit) + 1
		delay = p.min + time.Duration(rand.Int63n(steps))*unit
	}

	pacerDelaySeconds.Observe(delay.Seconds())
	return delay
}

// Bounds returns the configured inclusive delay range.
func (p *Pacer) Bounds() (min, max time.Duration) {
	return p.min, p.max
}
