// Package batch drives a list of codes through the verification client one
// at a time: paced, cancellable between items, with per-item progress
// reporting and result aggregation.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Angki/bandcamp-codes-verificator/pkg/credentials"
	"github.com/Angki/bandcamp-codes-verificator/pkg/logging"
	"github.com/Angki/bandcamp-codes-verificator/pkg/verify"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for batch runs.
var (
	batchRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bcverify_batch_runs_total",
		Help: "Total batch runs by outcome",
	}, []string{"outcome"})

	batchCodesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bcverify_batch_codes_total",
		Help: "Total verified codes by result",
	}, []string{"result"})
)

// DefaultMaxCodes caps the size of a single batch.
const DefaultMaxCodes = 2000

// ErrNoCodes is returned when the submitted code list is empty.
var ErrNoCodes = errors.New("no codes to verify")

// Verifier performs a single verification call. Implementations must return
// a result value for every outcome, including transport failures.
type Verifier interface {
	Verify(ctx context.Context, code string, creds credentials.Bundle) verify.Result
}

// Pacer decides how long to wait before dispatching the next call.
type Pacer interface {
	Next() time.Duration
}

// ProgressFunc is invoked exactly once per attempted item, after its result
// is produced and before the next item's delay begins.
type ProgressFunc func(seq, total int, result verify.Result)

// Config holds runner configuration.
type Config struct {
	// MaxCodes caps the batch size (default: DefaultMaxCodes).
	MaxCodes int

	// OnProgress receives per-item notifications (optional).
	OnProgress ProgressFunc
}

// Runner is the batch orchestrator. A single Runner may execute any number
// of runs; each run is strictly sequential and single-flight.
type Runner struct {
	verifier Verifier
	pacer    Pacer
	config   Config
	logger   zerolog.Logger
}

// NewRunner creates a batch runner.
func NewRunner(verifier Verifier, pacer Pacer, cfg Config) (*Runner, error) {
	if verifier == nil {
		return nil, fmt.Errorf("verifier is required")
	}
	if pacer == nil {
		return nil, fmt.Errorf("pacer is required")
	}
	if cfg.MaxCodes <= 0 {
		cfg.MaxCodes = DefaultMaxCodes
	}

	return &Runner{
		verifier: verifier,
		pacer:    pacer,
		config:   cfg,
		logger:   logging.NewLogger("batch-runner"),
	}, nil
}

// Run verifies the given codes in order and returns one result per
// attempted code, in ascending sequence order.
//
// Validation failures (invalid bundle, empty or oversized code list) abort
// before any network activity. Per-item failures never do; they are
// recorded and the run proceeds. Cancelling ctx stops the run before the
// next item is dispatched: an item whose delay has already begun runs to
// completion and its result is kept. The returned partial list is always
// usable.
func (r *Runner) Run(ctx context.Context, codes []string, creds credentials.Bundle) ([]verify.Result, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, ErrNoCodes
	}
	if len(codes) > r.config.MaxCodes {
		return nil, fmt.Errorf("too many codes: %d (max %d)", len(codes), r.config.MaxCodes)
	}

	total := len(codes)
	logger := r.logger.With().Str("run_id", uuid.NewString()).Logger()

	logger.Info().
		Int("total", total).
		Msg("Starting batch verification")

	start := time.Now()
	results := make([]verify.Result, 0, total)

	for i, code := range codes {
		if ctx.Err() != nil {
			logger.Info().
				Int("attempted", len(results)).
				Int("total", total).
				Msg("Batch verification cancelled")
			batchRunsTotal.WithLabelValues("cancelled").Inc()
			return results, nil
		}

		seq := i + 1
		itemStart := time.Now()

		// Once the delay has begun the item runs to completion; the
		// in-flight call is detached from batch cancellation because the
		// transport may not support aborting it cooperatively.
		delay := r.pacer.Next()
		time.Sleep(delay)

		result := r.verifier.Verify(context.WithoutCancel(ctx), code, creds)
		result.Seq = seq
		result.Code = code
		result.Delay = delay
		result.Elapsed = time.Since(itemStart)

		r.observe(logger, result, total)

		if r.config.OnProgress != nil {
			r.config.OnProgress(seq, total, result)
		}
		results = append(results, result)
	}

	logger.Info().
		Int("total", total).
		Dur("duration", time.Since(start)).
		Msg("Batch verification completed")
	batchRunsTotal.WithLabelValues("completed").Inc()

	return results, nil
}

func (r *Runner) observe(logger zerolog.Logger, result verify.Result, total int) {
	if result.OK {
		batchCodesTotal.WithLabelValues("success").Inc()
		logger.Info().
			Int("seq", result.Seq).
			Int("total", total).
			Str("code", truncate(result.Code, 30)).
			Int("status", result.Status).
			Dur("delay", result.Delay).
			Dur("elapsed", result.Elapsed).
			Msg("Code verified")
		return
	}

	batchCodesTotal.WithLabelValues("failure").Inc()
	logger.Warn().
		Int("seq", result.Seq).
		Int("total", total).
		Str("code", truncate(result.Code, 30)).
		Int("status", result.Status).
		Str("error_class", string(result.Class())).
		Str("error", result.Err).
		Dur("delay", result.Delay).
		Dur("elapsed", result.Elapsed).
		Msg("Code verification failed")
}

// Summary aggregates a finished (or cancelled) run for display.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

// Summarize counts successes and failures over a result list.
func Summarize(results []verify.Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.OK {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
