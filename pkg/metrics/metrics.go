// Package metrics documents the Prometheus metrics exposed by the
// verificator. Metrics are defined in the packages that own them (verify,
// batch, pacing) to maintain modularity and avoid circular dependencies.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registerer used by the verificator.
// All metrics are automatically registered via promauto in their packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/verify):
//   - bcverify_requests_total{status} (Counter): Verification requests by
//     HTTP status ("network_error" when the call never reached the wire)
//   - bcverify_request_duration_seconds (Histogram): Call duration
//   - bcverify_errors_total{class} (Counter): Errors by class
//     (transport, rejection)
//
// Pacing Metrics (pkg/pacing):
//   - bcverify_pacer_delay_seconds (Histogram): Applied inter-call delay
//
// Batch Metrics (pkg/batch):
//   - bcverify_batch_runs_total{outcome} (Counter): Runs by outcome
//     (completed, cancelled)
//   - bcverify_batch_codes_total{result} (Counter): Verified codes by
//     result (success, failure)
//
// Example Prometheus Queries:
//
//   # Verification failure rate
//   rate(bcverify_batch_codes_total{result="failure"}[5m]) /
//   rate(bcverify_batch_codes_total[5m])
//
//   # P95 call latency
//   histogram_quantile(0.95, rate(bcverify_request_duration_seconds_bucket[5m]))
//
//   # Transport error rate
//   rate(bcverify_errors_total{class="transport"}[5m])
