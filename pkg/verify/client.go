// Package verify wraps the single outbound call to the remote code
// verification endpoint and normalizes every outcome, including transport
// failures, into a uniform Result value.
package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Angki/bandcamp-codes-verificator/pkg/credentials"
	"github.com/Angki/bandcamp-codes-verificator/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for verification calls.
var (
	verifyRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bcverify_requests_total",
		Help: "Total verification requests by HTTP status",
	}, []string{"status"})

	verifyRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bcverify_request_duration_seconds",
		Help:    "Verification request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25},
	})

	verifyErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bcverify_errors_total",
		Help: "Total verification errors by class",
	}, []string{"class"})
)

// Defaults matching the remote service contract.
const (
	// DefaultVerifyURL is the code verification endpoint.
	DefaultVerifyURL = "https://bandcamp.com/api/codes/1/verify"

	// DefaultTimeout bounds connect plus total time of a single call.
	DefaultTimeout = 25 * time.Second

	// DefaultUserAgent mimics a desktop browser; the endpoint rejects
	// obviously non-browser agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36 Edg/140.0.0.0"

	// MaxCodeLength caps a single code.
	MaxCodeLength = 256

	originHeader  = "https://bandcamp.com"
	refererHeader = "https://bandcamp.com/yum"
)

// Config holds the client configuration.
type Config struct {
	// VerifyURL is the endpoint to POST verification payloads to.
	VerifyURL string

	// Timeout bounds each call (connect and total).
	Timeout time.Duration

	// UserAgent sent with every request.
	UserAgent string

	// HTTPClient overrides the underlying transport (for testing).
	HTTPClient *http.Client
}

// DefaultConfig returns a configuration targeting the live endpoint.
func DefaultConfig() Config {
	return Config{
		VerifyURL: DefaultVerifyURL,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Client performs single verification calls. It never retries and never
// mutates the credential bundle; pacing and continuation decisions belong
// to the batch runner.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a verification client.
func New(cfg Config) (*Client, error) {
	if cfg.VerifyURL == "" {
		return nil, fmt.Errorf("verify URL is required")
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive (got %s)", cfg.Timeout)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient: httpClient,
		config:     cfg,
		logger:     logging.NewLogger("verify-client"),
	}, nil
}

// payload is the fixed-shape request body dictated by the remote service.
// Field names and the constant flag values must be reproduced as-is.
type payload struct {
	IsCorp         bool    `json:"is_corp"`
	BandID         *int64  `json:"band_id"`
	PlatformClosed bool    `json:"platform_closed"`
	HardToDownload bool    `json:"hard_to_download"`
	FanLoggedIn    bool    `json:"fan_logged_in"`
	BandURL        *string `json:"band_url"`
	WasLoggedOut   *bool   `json:"was_logged_out"`
	IsHTTPS        bool    `json:"is_https"`
	RefURL         *string `json:"ref_url"`
	Code           string  `json:"code"`
	Crumb          string  `json:"crumb"`
}

// Verify performs one verification call and normalizes the outcome.
// Transport failures are returned as a Result with status 0 and a cause
// string, never as an error, so the batch can proceed regardless.
// The caller is responsible for credential validation; only transport-level
// encoding happens here.
func (c *Client) Verify(ctx context.Context, code string, creds credentials.Bundle) Result {
	start := time.Now()
	defer func() {
		verifyRequestDuration.Observe(time.Since(start).Seconds())
	}()

	code = strings.TrimSpace(code)
	if code == "" {
		return c.failure(code, "invalid code: must not be empty")
	}
	if len(code) > MaxCodeLength {
		return c.failure(code, fmt.Sprintf("invalid code: too long (max %d)", MaxCodeLength))
	}

	body, err := json.Marshal(payload{
		IsCorp:      true,
		FanLoggedIn: true,
		IsHTTPS:     true,
		Code:        code,
		Crumb:       creds.Crumb(),
	})
	if err != nil {
		return c.failure(code, fmt.Sprintf("encode payload: %v", err))
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.config.VerifyURL, bytes.NewReader(body))
	if err != nil {
		return c.failure(code, fmt.Sprintf("create request: %v", err))
	}

	// Fixed header set dictated by the remote service. Compressed response
	// encodings are handled transparently by the transport.
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", originHeader)
	req.Header.Set("Referer", refererHeader)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Cookie", creds.CookieHeader())

	c.logger.Debug().
		Str("url", c.config.VerifyURL).
		Msg("Dispatching verification request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cause := fmt.Sprintf("request error: %v", err)
		if errors.Is(err, context.DeadlineExceeded) {
			cause = fmt.Sprintf("request timeout after %s", c.config.Timeout)
		}
		c.logger.Error().
			Err(err).
			Str("error_class", string(ErrorClassTransport)).
			Msg("Verification request failed")
		return c.failure(code, cause)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.failure(code, fmt.Sprintf("read response: %v", err))
	}

	verifyRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	result := Result{
		Code:   code,
		Status: resp.StatusCode,
		OK:     statusOK(resp.StatusCode),
		Body:   decodeBody(respBody),
	}
	if !result.OK {
		result.Err = fmt.Sprintf("HTTP %d", resp.StatusCode)
		verifyErrorsTotal.WithLabelValues(string(ErrorClassRejection)).Inc()
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("error_class", string(ErrorClassRejection)).
			Msg("Verification rejected")
	} else if !result.Body.Structured() {
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Msg("Response body not decodable, carrying raw text")
	}

	return result
}

// failure builds a transport-level failure result (status 0).
func (c *Client) failure(code, cause string) Result {
	verifyRequestsTotal.WithLabelValues("network_error").Inc()
	verifyErrorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
	return Result{
		Code:   code,
		Status: 0,
		OK:     false,
		Err:    cause,
	}
}
