package verify

import (
	"encoding/json"
	"time"
)

// ErrorClass classifies non-success outcomes for observability.
type ErrorClass string

const (
	// ErrorClassTransport represents failures where the call never produced
	// an HTTP response (DNS, connect, timeout, TLS).
	ErrorClassTransport ErrorClass = "transport"

	// ErrorClassRejection represents structurally valid HTTP responses
	// outside the success range (expired auth, rate limiting, bad crumb).
	ErrorClassRejection ErrorClass = "rejection"
)

// Body carries the response payload of a verification call.
// Exactly one representation is set: JSON when the body decoded as a JSON
// object, Raw otherwise. The endpoint's structured answers are always
// objects, so arrays, scalars and null are deliberately carried as raw
// text: callers use the distinction to tell "the service said no in a
// structured way" apart from "the service returned something unexpected".
type Body struct {
	JSON map[string]any `json:"json,omitempty"`
	Raw  string         `json:"raw,omitempty"`
}

// Structured reports whether the body decoded as JSON.
func (b Body) Structured() bool { return b.JSON != nil }

// String renders the body for display or export: compact JSON when
// structured, the raw text verbatim otherwise.
func (b Body) String() string {
	if b.JSON != nil {
		data, err := json.Marshal(b.JSON)
		if err == nil {
			return string(data)
		}
	}
	return b.Raw
}

// decodeBody parses a response body opportunistically. Only JSON objects
// count as structured (see Body); undecodable or non-object payloads are
// not errors, the raw text is carried instead.
func decodeBody(data []byte) Body {
	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil || parsed == nil {
		return Body{Raw: string(data)}
	}
	return Body{JSON: parsed}
}

// Result records a single verification attempt. It is immutable once
// produced; the batch runner stamps Seq, Delay and Elapsed.
type Result struct {
	// Seq is the 1-based position of the code within the batch.
	Seq int `json:"seq"`

	// Code is the verified code, as submitted.
	Code string `json:"code"`

	// Status is the HTTP status code; 0 when the call never reached the
	// transport layer.
	Status int `json:"status"`

	// OK is true iff Status is in [200, 300). Derived from status only,
	// never from the body.
	OK bool `json:"success"`

	// Delay is the pacing delay applied before this call.
	Delay time.Duration `json:"delay"`

	// Elapsed is the wall-clock time for the item including its delay.
	Elapsed time.Duration `json:"elapsed"`

	// Body is the response payload (structured or raw).
	Body Body `json:"body"`

	// Err is a human-readable cause for non-success outcomes ("" when OK).
	Err string `json:"error,omitempty"`
}

// Class returns the error classification of a non-success result,
// or "" for successful ones.
func (r Result) Class() ErrorClass {
	switch {
	case r.OK:
		return ""
	case r.Status == 0:
		return ErrorClassTransport
	default:
		return ErrorClassRejection
	}
}

// statusOK is the single place success is derived from.
func statusOK(status int) bool {
	return status >= 200 && status < 300
}
