// Package testutil provides testing utilities for the verificator.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockVerify is a configurable stand-in for the remote verification
// endpoint. By default every code verifies successfully; per-code statuses
// and bodies can be overridden.
type MockVerify struct {
	server *httptest.Server

	mu       sync.RWMutex
	statuses map[string]int
	bodies   map[string]string
	crumb    string

	// Tracking, read through the accessors below.
	requestCount int
	codes        []string
	lastHeader   http.Header
}

// NewMockVerify starts a mock verification server.
func NewMockVerify() *MockVerify {
	mock := &MockVerify{
		statuses: make(map[string]int),
		bodies:   make(map[string]string),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the mock endpoint URL.
func (m *MockVerify) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockVerify) Close() {
	m.server.Close()
}

// Reset clears all tracking state.
func (m *MockVerify) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.codes = nil
	m.lastHeader = nil
}

// SetCodeStatus makes the given code respond with the given status and a
// default body for that status.
func (m *MockVerify) SetCodeStatus(code string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[code] = status
}

// SetCodeResponse makes the given code respond with the given status and body.
func (m *MockVerify) SetCodeResponse(code string, status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[code] = status
	m.bodies[code] = body
}

// RequireCrumb makes the server reject payloads carrying any other crumb,
// mimicking the remote anti-forgery check.
func (m *MockVerify) RequireCrumb(crumb string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.crumb = crumb
}

// ReceivedCodes returns the codes received so far, in arrival order.
func (m *MockVerify) ReceivedCodes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.codes...)
}

// GetRequestCount returns the number of requests received.
func (m *MockVerify) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// LastRequestHeader returns the headers of the most recent request, or nil
// before the first one.
func (m *MockVerify) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeader
}

func (m *MockVerify) handle(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Code  string `json:"code"`
		Crumb string `json:"crumb"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)

	m.mu.Lock()
	m.requestCount++
	m.codes = append(m.codes, payload.Code)
	m.lastHeader = r.Header.Clone()
	status, hasStatus := m.statuses[payload.Code]
	body, hasBody := m.bodies[payload.Code]
	requiredCrumb := m.crumb
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if requiredCrumb != "" && payload.Crumb != requiredCrumb {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_message":"invalid crumb"}`))
		return
	}

	if !hasStatus {
		status = http.StatusOK
	}
	if !hasBody {
		if status >= 200 && status < 300 {
			body = `{"ok":true}`
		} else {
			body = `{"ok":false,"error_message":"verification failed"}`
		}
	}

	w.WriteHeader(status)
	w.Write([]byte(body))
}
