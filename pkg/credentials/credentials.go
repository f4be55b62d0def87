// Package credentials holds the identity material needed to authenticate
// verification calls: session cookie, client id, optional identity cookie,
// and the anti-forgery crumb.
package credentials

import (
	"fmt"
	"sort"
	"strings"
)

// Length caps for credential fields. Values over these limits are rejected,
// not truncated.
const (
	MaxCrumbLength    = 512
	MaxClientIDLength = 128
	MaxSessionLength  = 4096
	MaxIdentityLength = 4096
)

// FieldError describes a single invalid credential field.
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError aggregates all invalid fields of a Bundle.
type ValidationError struct {
	Fields []FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Reason))
	}
	sort.Strings(parts)
	return "invalid credentials: " + strings.Join(parts, "; ")
}

// Bundle is an immutable set of validated, sanitized credentials.
// It is shared read-only across all calls of a batch run.
type Bundle struct {
	clientID string
	session  string
	identity string
	crumb    string
}

// New sanitizes and validates the given credential material.
// The identity cookie is optional; all other fields are required.
func New(crumb, clientID, session, identity string) (Bundle, error) {
	b := Bundle{
		crumb:    sanitize(crumb),
		clientID: sanitize(clientID),
		session:  sanitize(session),
		identity: sanitize(identity),
	}
	if err := b.Validate(); err != nil {
		return Bundle{}, err
	}
	return b, nil
}

// Validate checks that all required fields are non-empty and within their
// length caps. A zero Bundle never validates.
func (b Bundle) Validate() error {
	var errs []FieldError

	errs = appendFieldErr(errs, "crumb", b.crumb, true, MaxCrumbLength)
	errs = appendFieldErr(errs, "client_id", b.clientID, true, MaxClientIDLength)
	errs = appendFieldErr(errs, "session", b.session, true, MaxSessionLength)
	errs = appendFieldErr(errs, "identity", b.identity, false, MaxIdentityLength)

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// Crumb returns the anti-forgery crumb.
func (b Bundle) Crumb() string { return b.crumb }

// ClientID returns the client id cookie value.
func (b Bundle) ClientID() string { return b.clientID }

// Session returns the session cookie value.
func (b Bundle) Session() string { return b.session }

// Identity returns the optional identity cookie value ("" if absent).
func (b Bundle) Identity() string { return b.identity }

// WithCrumb returns a copy of the bundle carrying a freshly obtained crumb.
func (b Bundle) WithCrumb(crumb string) (Bundle, error) {
	return New(crumb, b.clientID, b.session, b.identity)
}

// CookieHeader serializes the bundle into a Cookie header value.
// Sanitization has already stripped everything unsafe for header transport.
func (b Bundle) CookieHeader() string {
	pairs := []string{
		"client_id=" + b.clientID,
		"session=" + b.session,
	}
	if b.identity != "" {
		pairs = append(pairs, "identity="+b.identity)
	}
	return strings.Join(pairs, "; ")
}

// sanitize strips characters unsafe for header transport: CR, LF and the
// cookie pair separator.
func sanitize(value string) string {
	value = strings.TrimSpace(value)
	return strings.Map(func(r rune) rune {
		switch r {
		case '\r', '\n', ';':
			return -1
		}
		return r
	}, value)
}

func appendFieldErr(errs []FieldError, field, value string, required bool, maxLen int) []FieldError {
	switch {
	case value == "":
		if required {
			errs = append(errs, FieldError{Field: field, Reason: "must not be empty"})
		}
	case len(value) > maxLen:
		errs = append(errs, FieldError{
			Field:  field,
			Reason: fmt.Sprintf("too long (max %d)", maxLen),
		})
	}
	return errs
}
