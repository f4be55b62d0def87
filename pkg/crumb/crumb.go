// Package crumb obtains the anti-forgery crumb required by the verification
// endpoint. The extraction heuristic is inherently fragile, so it lives
// behind the Source interface; callers that already hold a crumb use Static.
package crumb

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no crumb could be located in the page.
var ErrNotFound = errors.New("crumb not found in page")

// Source supplies a crumb for a credential set.
type Source interface {
	Crumb(ctx context.Context) (string, error)
}

// Static is a Source for a crumb the caller already holds.
type Static string

// Crumb returns the static value.
func (s Static) Crumb(ctx context.Context) (string, error) {
	if s == "" {
		return "", errors.New("static crumb is empty")
	}
	return string(s), nil
}
