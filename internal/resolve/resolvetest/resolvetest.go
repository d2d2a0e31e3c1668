// Package resolvetest provides fixed strategies for tests.
package resolvetest

import (
	"context"

	"github.com/oshokin/desktop-packager/internal/resolve"
)

// Value returns a strategy that always yields v.
func Value[T any](v T) resolve.Strategy[T] {
	return func(context.Context) (T, error) {
		return v, nil
	}
}
