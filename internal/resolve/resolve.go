package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/desktop-packager/internal/logger"
)

// ErrNotFound is returned by a strategy that has no result.
// The resolver skips to the next strategy when it sees it.
var ErrNotFound = errors.New("not found")

// Strategy is one way of obtaining a value.
type Strategy[T any] func(ctx context.Context) (T, error)

// NotFoundError reports that every strategy for a resource was exhausted.
type NotFoundError struct {
	// Resource names what was searched for, e.g. "license file".
	Resource string
	// Tried is the number of strategies attempted.
	Tried int
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unable to find %s (%d strategies tried)", e.Resource, e.Tried)
}

// Is makes errors.Is(err, ErrNotFound) hold for an exhausted chain,
// so nested chains can be used as strategies of an outer chain.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// First invokes strategies in order and returns the first result.
// Strategies after the successful one are never invoked.
// A strategy error other than ErrNotFound aborts the chain.
func First[T any](ctx context.Context, resource string, strategies ...Strategy[T]) (T, error) {
	var zero T

	for i, strategy := range strategies {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := strategy(ctx)
		if err == nil {
			logger.DebugKV(ctx, "Resolved resource", "resource", resource, "strategy", i)

			return result, nil
		}

		if !errors.Is(err, ErrNotFound) {
			return zero, fmt.Errorf("resolve %s: %w", resource, err)
		}

		logger.DebugKV(ctx, "Strategy found nothing", "resource", resource, "strategy", i, "reason", err)
	}

	return zero, &NotFoundError{
		Resource: resource,
		Tried:    len(strategies),
	}
}

// Optional adapts a lookup that reports absence through a boolean
// into a Strategy.
func Optional[T any](lookup func(ctx context.Context) (T, bool, error)) Strategy[T] {
	return func(ctx context.Context) (T, error) {
		result, ok, err := lookup(ctx)
		if err != nil {
			return result, err
		}

		if !ok {
			return result, ErrNotFound
		}

		return result, nil
	}
}

// NotFoundf builds an ErrNotFound-wrapping error with context.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// Named wraps a strategy so that its name shows up in debug logs.
func Named[T any](name string, strategy Strategy[T]) Strategy[T] {
	return func(ctx context.Context) (T, error) {
		result, err := strategy(ctx)
		if err != nil {
			logger.DebugKV(ctx, "Strategy failed", "name", name, "error", err)

			return result, err
		}

		logger.DebugKV(ctx, "Strategy succeeded", "name", name)

		return result, nil
	}
}
