// Package collection provides a lazy, single-pass, possibly paginated sequence
// used to feed choice prompters.
//
// A Collection does nothing until it is consumed with All or Promise. Operators
// such as Map, Filter and Flatten wrap the source without pulling from it, so a
// chain like
//
//	Map(Flatten(FromRequester(listBuckets)).Filter(isPublic), toItem)
//
// fetches pages only as items are pulled, in requester page order.
//
// Every collection derived from one source shares that source's consumption
// flag: consuming any of them a second time fails with ErrConsumed.
package collection

import (
	"context"
	"errors"
	"iter"

	"go.uber.org/atomic"
)

// ErrConsumed is returned when a collection (or another collection derived from
// the same source) is consumed more than once.
var ErrConsumed = errors.New("collection already consumed")

// PullFunc produces the elements of a collection by calling yield for each one,
// in order. It must stop and return nil as soon as yield returns false, and it
// should return ctx.Err() promptly once ctx is done.
type PullFunc[T any] func(ctx context.Context, yield func(T) bool) error

// Collection is a lazy sequence of T.
type Collection[T any] struct {
	pull     PullFunc[T]
	consumed *atomic.Bool
}

// New creates a collection from a pull function.
func New[T any](pull PullFunc[T]) *Collection[T] {
	return &Collection[T]{
		pull:     pull,
		consumed: atomic.NewBool(false),
	}
}

// FromSlice creates a collection over a fixed list of items.
func FromSlice[T any](items ...T) *Collection[T] {
	return New(func(ctx context.Context, yield func(T) bool) error {
		for _, item := range items {
			if err := ctx.Err(); err != nil {
				return err
			}

			if !yield(item) {
				return nil
			}
		}

		return nil
	})
}

// derive builds a collection sharing c's consumption flag.
func derive[T, U any](c *Collection[T], pull PullFunc[U]) *Collection[U] {
	return &Collection[U]{
		pull:     pull,
		consumed: c.consumed,
	}
}

// Map transforms every element with f, lazily and in order.
func Map[T, U any](c *Collection[T], f func(T) U) *Collection[U] {
	return derive(c, func(ctx context.Context, yield func(U) bool) error {
		return c.pull(ctx, func(item T) bool {
			return yield(f(item))
		})
	})
}

// TryMap is Map for transforms that can fail. The first error stops the
// sequence and is returned to whoever is consuming it.
func TryMap[T, U any](c *Collection[T], f func(T) (U, error)) *Collection[U] {
	return derive(c, func(ctx context.Context, yield func(U) bool) error {
		var mapErr error

		err := c.pull(ctx, func(item T) bool {
			mapped, err := f(item)
			if err != nil {
				mapErr = err

				return false
			}

			return yield(mapped)
		})
		if mapErr != nil {
			return mapErr
		}

		return err
	})
}

// Filter keeps the elements for which keep returns true, preserving order.
func (c *Collection[T]) Filter(keep func(T) bool) *Collection[T] {
	return derive(c, func(ctx context.Context, yield func(T) bool) error {
		return c.pull(ctx, func(item T) bool {
			if !keep(item) {
				return true
			}

			return yield(item)
		})
	})
}

// Flatten turns a collection of pages into a collection of items, preserving
// page order and the order within each page.
func Flatten[T any](c *Collection[[]T]) *Collection[T] {
	return derive(c, func(ctx context.Context, yield func(T) bool) error {
		return c.pull(ctx, func(page []T) bool {
			for _, item := range page {
				if !yield(item) {
					return false
				}
			}

			return true
		})
	})
}

// All consumes the collection. Each element is yielded with a nil error; if
// pulling fails, a single (zero, err) pair is yielded last.
func (c *Collection[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		if !c.consumed.CompareAndSwap(false, true) {
			yield(zero, ErrConsumed)

			return
		}

		stopped := false

		err := c.pull(ctx, func(item T) bool {
			if !yield(item, nil) {
				stopped = true

				return false
			}

			return true
		})
		if err != nil && !stopped {
			yield(zero, err)
		}
	}
}

// Promise eagerly drains the collection and returns every element in order.
// Use it only when loading everything before showing anything is acceptable.
func (c *Collection[T]) Promise(ctx context.Context) ([]T, error) {
	var out []T

	for item, err := range c.All(ctx) {
		if err != nil {
			return nil, err
		}

		out = append(out, item)
	}

	return out, nil
}

// Consumed reports whether this collection's source has been consumed.
func (c *Collection[T]) Consumed() bool {
	return c.consumed.Load()
}
