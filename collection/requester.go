package collection

import (
	"context"
	"fmt"

	"github.com/amp-labs/amp-wizard/optional"
)

// Page is one response from a Requester. Next is None on the last page.
type Page[T, C any] struct {
	Items []T
	Next  optional.Value[C]
}

// LastPage returns a page with no continuation.
func LastPage[T, C any](items ...T) Page[T, C] {
	return Page[T, C]{Items: items, Next: optional.None[C]()}
}

// NextPage returns a page whose continuation token is next.
func NextPage[T, C any](next C, items ...T) Page[T, C] {
	return Page[T, C]{Items: items, Next: optional.Some(next)}
}

// Requester fetches one page. The first call receives None; every later call
// receives the Next token of the previous page. A requester that always returns
// a token describes an infinite sequence; bounding it is the caller's job.
type Requester[T, C any] func(ctx context.Context, token optional.Value[C]) (Page[T, C], error)

// RequestError reports a failed page request. Page is the zero-based index of
// the page that was being fetched.
type RequestError struct {
	Page int
	Err  error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// FromRequester creates a collection of pages backed by req. Pages are
// requested one at a time, only when the consumer pulls past the previous
// one. Failures are not retried.
func FromRequester[T, C any](req Requester[T, C]) *Collection[[]T] {
	return New(func(ctx context.Context, yield func([]T) bool) error {
		token := optional.None[C]()

		for index := 0; ; index++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			page, err := req(ctx, token)
			if err != nil {
				return &RequestError{Page: index, Err: err}
			}

			if !yield(page.Items) {
				return nil
			}

			next, ok := page.Next.Get()
			if !ok {
				return nil
			}

			token = optional.Some(next)
		}
	})
}
