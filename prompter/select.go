package prompter

import (
	"context"
	"fmt"
	"sync"

	"github.com/amp-labs/amp-wizard/collection"
	"github.com/amp-labs/amp-wizard/optional"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

// Item is one choice of a Select, carrying the value it resolves to.
type Item[T any] struct {
	Label       string
	Description string
	Detail      string
	Data        T
}

// Select asks the user to pick one item. Items are pulled from a collection
// of pages while the host is already showing the list, so a slow or
// paginated source reveals choices incrementally.
type Select[T any] struct {
	lifecycle

	host    Host
	title   string
	items   *collection.Collection[[]Item[T]]
	opts    options
	prefill optional.Value[T]
}

var (
	_ Prompter[int]  = (*Select[int])(nil)
	_ Prefiller[int] = (*Select[int])(nil)
	_ StepAware      = (*Select[int])(nil)
)

// NewSelect creates a choice prompter over pages of items. The collection is
// consumed by Prompt, so a Select can only be backed by a fresh collection.
func NewSelect[T any](host Host, title string, items *collection.Collection[[]Item[T]], opts ...Option) *Select[T] {
	return &Select[T]{
		lifecycle: newLifecycle(),
		host:      host,
		title:     title,
		items:     items,
		opts:      newOptions(opts),
	}
}

// NewStaticSelect creates a choice prompter over a fixed list.
func NewStaticSelect[T any](host Host, title string, items []Item[T], opts ...Option) *Select[T] {
	return NewSelect(host, title, collection.FromSlice(items), opts...)
}

// NewConfirm creates a yes/no prompter.
func NewConfirm(host Host, title string, opts ...Option) *Select[bool] {
	return NewStaticSelect(host, title, []Item[bool]{
		{Label: "Yes", Data: true},
		{Label: "No", Data: false},
	}, opts...)
}

// ItemsFrom turns pages of values into pages of items labelled by label.
func ItemsFrom[T any](pages *collection.Collection[[]T], label func(T) string) *collection.Collection[[]Item[T]] {
	return collection.Map(pages, func(page []T) []Item[T] {
		items := make([]Item[T], len(page))
		for i, value := range page {
			items[i] = Item[T]{Label: label(value), Data: value}
		}

		return items
	})
}

// Prefill marks the item equal to value as picked when the list is shown.
func (s *Select[T]) Prefill(value T) {
	s.prefill = optional.Some(value)
}

func (s *Select[T]) Prompt(ctx context.Context) (Result[T], error) {
	runCtx, done, err := s.begin(ctx)
	if err != nil {
		return Result[T]{}, err
	}
	defer done()

	res, err := s.run(runCtx)

	return finish(ctx, &s.lifecycle, res, err)
}

func (s *Select[T]) run(ctx context.Context) (Result[T], error) {
	var (
		mu        sync.Mutex
		loaded    []Item[T]
		selection Selection
		picked    = atomic.NewBool(false)
		batches   = make(chan []Choice)
	)

	group, groupCtx := errgroup.WithContext(ctx)
	loadCtx, stopLoading := context.WithCancel(groupCtx)

	defer stopLoading()

	group.Go(func() error {
		err := s.load(loadCtx, picked, batches, func(page []Item[T]) {
			mu.Lock()
			defer mu.Unlock()

			loaded = append(loaded, page...)
		})
		if err == nil {
			close(batches)
		}

		return err
	})

	group.Go(func() error {
		defer func() {
			picked.Store(true)
			stopLoading()
		}()

		sel, err := s.host.Pick(groupCtx, PickRequest{
			Title:       s.title,
			Placeholder: s.opts.placeholder,
			Step:        s.step,
			TotalSteps:  s.total,
			Items:       batches,
		})
		if err != nil {
			return err
		}

		selection = sel

		return nil
	})

	if err := group.Wait(); err != nil {
		return Result[T]{}, err
	}

	if selection.Cancelled {
		return Cancelled[T](), nil
	}

	mu.Lock()
	defer mu.Unlock()

	if selection.Index < 0 || selection.Index >= len(loaded) {
		return Result[T]{}, fmt.Errorf("%w: index %d of %d items", ErrInvalidSelection, selection.Index, len(loaded))
	}

	return Resolved(loaded[selection.Index].Data), nil
}

// load sends every page to the host. Pages are recorded before they are
// sent, so any index the host reports is already resolvable. batches is left
// open on failure: the host then stops because the group context ends, not
// because the list looks complete.
func (s *Select[T]) load(
	ctx context.Context, picked *atomic.Bool, batches chan<- []Choice, record func([]Item[T]),
) error {
	for page, err := range s.items.All(ctx) {
		if err != nil {
			if picked.Load() {
				return nil
			}

			return fmt.Errorf("%w: %w", ErrItemsFailed, err)
		}

		if len(page) == 0 {
			continue
		}

		choices := make([]Choice, len(page))
		for i, item := range page {
			choices[i] = s.choice(item)
		}

		record(page)

		select {
		case batches <- choices:
		case <-ctx.Done():
			if picked.Load() {
				return nil
			}

			return ctx.Err()
		}
	}

	return nil
}

func (s *Select[T]) choice(item Item[T]) Choice {
	prev, ok := s.prefill.Get()

	return Choice{
		Label:       item.Label,
		Description: item.Description,
		Detail:      item.Detail,
		Picked:      ok && s.opts.equal(prev, item.Data),
	}
}
