package collection

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/amp-labs/amp-wizard/optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend unavailable")

// pagedRequester serves the given pages, using the page index as the continuation token.
func pagedRequester[T any](calls *int, pages ...[]T) Requester[T, int] {
	return func(_ context.Context, token optional.Value[int]) (Page[T, int], error) {
		*calls++

		idx := token.GetOrElse(0)
		if idx+1 < len(pages) {
			return NextPage(idx+1, pages[idx]...), nil
		}

		return LastPage[T, int](pages[idx]...), nil
	}
}

func TestFromRequester_FlattenPromise(t *testing.T) {
	t.Parallel()

	calls := 0
	req := pagedRequester(&calls, []string{"a", "b"}, []string{"c", "d"}, []string{"e", "f"})

	items, err := Flatten(FromRequester(req)).Promise(t.Context())
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, items)
	assert.Equal(t, 3, calls)
}

func TestFlattenFilterMap_PreservesOrder(t *testing.T) {
	t.Parallel()

	calls := 0
	req := pagedRequester(&calls, []int{1, 2, 3}, []int{4, 5}, []int{6, 7, 8, 9})

	even := func(i int) bool { return i%2 == 0 }

	out, err := Map(Flatten(FromRequester(req)).Filter(even), strconv.Itoa).Promise(t.Context())
	require.NoError(t, err)

	assert.Equal(t, []string{"2", "4", "6", "8"}, out)
}

func TestPromise_LengthIsSumOfFilteredPages(t *testing.T) {
	t.Parallel()

	pages := [][]int{{1, 2}, {3}, {}, {4, 5, 6}}
	keep := func(i int) bool { return i != 3 }

	calls := 0

	out, err := Flatten(FromRequester(pagedRequester(&calls, pages...))).Filter(keep).Promise(t.Context())
	require.NoError(t, err)

	expected := 0

	for _, page := range pages {
		for _, i := range page {
			if keep(i) {
				expected++
			}
		}
	}

	assert.Len(t, out, expected)
}

func TestFromRequester_IsLazy(t *testing.T) {
	t.Parallel()

	calls := 0
	req := pagedRequester(&calls, []int{1, 2}, []int{3, 4}, []int{5, 6})

	items := Flatten(FromRequester(req))
	assert.Equal(t, 0, calls, "building the chain must not fetch")

	var got []int

	for item, err := range items.All(t.Context()) {
		require.NoError(t, err)

		got = append(got, item)
		if item == 3 {
			break
		}
	}

	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, 2, calls, "only the pages needed so far are fetched")
}

func TestFromRequester_ErrorPropagates(t *testing.T) {
	t.Parallel()

	req := func(_ context.Context, token optional.Value[int]) (Page[string, int], error) {
		if token.NonEmpty() {
			return Page[string, int]{}, errBackend
		}

		return NextPage(1, "first"), nil
	}

	items, err := Flatten(FromRequester(req)).Promise(t.Context())
	require.ErrorIs(t, err, errBackend)
	assert.Nil(t, items)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 1, reqErr.Page)
}

func TestAll_YieldsItemsBeforeError(t *testing.T) {
	t.Parallel()

	req := func(_ context.Context, token optional.Value[int]) (Page[string, int], error) {
		if token.NonEmpty() {
			return Page[string, int]{}, errBackend
		}

		return NextPage(1, "first"), nil
	}

	var (
		items []string
		errs  []error
	)

	for item, err := range Flatten(FromRequester(req)).All(t.Context()) {
		if err != nil {
			errs = append(errs, err)

			continue
		}

		items = append(items, item)
	}

	assert.Equal(t, []string{"first"}, items)
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], errBackend)
}

func TestSinglePass(t *testing.T) {
	t.Parallel()

	src := FromSlice(1, 2, 3)
	doubled := Map(src, func(i int) int { return i * 2 })

	out, err := doubled.Promise(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, out)
	assert.True(t, src.Consumed())

	_, err = doubled.Promise(t.Context())
	require.ErrorIs(t, err, ErrConsumed)

	_, err = src.Promise(t.Context())
	require.ErrorIs(t, err, ErrConsumed)
}

func TestTryMap(t *testing.T) {
	t.Parallel()

	out, err := TryMap(FromSlice("1", "2", "x", "4"), strconv.Atoi).Promise(t.Context())
	require.Error(t, err)
	assert.Nil(t, out)

	out, err = TryMap(FromSlice("1", "2"), strconv.Atoi).Promise(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, out)
}

func TestContextCancellationStopsPaging(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())

	calls := 0
	infinite := func(_ context.Context, token optional.Value[int]) (Page[int, int], error) {
		calls++
		next := token.GetOrElse(0) + 1

		if next == 3 {
			cancel()
		}

		return NextPage(next, next), nil
	}

	_, err := Flatten(FromRequester(infinite)).Promise(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, calls)
}

func TestFromSlice_Empty(t *testing.T) {
	t.Parallel()

	out, err := FromSlice[string]().Promise(t.Context())
	require.NoError(t, err)
	assert.Empty(t, out)
}
