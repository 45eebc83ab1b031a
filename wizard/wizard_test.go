package wizard_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/amp-labs/amp-wizard/collection"
	amperrors "github.com/amp-labs/amp-wizard/errors"
	"github.com/amp-labs/amp-wizard/optional"
	"github.com/amp-labs/amp-wizard/prompter"
	"github.com/amp-labs/amp-wizard/prompter/prompttest"
	"github.com/amp-labs/amp-wizard/wizard"
	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fooKey = wizard.NewKey[string]("foo")
	barKey = wizard.NewKey[int]("bar")

	errBoom = errors.New("boom")
)

// fooBarForm declares foo (always shown) and bar (choices 1 and 2, shown
// once foo is longer than five characters).
func fooBarForm(t *testing.T, host prompter.Host) *wizard.Form {
	t.Helper()

	form := wizard.NewForm()

	require.NoError(t, wizard.BindPrompter(form, fooKey, func(wizard.Snapshot) (prompter.Prompter[string], error) {
		return prompter.NewInput(host, "foo"), nil
	}))

	require.NoError(t, wizard.BindPrompter(form, barKey, func(wizard.Snapshot) (prompter.Prompter[int], error) {
		return prompter.NewStaticSelect(host, "bar", []prompter.Item[int]{
			{Label: "1", Data: 1},
			{Label: "2", Data: 2},
		}), nil
	}, wizard.ShowWhen(func(s wizard.Snapshot) (bool, error) {
		foo, err := fooKey.Lookup(s)

		return len(foo.GetOrElse("")) > 5, err
	}), wizard.DependsOn("foo")))

	return form
}

func run(t *testing.T, form *wizard.Form, opts ...wizard.Option) (wizard.Result, error) {
	t.Helper()

	opts = append([]wizard.Option{wizard.WithLogger(wizard.NewSlogLogger(slogt.New(t)))}, opts...)

	return wizard.New(form, opts...).Run(t.Context())
}

func TestScenarioA_ConditionalFieldShown(t *testing.T) {
	t.Parallel()

	host := prompttest.NewHost(t, prompttest.Type("Hello, world!"), prompttest.Pick("2"))

	res, err := run(t, fooBarForm(t, host))
	require.NoError(t, err)
	require.False(t, res.Cancelled())

	assert.Equal(t, map[string]any{"foo": "Hello, world!", "bar": 2}, res.Snapshot().Map())
	assert.Equal(t, []string{"foo", "bar"}, host.Titles())

	requests := host.Requests()
	assert.Equal(t, []string{"1", "2"}, requests[1].Labels)
	assert.Equal(t, 2, requests[1].Step)
}

func TestScenarioB_ConditionalFieldHidden(t *testing.T) {
	t.Parallel()

	host := prompttest.NewHost(t, prompttest.Type("Hi"))

	res, err := run(t, fooBarForm(t, host))
	require.NoError(t, err)
	require.False(t, res.Cancelled())

	assert.Equal(t, map[string]any{"foo": "Hi"}, res.Snapshot().Map())
	assert.False(t, res.Snapshot().IsSet("bar"))
	assert.Equal(t, optional.None[int](), barKey.Get(res.Snapshot()))
	assert.Equal(t, []string{"foo"}, host.Titles())
}

func TestScenarioC_CancelFirstStep(t *testing.T) {
	t.Parallel()

	host := prompttest.NewHost(t, prompttest.Back())

	res, err := run(t, fooBarForm(t, host))
	require.NoError(t, err)
	assert.True(t, res.Cancelled())
	assert.Equal(t, 0, res.Snapshot().Len())
}

func TestScenarioD_BackPrefillsAndReroutes(t *testing.T) {
	t.Parallel()

	host := prompttest.NewHost(t,
		prompttest.Type("Hello, world!"),
		prompttest.Back(),
		prompttest.Type("Hi"),
	)

	res, err := run(t, fooBarForm(t, host))
	require.NoError(t, err)
	require.False(t, res.Cancelled())

	assert.Equal(t, []string{"foo", "bar", "foo"}, host.Titles())
	assert.Equal(t, "Hello, world!", host.Requests()[2].Value, "re-shown step is pre-filled with the last answer")
	assert.Equal(t, map[string]any{"foo": "Hi"}, res.Snapshot().Map())
	assert.Zero(t, host.Remaining())
}

func TestDeclarationOrder(t *testing.T) {
	t.Parallel()

	host := prompttest.NewHost(t, prompttest.Type("1"), prompttest.Type("2"), prompttest.Type("3"))
	form := wizard.NewForm()

	for _, path := range []string{"c", "a", "b"} {
		wizard.MustBindPrompter(form, wizard.NewKey[string](path), func(wizard.Snapshot) (prompter.Prompter[string], error) {
			return prompter.NewInput(host, path), nil
		})
	}

	res, err := run(t, form)
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "a", "b"}, host.Titles())
	assert.Equal(t, map[string]any{"c": "1", "a": "2", "b": "3"}, res.Snapshot().Map())
}

// resourceForm branches on the kind of resource, then asks for confirmation.
func resourceForm(t *testing.T, host prompter.Host) *wizard.Form {
	t.Helper()

	kind := wizard.NewKey[string]("kind")
	isKind := func(want string) wizard.Predicate {
		return func(s wizard.Snapshot) (bool, error) {
			return kind.Get(s).GetOrElse("") == want, nil
		}
	}

	form := wizard.NewForm()

	wizard.MustBindPrompter(form, kind, func(wizard.Snapshot) (prompter.Prompter[string], error) {
		return prompter.NewStaticSelect(host, "kind", []prompter.Item[string]{
			{Label: "bucket", Data: "bucket"},
			{Label: "queue", Data: "queue"},
		}), nil
	})

	wizard.MustBindPrompter(form, wizard.NewKey[string]("bucket.name"),
		func(wizard.Snapshot) (prompter.Prompter[string], error) {
			return prompter.NewInput(host, "bucket name"), nil
		}, wizard.ShowWhen(isKind("bucket")), wizard.DependsOn("kind"))

	wizard.MustBindPrompter(form, wizard.NewKey[string]("queue.name"),
		func(wizard.Snapshot) (prompter.Prompter[string], error) {
			return prompter.NewInput(host, "queue name"), nil
		}, wizard.ShowWhen(isKind("queue")), wizard.DependsOn("kind"))

	wizard.MustBindPrompter(form, wizard.NewKey[bool]("confirm"),
		func(wizard.Snapshot) (prompter.Prompter[bool], error) {
			return prompter.NewConfirm(host, "confirm"), nil
		})

	return form
}

func TestBackReevaluatesDownstreamFields(t *testing.T) {
	t.Parallel()

	host := prompttest.NewHost(t,
		prompttest.Pick("bucket"),
		prompttest.Type("b1"),
		prompttest.Back(), // at confirm: back to bucket name
		prompttest.Back(), // at bucket name: back to kind
		prompttest.Pick("queue"),
		prompttest.Type("q1"),
		prompttest.Pick("Yes"),
	)

	recorder := &wizard.Recorder{}

	res, err := run(t, resourceForm(t, host), wizard.WithHook(recorder))
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"kind", "bucket name", "confirm", "bucket name", "kind", "queue name", "confirm"},
		host.Titles())

	requests := host.Requests()
	assert.Equal(t, "b1", requests[3].Value)
	assert.Equal(t, []string{"bucket"}, requests[4].Picked)

	assert.Equal(t, map[string]any{
		"kind":    "queue",
		"queue":   map[string]any{"name": "q1"},
		"confirm": true,
	}, res.Snapshot().Map())

	assert.Equal(t, []string{"bucket.name", "kind"}, recorder.Paths(wizard.ActionRewound))
	assert.Equal(t, []string{"kind", "bucket.name", "kind", "queue.name", "confirm"},
		recorder.Paths(wizard.ActionAnswered))
}

func TestReansweringReplacesValue(t *testing.T) {
	t.Parallel()

	host := prompttest.NewHost(t,
		prompttest.Type("Hello, world!"),
		prompttest.Pick("1"),
		prompttest.Back(),
		prompttest.Pick("2"),
		prompttest.Type("z"),
	)

	form := fooBarForm(t, host)
	wizard.MustBindPrompter(form, wizard.NewKey[string]("baz"), func(wizard.Snapshot) (prompter.Prompter[string], error) {
		return prompter.NewInput(host, "baz"), nil
	})

	res, err := run(t, form)
	require.NoError(t, err)

	assert.Equal(t, []string{"foo", "bar", "baz", "bar", "baz"}, host.Titles())
	assert.Equal(t, []string{"1"}, host.Requests()[3].Picked)
	assert.Equal(t, map[string]any{"foo": "Hello, world!", "bar": 2, "baz": "z"}, res.Snapshot().Map())
}

func TestStepNumbers(t *testing.T) {
	t.Parallel()

	host := prompttest.NewHost(t, prompttest.Type("Hello, world!"), prompttest.Pick("1"))

	_, err := run(t, fooBarForm(t, host))
	require.NoError(t, err)

	requests := host.Requests()
	assert.Equal(t, 1, requests[0].Step)
	assert.Equal(t, 2, requests[0].TotalSteps)
	assert.Equal(t, 2, requests[1].Step)
	assert.Equal(t, 2, requests[1].TotalSteps)
}

func TestNilPrompterSkipsField(t *testing.T) {
	t.Parallel()

	host := prompttest.NewHost(t, prompttest.Type("x"))
	form := wizard.NewForm()

	wizard.MustBindPrompter(form, wizard.NewKey[string]("skipped"), func(wizard.Snapshot) (prompter.Prompter[string], error) {
		return nil, nil
	})
	wizard.MustBindPrompter(form, wizard.NewKey[string]("asked"), func(wizard.Snapshot) (prompter.Prompter[string], error) {
		return prompter.NewInput(host, "asked"), nil
	})

	recorder := &wizard.Recorder{}

	res, err := run(t, form, wizard.WithHook(recorder))
	require.NoError(t, err)

	assert.Equal(t, []string{"asked"}, res.Snapshot().Paths())
	require.NotEmpty(t, recorder.Events)
	assert.Equal(t, wizard.Event{
		Action: wizard.ActionSkipped,
		Path:   "skipped",
		Reason: wizard.SkipNotApplicable,
	}, recorder.Events[0])
}

func TestBackSkipsHiddenFields(t *testing.T) {
	t.Parallel()

	host := prompttest.NewHost(t,
		prompttest.Type("Hi"),
		prompttest.Back(), // at baz: bar was hidden, so back lands on foo
		prompttest.Accept(),
		prompttest.Type("z"),
	)

	form := fooBarForm(t, host)
	wizard.MustBindPrompter(form, wizard.NewKey[string]("baz"), func(wizard.Snapshot) (prompter.Prompter[string], error) {
		return prompter.NewInput(host, "baz"), nil
	})

	res, err := run(t, form)
	require.NoError(t, err)

	assert.Equal(t, []string{"foo", "baz", "foo", "baz"}, host.Titles())
	assert.Equal(t, map[string]any{"foo": "Hi", "baz": "z"}, res.Snapshot().Map())
}

func TestInitialState(t *testing.T) {
	t.Parallel()

	t.Run("hidden field keeps its value", func(t *testing.T) {
		t.Parallel()

		host := prompttest.NewHost(t, prompttest.Type("Hi"))

		res, err := run(t, fooBarForm(t, host), wizard.WithInitialState(map[string]any{"bar": 1}))
		require.NoError(t, err)

		assert.Equal(t, map[string]any{"foo": "Hi", "bar": 1}, res.Snapshot().Map())
	})

	t.Run("shown field starts from it", func(t *testing.T) {
		t.Parallel()

		host := prompttest.NewHost(t, prompttest.Accept(), prompttest.Accept())

		res, err := run(t, fooBarForm(t, host), wizard.WithInitialState(map[string]any{
			"foo": "Hello, world!",
			"bar": 2,
		}))
		require.NoError(t, err)

		assert.Equal(t, "Hello, world!", host.Requests()[0].Value)
		assert.Equal(t, []string{"2"}, host.Requests()[1].Picked)
		assert.Equal(t, map[string]any{"foo": "Hello, world!", "bar": 2}, res.Snapshot().Map())
	})

	t.Run("rewinding restores it", func(t *testing.T) {
		t.Parallel()

		host := prompttest.NewHost(t,
			prompttest.Type("Hello, world!"),
			prompttest.Pick("1"),
		)

		form := fooBarForm(t, host)
		wizard.MustBindPrompter(form, wizard.NewKey[string]("baz"), func(wizard.Snapshot) (prompter.Prompter[string], error) {
			return prompter.NewInput(host, "baz"), nil
		})

		// baz: back to bar, bar: back to foo, foo: now short so bar is hidden again.
		host.Push(prompttest.Back(), prompttest.Back(), prompttest.Type("Hi"), prompttest.Type("z"))

		res, err := run(t, form, wizard.WithInitialState(map[string]any{"bar": 2}))
		require.NoError(t, err)

		assert.Equal(t, 2, barKey.Get(res.Snapshot()).GetOrElse(0))
	})
}

func TestEvaluationFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		showWhen wizard.Predicate
		binder   wizard.Binder[string]
		stage    wizard.Stage
		target   error
	}{
		{
			name:     "predicate error",
			showWhen: func(wizard.Snapshot) (bool, error) { return false, errBoom },
			stage:    wizard.StageShowWhen,
			target:   errBoom,
		},
		{
			name:     "predicate panic",
			showWhen: func(wizard.Snapshot) (bool, error) { panic("bad predicate") },
			stage:    wizard.StageShowWhen,
			target:   amperrors.ErrPanicRecovery,
		},
		{
			name:   "binder error",
			binder: func(wizard.Snapshot) (prompter.Prompter[string], error) { return nil, errBoom },
			stage:  wizard.StageBind,
			target: errBoom,
		},
		{
			name:   "binder panic",
			binder: func(wizard.Snapshot) (prompter.Prompter[string], error) { panic(errBoom) },
			stage:  wizard.StageBind,
			target: errBoom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			host := prompttest.NewHost(t, prompttest.Type("first"))
			form := wizard.NewForm()

			wizard.MustBindPrompter(form, wizard.NewKey[string]("first"),
				func(wizard.Snapshot) (prompter.Prompter[string], error) {
					return prompter.NewInput(host, "first"), nil
				})

			binder := tt.binder
			if binder == nil {
				binder = func(wizard.Snapshot) (prompter.Prompter[string], error) {
					return prompter.NewInput(host, "second"), nil
				}
			}

			var opts []wizard.FieldOption
			if tt.showWhen != nil {
				opts = append(opts, wizard.ShowWhen(tt.showWhen))
			}

			wizard.MustBindPrompter(form, wizard.NewKey[string]("second"), binder, opts...)

			res, err := run(t, form)
			require.ErrorIs(t, err, tt.target)
			assert.False(t, res.Cancelled())
			assert.Equal(t, 0, res.Snapshot().Len(), "no partial state")

			var evalErr *wizard.EvaluationError
			require.ErrorAs(t, err, &evalErr)
			assert.Equal(t, "second", evalErr.Path)
			assert.Equal(t, tt.stage, evalErr.Stage)
		})
	}
}

func TestPrompterFailure(t *testing.T) {
	t.Parallel()

	failing := func(context.Context, optional.Value[int]) (collection.Page[string, int], error) {
		return collection.Page[string, int]{}, errBoom
	}

	host := prompttest.NewHost(t)
	form := wizard.NewForm()

	wizard.MustBindPrompter(form, wizard.NewKey[string]("region"), func(wizard.Snapshot) (prompter.Prompter[string], error) {
		items := prompter.ItemsFrom(collection.FromRequester(failing), strings.ToUpper)

		return prompter.NewSelect(host, "region", items), nil
	})

	_, err := run(t, form)
	require.ErrorIs(t, err, errBoom)
	require.ErrorIs(t, err, prompter.ErrItemsFailed)

	var promptErr *wizard.PrompterError
	require.ErrorAs(t, err, &promptErr)
	assert.Equal(t, "region", promptErr.Path)
}

func TestContextCancellationDisposesActivePrompter(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	started := make(chan struct{})
	host := &stallingHost{started: started}

	var active *prompter.Input[string]

	form := wizard.NewForm()
	wizard.MustBindPrompter(form, fooKey, func(wizard.Snapshot) (prompter.Prompter[string], error) {
		active = prompter.NewInput(host, "foo")

		return active, nil
	})

	done := make(chan error, 1)

	go func() {
		_, err := wizard.New(form, wizard.WithLogger(nil)).Run(ctx)
		done <- err
	}()

	<-started
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(prompttest.DefaultTimeout):
		require.FailNow(t, "run did not stop")
	}

	_, err := active.Prompt(t.Context())
	require.ErrorIs(t, err, prompter.ErrDisposed)
}

// failingDispose reports errBoom from Dispose after releasing the prompter.
type failingDispose struct {
	prompter.Prompter[string]
}

func (f failingDispose) Dispose() error {
	_ = f.Prompter.Dispose()

	return errBoom
}

func TestContextCancellationReportsDisposeFailure(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	started := make(chan struct{})
	host := &stallingHost{started: started}

	form := wizard.NewForm()
	wizard.MustBindPrompter(form, fooKey, func(wizard.Snapshot) (prompter.Prompter[string], error) {
		return failingDispose{prompter.NewInput(host, "foo")}, nil
	})

	done := make(chan error, 1)

	go func() {
		_, err := wizard.New(form, wizard.WithLogger(nil)).Run(ctx)
		done <- err
	}()

	<-started
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
		require.ErrorIs(t, err, errBoom)

		var prompterErr *wizard.PrompterError
		require.ErrorAs(t, err, &prompterErr)
		assert.Equal(t, "foo", prompterErr.Path)
	case <-time.After(prompttest.DefaultTimeout):
		require.FailNow(t, "run did not stop")
	}
}

func TestEveryPrompterIsDisposed(t *testing.T) {
	t.Parallel()

	host := prompttest.NewHost(t, prompttest.Type("Hello, world!"), prompttest.Back(), prompttest.Type("Hi"))

	var created []*prompter.Input[string]

	form := wizard.NewForm()
	wizard.MustBindPrompter(form, fooKey, func(wizard.Snapshot) (prompter.Prompter[string], error) {
		p := prompter.NewInput(host, "foo")
		created = append(created, p)

		return p, nil
	})
	wizard.MustBindPrompter(form, wizard.NewKey[string]("next"), func(wizard.Snapshot) (prompter.Prompter[string], error) {
		p := prompter.NewInput(host, "next")
		created = append(created, p)

		return p, nil
	}, wizard.ShowWhen(func(s wizard.Snapshot) (bool, error) {
		return len(fooKey.Get(s).GetOrElse("")) > 5, nil
	}))

	_, err := run(t, form)
	require.NoError(t, err)
	require.Len(t, created, 3)

	for _, p := range created {
		_, err := p.Prompt(t.Context())
		require.ErrorIs(t, err, prompter.ErrDisposed)
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	type fooBar struct {
		Foo string `json:"foo" validate:"required"`
		Bar int    `json:"bar" default:"7"`
	}

	t.Run("defaults for unset paths", func(t *testing.T) {
		t.Parallel()

		host := prompttest.NewHost(t, prompttest.Type("Hi"))

		res, err := run(t, fooBarForm(t, host))
		require.NoError(t, err)

		out, err := wizard.Decode[fooBar](res.Snapshot())
		require.NoError(t, err)
		assert.Equal(t, fooBar{Foo: "Hi", Bar: 7}, out)
	})

	t.Run("answers override defaults", func(t *testing.T) {
		t.Parallel()

		host := prompttest.NewHost(t, prompttest.Type("Hello, world!"), prompttest.Pick("2"))

		res, err := run(t, fooBarForm(t, host))
		require.NoError(t, err)

		out, err := wizard.Decode[fooBar](res.Snapshot())
		require.NoError(t, err)
		assert.Equal(t, fooBar{Foo: "Hello, world!", Bar: 2}, out)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()

		_, err := wizard.Decode[fooBar](wizard.NewState().Snapshot())
		require.Error(t, err)
	})
}

func TestConcurrentRunsAreIndependent(t *testing.T) {
	t.Parallel()

	hostA := prompttest.NewHost(t, prompttest.Type("Hello, world!"), prompttest.Pick("1"))
	hostB := prompttest.NewHost(t, prompttest.Type("Hi"))

	results := make(chan map[string]any, 2)

	for _, form := range []*wizard.Form{fooBarForm(t, hostA), fooBarForm(t, hostB)} {
		go func() {
			res, err := wizard.New(form, wizard.WithLogger(nil)).Run(context.Background())
			if err != nil {
				results <- nil

				return
			}

			results <- res.Snapshot().Map()
		}()
	}

	got := []map[string]any{<-results, <-results}
	assert.ElementsMatch(t, []map[string]any{
		{"foo": "Hello, world!", "bar": 1},
		{"foo": "Hi"},
	}, got)
}

// stallingHost blocks every question until ctx ends.
type stallingHost struct {
	started chan struct{}
}

func (h *stallingHost) Pick(ctx context.Context, _ prompter.PickRequest) (prompter.Selection, error) {
	close(h.started)
	<-ctx.Done()

	return prompter.Selection{}, ctx.Err()
}

func (h *stallingHost) Input(ctx context.Context, _ prompter.InputRequest) (prompter.Entry, error) {
	close(h.started)
	<-ctx.Done()

	return prompter.Entry{}, ctx.Err()
}

func TestBindersCannotMutateAnswers(t *testing.T) {
	t.Parallel()

	tagsKey := wizard.NewKey[[]string]("tags")
	host := prompttest.NewHost(t, prompttest.Pick("a,b"), prompttest.Type("done"))
	form := wizard.NewForm()

	require.NoError(t, wizard.BindPrompter(form, tagsKey, func(wizard.Snapshot) (prompter.Prompter[[]string], error) {
		return prompter.NewStaticSelect(host, "tags", []prompter.Item[[]string]{
			{Label: "a,b", Data: []string{"a", "b"}},
		}), nil
	}))

	require.NoError(t, wizard.BindPrompter(form, fooKey, func(s wizard.Snapshot) (prompter.Prompter[string], error) {
		raw, _ := s.Lookup("tags").Get()
		raw.([]string)[0] = "changed by binder"

		return prompter.NewInput(host, "foo"), nil
	}))

	res, err := run(t, form)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, tagsKey.Get(res.Snapshot()).GetOrElse(nil))
}
