package prompter

import (
	"context"

	"go.uber.org/atomic"
)

// Status is the lifecycle state of a prompter.
type Status int32

const (
	StatusCreated Status = iota
	StatusActive
	StatusResolved
	StatusCancelled
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusActive:
		return "active"
	case StatusResolved:
		return "resolved"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// lifecycle enforces the one-shot Created -> Active -> terminal progression
// shared by every prompter variant, and owns the context that Dispose cancels.
type lifecycle struct {
	status   *atomic.Int32
	disposed *atomic.Bool
	alive    context.Context //nolint:containedctx
	kill     context.CancelFunc

	step  int
	total int
}

func newLifecycle() lifecycle {
	alive, kill := context.WithCancel(context.Background())

	return lifecycle{
		status:   atomic.NewInt32(int32(StatusCreated)),
		disposed: atomic.NewBool(false),
		alive:    alive,
		kill:     kill,
	}
}

// Status returns the current lifecycle state.
func (l *lifecycle) Status() Status {
	return Status(l.status.Load())
}

// SetStep records the step indicator passed on to the host.
func (l *lifecycle) SetStep(current, total int) {
	l.step = current
	l.total = total
}

// Dispose cancels any in-flight prompt and item loading.
func (l *lifecycle) Dispose() error {
	if l.disposed.CompareAndSwap(false, true) {
		l.kill()
	}

	return nil
}

// begin moves the prompter to Active and returns a context that ends when
// either ctx ends or the prompter is disposed.
func (l *lifecycle) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if l.disposed.Load() {
		return nil, nil, ErrDisposed
	}

	if !l.status.CompareAndSwap(int32(StatusCreated), int32(StatusActive)) {
		return nil, nil, ErrAlreadyPrompted
	}

	runCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(l.alive, cancel)

	return runCtx, func() {
		stop()
		cancel()
	}, nil
}

// finish records the terminal state. A host error caused by Dispose (rather
// than by the caller's ctx) is reported as a cancellation.
func finish[T any](ctx context.Context, l *lifecycle, res Result[T], err error) (Result[T], error) {
	switch {
	case err != nil && ctx.Err() == nil && l.disposed.Load():
		l.status.Store(int32(StatusCancelled))

		return Cancelled[T](), nil
	case err != nil:
		l.status.Store(int32(StatusFailed))

		return Result[T]{}, err
	case res.IsCancelled():
		l.status.Store(int32(StatusCancelled))
	default:
		l.status.Store(int32(StatusResolved))
	}

	return res, nil
}
