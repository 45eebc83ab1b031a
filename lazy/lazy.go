// Package lazy holds package-level values that must not be built at import
// time: validators with custom tags, and switches read from the environment
// after an --env-file has been loaded.
//
//	var validate = lazy.New(func() *validator.Validate {
//		return validator.New(validator.WithRequiredStructEnabled())
//	})
//
//	err := validate.Get().Var(s, tag)
package lazy

import (
	"sync"
	"sync/atomic"
)

// Of is a value built by its constructor on the first Get. If the
// constructor panics nothing is stored and the next Get calls it again.
type Of[T any] struct {
	mu     sync.Mutex
	build  func() T
	result atomic.Pointer[T]
}

// New wraps build. It is not called until the first Get.
func New[T any](build func() T) *Of[T] {
	return &Of[T]{build: build}
}

// Get returns the value, building it on first use.
func (o *Of[T]) Get() T { //nolint:ireturn
	if v := o.result.Load(); v != nil {
		return *v
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if v := o.result.Load(); v != nil {
		return *v
	}

	v := o.build()
	o.result.Store(&v)

	return v
}
