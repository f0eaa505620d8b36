package future

import (
	"fmt"
	"sync"
)

type result[T any] struct {
	v   T
	err error
}

// Future is a single-shot result that completes exactly once.
type Future[T any] struct {
	doneChannel chan struct{}
	res         result[T]
	once        sync.Once
}

// New runs fn in a goroutine and completes the Future when fn returns.
// A panic inside fn completes the Future with an error instead of crashing the process.
func New[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{doneChannel: make(chan struct{})}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				f.complete(zero, fmt.Errorf("future panicked: %v", r))
			}
		}()
		v, err := fn()
		f.complete(v, err)
	}()
	return f
}

// Await blocks until completion and returns the result.
func (f *Future[T]) Await() (T, error) {
	<-f.doneChannel
	return f.res.v, f.res.err
}

// All waits for all futures and returns their values in order.
// Every future is awaited, the first error in order wins.
func All[T any](futures ...*Future[T]) *Future[[]T] {
	return New(func() ([]T, error) {
		out := make([]T, len(futures))
		var firstErr error
		for i, fut := range futures {
			v, err := fut.Await()
			if err != nil && firstErr == nil {
				firstErr = err
			}
			out[i] = v
		}
		if firstErr != nil {
			return nil, firstErr
		}
		return out, nil
	})
}

// Range starts one future per index in [0, n) and waits for all of them.
func Range[T any](n int, fn func(i int) (T, error)) ([]T, error) {
	futures := make([]*Future[T], n)
	for i := 0; i < n; i++ {
		futures[i] = New(func() (T, error) { return fn(i) })
	}
	return All(futures...).Await()
}

// complete sets the result exactly once and closes doneChannel.
func (f *Future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.res = result[T]{v: v, err: err}
		close(f.doneChannel)
	})
}
