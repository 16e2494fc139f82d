package hybridcache

import "context"

// Future is the pending result of an ...Async call.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func goFuture[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = fn()
	}()
	return f
}

func goFutureErr(fn func() error) *Future[struct{}] {
	return goFuture(func() (struct{}, error) { return struct{}{}, fn() })
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the operation finishes or ctx ends. Giving up on ctx does not
// cancel the operation; cancel the ctx passed to the ...Async call for that.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
