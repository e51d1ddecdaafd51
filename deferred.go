package bresult

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// Deferred is an eventual value or an eventual failure. Then must eventually call exactly one of its callbacks,
// once. A handler returning a Deferred is awaited before the route moves on.
type Deferred interface {
	Then(onValue func(any), onError func(error))
}

// AsyncFunc tags a function as an asynchronous computation. A handler may return one instead of a value: it is
// started with [Go] and awaited like any other [Deferred]. Untagged functions are not valid return values.
type AsyncFunc func(ctx context.Context) (any, error)

// Promise is a [Deferred] that is settled once, either by a computation started with [Go] or directly through
// [Resolve] and [Reject].
type Promise struct {
	done   chan struct{}
	settle sync.Once
	value  any
	err    error
}

func newPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

// Go runs fn on a new goroutine and returns a promise for its outcome. A panic inside fn rejects the promise.
func Go(ctx context.Context, fn func(ctx context.Context) (any, error)) *Promise {
	p := newPromise()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.complete(nil, panicError(r))
			}
		}()

		p.complete(fn(ctx))
	}()

	return p
}

// Resolve returns a promise that is already fulfilled with v.
func Resolve(v any) *Promise {
	p := newPromise()
	p.complete(v, nil)

	return p
}

// Reject returns a promise that is already rejected with err.
func Reject(err error) *Promise {
	if err == nil {
		err = errors.New("bresult: promise rejected without a reason")
	}

	p := newPromise()
	p.complete(nil, err)

	return p
}

// Then implements [Deferred]. The callback runs on its own goroutine once the promise settles.
func (p *Promise) Then(onValue func(any), onError func(error)) {
	go func() {
		<-p.done
		if p.err != nil {
			onError(p.err)
			return
		}

		onValue(p.value)
	}()
}

// Wait blocks until the promise settles or ctx is done.
func (p *Promise) Wait(ctx context.Context) (any, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "wait for promise")
	}
}

func (p *Promise) complete(v any, err error) {
	p.settle.Do(func() {
		p.value, p.err = v, err
		close(p.done)
	})
}

// panicError turns a recovered value into the error that is reported in its place.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}

	return errors.Newf("panic: %v", r)
}

var _ Deferred = &Promise{}
