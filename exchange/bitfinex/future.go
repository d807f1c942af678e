package bitfinex

import (
	"context"
	"sync"
)

// Call is any client call that can be run asynchronously, e.g. a closure around Client.Ticker.
type Call func(ctx context.Context) (*Response, error)

// Future is the result of a call running on its own goroutine. It resolves exactly once.
type Future struct {
	mu        *sync.Mutex
	done      chan struct{}
	resp      *Response
	err       error
	observers []Callback
}

// Async runs the provided call on a new goroutine and returns its future immediately.
func Async(ctx context.Context, call Call) *Future {
	o := &Future{
		mu:   &sync.Mutex{},
		done: make(chan struct{}),
	}

	go func() {
		resp, err := call(ctx)

		o.resolve(resp, err)
	}()

	return o
}

// Done returns a channel that is closed once the call has completed.
func (o *Future) Done() <-chan struct{} {
	return o.done
}

// Await blocks until the call has completed or the provided context is done. Abandoning a wait
// does not cancel the call itself; that is governed by the context given to Async.
func (o *Future) Await(ctx context.Context) (*Response, error) {
	select {
	case <-o.done:
		return o.resp, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Observe attaches a callback that receives the outcome exactly once, as (err, nil) on failure and
// (nil, resp) on success. Callbacks attached after resolution run immediately on the caller's
// goroutine.
func (o *Future) Observe(cb Callback) *Future {
	o.mu.Lock()

	select {
	case <-o.done:
		o.mu.Unlock()
		o.notify(cb)

		return o
	default:
	}

	o.observers = append(o.observers, cb)
	o.mu.Unlock()

	return o
}

func (o *Future) resolve(resp *Response, err error) {
	o.mu.Lock()

	o.resp = resp
	o.err = err

	if err != nil {
		o.resp = nil
	}

	observers := o.observers
	o.observers = nil

	close(o.done)
	o.mu.Unlock()

	for _, cb := range observers {
		o.notify(cb)
	}
}

func (o *Future) notify(cb Callback) {
	if o.err != nil {
		cb(o.err, nil)
	} else {
		cb(nil, o.resp)
	}
}
