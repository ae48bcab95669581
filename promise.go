// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Promise is the single-assignment outcome of one call. It can be waited on
// (Wait, WaitContext), selected on (Done), or observed via Then; all three
// share the same settlement.
type Promise struct {
	mu        sync.Mutex
	done      chan struct{}
	settled   bool
	draining  bool
	value     json.RawMessage
	err       error
	callbacks []func()
}

func newPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

// Resolved returns a promise already fulfilled with the JSON encoding of v.
func Resolved(v any) *Promise {
	p := newPromise()
	raw, err := json.Marshal(v)
	if err != nil {
		p.reject(fmt.Errorf("encode value: %w", err))
		return p
	}
	p.fulfill(raw)
	return p
}

// Rejected returns a promise already rejected with err.
func Rejected(err error) *Promise {
	p := newPromise()
	p.reject(err)
	return p
}

func (p *Promise) fulfill(v json.RawMessage) bool {
	return p.settle(v, nil)
}

func (p *Promise) reject(err error) bool {
	return p.settle(nil, err)
}

// settle records the outcome once; later attempts are ignored and report false.
func (p *Promise) settle(v json.RawMessage, err error) bool {
	p.mu.Lock()
	if p.settled {
		p.mu.Unlock()
		return false
	}
	p.settled = true
	p.value = v
	p.err = err
	p.draining = true
	close(p.done)
	p.mu.Unlock()

	p.drain()
	return true
}

// drain runs queued callbacks one at a time until the queue is empty.
// Only the goroutine that set draining calls it.
func (p *Promise) drain() {
	for {
		p.mu.Lock()
		if len(p.callbacks) == 0 {
			p.draining = false
			p.mu.Unlock()
			return
		}
		cb := p.callbacks[0]
		p.callbacks = p.callbacks[1:]
		p.mu.Unlock()

		cb()
	}
}

// Done is closed once the promise settles.
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// Peek returns the outcome without blocking. ok is false while pending.
func (p *Promise) Peek() (value json.RawMessage, ok bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, p.settled, p.err
}

// Wait blocks until the promise settles or timeout elapses. A timeout <= 0
// waits indefinitely. Expiry of the wait does not settle the promise.
func (p *Promise) Wait(timeout time.Duration) (json.RawMessage, error) {
	if timeout <= 0 {
		<-p.done
		return p.value, p.err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-p.done:
		return p.value, p.err
	case <-timer.C:
		return nil, newError(CodeTimeout, fmt.Sprintf("wait timed out after %s", timeout), nil)
	}
}

// WaitContext blocks until the promise settles or ctx ends.
func (p *Promise) WaitContext(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		return nil, newError(CodeCanceled, "wait aborted", ctx.Err())
	}
}

// Decode waits for the result and unmarshals it into v.
func (p *Promise) Decode(ctx context.Context, v any) error {
	raw, err := p.WaitContext(ctx)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

// Then registers continuations and returns a promise settled with the same
// outcome after they ran. Either callback may be nil. Continuations run in
// registration order, exactly once, on the goroutine that settles the
// promise. Registered after settlement, they run immediately unless earlier
// continuations are still running, in which case they queue behind them.
// Continuations of network calls run on the connection's reader and must
// not block.
func (p *Promise) Then(onFulfilled func(json.RawMessage), onRejected func(error)) *Promise {
	next := newPromise()
	p.onSettle(func() {
		if p.err != nil {
			if onRejected != nil {
				onRejected(p.err)
			}
			next.reject(p.err)
			return
		}
		if onFulfilled != nil {
			onFulfilled(p.value)
		}
		next.fulfill(p.value)
	})
	return next
}

// onSettle queues cb. Callbacks never overlap and run in the order they
// were queued, whether queued before or after settlement.
func (p *Promise) onSettle(cb func()) {
	p.mu.Lock()
	p.callbacks = append(p.callbacks, cb)
	if !p.settled || p.draining {
		p.mu.Unlock()
		return
	}
	p.draining = true
	p.mu.Unlock()

	p.drain()
}

// Await waits for p and decodes its result as T.
func Await[T any](ctx context.Context, p *Promise) (T, error) {
	var v T
	err := p.Decode(ctx, &v)
	return v, err
}

// All fulfils with a JSON array of every result in argument order, or
// rejects with the first rejection observed.
func All(ps ...*Promise) *Promise {
	out := newPromise()
	if len(ps) == 0 {
		out.fulfill(json.RawMessage("[]"))
		return out
	}

	var (
		mu        sync.Mutex
		results   = make([]json.RawMessage, len(ps))
		remaining = len(ps)
	)
	for i, p := range ps {
		p.onSettle(func() {
			if p.err != nil {
				out.reject(p.err)
				return
			}
			mu.Lock()
			results[i] = p.value
			remaining--
			last := remaining == 0
			mu.Unlock()
			if last {
				raw, err := json.Marshal(results)
				if err != nil {
					out.reject(err)
					return
				}
				out.fulfill(raw)
			}
		})
	}
	return out
}
