// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import (
	"fmt"
	"sync"
	"time"
)

// pendingRequest is one in-flight call owned by the correlator.
type pendingRequest struct {
	req     Request
	promise *Promise
	created time.Time
	timer   *time.Timer
	stop    func() bool // detaches caller-context cancellation
}

// correlator matches inbound responses to in-flight requests by id.
// All mutations go through register, resolve, expire, cancel and detachAll;
// whichever of them removes an entry first is the only one to settle it.
type correlator struct {
	mu         sync.Mutex
	pending    map[uint64]*pendingRequest
	maxPending int
	onSettle   func(p *pendingRequest, err error)
}

func newCorrelator(maxPending int) *correlator {
	return &correlator{
		pending:    make(map[uint64]*pendingRequest),
		maxPending: maxPending,
	}
}

// register records req and arms its expiry timer when timeout > 0.
func (c *correlator) register(req Request, promise *Promise, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.pending[req.ID]; exists {
		return fmt.Errorf("request id %d already pending", req.ID)
	}
	if c.maxPending > 0 && len(c.pending) >= c.maxPending {
		return newError(CodeTooManyPending, fmt.Sprintf("%d requests in flight", len(c.pending)), nil)
	}

	p := &pendingRequest{
		req:     req,
		promise: promise,
		created: time.Now(),
	}
	if timeout > 0 {
		id := req.ID
		p.timer = time.AfterFunc(timeout, func() { c.expire(id) })
	}
	c.pending[req.ID] = p
	return nil
}

// take removes and returns the entry for id, stopping its timer.
func (c *correlator) take(id uint64) (*pendingRequest, bool) {
	c.mu.Lock()
	p, ok := c.pending[id]
	if !ok {
		c.mu.Unlock()
		return nil, false
	}
	delete(c.pending, id)
	timer, stop := p.timer, p.stop
	c.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if stop != nil {
		stop()
	}
	return p, true
}

// attachCancel records the function that detaches caller-context
// cancellation from id. If id already settled, stop runs immediately.
func (c *correlator) attachCancel(id uint64, stop func() bool) {
	c.mu.Lock()
	p, ok := c.pending[id]
	if ok {
		p.stop = stop
	}
	c.mu.Unlock()

	if !ok {
		stop()
	}
}

// resolve settles the request matching resp.ID. It reports false when no
// request is pending under that id.
func (c *correlator) resolve(resp *Response) bool {
	p, ok := c.take(resp.ID)
	if !ok {
		return false
	}
	if resp.Failed() {
		c.settle(p, nil, remoteError(resp.Error))
	} else {
		c.settle(p, resp.Result, nil)
	}
	return true
}

// expire rejects id with a timeout error.
func (c *correlator) expire(id uint64) bool {
	p, ok := c.take(id)
	if !ok {
		return false
	}
	elapsed := time.Since(p.created).Round(time.Millisecond)
	c.settle(p, nil, newError(CodeTimeout,
		fmt.Sprintf("%s.%s (id %d) got no response after %s", p.req.Module, p.req.Method, id, elapsed), nil))
	return true
}

// cancel rejects id with cause.
func (c *correlator) cancel(id uint64, cause error) bool {
	p, ok := c.take(id)
	if !ok {
		return false
	}
	c.settle(p, nil, cause)
	return true
}

// rejectAll empties the table, rejecting every entry with err. It returns
// the number of requests rejected.
func (c *correlator) rejectAll(err error) int {
	entries := c.detachAll()
	c.rejectEntries(entries, err)
	return len(entries)
}

// detachAll empties the table without settling anything. Timers and
// cancellation hooks of the returned entries are stopped.
func (c *correlator) detachAll() []*pendingRequest {
	c.mu.Lock()
	entries := make([]*pendingRequest, 0, len(c.pending))
	for id, p := range c.pending {
		entries = append(entries, p)
		delete(c.pending, id)
	}
	c.mu.Unlock()

	for _, p := range entries {
		if p.timer != nil {
			p.timer.Stop()
		}
		if p.stop != nil {
			p.stop()
		}
	}
	return entries
}

// rejectEntries settles entries returned by detachAll with err.
func (c *correlator) rejectEntries(entries []*pendingRequest, err error) {
	for _, p := range entries {
		c.settle(p, nil, err)
	}
}

// has reports whether id is still pending.
func (c *correlator) has(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[id]
	return ok
}

func (c *correlator) settle(p *pendingRequest, v []byte, err error) {
	if err != nil {
		p.promise.reject(err)
	} else {
		p.promise.fulfill(v)
	}
	if c.onSettle != nil {
		c.onSettle(p, err)
	}
}

func (c *correlator) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
