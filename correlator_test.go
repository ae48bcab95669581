// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testRequest(id uint64) Request {
	return Request{ID: id, Module: "player", Method: "getHealth"}
}

func TestCorrelatorResolve(t *testing.T) {
	c := newCorrelator(0)
	p := newPromise()
	if err := c.register(testRequest(1), p, time.Minute); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := c.register(testRequest(1), newPromise(), time.Minute); err == nil {
		t.Error("duplicate id accepted")
	}

	if !c.resolve(&Response{ID: 1, Result: json.RawMessage(`20.0`)}) {
		t.Fatal("resolve reported no match")
	}
	if c.resolve(&Response{ID: 1, Result: json.RawMessage(`0`)}) {
		t.Error("second resolve matched a settled id")
	}
	if n := c.len(); n != 0 {
		t.Errorf("len = %d, want 0", n)
	}

	v, err := p.Wait(time.Second)
	if err != nil || string(v) != "20.0" {
		t.Errorf("Wait = %s, %v", v, err)
	}
}

func TestCorrelatorRemoteError(t *testing.T) {
	c := newCorrelator(0)
	p := newPromise()
	c.register(testRequest(2), p, 0)
	c.resolve(&Response{ID: 2, Error: json.RawMessage(`"Unknown method: run"`)})

	_, err := p.Wait(time.Second)
	var e *Error
	if !errors.As(err, &e) || e.Code != CodeRemote {
		t.Fatalf("got %v, want remote error", err)
	}
	if e.Message != "Unknown method: run" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestCorrelatorExpire(t *testing.T) {
	c := newCorrelator(0)
	p := newPromise()
	c.register(testRequest(3), p, 20*time.Millisecond)

	_, err := p.Wait(time.Second)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}
	if n := c.len(); n != 0 {
		t.Errorf("len = %d after expiry, want 0", n)
	}
	if c.resolve(&Response{ID: 3, Result: json.RawMessage(`1`)}) {
		t.Error("late response matched an expired id")
	}
}

func TestCorrelatorNoTimeout(t *testing.T) {
	c := newCorrelator(0)
	c.register(testRequest(4), newPromise(), 0)
	c.register(testRequest(5), newPromise(), -time.Second)

	time.Sleep(20 * time.Millisecond)
	if n := c.len(); n != 2 {
		t.Errorf("len = %d, want 2", n)
	}
}

func TestCorrelatorMaxPending(t *testing.T) {
	c := newCorrelator(2)
	c.register(testRequest(1), newPromise(), 0)
	c.register(testRequest(2), newPromise(), 0)

	err := c.register(testRequest(3), newPromise(), 0)
	if !errors.Is(err, ErrTooManyPending) {
		t.Fatalf("got %v, want ErrTooManyPending", err)
	}

	c.cancel(1, ErrCanceled)
	if err := c.register(testRequest(3), newPromise(), 0); err != nil {
		t.Errorf("register after cancel: %v", err)
	}
}

func TestCorrelatorRejectAll(t *testing.T) {
	c := newCorrelator(0)
	var settled atomic.Int32
	c.onSettle = func(*pendingRequest, error) { settled.Add(1) }

	promises := make([]*Promise, 5)
	for i := range promises {
		promises[i] = newPromise()
		c.register(testRequest(uint64(i+1)), promises[i], time.Minute)
	}

	if n := c.rejectAll(errConnectionClose); n != 5 {
		t.Errorf("rejected %d, want 5", n)
	}
	for i, p := range promises {
		if _, err := p.Wait(time.Second); !errors.Is(err, ErrConnection) {
			t.Errorf("promise %d: got %v, want ErrConnection", i, err)
		}
	}
	if got := settled.Load(); got != 5 {
		t.Errorf("onSettle ran %d times, want 5", got)
	}
	if n := c.rejectAll(errConnectionClose); n != 0 {
		t.Errorf("second rejectAll rejected %d", n)
	}
}

func TestCorrelatorAttachCancel(t *testing.T) {
	c := newCorrelator(0)
	c.register(testRequest(1), newPromise(), 0)

	var stopped atomic.Bool
	stop := func() bool { stopped.Store(true); return true }

	c.attachCancel(1, stop)
	if stopped.Load() {
		t.Fatal("stop ran while pending")
	}
	c.resolve(&Response{ID: 1, Result: json.RawMessage(`1`)})
	if !stopped.Load() {
		t.Error("stop not run on settlement")
	}

	stopped.Store(false)
	c.attachCancel(99, stop)
	if !stopped.Load() {
		t.Error("stop not run for an unknown id")
	}
}

// Expiry and a matching response racing for the same entry settle it once.
func TestCorrelatorExpireResolveRace(t *testing.T) {
	for i := range 200 {
		c := newCorrelator(0)
		var settled atomic.Int32
		c.onSettle = func(*pendingRequest, error) { settled.Add(1) }

		id := uint64(i + 1)
		p := newPromise()
		c.register(testRequest(id), p, time.Millisecond)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.resolve(&Response{ID: id, Result: json.RawMessage(`1`)})
		}()
		go func() {
			defer wg.Done()
			c.expire(id)
		}()
		wg.Wait()
		p.Wait(time.Second)

		// The timer may still fire; give it the chance.
		time.Sleep(2 * time.Millisecond)
		if got := settled.Load(); got != 1 {
			t.Fatalf("iteration %d: settled %d times", i, got)
		}
	}
}
