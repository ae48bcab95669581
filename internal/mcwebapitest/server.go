// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package mcwebapitest provides an in-process fake game server speaking the
// mcwebapi wire protocol over WebSocket or length-prefixed TCP.
//
// Calls with a registered handler are answered by it; any other call gets
// the server's usual {"id":N,"error":"Unknown method: <method>"} reply.
// Handlers registered with HandleRaw receive the Session and decide when,
// whether and in what order to answer.
package mcwebapitest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultAuthKey is the key the server accepts unless WithAuthKey is used.
const DefaultAuthKey = "test-key"

// Request is a call as the server received it.
type Request struct {
	ID     uint64            `json:"id"`
	Module string            `json:"module"`
	Method string            `json:"method"`
	Args   []json.RawMessage `json:"args"`
}

// Key returns "module.method".
func (r Request) Key() string {
	return r.Module + "." + r.Method
}

// Arg decodes argument i into v.
func (r Request) Arg(i int, v any) error {
	if i >= len(r.Args) {
		return fmt.Errorf("argument %d missing (%d given)", i, len(r.Args))
	}
	return json.Unmarshal(r.Args[i], v)
}

// HandlerFunc answers a call immediately. A non-nil error is sent as the
// string error member.
type HandlerFunc func(req Request) (any, error)

// RawHandlerFunc takes full control of the reply.
type RawHandlerFunc func(s *Session, req Request)

// Option configures a Server.
type Option func(*Server)

// WithAuthKey sets the key the server accepts.
func WithAuthKey(key string) Option {
	return func(s *Server) { s.authKey = key }
}

// WithAuthRejection makes every handshake fail with message.
func WithAuthRejection(message string) Option {
	return func(s *Server) {
		s.rejectAuth = true
		s.rejectMessage = message
	}
}

// WithAuthDelay delays every handshake reply.
func WithAuthDelay(d time.Duration) Option {
	return func(s *Server) { s.authDelay = d }
}

// Server is a fake game server. Create it with NewWebSocket or NewTCP; it is
// closed automatically when the test ends.
type Server struct {
	t             testing.TB
	authKey       string
	rejectAuth    bool
	rejectMessage string
	authDelay     time.Duration

	mu       sync.Mutex
	handlers map[string]RawHandlerFunc
	requests []Request
	sessions []*Session
	received chan Request

	addr  string
	close func()
}

func newServer(t testing.TB, opts []Option) *Server {
	s := &Server{
		t:        t,
		authKey:  DefaultAuthKey,
		handlers: make(map[string]RawHandlerFunc),
		received: make(chan Request, 1024),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewWebSocket starts a server accepting WebSocket upgrades on any path.
func NewWebSocket(t testing.TB, opts ...Option) *Server {
	t.Helper()
	s := newServer(t, opts)

	upgrader := websocket.Upgrader{}
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.serve(&wsFrames{conn: conn})
	}))
	u, err := url.Parse(hs.URL)
	if err != nil {
		hs.Close()
		t.Fatalf("parse server url: %v", err)
	}
	s.addr = u.Host
	s.close = func() {
		s.dropAll()
		hs.Close()
	}
	t.Cleanup(s.Close)
	return s
}

// Handle answers module.method with fn.
func (s *Server) Handle(key string, fn HandlerFunc) {
	s.HandleRaw(key, func(sess *Session, req Request) {
		result, err := fn(req)
		if err != nil {
			sess.Fail(req.ID, err.Error())
			return
		}
		sess.Reply(req.ID, result)
	})
}

// HandleRaw routes module.method to fn.
func (s *Server) HandleRaw(key string, fn RawHandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[key] = fn
}

// Host returns the host the server listens on.
func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.addr)
	return host
}

// Port returns the port the server listens on.
func (s *Server) Port() int {
	_, port, _ := net.SplitHostPort(s.addr)
	n, _ := strconv.Atoi(port)
	return n
}

// Requests returns every call received so far, in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Sessions returns every session that completed the handshake.
func (s *Server) Sessions() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Session(nil), s.sessions...)
}

// Next returns the next received call, failing the test after timeout.
func (s *Server) Next(timeout time.Duration) Request {
	s.t.Helper()
	select {
	case req := <-s.received:
		return req
	case <-time.After(timeout):
		s.t.Fatalf("no request received within %s", timeout)
		return Request{}
	}
}

// Close drops every session and stops listening.
func (s *Server) Close() {
	if s.close != nil {
		s.close()
	}
}

func (s *Server) dropAll() {
	for _, sess := range s.Sessions() {
		sess.Drop()
	}
}

// serve runs one connection: handshake, then a request loop.
func (s *Server) serve(frames frameConn) {
	sess := &Session{frames: frames}
	defer sess.Drop()

	if !s.handshake(sess) {
		return
	}

	s.mu.Lock()
	s.sessions = append(s.sessions, sess)
	s.mu.Unlock()

	for {
		frame, err := frames.read()
		if err != nil {
			return
		}
		var req Request
		if err := json.Unmarshal(frame, &req); err != nil {
			continue
		}

		s.mu.Lock()
		s.requests = append(s.requests, req)
		fn, ok := s.handlers[req.Key()]
		s.mu.Unlock()

		select {
		case s.received <- req:
		default:
		}

		if !ok {
			sess.Fail(req.ID, "Unknown method: "+req.Method)
			continue
		}
		fn(sess, req)
	}
}

func (s *Server) handshake(sess *Session) bool {
	frame, err := sess.frames.read()
	if err != nil {
		return false
	}
	var auth struct {
		Type string `json:"type"`
		Key  string `json:"key"`
	}
	if err := json.Unmarshal(frame, &auth); err != nil || auth.Type != "auth" {
		return false
	}
	if s.authDelay > 0 {
		time.Sleep(s.authDelay)
	}

	reply := map[string]any{"type": "auth", "success": true, "message": "authenticated"}
	ok := true
	switch {
	case s.rejectAuth:
		reply["success"], reply["message"], ok = false, s.rejectMessage, false
	case auth.Key != s.authKey:
		reply["success"], reply["message"], ok = false, "invalid auth key", false
	}
	if err := sess.write(reply); err != nil {
		return false
	}
	return ok
}

// Session is one authenticated client connection.
type Session struct {
	frames  frameConn
	writeMu sync.Mutex
	dropped sync.Once
}

// Reply sends {"id":id,"result":result}.
func (s *Session) Reply(id uint64, result any) error {
	return s.write(map[string]any{"id": id, "result": result})
}

// Fail sends {"id":id,"error":errValue}.
func (s *Session) Fail(id uint64, errValue any) error {
	return s.write(map[string]any{"id": id, "error": errValue})
}

// WriteRaw sends frame unchanged.
func (s *Session) WriteRaw(frame []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.frames.write(frame)
}

// Drop closes the connection without a reply.
func (s *Session) Drop() {
	s.dropped.Do(func() { s.frames.close() })
}

func (s *Session) write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.WriteRaw(data)
}

// frameConn is one framed connection.
type frameConn interface {
	read() ([]byte, error)
	write(frame []byte) error
	close() error
}

type wsFrames struct {
	conn *websocket.Conn
}

func (w *wsFrames) read() ([]byte, error) {
	_, data, err := w.conn.ReadMessage()
	return data, err
}

func (w *wsFrames) write(frame []byte) error {
	return w.conn.WriteMessage(websocket.TextMessage, frame)
}

func (w *wsFrames) close() error {
	return w.conn.Close()
}

var errFrameLength = errors.New("invalid frame length")
