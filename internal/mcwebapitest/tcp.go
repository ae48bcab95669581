// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapitest

import (
	"encoding/binary"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"testing"
)

const maxFrameSize = 64 * 1024 * 1024

// NewTCP starts a server speaking [4-byte big-endian length][payload]
// frames on a loopback port.
func NewTCP(t testing.TB, opts ...Option) *Server {
	t.Helper()
	s := newServer(t, opts)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ts := &tcpServer{listener: listener, serve: s.serve}
	go ts.acceptLoop()

	s.addr = listener.Addr().String()
	s.close = func() {
		ts.Close()
		s.dropAll()
	}
	t.Cleanup(s.Close)
	return s
}

type tcpServer struct {
	listener net.Listener
	serve    func(frameConn)
	conns    sync.Map
	closed   atomic.Bool
}

func (s *tcpServer) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return
			}
			continue
		}
		go s.handleConn(conn)
	}
}

func (s *tcpServer) handleConn(conn net.Conn) {
	s.conns.Store(conn, struct{}{})
	defer s.conns.Delete(conn)
	s.serve(&tcpFrames{conn: conn})
}

func (s *tcpServer) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.conns.Range(func(key, _ any) bool {
		key.(net.Conn).Close()
		return true
	})
	return s.listener.Close()
}

type tcpFrames struct {
	conn   net.Conn
	header [4]byte
}

func (f *tcpFrames) read() ([]byte, error) {
	if _, err := io.ReadFull(f.conn, f.header[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(f.header[:])
	if n == 0 || n > maxFrameSize {
		return nil, errFrameLength
	}
	msg := make([]byte, n)
	if _, err := io.ReadFull(f.conn, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (f *tcpFrames) write(frame []byte) error {
	buf := make([]byte, 4+len(frame))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(frame)))
	copy(buf[4:], frame)
	_, err := f.conn.Write(buf)
	return err
}

func (f *tcpFrames) close() error {
	return f.conn.Close()
}
