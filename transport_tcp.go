// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
)

// frameConn carries envelopes over a stream socket.
// Encoding: [4 len][payload], length big-endian.
type frameConn struct {
	conn    net.Conn
	writeMu sync.Mutex
	header  [4]byte
	closed  atomic.Bool
}

func dialTCP(ctx context.Context, cfg Config, _ *options) (Transport, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", cfg.Addr())
	if err != nil {
		return nil, fmt.Errorf("tcp dial: %w", err)
	}
	return newFrameConn(conn), nil
}

func newFrameConn(conn net.Conn) *frameConn {
	return &frameConn{conn: conn}
}

func (f *frameConn) Send(ctx context.Context, data []byte) error {
	if f.closed.Load() {
		return ErrTransportClosed
	}
	if len(data) > MessageSizeLimit {
		return fmt.Errorf("frame of %d bytes exceeds limit", len(data))
	}

	buf := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(data)))
	copy(buf[4:], data)

	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	if err := f.conn.SetWriteDeadline(deadline(ctx)); err != nil {
		return err
	}
	_, err := f.conn.Write(buf)
	return err
}

// Recv must only be called from one goroutine at a time.
func (f *frameConn) Recv(ctx context.Context) ([]byte, error) {
	if err := f.conn.SetReadDeadline(deadline(ctx)); err != nil {
		return nil, f.wrapErr(err)
	}
	if _, err := io.ReadFull(f.conn, f.header[:]); err != nil {
		return nil, f.wrapErr(err)
	}

	msgLen := binary.BigEndian.Uint32(f.header[:])
	if msgLen == 0 || msgLen > MessageSizeLimit {
		return nil, fmt.Errorf("invalid frame length %d", msgLen)
	}

	msg := make([]byte, msgLen)
	if _, err := io.ReadFull(f.conn, msg); err != nil {
		return nil, f.wrapErr(err)
	}
	return msg, nil
}

func (f *frameConn) wrapErr(err error) error {
	if f.closed.Load() || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return errors.Join(ErrTransportClosed, err)
	}
	return err
}

func (f *frameConn) Close() error {
	if f.closed.Swap(true) {
		return nil
	}
	return f.conn.Close()
}
