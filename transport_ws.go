// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mcwebapi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const wsCloseGrace = time.Second

// wsTransport carries one envelope per WebSocket text message.
type wsTransport struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	closed  atomic.Bool
}

func dialWebSocket(ctx context.Context, cfg Config, o *options) (Transport, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.Timeout,
	}
	conn, _, err := dialer.DialContext(ctx, cfg.URL(), o.header)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", cfg.URL(), err)
	}
	conn.SetReadLimit(MessageSizeLimit)
	return &wsTransport{conn: conn}, nil
}

func (t *wsTransport) Send(ctx context.Context, data []byte) error {
	if t.closed.Load() {
		return ErrTransportClosed
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := t.conn.SetWriteDeadline(deadline(ctx)); err != nil {
		return err
	}
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *wsTransport) Recv(ctx context.Context) ([]byte, error) {
	if err := t.conn.SetReadDeadline(deadline(ctx)); err != nil {
		return nil, err
	}
	_, data, err := t.conn.ReadMessage()
	if err != nil {
		if t.closed.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, errors.Join(ErrTransportClosed, err)
		}
		return nil, err
	}
	return data, nil
}

func (t *wsTransport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsCloseGrace))
	return t.conn.Close()
}
