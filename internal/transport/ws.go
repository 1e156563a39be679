// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package transport

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket bridges to a winch through a network BLE gateway. The gateway
// exposes one endpoint per device address; each binary message carries one
// frame in either direction.
type WebSocket struct {
	url           string
	username      string
	password      string
	skipSSLVerify bool

	mu     sync.Mutex
	conn   *websocket.Conn
	notify func([]byte)
	done   chan struct{}
}

// WSOptions configures the gateway connection.
type WSOptions struct {
	Username      string
	Password      string
	SkipSSLVerify bool
}

// NewWebSocket creates a gateway transport for the given device address.
// baseURL is the gateway root (ws:// or wss://); the device endpoint is
// baseURL/device/<address>.
func NewWebSocket(baseURL, address string, opts WSOptions) (*WebSocket, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}
	switch u.Scheme {
	case "ws", "wss":
		// OK
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	endpoint := strings.TrimRight(baseURL, "/") + "/device/" + url.PathEscape(address)
	return &WebSocket{
		url:           endpoint,
		username:      opts.Username,
		password:      opts.Password,
		skipSSLVerify: opts.SkipSSLVerify,
	}, nil
}

// Connect dials the gateway and starts the notification reader.
func (w *WebSocket) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	if strings.HasPrefix(w.url, "wss") {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: w.skipSSLVerify,
		}
	}

	headers := http.Header{}
	if w.username != "" && w.password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(w.username + ":" + w.password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	conn, resp, err := dialer.DialContext(ctx, w.url, headers)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("WebSocket connection failed (HTTP %d): %v", resp.StatusCode, err)
		}
		return fmt.Errorf("WebSocket connection failed: %v", err)
	}

	w.mu.Lock()
	w.conn = conn
	w.done = make(chan struct{})
	notify := w.notify
	done := w.done
	w.mu.Unlock()

	go w.readLoop(conn, notify, done)
	return nil
}

// Write sends one frame as a binary message.
func (w *WebSocket) Write(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return ErrClosed
	}
	if err := w.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("websocket write: %v", err)
	}
	return nil
}

// OnNotification registers the response frame callback. Must be called
// before Connect.
func (w *WebSocket) OnNotification(fn func(data []byte)) {
	w.mu.Lock()
	w.notify = fn
	w.mu.Unlock()
}

// Disconnect closes the gateway connection.
func (w *WebSocket) Disconnect() error {
	w.mu.Lock()
	conn := w.conn
	done := w.done
	w.conn = nil
	w.done = nil
	w.mu.Unlock()

	if done != nil {
		close(done)
	}
	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (w *WebSocket) readLoop(conn *websocket.Conn, notify func([]byte), done chan struct{}) {
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		select {
		case <-done:
			return
		default:
		}

		// Only binary messages carry protocol frames
		if messageType != websocket.BinaryMessage {
			continue
		}
		if notify != nil {
			notify(data)
		}
	}
}
