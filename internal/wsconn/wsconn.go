/*
Copyright 2024 The Queued Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package wsconn implements the connection.Upgrader and connection.Conn
// collaborator contracts on top of gorilla/websocket.
package wsconn

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nwire/queued/internal/connection"
)

// Upgrader binds paths on a connection.Router to WebSocket handling using
// gorilla/websocket. It implements connection.Upgrader.
type Upgrader struct {
	log *zap.SugaredLogger

	upgrade websocket.Upgrader
	router  connection.Router
}

// New constructs an Upgrader that binds paths onto router.
func New(router connection.Router, log *zap.SugaredLogger) *Upgrader {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Upgrader{
		log:    log,
		router: router,
		upgrade: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Bind registers path on the underlying router, upgrading every request
// to a WebSocket connection (after authGate, if any, approves it) and
// running one read loop per connection that invokes onMessage for each
// text frame and onClose once the connection ends.
func (u *Upgrader) Bind(path string, onMessage func(connection.Conn, []byte), onClose func(connection.Conn), authGate func(http.ResponseWriter, *http.Request) bool) {
	u.router.Register(path, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authGate != nil && !authGate(w, r) {
			return
		}

		wsConn, err := u.upgrade.Upgrade(w, r, nil)
		if err != nil {
			u.log.Debugw("websocket upgrade failed", "error", err)
			return
		}

		c := &Conn{conn: wsConn}
		go c.readLoop(onMessage, onClose, u.log)
	}))
}

// Unbind removes path from the router.
func (u *Upgrader) Unbind(path string) {
	u.router.Unregister(path)
}

// Conn is one upgraded WebSocket connection. It implements
// connection.Conn.
type Conn struct {
	conn *websocket.Conn

	writeMu sync.Mutex
}

// Send writes message as a single text frame.
func (c *Conn) Send(message []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

func (c *Conn) readLoop(onMessage func(connection.Conn, []byte), onClose func(connection.Conn), log *zap.SugaredLogger) {
	defer func() {
		_ = c.conn.Close()
		if onClose != nil {
			onClose(c)
		}
	}()

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debugw("websocket read error", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if onMessage != nil {
			onMessage(c, data)
		}
	}
}
