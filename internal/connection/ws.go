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

package connection

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/nwire/queued/internal/protocol"
	"github.com/nwire/queued/internal/queue"
	"github.com/nwire/queued/internal/registry"
)

// subscribeMessage is the client->server WebSocket wait request.
type subscribeMessage struct {
	Identifier string `json:"identifier"`
	Queue      string `json:"queue"`
	Key        string `json:"key"`
}

func handleSubscribe(conn Conn, msg []byte, reg *registry.Registry, log *zap.SugaredLogger) {
	var req subscribeMessage
	if err := json.Unmarshal(msg, &req); err != nil {
		sendEnvelope(conn, protocol.Fail("malformed request"), log)
		return
	}
	if req.Identifier == "" || len(req.Queue) != 36 {
		sendEnvelope(conn, protocol.Fail("identifier and queue are required"), log)
		return
	}

	q, err := reg.QueueGet(&req.Queue, false)
	if err != nil {
		sendEnvelope(conn, protocol.Fail("queue not found"), log)
		return
	}

	var key *string
	if req.Key != "" {
		key = &req.Key
	}

	reg.Wait(q, req.Identifier, key, conn, func(item *queue.Item) {
		deliver(conn, req.Identifier, item, log)
	})
}

// deliver is the waiter delivery callback. It holds no cancellation check
// of its own: internal/queue never invokes Deliver on a cancelled waiter,
// and cancellation and delivery are serialized by the registry lock. An
// encode failure yields the fixed "cannot describe error" envelope (see
// protocol.Marshal); a send failure is logged and reported back as an
// error envelope.
func deliver(conn Conn, identifier string, item *queue.Item, log *zap.SugaredLogger) {
	payload := protocol.Delivery{ID: identifier, Item: protocol.EncodeItem(item)}
	if err := conn.Send(protocol.Marshal(protocol.Success(payload))); err != nil {
		log.Debugw("websocket delivery failed", "error", err)
		sendEnvelope(conn, protocol.Fail("delivery failed"), log)
	}
}

func sendEnvelope(conn Conn, e protocol.Envelope, log *zap.SugaredLogger) {
	if err := conn.Send(protocol.Marshal(e)); err != nil {
		log.Debugw("websocket send failed", "error", err)
	}
}
