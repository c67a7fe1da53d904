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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nwire/queued/internal/registry"
)

type fakeConn struct {
	sent [][]byte
}

func (f *fakeConn) Send(message []byte) error {
	f.sent = append(f.sent, message)
	return nil
}

func (f *fakeConn) lastEnvelope(t *testing.T) map[string]any {
	t.Helper()
	require.NotEmpty(t, f.sent)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(f.sent[len(f.sent)-1], &decoded))
	return decoded
}

func TestHandleSubscribeDeliversBufferedItem(t *testing.T) {
	reg := registry.New(nil, nil)
	q, err := reg.QueueGet(nil, true)
	require.NoError(t, err)
	reg.Put(q, nil, "payload")

	conn := &fakeConn{}
	msg, err := json.Marshal(subscribeMessage{Identifier: "sub-1", Queue: q.ID().String()})
	require.NoError(t, err)

	handleSubscribe(conn, msg, reg, nil)

	envelope := conn.lastEnvelope(t)
	assert.Equal(t, true, envelope["success"])
	payload := envelope["payload"].(map[string]any)
	assert.Equal(t, "sub-1", payload["id"])
}

func TestHandleSubscribeRegistersWaiterWhenEmpty(t *testing.T) {
	reg := registry.New(nil, nil)
	q, err := reg.QueueGet(nil, true)
	require.NoError(t, err)

	conn := &fakeConn{}
	msg, err := json.Marshal(subscribeMessage{Identifier: "sub-1", Queue: q.ID().String()})
	require.NoError(t, err)

	handleSubscribe(conn, msg, reg, nil)
	assert.Empty(t, conn.sent)
	assert.Equal(t, 1, q.WaiterCount())

	reg.Put(q, nil, "later")
	envelope := conn.lastEnvelope(t)
	payload := envelope["payload"].(map[string]any)
	item := payload["item"].(map[string]any)
	assert.Equal(t, "later", item["value"])
}

func TestHandleSubscribeRejectsMalformedJSON(t *testing.T) {
	reg := registry.New(nil, nil)
	conn := &fakeConn{}

	handleSubscribe(conn, []byte("not json"), reg, nil)

	envelope := conn.lastEnvelope(t)
	assert.Equal(t, false, envelope["success"])
}

func TestHandleSubscribeRejectsMissingIdentifier(t *testing.T) {
	reg := registry.New(nil, nil)
	q, err := reg.QueueGet(nil, true)
	require.NoError(t, err)

	conn := &fakeConn{}
	msg, err := json.Marshal(subscribeMessage{Queue: q.ID().String()})
	require.NoError(t, err)

	handleSubscribe(conn, msg, reg, nil)
	envelope := conn.lastEnvelope(t)
	assert.Equal(t, false, envelope["success"])
}

func TestHandleSubscribeRejectsUnknownQueue(t *testing.T) {
	reg := registry.New(nil, nil)
	conn := &fakeConn{}
	msg, err := json.Marshal(subscribeMessage{Identifier: "sub-1", Queue: "00000000-0000-4000-8000-000000000000"})
	require.NoError(t, err)

	handleSubscribe(conn, msg, reg, nil)
	envelope := conn.lastEnvelope(t)
	assert.Equal(t, false, envelope["success"])
}
