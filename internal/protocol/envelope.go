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

// Package protocol implements the uniform response envelope and the item
// wire encoding shared by the HTTP and WebSocket surfaces.
package protocol

import (
	"encoding/json"

	"github.com/nwire/queued/internal/queue"
)

// fallbackLiteral is emitted verbatim when envelope construction itself
// fails (e.g. json.Marshal running out of memory). It must never depend
// on anything that can itself fail.
const fallbackLiteral = `{"success": false, "message": "cannot describe error"}`

// Envelope is the uniform response body: {success, message, payload}.
// Message is null on success; Payload is present (possibly null) on
// success and entirely absent on failure — encoding/json's omitempty
// can't express "present but sometimes null", so Envelope marshals itself
// by hand in MarshalJSON below.
type Envelope struct {
	Success bool
	Message *string
	Payload any
}

// Success builds a success envelope carrying payload (which may itself be
// nil).
func Success(payload any) Envelope {
	return Envelope{Success: true, Payload: payload}
}

// Fail builds a failure envelope with a short human-readable message.
func Fail(message string) Envelope {
	return Envelope{Success: false, Message: &message}
}

// MarshalJSON implements json.Marshaler so payload can be "present with
// a null value" on success and "absent" on failure, which a struct tag
// alone cannot express.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Success {
		return json.Marshal(struct {
			Success bool    `json:"success"`
			Message *string `json:"message"`
			Payload any     `json:"payload"`
		}{true, nil, e.Payload})
	}
	return json.Marshal(struct {
		Success bool    `json:"success"`
		Message *string `json:"message"`
	}{false, e.Message})
}

// Marshal encodes e as JSON, falling back to the fixed "cannot describe
// error" literal if encoding fails.
func Marshal(e Envelope) []byte {
	b, err := json.Marshal(e)
	if err != nil {
		return []byte(fallbackLiteral)
	}
	return b
}

// EncodedItem is the wire form of a queue.Item: {"key": string|null,
// "value": string}.
type EncodedItem struct {
	Key   *string `json:"key"`
	Value string  `json:"value"`
}

// EncodeItem converts an engine item to its wire form. A nil item yields
// a nil *EncodedItem, which marshals as a JSON null payload.
func EncodeItem(it *queue.Item) *EncodedItem {
	if it == nil {
		return nil
	}
	return &EncodedItem{Key: it.Key, Value: it.Value}
}

// Delivery is the WebSocket delivery payload: {"id": identifier, "item":
// <encoded item>}.
type Delivery struct {
	ID   string       `json:"id"`
	Item *EncodedItem `json:"item"`
}
