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
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/nwire/queued/internal/protocol"
	"github.com/nwire/queued/internal/queue"
	"github.com/nwire/queued/internal/registry"
)

// formField reads field from the request's form-encoded body, returning
// nil if absent and a pointer to the value otherwise.
func formField(r *http.Request, field string) *string {
	// net/http only parses request bodies for POST, PUT and PATCH; DELETE
	// /queue carries its name in the body too.
	if r.Method == http.MethodDelete && r.PostForm == nil {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil
		}
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil
		}
		r.PostForm = values
	}
	if err := r.ParseForm(); err != nil {
		return nil
	}
	if !r.PostForm.Has(field) {
		return nil
	}
	v := r.PostForm.Get(field)
	return &v
}

func queuesHandler(reg *registry.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ids := make([]string, 0)
			reg.QueueForeach(func(q *queue.Queue) bool {
				ids = append(ids, q.ID().String())
				return true
			})
			writeEnvelope(w, http.StatusOK, protocol.Success(ids))
		case http.MethodPost:
			name := formField(r, "name")
			q, err := reg.QueueGet(name, true)
			if err != nil {
				writeQueueError(w, err)
				return
			}
			writeEnvelope(w, http.StatusOK, protocol.Success(q.ID().String()))
		default:
			writeEnvelope(w, http.StatusMethodNotAllowed, protocol.Fail("method not allowed"))
		}
	})
}

func queueHandler(reg *registry.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			name := formField(r, "name")
			if name == nil {
				writeEnvelope(w, http.StatusBadRequest, protocol.Fail("name is required"))
				return
			}
			q, err := reg.QueueGet(name, false)
			if err != nil {
				writeQueueError(w, err)
				return
			}
			writeEnvelope(w, http.StatusOK, protocol.Success(map[string]string{"name": q.ID().String()}))
		case http.MethodDelete:
			name := formField(r, "name")
			if name == nil {
				writeEnvelope(w, http.StatusBadRequest, protocol.Fail("name is required"))
				return
			}
			q, err := reg.QueueGet(name, false)
			if err != nil {
				writeQueueError(w, err)
				return
			}
			reg.QueueFree(q)
			writeEnvelope(w, http.StatusOK, protocol.Success(nil))
		default:
			writeEnvelope(w, http.StatusMethodNotAllowed, protocol.Fail("method not allowed"))
		}
	})
}

func takeHandler(reg *registry.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeEnvelope(w, http.StatusMethodNotAllowed, protocol.Fail("method not allowed"))
			return
		}
		q, key, ok := resolveQueueAndKey(w, reg, r)
		if !ok {
			return
		}
		item := reg.Take(q, key)
		writeEnvelope(w, http.StatusOK, protocol.Success(protocol.EncodeItem(item)))
	})
}

func peekHandler(reg *registry.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeEnvelope(w, http.StatusMethodNotAllowed, protocol.Fail("method not allowed"))
			return
		}
		q, key, ok := resolveQueueAndKey(w, reg, r)
		if !ok {
			return
		}
		item := reg.Peek(q, key)
		if item != nil {
			defer item.Unlock()
		}
		writeEnvelope(w, http.StatusOK, protocol.Success(protocol.EncodeItem(item)))
	})
}

func putHandler(reg *registry.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeEnvelope(w, http.StatusMethodNotAllowed, protocol.Fail("method not allowed"))
			return
		}
		q, key, ok := resolveQueueAndKey(w, reg, r)
		if !ok {
			return
		}
		value := formField(r, "value")
		if value == nil {
			writeEnvelope(w, http.StatusBadRequest, protocol.Fail("value is required"))
			return
		}
		reg.Put(q, key, *value)
		writeEnvelope(w, http.StatusOK, protocol.Success(nil))
	})
}

// resolveQueueAndKey parses the common name/key pair shared by
// /take, /peek and /put, writing any error response itself.
func resolveQueueAndKey(w http.ResponseWriter, reg *registry.Registry, r *http.Request) (*queue.Queue, *string, bool) {
	name := formField(r, "name")
	if name == nil {
		writeEnvelope(w, http.StatusBadRequest, protocol.Fail("name is required"))
		return nil, nil, false
	}
	q, err := reg.QueueGet(name, false)
	if err != nil {
		writeQueueError(w, err)
		return nil, nil, false
	}
	return q, formField(r, "key"), true
}

func writeQueueError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, queue.ErrMalformed):
		writeEnvelope(w, http.StatusBadRequest, protocol.Fail("malformed queue identifier"))
	case errors.Is(err, registry.ErrNotFound):
		writeEnvelope(w, http.StatusNotFound, protocol.Fail("queue not found"))
	default:
		writeEnvelope(w, http.StatusInternalServerError, protocol.Fail("internal error"))
	}
}
