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

package server

import (
	"net/http"
	"sync"

	"github.com/nwire/queued/internal/protocol"
)

// router is a mutable path table implementing connection.Router. The
// stdlib http.ServeMux has no Unregister, so routes are dispatched by
// hand from a guarded map — the same register/unregister contract
// spec.md §6 asks of the HTTP router collaborator.
type router struct {
	mu       sync.RWMutex
	handlers map[string]http.Handler
}

func newRouter() *router {
	return &router{handlers: make(map[string]http.Handler)}
}

func (rt *router) Register(path string, handler http.Handler) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.handlers[path] = handler
}

func (rt *router) Unregister(path string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	delete(rt.handlers, path)
}

func (rt *router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mu.RLock()
	handler, ok := rt.handlers[r.URL.Path]
	rt.mu.RUnlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write(protocol.Marshal(protocol.Fail("not found")))
		return
	}
	handler.ServeHTTP(w, r)
}
