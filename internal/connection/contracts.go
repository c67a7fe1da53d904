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

// Package connection is the connection adapter: it maps HTTP method+path
// and WebSocket messages onto registry/engine operations, enforces
// authentication, and translates engine results into HTTP status codes
// and envelope contents. It depends only on the collaborator contracts
// declared here — never on a concrete transport — so the transport
// (internal/server, internal/wsconn) can be swapped without touching
// this package.
package connection

import "net/http"

// Router registers and unregisters path handlers. Unlike http.ServeMux,
// it supports Unregister, which the package-level Unregister uses to tear
// routes back down.
type Router interface {
	Register(path string, handler http.Handler)
	Unregister(path string)
}

// Conn is a single WebSocket connection's send side.
type Conn interface {
	Send(message []byte) error
}

// Upgrader binds a path to WebSocket handling. authGate, if non-nil, is
// consulted before the upgrade completes; returning false rejects the
// upgrade (the adapter has already written the 401/403 response by the
// time authGate returns false).
type Upgrader interface {
	Bind(path string, onMessage func(Conn, []byte), onClose func(Conn), authGate func(http.ResponseWriter, *http.Request) bool)
	Unbind(path string)
}

// Verifier verifies an Authorization header's credentials.
type Verifier interface {
	Verify(header string) bool
}
