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
	"fmt"
	"net/http"

	"github.com/nwire/queued/internal/protocol"
)

// requireAuth wraps next so that, when verifier is non-nil, the
// Authorization header is checked before next ever runs. A missing header
// gets a 401 with a WWW-Authenticate challenge; a present-but-rejected
// header gets a 403; an accepted header dispatches to next.
func requireAuth(verifier Verifier, realm string, next http.Handler) http.Handler {
	if verifier == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Basic realm=%q`, realm))
			writeEnvelope(w, http.StatusUnauthorized, protocol.Fail("authentication required"))
			return
		}
		if !verifier.Verify(header) {
			writeEnvelope(w, http.StatusForbidden, protocol.Fail("authentication rejected"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authGateFor adapts the HTTP auth wrapper's logic to the WebSocket
// Upgrader's authGate signature, which must write the rejection response
// itself (there is no "next" handler to fall through to).
func authGateFor(verifier Verifier, realm string) func(http.ResponseWriter, *http.Request) bool {
	if verifier == nil {
		return nil
	}
	return func(w http.ResponseWriter, r *http.Request) bool {
		header := r.Header.Get("Authorization")
		if header == "" {
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Basic realm=%q`, realm))
			writeEnvelope(w, http.StatusUnauthorized, protocol.Fail("authentication required"))
			return false
		}
		if !verifier.Verify(header) {
			writeEnvelope(w, http.StatusForbidden, protocol.Fail("authentication rejected"))
			return false
		}
		return true
	}
}

func writeEnvelope(w http.ResponseWriter, status int, e protocol.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(protocol.Marshal(e))
}
