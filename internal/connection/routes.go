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
	"go.uber.org/zap"

	"github.com/nwire/queued/internal/registry"
)

// RegisterRoutes wires the full HTTP + WebSocket surface described in
// spec.md §4.2 onto router/upgrader, sharing reg across every handler.
// When verifier is non-nil, every HTTP handler and the WebSocket upgrade
// path are gated by it first.
func RegisterRoutes(router Router, upgrader Upgrader, reg *registry.Registry, verifier Verifier, realm string, log *zap.SugaredLogger) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	router.Register("/queues", requireAuth(verifier, realm, queuesHandler(reg)))
	router.Register("/queue", requireAuth(verifier, realm, queueHandler(reg)))
	router.Register("/take", requireAuth(verifier, realm, takeHandler(reg)))
	router.Register("/peek", requireAuth(verifier, realm, peekHandler(reg)))
	router.Register("/put", requireAuth(verifier, realm, putHandler(reg)))

	upgrader.Bind("/take/ws",
		func(conn Conn, msg []byte) {
			handleSubscribe(conn, msg, reg, log)
		},
		func(conn Conn) {
			reg.CancelAllForConnection(conn)
		},
		authGateFor(verifier, realm),
	)
}

// Unregister tears every route registered by RegisterRoutes back down.
func Unregister(router Router, upgrader Upgrader) {
	router.Unregister("/queues")
	router.Unregister("/queue")
	router.Unregister("/take")
	router.Unregister("/peek")
	router.Unregister("/put")
	upgrader.Unbind("/take/ws")
}
