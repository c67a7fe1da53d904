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

// Package server assembles one listening endpoint per entry in the
// configuration document: an http.Server fronting a router that
// internal/connection populates, with the WebSocket upgrade path wired
// through internal/wsconn and, when configured, a TLS certificate pair
// and a Basic/bearer auth gate in front of every handler.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/nwire/queued/internal/auth"
	"github.com/nwire/queued/internal/config"
	"github.com/nwire/queued/internal/connection"
	"github.com/nwire/queued/internal/metrics"
	"github.com/nwire/queued/internal/registry"
	"github.com/nwire/queued/internal/wsconn"
)

// Instance is one listening endpoint. It implements io.Closer so
// registry.TrackServer can fold it into the process-wide shutdown.
type Instance struct {
	addr string
	http *http.Server
}

// New builds (but does not start) the Instance described by cfg, wiring reg
// and, when cfg.Authentication names a backend, verifier as its auth gate.
func New(cfg config.Server, reg *registry.Registry, verifier auth.Verifier, collector *metrics.Collector, log *zap.SugaredLogger) (*Instance, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	rt := newRouter()
	upgrader := wsconn.New(rt, log)

	connection.RegisterRoutes(rt, upgrader, reg, verifier, "queued", log)
	if collector != nil {
		rt.Register("/metrics", collector.Handler())
	}

	addr := fmt.Sprintf("%s:%d", cfg.Hostname, cfg.Port)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: rt,
	}

	if cfg.Security != nil {
		tlsConfig, err := loadTLSConfig(cfg.Security.Certificate, cfg.Security.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("server %s: %w", addr, err)
		}
		httpServer.TLSConfig = tlsConfig
	}

	return &Instance{addr: addr, http: httpServer}, nil
}

// Start begins serving in a background goroutine, logging (without
// crashing the process) if the listener ever exits with an error other
// than the expected http.ErrServerClosed.
func (s *Instance) Start(log *zap.SugaredLogger) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}

	go func() {
		var serveErr error
		if s.http.TLSConfig != nil {
			serveErr = s.http.ServeTLS(ln, "", "")
		} else {
			serveErr = s.http.Serve(ln)
		}
		if serveErr != nil && serveErr != http.ErrServerClosed {
			log.Errorw("server stopped unexpectedly", "address", s.addr, "error", serveErr)
		}
	}()

	log.Infow("listening", "address", s.addr, "tls", s.http.TLSConfig != nil)
	return nil
}

// Close implements io.Closer by shutting the HTTP server down gracefully.
func (s *Instance) Close() error {
	return s.http.Shutdown(context.Background())
}
