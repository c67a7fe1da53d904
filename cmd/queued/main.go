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

package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/nwire/queued/internal/auth"
	"github.com/nwire/queued/internal/config"
	"github.com/nwire/queued/internal/metrics"
	"github.com/nwire/queued/internal/registry"
	"github.com/nwire/queued/internal/server"
)

var (
	configPath = flag.String("c", "", "path to the JSON configuration file")
	verbose    = flag.Bool("v", false, "enable debug logging")
)

func main() {
	flag.Parse()

	log := newLogger(*verbose)
	defer log.Sync() //nolint:errcheck

	if *configPath == "" {
		log.Error("missing required -c <config file> flag")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*configPath, log); err != nil {
		log.Errorw("fatal error", "error", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		// Fall back to a no-op logger rather than crash on a pure logging
		// configuration failure.
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

func run(path string, log *zap.SugaredLogger) error {
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	verifiers, err := buildVerifiers(cfg)
	if err != nil {
		return fmt.Errorf("build authentication backends: %w", err)
	}

	collector := metrics.NewCollector()
	reg := registry.New(log, collector)

	instances := make([]*server.Instance, 0, len(cfg.Servers))
	for _, srv := range cfg.Servers {
		var verifier auth.Verifier
		if srv.Authentication != "" {
			verifier = verifiers[srv.Authentication]
		}

		inst, err := server.New(srv, reg, verifier, collector, log)
		if err != nil {
			return fmt.Errorf("build server %s:%d: %w", srv.Hostname, srv.Port, err)
		}
		instances = append(instances, inst)
		reg.TrackServer(inst)
	}

	for _, inst := range instances {
		if err := inst.Start(log); err != nil {
			return fmt.Errorf("start server: %w", err)
		}
	}

	ctx := server.ShutdownContext(log)
	<-ctx.Done()

	log.Info("shutting down")
	reg.Shutdown()
	return nil
}

// buildVerifiers constructs one auth.Verifier per named backend in the
// configuration document.
func buildVerifiers(cfg *config.Config) (map[string]auth.Verifier, error) {
	verifiers := make(map[string]auth.Verifier, len(cfg.Authentication))
	for name, a := range cfg.Authentication {
		switch a.Type {
		case "plaintext":
			verifiers[name] = auth.NewPlaintextVerifier(a.File)
		case "bearer":
			verifiers[name] = auth.NewBearerVerifier(a.Secret)
		default:
			return nil, fmt.Errorf("authentication %q: unknown type %q", name, a.Type)
		}
	}
	return verifiers, nil
}
