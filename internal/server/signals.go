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
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// ShutdownContext returns a context cancelled on the first SIGINT/SIGTERM.
// A second signal during shutdown exits the process immediately, the same
// impatience valve the teacher's signal handling offers operators.
func ShutdownContext(log *zap.SugaredLogger) context.Context {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infow("received signal, beginning shutdown", "signal", sig.String())
		cancel()
		sig = <-sigCh
		log.Fatalw("received signal during shutdown, exiting immediately", "signal", sig.String())
	}()
	return ctx
}
