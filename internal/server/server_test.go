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
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nwire/queued/internal/config"
	"github.com/nwire/queued/internal/metrics"
	"github.com/nwire/queued/internal/registry"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestInstanceServesQueuesEndpoint(t *testing.T) {
	port := freePort(t)
	collector := metrics.NewCollector()
	reg := registry.New(nil, collector)
	log := zap.NewNop().Sugar()

	inst, err := New(config.Server{Hostname: "127.0.0.1", Port: port}, reg, nil, collector, log)
	require.NoError(t, err)
	require.NoError(t, inst.Start(log))
	defer inst.Close()

	url := fmt.Sprintf("http://127.0.0.1:%d/queues", port)
	var resp *http.Response
	for i := 0; i < 20; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInstanceExposesMetricsEndpoint(t *testing.T) {
	port := freePort(t)
	collector := metrics.NewCollector()
	reg := registry.New(nil, collector)
	log := zap.NewNop().Sugar()

	inst, err := New(config.Server{Hostname: "127.0.0.1", Port: port}, reg, nil, collector, log)
	require.NoError(t, err)
	require.NoError(t, inst.Start(log))
	defer inst.Close()

	url := fmt.Sprintf("http://127.0.0.1:%d/metrics", port)
	var resp *http.Response
	for i := 0; i < 20; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInstanceRejectsBadTLSMaterial(t *testing.T) {
	port := freePort(t)
	collector := metrics.NewCollector()
	reg := registry.New(nil, collector)

	_, err := New(config.Server{
		Hostname: "127.0.0.1",
		Port:     port,
		Security: &config.Security{Certificate: "missing.crt", PrivateKey: "missing.key"},
	}, reg, nil, collector, nil)
	assert.Error(t, err)
}
