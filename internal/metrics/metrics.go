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

// Package metrics exposes process counters for the broker engine over
// Prometheus, the same library the teacher's operator metrics are built
// on. Unlike the teacher, which registers its vectors against the global
// controller-runtime registry from an init function, each Collector here
// owns a private prometheus.Registry so tests can construct as many
// independent collectors as they like.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector tracks the broker's process-wide counters: live queues, live
// waiters, and the four queue operations (put, take, peek, wait).
type Collector struct {
	registry *prometheus.Registry

	queuesGauge  prometheus.Gauge
	waitersGauge prometheus.Gauge
	opsTotal     *prometheus.CounterVec
}

// NewCollector builds a Collector registered against its own private
// registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		queuesGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "queued",
			Subsystem: "registry",
			Name:      "queues",
			Help:      "Number of queues currently held by the registry.",
		}),
		waitersGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "queued",
			Subsystem: "registry",
			Name:      "waiters",
			Help:      "Number of waiters currently registered across all queues.",
		}),
		opsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "queued",
			Subsystem: "engine",
			Name:      "operations_total",
			Help:      "Count of put/take/peek/wait operations processed.",
		}, []string{"operation"}),
	}

	c.registry.MustRegister(c.queuesGauge, c.waitersGauge, c.opsTotal)
	return c
}

// SetQueues records the current number of live queues.
func (c *Collector) SetQueues(n int) { c.queuesGauge.Set(float64(n)) }

// SetWaiters records the current number of live waiters.
func (c *Collector) SetWaiters(n int) { c.waitersGauge.Set(float64(n)) }

// ObservePut increments the put operation counter.
func (c *Collector) ObservePut() { c.opsTotal.WithLabelValues("put").Inc() }

// ObserveTake increments the take operation counter.
func (c *Collector) ObserveTake() { c.opsTotal.WithLabelValues("take").Inc() }

// ObservePeek increments the peek operation counter.
func (c *Collector) ObservePeek() { c.opsTotal.WithLabelValues("peek").Inc() }

// ObserveWait increments the wait operation counter.
func (c *Collector) ObserveWait() { c.opsTotal.WithLabelValues("wait").Inc() }

// Handler returns the /metrics HTTP handler for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
