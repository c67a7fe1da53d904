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

// Package registry is the process-wide directory of queues and waiters.
// It serializes every queue operation behind a single mutex, which is the
// parallel-runtime equivalent of the single-threaded event loop the
// original design assumes: every handler, delivery callback, and
// lifecycle operation the registry exposes runs as if on one cooperative
// loop. See internal/queue for the engine the registry drives.
package registry

import (
	"errors"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/nwire/queued/internal/metrics"
	"github.com/nwire/queued/internal/queue"
)

// ErrNotFound is returned when a queue name fails to resolve and the
// caller did not request creation.
var ErrNotFound = errors.New("registry: queue not found")

// Registry is the constructed "engine" value the design notes call for in
// place of true process-global state: every handler is given an explicit
// *Registry rather than reaching for a package-level singleton.
type Registry struct {
	mu sync.Mutex

	log       *zap.SugaredLogger
	collector *metrics.Collector

	queues  []*queue.Queue
	waiters []*queue.Waiter
	servers []io.Closer
}

// New starts up an empty registry. A nil collector disables metrics
// collection entirely.
func New(log *zap.SugaredLogger, collector *metrics.Collector) *Registry {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Registry{log: log, collector: collector}
}

// reportLocked refreshes the gauge metrics from the registry's current
// queue/waiter counts. Called with r.mu held.
func (r *Registry) reportLocked() {
	if r.collector == nil {
		return
	}
	r.collector.SetQueues(len(r.queues))
	r.collector.SetWaiters(len(r.waiters))
}

// TrackServer records a listening endpoint so Shutdown can close it in
// the same pass as cancelling waiters and freeing queues.
func (r *Registry) TrackServer(c io.Closer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.servers = append(r.servers, c)
}

// Shutdown closes every tracked listener, cancels and frees all waiters,
// and frees all queues. Routes are not unregistered from their routers.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	servers := r.servers
	r.servers = nil
	qs := r.queues
	r.queues = nil
	r.waiters = nil
	r.mu.Unlock()

	for _, s := range servers {
		if err := s.Close(); err != nil {
			r.log.Warnw("error closing server during shutdown", "error", err)
		}
	}
	for _, q := range qs {
		q.Free()
	}
}

func (r *Registry) findLocked(id queue.ID) *queue.Queue {
	for _, q := range r.queues {
		if q.ID().EqualFold(id) {
			return q
		}
	}
	return nil
}

// QueueGet resolves a queue by name. A nil name creates a fresh,
// randomly-identified queue when createNew is set, or returns
// ErrNotFound otherwise. A non-nil name must be exactly 36 characters; it
// is looked up case-insensitively, and if absent and createNew is set, a
// queue adopting that exact id is created.
func (r *Registry) QueueGet(name *string, createNew bool) (*queue.Queue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == nil {
		if !createNew {
			return nil, ErrNotFound
		}
		q, err := queue.New(queue.ID{}, true)
		if err != nil {
			return nil, err
		}
		r.queues = append(r.queues, q)
		r.log.Debugw("created queue", "id", q.ID().String())
		r.reportLocked()
		return q, nil
	}

	if len(*name) != 36 {
		return nil, queue.ErrMalformed
	}

	id, err := queue.ParseID(strings.ToLower(*name))
	if err != nil {
		return nil, err
	}

	if q := r.findLocked(id); q != nil {
		return q, nil
	}

	if !createNew {
		return nil, ErrNotFound
	}

	q, err := queue.New(id, false)
	if err != nil {
		return nil, err
	}
	r.queues = append(r.queues, q)
	r.log.Debugw("created queue", "id", q.ID().String())
	r.reportLocked()
	return q, nil
}

// QueueFree detaches q from the registry and frees it, cancelling every
// waiter that was attached (without invoking their delivery callbacks)
// and dropping the registry's references to them.
func (r *Registry) QueueFree(q *queue.Queue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.freeQueueLocked(q)
}

func (r *Registry) freeQueueLocked(q *queue.Queue) {
	for i, cand := range r.queues {
		if cand == q {
			r.queues = append(r.queues[:i], r.queues[i+1:]...)
			break
		}
	}
	cancelled := q.Free()
	r.removeWaitersLocked(cancelled)
	r.log.Debugw("freed queue", "id", q.ID().String())
	r.reportLocked()
}

func (r *Registry) removeWaitersLocked(gone []*queue.Waiter) {
	if len(gone) == 0 {
		return
	}
	set := make(map[*queue.Waiter]struct{}, len(gone))
	for _, w := range gone {
		set[w] = struct{}{}
	}
	kept := r.waiters[:0]
	for _, w := range r.waiters {
		if _, found := set[w]; found {
			continue
		}
		kept = append(kept, w)
	}
	r.waiters = kept
}

// QueueForeach iterates the registry's queues in order. If cb returns
// false, iteration stops early.
func (r *Registry) QueueForeach(cb func(*queue.Queue) bool) {
	r.mu.Lock()
	snapshot := make([]*queue.Queue, len(r.queues))
	copy(snapshot, r.queues)
	r.mu.Unlock()

	for _, q := range snapshot {
		if !cb(q) {
			return
		}
	}
}

// Put publishes value (optionally tagged key) to q.
func (r *Registry) Put(q *queue.Queue, key *string, value string) (delivered bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delivered, matched, _ := q.Put(key, value)
	if matched != nil {
		r.removeWaiterFromIndexLocked(matched)
	}
	if r.collector != nil {
		r.collector.ObservePut()
		r.reportLocked()
	}
	return delivered
}

// Take synchronously consumes an item from q, or returns nil.
func (r *Registry) Take(q *queue.Queue, key *string) *queue.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.collector != nil {
		r.collector.ObserveTake()
	}
	return q.Take(key)
}

// Peek reads an item from q without consuming it, or returns nil. The
// returned item is already locked by the time Peek returns; callers must
// Unlock it once they are done (typically after sending the response).
func (r *Registry) Peek(q *queue.Queue, key *string) *queue.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.collector != nil {
		r.collector.ObservePeek()
	}
	it := q.Peek(key)
	if it != nil {
		it.Lock()
	}
	return it
}

// Wait subscribes identifier to q for items matching key. deliver is
// invoked synchronously, either immediately (if a matching item is
// already buffered) or later from within a future Put on the same
// registry lock. subscriber is the opaque, comparable connection handle
// used by CancelAllForConnection.
func (r *Registry) Wait(q *queue.Queue, identifier string, key *string, subscriber any, deliver func(*queue.Item)) (delivered bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delivered, w := q.Wait(identifier, key, subscriber, deliver)
	if w != nil {
		r.waiters = append(r.waiters, w)
	}
	if r.collector != nil {
		r.collector.ObserveWait()
		r.reportLocked()
	}
	return delivered
}

func (r *Registry) removeWaiterFromIndexLocked(w *queue.Waiter) {
	for i, cand := range r.waiters {
		if cand == w {
			r.waiters = append(r.waiters[:i], r.waiters[i+1:]...)
			return
		}
	}
}

// CancelAllForConnection marks every waiter bound to subscriber as
// cancelled. It does not remove them from their queue's list — a
// cancelled waiter is simply skipped by future matching and reclaimed
// when its queue is freed or the process shuts down.
func (r *Registry) CancelAllForConnection(subscriber any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, w := range r.waiters {
		if w.Subscriber == subscriber {
			w.Cancel()
		}
	}
}
