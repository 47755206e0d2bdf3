// Package watch implements the one-shot predicate registry the reactor uses
// to turn inbound messages into resolved commands: a Watcher is installed
// alongside an outbound send, and the first inbound message it recognizes
// fulfills it and is removed from the registry.
package watch

import (
	"sync"

	"github.com/kstaniek/mavgcs/internal/mavlink/dialect"
	"github.com/kstaniek/mavgcs/internal/metrics"
)

// Watcher is a one-shot predicate over a decoded message. Match reports
// whether msg fulfills the watcher; when it does, the registry removes the
// watcher and delivers msg on Done exactly once.
type Watcher struct {
	Match func(dialect.Message) bool
	Done  chan dialect.Message
}

// NewWatcher allocates a Watcher with a buffered, single-slot completion
// channel so Registry.Dispatch never blocks handing off the match.
func NewWatcher(match func(dialect.Message) bool) *Watcher {
	return &Watcher{Match: match, Done: make(chan dialect.Message, 1)}
}

// Fulfill delivers msg to the watcher's Done channel. It is safe to call at
// most once per watcher; the registry enforces that by removing a watcher as
// soon as it matches.
func (w *Watcher) Fulfill(msg dialect.Message) {
	w.Done <- msg
}

// Registry tracks every outstanding watcher, ordered by insertion so the
// first-registered watcher for a given effect is also the first offered a
// chance to match — mirroring a FIFO hub client list rather than a map whose
// iteration order is unspecified.
type Registry struct {
	mu       sync.Mutex
	watchers []*Watcher
}

// New returns an empty watcher registry.
func New() *Registry {
	return &Registry{}
}

// Add installs a watcher. Callers typically do this immediately before
// sending the outbound message whose effect the watcher recognizes, so no
// inbound message can be missed between send and watch.
func (r *Registry) Add(w *Watcher) {
	r.mu.Lock()
	r.watchers = append(r.watchers, w)
	r.mu.Unlock()
	metrics.IncWatcherRegistered()
	metrics.SetWatchersActive(r.Count())
}

// Remove discards a watcher without fulfilling it, e.g. on timeout or
// connection close. It is a no-op if the watcher already matched and was
// removed by Dispatch.
func (r *Registry) Remove(w *Watcher) {
	r.mu.Lock()
	for i, cand := range r.watchers {
		if cand == w {
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
	n := len(r.watchers)
	r.mu.Unlock()
	metrics.SetWatchersActive(n)
}

// Dispatch offers msg to every outstanding watcher in registration order.
// Every watcher whose Match returns true is fulfilled and removed; Dispatch
// does not stop at the first match, since distinct commands may be waiting
// on the same inbound message (e.g. two different param Set calls both
// watching for PARAM_VALUE).
func (r *Registry) Dispatch(msg dialect.Message) {
	r.mu.Lock()
	remaining := r.watchers[:0]
	var matched []*Watcher
	for _, w := range r.watchers {
		if w.Match(msg) {
			matched = append(matched, w)
		} else {
			remaining = append(remaining, w)
		}
	}
	r.watchers = remaining
	n := len(r.watchers)
	r.mu.Unlock()
	metrics.SetWatchersActive(n)
	for _, w := range matched {
		metrics.IncWatcherFulfilled()
		w.Fulfill(msg)
	}
}

// Count returns the number of outstanding watchers.
func (r *Registry) Count() int {
	r.mu.Lock()
	n := len(r.watchers)
	r.mu.Unlock()
	return n
}
