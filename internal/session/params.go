package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/kstaniek/mavgcs/internal/mavlink/dialect"
	"github.com/kstaniek/mavgcs/internal/metrics"
	"github.com/kstaniek/mavgcs/internal/reactor"
)

// indexUnknown is the PARAM_VALUE sentinel index meaning "this parameter
// carries no stable index", matching the real dialect's use of 0xFFFF.
const indexUnknown = 0xFFFF

// Params is the vehicle's parameter table: a name->value map plus an
// index-ordered array tracking which indices have been observed at least
// once. The vehicle controls indexing and count; this side reconciles.
type Params struct {
	mu      sync.Mutex
	values  map[string]float32
	indexes []string // "" means not yet observed at that index
	changed chan struct{}

	reactor *reactor.Reactor
}

func newParams(r *reactor.Reactor) *Params {
	return &Params{
		values:  make(map[string]float32),
		changed: make(chan struct{}),
		reactor: r,
	}
}

// resize resets the table when the vehicle reports a different total
// parameter count than we'd previously recorded.
func (p *Params) resize(count uint16) {
	if len(p.indexes) != int(count) {
		p.values = make(map[string]float32)
		p.indexes = make([]string, count)
	}
}

func (p *Params) assign(index uint16, name string, value float32) {
	p.values[name] = value
	if index != indexUnknown && int(index) < len(p.indexes) {
		p.indexes[index] = name
	}
}

// onParamValue updates the mirror from an observed PARAM_VALUE message. The
// session calls this for every inbound PARAM_VALUE so Get/Available reflect
// the latest known state even outside an explicit Sync, and wakes any
// WaitAll callers blocked on the table's completeness.
func (p *Params) onParamValue(v dialect.ParamValue) {
	p.mu.Lock()
	p.resize(v.ParamCount)
	p.assign(v.ParamIndex, v.ParamID, v.ParamValue)
	observed := p.observedLocked()
	expected := len(p.indexes)
	woken := p.changed
	p.changed = make(chan struct{})
	p.mu.Unlock()
	close(woken)
	metrics.SetParamsProgress(observed, expected)
}

func (p *Params) observedLocked() int {
	n := 0
	for _, name := range p.indexes {
		if name != "" {
			n++
		}
	}
	return n
}

// Get returns a parameter's last known value.
func (p *Params) Get(name string) (float32, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[name]
	return v, ok
}

// Remaining reports how many parameter indices have been observed so far.
func (p *Params) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.observedLocked()
}

// Available is identical to Remaining: both count observed indices. Kept as
// a distinct method because the vehicle-side source exposes both names for
// the same count.
func (p *Params) Available() int { return p.Remaining() }

// Set requests the vehicle adopt a new value for name and blocks until a
// PARAM_VALUE echoing that exact value is observed, or ctx is done.
func (p *Params) Set(ctx context.Context, name string, value float32) error {
	w := p.reactor.AddWatcher(func(msg dialect.Message) bool {
		pv, ok := msg.(dialect.ParamValue)
		if !ok {
			return false
		}
		return pv.ParamID == name && pv.ParamValue == value
	})

	if err := p.reactor.Send(dialect.ParamSet{
		ParamID:    name,
		ParamValue: value,
		ParamType:  0,
	}); err != nil {
		p.reactor.RemoveWatcher(w)
		return fmt.Errorf("session: param set %q: %w", name, err)
	}

	select {
	case <-w.Done:
		return nil
	case <-ctx.Done():
		p.reactor.RemoveWatcher(w)
		return ctx.Err()
	}
}

// RequestAll asks the vehicle to stream its full parameter table.
func (p *Params) RequestAll() error {
	return p.reactor.Send(dialect.ParamRequestList{})
}

// WaitAll blocks until every parameter index the vehicle declared has been
// observed at least once, or ctx is done. It sends nothing (the broadcast
// is triggered by RequestAll during Init, not by this call): rather than
// installing a second, redundant watcher over the wire
// to re-derive what onParamValue already tracks, WaitAll waits on the same
// table onParamValue maintains and wakes on every update, re-checking
// completeness each time — this also makes it correct regardless of
// whether the count resets mid-sync, since each wake re-reads the current
// expected/observed counts instead of a one-time snapshot.
func (p *Params) WaitAll(ctx context.Context) error {
	for {
		p.mu.Lock()
		complete := len(p.indexes) > 0 && p.observedLocked() == len(p.indexes)
		woken := p.changed
		p.mu.Unlock()
		if complete {
			return nil
		}
		select {
		case <-woken:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
