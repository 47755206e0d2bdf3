// Package reactor owns the single connection to a vehicle: one goroutine
// reads and decodes frames, another drains an outbound queue, and callers
// install watchers and send frames through the Reactor without ever
// touching the connection directly.
package reactor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"github.com/kstaniek/mavgcs/internal/logging"
	"github.com/kstaniek/mavgcs/internal/mavlink/dialect"
	"github.com/kstaniek/mavgcs/internal/mavlink/wire"
	"github.com/kstaniek/mavgcs/internal/metrics"
	"github.com/kstaniek/mavgcs/internal/transport"
	"github.com/kstaniek/mavgcs/internal/watch"
)

// Sentinel errors, classified via errors.Is at metrics/log call sites.
var (
	ErrConnRead    = errors.New("conn_read")
	ErrConnWrite   = errors.New("conn_write")
	ErrReactorDone = errors.New("reactor closed")
)

const (
	defaultReadBufSize   = 4096
	defaultOutboundDepth = 64
)

// Inbound is delivered once per successfully decoded, dispatched message,
// or once as a Corked sentinel (Message/Frame unset) marking the point at
// which the reactor stopped reading the socket in response to Cork.
// Session consumes this channel to maintain its mirror.
type Inbound struct {
	Message dialect.Message
	Frame   wire.Frame
	Corked  bool
}

// Reactor runs the single-threaded cooperative loop that owns the
// connection. All sends funnel through SendFrame (itself backed by an
// AsyncTx-style queue); all watcher installs funnel through AddWatcher so
// there is never a race between "send a command" and "start watching for
// its effect".
type Reactor struct {
	conn     io.ReadWriteCloser
	codec    wire.Codec
	watchers *watch.Registry
	inbound  chan Inbound

	logger *slog.Logger

	systemID, componentID uint8
	seq                   byte
	seqMu                 sync.Mutex

	tx          *transport.AsyncTx
	outboundCap int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup

	closeOnce sync.Once
	errCh     chan error

	corkReq   chan struct{}
	corkAck   chan struct{}
	uncorkReq chan struct{}
}

// Option configures a Reactor at construction.
type Option func(*Reactor)

func WithLogger(l *slog.Logger) Option {
	return func(r *Reactor) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithIdentity(systemID, componentID uint8) Option {
	return func(r *Reactor) { r.systemID, r.componentID = systemID, componentID }
}

func WithOutboundDepth(n int) Option {
	return func(r *Reactor) {
		if n > 0 {
			r.outboundCap = n
		}
	}
}

// New constructs a Reactor bound to an already-dialed connection. Call Run
// to start its goroutines.
func New(conn io.ReadWriteCloser, codec wire.Codec, opts ...Option) *Reactor {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Reactor{
		conn:        conn,
		codec:       codec,
		watchers:    watch.New(),
		inbound:     make(chan Inbound, 256),
		logger:      logging.L(),
		systemID:    255,
		componentID: 0,
		outboundCap: defaultOutboundDepth,
		ctx:         ctx,
		cancel:      cancel,
		errCh:       make(chan error, 1),
		corkReq:     make(chan struct{}, 1),
		corkAck:     make(chan struct{}),
		uncorkReq:   make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(r)
	}
	r.tx = transport.NewAsyncTx(ctx, r.outboundCap, r.writeFrame, transport.Hooks{
		OnError: func(err error) {
			wrapped := fmt.Errorf("%w: %v", ErrConnWrite, err)
			r.setError(wrapped)
			r.logger.Warn("reactor_write_error", "error", wrapped)
			r.Close()
		},
		OnAfter: func() { metrics.IncFrameSent() },
		OnDrop: func() error {
			metrics.IncOutboundDropped()
			return fmt.Errorf("reactor: outbound queue full")
		},
	})
	return r
}

func (r *Reactor) writeFrame(b []byte) error {
	_, err := r.conn.Write(b)
	return err
}

// Inbound exposes the stream of decoded, registry-dispatched messages.
func (r *Reactor) Inbound() <-chan Inbound { return r.inbound }

// Errors exposes the last fatal transport error, non-blocking.
func (r *Reactor) Errors() <-chan error { return r.errCh }

// Identity returns the system/component id this reactor addresses outbound
// frames as.
func (r *Reactor) Identity() (systemID, componentID uint8) { return r.systemID, r.componentID }

// Run starts the reader goroutine (the writer runs inside the AsyncTx
// already started by New) and blocks until ctx is cancelled or a fatal
// transport error occurs.
func (r *Reactor) Run(ctx context.Context) error {
	r.wg.Add(1)
	go r.readLoop()
	select {
	case <-ctx.Done():
		r.Close()
	case <-r.ctx.Done():
	}
	r.wg.Wait()
	return nil
}

func (r *Reactor) setError(err error) {
	if err == nil {
		return
	}
	metrics.IncError(classify(err))
	select {
	case r.errCh <- err:
	default:
	}
}

func classify(err error) string {
	switch {
	case errors.Is(err, ErrConnRead):
		return metrics.ErrTransportRead
	case errors.Is(err, ErrConnWrite):
		return metrics.ErrTransportWrite
	default:
		return "other"
	}
}

// readLoop splits reading from dispatching: a pump goroutine sits in the
// blocking conn.Read and hands chunks over a channel, so the dispatch loop
// stays responsive to Cork even when the link is idle. While corked the
// loop simply stops taking chunks; the pump parks on its handoff and the
// socket goes unread, which is exactly the pause Cork promises.
func (r *Reactor) readLoop() {
	defer r.wg.Done()
	defer r.Close()

	chunks := make(chan []byte)
	readErr := make(chan error, 1)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		buf := make([]byte, defaultReadBufSize)
		for {
			n, err := r.conn.Read(buf)
			if n > 0 {
				c := make([]byte, n)
				copy(c, buf[:n])
				select {
				case chunks <- c:
				case <-r.ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	acc := bytes.NewBuffer(nil)
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-r.corkReq:
			// Everything handed over so far has already been fed through the
			// codec, so there is no hidden decode queue to flush. Session is
			// told via a best-effort inbound sentinel; Cork's caller is told
			// via the dedicated ack so it never races Session for the same
			// channel value.
			select {
			case r.inbound <- Inbound{Corked: true}:
			default:
			}
			select {
			case r.corkAck <- struct{}{}:
			case <-r.ctx.Done():
				return
			}
			select {
			case <-r.uncorkReq:
			case <-r.ctx.Done():
				return
			}
		case c := <-chunks:
			acc.Write(c)
			r.codec.Feed(acc, r.onFrame)
		case err := <-readErr:
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
				return
			}
			wrapped := fmt.Errorf("%w: %v", ErrConnRead, err)
			r.setError(wrapped)
			r.logger.Warn("reactor_read_error", "error", wrapped)
			return
		}
	}
}

func (r *Reactor) onFrame(f wire.Frame) {
	msg, ok := dialect.Parse(f.MessageID, f.Payload)
	if !ok {
		metrics.IncMessageUnknown()
		return
	}
	metrics.IncMessageDispatched(strconv.Itoa(int(f.MessageID)))
	r.watchers.Dispatch(msg)
	select {
	case r.inbound <- Inbound{Message: msg, Frame: f}:
	case <-r.ctx.Done():
	}
}

// nextSeq returns the next frame sequence number, wrapping at 256.
func (r *Reactor) nextSeq() uint8 {
	r.seqMu.Lock()
	s := r.seq
	r.seq++
	r.seqMu.Unlock()
	return s
}

// Send encodes msg and enqueues it for transmission, addressed from this
// reactor's identity. It does not install a watcher; pair it with AddWatcher
// first if the caller needs to observe the vehicle's reaction.
func (r *Reactor) Send(msg dialect.Message) error {
	payload, ok := dialect.Serialize(msg)
	if !ok {
		return fmt.Errorf("reactor: message id %d has no serializer", msg.MessageID())
	}
	frame := wire.Frame{
		Seq:         r.nextSeq(),
		SystemID:    r.systemID,
		ComponentID: r.componentID,
		MessageID:   msg.MessageID(),
		Payload:     payload,
	}
	encoded, err := r.codec.Encode(frame)
	if err != nil {
		return fmt.Errorf("reactor: encode %s: %w", msg.MessageName(), err)
	}
	if err := r.tx.SendFrame(encoded); err != nil {
		if errors.Is(err, transport.ErrAsyncTxClosed) {
			return fmt.Errorf("reactor: send %s: %w", msg.MessageName(), ErrReactorDone)
		}
		return fmt.Errorf("reactor: send %s: %w", msg.MessageName(), err)
	}
	return nil
}

// AddWatcher installs a one-shot predicate and returns it so the caller can
// block on w.Done or Remove it on timeout.
func (r *Reactor) AddWatcher(match func(dialect.Message) bool) *watch.Watcher {
	w := watch.NewWatcher(match)
	r.watchers.Add(w)
	return w
}

// RemoveWatcher discards a watcher that never matched, e.g. after a
// caller's context deadline expires.
func (r *Reactor) RemoveWatcher(w *watch.Watcher) { r.watchers.Remove(w) }

// Cork requests the reactor stop reading the socket and blocks until it
// confirms (by delivering a Corked sentinel on Inbound) that no message
// arriving after this call can have been dispatched yet. Pair it with
// AddWatcher and Uncork to install a watcher atomically against a known
// point in the stream, rather than racing the reader goroutine.
func (r *Reactor) Cork(ctx context.Context) error {
	select {
	case r.corkReq <- struct{}{}:
	case <-r.ctx.Done():
		return ErrReactorDone
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-r.corkAck:
		return nil
	case <-r.ctx.Done():
		return ErrReactorDone
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Uncork resumes reading the socket after Cork.
func (r *Reactor) Uncork() {
	select {
	case r.uncorkReq <- struct{}{}:
	case <-r.ctx.Done():
	}
}

// Close shuts the reactor down idempotently: cancels the context, stops the
// outbound writer, and closes the underlying connection.
func (r *Reactor) Close() {
	r.closeOnce.Do(func() {
		r.cancel()
		r.tx.Close()
		_ = r.conn.Close()
	})
}
