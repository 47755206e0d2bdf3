// Package session maintains the single-writer mirror of vehicle state and
// exposes the command pattern built on top of it: each command installs a
// watcher recognizing the command's effect, sends the triggering message,
// and returns once the effect is observed or the caller's context expires.
// An ack alone never completes a command; the vehicle must be seen to
// actually enter the requested state.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/kstaniek/mavgcs/internal/logging"
	"github.com/kstaniek/mavgcs/internal/mavlink/dialect"
	"github.com/kstaniek/mavgcs/internal/reactor"
	"github.com/kstaniek/mavgcs/internal/watch"
)

// CommandOption customizes how a blocking command waits for its watcher.
type CommandOption func(*commandOpts)

type commandOpts struct {
	retry time.Duration
}

// WithRetry resends a command's outbound message on the given interval
// until its watcher fires or the caller's context is done. Off by default:
// resending is only safe for commands whose repeated delivery doesn't
// change vehicle behavior (e.g. a position setpoint, not an arm toggle).
func WithRetry(interval time.Duration) CommandOption {
	return func(o *commandOpts) { o.retry = interval }
}

// waitWithRetry blocks on w.Done, optionally calling resend on an interval
// until it fires or ctx is done, removing the watcher on timeout.
func (s *Session) waitWithRetry(ctx context.Context, w *watch.Watcher, resend func() error, opts ...CommandOption) error {
	var o commandOpts
	for _, opt := range opts {
		opt(&o)
	}
	if o.retry <= 0 {
		select {
		case <-w.Done:
			return nil
		case <-ctx.Done():
			s.r.RemoveWatcher(w)
			return ctx.Err()
		}
	}

	ticker := time.NewTicker(o.retry)
	defer ticker.Stop()
	for {
		select {
		case <-w.Done:
			return nil
		case <-ticker.C:
			_ = resend()
		case <-ctx.Done():
			s.r.RemoveWatcher(w)
			return ctx.Err()
		}
	}
}

// mirror holds the vehicle fields the session tracks passively, guarded by
// one RWMutex. Only the session's own Run goroutine ever writes it.
type mirror struct {
	mu sync.RWMutex

	started bool

	baseMode, systemStatus uint8
	customMode             uint32

	hasGlobal bool
	global    dialect.GlobalPositionInt

	hasLocal bool
	local    dialect.LocalPositionNED

	hasAttitude bool
	attitude    dialect.Attitude
}

// Session is a live connection to one vehicle: it owns a Reactor, keeps the
// mirror current, and exposes blocking commands.
type Session struct {
	r      *reactor.Reactor
	Params *Params
	mirror mirror

	logger    *slog.Logger
	ready     chan struct{}
	readyOnce sync.Once
}

// New wraps an already-constructed Reactor. Call Run in its own goroutine
// before issuing any commands.
func New(r *reactor.Reactor) *Session {
	return &Session{
		r:      r,
		Params: newParams(r),
		logger: logging.L(),
		ready:  make(chan struct{}),
	}
}

// Run consumes the reactor's inbound stream and updates the mirror until
// ctx is done or the reactor closes its channel.
func (s *Session) Run(ctx context.Context) {
	for {
		select {
		case in, ok := <-s.r.Inbound():
			if !ok {
				return
			}
			s.onMessage(in.Message)
		case <-ctx.Done():
			return
		}
	}
}

// Init sends the initial heartbeat and blocks until the vehicle's first
// heartbeat has been observed, or ctx expires. Run must already be
// consuming the inbound stream.
func (s *Session) Init(ctx context.Context) error {
	if err := s.sendHeartbeat(); err != nil {
		return fmt.Errorf("session: init heartbeat: %w", err)
	}
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) sendHeartbeat() error {
	return s.r.Send(dialect.Heartbeat{
		Type:           6, // MAV_TYPE_GCS
		Autopilot:      8, // MAV_AUTOPILOT_INVALID
		MavlinkVersion: 3,
	})
}

func (s *Session) onMessage(msg dialect.Message) {
	switch m := msg.(type) {
	case dialect.Heartbeat:
		s.mirror.mu.Lock()
		s.mirror.baseMode = m.BaseMode
		s.mirror.customMode = m.CustomMode
		s.mirror.systemStatus = m.SystemStatus
		firstTime := !s.mirror.started
		s.mirror.started = true
		s.mirror.mu.Unlock()

		_ = s.sendHeartbeat()

		if firstTime {
			s.readyOnce.Do(func() { close(s.ready) })
			_ = s.Params.RequestAll()
			_ = s.r.Send(dialect.RequestDataStream{
				ReqStreamID:    0,
				ReqMessageRate: 100,
				StartStop:      1,
			})
		}
	case dialect.Statustext:
		s.logger.Log(context.Background(), statusSeverityLevel(m.Severity), "vehicle_statustext", "severity", m.Severity, "text", m.Text)
	case dialect.ParamValue:
		s.Params.onParamValue(m)
	case dialect.Attitude:
		s.mirror.mu.Lock()
		s.mirror.attitude = m
		s.mirror.hasAttitude = true
		s.mirror.mu.Unlock()
	case dialect.LocalPositionNED:
		s.mirror.mu.Lock()
		s.mirror.local = m
		s.mirror.hasLocal = true
		s.mirror.mu.Unlock()
	case dialect.GlobalPositionInt:
		s.mirror.mu.Lock()
		s.mirror.global = m
		s.mirror.hasGlobal = true
		s.mirror.mu.Unlock()
	}
}

// Armed reports whether the vehicle's last reported heartbeat had the
// safety-armed mode bit set.
func (s *Session) Armed() bool {
	s.mirror.mu.RLock()
	defer s.mirror.mu.RUnlock()
	return s.mirror.baseMode&dialect.ModeFlagSafetyArmed != 0
}

// Mode returns the vehicle's last reported base/custom mode pair.
func (s *Session) Mode() (baseMode uint8, customMode uint32) {
	s.mirror.mu.RLock()
	defer s.mirror.mu.RUnlock()
	return s.mirror.baseMode, s.mirror.customMode
}

// GlobalPosition returns the last observed GLOBAL_POSITION_INT, if any.
func (s *Session) GlobalPosition() (dialect.GlobalPositionInt, bool) {
	s.mirror.mu.RLock()
	defer s.mirror.mu.RUnlock()
	return s.mirror.global, s.mirror.hasGlobal
}

// LocalPosition returns the last observed LOCAL_POSITION_NED, if any.
func (s *Session) LocalPosition() (dialect.LocalPositionNED, bool) {
	s.mirror.mu.RLock()
	defer s.mirror.mu.RUnlock()
	return s.mirror.local, s.mirror.hasLocal
}

// Attitude returns the last observed ATTITUDE, if any.
func (s *Session) Attitude() (dialect.Attitude, bool) {
	s.mirror.mu.RLock()
	defer s.mirror.mu.RUnlock()
	return s.mirror.attitude, s.mirror.hasAttitude
}

// Arm sends the arm command and blocks until the vehicle's heartbeat
// reflects the safety-armed bit set, or ctx is done.
func (s *Session) Arm(ctx context.Context) error {
	return s.setArmed(ctx, true)
}

// Disarm sends the disarm command and blocks until the vehicle's heartbeat
// reflects the safety-armed bit cleared, or ctx is done.
func (s *Session) Disarm(ctx context.Context) error {
	return s.setArmed(ctx, false)
}

// setArmed requires two independent confirmations: a COMMAND_ACK for
// MAV_CMD_COMPONENT_ARM_DISARM and a HEARTBEAT reflecting the requested
// safety-armed bit. An ack alone means only that the vehicle accepted the
// request, not that it entered the state; the two may arrive in either
// order.
func (s *Session) setArmed(ctx context.Context, arm bool) error {
	want := float32(0)
	if arm {
		want = 1
	}
	wAck := s.r.AddWatcher(func(msg dialect.Message) bool {
		ack, ok := msg.(dialect.CommandAck)
		return ok && ack.Command == dialect.CmdComponentArmDisarm
	})
	wHB := s.r.AddWatcher(func(msg dialect.Message) bool {
		hb, ok := msg.(dialect.Heartbeat)
		if !ok {
			return false
		}
		return (hb.BaseMode&dialect.ModeFlagSafetyArmed != 0) == arm
	})
	if err := s.r.Send(dialect.CommandLong{
		Command: dialect.CmdComponentArmDisarm,
		Param1:  want,
	}); err != nil {
		s.r.RemoveWatcher(wAck)
		s.r.RemoveWatcher(wHB)
		return fmt.Errorf("session: arm=%v: %w", arm, err)
	}
	return waitBoth(ctx, s.r, wAck, wHB)
}

// waitBoth blocks until both watchers have fulfilled, in either order, or
// ctx expires (in which case any still-outstanding watcher is removed).
func waitBoth(ctx context.Context, r *reactor.Reactor, a, b *watch.Watcher) error {
	doneA, doneB := a.Done, b.Done
	for doneA != nil || doneB != nil {
		select {
		case <-doneA:
			doneA = nil
		case <-doneB:
			doneB = nil
		case <-ctx.Done():
			if doneA != nil {
				r.RemoveWatcher(a)
			}
			if doneB != nil {
				r.RemoveWatcher(b)
			}
			return ctx.Err()
		}
	}
	return nil
}

// SetMode requests a base/custom mode change and blocks until the
// vehicle's own heartbeat echoes it back, or ctx is done. Pass WithRetry to
// resend the request on an interval, useful on lossy serial links.
func (s *Session) SetMode(ctx context.Context, baseMode uint8, customMode uint32, opts ...CommandOption) error {
	send := func() error {
		return s.r.Send(dialect.SetMode{BaseMode: baseMode, CustomMode: customMode})
	}
	w := s.r.AddWatcher(func(msg dialect.Message) bool {
		hb, ok := msg.(dialect.Heartbeat)
		if !ok {
			return false
		}
		// Requiring the exact base mode back would never resolve against a
		// real autopilot: the vehicle sets its own flag bits (armed, HIL,
		// etc.) on top of the request. What confirms the change is the
		// custom-mode-enabled bit plus the echoed custom mode.
		return hb.BaseMode&dialect.ModeFlagCustomEnable != 0 && hb.CustomMode == customMode
	})
	if err := send(); err != nil {
		s.r.RemoveWatcher(w)
		return fmt.Errorf("session: set_mode: %w", err)
	}
	return s.waitWithRetry(ctx, w, send, opts...)
}

// Takeoff issues a NAV_TAKEOFF command to the given relative altitude and
// blocks until both the vehicle's COMMAND_ACK for it and a HEARTBEAT
// reporting MAV_STATE_ACTIVE have been observed, in either order. Reaching
// the altitude itself is a separate, slower effect; pair Takeoff with
// WaitAltitude.
func (s *Session) Takeoff(ctx context.Context, altitudeM float32) error {
	wAck := s.r.AddWatcher(func(msg dialect.Message) bool {
		ack, ok := msg.(dialect.CommandAck)
		return ok && ack.Command == dialect.CmdNavTakeoff
	})
	wHB := s.r.AddWatcher(func(msg dialect.Message) bool {
		hb, ok := msg.(dialect.Heartbeat)
		return ok && hb.SystemStatus == dialect.SystemStateActive
	})
	if err := s.r.Send(dialect.CommandLong{
		Command: dialect.CmdNavTakeoff,
		Param7:  altitudeM,
	}); err != nil {
		s.r.RemoveWatcher(wAck)
		s.r.RemoveWatcher(wHB)
		return fmt.Errorf("session: takeoff: %w", err)
	}

	doneHB := wHB.Done
	for {
		select {
		case msg := <-wAck.Done:
			ack := msg.(dialect.CommandAck)
			if ack.Result != dialect.CmdAckResultAccepted {
				if doneHB != nil {
					s.r.RemoveWatcher(wHB)
				}
				return fmt.Errorf("session: takeoff rejected, result=%d", ack.Result)
			}
			if doneHB == nil {
				return nil
			}
			select {
			case <-doneHB:
				return nil
			case <-ctx.Done():
				s.r.RemoveWatcher(wHB)
				return ctx.Err()
			}
		case <-doneHB:
			doneHB = nil
		case <-ctx.Done():
			s.r.RemoveWatcher(wAck)
			if doneHB != nil {
				s.r.RemoveWatcher(wHB)
			}
			return ctx.Err()
		}
	}
}

// Goto commands a local-frame position setpoint and blocks until the
// vehicle's reported LOCAL_POSITION_NED is within toleranceM of the target,
// or ctx is done. Pass WithRetry to re-send the setpoint on an interval,
// matching the real flight stack's expectation that SET_POSITION_TARGET
// be refreshed periodically or the vehicle reverts out of guided control.
func (s *Session) Goto(ctx context.Context, x, y, z, toleranceM float32, opts ...CommandOption) error {
	send := func() error {
		return s.r.Send(dialect.SetPositionTargetLocalNED{
			CoordinateFrame: dialect.FrameLocalNED,
			TypeMask:        dialect.PositionTargetTypeMaskPositionOnly,
			X:               x,
			Y:               y,
			Z:               z,
		})
	}
	w := s.r.AddWatcher(func(msg dialect.Message) bool {
		pos, ok := msg.(dialect.LocalPositionNED)
		if !ok {
			return false
		}
		return within(pos.X, x, toleranceM) && within(pos.Y, y, toleranceM) && within(pos.Z, z, toleranceM)
	})
	if err := send(); err != nil {
		s.r.RemoveWatcher(w)
		return fmt.Errorf("session: goto: %w", err)
	}
	return s.waitWithRetry(ctx, w, send, opts...)
}

// WaitAltitude blocks until the vehicle's LOCAL_POSITION_NED reports an
// altitude within toleranceM of targetM, or ctx is done. NED z grows
// downward, so altitude is -z: the check is |target + z| <= tolerance. It
// sends nothing; it only observes.
func (s *Session) WaitAltitude(ctx context.Context, targetM, toleranceM float32) error {
	if l, ok := s.LocalPosition(); ok && within(-l.Z, targetM, toleranceM) {
		return nil
	}

	w := s.r.AddWatcher(func(msg dialect.Message) bool {
		l, ok := msg.(dialect.LocalPositionNED)
		if !ok {
			return false
		}
		return within(-l.Z, targetM, toleranceM)
	})
	select {
	case <-w.Done:
		return nil
	case <-ctx.Done():
		s.r.RemoveWatcher(w)
		return ctx.Err()
	}
}

func within(got, want, tolerance float32) bool {
	return math.Abs(float64(got-want)) <= math.Abs(float64(tolerance))
}

// statusSeverityLevel maps MAV_SEVERITY (syslog-style, 0=emergency through
// 7=debug) onto the slog level the line is logged at.
func statusSeverityLevel(severity uint8) slog.Level {
	switch {
	case severity <= 3: // emergency, alert, critical, error
		return slog.LevelError
	case severity == 4:
		return slog.LevelWarn
	case severity >= 7:
		return slog.LevelDebug
	default: // notice, info
		return slog.LevelInfo
	}
}
