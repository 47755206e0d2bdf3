package session

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/kstaniek/mavgcs/internal/mavlink/dialect"
	"github.com/kstaniek/mavgcs/internal/mavlink/wire"
	"github.com/kstaniek/mavgcs/internal/reactor"
)

// vehicleStub drives the "vehicle" side of a net.Pipe: it decodes outbound
// frames from the session under test and lets the test script canned
// replies back, mirroring a minimal SITL.
type vehicleStub struct {
	t     *testing.T
	conn  net.Conn
	codec wire.Codec
	in    chan dialect.Message
}

func newVehicleStub(t *testing.T, conn net.Conn) *vehicleStub {
	v := &vehicleStub{t: t, conn: conn, codec: wire.NewCodec(dialect.ExtraCRC), in: make(chan dialect.Message, 32)}
	go v.readLoop()
	return v
}

func (v *vehicleStub) readLoop() {
	buf := make([]byte, 4096)
	acc := bytes.NewBuffer(nil)
	for {
		n, err := v.conn.Read(buf)
		if n > 0 {
			acc.Write(buf[:n])
			v.codec.Feed(acc, func(f wire.Frame) {
				if msg, ok := dialect.Parse(f.MessageID, f.Payload); ok {
					select {
					case v.in <- msg:
					default:
					}
				}
			})
		}
		if err != nil {
			return
		}
	}
}

func (v *vehicleStub) send(msg dialect.Message) {
	payload, ok := dialect.Serialize(msg)
	if !ok {
		v.t.Fatalf("serialize failed for %s", msg.MessageName())
	}
	encoded, err := v.codec.Encode(wire.Frame{MessageID: msg.MessageID(), Payload: payload})
	if err != nil {
		v.t.Fatalf("encode: %v", err)
	}
	if _, err := v.conn.Write(encoded); err != nil {
		v.t.Fatalf("write: %v", err)
	}
}

func (v *vehicleStub) waitFor(want uint8, timeout time.Duration) dialect.Message {
	v.t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case msg := <-v.in:
			if msg.MessageID() == want {
				return msg
			}
		case <-deadline:
			v.t.Fatalf("timed out waiting for message id %d", want)
			return nil
		}
	}
}

func newTestSession(t *testing.T) (*Session, *vehicleStub, func()) {
	t.Helper()
	client, server := net.Pipe()
	codec := wire.NewCodec(dialect.ExtraCRC)
	r := reactor.New(server, codec, reactor.WithIdentity(255, 0))
	stub := newVehicleStub(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = r.Run(ctx) }()

	s := New(r)
	go s.Run(ctx)

	cleanup := func() {
		cancel()
		r.Close()
		client.Close()
	}
	return s, stub, cleanup
}

// TestSessionInitCompletesOnFirstHeartbeat checks Init unblocks once the
// vehicle replies with its own heartbeat, and that the session requests
// parameters and a data stream immediately after.
func TestSessionInitCompletesOnFirstHeartbeat(t *testing.T) {
	s, stub, cleanup := newTestSession(t)
	defer cleanup()

	initDone := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		initDone <- s.Init(ctx)
	}()

	stub.waitFor(dialect.IDHeartbeat, 2*time.Second)
	stub.send(dialect.Heartbeat{Type: 1, Autopilot: 3, BaseMode: 0, CustomMode: 0, SystemStatus: 4})

	select {
	case err := <-initDone:
		if err != nil {
			t.Fatalf("Init: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for Init to complete")
	}

	stub.waitFor(dialect.IDParamRequestList, 2*time.Second)
	stub.waitFor(dialect.IDRequestDataStream, 2*time.Second)
}

// TestSessionArmRequiresBothAckAndHeartbeat checks Arm only resolves once
// both a COMMAND_ACK for the arm command and a heartbeat reflecting the
// safety-armed bit have been observed: neither alone is sufficient, and
// the order between them doesn't matter.
func TestSessionArmRequiresBothAckAndHeartbeat(t *testing.T) {
	s, stub, cleanup := newTestSession(t)
	defer cleanup()

	initDone := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		initDone <- s.Init(ctx)
	}()
	stub.waitFor(dialect.IDHeartbeat, 2*time.Second)
	stub.send(dialect.Heartbeat{})
	if err := <-initDone; err != nil {
		t.Fatalf("Init: %v", err)
	}

	armDone := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		armDone <- s.Arm(ctx)
	}()

	stub.waitFor(dialect.IDCommandLong, 2*time.Second)

	select {
	case <-armDone:
		t.Fatalf("Arm resolved before either confirmation arrived")
	case <-time.After(100 * time.Millisecond):
	}

	// Ack alone is not enough.
	stub.send(dialect.CommandAck{Command: dialect.CmdComponentArmDisarm, Result: dialect.CmdAckResultAccepted})
	select {
	case <-armDone:
		t.Fatalf("Arm resolved on ack alone, before the heartbeat reflected armed")
	case <-time.After(100 * time.Millisecond):
	}

	stub.send(dialect.Heartbeat{BaseMode: dialect.ModeFlagSafetyArmed})

	select {
	case err := <-armDone:
		if err != nil {
			t.Fatalf("Arm: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for Arm to resolve")
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Armed() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected Armed() true after arm heartbeat")
}

// TestSessionArmResolvesWhenHeartbeatArrivesBeforeAck checks the reverse
// arrival order also resolves Arm: a vehicle may broadcast the armed
// heartbeat before its ack makes it onto the wire.
func TestSessionArmResolvesWhenHeartbeatArrivesBeforeAck(t *testing.T) {
	s, stub, cleanup := newTestSession(t)
	defer cleanup()

	initDone := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		initDone <- s.Init(ctx)
	}()
	stub.waitFor(dialect.IDHeartbeat, 2*time.Second)
	stub.send(dialect.Heartbeat{})
	if err := <-initDone; err != nil {
		t.Fatalf("Init: %v", err)
	}

	armDone := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		armDone <- s.Arm(ctx)
	}()
	stub.waitFor(dialect.IDCommandLong, 2*time.Second)

	stub.send(dialect.Heartbeat{BaseMode: dialect.ModeFlagSafetyArmed})
	select {
	case <-armDone:
		t.Fatalf("Arm resolved on heartbeat alone, before the ack arrived")
	case <-time.After(100 * time.Millisecond):
	}

	stub.send(dialect.CommandAck{Command: dialect.CmdComponentArmDisarm, Result: dialect.CmdAckResultAccepted})
	select {
	case err := <-armDone:
		if err != nil {
			t.Fatalf("Arm: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for Arm to resolve")
	}
}

// TestSessionMirrorsTelemetry checks inbound telemetry updates the
// session's passive mirror accessors.
func TestSessionMirrorsTelemetry(t *testing.T) {
	s, stub, cleanup := newTestSession(t)
	defer cleanup()

	initDone := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		initDone <- s.Init(ctx)
	}()
	stub.waitFor(dialect.IDHeartbeat, 2*time.Second)
	stub.send(dialect.Heartbeat{})
	if err := <-initDone; err != nil {
		t.Fatalf("Init: %v", err)
	}

	stub.send(dialect.GlobalPositionInt{RelativeAlt: 5000})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if g, ok := s.GlobalPosition(); ok && g.RelativeAlt == 5000 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("GlobalPosition mirror never reflected the sent telemetry")
}

// TestSessionTakeoffRequiresAckAndActiveHeartbeat checks Takeoff waits for
// both its ack and an active-state heartbeat, in either order.
func TestSessionTakeoffRequiresAckAndActiveHeartbeat(t *testing.T) {
	s, stub, cleanup := newTestSession(t)
	defer cleanup()
	initSession(t, s, stub)

	takeoffDone := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		takeoffDone <- s.Takeoff(ctx, 10)
	}()
	stub.waitFor(dialect.IDCommandLong, 2*time.Second)

	stub.send(dialect.CommandAck{Command: dialect.CmdNavTakeoff, Result: dialect.CmdAckResultAccepted})
	select {
	case <-takeoffDone:
		t.Fatalf("Takeoff resolved on ack alone")
	case <-time.After(100 * time.Millisecond):
	}

	stub.send(dialect.Heartbeat{SystemStatus: dialect.SystemStateActive})
	select {
	case err := <-takeoffDone:
		if err != nil {
			t.Fatalf("Takeoff: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for Takeoff to resolve")
	}
}

// TestSessionTakeoffRejectedAckFailsFast checks a non-accepted ack fails
// Takeoff immediately rather than waiting on a heartbeat that may never
// reflect the active state.
func TestSessionTakeoffRejectedAckFailsFast(t *testing.T) {
	s, stub, cleanup := newTestSession(t)
	defer cleanup()
	initSession(t, s, stub)

	takeoffDone := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		takeoffDone <- s.Takeoff(ctx, 10)
	}()
	stub.waitFor(dialect.IDCommandLong, 2*time.Second)
	stub.send(dialect.CommandAck{Command: dialect.CmdNavTakeoff, Result: dialect.CmdAckResultFailed})

	select {
	case err := <-takeoffDone:
		if err == nil {
			t.Fatalf("expected Takeoff to fail on a rejected ack")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for Takeoff to fail")
	}
}

// TestSessionGotoResolvesWithinTolerance checks Goto blocks until the
// reported local position is within tolerance of the commanded target.
func TestSessionGotoResolvesWithinTolerance(t *testing.T) {
	s, stub, cleanup := newTestSession(t)
	defer cleanup()
	initSession(t, s, stub)

	gotoDone := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		gotoDone <- s.Goto(ctx, 10, 20, -5, 1.0)
	}()
	stub.waitFor(dialect.IDSetPositionTargetLocalNED, 2*time.Second)

	stub.send(dialect.LocalPositionNED{X: 10, Y: 20, Z: -50})
	select {
	case <-gotoDone:
		t.Fatalf("Goto resolved far outside tolerance")
	case <-time.After(100 * time.Millisecond):
	}

	stub.send(dialect.LocalPositionNED{X: 10.2, Y: 19.9, Z: -5.3})
	select {
	case err := <-gotoDone:
		if err != nil {
			t.Fatalf("Goto: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for Goto to resolve")
	}
}

// TestSessionGotoWithRetryResendsSetpoint checks WithRetry causes Goto to
// re-send the position target on the given interval while unresolved, and
// stops resending once the tolerance is met.
func TestSessionGotoWithRetryResendsSetpoint(t *testing.T) {
	s, stub, cleanup := newTestSession(t)
	defer cleanup()
	initSession(t, s, stub)

	gotoDone := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		gotoDone <- s.Goto(ctx, 10, 20, -5, 1.0, WithRetry(20*time.Millisecond))
	}()

	stub.waitFor(dialect.IDSetPositionTargetLocalNED, 2*time.Second)
	stub.waitFor(dialect.IDSetPositionTargetLocalNED, 2*time.Second)

	stub.send(dialect.LocalPositionNED{X: 10, Y: 20, Z: -5})
	select {
	case err := <-gotoDone:
		if err != nil {
			t.Fatalf("Goto: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for Goto to resolve")
	}
}

// TestSessionWaitAltitudeAlreadySatisfied checks WaitAltitude returns
// immediately when the mirror already reflects the target altitude,
// without installing a watcher the vehicle might never satisfy again.
func TestSessionWaitAltitudeAlreadySatisfied(t *testing.T) {
	s, stub, cleanup := newTestSession(t)
	defer cleanup()
	initSession(t, s, stub)

	stub.send(dialect.LocalPositionNED{Z: -10})
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if l, ok := s.LocalPosition(); ok && l.Z == -10 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.WaitAltitude(ctx, 10, 0.5); err != nil {
		t.Fatalf("WaitAltitude: %v", err)
	}
}

// TestSessionWaitAltitudeWatchesLocalNED checks WaitAltitude resolves on a
// LOCAL_POSITION_NED whose -z altitude reaches the target, and ignores
// reports outside tolerance.
func TestSessionWaitAltitudeWatchesLocalNED(t *testing.T) {
	s, stub, cleanup := newTestSession(t)
	defer cleanup()
	initSession(t, s, stub)

	waitDone := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		waitDone <- s.WaitAltitude(ctx, 15, 2.0)
	}()

	stub.send(dialect.LocalPositionNED{Z: -3})
	select {
	case <-waitDone:
		t.Fatalf("WaitAltitude resolved far below the target altitude")
	case <-time.After(100 * time.Millisecond):
	}

	stub.send(dialect.LocalPositionNED{Z: -14.5})
	select {
	case err := <-waitDone:
		if err != nil {
			t.Fatalf("WaitAltitude: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for WaitAltitude to resolve")
	}
}

// TestSessionSetModeResolvesOnEchoedCustomMode checks SetMode resolves only
// once a heartbeat carries the custom-mode-enabled bit and the requested
// custom mode, ignoring heartbeats still reporting the old mode.
func TestSessionSetModeResolvesOnEchoedCustomMode(t *testing.T) {
	s, stub, cleanup := newTestSession(t)
	defer cleanup()
	initSession(t, s, stub)

	modeDone := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		modeDone <- s.SetMode(ctx, dialect.ModeFlagCustomEnable, 4)
	}()
	stub.waitFor(dialect.IDSetMode, 2*time.Second)

	// Old mode still being broadcast: not a confirmation.
	stub.send(dialect.Heartbeat{BaseMode: dialect.ModeFlagCustomEnable, CustomMode: 0})
	select {
	case <-modeDone:
		t.Fatalf("SetMode resolved on a heartbeat with the old custom mode")
	case <-time.After(100 * time.Millisecond):
	}

	// The armed bit alongside the custom-mode bit must not prevent a match.
	stub.send(dialect.Heartbeat{BaseMode: dialect.ModeFlagCustomEnable | dialect.ModeFlagSafetyArmed, CustomMode: 4})
	select {
	case err := <-modeDone:
		if err != nil {
			t.Fatalf("SetMode: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for SetMode to resolve")
	}
}

// initSession drives a vehicleStub through Init so a test can issue
// commands without repeating the heartbeat handshake each time.
func initSession(t *testing.T, s *Session, stub *vehicleStub) {
	t.Helper()
	initDone := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		initDone <- s.Init(ctx)
	}()
	stub.waitFor(dialect.IDHeartbeat, 2*time.Second)
	stub.send(dialect.Heartbeat{})
	if err := <-initDone; err != nil {
		t.Fatalf("Init: %v", err)
	}
	stub.waitFor(dialect.IDParamRequestList, 2*time.Second)
	stub.waitFor(dialect.IDRequestDataStream, 2*time.Second)
}
