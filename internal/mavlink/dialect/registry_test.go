package dialect

import "testing"

// TestExtraCRCKnownValues pins the schema-derived extra-CRC byte against the
// well-known values for the two messages used on every connection
// (heartbeat exchange and status logging), so a change to field ordering or
// the accumulator would be caught immediately.
func TestExtraCRCKnownValues(t *testing.T) {
	cases := []struct {
		id   uint8
		want byte
	}{
		{IDHeartbeat, 50},
		{IDStatustext, 83},
	}
	for _, c := range cases {
		got, ok := ExtraCRC(c.id)
		if !ok {
			t.Fatalf("id %d: not registered", c.id)
		}
		if got != c.want {
			t.Errorf("id %d: extraCRC = %d, want %d", c.id, got, c.want)
		}
	}
}

// TestParseUnknownID reports ok=false rather than an error for an
// unregistered message id.
func TestParseUnknownID(t *testing.T) {
	if _, ok := Parse(255, nil); ok {
		t.Fatalf("Parse of unregistered id 255 returned ok=true")
	}
	if _, ok := ExtraCRC(255); ok {
		t.Fatalf("ExtraCRC of unregistered id 255 returned ok=true")
	}
}

// TestHeartbeatRoundTrip exercises serialize then parse for the message
// every connection starts with.
func TestHeartbeatRoundTrip(t *testing.T) {
	want := Heartbeat{Type: 6, Autopilot: 8, BaseMode: 1<<7 | 1, CustomMode: 42, SystemStatus: 4, MavlinkVersion: 3}
	payload, ok := Serialize(want)
	if !ok {
		t.Fatalf("Serialize(Heartbeat) returned ok=false")
	}
	got, ok := Parse(IDHeartbeat, payload)
	if !ok {
		t.Fatalf("Parse(IDHeartbeat) returned ok=false")
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

// TestParamValueRoundTrip exercises the fixed-width string field.
func TestParamValueRoundTrip(t *testing.T) {
	want := ParamValue{ParamID: "THR_MIN", ParamValue: 0.15, ParamType: 9, ParamCount: 700, ParamIndex: 12}
	payload, ok := Serialize(want)
	if !ok {
		t.Fatalf("Serialize(ParamValue) returned ok=false")
	}
	if len(payload) != paramValueWireLen {
		t.Fatalf("payload length = %d, want %d", len(payload), paramValueWireLen)
	}
	got, ok := Parse(IDParamValue, payload)
	if !ok {
		t.Fatalf("Parse(IDParamValue) returned ok=false")
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

// TestParamValueNameTruncation checks a name longer than the 16-byte field
// is truncated rather than overflowing adjacent fields.
func TestParamValueNameTruncation(t *testing.T) {
	long := "THIS_NAME_IS_WAY_TOO_LONG_FOR_MAVLINK"
	payload, _ := Serialize(ParamValue{ParamID: long, ParamCount: 1, ParamIndex: 0})
	got, ok := Parse(IDParamValue, payload)
	if !ok {
		t.Fatalf("Parse returned ok=false")
	}
	pv := got.(ParamValue)
	if len(pv.ParamID) > 16 {
		t.Fatalf("ParamID not truncated: %q (%d bytes)", pv.ParamID, len(pv.ParamID))
	}
}

// TestShortPayloadIsZeroPadded checks a trailing-zero-trimmed payload
// (the common real-world MAVLink sender behavior) still parses cleanly.
func TestShortPayloadIsZeroPadded(t *testing.T) {
	// Only the non-zero leading bytes of an ATTITUDE with everything 0
	// except time_boot_ms.
	full := make([]byte, attitudeWireLen)
	full[0] = 0x01
	trimmed := full[:1]
	got, ok := Parse(IDAttitude, trimmed)
	if !ok {
		t.Fatalf("Parse returned ok=false for short payload")
	}
	att := got.(Attitude)
	if att.TimeBootMs != 1 {
		t.Fatalf("TimeBootMs = %d, want 1", att.TimeBootMs)
	}
	if att.Roll != 0 || att.Yaw != 0 {
		t.Fatalf("expected zero-padded trailing fields, got %+v", att)
	}
}

// TestCommandLongRoundTrip exercises the seven-float-parameter command body.
func TestCommandLongRoundTrip(t *testing.T) {
	want := CommandLong{
		Command: CmdNavTakeoff, Param7: 12.5,
		TargetSystem: 1, TargetComponent: 1, Confirmation: 0,
	}
	payload, ok := Serialize(want)
	if !ok {
		t.Fatalf("Serialize returned ok=false")
	}
	got, ok := Parse(IDCommandLong, payload)
	if !ok {
		t.Fatalf("Parse returned ok=false")
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

// TestSetPositionTargetLocalNEDRoundTrip exercises the largest registered
// message body.
func TestSetPositionTargetLocalNEDRoundTrip(t *testing.T) {
	want := SetPositionTargetLocalNED{
		X: 1.5, Y: -2.5, Z: 3.0,
		TypeMask:        PositionTargetTypeMaskPositionOnly,
		CoordinateFrame: FrameLocalNED,
		TargetSystem:    1,
		TargetComponent: 1,
	}
	payload, ok := Serialize(want)
	if !ok {
		t.Fatalf("Serialize returned ok=false")
	}
	if len(payload) != setPositionTargetLocalNEDWireLen {
		t.Fatalf("payload length = %d, want %d", len(payload), setPositionTargetLocalNEDWireLen)
	}
	got, ok := Parse(IDSetPositionTargetLocalNED, payload)
	if !ok {
		t.Fatalf("Parse returned ok=false")
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}
