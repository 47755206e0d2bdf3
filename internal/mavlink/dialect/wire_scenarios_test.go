package dialect

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/kstaniek/mavgcs/internal/mavlink/crc16"
	"github.com/kstaniek/mavgcs/internal/mavlink/wire"
)

// TestExtraCRCFullTable pins every registered message's extra-CRC byte
// against the values MAVLink's own generator produces for the common
// dialect, so a wrong type token, a misdeclared field order, or a missing
// field in any schema table fails here rather than as an interop mystery.
func TestExtraCRCFullTable(t *testing.T) {
	want := map[uint8]byte{
		IDHeartbeat:                 50,
		IDSysStatus:                 124,
		IDPing:                      237,
		IDSetMode:                   89,
		IDParamRequestList:          159,
		IDParamValue:                220,
		IDParamSet:                  168,
		IDGPSRawInt:                 24,
		IDAttitude:                  39,
		IDLocalPositionNED:          185,
		IDGlobalPositionInt:         104,
		IDRCChannelsRaw:             244,
		IDServoOutputRaw:            222,
		IDMissionCurrent:            28,
		IDGPSGlobalOrigin:           39,
		IDNavControllerOutput:       183,
		IDRequestDataStream:         148,
		IDDataStream:                21,
		IDVFRHUD:                    20,
		IDCommandLong:               152,
		IDCommandAck:                143,
		IDSetPositionTargetLocalNED: 143,
		IDHomePosition:              104,
		IDExtendedSysState:          130,
		IDStatustext:                83,
	}
	if len(want) != len(registry) {
		t.Fatalf("table covers %d ids, registry has %d", len(want), len(registry))
	}
	for id, wantCRC := range want {
		got, ok := ExtraCRC(id)
		if !ok {
			t.Errorf("id %d: not registered", id)
			continue
		}
		if got != wantCRC {
			t.Errorf("id %d: extraCRC = %d, want %d", id, got, wantCRC)
		}
	}
}

// TestHeartbeatWireBytesLiteral checks the exact on-wire byte sequence for a
// GCS heartbeat from seq=0, sys=255, comp=0: the header and payload must be
// FE 09 00 FF 00 00 | 00 00 00 00 06 08 00 00 03, and the trailing checksum
// must be the CRC-16/MCRF4XX of bytes 1..14 with the heartbeat extra-CRC
// byte mixed in last.
func TestHeartbeatWireBytesLiteral(t *testing.T) {
	codec := wire.NewCodec(ExtraCRC)
	payload, ok := Serialize(Heartbeat{Type: 6, Autopilot: 8, MavlinkVersion: 3})
	if !ok {
		t.Fatalf("Serialize returned ok=false")
	}
	encoded, err := codec.Encode(wire.Frame{
		Seq:         0,
		SystemID:    255,
		ComponentID: 0,
		MessageID:   IDHeartbeat,
		Payload:     payload,
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	wantPrefix := []byte{
		0xFE, 0x09, 0x00, 0xFF, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x06, 0x08, 0x00, 0x00, 0x03,
	}
	if len(encoded) != len(wantPrefix)+2 {
		t.Fatalf("encoded length = %d, want %d", len(encoded), len(wantPrefix)+2)
	}
	if !bytes.Equal(encoded[:len(wantPrefix)], wantPrefix) {
		t.Fatalf("header+payload = % X, want % X", encoded[:len(wantPrefix)], wantPrefix)
	}

	crc := crc16.Of(wantPrefix[1:], crc16.Initial)
	crc = crc16.Accumulate(50, crc)
	if got := binary.LittleEndian.Uint16(encoded[len(wantPrefix):]); got != crc {
		t.Fatalf("checksum = %04X, want %04X", got, crc)
	}
}

// TestDecodeHeartbeatsSeparatedByNoiseStartBytes feeds two encoded
// heartbeats with three bare 0xFE bytes between them. The first stray start
// byte reads the second as a payload length of 254, so the decoder
// legitimately holds the tail until the stream carries enough bytes to
// prove the checksum wrong; once it does, the one-byte resync must recover
// the second heartbeat intact and yield exactly the two real frames and
// nothing else.
func TestDecodeHeartbeatsSeparatedByNoiseStartBytes(t *testing.T) {
	codec := wire.NewCodec(ExtraCRC)
	encode := func(seq uint8, hb Heartbeat) []byte {
		payload, _ := Serialize(hb)
		encoded, err := codec.Encode(wire.Frame{Seq: seq, SystemID: 1, ComponentID: 1, MessageID: IDHeartbeat, Payload: payload})
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		return encoded
	}

	var stream []byte
	stream = append(stream, encode(0, Heartbeat{Type: 6, Autopilot: 8, MavlinkVersion: 3})...)
	stream = append(stream, 0xFE, 0xFE, 0xFE)
	stream = append(stream, encode(1, Heartbeat{Type: 2, Autopilot: 3, SystemStatus: 4, MavlinkVersion: 3})...)

	var got []wire.Frame
	buf := bytes.NewBuffer(stream)
	codec.Feed(buf, func(f wire.Frame) { got = append(got, f) })

	// The noise frame's claimed 254-byte payload extends past the buffered
	// tail, so only the first heartbeat can have decoded yet.
	if len(got) != 1 {
		t.Fatalf("decoded %d frames before the stream continued, want 1", len(got))
	}

	// A live link keeps producing bytes; idle filler is enough to complete
	// the bogus frame, fail its checksum, and resync onto the real one.
	buf.Write(make([]byte, 300))
	codec.Feed(buf, func(f wire.Frame) { got = append(got, f) })

	if len(got) != 2 {
		t.Fatalf("decoded %d frames, want exactly 2", len(got))
	}
	for i, f := range got {
		if f.MessageID != IDHeartbeat {
			t.Fatalf("frame %d has message id %d, want HEARTBEAT", i, f.MessageID)
		}
	}
	second, ok := Parse(got[1].MessageID, got[1].Payload)
	if !ok {
		t.Fatalf("Parse of second frame failed")
	}
	if hb := second.(Heartbeat); hb.Type != 2 || hb.SystemStatus != 4 {
		t.Fatalf("second heartbeat = %+v, want Type=2 SystemStatus=4", hb)
	}
}

// TestDecodeDropsUnusedMessageID builds a frame for id 199 (absent from the
// dialect) with a checksum computed the only way a peer without the schema
// could (extra-CRC 0) and checks it is silently dropped: an id missing from
// the extra-CRC table must never decode.
func TestDecodeDropsUnusedMessageID(t *testing.T) {
	codec := wire.NewCodec(ExtraCRC)

	payload := []byte{1, 2, 3, 4}
	frame := []byte{0xFE, byte(len(payload)), 0, 1, 1, 199}
	frame = append(frame, payload...)
	crc := crc16.Of(frame[1:], crc16.Initial)
	frame = append(frame, byte(crc&0xFF), byte(crc>>8))

	var got []wire.Frame
	buf := bytes.NewBuffer(frame)
	codec.Feed(buf, func(f wire.Frame) { got = append(got, f) })
	if len(got) != 0 {
		t.Fatalf("decoded %d frames for unused id 199, want 0", len(got))
	}
}
