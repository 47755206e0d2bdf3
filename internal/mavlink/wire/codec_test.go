package wire

import (
	"bytes"
	"testing"
)

func fixedExtraCRC(id uint8) (byte, bool) {
	if id == 0 {
		return 50, true
	}
	return 0, false
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := NewCodec(fixedExtraCRC)
	in := Frame{Seq: 7, SystemID: 1, ComponentID: 1, MessageID: 0, Payload: []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}}
	encoded, err := c.Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var got []Frame
	buf := bytes.NewBuffer(encoded)
	c.Feed(buf, func(f Frame) { got = append(got, f) })

	if len(got) != 1 {
		t.Fatalf("expected 1 decoded frame, got %d", len(got))
	}
	if got[0].Seq != in.Seq || got[0].SystemID != in.SystemID || got[0].MessageID != in.MessageID {
		t.Fatalf("decoded frame mismatch: %+v vs %+v", got[0], in)
	}
	if !bytes.Equal(got[0].Payload, in.Payload) {
		t.Fatalf("payload mismatch: %v vs %v", got[0].Payload, in.Payload)
	}
}

// TestFeedChunked checks a frame split arbitrarily across multiple Feed
// calls still decodes once complete, the way a real socket read loop would
// deliver it.
func TestFeedChunked(t *testing.T) {
	c := NewCodec(fixedExtraCRC)
	encoded, err := c.Encode(Frame{Seq: 1, MessageID: 0, Payload: []byte{9, 9}})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var got []Frame
	buf := bytes.NewBuffer(nil)
	for i := range encoded {
		buf.WriteByte(encoded[i])
		c.Feed(buf, func(f Frame) { got = append(got, f) })
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 decoded frame across chunked feed, got %d", len(got))
	}
}

// TestFeedSkipsGarbagePrefix checks noise before a valid start byte is
// discarded without blocking the frame that follows.
func TestFeedSkipsGarbagePrefix(t *testing.T) {
	c := NewCodec(fixedExtraCRC)
	encoded, _ := c.Encode(Frame{Seq: 1, MessageID: 0, Payload: []byte{1}})
	noisy := append([]byte{0x00, 0xAA, 0x55}, encoded...)

	var got []Frame
	buf := bytes.NewBuffer(noisy)
	c.Feed(buf, func(f Frame) { got = append(got, f) })
	if len(got) != 1 {
		t.Fatalf("expected 1 decoded frame after garbage prefix, got %d", len(got))
	}
}

// TestFeedRejectsBadChecksum checks a corrupted payload is dropped instead
// of being delivered with a wrong value.
func TestFeedRejectsBadChecksum(t *testing.T) {
	c := NewCodec(fixedExtraCRC)
	encoded, _ := c.Encode(Frame{Seq: 1, MessageID: 0, Payload: []byte{1, 2, 3}})
	encoded[HeaderSize] ^= 0xFF // corrupt first payload byte without touching checksum

	var got []Frame
	buf := bytes.NewBuffer(encoded)
	c.Feed(buf, func(f Frame) { got = append(got, f) })
	if len(got) != 0 {
		t.Fatalf("expected corrupted frame to be rejected, got %d frames", len(got))
	}
}

// TestFeedUnknownMessageIDRejected checks a frame for an id with no
// extra-CRC entry is dropped, since its checksum can never be validated.
func TestFeedUnknownMessageIDRejected(t *testing.T) {
	c := NewCodec(fixedExtraCRC)
	out := []byte{StartByte, 2, 0, 1, 1, 99, 0, 0, 0, 0}
	var got []Frame
	buf := bytes.NewBuffer(out)
	c.Feed(buf, func(f Frame) { got = append(got, f) })
	if len(got) != 0 {
		t.Fatalf("expected unknown message id to be rejected, got %d frames", len(got))
	}
}

// TestFeedPartialFrameWaitsForMore checks an incomplete frame is left
// buffered rather than misparsed.
func TestFeedPartialFrameWaitsForMore(t *testing.T) {
	c := NewCodec(fixedExtraCRC)
	encoded, _ := c.Encode(Frame{Seq: 1, MessageID: 0, Payload: []byte{1, 2, 3, 4}})

	var got []Frame
	buf := bytes.NewBuffer(encoded[:len(encoded)-1])
	c.Feed(buf, func(f Frame) { got = append(got, f) })
	if len(got) != 0 {
		t.Fatalf("expected no frames from a truncated stream, got %d", len(got))
	}

	buf.WriteByte(encoded[len(encoded)-1])
	c.Feed(buf, func(f Frame) { got = append(got, f) })
	if len(got) != 1 {
		t.Fatalf("expected 1 frame once the stream completed, got %d", len(got))
	}
}

func TestEncodeRejectsOversizedPayload(t *testing.T) {
	c := NewCodec(fixedExtraCRC)
	_, err := c.Encode(Frame{MessageID: 0, Payload: make([]byte, MaxPayload+1)})
	if err == nil {
		t.Fatalf("expected error for oversized payload")
	}
}

func TestEncodeRejectsUnknownMessageID(t *testing.T) {
	c := NewCodec(fixedExtraCRC)
	_, err := c.Encode(Frame{MessageID: 250})
	if err == nil {
		t.Fatalf("expected error encoding an id with no extra-crc entry")
	}
}
