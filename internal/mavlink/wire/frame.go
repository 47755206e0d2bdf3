// Package wire implements the MAVLink v1 frame format: the byte-stream
// framing and checksum layer beneath the message registry in
// internal/mavlink/dialect. It knows nothing about message bodies.
package wire

// StartByte marks the beginning of a MAVLink v1 frame on the wire.
const StartByte = 0xFE

// HeaderSize is the number of bytes preceding the payload: start byte,
// length, sequence, system id, component id, message id.
const HeaderSize = 6

// TrailerSize is the 16-bit little-endian checksum following the payload.
const TrailerSize = 2

// MaxPayload is the largest payload a v1 frame can carry.
const MaxPayload = 255

// Frame is one decoded (or to-be-encoded) MAVLink v1 frame. Sequence and
// sender ids are supplied by the caller; the codec does not own sequencing.
type Frame struct {
	Seq         uint8
	SystemID    uint8
	ComponentID uint8
	MessageID   uint8
	Payload     []byte
}

// Len is the on-wire payload length field.
func (f Frame) Len() uint8 { return uint8(len(f.Payload)) }
