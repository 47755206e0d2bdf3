package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/kstaniek/mavgcs/internal/mavlink/crc16"
	"github.com/kstaniek/mavgcs/internal/metrics"
)

// ExtraCRC looks up the schema-derived extra-CRC byte for a message id.
// It reports false for unknown ids, which guarantees a checksum failure
// against any real frame carrying that id rather than an accidental accept.
type ExtraCRC func(messageID uint8) (byte, bool)

// Codec translates between a byte stream and a sequence of Frames. It is
// stateless except for the injected extra-CRC lookup, and safe for
// concurrent use.
type Codec struct {
	ExtraCRC ExtraCRC
}

// NewCodec builds a Codec bound to a dialect's extra-CRC table.
func NewCodec(extraCRC ExtraCRC) Codec { return Codec{ExtraCRC: extraCRC} }

// compactThreshold bounds buffer reclamation: below this size we never
// bother, since the copy cost outweighs the saved capacity.
const compactThreshold = 1024

// compact reclaims a buffer's consumed prefix capacity once it has grown
// large relative to the unread tail. Returns true if it compacted.
func compact(b *bytes.Buffer) bool {
	data := b.Bytes()
	if len(data) < compactThreshold {
		return false
	}
	if cap(data) > 0 && len(data)*4 < cap(data) {
		clone := make([]byte, len(data))
		copy(clone, data)
		b.Reset()
		_, _ = b.Write(clone)
		return true
	}
	return false
}

// Feed scans buf for complete, checksum-valid frames, invoking onFrame for
// each in wire order, and leaves any residual (possibly-partial) tail
// buffered for the next call. Bytes before a recognized start byte, and
// frames that fail CRC, are discarded without surfacing an error: a
// malformed link is expected to be lossy, and higher layers reconcile via
// state rather than frame retransmission.
func (c Codec) Feed(buf *bytes.Buffer, onFrame func(Frame)) {
	for {
		data := buf.Bytes()
		compact(buf)
		data = buf.Bytes()

		i := bytes.IndexByte(data, StartByte)
		if i < 0 {
			buf.Reset()
			return
		}
		if i > 0 {
			buf.Next(i)
			data = buf.Bytes()
		}

		if len(data) < HeaderSize+TrailerSize {
			return // need more input for even an empty-payload frame
		}
		length := int(data[1])
		total := HeaderSize + length + TrailerSize
		if len(data) < total {
			return // need more input
		}

		msgID := data[5]
		extra, ok := byte(0), false
		if c.ExtraCRC != nil {
			extra, ok = c.ExtraCRC(msgID)
		}
		crc := crc16.Of(data[1:HeaderSize+length], crc16.Initial)
		if ok {
			crc = crc16.Accumulate(extra, crc)
		}
		want := binary.LittleEndian.Uint16(data[HeaderSize+length : total])
		if !ok || crc != want {
			metrics.IncFrameRejected()
			buf.Next(1) // the start byte may have appeared inside a corrupted payload
			continue
		}

		payload := make([]byte, length)
		copy(payload, data[HeaderSize:HeaderSize+length])
		onFrame(Frame{
			Seq:         data[2],
			SystemID:    data[3],
			ComponentID: data[4],
			MessageID:   msgID,
			Payload:     payload,
		})
		metrics.IncFrameDecoded()
		buf.Next(total)
	}
}

// Encode assembles the wire bytes for f, computing the trailing checksum
// over the header+payload plus the message's extra-CRC byte.
func (c Codec) Encode(f Frame) ([]byte, error) {
	if len(f.Payload) > MaxPayload {
		return nil, fmt.Errorf("wire: payload too long (%d > %d)", len(f.Payload), MaxPayload)
	}
	extra, ok := byte(0), false
	if c.ExtraCRC != nil {
		extra, ok = c.ExtraCRC(f.MessageID)
	}
	if !ok {
		return nil, fmt.Errorf("wire: no extra-crc registered for message id %d", f.MessageID)
	}

	out := make([]byte, HeaderSize+len(f.Payload)+TrailerSize)
	out[0] = StartByte
	out[1] = f.Len()
	out[2] = f.Seq
	out[3] = f.SystemID
	out[4] = f.ComponentID
	out[5] = f.MessageID
	copy(out[HeaderSize:], f.Payload)

	crc := crc16.Of(out[1:HeaderSize+len(f.Payload)], crc16.Initial)
	crc = crc16.Accumulate(extra, crc)
	binary.LittleEndian.PutUint16(out[HeaderSize+len(f.Payload):], crc)
	return out, nil
}
