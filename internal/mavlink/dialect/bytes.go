package dialect

import (
	"encoding/binary"
	"math"
)

// putString writes s into a fixed-width field, truncating if needed and
// right-padding with zero bytes.
func putString(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// getString reads a fixed-width NUL-terminated/zero-padded field back into
// a Go string, stopping at the first zero byte.
func getString(src []byte) string {
	for i, b := range src {
		if b == 0 {
			return string(src[:i])
		}
	}
	return string(src)
}

func putU16(dst []byte, v uint16) { binary.LittleEndian.PutUint16(dst, v) }
func putU32(dst []byte, v uint32) { binary.LittleEndian.PutUint32(dst, v) }
func putU64(dst []byte, v uint64) { binary.LittleEndian.PutUint64(dst, v) }
func putI16(dst []byte, v int16)  { binary.LittleEndian.PutUint16(dst, uint16(v)) }
func putI32(dst []byte, v int32)  { binary.LittleEndian.PutUint32(dst, uint32(v)) }
func putFloat32(dst []byte, v float32) {
	binary.LittleEndian.PutUint32(dst, math.Float32bits(v))
}

func getU16(src []byte) uint16 { return binary.LittleEndian.Uint16(src) }
func getU32(src []byte) uint32 { return binary.LittleEndian.Uint32(src) }
func getU64(src []byte) uint64 { return binary.LittleEndian.Uint64(src) }
func getI16(src []byte) int16  { return int16(binary.LittleEndian.Uint16(src)) }
func getI32(src []byte) int32  { return int32(binary.LittleEndian.Uint32(src)) }
func getFloat32(src []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(src))
}

// pad returns payload zero-extended to at least width bytes. Real MAVLink
// senders routinely trim trailing zero bytes from a message's payload to
// save bandwidth, so a shorter-than-schema payload is normal, not
// malformed.
func pad(payload []byte, width int) []byte {
	if len(payload) >= width {
		return payload
	}
	out := make([]byte, width)
	copy(out, payload)
	return out
}
