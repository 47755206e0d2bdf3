package dialect

import (
	"sort"

	"github.com/kstaniek/mavgcs/internal/mavlink/crc16"
)

// fieldSpec describes one field of a message body as it appears in the XML
// dialect definition: the type token exactly as written there (which for one
// historical field is "uint8_t_mavlink_version", not "uint8_t"), the field
// name, and an array length (0 for scalars). Wire order and the extra-CRC
// byte are computed from these once per message type at package init,
// never re-derived per call.
type fieldSpec struct {
	name      string
	typeToken string
	arrayLen  int // 0 for scalar fields
}

// elemSize returns the storage size of one element of the field's type.
func elemSize(typeToken string) int {
	switch typeToken {
	case "char", "int8_t", "uint8_t", "uint8_t_mavlink_version":
		return 1
	case "int16_t", "uint16_t":
		return 2
	case "int32_t", "uint32_t", "float":
		return 4
	case "int64_t", "uint64_t", "double", "Double":
		return 8
	default:
		panic("dialect: unknown field type " + typeToken)
	}
}

// wireBytes is the total bytes this field occupies on the wire.
func (f fieldSpec) wireBytes() int {
	if f.arrayLen > 0 {
		return elemSize(f.typeToken) * f.arrayLen
	}
	return elemSize(f.typeToken)
}

// wireOrder reorders fields largest-element-first (8->4->2->1 bytes), ties
// broken by declaration order, per MAVLink v1's on-the-wire field packing.
// Arrays are ordered by their element size, not their total size.
func wireOrder(fields []fieldSpec) []fieldSpec {
	ordered := make([]fieldSpec, len(fields))
	copy(ordered, fields)
	sort.SliceStable(ordered, func(i, j int) bool {
		return elemSize(ordered[i].typeToken) > elemSize(ordered[j].typeToken)
	})
	return ordered
}

// extraCRC computes the schema-derived version byte for a message: a
// CRC-16/MCRF4XX run over the message name and, for each field in wire
// order, its type token, its name, and (for arrays) its length — folded
// down to one byte. This is the same derivation MAVLink's own generator
// uses, which is why it reproduces the well-known values (HEARTBEAT=50,
// STATUSTEXT=83) for the real field layouts of those messages.
func extraCRC(name string, fieldsInWireOrder []fieldSpec) byte {
	crc := crc16.Initial
	crc = crc16.Of([]byte(name+" "), crc)
	for _, f := range fieldsInWireOrder {
		tok := f.typeToken
		if tok == "uint8_t_mavlink_version" {
			// The XML parser rewrites this marker type to plain uint8_t
			// before the CRC derivation; the marker never reaches the wire
			// schema text.
			tok = "uint8_t"
		}
		crc = crc16.Of([]byte(tok+" "), crc)
		crc = crc16.Of([]byte(f.name+" "), crc)
		if f.arrayLen > 0 {
			crc = crc16.Accumulate(byte(f.arrayLen), crc)
		}
	}
	return byte(crc&0xFF) ^ byte(crc>>8)
}
