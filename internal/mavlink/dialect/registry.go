package dialect

import "fmt"

// Message is the tagged-union contract every message body satisfies. The
// registry dispatches on MessageID(); the concrete type carries the typed
// fields.
type Message interface {
	MessageID() uint8
	MessageName() string
}

type parseFunc func([]byte) (Message, error)
type serializeFunc func(Message) []byte

type descriptor struct {
	name      string
	extraCRC  byte
	parse     parseFunc
	serialize serializeFunc
}

var registry = map[uint8]descriptor{}

// register computes the wire order and extra-CRC for a message's schema
// once, at package init, and wires it into the three dispatch tables
// (parse, serialize, extra-CRC) the registry exposes. The schema tables
// stand in for generated per-message code: same field order, endianness,
// and extra-CRC, without a generator binary in the build.
func register(id uint8, name string, fields []fieldSpec, parse parseFunc, serialize serializeFunc) {
	if _, dup := registry[id]; dup {
		panic(fmt.Sprintf("dialect: duplicate registration for message id %d", id))
	}
	registry[id] = descriptor{
		name:      name,
		extraCRC:  extraCRC(name, wireOrder(fields)),
		parse:     parse,
		serialize: serialize,
	}
}

// Parse decodes a message body by id. It returns ok=false for an id absent
// from the registry; the reactor treats that as drop-and-continue, not an
// error.
func Parse(id uint8, payload []byte) (msg Message, ok bool) {
	d, found := registry[id]
	if !found {
		return nil, false
	}
	m, err := d.parse(payload)
	if err != nil {
		return nil, false
	}
	return m, true
}

// Serialize encodes a message body. ok is false if the message's id was
// never registered (should not happen for messages this package defines).
func Serialize(msg Message) (payload []byte, ok bool) {
	d, found := registry[msg.MessageID()]
	if !found {
		return nil, false
	}
	return d.serialize(msg), true
}

// ExtraCRC returns the schema-derived version byte for a message id. It
// returns ok=false for unknown ids, which deliberately fails every checksum
// against that id (see internal/mavlink/wire.Codec).
func ExtraCRC(id uint8) (byte, bool) {
	d, found := registry[id]
	if !found {
		return 0, false
	}
	return d.extraCRC, true
}

// Name returns the registered message name for an id, mainly for logging
// and metrics labels.
func Name(id uint8) (string, bool) {
	d, found := registry[id]
	if !found {
		return "", false
	}
	return d.name, true
}
