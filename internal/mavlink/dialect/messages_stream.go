package dialect

// RequestDataStream asks the vehicle to start or stop streaming a group of
// telemetry messages at a fixed rate.
type RequestDataStream struct {
	ReqMessageRate  uint16
	TargetSystem    uint8
	TargetComponent uint8
	ReqStreamID     uint8
	StartStop       uint8
}

func (RequestDataStream) MessageID() uint8    { return IDRequestDataStream }
func (RequestDataStream) MessageName() string { return "REQUEST_DATA_STREAM" }

var requestDataStreamFields = []fieldSpec{
	{name: "req_message_rate", typeToken: "uint16_t"},
	{name: "target_system", typeToken: "uint8_t"},
	{name: "target_component", typeToken: "uint8_t"},
	{name: "req_stream_id", typeToken: "uint8_t"},
	{name: "start_stop", typeToken: "uint8_t"},
}

func parseRequestDataStream(payload []byte) (Message, error) {
	p := pad(payload, 6)
	return RequestDataStream{
		ReqMessageRate:  getU16(p[0:2]),
		TargetSystem:    p[2],
		TargetComponent: p[3],
		ReqStreamID:     p[4],
		StartStop:       p[5],
	}, nil
}

func serializeRequestDataStream(m Message) []byte {
	r := m.(RequestDataStream)
	out := make([]byte, 6)
	putU16(out[0:2], r.ReqMessageRate)
	out[2] = r.TargetSystem
	out[3] = r.TargetComponent
	out[4] = r.ReqStreamID
	out[5] = r.StartStop
	return out
}

func init() {
	register(IDRequestDataStream, "REQUEST_DATA_STREAM", requestDataStreamFields, parseRequestDataStream, serializeRequestDataStream)
}

// DataStream reports the vehicle's current stream rate for one stream id.
type DataStream struct {
	MessageRate uint16
	StreamID    uint8
	OnOff       uint8
}

func (DataStream) MessageID() uint8    { return IDDataStream }
func (DataStream) MessageName() string { return "DATA_STREAM" }

var dataStreamFields = []fieldSpec{
	{name: "message_rate", typeToken: "uint16_t"},
	{name: "stream_id", typeToken: "uint8_t"},
	{name: "on_off", typeToken: "uint8_t"},
}

func parseDataStream(payload []byte) (Message, error) {
	p := pad(payload, 4)
	return DataStream{
		MessageRate: getU16(p[0:2]),
		StreamID:    p[2],
		OnOff:       p[3],
	}, nil
}

func serializeDataStream(m Message) []byte {
	d := m.(DataStream)
	out := make([]byte, 4)
	putU16(out[0:2], d.MessageRate)
	out[2] = d.StreamID
	out[3] = d.OnOff
	return out
}

func init() {
	register(IDDataStream, "DATA_STREAM", dataStreamFields, parseDataStream, serializeDataStream)
}
