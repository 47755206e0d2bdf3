package dialect

// ParamRequestList asks the vehicle to stream every parameter once, via
// repeated PARAM_VALUE messages.
type ParamRequestList struct {
	TargetSystem    uint8
	TargetComponent uint8
}

func (ParamRequestList) MessageID() uint8    { return IDParamRequestList }
func (ParamRequestList) MessageName() string { return "PARAM_REQUEST_LIST" }

var paramRequestListFields = []fieldSpec{
	{name: "target_system", typeToken: "uint8_t"},
	{name: "target_component", typeToken: "uint8_t"},
}

func parseParamRequestList(payload []byte) (Message, error) {
	p := pad(payload, 2)
	return ParamRequestList{TargetSystem: p[0], TargetComponent: p[1]}, nil
}

func serializeParamRequestList(m Message) []byte {
	r := m.(ParamRequestList)
	return []byte{r.TargetSystem, r.TargetComponent}
}

func init() {
	register(IDParamRequestList, "PARAM_REQUEST_LIST", paramRequestListFields, parseParamRequestList, serializeParamRequestList)
}

// ParamValue is one entry of a parameter stream: its id, value, declared
// type, and position within the vehicle's full parameter count.
type ParamValue struct {
	ParamID    string
	ParamValue float32
	ParamType  uint8
	ParamCount uint16
	ParamIndex uint16
}

func (ParamValue) MessageID() uint8    { return IDParamValue }
func (ParamValue) MessageName() string { return "PARAM_VALUE" }

var paramValueFields = []fieldSpec{
	{name: "param_id", typeToken: "char", arrayLen: 16},
	{name: "param_value", typeToken: "float"},
	{name: "param_type", typeToken: "uint8_t"},
	{name: "param_count", typeToken: "uint16_t"},
	{name: "param_index", typeToken: "uint16_t"},
}

const paramValueWireLen = 4 + 2 + 2 + 16 + 1

func parseParamValue(payload []byte) (Message, error) {
	p := pad(payload, paramValueWireLen)
	return ParamValue{
		ParamValue: getFloat32(p[0:4]),
		ParamCount: getU16(p[4:6]),
		ParamIndex: getU16(p[6:8]),
		ParamID:    getString(p[8:24]),
		ParamType:  p[24],
	}, nil
}

func serializeParamValue(m Message) []byte {
	v := m.(ParamValue)
	out := make([]byte, paramValueWireLen)
	putFloat32(out[0:4], v.ParamValue)
	putU16(out[4:6], v.ParamCount)
	putU16(out[6:8], v.ParamIndex)
	putString(out[8:24], v.ParamID)
	out[24] = v.ParamType
	return out
}

func init() {
	register(IDParamValue, "PARAM_VALUE", paramValueFields, parseParamValue, serializeParamValue)
}

// ParamSet requests the vehicle adopt a new value for one named parameter.
// The vehicle echoes the resulting value back as a PARAM_VALUE, which is
// what confirms (or refutes) the set.
type ParamSet struct {
	ParamID         string
	ParamValue      float32
	ParamType       uint8
	TargetSystem    uint8
	TargetComponent uint8
}

func (ParamSet) MessageID() uint8    { return IDParamSet }
func (ParamSet) MessageName() string { return "PARAM_SET" }

var paramSetFields = []fieldSpec{
	{name: "target_system", typeToken: "uint8_t"},
	{name: "target_component", typeToken: "uint8_t"},
	{name: "param_id", typeToken: "char", arrayLen: 16},
	{name: "param_value", typeToken: "float"},
	{name: "param_type", typeToken: "uint8_t"},
}

const paramSetWireLen = 4 + 1 + 1 + 16 + 1

func parseParamSet(payload []byte) (Message, error) {
	p := pad(payload, paramSetWireLen)
	return ParamSet{
		ParamValue:      getFloat32(p[0:4]),
		TargetSystem:    p[4],
		TargetComponent: p[5],
		ParamID:         getString(p[6:22]),
		ParamType:       p[22],
	}, nil
}

func serializeParamSet(m Message) []byte {
	s := m.(ParamSet)
	out := make([]byte, paramSetWireLen)
	putFloat32(out[0:4], s.ParamValue)
	out[4] = s.TargetSystem
	out[5] = s.TargetComponent
	putString(out[6:22], s.ParamID)
	out[22] = s.ParamType
	return out
}

func init() {
	register(IDParamSet, "PARAM_SET", paramSetFields, parseParamSet, serializeParamSet)
}
