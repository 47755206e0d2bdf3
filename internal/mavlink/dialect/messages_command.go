package dialect

// MAV_CMD ids used by CommandLong.Command.
const (
	CmdComponentArmDisarm = 400
	CmdNavTakeoff         = 22
	CmdNavLand            = 21
	CmdRequestDataStream  = 66
)

// CommandAck result codes.
const (
	CmdAckResultAccepted = 0
	CmdAckResultFailed   = 4
)

// CommandLong issues a MAV_CMD with up to seven float parameters.
type CommandLong struct {
	Param1, Param2, Param3, Param4 float32
	Param5, Param6, Param7         float32
	Command                        uint16
	TargetSystem, TargetComponent  uint8
	Confirmation                   uint8
}

func (CommandLong) MessageID() uint8    { return IDCommandLong }
func (CommandLong) MessageName() string { return "COMMAND_LONG" }

var commandLongFields = []fieldSpec{
	{name: "param1", typeToken: "float"},
	{name: "param2", typeToken: "float"},
	{name: "param3", typeToken: "float"},
	{name: "param4", typeToken: "float"},
	{name: "param5", typeToken: "float"},
	{name: "param6", typeToken: "float"},
	{name: "param7", typeToken: "float"},
	{name: "command", typeToken: "uint16_t"},
	{name: "target_system", typeToken: "uint8_t"},
	{name: "target_component", typeToken: "uint8_t"},
	{name: "confirmation", typeToken: "uint8_t"},
}

const commandLongWireLen = 4*7 + 2 + 1*3

func parseCommandLong(payload []byte) (Message, error) {
	p := pad(payload, commandLongWireLen)
	return CommandLong{
		Param1:          getFloat32(p[0:4]),
		Param2:          getFloat32(p[4:8]),
		Param3:          getFloat32(p[8:12]),
		Param4:          getFloat32(p[12:16]),
		Param5:          getFloat32(p[16:20]),
		Param6:          getFloat32(p[20:24]),
		Param7:          getFloat32(p[24:28]),
		Command:         getU16(p[28:30]),
		TargetSystem:    p[30],
		TargetComponent: p[31],
		Confirmation:    p[32],
	}, nil
}

func serializeCommandLong(m Message) []byte {
	c := m.(CommandLong)
	out := make([]byte, commandLongWireLen)
	putFloat32(out[0:4], c.Param1)
	putFloat32(out[4:8], c.Param2)
	putFloat32(out[8:12], c.Param3)
	putFloat32(out[12:16], c.Param4)
	putFloat32(out[16:20], c.Param5)
	putFloat32(out[20:24], c.Param6)
	putFloat32(out[24:28], c.Param7)
	putU16(out[28:30], c.Command)
	out[30] = c.TargetSystem
	out[31] = c.TargetComponent
	out[32] = c.Confirmation
	return out
}

func init() {
	register(IDCommandLong, "COMMAND_LONG", commandLongFields, parseCommandLong, serializeCommandLong)
}

// CommandAck is the vehicle's response to a CommandLong.
type CommandAck struct {
	Command uint16
	Result  uint8
}

func (CommandAck) MessageID() uint8    { return IDCommandAck }
func (CommandAck) MessageName() string { return "COMMAND_ACK" }

var commandAckFields = []fieldSpec{
	{name: "command", typeToken: "uint16_t"},
	{name: "result", typeToken: "uint8_t"},
}

func parseCommandAck(payload []byte) (Message, error) {
	p := pad(payload, 3)
	return CommandAck{Command: getU16(p[0:2]), Result: p[2]}, nil
}

func serializeCommandAck(m Message) []byte {
	c := m.(CommandAck)
	out := make([]byte, 3)
	putU16(out[0:2], c.Command)
	out[2] = c.Result
	return out
}

func init() {
	register(IDCommandAck, "COMMAND_ACK", commandAckFields, parseCommandAck, serializeCommandAck)
}

// SetMode requests a change of the vehicle's base/custom mode.
type SetMode struct {
	CustomMode   uint32
	TargetSystem uint8
	BaseMode     uint8
}

func (SetMode) MessageID() uint8    { return IDSetMode }
func (SetMode) MessageName() string { return "SET_MODE" }

var setModeFields = []fieldSpec{
	{name: "custom_mode", typeToken: "uint32_t"},
	{name: "target_system", typeToken: "uint8_t"},
	{name: "base_mode", typeToken: "uint8_t"},
}

func parseSetMode(payload []byte) (Message, error) {
	p := pad(payload, 6)
	return SetMode{
		CustomMode:   getU32(p[0:4]),
		TargetSystem: p[4],
		BaseMode:     p[5],
	}, nil
}

func serializeSetMode(m Message) []byte {
	s := m.(SetMode)
	out := make([]byte, 6)
	putU32(out[0:4], s.CustomMode)
	out[4] = s.TargetSystem
	out[5] = s.BaseMode
	return out
}

func init() {
	register(IDSetMode, "SET_MODE", setModeFields, parseSetMode, serializeSetMode)
}
