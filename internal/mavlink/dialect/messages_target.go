package dialect

// Type-mask value for SetPositionTargetLocalNED.TypeMask that keeps the
// position bits and masks velocity, acceleration, and yaw out of the
// setpoint.
const (
	PositionTargetTypeMaskPositionOnly = 0x0FF8
)

// Coordinate frames for SetPositionTargetLocalNED.CoordinateFrame.
const (
	FrameLocalNED = 1
)

// SetPositionTargetLocalNED commands a local-frame position/velocity/
// acceleration setpoint.
type SetPositionTargetLocalNED struct {
	TimeBootMs      uint32
	X, Y, Z         float32
	VX, VY, VZ      float32
	AFX, AFY, AFZ   float32
	Yaw, YawRate    float32
	TypeMask        uint16
	TargetSystem    uint8
	TargetComponent uint8
	CoordinateFrame uint8
}

func (SetPositionTargetLocalNED) MessageID() uint8    { return IDSetPositionTargetLocalNED }
func (SetPositionTargetLocalNED) MessageName() string { return "SET_POSITION_TARGET_LOCAL_NED" }

var setPositionTargetLocalNEDFields = []fieldSpec{
	{name: "time_boot_ms", typeToken: "uint32_t"},
	{name: "x", typeToken: "float"},
	{name: "y", typeToken: "float"},
	{name: "z", typeToken: "float"},
	{name: "vx", typeToken: "float"},
	{name: "vy", typeToken: "float"},
	{name: "vz", typeToken: "float"},
	{name: "afx", typeToken: "float"},
	{name: "afy", typeToken: "float"},
	{name: "afz", typeToken: "float"},
	{name: "yaw", typeToken: "float"},
	{name: "yaw_rate", typeToken: "float"},
	{name: "type_mask", typeToken: "uint16_t"},
	{name: "target_system", typeToken: "uint8_t"},
	{name: "target_component", typeToken: "uint8_t"},
	{name: "coordinate_frame", typeToken: "uint8_t"},
}

const setPositionTargetLocalNEDWireLen = 4 + 4*11 + 2 + 1*3

func parseSetPositionTargetLocalNED(payload []byte) (Message, error) {
	p := pad(payload, setPositionTargetLocalNEDWireLen)
	return SetPositionTargetLocalNED{
		TimeBootMs:      getU32(p[0:4]),
		X:               getFloat32(p[4:8]),
		Y:               getFloat32(p[8:12]),
		Z:               getFloat32(p[12:16]),
		VX:              getFloat32(p[16:20]),
		VY:              getFloat32(p[20:24]),
		VZ:              getFloat32(p[24:28]),
		AFX:             getFloat32(p[28:32]),
		AFY:             getFloat32(p[32:36]),
		AFZ:             getFloat32(p[36:40]),
		Yaw:             getFloat32(p[40:44]),
		YawRate:         getFloat32(p[44:48]),
		TypeMask:        getU16(p[48:50]),
		TargetSystem:    p[50],
		TargetComponent: p[51],
		CoordinateFrame: p[52],
	}, nil
}

func serializeSetPositionTargetLocalNED(m Message) []byte {
	s := m.(SetPositionTargetLocalNED)
	out := make([]byte, setPositionTargetLocalNEDWireLen)
	putU32(out[0:4], s.TimeBootMs)
	putFloat32(out[4:8], s.X)
	putFloat32(out[8:12], s.Y)
	putFloat32(out[12:16], s.Z)
	putFloat32(out[16:20], s.VX)
	putFloat32(out[20:24], s.VY)
	putFloat32(out[24:28], s.VZ)
	putFloat32(out[28:32], s.AFX)
	putFloat32(out[32:36], s.AFY)
	putFloat32(out[36:40], s.AFZ)
	putFloat32(out[40:44], s.Yaw)
	putFloat32(out[44:48], s.YawRate)
	putU16(out[48:50], s.TypeMask)
	out[50] = s.TargetSystem
	out[51] = s.TargetComponent
	out[52] = s.CoordinateFrame
	return out
}

func init() {
	register(IDSetPositionTargetLocalNED, "SET_POSITION_TARGET_LOCAL_NED", setPositionTargetLocalNEDFields, parseSetPositionTargetLocalNED, serializeSetPositionTargetLocalNED)
}
