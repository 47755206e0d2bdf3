package dialect

// RCChannelsRaw reports raw receiver PWM values for one RC port.
type RCChannelsRaw struct {
	TimeBootMs                             uint32
	Chan1Raw, Chan2Raw, Chan3Raw, Chan4Raw uint16
	Chan5Raw, Chan6Raw, Chan7Raw, Chan8Raw uint16
	Port                                   uint8
	RSSI                                   uint8
}

func (RCChannelsRaw) MessageID() uint8    { return IDRCChannelsRaw }
func (RCChannelsRaw) MessageName() string { return "RC_CHANNELS_RAW" }

var rcChannelsRawFields = []fieldSpec{
	{name: "time_boot_ms", typeToken: "uint32_t"},
	{name: "chan1_raw", typeToken: "uint16_t"},
	{name: "chan2_raw", typeToken: "uint16_t"},
	{name: "chan3_raw", typeToken: "uint16_t"},
	{name: "chan4_raw", typeToken: "uint16_t"},
	{name: "chan5_raw", typeToken: "uint16_t"},
	{name: "chan6_raw", typeToken: "uint16_t"},
	{name: "chan7_raw", typeToken: "uint16_t"},
	{name: "chan8_raw", typeToken: "uint16_t"},
	{name: "port", typeToken: "uint8_t"},
	{name: "rssi", typeToken: "uint8_t"},
}

const rcChannelsRawWireLen = 4 + 2*8 + 1*2

func parseRCChannelsRaw(payload []byte) (Message, error) {
	p := pad(payload, rcChannelsRawWireLen)
	return RCChannelsRaw{
		TimeBootMs: getU32(p[0:4]),
		Chan1Raw:   getU16(p[4:6]),
		Chan2Raw:   getU16(p[6:8]),
		Chan3Raw:   getU16(p[8:10]),
		Chan4Raw:   getU16(p[10:12]),
		Chan5Raw:   getU16(p[12:14]),
		Chan6Raw:   getU16(p[14:16]),
		Chan7Raw:   getU16(p[16:18]),
		Chan8Raw:   getU16(p[18:20]),
		Port:       p[20],
		RSSI:       p[21],
	}, nil
}

func serializeRCChannelsRaw(m Message) []byte {
	r := m.(RCChannelsRaw)
	out := make([]byte, rcChannelsRawWireLen)
	putU32(out[0:4], r.TimeBootMs)
	putU16(out[4:6], r.Chan1Raw)
	putU16(out[6:8], r.Chan2Raw)
	putU16(out[8:10], r.Chan3Raw)
	putU16(out[10:12], r.Chan4Raw)
	putU16(out[12:14], r.Chan5Raw)
	putU16(out[14:16], r.Chan6Raw)
	putU16(out[16:18], r.Chan7Raw)
	putU16(out[18:20], r.Chan8Raw)
	out[20] = r.Port
	out[21] = r.RSSI
	return out
}

func init() {
	register(IDRCChannelsRaw, "RC_CHANNELS_RAW", rcChannelsRawFields, parseRCChannelsRaw, serializeRCChannelsRaw)
}

// ServoOutputRaw reports raw actuator PWM outputs for one servo port.
type ServoOutputRaw struct {
	TimeUsec                                   uint32
	Servo1Raw, Servo2Raw, Servo3Raw, Servo4Raw uint16
	Servo5Raw, Servo6Raw, Servo7Raw, Servo8Raw uint16
	Port                                       uint8
}

func (ServoOutputRaw) MessageID() uint8    { return IDServoOutputRaw }
func (ServoOutputRaw) MessageName() string { return "SERVO_OUTPUT_RAW" }

var servoOutputRawFields = []fieldSpec{
	{name: "time_usec", typeToken: "uint32_t"},
	{name: "servo1_raw", typeToken: "uint16_t"},
	{name: "servo2_raw", typeToken: "uint16_t"},
	{name: "servo3_raw", typeToken: "uint16_t"},
	{name: "servo4_raw", typeToken: "uint16_t"},
	{name: "servo5_raw", typeToken: "uint16_t"},
	{name: "servo6_raw", typeToken: "uint16_t"},
	{name: "servo7_raw", typeToken: "uint16_t"},
	{name: "servo8_raw", typeToken: "uint16_t"},
	{name: "port", typeToken: "uint8_t"},
}

const servoOutputRawWireLen = 4 + 2*8 + 1

func parseServoOutputRaw(payload []byte) (Message, error) {
	p := pad(payload, servoOutputRawWireLen)
	return ServoOutputRaw{
		TimeUsec:  getU32(p[0:4]),
		Servo1Raw: getU16(p[4:6]),
		Servo2Raw: getU16(p[6:8]),
		Servo3Raw: getU16(p[8:10]),
		Servo4Raw: getU16(p[10:12]),
		Servo5Raw: getU16(p[12:14]),
		Servo6Raw: getU16(p[14:16]),
		Servo7Raw: getU16(p[16:18]),
		Servo8Raw: getU16(p[18:20]),
		Port:      p[20],
	}, nil
}

func serializeServoOutputRaw(m Message) []byte {
	s := m.(ServoOutputRaw)
	out := make([]byte, servoOutputRawWireLen)
	putU32(out[0:4], s.TimeUsec)
	putU16(out[4:6], s.Servo1Raw)
	putU16(out[6:8], s.Servo2Raw)
	putU16(out[8:10], s.Servo3Raw)
	putU16(out[10:12], s.Servo4Raw)
	putU16(out[12:14], s.Servo5Raw)
	putU16(out[14:16], s.Servo6Raw)
	putU16(out[16:18], s.Servo7Raw)
	putU16(out[18:20], s.Servo8Raw)
	out[20] = s.Port
	return out
}

func init() {
	register(IDServoOutputRaw, "SERVO_OUTPUT_RAW", servoOutputRawFields, parseServoOutputRaw, serializeServoOutputRaw)
}

// NavControllerOutput reports the autopilot's current guidance targets.
type NavControllerOutput struct {
	NavRoll, NavPitch                float32
	AltError, AspdError, XtrackError float32
	NavBearing, TargetBearing        int16
	WPDist                           uint16
}

func (NavControllerOutput) MessageID() uint8    { return IDNavControllerOutput }
func (NavControllerOutput) MessageName() string { return "NAV_CONTROLLER_OUTPUT" }

var navControllerOutputFields = []fieldSpec{
	{name: "nav_roll", typeToken: "float"},
	{name: "nav_pitch", typeToken: "float"},
	{name: "alt_error", typeToken: "float"},
	{name: "aspd_error", typeToken: "float"},
	{name: "xtrack_error", typeToken: "float"},
	{name: "nav_bearing", typeToken: "int16_t"},
	{name: "target_bearing", typeToken: "int16_t"},
	{name: "wp_dist", typeToken: "uint16_t"},
}

const navControllerOutputWireLen = 4*5 + 2*3

func parseNavControllerOutput(payload []byte) (Message, error) {
	p := pad(payload, navControllerOutputWireLen)
	return NavControllerOutput{
		NavRoll:       getFloat32(p[0:4]),
		NavPitch:      getFloat32(p[4:8]),
		AltError:      getFloat32(p[8:12]),
		AspdError:     getFloat32(p[12:16]),
		XtrackError:   getFloat32(p[16:20]),
		NavBearing:    getI16(p[20:22]),
		TargetBearing: getI16(p[22:24]),
		WPDist:        getU16(p[24:26]),
	}, nil
}

func serializeNavControllerOutput(m Message) []byte {
	n := m.(NavControllerOutput)
	out := make([]byte, navControllerOutputWireLen)
	putFloat32(out[0:4], n.NavRoll)
	putFloat32(out[4:8], n.NavPitch)
	putFloat32(out[8:12], n.AltError)
	putFloat32(out[12:16], n.AspdError)
	putFloat32(out[16:20], n.XtrackError)
	putI16(out[20:22], n.NavBearing)
	putI16(out[22:24], n.TargetBearing)
	putU16(out[24:26], n.WPDist)
	return out
}

func init() {
	register(IDNavControllerOutput, "NAV_CONTROLLER_OUTPUT", navControllerOutputFields, parseNavControllerOutput, serializeNavControllerOutput)
}

// VFRHUD mirrors the classic "HUD" instrument cluster.
type VFRHUD struct {
	Airspeed, Groundspeed float32
	Heading               int16
	Throttle              uint16
	Alt, Climb            float32
}

func (VFRHUD) MessageID() uint8    { return IDVFRHUD }
func (VFRHUD) MessageName() string { return "VFR_HUD" }

var vfrHUDFields = []fieldSpec{
	{name: "airspeed", typeToken: "float"},
	{name: "groundspeed", typeToken: "float"},
	{name: "alt", typeToken: "float"},
	{name: "climb", typeToken: "float"},
	{name: "heading", typeToken: "int16_t"},
	{name: "throttle", typeToken: "uint16_t"},
}

const vfrHUDWireLen = 4*4 + 2*2

func parseVFRHUD(payload []byte) (Message, error) {
	p := pad(payload, vfrHUDWireLen)
	return VFRHUD{
		Airspeed:    getFloat32(p[0:4]),
		Groundspeed: getFloat32(p[4:8]),
		Alt:         getFloat32(p[8:12]),
		Climb:       getFloat32(p[12:16]),
		Heading:     getI16(p[16:18]),
		Throttle:    getU16(p[18:20]),
	}, nil
}

func serializeVFRHUD(m Message) []byte {
	v := m.(VFRHUD)
	out := make([]byte, vfrHUDWireLen)
	putFloat32(out[0:4], v.Airspeed)
	putFloat32(out[4:8], v.Groundspeed)
	putFloat32(out[8:12], v.Alt)
	putFloat32(out[12:16], v.Climb)
	putI16(out[16:18], v.Heading)
	putU16(out[18:20], v.Throttle)
	return out
}

func init() {
	register(IDVFRHUD, "VFR_HUD", vfrHUDFields, parseVFRHUD, serializeVFRHUD)
}

// MissionCurrent reports the index of the mission item currently being run.
type MissionCurrent struct {
	Seq uint16
}

func (MissionCurrent) MessageID() uint8    { return IDMissionCurrent }
func (MissionCurrent) MessageName() string { return "MISSION_CURRENT" }

var missionCurrentFields = []fieldSpec{
	{name: "seq", typeToken: "uint16_t"},
}

func parseMissionCurrent(payload []byte) (Message, error) {
	p := pad(payload, 2)
	return MissionCurrent{Seq: getU16(p[0:2])}, nil
}

func serializeMissionCurrent(m Message) []byte {
	mc := m.(MissionCurrent)
	out := make([]byte, 2)
	putU16(out[0:2], mc.Seq)
	return out
}

func init() {
	register(IDMissionCurrent, "MISSION_CURRENT", missionCurrentFields, parseMissionCurrent, serializeMissionCurrent)
}
