package dialect

// GPSRawInt is the raw GPS fix as received from the sensor.
type GPSRawInt struct {
	TimeUsec          uint64
	Lat               int32
	Lon               int32
	Alt               int32
	Eph               uint16
	Epv               uint16
	Vel               uint16
	Cog               uint16
	FixType           uint8
	SatellitesVisible uint8
}

func (GPSRawInt) MessageID() uint8    { return IDGPSRawInt }
func (GPSRawInt) MessageName() string { return "GPS_RAW_INT" }

var gpsRawIntFields = []fieldSpec{
	{name: "time_usec", typeToken: "uint64_t"},
	{name: "lat", typeToken: "int32_t"},
	{name: "lon", typeToken: "int32_t"},
	{name: "alt", typeToken: "int32_t"},
	{name: "eph", typeToken: "uint16_t"},
	{name: "epv", typeToken: "uint16_t"},
	{name: "vel", typeToken: "uint16_t"},
	{name: "cog", typeToken: "uint16_t"},
	{name: "fix_type", typeToken: "uint8_t"},
	{name: "satellites_visible", typeToken: "uint8_t"},
}

const gpsRawIntWireLen = 8 + 4*3 + 2*4 + 1*2

func parseGPSRawInt(payload []byte) (Message, error) {
	p := pad(payload, gpsRawIntWireLen)
	return GPSRawInt{
		TimeUsec:          getU64(p[0:8]),
		Lat:               getI32(p[8:12]),
		Lon:               getI32(p[12:16]),
		Alt:               getI32(p[16:20]),
		Eph:               getU16(p[20:22]),
		Epv:               getU16(p[22:24]),
		Vel:               getU16(p[24:26]),
		Cog:               getU16(p[26:28]),
		FixType:           p[28],
		SatellitesVisible: p[29],
	}, nil
}

func serializeGPSRawInt(m Message) []byte {
	g := m.(GPSRawInt)
	out := make([]byte, gpsRawIntWireLen)
	putU64(out[0:8], g.TimeUsec)
	putI32(out[8:12], g.Lat)
	putI32(out[12:16], g.Lon)
	putI32(out[16:20], g.Alt)
	putU16(out[20:22], g.Eph)
	putU16(out[22:24], g.Epv)
	putU16(out[24:26], g.Vel)
	putU16(out[26:28], g.Cog)
	out[28] = g.FixType
	out[29] = g.SatellitesVisible
	return out
}

func init() {
	register(IDGPSRawInt, "GPS_RAW_INT", gpsRawIntFields, parseGPSRawInt, serializeGPSRawInt)
}

// Attitude is the vehicle's Euler orientation and angular rates.
type Attitude struct {
	TimeBootMs uint32
	Roll       float32
	Pitch      float32
	Yaw        float32
	RollSpeed  float32
	PitchSpeed float32
	YawSpeed   float32
}

func (Attitude) MessageID() uint8    { return IDAttitude }
func (Attitude) MessageName() string { return "ATTITUDE" }

var attitudeFields = []fieldSpec{
	{name: "time_boot_ms", typeToken: "uint32_t"},
	{name: "roll", typeToken: "float"},
	{name: "pitch", typeToken: "float"},
	{name: "yaw", typeToken: "float"},
	{name: "rollspeed", typeToken: "float"},
	{name: "pitchspeed", typeToken: "float"},
	{name: "yawspeed", typeToken: "float"},
}

const attitudeWireLen = 4 * 7

func parseAttitude(payload []byte) (Message, error) {
	p := pad(payload, attitudeWireLen)
	return Attitude{
		TimeBootMs: getU32(p[0:4]),
		Roll:       getFloat32(p[4:8]),
		Pitch:      getFloat32(p[8:12]),
		Yaw:        getFloat32(p[12:16]),
		RollSpeed:  getFloat32(p[16:20]),
		PitchSpeed: getFloat32(p[20:24]),
		YawSpeed:   getFloat32(p[24:28]),
	}, nil
}

func serializeAttitude(m Message) []byte {
	a := m.(Attitude)
	out := make([]byte, attitudeWireLen)
	putU32(out[0:4], a.TimeBootMs)
	putFloat32(out[4:8], a.Roll)
	putFloat32(out[8:12], a.Pitch)
	putFloat32(out[12:16], a.Yaw)
	putFloat32(out[16:20], a.RollSpeed)
	putFloat32(out[20:24], a.PitchSpeed)
	putFloat32(out[24:28], a.YawSpeed)
	return out
}

func init() {
	register(IDAttitude, "ATTITUDE", attitudeFields, parseAttitude, serializeAttitude)
}

// LocalPositionNED is the vehicle's local-frame position/velocity (NED: z
// increases downward).
type LocalPositionNED struct {
	TimeBootMs uint32
	X, Y, Z    float32
	VX, VY, VZ float32
}

func (LocalPositionNED) MessageID() uint8    { return IDLocalPositionNED }
func (LocalPositionNED) MessageName() string { return "LOCAL_POSITION_NED" }

var localPositionNEDFields = []fieldSpec{
	{name: "time_boot_ms", typeToken: "uint32_t"},
	{name: "x", typeToken: "float"},
	{name: "y", typeToken: "float"},
	{name: "z", typeToken: "float"},
	{name: "vx", typeToken: "float"},
	{name: "vy", typeToken: "float"},
	{name: "vz", typeToken: "float"},
}

const localPositionNEDWireLen = 4 * 7

func parseLocalPositionNED(payload []byte) (Message, error) {
	p := pad(payload, localPositionNEDWireLen)
	return LocalPositionNED{
		TimeBootMs: getU32(p[0:4]),
		X:          getFloat32(p[4:8]),
		Y:          getFloat32(p[8:12]),
		Z:          getFloat32(p[12:16]),
		VX:         getFloat32(p[16:20]),
		VY:         getFloat32(p[20:24]),
		VZ:         getFloat32(p[24:28]),
	}, nil
}

func serializeLocalPositionNED(m Message) []byte {
	l := m.(LocalPositionNED)
	out := make([]byte, localPositionNEDWireLen)
	putU32(out[0:4], l.TimeBootMs)
	putFloat32(out[4:8], l.X)
	putFloat32(out[8:12], l.Y)
	putFloat32(out[12:16], l.Z)
	putFloat32(out[16:20], l.VX)
	putFloat32(out[20:24], l.VY)
	putFloat32(out[24:28], l.VZ)
	return out
}

func init() {
	register(IDLocalPositionNED, "LOCAL_POSITION_NED", localPositionNEDFields, parseLocalPositionNED, serializeLocalPositionNED)
}

// GlobalPositionInt is the vehicle's fused global position (int1e-7 degrees,
// millimeters).
type GlobalPositionInt struct {
	TimeBootMs  uint32
	Lat         int32
	Lon         int32
	Alt         int32
	RelativeAlt int32
	VX, VY, VZ  int16
	Hdg         uint16
}

func (GlobalPositionInt) MessageID() uint8    { return IDGlobalPositionInt }
func (GlobalPositionInt) MessageName() string { return "GLOBAL_POSITION_INT" }

var globalPositionIntFields = []fieldSpec{
	{name: "time_boot_ms", typeToken: "uint32_t"},
	{name: "lat", typeToken: "int32_t"},
	{name: "lon", typeToken: "int32_t"},
	{name: "alt", typeToken: "int32_t"},
	{name: "relative_alt", typeToken: "int32_t"},
	{name: "vx", typeToken: "int16_t"},
	{name: "vy", typeToken: "int16_t"},
	{name: "vz", typeToken: "int16_t"},
	{name: "hdg", typeToken: "uint16_t"},
}

const globalPositionIntWireLen = 4*5 + 2*4

func parseGlobalPositionInt(payload []byte) (Message, error) {
	p := pad(payload, globalPositionIntWireLen)
	return GlobalPositionInt{
		TimeBootMs:  getU32(p[0:4]),
		Lat:         getI32(p[4:8]),
		Lon:         getI32(p[8:12]),
		Alt:         getI32(p[12:16]),
		RelativeAlt: getI32(p[16:20]),
		VX:          getI16(p[20:22]),
		VY:          getI16(p[22:24]),
		VZ:          getI16(p[24:26]),
		Hdg:         getU16(p[26:28]),
	}, nil
}

func serializeGlobalPositionInt(m Message) []byte {
	g := m.(GlobalPositionInt)
	out := make([]byte, globalPositionIntWireLen)
	putU32(out[0:4], g.TimeBootMs)
	putI32(out[4:8], g.Lat)
	putI32(out[8:12], g.Lon)
	putI32(out[12:16], g.Alt)
	putI32(out[16:20], g.RelativeAlt)
	putI16(out[20:22], g.VX)
	putI16(out[22:24], g.VY)
	putI16(out[24:26], g.VZ)
	putU16(out[26:28], g.Hdg)
	return out
}

func init() {
	register(IDGlobalPositionInt, "GLOBAL_POSITION_INT", globalPositionIntFields, parseGlobalPositionInt, serializeGlobalPositionInt)
}

// GPSGlobalOrigin is the origin of the local NED frame, in global coordinates.
type GPSGlobalOrigin struct {
	Latitude  int32
	Longitude int32
	Altitude  int32
}

func (GPSGlobalOrigin) MessageID() uint8    { return IDGPSGlobalOrigin }
func (GPSGlobalOrigin) MessageName() string { return "GPS_GLOBAL_ORIGIN" }

var gpsGlobalOriginFields = []fieldSpec{
	{name: "latitude", typeToken: "int32_t"},
	{name: "longitude", typeToken: "int32_t"},
	{name: "altitude", typeToken: "int32_t"},
}

func parseGPSGlobalOrigin(payload []byte) (Message, error) {
	p := pad(payload, 12)
	return GPSGlobalOrigin{
		Latitude:  getI32(p[0:4]),
		Longitude: getI32(p[4:8]),
		Altitude:  getI32(p[8:12]),
	}, nil
}

func serializeGPSGlobalOrigin(m Message) []byte {
	g := m.(GPSGlobalOrigin)
	out := make([]byte, 12)
	putI32(out[0:4], g.Latitude)
	putI32(out[4:8], g.Longitude)
	putI32(out[8:12], g.Altitude)
	return out
}

func init() {
	register(IDGPSGlobalOrigin, "GPS_GLOBAL_ORIGIN", gpsGlobalOriginFields, parseGPSGlobalOrigin, serializeGPSGlobalOrigin)
}

// HomePosition is the takeoff/home location, both global and local-frame,
// with the surface orientation quaternion and approach vector.
type HomePosition struct {
	Latitude  int32
	Longitude int32
	Altitude  int32
	X, Y, Z   float32
	Q         [4]float32
	ApproachX float32
	ApproachY float32
	ApproachZ float32
}

func (HomePosition) MessageID() uint8    { return IDHomePosition }
func (HomePosition) MessageName() string { return "HOME_POSITION" }

var homePositionFields = []fieldSpec{
	{name: "latitude", typeToken: "int32_t"},
	{name: "longitude", typeToken: "int32_t"},
	{name: "altitude", typeToken: "int32_t"},
	{name: "x", typeToken: "float"},
	{name: "y", typeToken: "float"},
	{name: "z", typeToken: "float"},
	{name: "q", typeToken: "float", arrayLen: 4},
	{name: "approach_x", typeToken: "float"},
	{name: "approach_y", typeToken: "float"},
	{name: "approach_z", typeToken: "float"},
}

const homePositionWireLen = 4*3 + 4*3 + 4*4 + 4*3

func parseHomePosition(payload []byte) (Message, error) {
	p := pad(payload, homePositionWireLen)
	h := HomePosition{
		Latitude:  getI32(p[0:4]),
		Longitude: getI32(p[4:8]),
		Altitude:  getI32(p[8:12]),
		X:         getFloat32(p[12:16]),
		Y:         getFloat32(p[16:20]),
		Z:         getFloat32(p[20:24]),
		ApproachX: getFloat32(p[40:44]),
		ApproachY: getFloat32(p[44:48]),
		ApproachZ: getFloat32(p[48:52]),
	}
	for i := range h.Q {
		h.Q[i] = getFloat32(p[24+4*i : 28+4*i])
	}
	return h, nil
}

func serializeHomePosition(m Message) []byte {
	h := m.(HomePosition)
	out := make([]byte, homePositionWireLen)
	putI32(out[0:4], h.Latitude)
	putI32(out[4:8], h.Longitude)
	putI32(out[8:12], h.Altitude)
	putFloat32(out[12:16], h.X)
	putFloat32(out[16:20], h.Y)
	putFloat32(out[20:24], h.Z)
	for i, q := range h.Q {
		putFloat32(out[24+4*i:28+4*i], q)
	}
	putFloat32(out[40:44], h.ApproachX)
	putFloat32(out[44:48], h.ApproachY)
	putFloat32(out[48:52], h.ApproachZ)
	return out
}

func init() {
	register(IDHomePosition, "HOME_POSITION", homePositionFields, parseHomePosition, serializeHomePosition)
}

// ExtendedSysState reports VTOL/landed state beyond the base heartbeat.
type ExtendedSysState struct {
	VTOLState   uint8
	LandedState uint8
}

func (ExtendedSysState) MessageID() uint8    { return IDExtendedSysState }
func (ExtendedSysState) MessageName() string { return "EXTENDED_SYS_STATE" }

var extendedSysStateFields = []fieldSpec{
	{name: "vtol_state", typeToken: "uint8_t"},
	{name: "landed_state", typeToken: "uint8_t"},
}

func parseExtendedSysState(payload []byte) (Message, error) {
	p := pad(payload, 2)
	return ExtendedSysState{VTOLState: p[0], LandedState: p[1]}, nil
}

func serializeExtendedSysState(m Message) []byte {
	e := m.(ExtendedSysState)
	return []byte{e.VTOLState, e.LandedState}
}

func init() {
	register(IDExtendedSysState, "EXTENDED_SYS_STATE", extendedSysStateFields, parseExtendedSysState, serializeExtendedSysState)
}
