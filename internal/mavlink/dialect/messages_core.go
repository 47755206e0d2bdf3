package dialect

// Heartbeat mode bits carried in BaseMode, per the MAVLink common dialect.
const (
	ModeFlagSafetyArmed  = 1 << 7
	ModeFlagCustomEnable = 1 << 0
)

// SystemStateActive is the MAV_STATE enum value HEARTBEAT.SystemStatus
// carries once the vehicle is airborne/active, used by Takeoff's predicate.
const SystemStateActive = 4

// Heartbeat is the periodic liveness/mode advertisement every MAVLink
// endpoint emits, typically at 1 Hz.
type Heartbeat struct {
	Type           uint8
	Autopilot      uint8
	BaseMode       uint8
	CustomMode     uint32
	SystemStatus   uint8
	MavlinkVersion uint8
}

func (Heartbeat) MessageID() uint8    { return IDHeartbeat }
func (Heartbeat) MessageName() string { return "HEARTBEAT" }

var heartbeatFields = []fieldSpec{
	{name: "type", typeToken: "uint8_t"},
	{name: "autopilot", typeToken: "uint8_t"},
	{name: "base_mode", typeToken: "uint8_t"},
	{name: "custom_mode", typeToken: "uint32_t"},
	{name: "system_status", typeToken: "uint8_t"},
	{name: "mavlink_version", typeToken: "uint8_t_mavlink_version"},
}

func parseHeartbeat(payload []byte) (Message, error) {
	p := pad(payload, 9)
	return Heartbeat{
		CustomMode:     getU32(p[0:4]),
		Type:           p[4],
		Autopilot:      p[5],
		BaseMode:       p[6],
		SystemStatus:   p[7],
		MavlinkVersion: p[8],
	}, nil
}

func serializeHeartbeat(m Message) []byte {
	h := m.(Heartbeat)
	out := make([]byte, 9)
	putU32(out[0:4], h.CustomMode)
	out[4] = h.Type
	out[5] = h.Autopilot
	out[6] = h.BaseMode
	out[7] = h.SystemStatus
	out[8] = h.MavlinkVersion
	return out
}

func init() {
	register(IDHeartbeat, "HEARTBEAT", heartbeatFields, parseHeartbeat, serializeHeartbeat)
}

// SysStatus reports onboard sensor health and battery state.
type SysStatus struct {
	OnboardControlSensorsPresent uint32
	OnboardControlSensorsEnabled uint32
	OnboardControlSensorsHealth  uint32
	Load                         uint16
	VoltageBattery               uint16
	CurrentBattery               int16
	DropRateComm                 uint16
	ErrorsComm                   uint16
	ErrorsCount1                 uint16
	ErrorsCount2                 uint16
	ErrorsCount3                 uint16
	ErrorsCount4                 uint16
	BatteryRemaining             int8
}

func (SysStatus) MessageID() uint8    { return IDSysStatus }
func (SysStatus) MessageName() string { return "SYS_STATUS" }

var sysStatusFields = []fieldSpec{
	{name: "onboard_control_sensors_present", typeToken: "uint32_t"},
	{name: "onboard_control_sensors_enabled", typeToken: "uint32_t"},
	{name: "onboard_control_sensors_health", typeToken: "uint32_t"},
	{name: "load", typeToken: "uint16_t"},
	{name: "voltage_battery", typeToken: "uint16_t"},
	{name: "current_battery", typeToken: "int16_t"},
	{name: "drop_rate_comm", typeToken: "uint16_t"},
	{name: "errors_comm", typeToken: "uint16_t"},
	{name: "errors_count1", typeToken: "uint16_t"},
	{name: "errors_count2", typeToken: "uint16_t"},
	{name: "errors_count3", typeToken: "uint16_t"},
	{name: "errors_count4", typeToken: "uint16_t"},
	{name: "battery_remaining", typeToken: "int8_t"},
}

const sysStatusWireLen = 4*3 + 2*9 + 1

func parseSysStatus(payload []byte) (Message, error) {
	p := pad(payload, sysStatusWireLen)
	return SysStatus{
		OnboardControlSensorsPresent: getU32(p[0:4]),
		OnboardControlSensorsEnabled: getU32(p[4:8]),
		OnboardControlSensorsHealth:  getU32(p[8:12]),
		Load:                         getU16(p[12:14]),
		VoltageBattery:               getU16(p[14:16]),
		CurrentBattery:               getI16(p[16:18]),
		DropRateComm:                 getU16(p[18:20]),
		ErrorsComm:                   getU16(p[20:22]),
		ErrorsCount1:                 getU16(p[22:24]),
		ErrorsCount2:                 getU16(p[24:26]),
		ErrorsCount3:                 getU16(p[26:28]),
		ErrorsCount4:                 getU16(p[28:30]),
		BatteryRemaining:             int8(p[30]),
	}, nil
}

func serializeSysStatus(m Message) []byte {
	s := m.(SysStatus)
	out := make([]byte, sysStatusWireLen)
	putU32(out[0:4], s.OnboardControlSensorsPresent)
	putU32(out[4:8], s.OnboardControlSensorsEnabled)
	putU32(out[8:12], s.OnboardControlSensorsHealth)
	putU16(out[12:14], s.Load)
	putU16(out[14:16], s.VoltageBattery)
	putI16(out[16:18], s.CurrentBattery)
	putU16(out[18:20], s.DropRateComm)
	putU16(out[20:22], s.ErrorsComm)
	putU16(out[22:24], s.ErrorsCount1)
	putU16(out[24:26], s.ErrorsCount2)
	putU16(out[26:28], s.ErrorsCount3)
	putU16(out[28:30], s.ErrorsCount4)
	out[30] = byte(s.BatteryRemaining)
	return out
}

func init() {
	register(IDSysStatus, "SYS_STATUS", sysStatusFields, parseSysStatus, serializeSysStatus)
}

// Statustext is a human-readable status line from the autopilot.
type Statustext struct {
	Severity uint8
	Text     string
}

func (Statustext) MessageID() uint8    { return IDStatustext }
func (Statustext) MessageName() string { return "STATUSTEXT" }

var statustextFields = []fieldSpec{
	{name: "severity", typeToken: "uint8_t"},
	{name: "text", typeToken: "char", arrayLen: 50},
}

func parseStatustext(payload []byte) (Message, error) {
	p := pad(payload, 51)
	return Statustext{
		Severity: p[0],
		Text:     getString(p[1:51]),
	}, nil
}

func serializeStatustext(m Message) []byte {
	s := m.(Statustext)
	out := make([]byte, 51)
	out[0] = s.Severity
	putString(out[1:51], s.Text)
	return out
}

func init() {
	register(IDStatustext, "STATUSTEXT", statustextFields, parseStatustext, serializeStatustext)
}

// Ping is a round-trip liveness probe.
type Ping struct {
	TimeUsec        uint64
	Seq             uint32
	TargetSystem    uint8
	TargetComponent uint8
}

func (Ping) MessageID() uint8    { return IDPing }
func (Ping) MessageName() string { return "PING" }

var pingFields = []fieldSpec{
	{name: "time_usec", typeToken: "uint64_t"},
	{name: "seq", typeToken: "uint32_t"},
	{name: "target_system", typeToken: "uint8_t"},
	{name: "target_component", typeToken: "uint8_t"},
}

func parsePing(payload []byte) (Message, error) {
	p := pad(payload, 14)
	return Ping{
		TimeUsec:        getU64(p[0:8]),
		Seq:             getU32(p[8:12]),
		TargetSystem:    p[12],
		TargetComponent: p[13],
	}, nil
}

func serializePing(m Message) []byte {
	pg := m.(Ping)
	out := make([]byte, 14)
	putU64(out[0:8], pg.TimeUsec)
	putU32(out[8:12], pg.Seq)
	out[12] = pg.TargetSystem
	out[13] = pg.TargetComponent
	return out
}

func init() {
	register(IDPing, "PING", pingFields, parsePing, serializePing)
}
