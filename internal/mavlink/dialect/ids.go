package dialect

// Message ids for the subset of the common dialect this client understands.
// This set covers everything the session's mirror and commands touch, plus
// the surrounding telemetry a ground station is normally fed.
const (
	IDHeartbeat                 = 0
	IDSysStatus                 = 1
	IDPing                      = 4
	IDSetMode                   = 11
	IDParamRequestList          = 21
	IDParamValue                = 22
	IDParamSet                  = 23
	IDGPSRawInt                 = 24
	IDAttitude                  = 30
	IDLocalPositionNED          = 32
	IDGlobalPositionInt         = 33
	IDRCChannelsRaw             = 35
	IDServoOutputRaw            = 36
	IDMissionCurrent            = 42
	IDGPSGlobalOrigin           = 49
	IDNavControllerOutput       = 62
	IDRequestDataStream         = 66
	IDDataStream                = 67
	IDVFRHUD                    = 74
	IDCommandLong               = 76
	IDCommandAck                = 77
	IDSetPositionTargetLocalNED = 84
	IDHomePosition              = 242
	IDExtendedSysState          = 245
	IDStatustext                = 253
)
