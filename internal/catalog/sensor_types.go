package catalog

// TypeInfo describes what a sensor measures or what an actuator controls.
//
// Type ids are shared between sensors and actuators: a blind's position
// feedback sensor and its roller actuator both use TypePosition. Which
// models accept a type is declared by ModelInfo.TypeIDs.
type TypeInfo struct {
	// ID is the value carried in Args.TypeID and persisted records.
	ID string

	// Description is a human-readable name for the type.
	Description string

	// Unit is the symbol readings and settings of this type are expressed
	// in. Binary types use "on/off".
	Unit string
}

// Type ids known to the catalog.
const (
	TypeTemperature = "temperature"
	TypeDewPoint    = "dew-point"
	TypeHumidity    = "humidity"
	TypePosition    = "position"
	TypePower       = "power"
	TypeWind        = "wind"
	TypeSwitch      = "switch"
	TypeSetpoint    = "setpoint"
	TypeFanSpeed    = "fan-speed"
	TypeLevel       = "level"
)

// catalogTypes lists the closed type table.
func catalogTypes() []TypeInfo {
	return []TypeInfo{
		{TypeTemperature, "Ambient temperature", "°C"},
		{TypeDewPoint, "Dew point", "°C"},
		{TypeHumidity, "Relative humidity", "%"},
		{TypePosition, "Position of a blind, shutter or valve", "%"},
		{TypePower, "Instantaneous power draw", "W"},
		{TypeWind, "Wind speed and direction", "km/h"},
		{TypeSwitch, "Switched load or contact", "on/off"},
		{TypeSetpoint, "Temperature setpoint", "°C"},
		{TypeFanSpeed, "Fan speed step", "step"},
		{TypeLevel, "Output level", "%"},
	}
}
