package catalog

import (
	"math"
	"strconv"
)

// Value is a reading produced by a sensor or a setting accepted by an actuator.
type Value interface {
	// String renders the value for logs and the readings log.
	String() string

	// Float returns the numeric form used for metrics.
	Float() float64
}

// Value domain limits.
const (
	MaxPercentage  = 100
	MaxWindSpeed   = 407 // km/h
	MinDewPoint    = -100
	MinTemperature = -273.15
	MaxHumidity    = 100
)

// PercentageValue is a position between 0 and 100 percent.
type PercentageValue struct {
	pct int
}

// NewPercentageValue validates that pct lies between 0 and 100.
func NewPercentageValue(pct int) (PercentageValue, error) {
	if pct < 0 || pct > MaxPercentage {
		return PercentageValue{}, invalid("value", "percentage must be between 0 and %d", MaxPercentage)
	}
	return PercentageValue{pct: pct}, nil
}

// Percent returns the position.
func (v PercentageValue) Percent() int { return v.pct }

func (v PercentageValue) String() string { return strconv.Itoa(v.pct) + "%" }
func (v PercentageValue) Float() float64 { return float64(v.pct) }

// PowerValue is an instantaneous power draw in watts.
type PowerValue struct {
	watts float64
}

// NewPowerValue validates that watts is a non-negative number.
func NewPowerValue(watts float64) (PowerValue, error) {
	if math.IsNaN(watts) || math.IsInf(watts, 0) {
		return PowerValue{}, invalid("value", "power must be a finite number")
	}
	if watts < 0 {
		return PowerValue{}, invalid("value", "power must not be negative")
	}
	return PowerValue{watts: watts}, nil
}

// Watts returns the power draw.
func (v PowerValue) Watts() float64 { return v.watts }

func (v PowerValue) String() string { return strconv.FormatFloat(v.watts, 'f', 1, 64) + "W" }
func (v PowerValue) Float() float64 { return v.watts }

// Direction is one of the eight compass points.
type Direction string

// Compass directions.
const (
	North     Direction = "N"
	NorthEast Direction = "NE"
	East      Direction = "E"
	SouthEast Direction = "SE"
	South     Direction = "S"
	SouthWest Direction = "SW"
	West      Direction = "W"
	NorthWest Direction = "NW"
)

// AllDirections returns the compass points clockwise from north.
func AllDirections() []Direction {
	return []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}
}

// IsValid reports whether d is a known compass point.
func (d Direction) IsValid() bool {
	for _, known := range AllDirections() {
		if d == known {
			return true
		}
	}
	return false
}

// WindValue pairs a speed in km/h with the direction the wind blows from.
type WindValue struct {
	speed     int
	direction Direction
}

// NewWindValue validates the speed range and the compass direction.
func NewWindValue(speed int, direction Direction) (WindValue, error) {
	if speed < 0 || speed > MaxWindSpeed {
		return WindValue{}, invalid("value", "wind speed must be between 0 and %d", MaxWindSpeed)
	}
	if !direction.IsValid() {
		return WindValue{}, invalid("value", "unknown wind direction %q", string(direction))
	}
	return WindValue{speed: speed, direction: direction}, nil
}

// Speed returns the wind speed in km/h.
func (v WindValue) Speed() int { return v.speed }

// Direction returns the compass direction.
func (v WindValue) Direction() Direction { return v.direction }

func (v WindValue) String() string { return strconv.Itoa(v.speed) + "km/h " + string(v.direction) }
func (v WindValue) Float() float64 { return float64(v.speed) }

// DewPointValue is a dew point in whole degrees Celsius.
type DewPointValue struct {
	celsius int
}

// NewDewPointValue validates that celsius is not below -100.
func NewDewPointValue(celsius int) (DewPointValue, error) {
	if celsius < MinDewPoint {
		return DewPointValue{}, invalid("value", "dew point must not be below %d", MinDewPoint)
	}
	return DewPointValue{celsius: celsius}, nil
}

// Celsius returns the dew point.
func (v DewPointValue) Celsius() int { return v.celsius }

func (v DewPointValue) String() string { return strconv.Itoa(v.celsius) + "°C" }
func (v DewPointValue) Float() float64 { return float64(v.celsius) }

// TemperatureValue is a temperature in degrees Celsius.
type TemperatureValue struct {
	celsius float64
}

// NewTemperatureValue rejects values below absolute zero.
func NewTemperatureValue(celsius float64) (TemperatureValue, error) {
	if math.IsNaN(celsius) || math.IsInf(celsius, 0) {
		return TemperatureValue{}, invalid("value", "temperature must be a finite number")
	}
	if celsius < MinTemperature {
		return TemperatureValue{}, invalid("value", "temperature must not be below absolute zero")
	}
	return TemperatureValue{celsius: celsius}, nil
}

// Celsius returns the temperature.
func (v TemperatureValue) Celsius() float64 { return v.celsius }

func (v TemperatureValue) String() string { return strconv.FormatFloat(v.celsius, 'f', 1, 64) + "°C" }
func (v TemperatureValue) Float() float64 { return v.celsius }

// HumidityValue is a relative humidity percentage.
type HumidityValue struct {
	pct int
}

// NewHumidityValue validates that pct lies between 0 and 100.
func NewHumidityValue(pct int) (HumidityValue, error) {
	if pct < 0 || pct > MaxHumidity {
		return HumidityValue{}, invalid("value", "humidity must be between 0 and %d", MaxHumidity)
	}
	return HumidityValue{pct: pct}, nil
}

// Percent returns the relative humidity.
func (v HumidityValue) Percent() int { return v.pct }

func (v HumidityValue) String() string { return strconv.Itoa(v.pct) + "%RH" }
func (v HumidityValue) Float() float64 { return float64(v.pct) }

// SwitchValue is an on/off state.
type SwitchValue bool

// Switch states.
const (
	Off SwitchValue = false
	On  SwitchValue = true
)

func (v SwitchValue) String() string {
	if v {
		return "on"
	}
	return "off"
}

func (v SwitchValue) Float() float64 {
	if v {
		return 1
	}
	return 0
}

// IntegerValue is a setting for an integer-bounded actuator.
// Range checks belong to the actuator that receives it.
type IntegerValue int

func (v IntegerValue) String() string { return strconv.Itoa(int(v)) }
func (v IntegerValue) Float() float64 { return float64(v) }

// DecimalValue is a setting for a decimal-bounded actuator.
type DecimalValue float64

func (v DecimalValue) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v DecimalValue) Float() float64 { return float64(v) }
