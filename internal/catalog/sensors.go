package catalog

import "math/rand/v2"

// Simulation ranges for sensors without a physical source.
const (
	maxSimulatedWatts     = 3680.0
	minSimulatedDewPoint  = -10
	dewPointSpread        = 41
	minSimulatedCelsius   = 15.0
	temperatureSpread     = 15.0
	simulatedDecimalPlace = 10
)

// PercentagePositionSensor reports a position between 0 and 100 percent.
type PercentagePositionSensor struct{ identity }

func (*PercentagePositionSensor) Kind() Kind { return KindSensor }
func (*PercentagePositionSensor) sensor()    {}

func (*PercentagePositionSensor) Value() Value {
	return PercentageValue{pct: rand.IntN(MaxPercentage + 1)}
}

// InstantPowerConsumptionSensor reports an instantaneous power draw.
type InstantPowerConsumptionSensor struct{ identity }

func (*InstantPowerConsumptionSensor) Kind() Kind { return KindSensor }
func (*InstantPowerConsumptionSensor) sensor()    {}

func (*InstantPowerConsumptionSensor) Value() Value {
	return PowerValue{watts: rounded(rand.Float64() * maxSimulatedWatts)}
}

// WindSensor reports a speed and compass direction.
type WindSensor struct{ identity }

func (*WindSensor) Kind() Kind { return KindSensor }
func (*WindSensor) sensor()    {}

func (*WindSensor) Value() Value {
	dirs := AllDirections()
	return WindValue{
		speed:     rand.IntN(MaxWindSpeed + 1),
		direction: dirs[rand.IntN(len(dirs))],
	}
}

// DewPointSensor reports a dew point in whole degrees Celsius.
type DewPointSensor struct{ identity }

func (*DewPointSensor) Kind() Kind { return KindSensor }
func (*DewPointSensor) sensor()    {}

func (*DewPointSensor) Value() Value {
	return DewPointValue{celsius: minSimulatedDewPoint + rand.IntN(dewPointSpread)}
}

// TemperatureSensor reports an ambient temperature.
type TemperatureSensor struct{ identity }

func (*TemperatureSensor) Kind() Kind { return KindSensor }
func (*TemperatureSensor) sensor()    {}

func (*TemperatureSensor) Value() Value {
	return TemperatureValue{celsius: rounded(minSimulatedCelsius + rand.Float64()*temperatureSpread)}
}

// HumiditySensor reports relative humidity.
type HumiditySensor struct{ identity }

func (*HumiditySensor) Kind() Kind { return KindSensor }
func (*HumiditySensor) sensor()    {}

func (*HumiditySensor) Value() Value {
	return HumidityValue{pct: rand.IntN(MaxHumidity + 1)}
}

// SwitchSensor reports whether a contact is closed.
type SwitchSensor struct{ identity }

func (*SwitchSensor) Kind() Kind { return KindSensor }
func (*SwitchSensor) sensor()    {}

func (*SwitchSensor) Value() Value {
	return SwitchValue(rand.IntN(2) == 1)
}

// rounded keeps one decimal place.
func rounded(f float64) float64 {
	return float64(int(f*simulatedDecimalPlace)) / simulatedDecimalPlace
}
