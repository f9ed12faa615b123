package domain

const zeroCelsiusKelvin = 273.15

// Pressure is an atmospheric pressure in hectopascals.
type Pressure float64

// Temperature is an air temperature in degrees Celsius.
type Temperature float64

// Kelvin returns the temperature on the absolute scale.
func (t Temperature) Kelvin() float64 { return float64(t) + zeroCelsiusKelvin }

// TemperatureFromKelvin converts an absolute temperature to Celsius.
func TemperatureFromKelvin(k float64) Temperature {
	return Temperature(k - zeroCelsiusKelvin)
}

// MixingRatio is a water vapor mass mixing ratio in kg per kg of dry air.
type MixingRatio float64

// RelativeHumidity is a dimensionless saturation fraction in [0, 1].
type RelativeHumidity float64

// Energy is a specific energy in joules per kilogram.
type Energy float64
