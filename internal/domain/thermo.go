package domain

import "math"

// Thermodynamic constants (SI except where noted).
const (
	dryGasConstant  = 287.04                         // J/(kg·K), dry air
	dryHeatCapacity = 1005.7                         // J/(kg·K), at constant pressure
	kappa           = dryGasConstant / dryHeatCapacity // Poisson exponent
	epsilon         = 0.622                          // Rd/Rv, vapor-to-dry molar mass ratio
	latentHeat      = 2.501e6                        // J/kg, vaporization at 0°C

	// minVaporPressure floors the vapor pressure during dew point inversion.
	// Without it the logarithm of a zero vapor pressure is undefined; with it
	// the dew point bottoms out near -137°C, below any physical air
	// temperature, and surviving levels are removed by the pressure mask.
	minVaporPressure = 1e-9 // hPa
)

// SaturationVaporPressure returns the saturation vapor pressure over water
// using the Bolton (1980) fit: es = 6.112·exp(17.67·T/(T+243.5)) hPa.
func SaturationVaporPressure(t Temperature) Pressure {
	return Pressure(6.112 * math.Exp(17.67*float64(t)/(float64(t)+243.5)))
}

// SaturationMixingRatio returns the mixing ratio of saturated air at the
// given pressure and temperature.
func SaturationMixingRatio(p Pressure, t Temperature) MixingRatio {
	es := float64(SaturationVaporPressure(t))
	dry := float64(p) - es
	if dry <= 0 {
		// Total pressure at or below the vapor pressure; only reachable with
		// unphysically warm air at very low pressure.
		dry = 1e-6
	}
	return MixingRatio(epsilon * es / dry)
}

// RelativeHumidityFromMixingRatio converts a mixing ratio to relative
// humidity at the given temperature and pressure. A mixing ratio of zero or
// below maps to exactly zero. Retrievals can report more vapor than the air
// can hold; those are treated as exactly saturated, capping the result at 1
// so the derived dew point never exceeds the air temperature.
func RelativeHumidityFromMixingRatio(w MixingRatio, t Temperature, p Pressure) RelativeHumidity {
	if w <= 0 {
		return 0
	}
	e := float64(p) * float64(w) / (epsilon + float64(w))
	rh := e / float64(SaturationVaporPressure(t))
	if rh > 1 {
		rh = 1
	}
	return RelativeHumidity(rh)
}

// DewPoint returns the temperature at which air of the given temperature and
// relative humidity becomes saturated. The vapor pressure is floored at
// minVaporPressure, so vanishing humidity yields a finite large-negative
// dew point instead of NaN (see the package documentation for the policy),
// and capped at saturation so the dew point never exceeds t.
func DewPoint(t Temperature, rh RelativeHumidity) Temperature {
	es := float64(SaturationVaporPressure(t))
	e := float64(rh) * es
	if e > es {
		e = es
	}
	if e < minVaporPressure {
		e = minVaporPressure
	}
	ln := math.Log(e / 6.112)
	return Temperature(243.5 * ln / (17.67 - ln))
}
