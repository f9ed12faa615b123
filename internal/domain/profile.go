package domain

import "time"

// PressureTop is the upper boundary of usable retrieval levels. Retrievals
// above 100 hPa carry too little water vapor signal for a Skew-T analysis.
const PressureTop Pressure = 100

// Profile is one footprint's vertical sounding, surface first, with typed
// per-level series and scalar metadata. It is a read-only view extracted
// from a Granule.
type Profile struct {
	GranuleID       string
	Footprint       int
	ObservationTime time.Time
	Geo             Geo
	QualityFlag     int
	SurfacePressure Pressure

	Pressure    []Pressure    // hPa, strictly decreasing
	Temperature []Temperature // °C
	MixingRatio []MixingRatio // kg/kg
}

// DewPoint derives the per-level dew point series from the mixing ratio via
// relative humidity. Levels with zero mixing ratio produce the clamped
// large-negative dew point described in the package documentation.
func (p Profile) DewPoint() []Temperature {
	out := make([]Temperature, len(p.Pressure))
	for i := range p.Pressure {
		rh := RelativeHumidityFromMixingRatio(p.MixingRatio[i], p.Temperature[i], p.Pressure[i])
		out[i] = DewPoint(p.Temperature[i], rh)
	}
	return out
}

// SurfaceMask reports, per level, whether the level lies strictly between
// the local surface pressure and the upper cutoff.
func SurfaceMask(pressure []Pressure, surface, top Pressure) []bool {
	mask := make([]bool, len(pressure))
	for i, p := range pressure {
		mask[i] = p < surface && p > top
	}
	return mask
}

// Masked applies the surface mask to pressure, temperature, and dew point
// together, keeping the three series index aligned. The result may be empty
// when the surface pressure is at or below the cutoff; callers must check
// before deriving parameters.
func (p Profile) Masked(top Pressure) MaskedProfile {
	dew := p.DewPoint()
	mask := SurfaceMask(p.Pressure, p.SurfacePressure, top)

	mp := MaskedProfile{SurfacePressure: p.SurfacePressure}
	for i, keep := range mask {
		if !keep {
			continue
		}
		mp.Pressure = append(mp.Pressure, p.Pressure[i])
		mp.Temperature = append(mp.Temperature, p.Temperature[i])
		mp.DewPoint = append(mp.DewPoint, dew[i])
	}
	return mp
}

// MaskedProfile is the subset of a profile usable for parcel analysis:
// surface-first levels with 100 hPa < p < surface pressure.
type MaskedProfile struct {
	SurfacePressure Pressure
	Pressure        []Pressure
	Temperature     []Temperature
	DewPoint        []Temperature
}

// Empty reports whether the mask selected no levels.
func (m MaskedProfile) Empty() bool { return len(m.Pressure) == 0 }
