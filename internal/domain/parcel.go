package domain

import (
	"errors"
	"math"
)

// ErrEmptyProfile is returned when the surface mask left too few levels for
// a parcel analysis (surface pressure at or below the 100 hPa cutoff, or a
// single stray level).
var ErrEmptyProfile = errors.New("masked profile has no usable levels")

// Level pairs a pressure with the temperature at that pressure.
type Level struct {
	Pressure    Pressure    `json:"pressure"`
	Temperature Temperature `json:"temperature"`
}

// DerivedParameters holds the parcel path and the stability parameters for
// one masked profile. LFC and EL are nil when the profile supports no free
// convection; CAPE and CIN are then zero.
type DerivedParameters struct {
	LCL  Level
	LFC  *Level
	EL   *Level
	CAPE Energy
	CIN  Energy

	// ParcelTemperature is the lifted parcel's temperature at each masked
	// profile level, index aligned with the environment series.
	ParcelTemperature []Temperature
}

// LiftedCondensationLevel returns the pressure and temperature at which a
// parcel lifted from (p, t, dew) first saturates, using Bolton's (1980)
// closed form for the LCL temperature and the Poisson relation for the
// LCL pressure.
func LiftedCondensationLevel(p Pressure, t, dew Temperature) Level {
	tk := t.Kelvin()
	dk := dew.Kelvin()
	if dk > tk {
		// Supersaturated input; treat the parcel as saturated at the start.
		dk = tk
	}
	tl := 1/(1/(dk-56)+math.Log(tk/dk)/800) + 56
	pl := float64(p) * math.Pow(tl/tk, 1/kappa)
	return Level{Pressure: Pressure(pl), Temperature: TemperatureFromKelvin(tl)}
}

// ParcelProfile lifts a surface parcel along the given pressure grid:
// dry adiabatic below the LCL, pseudoadiabatic above it. Levels must be
// surface first (strictly decreasing pressure). Returns one parcel
// temperature per level.
func ParcelProfile(levels []Pressure, surfaceT, surfaceDew Temperature) []Temperature {
	out := make([]Temperature, len(levels))
	if len(levels) == 0 {
		return out
	}

	p0 := levels[0]
	lcl := LiftedCondensationLevel(p0, surfaceT, surfaceDew)
	tk0 := surfaceT.Kelvin()

	// Integration state for the saturated segment, advanced level by level.
	pCur := float64(lcl.Pressure)
	tkCur := lcl.Temperature.Kelvin()

	for i, p := range levels {
		if p >= lcl.Pressure {
			out[i] = TemperatureFromKelvin(tk0 * math.Pow(float64(p/p0), kappa))
			continue
		}
		tkCur = integrateMoistAscent(pCur, tkCur, float64(p))
		pCur = float64(p)
		out[i] = TemperatureFromKelvin(tkCur)
	}
	return out
}

// integrateMoistAscent advances a saturated parcel from pFrom down to pTo
// (both hPa, pTo < pFrom) along the pseudoadiabat with a midpoint method in
// 1 hPa substeps. Returns the parcel temperature in Kelvin at pTo.
func integrateMoistAscent(pFrom, tk, pTo float64) float64 {
	const maxStep = 1.0
	p := pFrom
	for p > pTo {
		dp := math.Min(maxStep, p-pTo)
		k1 := moistLapse(p, tk)
		k2 := moistLapse(p-dp, tk-dp*k1)
		tk -= dp * (k1 + k2) / 2
		p -= dp
	}
	return tk
}

// moistLapse is dT/dp (K per hPa) along the saturated pseudoadiabat at
// pressure p (hPa) and parcel temperature tk (Kelvin).
func moistLapse(p, tk float64) float64 {
	rs := float64(SaturationMixingRatio(Pressure(p), TemperatureFromKelvin(tk)))
	num := dryGasConstant*tk + latentHeat*rs
	den := dryHeatCapacity + latentHeat*latentHeat*rs*epsilon/(dryGasConstant*tk*tk)
	return num / den / p
}

// DeriveParameters computes the parcel path, the characteristic levels, and
// the convective energy integrals for a masked profile. It refuses to run on
// an empty or single-level profile.
func DeriveParameters(mp MaskedProfile) (DerivedParameters, error) {
	if len(mp.Pressure) < 2 {
		return DerivedParameters{}, ErrEmptyProfile
	}

	lcl := LiftedCondensationLevel(mp.Pressure[0], mp.Temperature[0], mp.DewPoint[0])
	parcel := ParcelProfile(mp.Pressure, mp.Temperature[0], mp.DewPoint[0])
	lfc, el := findConvectionLevels(mp, parcel, lcl)
	cape, cin := convectiveEnergy(mp, parcel, lfc, el)

	return DerivedParameters{
		LCL:               lcl,
		LFC:               lfc,
		EL:                el,
		CAPE:              cape,
		CIN:               cin,
		ParcelTemperature: parcel,
	}, nil
}

// findConvectionLevels scans the saturated portion of the profile from the
// surface upward. The LFC is where the parcel first becomes warmer than the
// environment at or above the LCL; if the parcel is already buoyant when it
// saturates, the LFC is the LCL itself. The EL is the first crossing above
// the LFC where the parcel cools back to ambient. Either may be absent.
func findConvectionLevels(mp MaskedProfile, parcel []Temperature, lcl Level) (lfc, el *Level) {
	diff := make([]float64, len(parcel))
	for i := range parcel {
		diff[i] = float64(parcel[i] - mp.Temperature[i])
	}

	for i := 0; i < len(diff); i++ {
		if mp.Pressure[i] >= lcl.Pressure {
			continue // unsaturated below the LCL
		}
		if lfc == nil {
			if diff[i] <= 0 {
				continue
			}
			if i == 0 || mp.Pressure[i-1] >= lcl.Pressure {
				// Buoyant from the moment of saturation.
				l := lcl
				lfc = &l
			} else {
				l := interpolateCrossing(mp, diff, i-1, i)
				lfc = &l
			}
			continue
		}
		if el == nil && diff[i] <= 0 {
			l := interpolateCrossing(mp, diff, i-1, i)
			el = &l
			break
		}
	}
	return lfc, el
}

// interpolateCrossing locates the zero of the parcel-environment temperature
// difference between adjacent levels i and j, linear in log pressure.
func interpolateCrossing(mp MaskedProfile, diff []float64, i, j int) Level {
	x1 := math.Log(float64(mp.Pressure[i]))
	x2 := math.Log(float64(mp.Pressure[j]))
	d1, d2 := diff[i], diff[j]

	frac := 0.0
	if d2 != d1 {
		frac = -d1 / (d2 - d1)
	}
	x := x1 + frac*(x2-x1)
	tc := float64(mp.Temperature[i]) + frac*(float64(mp.Temperature[j])-float64(mp.Temperature[i]))
	return Level{Pressure: Pressure(math.Exp(x)), Temperature: Temperature(tc)}
}

const (
	positiveArea = 1
	negativeArea = -1
)

// convectiveEnergy integrates the parcel-environment temperature difference
// in log-pressure coordinates: CAPE over the buoyant region between LFC and
// EL (or the profile top when no EL exists), CIN over the inhibited region
// between the surface and the LFC. Both are non-negative; without an LFC
// there is no convection and both are zero.
func convectiveEnergy(mp MaskedProfile, parcel []Temperature, lfc, el *Level) (cape, cin Energy) {
	if lfc == nil {
		return 0, 0
	}
	capeTop := Pressure(0)
	if el != nil {
		capeTop = el.Pressure
	}

	for i := 1; i < len(mp.Pressure); i++ {
		p1, p2 := mp.Pressure[i-1], mp.Pressure[i]
		d1 := float64(parcel[i-1] - mp.Temperature[i-1])
		d2 := float64(parcel[i] - mp.Temperature[i])

		cin -= segmentEnergy(p1, p2, d1, d2, lfc.Pressure, mp.Pressure[0], negativeArea)
		cape += segmentEnergy(p1, p2, d1, d2, capeTop, lfc.Pressure, positiveArea)
	}
	return cape, cin
}

// segmentEnergy integrates one level-pair trapezoid clipped to the pressure
// band (top, bottom), keeping only the requested sign. The LFC and EL are
// exact zeros of the difference curve, so clipping at them splits segments
// cleanly; interior sign changes within a clipped trapezoid are neglected.
func segmentEnergy(p1, p2 Pressure, d1, d2 float64, top, bottom Pressure, sign int) Energy {
	hi := math.Min(float64(p1), float64(bottom)) // high-pressure (lower) bound
	lo := math.Max(float64(p2), float64(top))    // low-pressure (upper) bound
	if lo >= hi {
		return 0
	}

	x1 := math.Log(float64(p1))
	x2 := math.Log(float64(p2))
	at := func(x float64) float64 {
		if x2 == x1 {
			return d1
		}
		return d1 + (x-x1)*(d2-d1)/(x2-x1)
	}

	xh, xl := math.Log(hi), math.Log(lo)
	avg := (at(xh) + at(xl)) / 2
	if sign == positiveArea && avg < 0 {
		return 0
	}
	if sign == negativeArea && avg > 0 {
		return 0
	}
	return Energy(dryGasConstant * avg * (xh - xl))
}
