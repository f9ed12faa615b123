package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiftedCondensationLevel(t *testing.T) {
	t.Run("typical warm sector surface", func(t *testing.T) {
		lcl := LiftedCondensationLevel(1000, 25, 20)

		// Bolton's form puts this parcel's LCL near 929 hPa / 18.8°C.
		assert.InDelta(t, 929, float64(lcl.Pressure), 5)
		assert.InDelta(t, 18.8, float64(lcl.Temperature), 0.5)
		assert.Less(t, float64(lcl.Pressure), 1000.0)
		assert.Less(t, float64(lcl.Temperature), 25.0)
	})

	t.Run("saturated surface lifts from the surface", func(t *testing.T) {
		lcl := LiftedCondensationLevel(980, 12, 12)
		assert.InDelta(t, 980, float64(lcl.Pressure), 1e-6)
		assert.InDelta(t, 12, float64(lcl.Temperature), 1e-6)
	})

	t.Run("drier surface lifts higher", func(t *testing.T) {
		moist := LiftedCondensationLevel(1000, 30, 25)
		dry := LiftedCondensationLevel(1000, 30, 5)
		assert.Less(t, float64(dry.Pressure), float64(moist.Pressure))
	})
}

func TestParcelProfile(t *testing.T) {
	t.Run("dry segment follows the Poisson relation exactly", func(t *testing.T) {
		// Td of -40°C keeps the LCL near 393 hPa, so every listed level is
		// below it and the ascent is purely dry adiabatic.
		levels := []Pressure{1000, 900, 800, 700, 600, 500}
		parcel := ParcelProfile(levels, 20, -40)

		require.Len(t, parcel, len(levels))
		tk0 := Temperature(20).Kelvin()
		for i, p := range levels {
			want := tk0 * math.Pow(float64(p)/1000, kappa)
			assert.InDelta(t, want, parcel[i].Kelvin(), 1e-9, "level %v", p)
		}
	})

	t.Run("surface value is the surface temperature", func(t *testing.T) {
		parcel := ParcelProfile([]Pressure{1000, 900}, 17.5, 10)
		assert.InDelta(t, 17.5, float64(parcel[0]), 1e-12)
	})

	t.Run("saturated ascent cools slower than dry", func(t *testing.T) {
		// A saturated surface parcel (T = Td) is moist from the start; at
		// 900 hPa it must sit between the dry adiabatic value and the
		// surface temperature.
		saturated := ParcelProfile([]Pressure{1000, 900}, 25, 25)
		dryValue := Temperature(25).Kelvin() * math.Pow(0.9, kappa)

		assert.Greater(t, saturated[1].Kelvin(), dryValue)
		assert.Less(t, float64(saturated[1]), 25.0)
	})

	t.Run("temperature decreases monotonically with height", func(t *testing.T) {
		levels := []Pressure{1000, 925, 850, 700, 500, 300, 200}
		parcel := ParcelProfile(levels, 28, 22)
		for i := 1; i < len(parcel); i++ {
			assert.Less(t, float64(parcel[i]), float64(parcel[i-1]), "level %v", levels[i])
		}
	})

	t.Run("empty grid", func(t *testing.T) {
		assert.Empty(t, ParcelProfile(nil, 20, 10))
	})
}

// unstableProfile is a conditionally unstable sounding: a capped warm, moist
// surface layer under a steep mid-level lapse rate, with a tropopause
// inversion above 300 hPa warm enough for the parcel to equilibrate inside
// the column.
func unstableProfile() MaskedProfile {
	return MaskedProfile{
		SurfacePressure: 1010,
		Pressure:        []Pressure{1000, 925, 850, 700, 500, 400, 300, 250, 200},
		Temperature:     []Temperature{30, 26, 22, 12, -12, -26, -32, -28, -30},
		DewPoint:        []Temperature{24, 20, 16, 4, -20, -35, -55, -65, -70},
	}
}

// stableProfile is an isothermal column: a lifted parcel only ever cools
// relative to it, so no free convection exists.
func stableProfile() MaskedProfile {
	return MaskedProfile{
		SurfacePressure: 1005,
		Pressure:        []Pressure{1000, 900, 800, 700, 600, 500, 400, 300},
		Temperature:     []Temperature{15, 15, 15, 15, 15, 15, 15, 15},
		DewPoint:        []Temperature{5, 3, 0, -5, -12, -20, -35, -50},
	}
}

func TestDeriveParameters_Unstable(t *testing.T) {
	mp := unstableProfile()
	dp, err := DeriveParameters(mp)
	require.NoError(t, err)

	require.Len(t, dp.ParcelTemperature, len(mp.Pressure))

	assert.Less(t, float64(dp.LCL.Pressure), 1000.0)
	assert.Greater(t, float64(dp.LCL.Pressure), 850.0)

	require.NotNil(t, dp.LFC, "this sounding supports free convection")
	assert.Less(t, float64(dp.LFC.Pressure), float64(dp.LCL.Pressure))
	assert.Greater(t, float64(dp.LFC.Pressure), 400.0)

	require.NotNil(t, dp.EL, "the parcel must equilibrate below the profile top")
	assert.Less(t, float64(dp.EL.Pressure), float64(dp.LFC.Pressure))
	assert.Greater(t, float64(dp.EL.Pressure), 180.0)
	assert.Less(t, float64(dp.EL.Pressure), 320.0)

	assert.Greater(t, float64(dp.CAPE), 200.0)
	assert.Greater(t, float64(dp.CIN), 0.0)
	assert.Less(t, float64(dp.CIN), 1000.0)
}

func TestDeriveParameters_Stable(t *testing.T) {
	dp, err := DeriveParameters(stableProfile())
	require.NoError(t, err)

	assert.Nil(t, dp.LFC, "isothermal column has no level of free convection")
	assert.Nil(t, dp.EL)
	assert.Zero(t, float64(dp.CAPE))
	assert.Zero(t, float64(dp.CIN))
}

func TestDeriveParameters_EnergiesNonNegative(t *testing.T) {
	for name, mp := range map[string]MaskedProfile{
		"unstable": unstableProfile(),
		"stable":   stableProfile(),
	} {
		t.Run(name, func(t *testing.T) {
			dp, err := DeriveParameters(mp)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, float64(dp.CAPE), 0.0)
			assert.GreaterOrEqual(t, float64(dp.CIN), 0.0)
		})
	}
}

func TestDeriveParameters_RefusesEmptyProfile(t *testing.T) {
	t.Run("no levels", func(t *testing.T) {
		_, err := DeriveParameters(MaskedProfile{SurfacePressure: 50})
		require.ErrorIs(t, err, ErrEmptyProfile)
	})

	t.Run("single level", func(t *testing.T) {
		_, err := DeriveParameters(MaskedProfile{
			SurfacePressure: 1000,
			Pressure:        []Pressure{990},
			Temperature:     []Temperature{20},
			DewPoint:        []Temperature{15},
		})
		require.ErrorIs(t, err, ErrEmptyProfile)
	})
}
