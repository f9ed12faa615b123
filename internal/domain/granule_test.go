package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testObservationTime = time.Date(2024, 8, 14, 17, 42, 0, 0, time.UTC)

// makeGranuleDoc builds a synthetic granule: a fixed descending-altitude
// pressure grid (TOA first), linearly warming temperature toward the
// surface, and moisture concentrated in the lower levels.
func makeGranuleDoc(footprints, levels int) RawGranuleDoc {
	doc := RawGranuleDoc{
		GranuleID:       "NUCAPS-TEST-001",
		ObservationTime: testObservationTime,
		Pressure:        make([][]float64, footprints),
		Temperature:     make([][]float64, footprints),
		MixingRatio:     make([][]float64, footprints),
		SurfacePressure: make([]float64, footprints),
		Latitude:        make([]float64, footprints),
		Longitude:       make([]float64, footprints),
		QualityFlag:     make([]int, footprints),
	}

	for i := 0; i < footprints; i++ {
		p := make([]float64, levels)
		tk := make([]float64, levels)
		w := make([]float64, levels)
		for j := 0; j < levels; j++ {
			// TOA first: 50 hPa at the top, ~1000 hPa at the bottom.
			p[j] = 50 + float64(j)*(950/float64(levels-1))
			tk[j] = 210 + float64(j)*(90/float64(levels-1)) + float64(i)
			w[j] = 0.015 * float64(j) / float64(levels-1)
		}
		doc.Pressure[i] = p
		doc.Temperature[i] = tk
		doc.MixingRatio[i] = w
		doc.SurfacePressure[i] = 1005 - float64(i)
		doc.Latitude[i] = 35 + 0.5*float64(i)
		doc.Longitude[i] = -97 - 0.5*float64(i)
	}
	return doc
}

func TestParseRawGranule(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		payload, err := json.Marshal(makeGranuleDoc(4, 20))
		require.NoError(t, err)

		g, err := ParseRawGranule(RawEvent{Value: payload})
		require.NoError(t, err)
		assert.Equal(t, "NUCAPS-TEST-001", g.ID)
		assert.Equal(t, 4, g.Footprints())
		assert.Equal(t, 20, g.Levels())
		assert.Equal(t, testObservationTime, g.ObservationTime)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseRawGranule(RawEvent{Value: []byte("{not json")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse raw granule")
	})
}

func TestNewGranule_Validation(t *testing.T) {
	base := makeGranuleDoc(3, 10)

	tests := []struct {
		name   string
		mutate func(*RawGranuleDoc)
	}{
		{"no footprints", func(d *RawGranuleDoc) { d.Pressure = nil }},
		{"temperature footprint count differs", func(d *RawGranuleDoc) { d.Temperature = d.Temperature[:2] }},
		{"mixing ratio footprint count differs", func(d *RawGranuleDoc) { d.MixingRatio = d.MixingRatio[:1] }},
		{"surface pressure count differs", func(d *RawGranuleDoc) { d.SurfacePressure = d.SurfacePressure[:2] }},
		{"quality flag count differs", func(d *RawGranuleDoc) { d.QualityFlag = append(d.QualityFlag, 0) }},
		{"level arrays differ within a footprint", func(d *RawGranuleDoc) { d.Temperature[1] = d.Temperature[1][:9] }},
		{"single level", func(d *RawGranuleDoc) {
			for i := range d.Pressure {
				d.Pressure[i] = d.Pressure[i][:1]
				d.Temperature[i] = d.Temperature[i][:1]
				d.MixingRatio[i] = d.MixingRatio[i][:1]
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := makeGranuleDoc(3, 10)
			tt.mutate(&doc)
			_, err := NewGranule(doc)
			require.Error(t, err)
		})
	}

	_, err := NewGranule(base)
	require.NoError(t, err, "unmutated document must validate")
}

func TestGranule_Profile(t *testing.T) {
	g, err := NewGranule(makeGranuleDoc(5, 30))
	require.NoError(t, err)

	t.Run("every valid footprint yields full-length series", func(t *testing.T) {
		for i := 0; i < g.Footprints(); i++ {
			p, err := g.Profile(i)
			require.NoError(t, err)
			assert.Len(t, p.Pressure, g.Levels())
			assert.Len(t, p.Temperature, g.Levels())
			assert.Len(t, p.MixingRatio, g.Levels())
			assert.Equal(t, i, p.Footprint)
		}
	})

	t.Run("surface first ordering", func(t *testing.T) {
		p, err := g.Profile(0)
		require.NoError(t, err)
		assert.Greater(t, float64(p.Pressure[0]), float64(p.Pressure[len(p.Pressure)-1]))
		for i := 1; i < len(p.Pressure); i++ {
			assert.Less(t, float64(p.Pressure[i]), float64(p.Pressure[i-1]), "level %d", i)
		}
	})

	t.Run("metadata carried through", func(t *testing.T) {
		p, err := g.Profile(2)
		require.NoError(t, err)
		assert.Equal(t, "NUCAPS-TEST-001", p.GranuleID)
		assert.Equal(t, 36.0, p.Geo.Lat)
		assert.Equal(t, -98.0, p.Geo.Lon)
		assert.Equal(t, Pressure(1003), p.SurfacePressure)
		assert.Equal(t, testObservationTime, p.ObservationTime)
	})

	t.Run("out of range", func(t *testing.T) {
		for _, i := range []int{-1, 5, 100} {
			_, err := g.Profile(i)
			require.ErrorIs(t, err, ErrFootprintRange, "index %d", i)
		}
	})
}

func TestGranule_ProfileNormalizationRoundTrip(t *testing.T) {
	// Converting the profile's Celsius series back to Kelvin and reversing
	// to TOA-first order must restore the wire arrays.
	doc := makeGranuleDoc(2, 25)
	g, err := NewGranule(doc)
	require.NoError(t, err)

	for i := 0; i < g.Footprints(); i++ {
		p, err := g.Profile(i)
		require.NoError(t, err)

		n := len(p.Pressure)
		for j := 0; j < n; j++ {
			k := n - 1 - j
			assert.InDelta(t, doc.Temperature[i][k], p.Temperature[j].Kelvin(), 1e-9)
			assert.Equal(t, doc.Pressure[i][k], float64(p.Pressure[j]))
			assert.Equal(t, doc.MixingRatio[i][k], float64(p.MixingRatio[j]))
		}
	}
}
