package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrFootprintRange is returned when a footprint index falls outside the
// granule's [0, Footprints()) range.
var ErrFootprintRange = errors.New("footprint index out of range")

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// RawGranuleDoc is the flat JSON document produced by the granule collector.
// All per-level arrays are top of atmosphere first.
type RawGranuleDoc struct {
	GranuleID       string      `json:"granule_id"`
	ObservationTime time.Time   `json:"observation_time"`
	Pressure        [][]float64 `json:"pressure"`         // hPa
	Temperature     [][]float64 `json:"temperature"`      // Kelvin
	MixingRatio     [][]float64 `json:"mixing_ratio"`     // kg/kg
	SurfacePressure []float64   `json:"surface_pressure"` // hPa
	Latitude        []float64   `json:"latitude"`
	Longitude       []float64   `json:"longitude"`
	QualityFlag     []int       `json:"quality_flag"`
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Granule is a validated sounding granule: one vertical retrieval per
// observation footprint plus per-footprint scalars, with all parallel arrays
// checked for consistent lengths on construction.
type Granule struct {
	ID              string
	ObservationTime time.Time

	pressure        [][]float64
	temperature     [][]float64
	mixingRatio     [][]float64
	surfacePressure []float64
	latitude        []float64
	longitude       []float64
	qualityFlag     []int
}

// ParseRawGranule deserializes a RawEvent's value into a validated Granule.
func ParseRawGranule(raw RawEvent) (Granule, error) {
	var doc RawGranuleDoc
	if err := json.Unmarshal(raw.Value, &doc); err != nil {
		return Granule{}, fmt.Errorf("parse raw granule: %w", err)
	}
	return NewGranule(doc)
}

// NewGranule validates a decoded granule document. Every per-footprint array
// must have one entry per footprint, and every footprint's level arrays must
// share the same length.
func NewGranule(doc RawGranuleDoc) (Granule, error) {
	n := len(doc.Pressure)
	if n == 0 {
		return Granule{}, errors.New("granule has no footprints")
	}
	if len(doc.Temperature) != n || len(doc.MixingRatio) != n {
		return Granule{}, fmt.Errorf("granule footprint counts differ: pressure=%d temperature=%d mixing_ratio=%d",
			n, len(doc.Temperature), len(doc.MixingRatio))
	}
	if len(doc.SurfacePressure) != n || len(doc.Latitude) != n || len(doc.Longitude) != n || len(doc.QualityFlag) != n {
		return Granule{}, fmt.Errorf("granule scalar arrays must have %d entries: surface_pressure=%d latitude=%d longitude=%d quality_flag=%d",
			n, len(doc.SurfacePressure), len(doc.Latitude), len(doc.Longitude), len(doc.QualityFlag))
	}

	levels := len(doc.Pressure[0])
	if levels < 2 {
		return Granule{}, fmt.Errorf("granule needs at least 2 pressure levels, got %d", levels)
	}
	for i := 0; i < n; i++ {
		if len(doc.Pressure[i]) != levels || len(doc.Temperature[i]) != levels || len(doc.MixingRatio[i]) != levels {
			return Granule{}, fmt.Errorf("footprint %d level arrays differ: pressure=%d temperature=%d mixing_ratio=%d (want %d)",
				i, len(doc.Pressure[i]), len(doc.Temperature[i]), len(doc.MixingRatio[i]), levels)
		}
	}

	return Granule{
		ID:              doc.GranuleID,
		ObservationTime: doc.ObservationTime,
		pressure:        doc.Pressure,
		temperature:     doc.Temperature,
		mixingRatio:     doc.MixingRatio,
		surfacePressure: doc.SurfacePressure,
		latitude:        doc.Latitude,
		longitude:       doc.Longitude,
		qualityFlag:     doc.QualityFlag,
	}, nil
}

// Footprints returns the number of observation footprints in the granule.
func (g Granule) Footprints() int { return len(g.pressure) }

// Levels returns the number of retrieval pressure levels per footprint.
func (g Granule) Levels() int { return len(g.pressure[0]) }

// Profile extracts footprint i as a surface-first typed profile. The
// top-of-atmosphere-first wire arrays are reversed and the temperature is
// converted from Kelvin to Celsius; all three series are transformed together
// so the vertical index stays aligned.
func (g Granule) Profile(i int) (Profile, error) {
	if i < 0 || i >= g.Footprints() {
		return Profile{}, fmt.Errorf("%w: %d not in [0, %d)", ErrFootprintRange, i, g.Footprints())
	}

	levels := len(g.pressure[i])
	p := make([]Pressure, levels)
	t := make([]Temperature, levels)
	w := make([]MixingRatio, levels)
	for j := 0; j < levels; j++ {
		k := levels - 1 - j
		p[j] = Pressure(g.pressure[i][k])
		t[j] = TemperatureFromKelvin(g.temperature[i][k])
		w[j] = MixingRatio(g.mixingRatio[i][k])
	}

	return Profile{
		GranuleID:       g.ID,
		Footprint:       i,
		ObservationTime: g.ObservationTime,
		Geo:             Geo{Lat: g.latitude[i], Lon: g.longitude[i]},
		QualityFlag:     g.qualityFlag[i],
		SurfacePressure: Pressure(g.surfacePressure[i]),
		Pressure:        p,
		Temperature:     t,
		MixingRatio:     w,
	}, nil
}
