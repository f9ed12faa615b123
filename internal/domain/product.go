package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// LevelMark is a characteristic level in a product's wire form.
type LevelMark struct {
	Pressure    float64 `json:"pressure"`    // hPa
	Temperature float64 `json:"temperature"` // °C
}

// SoundingProduct is the plot-ready Skew-T analysis for one footprint, the
// serialized form destined for the sink topic and the archive. Series are
// masked and surface first; LFC and EL are omitted when absent.
type SoundingProduct struct {
	ID              string    `json:"id"`
	GranuleID       string    `json:"granule_id"`
	Footprint       int       `json:"footprint"`
	Geo             Geo       `json:"geo"`
	ObservationTime time.Time `json:"observation_time"`
	QualityFlag     int       `json:"quality_flag"`
	SurfacePressure float64   `json:"surface_pressure"` // hPa

	Pressure          []float64 `json:"pressure"`           // hPa
	Temperature       []float64 `json:"temperature"`        // °C
	DewPoint          []float64 `json:"dew_point"`          // °C
	ParcelTemperature []float64 `json:"parcel_temperature"` // °C

	LCL  LevelMark  `json:"lcl"`
	LFC  *LevelMark `json:"lfc,omitempty"`
	EL   *LevelMark `json:"el,omitempty"`
	CAPE float64    `json:"cape"` // J/kg
	CIN  float64    `json:"cin"`  // J/kg, positive inhibition

	ProcessedAt time.Time `json:"processed_at"`
}

// BuildProduct assembles the sink-topic product from a profile, its masked
// series, and the derived parameters.
func BuildProduct(p Profile, mp MaskedProfile, dp DerivedParameters) SoundingProduct {
	return SoundingProduct{
		ID:              generateID(p.GranuleID, p.Footprint, p.Geo.Lat, p.Geo.Lon, p.ObservationTime),
		GranuleID:       p.GranuleID,
		Footprint:       p.Footprint,
		Geo:             p.Geo,
		ObservationTime: p.ObservationTime,
		QualityFlag:     p.QualityFlag,
		SurfacePressure: float64(p.SurfacePressure),

		Pressure:          pressureFloats(mp.Pressure),
		Temperature:       temperatureFloats(mp.Temperature),
		DewPoint:          temperatureFloats(mp.DewPoint),
		ParcelTemperature: temperatureFloats(dp.ParcelTemperature),

		LCL:  markLevel(dp.LCL),
		LFC:  markOptional(dp.LFC),
		EL:   markOptional(dp.EL),
		CAPE: float64(dp.CAPE),
		CIN:  float64(dp.CIN),

		ProcessedAt: clock.Now(),
	}
}

// generateID produces a deterministic ID from the product's key fields.
// Deterministic IDs make archive upserts idempotent — reprocessing the same
// granule produces the same IDs.
func generateID(granuleID string, footprint int, lat, lon float64, observed time.Time) string {
	input := fmt.Sprintf("%s|%d|%.4f|%.4f|%s", granuleID, footprint, lat, lon, observed.UTC().Format(time.RFC3339))
	hash := sha256.Sum256([]byte(input))
	return "snd-" + hex.EncodeToString(hash[:8])
}

func markLevel(l Level) LevelMark {
	return LevelMark{Pressure: float64(l.Pressure), Temperature: float64(l.Temperature)}
}

func markOptional(l *Level) *LevelMark {
	if l == nil {
		return nil
	}
	m := markLevel(*l)
	return &m
}

func pressureFloats(s []Pressure) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}
	return out
}

func temperatureFloats(s []Temperature) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}
	return out
}
