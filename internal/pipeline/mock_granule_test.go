package pipeline_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/sounding-skewt-service/internal/domain"
	"github.com/stretchr/testify/require"
)

var testObservationTime = time.Date(2024, 8, 14, 17, 42, 0, 0, time.UTC)

// granuleDoc builds a synthetic clear-sky granule document with the given
// footprint surface pressures. The vertical grid is TOA first with a warm,
// moist boundary layer, stable enough to analyze but with no guarantee of
// free convection.
func granuleDoc(id string, surfacePressures ...float64) domain.RawGranuleDoc {
	const levels = 24
	n := len(surfacePressures)

	doc := domain.RawGranuleDoc{
		GranuleID:       id,
		ObservationTime: testObservationTime,
		Pressure:        make([][]float64, n),
		Temperature:     make([][]float64, n),
		MixingRatio:     make([][]float64, n),
		SurfacePressure: surfacePressures,
		Latitude:        make([]float64, n),
		Longitude:       make([]float64, n),
		QualityFlag:     make([]int, n),
	}

	for i := 0; i < n; i++ {
		p := make([]float64, levels)
		tk := make([]float64, levels)
		w := make([]float64, levels)
		for j := 0; j < levels; j++ {
			p[j] = 60 + float64(j)*(945/float64(levels-1)) // 60..1005 hPa, TOA first
			tk[j] = 212 + float64(j)*(86/float64(levels-1))
			w[j] = 0.013 * float64(j) / float64(levels-1)
		}
		doc.Pressure[i] = p
		doc.Temperature[i] = tk
		doc.MixingRatio[i] = w
		doc.Latitude[i] = 30 + float64(i)
		doc.Longitude[i] = -90 - float64(i)
	}
	return doc
}

// granuleEvent marshals a granule document into a raw source-topic event.
func granuleEvent(t *testing.T, doc domain.RawGranuleDoc) domain.RawEvent {
	t.Helper()
	payload, err := json.Marshal(doc)
	require.NoError(t, err)
	return domain.RawEvent{
		Key:       []byte(doc.GranuleID),
		Value:     payload,
		Topic:     "raw-sounding-granules",
		Timestamp: testObservationTime,
	}
}
