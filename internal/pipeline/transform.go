package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/sounding-skewt-service/internal/domain"
	"github.com/couchcryptid/sounding-skewt-service/internal/observability"
)

// SkewTTransformer implements Transformer: it parses a granule document and
// runs the full Skew-T analysis for every footprint.
type SkewTTransformer struct {
	pressureTop domain.Pressure
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewTransformer creates a SkewTTransformer masking levels above the given
// cutoff pressure (hPa).
func NewTransformer(pressureTopHPa float64, logger *slog.Logger, metrics *observability.Metrics) *SkewTTransformer {
	return &SkewTTransformer{
		pressureTop: domain.Pressure(pressureTopHPa),
		logger:      logger,
		metrics:     metrics,
	}
}

// Transform fans a raw granule message out to one sounding product per
// footprint. Footprints whose surface mask selects no levels (surface
// pressure at or below the cutoff) are reported and skipped, not failed:
// the remaining footprints of the granule are still produced.
func (t *SkewTTransformer) Transform(_ context.Context, raw domain.RawEvent) ([]domain.SoundingProduct, error) {
	granule, err := domain.ParseRawGranule(raw)
	if err != nil {
		return nil, err
	}

	products := make([]domain.SoundingProduct, 0, granule.Footprints())
	for i := 0; i < granule.Footprints(); i++ {
		profile, err := granule.Profile(i)
		if err != nil {
			return nil, err
		}

		masked := profile.Masked(t.pressureTop)
		derived, err := domain.DeriveParameters(masked)
		if errors.Is(err, domain.ErrEmptyProfile) {
			t.logger.Warn("surface mask selected no usable levels, skipping footprint",
				"granule_id", granule.ID,
				"footprint", i,
				"surface_pressure", float64(profile.SurfacePressure),
			)
			t.metrics.EmptyProfiles.Inc()
			continue
		}
		if err != nil {
			return nil, err
		}

		products = append(products, domain.BuildProduct(profile, masked, derived))
	}
	return products, nil
}
