package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProduct(t *testing.T) {
	frozen := time.Date(2024, 8, 14, 18, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	defer SetClock(nil)

	g, err := NewGranule(makeGranuleDoc(3, 40))
	require.NoError(t, err)
	profile, err := g.Profile(1)
	require.NoError(t, err)

	mp := profile.Masked(PressureTop)
	dp, err := DeriveParameters(mp)
	require.NoError(t, err)

	product := BuildProduct(profile, mp, dp)

	t.Run("identity and metadata", func(t *testing.T) {
		assert.Regexp(t, `^snd-[0-9a-f]{16}$`, product.ID)
		assert.Equal(t, "NUCAPS-TEST-001", product.GranuleID)
		assert.Equal(t, 1, product.Footprint)
		assert.Equal(t, frozen, product.ProcessedAt)
		assert.Equal(t, testObservationTime, product.ObservationTime)
	})

	t.Run("deterministic ID", func(t *testing.T) {
		again := BuildProduct(profile, mp, dp)
		assert.Equal(t, product.ID, again.ID)
	})

	t.Run("series stay index aligned", func(t *testing.T) {
		n := len(product.Pressure)
		assert.Equal(t, n, len(product.Temperature))
		assert.Equal(t, n, len(product.DewPoint))
		assert.Equal(t, n, len(product.ParcelTemperature))
	})

	t.Run("absent levels are omitted from JSON", func(t *testing.T) {
		stable, err := DeriveParameters(stableProfile())
		require.NoError(t, err)
		require.Nil(t, stable.LFC)

		p := BuildProduct(profile, stableProfile(), stable)
		data, err := json.Marshal(p)
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.NotContains(t, decoded, "lfc")
		assert.NotContains(t, decoded, "el")
		assert.Contains(t, decoded, "lcl")
	})
}
