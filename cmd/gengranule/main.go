// Command gengranule generates synthetic sounding granule fixtures and their
// expected transformed products, using the actual domain package so fixture
// output matches real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/gengranule \
//	  -granules 3 -footprints 30 -levels 100 \
//	  -out data/mock/granules.json \
//	  -products-out data/mock/products.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/sounding-skewt-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

var baseTime = time.Date(2024, time.August, 14, 17, 42, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	granules := flag.Int("granules", 3, "number of granules to generate")
	footprints := flag.Int("footprints", 30, "footprints per granule")
	levels := flag.Int("levels", 100, "pressure levels per footprint")
	seed := flag.Int64("seed", 1, "random seed")
	out := flag.String("out", "", "output path for raw granule JSON fixture")
	productsOut := flag.String("products-out", "", "output path for transformed product JSON fixture")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	// Fix the clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.August, 15, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	rng := rand.New(rand.NewSource(*seed))

	docs := make([]domain.RawGranuleDoc, 0, *granules)
	var products []domain.SoundingProduct
	var skipped int

	for g := 0; g < *granules; g++ {
		doc := generateGranule(rng, g, *footprints, *levels)
		docs = append(docs, doc)

		raw, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshal granule %s: %w", doc.GranuleID, err)
		}
		granule, err := domain.ParseRawGranule(domain.RawEvent{Value: raw})
		if err != nil {
			return fmt.Errorf("parse generated granule %s: %w", doc.GranuleID, err)
		}

		for i := 0; i < granule.Footprints(); i++ {
			profile, err := granule.Profile(i)
			if err != nil {
				return err
			}
			masked := profile.Masked(domain.PressureTop)
			derived, err := domain.DeriveParameters(masked)
			if err != nil {
				skipped++
				continue
			}
			products = append(products, domain.BuildProduct(profile, masked, derived))
		}
		log.Printf("%s: %d footprints, %d levels", doc.GranuleID, *footprints, *levels)
	}

	log.Printf("total: %d granules, %d products, %d footprints skipped", len(docs), len(products), skipped)

	if err := writeJSON(*out, docs); err != nil {
		return fmt.Errorf("writing granule fixture: %w", err)
	}
	log.Printf("wrote granule fixture: %s", *out)

	if *productsOut != "" {
		if err := writeJSON(*productsOut, products); err != nil {
			return fmt.Errorf("writing product fixture: %w", err)
		}
		log.Printf("wrote product fixture: %s", *productsOut)
	}

	printStats(products)
	return nil
}

// generateGranule builds one granule on a fixed TOA-first pressure grid with
// a randomized but physically plausible temperature and moisture structure:
// a warm moist boundary layer under a drier mid-troposphere, temperatures
// relaxing toward a cold tropopause aloft.
func generateGranule(rng *rand.Rand, index, footprints, levels int) domain.RawGranuleDoc {
	doc := domain.RawGranuleDoc{
		GranuleID:       fmt.Sprintf("NUCAPS-MOCK-%03d", index+1),
		ObservationTime: baseTime.Add(time.Duration(index) * 6 * time.Minute),
		Pressure:        make([][]float64, footprints),
		Temperature:     make([][]float64, footprints),
		MixingRatio:     make([][]float64, footprints),
		SurfacePressure: make([]float64, footprints),
		Latitude:        make([]float64, footprints),
		Longitude:       make([]float64, footprints),
		QualityFlag:     make([]int, footprints),
	}

	for i := 0; i < footprints; i++ {
		surfaceTemp := 295 + rng.Float64()*10    // 295..305 K
		surfaceMR := 0.010 + rng.Float64()*0.008 // 10..18 g/kg

		p := make([]float64, levels)
		tk := make([]float64, levels)
		w := make([]float64, levels)
		for j := 0; j < levels; j++ {
			// 20 hPa at the top down to ~1010 hPa at the bottom.
			p[j] = 20 + float64(j)*(990/float64(levels-1))
			frac := p[j] / 1000
			tk[j] = 210 + (surfaceTemp-210)*math.Pow(frac, 0.65)
			w[j] = surfaceMR * math.Pow(frac, 3)
		}
		doc.Pressure[i] = p
		doc.Temperature[i] = tk
		doc.MixingRatio[i] = w
		doc.SurfacePressure[i] = 990 + rng.Float64()*25
		doc.Latitude[i] = 30 + rng.Float64()*10
		doc.Longitude[i] = -100 + rng.Float64()*10
	}
	return doc
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func printStats(products []domain.SoundingProduct) {
	var convective int
	var maxCAPE float64
	for _, p := range products {
		if p.LFC != nil {
			convective++
		}
		if p.CAPE > maxCAPE {
			maxCAPE = p.CAPE
		}
	}
	log.Printf("stats: products=%d convective=%d max_cape=%.0f J/kg", len(products), convective, maxCAPE)
}
