// Command skewt runs the Skew-T analysis for a single footprint of a granule
// fixture file and prints the result, useful when debugging a retrieval
// without standing up the full service.
//
// Usage:
//
//	go run ./cmd/skewt -granule data/mock/granules.json -footprint 12
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/couchcryptid/sounding-skewt-service/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	granulePath := flag.String("granule", "", "path to a granule JSON fixture (single document or array)")
	footprint := flag.Int("footprint", 0, "footprint index to analyze")
	top := flag.Float64("top", float64(domain.PressureTop), "mask cutoff pressure in hPa")
	asJSON := flag.Bool("json", false, "print the full product as JSON")
	flag.Parse()

	if *granulePath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -granule")
	}

	doc, err := loadGranule(*granulePath)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	granule, err := domain.ParseRawGranule(domain.RawEvent{Value: raw})
	if err != nil {
		return fmt.Errorf("parse granule: %w", err)
	}

	profile, err := granule.Profile(*footprint)
	if err != nil {
		return err
	}

	masked := profile.Masked(domain.Pressure(*top))
	derived, err := domain.DeriveParameters(masked)
	if err != nil {
		return fmt.Errorf("derive parameters for footprint %d: %w", *footprint, err)
	}

	product := domain.BuildProduct(profile, masked, derived)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(product)
	}

	printProduct(product)
	return nil
}

// loadGranule reads either a single granule document or the first element of
// a fixture array.
func loadGranule(path string) (domain.RawGranuleDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.RawGranuleDoc{}, err
	}

	var doc domain.RawGranuleDoc
	if err := json.Unmarshal(data, &doc); err == nil && doc.GranuleID != "" {
		return doc, nil
	}

	var docs []domain.RawGranuleDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return domain.RawGranuleDoc{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(docs) == 0 {
		return domain.RawGranuleDoc{}, fmt.Errorf("%s: empty fixture array", path)
	}
	return docs[0], nil
}

func printProduct(p domain.SoundingProduct) {
	fmt.Printf("granule %s footprint %d (%.2f, %.2f) observed %s\n",
		p.GranuleID, p.Footprint, p.Geo.Lat, p.Geo.Lon, p.ObservationTime.Format("2006-01-02 15:04Z"))
	fmt.Printf("surface pressure: %.1f hPa, quality flag: %d\n\n", p.SurfacePressure, p.QualityFlag)

	fmt.Printf("%10s %8s %8s %8s\n", "p (hPa)", "T (C)", "Td (C)", "Tp (C)")
	for i := range p.Pressure {
		fmt.Printf("%10.1f %8.1f %8.1f %8.1f\n",
			p.Pressure[i], p.Temperature[i], p.DewPoint[i], p.ParcelTemperature[i])
	}

	fmt.Printf("\nLCL: %.1f hPa / %.1f C\n", p.LCL.Pressure, p.LCL.Temperature)
	if p.LFC != nil {
		fmt.Printf("LFC: %.1f hPa / %.1f C\n", p.LFC.Pressure, p.LFC.Temperature)
	} else {
		fmt.Println("LFC: none")
	}
	if p.EL != nil {
		fmt.Printf("EL:  %.1f hPa / %.1f C\n", p.EL.Pressure, p.EL.Temperature)
	} else {
		fmt.Println("EL:  none")
	}
	fmt.Printf("CAPE: %.0f J/kg\nCIN:  %.0f J/kg\n", p.CAPE, p.CIN)
}
