// Package domain models NOAA satellite sounding profiles and the Skew-T
// analysis computed from them.
//
// # Data Source
//
// Sounding granules originate from NOAA hyperspectral sounder retrievals
// (CrIS/ATMS NUCAPS-style environmental data records). The upstream collector
// service decodes the self-describing array files, flattens each granule into
// JSON (per-footprint arrays of temperature, water vapor mixing ratio, and
// pressure plus scalar surface pressure, geolocation, time, and quality flag
// per footprint), and publishes one document per granule to the source topic.
//
// # Array Conventions
//
// Vertical ordering:
//
//	Granule arrays are top of atmosphere first, the retrieval grid convention.
//	Profiles are surface first. [Granule.Profile] performs the reversal for
//	pressure, temperature, and mixing ratio together; reversing them
//	independently would silently misalign the series.
//
// Units on the wire:
//
//	Temperature: Kelvin. Mixing ratio: kg of vapor per kg of dry air.
//	Pressure and surface pressure: hectopascals.
//	Profiles carry typed quantities (Pressure, Temperature, MixingRatio) with
//	temperature in Celsius, so unit mixups fail at compile time.
//
// # Humidity Conversion
//
// Relative humidity comes from the mixing ratio via the vapor pressure
// partition e = p·w/(ε+w) against the Bolton (1980) saturation vapor
// pressure fit. A mixing ratio of exactly zero yields a relative humidity of
// exactly zero; that is a valid dry retrieval, not an error. A mixing ratio
// above saturation, which retrievals do occasionally report, is treated as
// exactly saturated: relative humidity caps at 1 and the dew point collapses
// onto the air temperature rather than rising above it.
//
// Dew point inverts the saturation fit. Near the top of the atmosphere the
// vapor pressure approaches zero, where the inversion degenerates toward an
// undefined logarithm. The vapor pressure is therefore floored at a tiny
// constant so the dew point stays finite, far below any physical air
// temperature, and never above the air temperature. Such levels normally sit
// above the 100 hPa cutoff and are removed by the surface mask anyway.
//
// # Surface Mask
//
// Usable levels satisfy 100 hPa < p < surface pressure, strictly. A footprint
// whose surface pressure is at or below the cutoff masks to an empty profile;
// [DeriveParameters] refuses to run on it and returns [ErrEmptyProfile]
// rather than producing a misleading analysis.
//
// # Parcel Analysis
//
// The surface parcel ascends dry adiabatically to its lifted condensation
// level (Bolton's closed form) and pseudoadiabatically above it. The level of
// free convection and the equilibrium level are genuine optionals: a stable
// profile has neither, and both are modeled as nil pointers, never numeric
// sentinels. CAPE and CIN are integrated in log-pressure coordinates and
// reported as non-negative magnitudes; CIN is positive inhibition by
// convention even though the underlying buoyancy is negative.
//
// # ID Generation
//
// Product IDs are deterministic SHA-256 hashes of granule|footprint|lat|lon|time.
// This enables idempotent archive upserts (ON CONFLICT DO NOTHING) and replay
// safety without distributed coordination. See [generateID].
package domain
