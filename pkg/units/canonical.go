// Package units provides canonical measurement units for requirement
// quantities and product features.
package units

import "strings"

// Unit represents a measurable quantity.
type Unit string

const (
	// Length units
	UnitMeters     Unit = "m"
	UnitKilometers Unit = "km"

	// Cross-section units
	UnitSqMM Unit = "sqmm"

	// Electrical units
	UnitVolts     Unit = "V"
	UnitKilovolts Unit = "kV"
	UnitAmperes   Unit = "A"

	// Count units
	UnitPieces Unit = "nos"
	UnitSets   Unit = "set"
)

// aliases maps the unit spellings seen in supplier documents to canonical
// units.
var aliases = map[string]Unit{
	"m":       UnitMeters,
	"mtr":     UnitMeters,
	"mtrs":    UnitMeters,
	"meter":   UnitMeters,
	"meters":  UnitMeters,
	"metre":   UnitMeters,
	"metres":  UnitMeters,
	"km":      UnitKilometers,
	"sqmm":    UnitSqMM,
	"sq mm":   UnitSqMM,
	"sq. mm":  UnitSqMM,
	"mm2":     UnitSqMM,
	"v":       UnitVolts,
	"volt":    UnitVolts,
	"volts":   UnitVolts,
	"kv":      UnitKilovolts,
	"a":       UnitAmperes,
	"amp":     UnitAmperes,
	"amps":    UnitAmperes,
	"no":      UnitPieces,
	"nos":     UnitPieces,
	"no.":     UnitPieces,
	"nos.":    UnitPieces,
	"pc":      UnitPieces,
	"pcs":     UnitPieces,
	"piece":   UnitPieces,
	"pieces":  UnitPieces,
	"set":     UnitSets,
	"sets":    UnitSets,
}

// Normalize maps a raw unit spelling to its canonical unit. Unknown
// spellings pass through trimmed so no information is lost.
func Normalize(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return ""
	}
	if u, ok := aliases[key]; ok {
		return string(u)
	}
	return strings.TrimSpace(raw)
}

// MetersToKilometers converts meters to kilometers.
func MetersToKilometers(m float64) float64 {
	return m / 1000
}

// KilometersToMeters converts kilometers to meters.
func KilometersToMeters(km float64) float64 {
	return km * 1000
}

// KilovoltsToVolts converts kilovolts to volts.
func KilovoltsToVolts(kv float64) float64 {
	return kv * 1000
}
