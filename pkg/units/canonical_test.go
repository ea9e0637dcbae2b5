package units

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Mtr":     "m",
		"METERS":  "m",
		"Sq. mm":  "sqmm",
		"kV":      "kV",
		"Nos.":    "nos",
		"sets":    "set",
		"":        "",
		"furlong": "furlong", // unknown spellings pass through
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestConversions(t *testing.T) {
	if got := KilometersToMeters(1.2); got != 1200 {
		t.Errorf("KilometersToMeters(1.2) = %v", got)
	}
	if got := MetersToKilometers(500); got != 0.5 {
		t.Errorf("MetersToKilometers(500) = %v", got)
	}
	if got := KilovoltsToVolts(1.1); math.Abs(got-1100) > 1e-9 {
		t.Errorf("KilovoltsToVolts(1.1) = %v", got)
	}
}
