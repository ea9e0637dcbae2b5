// Package specmatch provides the Spec Matching Engine
// Scores candidate products against a requirement item's named specifications
package specmatch

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"rfq-engine/pkg/api"
	"rfq-engine/pkg/confidence"
)

// Match classifications, from best to worst.
const (
	ClassExact   = "Exact Match"
	ClassGood    = "Good Match"
	ClassPartial = "Partial Match"
	ClassWeak    = "Weak Match"
	ClassNone    = "No Match"
)

// DefaultNumericTolerance is the relative tolerance for numeric value
// comparison (10%).
const DefaultNumericTolerance = 0.10

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	numToken = regexp.MustCompile(`\d+\.?\d*`)
)

// NormalizeName lowercases a spec or feature name, collapses every run of
// non-alphanumeric characters to a single underscore and trims edge
// underscores.
func NormalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = nonAlnum.ReplaceAllString(n, "_")
	return strings.Trim(n, "_")
}

// Comparator scores a single required-value / candidate-value pair. It is
// pure: no side effects, same inputs always yield the same score.
type Comparator struct {
	tolerance float64
	synonyms  *SynonymTable
}

// NewComparator creates a comparator with the given relative numeric
// tolerance and synonym table. A non-positive tolerance falls back to the
// default; a nil table disables synonym resolution.
func NewComparator(tolerance float64, synonyms *SynonymTable) *Comparator {
	if tolerance <= 0 {
		tolerance = DefaultNumericTolerance
	}
	if synonyms == nil {
		synonyms = NewSynonymTable(nil)
	}
	return &Comparator{tolerance: tolerance, synonyms: synonyms}
}

// ResolveFeature finds the candidate feature corresponding to a required
// spec name: first by exact normalized-name match over all features, then
// through the synonym table.
func (c *Comparator) ResolveFeature(specName string, candidate api.CandidateProduct) (string, bool) {
	want := NormalizeName(specName)

	for _, f := range candidate.Features {
		if NormalizeName(f.Name) == want {
			return f.Value, true
		}
	}
	for _, f := range candidate.Features {
		if c.synonyms.SameGroup(want, NormalizeName(f.Name)) {
			return f.Value, true
		}
	}
	return "", false
}

// Compare scores a required value against a resolved candidate value and
// returns the score with its classification.
func (c *Comparator) Compare(requiredValue, candidateValue string) (float64, string) {
	req := strings.ToLower(strings.TrimSpace(requiredValue))
	cand := strings.ToLower(strings.TrimSpace(candidateValue))

	if req == cand {
		return 1.0, Classify(1.0)
	}

	reqNum, reqOK := extractNumber(req)
	candNum, candOK := extractNumber(cand)
	if reqOK && candOK {
		// The required value is the tolerance base. This is asymmetric on
		// purpose; a required value of 0 compares by raw difference.
		diff := math.Abs(reqNum - candNum)
		if reqNum != 0 {
			diff /= math.Abs(reqNum)
		}
		switch {
		case diff <= c.tolerance:
			return 0.8, Classify(0.8)
		case diff <= 2*c.tolerance:
			return 0.5, Classify(0.5)
		default:
			return 0, ClassNone
		}
	}

	if strings.Contains(req, cand) || strings.Contains(cand, req) {
		return 0.6, Classify(0.6)
	}

	score := confidence.Clamp(wordOverlap(req, cand) * 0.5)
	return score, Classify(score)
}

// Classify maps a score to its match classification label.
func Classify(score float64) string {
	switch {
	case score >= 0.95:
		return ClassExact
	case score >= 0.75:
		return ClassGood
	case score >= 0.5:
		return ClassPartial
	case score > 0:
		return ClassWeak
	default:
		return ClassNone
	}
}

// extractNumber pulls the first run of digits with an optional decimal point
// out of a value, e.g. "1.1 kV" -> 1.1.
func extractNumber(s string) (float64, bool) {
	m := numToken.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSuffix(m, "."), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// wordOverlap returns |common words| / max(|wordsA|, |wordsB|).
func wordOverlap(a, b string) float64 {
	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(wordsA))
	for _, w := range wordsA {
		setA[w] = struct{}{}
	}
	common := make(map[string]struct{})
	for _, w := range wordsB {
		if _, ok := setA[w]; ok {
			common[w] = struct{}{}
		}
	}
	if len(common) == 0 {
		return 0
	}

	longest := len(setA)
	setB := make(map[string]struct{}, len(wordsB))
	for _, w := range wordsB {
		setB[w] = struct{}{}
	}
	if len(setB) > longest {
		longest = len(setB)
	}
	return float64(len(common)) / float64(longest)
}
