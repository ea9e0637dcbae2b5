package specmatch

import (
	"rfq-engine/pkg/api"
	"rfq-engine/pkg/confidence"
)

// Engine aggregates per-spec comparison scores into an overall match
// percentage for one item/candidate pair.
type Engine struct {
	comparator *Comparator
}

// NewEngine creates a spec match engine on top of a comparator.
func NewEngine(comparator *Comparator) *Engine {
	return &Engine{comparator: comparator}
}

// Evaluate compares the candidate against every required spec of the item,
// in the item's declared order, and returns the overall match percentage
// (two decimals) with one comparison row per spec. An item with zero
// required specs yields (0, nil); there is nothing to divide by.
func (e *Engine) Evaluate(item api.RequirementItem, candidate api.CandidateProduct) (float64, []api.SpecComparisonRow) {
	if len(item.Specs) == 0 {
		return 0, nil
	}

	rows := make([]api.SpecComparisonRow, 0, len(item.Specs))
	total := 0.0
	for _, spec := range item.Specs {
		row := api.SpecComparisonRow{
			SpecName:       spec.Name,
			RequiredValue:  spec.Value,
			CandidateValue: api.ValueUnavailable,
			Classification: ClassNone,
		}
		if value, found := e.comparator.ResolveFeature(spec.Name, candidate); found {
			score, class := e.comparator.Compare(spec.Value, value)
			row.CandidateValue = value
			row.Score = score
			row.Classification = class
		}
		total += row.Score
		rows = append(rows, row)
	}

	percent := confidence.Round2(100 * total / float64(len(rows)))
	return percent, rows
}
