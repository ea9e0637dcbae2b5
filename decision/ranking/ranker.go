// Package ranking orders scored candidates and selects the winning product
// for each requirement item.
package ranking

import (
	"sort"

	"github.com/rs/zerolog"

	"rfq-engine/pkg/api"
)

// DefaultTopK is the width of the recommendation comparison table.
const DefaultTopK = 3

// Evaluator scores one candidate against one requirement item. It is
// satisfied by specmatch.Engine.
type Evaluator interface {
	Evaluate(item api.RequirementItem, candidate api.CandidateProduct) (float64, []api.SpecComparisonRow)
}

// Ranker runs the evaluator over a candidate pool and produces an
// ItemRecommendation with a fixed-width top-K table.
type Ranker struct {
	evaluator Evaluator
	topK      int
	logger    zerolog.Logger
}

// NewRanker creates a ranker. A non-positive topK falls back to DefaultTopK.
func NewRanker(evaluator Evaluator, topK int, logger zerolog.Logger) *Ranker {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Ranker{evaluator: evaluator, topK: topK, logger: logger}
}

// Rank scores every candidate, sorts descending by match percentage and
// returns the top-K table plus the selected candidate. Candidates with equal
// percentages keep their retrieval order. An empty pool yields SelectedNone
// with a placeholder-only table.
func (r *Ranker) Rank(item api.RequirementItem, candidates []api.CandidateProduct) api.ItemRecommendation {
	scores := make([]api.CandidateScore, 0, len(candidates))
	for i, candidate := range candidates {
		scores = append(scores, r.scoreCandidate(item, candidate, i))
	}

	// Stable sort keeps retrieval order as the tie-break.
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].MatchPercent > scores[j].MatchPercent
	})

	rec := api.ItemRecommendation{
		ItemID:        item.ItemID,
		SelectedSKUID: api.SelectedNone,
	}
	if len(scores) > 0 {
		rec.SelectedSKUID = scores[0].SKUID
	}

	if len(scores) > r.topK {
		scores = scores[:r.topK]
	}
	for len(scores) < r.topK {
		scores = append(scores, placeholderScore())
	}
	rec.TopCandidates = scores
	return rec
}

// scoreCandidate evaluates one candidate, converting a panic inside the
// evaluator into a zero score so a single bad candidate cannot take down the
// batch.
func (r *Ranker) scoreCandidate(item api.RequirementItem, candidate api.CandidateProduct, rank int) (score api.CandidateScore) {
	score = api.CandidateScore{
		SKUID:         candidate.SKUID,
		ProductName:   candidate.ProductName,
		RetrievalRank: rank,
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn().
				Str("item_id", item.ItemID).
				Str("sku_id", candidate.SKUID).
				Interface("panic", rec).
				Msg("candidate evaluation panicked, scoring 0")
			score.MatchPercent = 0
			score.Rows = nil
		}
	}()

	percent, rows := r.evaluator.Evaluate(item, candidate)
	score.MatchPercent = percent
	score.Rows = rows
	return score
}

func placeholderScore() api.CandidateScore {
	return api.CandidateScore{
		SKUID:         api.ValueUnavailable,
		ProductName:   api.ValueUnavailable,
		MatchPercent:  0,
		RetrievalRank: -1,
	}
}
