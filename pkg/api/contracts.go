// Package api defines the shared contracts between the matching, ranking and
// pricing engines and their external collaborators.
package api

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// Sentinel values used in recommendations and comparison tables.
const (
	// SelectedNone marks an item for which no candidate could be selected.
	// It is an explicit outcome, not an error.
	SelectedNone = "NONE"

	// ValueUnavailable marks a candidate value (or a whole candidate column)
	// that does not exist.
	ValueUnavailable = "N/A"
)

// SpecPair is one required specification: a name and its required value.
type SpecPair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SpecList is an ordered set of required specifications. Iteration order is
// declaration order; comparison rows are emitted in this order.
type SpecList []SpecPair

// Get returns the value for a spec name, matched case-insensitively.
func (s SpecList) Get(name string) (string, bool) {
	for _, p := range s {
		if strings.EqualFold(p.Name, name) {
			return p.Value, true
		}
	}
	return "", false
}

// AncillaryService is a shared-cost service required by an item, e.g. an
// acceptance test. Only the name participates in pricing lookups; the other
// fields carry through from the source document.
type AncillaryService struct {
	Name      string `json:"name"`
	Standard  string `json:"standard,omitempty"`
	Frequency string `json:"frequency,omitempty"`
}

// RequirementItem is one line of a buyer's request.
type RequirementItem struct {
	ItemID      string  `json:"item_id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`

	Specs SpecList `json:"specs"`

	AncillaryServices []AncillaryService `json:"ancillary_services,omitempty"`
}

// Feature is a single named specification of a catalog product.
type Feature struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// CandidateProduct is a catalog product evaluated against a requirement item.
type CandidateProduct struct {
	SKUID       string    `json:"sku_id"`
	ProductName string    `json:"product_name"`
	Category    string    `json:"category"`
	Features    []Feature `json:"features"`
}

// SpecComparisonRow is the outcome of comparing one required spec against one
// candidate.
type SpecComparisonRow struct {
	SpecName       string  `json:"spec_name"`
	RequiredValue  string  `json:"required_value"`
	CandidateValue string  `json:"candidate_value"` // ValueUnavailable when the feature is missing
	Score          float64 `json:"score"`           // 0..1
	Classification string  `json:"classification"`
}

// CandidateScore is one candidate's aggregate result for an item.
type CandidateScore struct {
	SKUID        string              `json:"sku_id"`
	ProductName  string              `json:"product_name"`
	MatchPercent float64             `json:"match_percent"` // 0..100, two decimals
	Rows         []SpecComparisonRow `json:"rows,omitempty"`

	// RetrievalRank is the candidate's position in the retriever's output,
	// used as the deterministic tie-break key.
	RetrievalRank int `json:"retrieval_rank"`
}

// ItemRecommendation is the ranking outcome for one requirement item.
type ItemRecommendation struct {
	ItemID string `json:"item_id"`

	// TopCandidates holds the best candidates in rank order, padded with
	// ValueUnavailable placeholders up to the configured table width.
	TopCandidates []CandidateScore `json:"top_candidates"`

	// SelectedSKUID is the highest-scoring candidate, or SelectedNone.
	SelectedSKUID string `json:"selected_sku_id"`
}

// PricingLine is the priced outcome for one requirement item.
type PricingLine struct {
	ItemID        string          `json:"item_id"`
	SKUID         string          `json:"sku_id"`
	Quantity      float64         `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	MaterialCost  decimal.Decimal `json:"material_cost"`
	AllocatedCost decimal.Decimal `json:"allocated_ancillary_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
}

// PricingSummary is the priced quotation for a whole batch.
type PricingSummary struct {
	Lines              []PricingLine   `json:"lines"`
	TotalMaterialCost  decimal.Decimal `json:"total_material_cost"`
	TotalAncillaryCost decimal.Decimal `json:"total_ancillary_cost"`
	GrandTotal         decimal.Decimal `json:"grand_total"`
	Warnings           []string        `json:"warnings,omitempty"`
}

// ItemStatus is the per-item outcome of a quotation run.
type ItemStatus string

const (
	StatusMatched   ItemStatus = "matched"
	StatusUnmatched ItemStatus = "unmatched"
	StatusRejected  ItemStatus = "rejected"
)

// ItemResult couples an item with whatever could be computed for it. A
// rejected item carries Error and no recommendation; an unmatched item
// carries a recommendation with SelectedNone.
type ItemResult struct {
	ItemID         string              `json:"item_id"`
	Status         ItemStatus          `json:"status"`
	Recommendation *ItemRecommendation `json:"recommendation,omitempty"`
	Error          string              `json:"error,omitempty"`
	Warnings       []string            `json:"warnings,omitempty"`
}

// QuoteRequest is the input batch for one matching-and-pricing run.
type QuoteRequest struct {
	RequestID string            `json:"request_id"`
	Title     string            `json:"title,omitempty"`
	Buyer     string            `json:"buyer,omitempty"`
	Items     []RequirementItem `json:"items"`
}

// QuoteResult is the output of one run. It always carries a status for every
// input item; a malformed item or a missing price never fails the batch.
type QuoteResult struct {
	RequestID string          `json:"request_id"`
	RunID     string          `json:"run_id"`
	Items     []ItemResult    `json:"items"`
	Pricing   *PricingSummary `json:"pricing,omitempty"`
	Warnings  []string        `json:"warnings,omitempty"`
}

// CandidateRetriever supplies rank-ordered candidate products for a query.
// Implementations must return a stable order; the engine treats a failure or
// an empty result as "no candidates" and never aborts the batch over it.
type CandidateRetriever interface {
	Retrieve(ctx context.Context, query string, specs SpecList) ([]CandidateProduct, error)
}

// PricingTableProvider resolves unit and ancillary-service prices. Lookups
// are case-insensitive on their keys and report absence instead of erroring.
type PricingTableProvider interface {
	UnitPrice(skuID string) (decimal.Decimal, bool)
	ServicePrice(serviceName string) (decimal.Decimal, bool)
}
