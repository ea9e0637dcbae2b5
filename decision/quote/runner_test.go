package quote

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"rfq-engine/decision/pricing"
	"rfq-engine/decision/ranking"
	"rfq-engine/decision/specmatch"
	"rfq-engine/pkg/api"
	"rfq-engine/pkg/platform"
)

// fakeRetriever serves canned candidates keyed by the item description.
type fakeRetriever struct {
	byQuery map[string][]api.CandidateProduct
	err     error
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, _ api.SpecList) ([]api.CandidateProduct, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byQuery[query], nil
}

// blockingRetriever waits for context cancellation and returns its error.
type blockingRetriever struct{}

func (blockingRetriever) Retrieve(ctx context.Context, _ string, _ api.SpecList) ([]api.CandidateProduct, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newTestRunner(retriever api.CandidateRetriever, table api.PricingTableProvider, opts Options) *Runner {
	comparator := specmatch.NewComparator(specmatch.DefaultNumericTolerance, specmatch.NewSynonymTable(platform.DefaultSynonyms()))
	ranker := ranking.NewRanker(specmatch.NewEngine(comparator), ranking.DefaultTopK, zerolog.Nop())
	allocator := pricing.NewAllocator(zerolog.Nop())
	return NewRunner(retriever, ranker, allocator, table, opts, zerolog.Nop())
}

func TestRunEndToEnd(t *testing.T) {
	retriever := &fakeRetriever{byQuery: map[string][]api.CandidateProduct{
		"LT power cable": {
			{
				SKUID:       "SKU-A",
				ProductName: "Copper LT Cable",
				Features: []api.Feature{
					{Name: "conductor_material", Value: "Copper"},
					{Name: "voltage_grade", Value: "1.05 kV"},
				},
			},
		},
	}}
	table := pricing.NewTable(
		map[string]decimal.Decimal{"SKU-A": decimal.NewFromInt(120)},
		map[string]decimal.Decimal{"acceptance test": decimal.NewFromInt(5000)},
	)
	runner := newTestRunner(retriever, table, Options{})

	req := api.QuoteRequest{
		RequestID: "REQ-1",
		Items: []api.RequirementItem{{
			ItemID:      "ITEM-1",
			Description: "LT power cable",
			Quantity:    1000,
			Specs: api.SpecList{
				{Name: "conductor_material", Value: "Copper"},
				{Name: "voltage_grade", Value: "1.1 kV"},
			},
			AncillaryServices: []api.AncillaryService{{Name: "acceptance test"}},
		}},
	}

	result, err := runner.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.RunID == "" {
		t.Fatal("run id must be set")
	}

	item := result.Items[0]
	if item.Status != api.StatusMatched {
		t.Fatalf("status = %q, want %q", item.Status, api.StatusMatched)
	}
	if item.Recommendation.SelectedSKUID != "SKU-A" {
		t.Fatalf("selected = %q, want SKU-A", item.Recommendation.SelectedSKUID)
	}
	if got := item.Recommendation.TopCandidates[0].MatchPercent; got != 90.0 {
		t.Fatalf("match percent = %v, want 90.0", got)
	}

	line := result.Pricing.Lines[0]
	if !line.MaterialCost.Equal(decimal.NewFromInt(120000)) {
		t.Errorf("material cost = %s, want 120000", line.MaterialCost)
	}
	if !line.AllocatedCost.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("allocated cost = %s, want 5000", line.AllocatedCost)
	}
	if !result.Pricing.GrandTotal.Equal(decimal.NewFromInt(125000)) {
		t.Errorf("grand total = %s, want 125000", result.Pricing.GrandTotal)
	}
}

func TestRunRejectsInvalidItemWithoutAffectingSiblings(t *testing.T) {
	retriever := &fakeRetriever{byQuery: map[string][]api.CandidateProduct{
		"good item": {{SKUID: "SKU-B", ProductName: "Product B"}},
	}}
	table := pricing.NewTable(map[string]decimal.Decimal{"SKU-B": decimal.NewFromInt(10)}, nil)
	runner := newTestRunner(retriever, table, Options{})

	req := api.QuoteRequest{
		RequestID: "REQ-2",
		Items: []api.RequirementItem{
			{ItemID: "ITEM-1", Description: "good item", Quantity: 5},
			{ItemID: "ITEM-2", Description: "bad item", Quantity: 0},
			{ItemID: "", Description: "anonymous item", Quantity: 3},
		},
	}

	result, err := runner.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Items[0].Status != api.StatusMatched {
		t.Errorf("item 1 status = %q, want matched", result.Items[0].Status)
	}
	if result.Items[1].Status != api.StatusRejected || !strings.Contains(result.Items[1].Error, "quantity") {
		t.Errorf("item 2 = %+v, want rejected over quantity", result.Items[1])
	}
	if result.Items[2].Status != api.StatusRejected {
		t.Errorf("item 3 status = %q, want rejected", result.Items[2].Status)
	}
	if len(result.Pricing.Lines) != 1 {
		t.Fatalf("rejected items must not be priced, got %d lines", len(result.Pricing.Lines))
	}
}

func TestRunRetrievalErrorDegradesToUnmatched(t *testing.T) {
	retriever := &fakeRetriever{err: fmt.Errorf("catalog offline")}
	runner := newTestRunner(retriever, pricing.NewTable(nil, nil), Options{})

	req := api.QuoteRequest{
		RequestID: "REQ-3",
		Items:     []api.RequirementItem{{ItemID: "ITEM-1", Description: "anything", Quantity: 1}},
	}

	result, err := runner.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	item := result.Items[0]
	if item.Status != api.StatusUnmatched {
		t.Fatalf("status = %q, want %q", item.Status, api.StatusUnmatched)
	}
	if item.Recommendation.SelectedSKUID != api.SelectedNone {
		t.Fatalf("selected = %q, want %q", item.Recommendation.SelectedSKUID, api.SelectedNone)
	}
	if len(item.Warnings) != 1 || !strings.Contains(item.Warnings[0], "catalog offline") {
		t.Fatalf("warnings = %v, want one retrieval warning", item.Warnings)
	}
}

func TestRunRetrievalTimeoutDegradesToUnmatched(t *testing.T) {
	runner := newTestRunner(blockingRetriever{}, pricing.NewTable(nil, nil), Options{
		RetrieveTimeout: 10 * time.Millisecond,
	})

	req := api.QuoteRequest{
		RequestID: "REQ-4",
		Items:     []api.RequirementItem{{ItemID: "ITEM-1", Description: "slow", Quantity: 1}},
	}

	result, err := runner.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Items[0].Status != api.StatusUnmatched {
		t.Fatalf("status = %q, want %q", result.Items[0].Status, api.StatusUnmatched)
	}
}

func TestRunDropsCandidatesWithEmptyIdentifier(t *testing.T) {
	retriever := &fakeRetriever{byQuery: map[string][]api.CandidateProduct{
		"cable": {
			{SKUID: "  ", ProductName: "Broken Row"},
			{SKUID: "SKU-C", ProductName: "Product C"},
		},
	}}
	table := pricing.NewTable(map[string]decimal.Decimal{"SKU-C": decimal.NewFromInt(7)}, nil)
	runner := newTestRunner(retriever, table, Options{})

	req := api.QuoteRequest{
		RequestID: "REQ-5",
		Items:     []api.RequirementItem{{ItemID: "ITEM-1", Description: "cable", Quantity: 2}},
	}

	result, err := runner.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	item := result.Items[0]
	if item.Recommendation.SelectedSKUID != "SKU-C" {
		t.Fatalf("selected = %q, want SKU-C", item.Recommendation.SelectedSKUID)
	}
	if len(item.Warnings) != 1 || !strings.Contains(item.Warnings[0], "empty identifier") {
		t.Fatalf("warnings = %v, want one about the empty identifier", item.Warnings)
	}
}

func TestRunKeepsInputOrderUnderConcurrency(t *testing.T) {
	byQuery := make(map[string][]api.CandidateProduct)
	items := make([]api.RequirementItem, 0, 40)
	for i := 0; i < 40; i++ {
		desc := fmt.Sprintf("item %d", i)
		sku := fmt.Sprintf("SKU-%d", i)
		byQuery[desc] = []api.CandidateProduct{{SKUID: sku, ProductName: sku}}
		items = append(items, api.RequirementItem{
			ItemID:      fmt.Sprintf("ITEM-%d", i),
			Description: desc,
			Quantity:    1,
		})
	}
	runner := newTestRunner(&fakeRetriever{byQuery: byQuery}, pricing.NewTable(nil, nil), Options{Workers: 8})

	result, err := runner.Run(context.Background(), api.QuoteRequest{RequestID: "REQ-6", Items: items})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	for i, res := range result.Items {
		wantItem := fmt.Sprintf("ITEM-%d", i)
		wantSKU := fmt.Sprintf("SKU-%d", i)
		if res.ItemID != wantItem {
			t.Fatalf("result %d is %q, want %q", i, res.ItemID, wantItem)
		}
		if res.Recommendation.SelectedSKUID != wantSKU {
			t.Fatalf("result %d selected %q, want %q", i, res.Recommendation.SelectedSKUID, wantSKU)
		}
	}
}
