package retrieval

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"rfq-engine/pkg/api"
)

func testCatalog() []api.CandidateProduct {
	return []api.CandidateProduct{
		{
			SKUID:       "SKU-CU",
			ProductName: "Copper Power Cable",
			Category:    "cables",
			Features:    []api.Feature{{Name: "conductor_material", Value: "Copper"}},
		},
		{
			SKUID:       "SKU-AL",
			ProductName: "Aluminium Power Cable",
			Category:    "cables",
			Features:    []api.Feature{{Name: "conductor_material", Value: "Aluminium"}},
		},
		{
			SKUID:       "SKU-TRAY",
			ProductName: "Cable Tray",
			Category:    "accessories",
		},
	}
}

func TestRetrieveRanksByKeywordHits(t *testing.T) {
	r := NewMemoryRetriever(testCatalog(), zerolog.Nop())

	got, err := r.Retrieve(context.Background(), "copper power cable", nil)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want 3", len(got))
	}
	if got[0].SKUID != "SKU-CU" {
		t.Fatalf("first candidate = %q, want SKU-CU", got[0].SKUID)
	}
	// Equal-hit candidates keep catalog order.
	if got[1].SKUID != "SKU-AL" {
		t.Fatalf("second candidate = %q, want SKU-AL", got[1].SKUID)
	}
}

func TestRetrieveUsesSpecValuesAsKeywords(t *testing.T) {
	r := NewMemoryRetriever(testCatalog(), zerolog.Nop())

	specs := api.SpecList{{Name: "conductor_material", Value: "Aluminium"}}
	got, err := r.Retrieve(context.Background(), "", specs)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if got[0].SKUID != "SKU-AL" {
		t.Fatalf("first candidate = %q, want SKU-AL", got[0].SKUID)
	}
}

func TestRetrieveFallsBackToFullCatalog(t *testing.T) {
	r := NewMemoryRetriever(testCatalog(), zerolog.Nop())

	got, err := r.Retrieve(context.Background(), "zzzz qqqq", nil)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if len(got) != r.Size() {
		t.Fatalf("fallback returned %d of %d products", len(got), r.Size())
	}
	for i, p := range testCatalog() {
		if got[i].SKUID != p.SKUID {
			t.Fatalf("fallback order differs at %d: %q", i, got[i].SKUID)
		}
	}
}

func TestRetrieveEmptyQueryReturnsCatalog(t *testing.T) {
	r := NewMemoryRetriever(testCatalog(), zerolog.Nop())

	got, err := r.Retrieve(context.Background(), "   ", nil)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d candidates, want the whole catalog", len(got))
	}
}

func TestRetrieveHonorsCancelledContext(t *testing.T) {
	r := NewMemoryRetriever(testCatalog(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Retrieve(ctx, "copper", nil); err == nil {
		t.Fatal("expected context error")
	}
}

func TestRetrieveDoesNotExposeSharedBackingArray(t *testing.T) {
	r := NewMemoryRetriever(testCatalog(), zerolog.Nop())

	got, err := r.Retrieve(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	got[0] = api.CandidateProduct{SKUID: "MUTATED"}

	again, _ := r.Retrieve(context.Background(), "", nil)
	if again[0].SKUID == "MUTATED" {
		t.Fatal("retriever leaked its internal catalog slice")
	}
}
