// Package quote orchestrates a full quotation run: validation, candidate
// retrieval, ranking and pricing for a batch of requirement items.
package quote

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"rfq-engine/decision/pricing"
	"rfq-engine/decision/ranking"
	"rfq-engine/pkg/api"
	"rfq-engine/pkg/errors"
)

// Defaults for runner options left unset.
const (
	DefaultWorkers         = 4
	DefaultRetrieveTimeout = 10 * time.Second
)

// Options tunes batch execution.
type Options struct {
	// Workers bounds how many items are processed concurrently.
	Workers int

	// RetrieveTimeout caps one item's candidate retrieval. On expiry the
	// item degrades to an empty candidate set instead of failing the batch.
	RetrieveTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.RetrieveTimeout <= 0 {
		o.RetrieveTimeout = DefaultRetrieveTimeout
	}
	return o
}

// Runner wires the engines together. Construct once, share across runs; all
// collaborators are read-only during a run.
type Runner struct {
	retriever api.CandidateRetriever
	ranker    *ranking.Ranker
	allocator *pricing.Allocator
	table     api.PricingTableProvider
	opts      Options
	logger    zerolog.Logger
}

// NewRunner creates a quotation runner.
func NewRunner(retriever api.CandidateRetriever, ranker *ranking.Ranker, allocator *pricing.Allocator, table api.PricingTableProvider, opts Options, logger zerolog.Logger) *Runner {
	return &Runner{
		retriever: retriever,
		ranker:    ranker,
		allocator: allocator,
		table:     table,
		opts:      opts.withDefaults(),
		logger:    logger,
	}
}

// Run processes every item of the request and prices the outcome. Item
// results are returned in input order regardless of worker scheduling. The
// returned error is non-nil only for an internal allocation inconsistency;
// per-item failures surface as statuses and warnings instead.
func (r *Runner) Run(ctx context.Context, req api.QuoteRequest) (api.QuoteResult, error) {
	started := time.Now()
	result := api.QuoteResult{
		RequestID: req.RequestID,
		RunID:     uuid.NewString(),
		Items:     make([]api.ItemResult, len(req.Items)),
	}

	r.logger.Info().
		Str("request_id", req.RequestID).
		Str("run_id", result.RunID).
		Int("items", len(req.Items)).
		Msg("quotation run started")

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				result.Items[i] = r.processItem(ctx, req.Items[i])
			}
		}()
	}
	for i := range req.Items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var pricedItems []api.RequirementItem
	var recs []api.ItemRecommendation
	for i, itemResult := range result.Items {
		if itemResult.Status == api.StatusRejected || itemResult.Recommendation == nil {
			continue
		}
		pricedItems = append(pricedItems, req.Items[i])
		recs = append(recs, *itemResult.Recommendation)
	}

	summary, err := r.allocator.Price(pricedItems, recs, r.table)
	result.Pricing = &summary
	if err != nil {
		r.logger.Error().Err(err).Str("run_id", result.RunID).Msg("quotation run failed")
		return result, err
	}

	r.logger.Info().
		Str("run_id", result.RunID).
		Dur("elapsed", time.Since(started)).
		Str("grand_total", summary.GrandTotal.String()).
		Msg("quotation run finished")
	return result, nil
}

// processItem validates, retrieves and ranks a single item. Every failure
// mode lands in the returned ItemResult; nothing here can abort the batch.
func (r *Runner) processItem(ctx context.Context, item api.RequirementItem) api.ItemResult {
	res := api.ItemResult{ItemID: item.ItemID}

	if err := validateItem(item); err != nil {
		res.Status = api.StatusRejected
		res.Error = err.Error()
		return res
	}

	candidates, warn := r.retrieve(ctx, item)
	if warn != "" {
		res.Warnings = append(res.Warnings, warn)
	}

	// Copy, never filter in place: retrievers may hand out shared slices.
	kept := make([]api.CandidateProduct, 0, len(candidates))
	for _, c := range candidates {
		if strings.TrimSpace(c.SKUID) == "" {
			res.Warnings = append(res.Warnings,
				errors.NewInvalidInputError("candidate has an empty identifier, skipped", item.ItemID).Error())
			continue
		}
		kept = append(kept, c)
	}

	rec := r.ranker.Rank(item, kept)
	res.Recommendation = &rec
	if rec.SelectedSKUID == api.SelectedNone {
		res.Status = api.StatusUnmatched
	} else {
		res.Status = api.StatusMatched
	}
	return res
}

// retrieve calls the candidate retriever under the per-item timeout. Errors
// and timeouts degrade to an empty pool with a warning.
func (r *Runner) retrieve(ctx context.Context, item api.RequirementItem) ([]api.CandidateProduct, string) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.RetrieveTimeout)
	defer cancel()

	candidates, err := r.retriever.Retrieve(ctx, item.Description, item.Specs)
	if err != nil {
		qe := errors.NewRetrievalFailedError(item.ItemID, err)
		r.logger.Warn().Err(err).Str("item_id", item.ItemID).Msg("candidate retrieval failed")
		return nil, qe.Error()
	}
	return candidates, ""
}

func validateItem(item api.RequirementItem) error {
	if strings.TrimSpace(item.ItemID) == "" {
		return errors.NewInvalidInputError("requirement item has an empty identifier", item.ItemID)
	}
	if item.Quantity <= 0 {
		return errors.NewInvalidInputError("quantity must be greater than zero", item.ItemID)
	}
	return nil
}
