// Package pricing turns item recommendations into a priced quotation,
// allocating shared ancillary costs proportionally across the batch.
package pricing

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"rfq-engine/pkg/api"
	"rfq-engine/pkg/errors"
)

// driftTolerance is the relative tolerance on allocation conservation. A
// larger deviation means an engine defect, not bad input.
var driftTolerance = decimal.NewFromFloat(1e-6)

// Allocator prices a batch of recommendations against a read-only pricing
// table. It is stateless; one allocator serves any number of runs.
type Allocator struct {
	logger zerolog.Logger
}

// NewAllocator creates a pricing allocator.
func NewAllocator(logger zerolog.Logger) *Allocator {
	return &Allocator{logger: logger}
}

// Price produces one PricingLine per recommendation, in recommendation
// order. Missing prices degrade to zero with a warning; an item whose
// selection is SelectedNone is priced at zero without a warning. The only
// error returned is an allocation drift, which signals a defect rather than
// a pricing condition.
func (a *Allocator) Price(items []api.RequirementItem, recs []api.ItemRecommendation, table api.PricingTableProvider) (api.PricingSummary, error) {
	byID := make(map[string]api.RequirementItem, len(items))
	for _, item := range items {
		byID[item.ItemID] = item
	}

	summary := api.PricingSummary{}
	totalMaterial := decimal.Zero
	totalAncillary := decimal.Zero

	for _, rec := range recs {
		item, ok := byID[rec.ItemID]
		if !ok {
			continue
		}

		line := api.PricingLine{
			ItemID:   rec.ItemID,
			SKUID:    rec.SelectedSKUID,
			Quantity: item.Quantity,
		}
		if rec.SelectedSKUID != api.SelectedNone {
			price, found := table.UnitPrice(rec.SelectedSKUID)
			if !found {
				summary.Warnings = append(summary.Warnings, errors.NewLookupMissError(rec.SelectedSKUID, rec.ItemID).Error())
			} else {
				line.UnitPrice = price
			}
		}
		line.MaterialCost = decimal.NewFromFloat(item.Quantity).Mul(line.UnitPrice)
		totalMaterial = totalMaterial.Add(line.MaterialCost)

		for _, svc := range item.AncillaryServices {
			price, found := table.ServicePrice(svc.Name)
			if !found {
				summary.Warnings = append(summary.Warnings, errors.NewLookupMissError(svc.Name, rec.ItemID).Error())
				continue
			}
			totalAncillary = totalAncillary.Add(price)
		}

		summary.Lines = append(summary.Lines, line)
	}

	a.allocate(&summary, totalMaterial, totalAncillary)

	summary.TotalMaterialCost = totalMaterial
	summary.TotalAncillaryCost = totalAncillary
	summary.GrandTotal = totalMaterial.Add(totalAncillary)

	if err := checkConservation(summary.Lines, totalAncillary); err != nil {
		a.logger.Error().Err(err).Msg("ancillary allocation drifted from batch total")
		return summary, err
	}
	return summary, nil
}

// allocate distributes the batch ancillary total across the lines: by
// material share when any material cost exists, equally otherwise. With zero
// lines the total stays unallocated.
func (a *Allocator) allocate(summary *api.PricingSummary, totalMaterial, totalAncillary decimal.Decimal) {
	if len(summary.Lines) == 0 {
		if totalAncillary.IsPositive() {
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("ancillary cost %s has no pricing lines to allocate across", totalAncillary))
		}
		return
	}

	byShare := totalMaterial.IsPositive()
	equalSplit := decimal.Zero
	if !byShare {
		equalSplit = totalAncillary.Div(decimal.NewFromInt(int64(len(summary.Lines))))
	}

	for i := range summary.Lines {
		line := &summary.Lines[i]
		if byShare {
			line.AllocatedCost = totalAncillary.Mul(line.MaterialCost).Div(totalMaterial)
		} else {
			line.AllocatedCost = equalSplit
		}
		line.TotalCost = line.MaterialCost.Add(line.AllocatedCost)
	}
}

// checkConservation verifies sum(allocated) stays within tolerance of the
// batch ancillary total.
func checkConservation(lines []api.PricingLine, totalAncillary decimal.Decimal) error {
	if len(lines) == 0 {
		return nil
	}
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.AllocatedCost)
	}

	diff := sum.Sub(totalAncillary).Abs()
	limit := driftTolerance
	if !totalAncillary.IsZero() {
		limit = totalAncillary.Abs().Mul(driftTolerance)
	}
	if diff.GreaterThan(limit) {
		return errors.NewAllocationDriftError(
			fmt.Sprintf("allocated %s of ancillary total %s (drift %s)", sum, totalAncillary, diff))
	}
	return nil
}
