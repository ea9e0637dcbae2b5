package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"rfq-engine/pkg/api"
)

// Table is an immutable, case-insensitive price lookup loaded once per run.
// It implements api.PricingTableProvider.
type Table struct {
	unitPrices    map[string]decimal.Decimal
	servicePrices map[string]decimal.Decimal
}

var _ api.PricingTableProvider = (*Table)(nil)

// NewTable copies the given price maps into a read-only table. Keys are
// matched case-insensitively; a duplicate key differing only in case keeps
// the first value seen.
func NewTable(unitPrices, servicePrices map[string]decimal.Decimal) *Table {
	t := &Table{
		unitPrices:    make(map[string]decimal.Decimal, len(unitPrices)),
		servicePrices: make(map[string]decimal.Decimal, len(servicePrices)),
	}
	for k, v := range unitPrices {
		key := strings.ToLower(strings.TrimSpace(k))
		if _, exists := t.unitPrices[key]; !exists {
			t.unitPrices[key] = v
		}
	}
	for k, v := range servicePrices {
		key := strings.ToLower(strings.TrimSpace(k))
		if _, exists := t.servicePrices[key]; !exists {
			t.servicePrices[key] = v
		}
	}
	return t
}

// UnitPrice returns the unit price for a SKU.
func (t *Table) UnitPrice(skuID string) (decimal.Decimal, bool) {
	p, ok := t.unitPrices[strings.ToLower(strings.TrimSpace(skuID))]
	return p, ok
}

// ServicePrice returns the batch price for an ancillary service name.
func (t *Table) ServicePrice(serviceName string) (decimal.Decimal, bool) {
	p, ok := t.servicePrices[strings.ToLower(strings.TrimSpace(serviceName))]
	return p, ok
}

// UnitCount returns the number of SKU prices loaded.
func (t *Table) UnitCount() int { return len(t.unitPrices) }

// ServiceCount returns the number of service prices loaded.
func (t *Table) ServiceCount() int { return len(t.servicePrices) }
