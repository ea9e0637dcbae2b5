package fileio

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// Pricing table columns.
const (
	colUnitPrice   = "unit_price"
	colServiceName = "service_name"
	colPrice       = "price"
)

// LoadUnitPrices reads a SKU price table (columns sku_id, unit_price).
// Rows with a blank key or an unparseable price are skipped and reported as
// warnings; the load itself only fails on unreadable input.
func LoadUnitPrices(path string) (map[string]decimal.Decimal, []string, error) {
	return loadPriceTable(path, colSKUID, colUnitPrice)
}

// LoadServicePrices reads an ancillary service price table (columns
// service_name, price).
func LoadServicePrices(path string) (map[string]decimal.Decimal, []string, error) {
	return loadPriceTable(path, colServiceName, colPrice)
}

func loadPriceTable(path, keyCol, priceCol string) (map[string]decimal.Decimal, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open price table %s: %w", path, err)
	}
	defer f.Close()

	_, rows, err := ReadTable(f, path, 1)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read price table %s: %w", path, err)
	}

	prices := make(map[string]decimal.Decimal, len(rows))
	var warnings []string
	for i, row := range rows {
		key := row[keyCol]
		if isBlank(key) {
			warnings = append(warnings, fmt.Sprintf("%s row %d: missing %s, skipped", path, i+2, keyCol))
			continue
		}
		if isBlank(row[priceCol]) {
			warnings = append(warnings, fmt.Sprintf("%s row %d: no %s for %s, skipped", path, i+2, priceCol, key))
			continue
		}
		price, err := decimal.NewFromString(row[priceCol])
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s row %d: bad %s %q for %s, skipped", path, i+2, priceCol, row[priceCol], key))
			continue
		}
		prices[key] = price
	}
	return prices, warnings, nil
}
