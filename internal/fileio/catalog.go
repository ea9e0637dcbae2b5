package fileio

import (
	"fmt"
	"os"
	"strings"

	"rfq-engine/pkg/api"
	"rfq-engine/pkg/units"
)

// Reserved catalog columns; everything else becomes a product feature.
const (
	colSKUID       = "sku_id"
	colProductName = "product_name"
	colCategory    = "category"
)

// unitColumnSuffix pairs a column like conductor_size_unit with the
// conductor_size feature instead of producing a feature of its own.
const unitColumnSuffix = "_unit"

// LoadCatalog reads a product catalog table. Each row needs a sku_id; rows
// without one are skipped. Non-reserved columns turn into features in header
// order, with blank and n/a cells dropped; a <name>_unit column attaches a
// canonical unit to the <name> feature.
func LoadCatalog(path string) ([]api.CandidateProduct, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()

	headers, rows, err := ReadTable(f, path, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	var catalog []api.CandidateProduct
	for _, row := range rows {
		if isBlank(row[colSKUID]) {
			continue
		}
		product := api.CandidateProduct{
			SKUID:       row[colSKUID],
			ProductName: row[colProductName],
			Category:    row[colCategory],
		}
		for _, h := range headers {
			if h == colSKUID || h == colProductName || h == colCategory {
				continue
			}
			if strings.HasSuffix(h, unitColumnSuffix) {
				continue
			}
			if isBlank(row[h]) {
				continue
			}
			feature := api.Feature{Name: h, Value: row[h]}
			if unit := row[h+unitColumnSuffix]; !isBlank(unit) {
				feature.Unit = units.Normalize(unit)
			}
			product.Features = append(product.Features, feature)
		}
		catalog = append(catalog, product)
	}
	return catalog, nil
}
