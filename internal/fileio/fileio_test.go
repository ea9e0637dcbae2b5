package fileio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	excelize "github.com/xuri/excelize/v2"

	"github.com/shopspring/decimal"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCatalogFromCSV(t *testing.T) {
	path := writeFile(t, "catalog.csv",
		"SKU ID,Product Name,Category,Conductor Material,Voltage Grade,Armour Type\n"+
			"SKU-A,Copper LT Cable,cables,Copper,1.1 kV,n/a\n"+
			"SKU-B,Aluminium LT Cable,cables,Aluminium,,Steel Wire\n"+
			",Orphan Row,cables,Copper,1.1 kV,\n")

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog returned error: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("got %d products, want 2 (row without sku_id skipped)", len(catalog))
	}

	a := catalog[0]
	if a.SKUID != "SKU-A" || a.ProductName != "Copper LT Cable" || a.Category != "cables" {
		t.Fatalf("product = %+v", a)
	}
	// n/a armour cell dropped; features keep header order.
	want := []struct{ name, value string }{
		{"conductor_material", "Copper"},
		{"voltage_grade", "1.1 kV"},
	}
	if len(a.Features) != len(want) {
		t.Fatalf("features = %+v, want %d entries", a.Features, len(want))
	}
	for i, w := range want {
		if a.Features[i].Name != w.name || a.Features[i].Value != w.value {
			t.Errorf("feature %d = %+v, want %+v", i, a.Features[i], w)
		}
	}

	b := catalog[1]
	if len(b.Features) != 2 {
		t.Fatalf("blank voltage cell should be dropped, features = %+v", b.Features)
	}
}

func TestLoadCatalogPairsUnitColumns(t *testing.T) {
	path := writeFile(t, "catalog.csv",
		"sku_id,product_name,category,conductor_size,conductor_size_unit\n"+
			"SKU-A,Copper LT Cable,cables,300,Sq. mm\n")

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog returned error: %v", err)
	}
	features := catalog[0].Features
	if len(features) != 1 {
		t.Fatalf("unit column must not become its own feature: %+v", features)
	}
	if features[0].Name != "conductor_size" || features[0].Value != "300" || features[0].Unit != "sqmm" {
		t.Fatalf("feature = %+v, want conductor_size 300 sqmm", features[0])
	}
}

func TestLoadUnitPricesSkipsBadRowsWithWarnings(t *testing.T) {
	path := writeFile(t, "prices.csv",
		"sku_id,unit_price\n"+
			"SKU-A,120\n"+
			"SKU-B,n/a\n"+
			"SKU-C,not-a-number\n"+
			",55\n")

	prices, warnings, err := LoadUnitPrices(path)
	if err != nil {
		t.Fatalf("LoadUnitPrices returned error: %v", err)
	}
	if len(prices) != 1 {
		t.Fatalf("got %d prices, want 1", len(prices))
	}
	if !prices["SKU-A"].Equal(decimal.NewFromInt(120)) {
		t.Fatalf("SKU-A price = %s, want 120", prices["SKU-A"])
	}
	if len(warnings) != 3 {
		t.Fatalf("warnings = %v, want 3", warnings)
	}
}

func TestLoadServicePrices(t *testing.T) {
	path := writeFile(t, "services.csv",
		"service_name,price\n"+
			"acceptance test,5000\n"+
			"type test,1200.50\n")

	prices, warnings, err := LoadServicePrices(path)
	if err != nil {
		t.Fatalf("LoadServicePrices returned error: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if !prices["type test"].Equal(decimal.RequireFromString("1200.50")) {
		t.Fatalf("type test price = %s", prices["type test"])
	}
}

func TestReadTableRejectsUnknownExtension(t *testing.T) {
	_, _, err := ReadTable(strings.NewReader("x"), "prices.txt", 1)
	if err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestReadTableXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"sku_id", "unit_price"},
		{"SKU-A", "120"},
		{"", ""},
		{"SKU-B", "45.50"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	headers, data, err := ReadTable(&buf, "prices.xlsx", 1)
	if err != nil {
		t.Fatalf("ReadTable returned error: %v", err)
	}
	if len(headers) != 2 || headers[0] != "sku_id" {
		t.Fatalf("headers = %v", headers)
	}
	if len(data) != 2 {
		t.Fatalf("got %d rows, want 2 (fully empty row skipped)", len(data))
	}
	if data[1]["unit_price"] != "45.50" {
		t.Fatalf("row 2 = %v", data[1])
	}
}

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"SKU ID":        "sku_id",
		" Unit-Price ":  "unit_price",
		"Voltage.Grade": "voltage_grade",
		"":              "",
	}
	for in, want := range cases {
		if got := normalizeHeader(in); got != want {
			t.Errorf("normalizeHeader(%q) = %q, want %q", in, got, want)
		}
	}
}
