// Package fileio loads product catalogs and pricing tables from CSV and
// XLSX files into engine inputs.
package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// blankValue marks cells the source documents use for "no data".
const blankValue = "n/a"

// ReadTable picks a parser by file extension and returns the header row in
// column order plus one map per non-empty data row. Headers are normalized
// to lowercase snake_case; an empty header becomes column_N.
func ReadTable(r io.Reader, filename string, headerRow int) ([]string, []map[string]string, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx":
		return readXLSX(r, headerRow)
	case ".csv":
		return readCSV(r, headerRow)
	default:
		return nil, nil, fmt.Errorf("unsupported table format: %s", filename)
	}
}

// isBlank reports whether a cell carries no usable value.
func isBlank(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	return v == "" || v == blankValue
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer(" ", "_", "-", "_", ".", "_", "/", "_").Replace(h)
	return strings.Trim(h, "_")
}

func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 || idx >= len(rows) {
		idx = 0
	}
	src := rows[idx]
	headers := make([]string, len(src))
	for i, h := range src {
		h = normalizeHeader(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		headers[i] = h
	}
	return headers
}

func rowsToMaps(rows [][]string, headers []string, headerRow int) []map[string]string {
	var out []map[string]string
	for r := headerRow; r < len(rows); r++ {
		rec := rows[r]
		m := make(map[string]string, len(headers))
		empty := true
		for c, h := range headers {
			var v string
			if c < len(rec) {
				v = strings.TrimSpace(rec[c])
			}
			m[h] = v
			if v != "" {
				empty = false
			}
		}
		if !empty {
			out = append(out, m)
		}
	}
	return out
}
