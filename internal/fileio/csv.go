package fileio

import (
	"encoding/csv"
	"io"
)

func readCSV(r io.Reader, headerRow int) ([]string, []map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	headers := pickHeader(rows, headerRow)
	return headers, rowsToMaps(rows, headers, headerRow), nil
}
