package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// SheetName is the single worksheet every spreadsheet report uses.
const SheetName = "Users"

// SchemaMismatchError reports a row whose key set deviates from the first
// row's. Nothing is written when it occurs.
type SchemaMismatchError struct {
	RowIndex int
	Want     []string
	Got      []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("report row %d has keys %v, want %v", e.RowIndex, e.Got, e.Want)
}

// WriteJSON writes rows as a UTF-8 JSON array, one object per row with keys
// in field order. Any existing file is overwritten.
func WriteJSON(path string, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal report rows: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteXLSX writes rows to a spreadsheet: the header row holds the first
// row's keys, every following row holds values in that column order. All
// rows must share the first row's key set; a violation fails with
// SchemaMismatchError before any file is created. Any existing file is
// overwritten.
func WriteXLSX(path string, rows []Row) error {
	var header []string
	if len(rows) > 0 {
		header = rows[0].Keys()
	}

	for i, row := range rows {
		if err := matchesHeader(i, row, header); err != nil {
			return err
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for col, key := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(SheetName, cell, key); err != nil {
			return fmt.Errorf("write header %s: %w", key, err)
		}
	}

	for ri, row := range rows {
		for ci, field := range row {
			cell, err := excelize.CoordinatesToCellName(ci+1, ri+2)
			if err != nil {
				return fmt.Errorf("row cell: %w", err)
			}
			if err := f.SetCellValue(SheetName, cell, field.Value); err != nil {
				return fmt.Errorf("write row %d: %w", ri, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func matchesHeader(index int, row Row, header []string) error {
	keys := row.Keys()
	if len(keys) != len(header) {
		return &SchemaMismatchError{RowIndex: index, Want: header, Got: keys}
	}
	for i, key := range keys {
		if key != header[i] {
			return &SchemaMismatchError{RowIndex: index, Want: header, Got: keys}
		}
	}
	return nil
}
