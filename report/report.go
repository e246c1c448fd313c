// Package report renders a migration run summary as an xlsx workbook.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/clarita-9850/dmxload/migrate"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the per-table counts.
const SheetName = "Summary"

// Header is the column header row of the counts table.
var Header = []interface{}{"Source", "Target", "Rows read", "Rows emitted", "Rows skipped"}

// headerRow is the 1-based row of Header; the run metadata sits above it.
const headerRow = 4

// Build creates the summary workbook. The caller owns the returned file.
func Build(sum *migrate.Summary) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Run", sum.RunID},
		{"Generated", sum.GeneratedAt.Format(time.RFC3339)},
	}
	for i, row := range rows {
		if err := setRow(f, i+1, row); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := setRow(f, headerRow, Header); err != nil {
		f.Close()
		return nil, err
	}

	var read, emitted, skipped int
	for i, t := range sum.Tables {
		if err := setRow(f, headerRow+1+i, []interface{}{t.Source, t.Target, t.Read, t.Emitted, t.Skipped}); err != nil {
			f.Close()
			return nil, err
		}
		read += t.Read
		emitted += t.Emitted
		skipped += t.Skipped
	}
	totalRow := headerRow + 1 + len(sum.Tables)
	if err := setRow(f, totalRow, []interface{}{"Total", "", read, emitted, skipped}); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	for _, row := range []int{headerRow, totalRow} {
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(Header), row)
		if err := f.SetCellStyle(SheetName, first, last, bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to style row %d: %w", row, err)
		}
	}
	if err := f.SetColWidth(SheetName, "A", "B", 32); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	return f, nil
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

// Write streams the summary workbook to w.
func Write(w io.Writer, sum *migrate.Summary) error {
	f, err := Build(sum)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteWorkbook saves the summary workbook at path, creating parent
// directories as needed.
func WriteWorkbook(path string, sum *migrate.Summary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	f, err := Build(sum)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
