package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// columnWidth is applied to every used column
const columnWidth = 18

// WriteXLSX writes the report tables as a workbook, one sheet per table.
func WriteXLSX(w io.Writer, report Report) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, table := range report.Tables() {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, table.Name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(table.Name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", table.Name, err)
		}
		if err := writeSheet(f, table, header); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, t Table, headerStyle int) error {
	for c, h := range t.Headers {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(t.Name, cell, h); err != nil {
			return fmt.Errorf("sheet %s: %w", t.Name, err)
		}
	}
	if len(t.Headers) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, 1)
		last, _ := excelize.CoordinatesToCellName(len(t.Headers), 1)
		if err := f.SetCellStyle(t.Name, first, last, headerStyle); err != nil {
			return fmt.Errorf("sheet %s: %w", t.Name, err)
		}
		firstCol, _ := excelize.ColumnNumberToName(1)
		lastCol, _ := excelize.ColumnNumberToName(len(t.Headers))
		if err := f.SetColWidth(t.Name, firstCol, lastCol, columnWidth); err != nil {
			return fmt.Errorf("sheet %s: %w", t.Name, err)
		}
	}

	for r, row := range t.Rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(t.Name, cell, v); err != nil {
				return fmt.Errorf("sheet %s: %w", t.Name, err)
			}
		}
	}
	return nil
}
