package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelWriter implements SheetWriter by writing a local .xlsx workbook.
type ExcelWriter struct {
	path string
}

// NewExcelWriter creates a writer that saves the workbook at path.
func NewExcelWriter(path string) *ExcelWriter {
	return &ExcelWriter{path: path}
}

// Write builds the RECON and OPS sheets and saves the workbook.
func (w *ExcelWriter) Write(_ context.Context, report Report) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "RECON")
	if _, err := f.NewSheet("OPS"); err != nil {
		return fmt.Errorf("creating OPS sheet: %w", err)
	}

	if err := writeRows(f, "RECON", buildReconRows(report)); err != nil {
		return err
	}
	if err := writeRows(f, "OPS", buildOpsRows(report.Ops)); err != nil {
		return err
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving workbook to %s: %w", w.path, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("building %s cell reference: %w", sheet, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
