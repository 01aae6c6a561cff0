package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"coverline/internal/domain"
)

const sheetName = "Benefits"

// WriteXLSX renders benefits as a single-sheet workbook and writes it to w.
func WriteXLSX(w io.Writer, benefits []domain.ExtractedBenefit) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("export.WriteXLSX: rename sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("export.WriteXLSX: header: %w", err)
	}

	for i := range benefits {
		row := benefitToRow(&benefits[i])
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		// Confidence and version are numeric in the workbook.
		values[4] = benefits[i].ConfidenceScore
		values[9] = benefits[i].Version

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export.WriteXLSX: cell: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("export.WriteXLSX: row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("export.WriteXLSX: panes: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export.WriteXLSX: write: %w", err)
	}
	return nil
}
