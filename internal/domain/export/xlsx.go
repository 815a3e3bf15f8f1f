package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"gritgym/internal/domain/payment"
)

// SheetName is the worksheet holding exported payments.
const SheetName = "Payments"

// ToXLSX renders payments as a single-sheet workbook.
// PRE: payments are already filtered and ordered by the caller
// POST: Row 1 is the header; amounts are numeric cells
func ToXLSX(payments []payment.Payment, formatDate DateFormatter) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, p := range payments {
		cells := Row(p, formatDate)
		row := make([]any, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		row[4] = p.Amount
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
