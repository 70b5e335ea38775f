package reports

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// MasterlistRow is one line of the mass-screening masterlist.
type MasterlistRow struct {
	PatientName   string
	Barangay      string
	RHUName       string
	Status        string
	ScreeningDate *time.Time
	SubmittedAt   time.Time
}

var masterlistColumns = []string{
	"Patient", "Barangay", "Rural Health Unit", "Status", "Screening Date", "Submitted",
}

// BuildScreeningMasterlist renders the masterlist workbook. The caller owns
// closing the returned file.
func BuildScreeningMasterlist(rows []MasterlistRow) (*excelize.File, error) {
	const sheet = "Screening Masterlist"

	file := excelize.NewFile()
	file.SetSheetName("Sheet1", sheet)

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2E7D52"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, col := range masterlistColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := file.SetCellValue(sheet, cell, col); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		if err := file.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to style header: %w", err)
		}
	}

	for r, row := range rows {
		screening := ""
		if row.ScreeningDate != nil {
			screening = row.ScreeningDate.Format("2006-01-02")
		}
		values := []any{
			row.PatientName,
			row.Barangay,
			row.RHUName,
			row.Status,
			screening,
			row.SubmittedAt.Format("2006-01-02"),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := file.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", r+1, err)
			}
		}
	}

	if err := file.SetColWidth(sheet, "A", "F", 22); err != nil {
		return nil, fmt.Errorf("failed to set column widths: %w", err)
	}
	if err := file.AutoFilter(sheet, "A1:F1", nil); err != nil {
		return nil, fmt.Errorf("failed to set auto filter: %w", err)
	}
	return file, nil
}
