package export

import (
	"fmt"
	"io"

	"studiodesk/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

var columns = []struct {
	title string
	width float64
}{
	{"Date", 12},
	{"Start", 8},
	{"End", 8},
	{"Customer", 25},
	{"Email", 30},
	{"Phone", 16},
	{"Package", 28},
	{"Status", 12},
	{"Note", 40},
}

var statusColors = map[string]string{
	models.StatusPending:     "#FFF2CC",
	models.StatusApproved:    "#E2EFDA",
	models.StatusDisapproved: "#F8CBAD",
}

// WriteBookings renders bookings as an xlsx workbook, one row per booking,
// under a title row naming the period.
func WriteBookings(w io.Writer, from, to string, bookings []*models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Bookings: %s - %s", from, to))
	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, c := range columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "2"
		_ = f.SetCellValue(sheetName, cell, c.title)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
		_ = f.SetColWidth(sheetName, col, col, c.width)
	}

	statusStyles := make(map[string]int, len(statusColors))
	for status, color := range statusColors {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err == nil {
			statusStyles[status] = id
		}
	}

	for i, b := range bookings {
		row := i + 3
		values := []interface{}{
			b.Date, b.StartTime, b.EndTime,
			b.CustomerName, b.CustomerEmail, b.CustomerPhone,
			b.PackageType, b.Status, b.Note,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("error writing row %d: %w", row, err)
		}
		if style, ok := statusStyles[b.Status]; ok {
			statusCell, _ := excelize.CoordinatesToCellName(8, row)
			_ = f.SetCellStyle(sheetName, statusCell, statusCell, style)
		}
	}

	_ = f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 2, TopLeftCell: "A3", ActivePane: "bottomLeft"})

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}
