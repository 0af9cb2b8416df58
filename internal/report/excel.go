package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"example.com/gymtrack/internal/domain"
)

// UsageXLSX renders the machine usage report as a spreadsheet download.
func UsageXLSX(r *domain.UsageReport) ([]byte, error) {
	headers := []string{"Machine Name", "Type", "Total Sessions", "Total Calories", "Avg Heart Rate", "Avg Duration (min)", "Quality Score"}
	rows := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, []string{
			row.MachineName,
			row.MachineType,
			fmt.Sprintf("%d", row.TotalSessions),
			fmt.Sprintf("%d", row.TotalCalories),
			fmt.Sprintf("%.1f", row.AvgHeartRate),
			fmt.Sprintf("%.1f", row.AvgDurationMinutes),
			fmt.Sprintf("%.1f", row.QualityScore),
		})
	}
	return writeSheet(headers, rows)
}

// ProgressXLSX renders a member's progress report as a spreadsheet download.
func ProgressXLSX(r *domain.ProgressReport) ([]byte, error) {
	headers := []string{"Date", "Machine", "Duration (min)", "Calories", "Heart Rate", "Distance (km)", "Avg Speed (km/h)", "Quality"}
	rows := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, []string{
			formatDate(row.Date),
			row.MachineName,
			fmt.Sprintf("%d", row.DurationMinutes),
			fmt.Sprintf("%d", row.Calories),
			fmt.Sprintf("%d", row.HeartRate),
			fmt.Sprintf("%.1f", row.DistanceKm),
			fmt.Sprintf("%.1f", row.AvgSpeedKmh),
			row.Quality,
		})
	}
	return writeSheet(headers, rows)
}

func writeSheet(headers []string, rows [][]string) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, row := range rows {
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write excel buffer: %w", err)
	}
	return buf.Bytes(), nil
}
