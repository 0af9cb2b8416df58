// Package report renders aggregation results as CSV and XLSX downloads. The
// column order and labels of the usage and progress tables are a contract
// with downstream spreadsheet tooling.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"example.com/gymtrack/internal/domain"
)

const dateLayout = "2006-01-02"

// WriteUsageCSV renders the machine usage report.
func WriteUsageCSV(w io.Writer, r *domain.UsageReport) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	preamble := [][]string{
		{"Machine Usage Report"},
		{fmt.Sprintf("Period: %s to %s", r.From.Format(dateLayout), r.To.Format(dateLayout))},
		{},
		{"Machine Name", "Type", "Total Sessions", "Total Calories", "Avg Heart Rate", "Avg Duration (min)", "Quality Score"},
	}
	for _, record := range preamble {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write usage csv: %w", err)
		}
	}

	for _, row := range r.Rows {
		record := []string{
			row.MachineName,
			row.MachineType,
			fmt.Sprintf("%d", row.TotalSessions),
			fmt.Sprintf("%d", row.TotalCalories),
			fmt.Sprintf("%.1f", row.AvgHeartRate),
			fmt.Sprintf("%.1f", row.AvgDurationMinutes),
			fmt.Sprintf("%.1f", row.QualityScore),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write usage csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteProgressCSV renders a member's progress report.
func WriteProgressCSV(w io.Writer, r *domain.ProgressReport) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	preamble := [][]string{
		{"Member Progress Report"},
		{fmt.Sprintf("Member: %s", r.MemberName)},
		{fmt.Sprintf("Period: %s to %s", r.From.Format(dateLayout), r.To.Format(dateLayout))},
		{},
		{"Date", "Machine", "Duration (min)", "Calories", "Heart Rate", "Distance (km)", "Avg Speed (km/h)", "Quality"},
	}
	for _, record := range preamble {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write progress csv: %w", err)
		}
	}

	for _, row := range r.Rows {
		record := []string{
			formatDate(row.Date),
			row.MachineName,
			fmt.Sprintf("%d", row.DurationMinutes),
			fmt.Sprintf("%d", row.Calories),
			fmt.Sprintf("%d", row.HeartRate),
			fmt.Sprintf("%.1f", row.DistanceKm),
			fmt.Sprintf("%.1f", row.AvgSpeedKmh),
			row.Quality,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write progress csv row: %w", err)
		}
	}

	summary := [][]string{
		{},
		{"Summary:"},
		{"Total Workouts", fmt.Sprintf("%d", r.Summary.TotalWorkouts)},
		{"Total Calories", fmt.Sprintf("%d", r.Summary.TotalCalories)},
		{"Total Distance (km)", fmt.Sprintf("%.1f", r.Summary.TotalDistanceKm)},
		{"Avg Session Duration (min)", fmt.Sprintf("%.1f", r.Summary.AvgDurationMinutes)},
	}
	for _, record := range summary {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write progress csv summary: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteQualityCSV renders the data quality report.
func WriteQualityCSV(w io.Writer, r *domain.QualityReport) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	preamble := [][]string{
		{"Data Quality Report"},
		{fmt.Sprintf("Generated: %s", r.GeneratedAt.Format(time.RFC3339))},
		{},
		{"Total Sessions", fmt.Sprintf("%d", r.TotalSessions)},
		{"Sessions with Quality Issues", fmt.Sprintf("%d", r.FlaggedSessions)},
		{"Data Quality Score", fmt.Sprintf("%.1f%%", r.QualityScore)},
		{},
		{"Quality Issues Details:"},
		{"Member", "Date", "Machine", "Issue Description"},
	}
	for _, record := range preamble {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write quality csv: %w", err)
		}
	}

	for _, detail := range r.Details {
		record := []string{
			detail.MemberName,
			formatDate(detail.Date),
			detail.MachineName,
			detail.Issues,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write quality csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
