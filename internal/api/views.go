package api

import (
	"time"

	"example.com/gymtrack/internal/domain"
)

// LogWorkoutRequest is the payload for POST /v1/workouts. Measurement ranges
// are deliberately not enforced here; out-of-range values are flagged by the
// quality validator and persisted anyway.
type LogWorkoutRequest struct {
	UserID          string     `json:"user_id"`
	MachineID       string     `json:"machine_id" validate:"required"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationMinutes *int       `json:"duration_min"`
	CaloriesBurned  *int       `json:"calories_burned"`
	AvgHeartRate    *int       `json:"avg_heart_rate"`
	Distance        *float64   `json:"distance_km"`
	AvgSpeed        *float64   `json:"avg_speed_kmh"`
	ResistanceLevel *int       `json:"resistance_level"`
	InclineLevel    *int       `json:"incline_level"`
	Notes           string     `json:"notes"`
}

// UpdateWorkoutRequest is the payload for PUT /v1/workouts/{id}. Absent
// fields keep their stored values.
type UpdateWorkoutRequest struct {
	MachineID       *string    `json:"machine_id"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationMinutes *int       `json:"duration_min"`
	CaloriesBurned  *int       `json:"calories_burned"`
	AvgHeartRate    *int       `json:"avg_heart_rate"`
	Distance        *float64   `json:"distance_km"`
	AvgSpeed        *float64   `json:"avg_speed_kmh"`
	ResistanceLevel *int       `json:"resistance_level"`
	InclineLevel    *int       `json:"incline_level"`
	Notes           *string    `json:"notes"`
}

// CreateMachineRequest is the payload for POST /v1/machines.
type CreateMachineRequest struct {
	Name                    string `json:"name" validate:"required"`
	Type                    string `json:"type" validate:"required"`
	Location                string `json:"location"`
	MaintenanceIntervalDays int    `json:"maintenance_interval_days" validate:"gte=0"`
}

// UpdateMachineStatusRequest is the payload for PUT /v1/machines/{id}/status.
type UpdateMachineStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE MAINTENANCE INACTIVE"`
}

// WorkoutView exposes full details about a workout session.
type WorkoutView struct {
	SessionID       string     `json:"session_id"`
	UserID          string     `json:"user_id"`
	MachineID       string     `json:"machine_id"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes *int64     `json:"duration_min,omitempty"`
	CaloriesBurned  *int       `json:"calories_burned,omitempty"`
	AvgHeartRate    *int       `json:"avg_heart_rate,omitempty"`
	Distance        *float64   `json:"distance_km,omitempty"`
	AvgSpeed        *float64   `json:"avg_speed_kmh,omitempty"`
	ResistanceLevel *int       `json:"resistance_level,omitempty"`
	InclineLevel    *int       `json:"incline_level,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	QualityFlag     bool       `json:"quality_flag"`
	QualityIssues   *string    `json:"quality_issues,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ListWorkoutsResponse packages list results.
type ListWorkoutsResponse struct {
	Items      []WorkoutView `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// MachineView exposes a machine's inventory record.
type MachineView struct {
	MachineID               string     `json:"machine_id"`
	Name                    string     `json:"name"`
	Type                    string     `json:"type"`
	Status                  string     `json:"status"`
	Location                string     `json:"location,omitempty"`
	MaintenanceIntervalDays int        `json:"maintenance_interval_days"`
	LastMaintenance         *time.Time `json:"last_maintenance,omitempty"`
	NextMaintenance         *time.Time `json:"next_maintenance,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

// ListMachinesResponse packages the inventory listing.
type ListMachinesResponse struct {
	Items []MachineView `json:"items"`
}

// UsageRowView is one machine group in the usage report.
type UsageRowView struct {
	MachineName        string  `json:"machine_name"`
	MachineType        string  `json:"machine_type"`
	TotalSessions      int     `json:"total_sessions"`
	TotalCalories      int     `json:"total_calories"`
	AvgHeartRate       float64 `json:"avg_heart_rate"`
	AvgDurationMinutes float64 `json:"avg_duration_min"`
	QualityScore       float64 `json:"quality_score"`
}

// UsageReportResponse is the JSON form of the machine usage report.
type UsageReportResponse struct {
	From time.Time      `json:"from"`
	To   time.Time      `json:"to"`
	Rows []UsageRowView `json:"rows"`
}

// ProgressRowView is one session in a member's progress report.
type ProgressRowView struct {
	Date            string  `json:"date"`
	MachineName     string  `json:"machine_name"`
	DurationMinutes int64   `json:"duration_min"`
	Calories        int     `json:"calories"`
	HeartRate       int     `json:"heart_rate"`
	DistanceKm      float64 `json:"distance_km"`
	AvgSpeedKmh     float64 `json:"avg_speed_kmh"`
	Quality         string  `json:"quality"`
}

// ProgressSummaryView totals a member's sessions.
type ProgressSummaryView struct {
	TotalWorkouts      int     `json:"total_workouts"`
	TotalCalories      int     `json:"total_calories"`
	TotalDistanceKm    float64 `json:"total_distance_km"`
	AvgDurationMinutes float64 `json:"avg_duration_min"`
}

// ProgressReportResponse is the JSON form of the member progress report.
type ProgressReportResponse struct {
	MemberName string              `json:"member_name"`
	From       time.Time           `json:"from"`
	To         time.Time           `json:"to"`
	Rows       []ProgressRowView   `json:"rows"`
	Summary    ProgressSummaryView `json:"summary"`
}

// QualityDetailView describes one flagged session.
type QualityDetailView struct {
	MemberName  string `json:"member_name"`
	Date        string `json:"date"`
	MachineName string `json:"machine_name"`
	Issues      string `json:"issues"`
}

// QualityReportResponse is the JSON form of the data quality report.
type QualityReportResponse struct {
	GeneratedAt     time.Time           `json:"generated_at"`
	TotalSessions   int                 `json:"total_sessions"`
	FlaggedSessions int                 `json:"flagged_sessions"`
	QualityScore    float64             `json:"quality_score"`
	Details         []QualityDetailView `json:"details"`
}

// MachineSnapshotView is the per-machine block of the system report.
type MachineSnapshotView struct {
	MachineName     string `json:"machine_name"`
	Sessions        int64  `json:"sessions"`
	Status          string `json:"status"`
	LastMaintenance string `json:"last_maintenance"`
}

// SystemReportResponse is the JSON form of the system snapshot.
type SystemReportResponse struct {
	GeneratedAt    time.Time             `json:"generated_at"`
	TotalUsers     int64                 `json:"total_users"`
	TotalMachines  int64                 `json:"total_machines"`
	TotalSessions  int64                 `json:"total_sessions"`
	Machines       []MachineSnapshotView `json:"machines"`
	RecentSessions int                   `json:"recent_sessions"`
	QualityScore   float64               `json:"quality_score"`
}

func toWorkoutView(s domain.WorkoutSession) WorkoutView {
	view := WorkoutView{
		SessionID:       s.ID,
		UserID:          s.UserID,
		MachineID:       s.MachineID,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		CaloriesBurned:  s.CaloriesBurned,
		AvgHeartRate:    s.AvgHeartRate,
		Distance:        s.Distance,
		AvgSpeed:        s.AvgSpeed,
		ResistanceLevel: s.ResistanceLevel,
		InclineLevel:    s.InclineLevel,
		Notes:           s.Notes,
		QualityFlag:     s.QualityFlag,
		QualityIssues:   s.QualityIssues,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
	if s.Duration != nil {
		minutes := int64(*s.Duration / time.Minute)
		view.DurationMinutes = &minutes
	}
	return view
}

func toMachineView(m domain.Machine) MachineView {
	return MachineView{
		MachineID:               m.ID,
		Name:                    m.Name,
		Type:                    m.Type,
		Status:                  string(m.Status),
		Location:                m.Location,
		MaintenanceIntervalDays: m.MaintenanceIntervalDays,
		LastMaintenance:         m.LastMaintenance,
		NextMaintenance:         m.NextMaintenance,
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
	}
}

func toUsageView(r *domain.UsageReport) UsageReportResponse {
	resp := UsageReportResponse{From: r.From, To: r.To, Rows: make([]UsageRowView, 0, len(r.Rows))}
	for _, row := range r.Rows {
		resp.Rows = append(resp.Rows, UsageRowView{
			MachineName:        row.MachineName,
			MachineType:        row.MachineType,
			TotalSessions:      row.TotalSessions,
			TotalCalories:      row.TotalCalories,
			AvgHeartRate:       row.AvgHeartRate,
			AvgDurationMinutes: row.AvgDurationMinutes,
			QualityScore:       row.QualityScore,
		})
	}
	return resp
}

func toProgressView(r *domain.ProgressReport) ProgressReportResponse {
	resp := ProgressReportResponse{
		MemberName: r.MemberName,
		From:       r.From,
		To:         r.To,
		Rows:       make([]ProgressRowView, 0, len(r.Rows)),
		Summary: ProgressSummaryView{
			TotalWorkouts:      r.Summary.TotalWorkouts,
			TotalCalories:      r.Summary.TotalCalories,
			TotalDistanceKm:    r.Summary.TotalDistanceKm,
			AvgDurationMinutes: r.Summary.AvgDurationMinutes,
		},
	}
	for _, row := range r.Rows {
		resp.Rows = append(resp.Rows, ProgressRowView{
			Date:            formatViewDate(row.Date),
			MachineName:     row.MachineName,
			DurationMinutes: row.DurationMinutes,
			Calories:        row.Calories,
			HeartRate:       row.HeartRate,
			DistanceKm:      row.DistanceKm,
			AvgSpeedKmh:     row.AvgSpeedKmh,
			Quality:         row.Quality,
		})
	}
	return resp
}

func toQualityView(r *domain.QualityReport) QualityReportResponse {
	resp := QualityReportResponse{
		GeneratedAt:     r.GeneratedAt,
		TotalSessions:   r.TotalSessions,
		FlaggedSessions: r.FlaggedSessions,
		QualityScore:    r.QualityScore,
		Details:         make([]QualityDetailView, 0, len(r.Details)),
	}
	for _, detail := range r.Details {
		resp.Details = append(resp.Details, QualityDetailView{
			MemberName:  detail.MemberName,
			Date:        formatViewDate(detail.Date),
			MachineName: detail.MachineName,
			Issues:      detail.Issues,
		})
	}
	return resp
}

func toSystemView(r *domain.SystemReport) SystemReportResponse {
	resp := SystemReportResponse{
		GeneratedAt:    r.GeneratedAt,
		TotalUsers:     r.TotalUsers,
		TotalMachines:  r.TotalMachines,
		TotalSessions:  r.TotalSessions,
		Machines:       make([]MachineSnapshotView, 0, len(r.Machines)),
		RecentSessions: r.RecentSessions,
		QualityScore:   r.QualityScore,
	}
	for _, machine := range r.Machines {
		last := "Never"
		if machine.LastMaintenance != nil {
			last = machine.LastMaintenance.Format("2006-01-02")
		}
		resp.Machines = append(resp.Machines, MachineSnapshotView{
			MachineName:     machine.MachineName,
			Sessions:        machine.Sessions,
			Status:          string(machine.Status),
			LastMaintenance: last,
		})
	}
	return resp
}

func formatViewDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
