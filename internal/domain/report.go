package domain

import (
	"context"
	"math"
	"time"
)

// MachineUsageRow is one group in the machine usage report. Averages exclude
// sessions that never reported the value; sums treat them as zero.
type MachineUsageRow struct {
	MachineName        string
	MachineType        string
	TotalSessions      int
	TotalCalories      int
	AvgHeartRate       float64
	AvgDurationMinutes float64
	QualityScore       float64
}

// UsageReport aggregates sessions in a date range grouped by machine.
type UsageReport struct {
	From time.Time
	To   time.Time
	Rows []MachineUsageRow
}

// ProgressRow is one session in a member's progress report.
type ProgressRow struct {
	Date            time.Time
	MachineName     string
	DurationMinutes int64
	Calories        int
	HeartRate       int
	DistanceKm      float64
	AvgSpeedKmh     float64
	Quality         string
}

// ProgressSummary totals a member's sessions. Missing calories and distance
// count as zero in the sums; missing durations are excluded from the average
// rather than dragging it down.
type ProgressSummary struct {
	TotalWorkouts      int
	TotalCalories      int
	TotalDistanceKm    float64
	AvgDurationMinutes float64
}

// ProgressReport is the per-member report, most recent session first.
type ProgressReport struct {
	MemberName string
	From       time.Time
	To         time.Time
	Rows       []ProgressRow
	Summary    ProgressSummary
}

// QualityDetailRow describes one flagged session.
type QualityDetailRow struct {
	MemberName  string
	Date        time.Time
	MachineName string
	Issues      string
}

// QualityReport summarises validation results across all sessions.
type QualityReport struct {
	GeneratedAt     time.Time
	TotalSessions   int
	FlaggedSessions int
	QualityScore    float64
	Details         []QualityDetailRow
}

// MachineSnapshot is the per-machine block of the system report.
type MachineSnapshot struct {
	MachineName     string
	Sessions        int64
	Status          MachineStatus
	LastMaintenance *time.Time
}

// SystemReport is the operator-facing snapshot of the whole installation.
type SystemReport struct {
	GeneratedAt    time.Time
	TotalUsers     int64
	TotalMachines  int64
	TotalSessions  int64
	Machines       []MachineSnapshot
	RecentSessions int
	QualityScore   float64
}

// ReportService computes read-only aggregations over persisted sessions.
type ReportService struct {
	sessions SessionRepository
	machines MachineRepository
	users    UserRepository
	now      func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(sessions SessionRepository, machines MachineRepository, users UserRepository) *ReportService {
	return &ReportService{
		sessions: sessions,
		machines: machines,
		users:    users,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock, used by tests.
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// MachineUsage groups sessions whose start time falls in [from, to] by
// machine. Rows appear in first-seen order of the underlying sessions; the
// ordering is not part of the contract.
func (s *ReportService) MachineUsage(ctx context.Context, from, to time.Time) (*UsageReport, error) {
	sessions, err := s.sessions.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	names, err := s.machineIndex(ctx)
	if err != nil {
		return nil, err
	}

	var order []string
	groups := make(map[string][]WorkoutSession)
	for _, session := range sessions {
		if _, seen := groups[session.MachineID]; !seen {
			order = append(order, session.MachineID)
		}
		groups[session.MachineID] = append(groups[session.MachineID], session)
	}

	report := &UsageReport{From: from, To: to, Rows: make([]MachineUsageRow, 0, len(order))}
	for _, machineID := range order {
		group := groups[machineID]

		row := MachineUsageRow{
			MachineName:   machineID,
			TotalSessions: len(group),
			QualityScore:  round1(QualityScore(group)),
		}
		if machine, ok := names[machineID]; ok {
			row.MachineName = machine.Name
			row.MachineType = machine.Type
		}

		var hrSum, hrCount int
		var durSum float64
		var durCount int
		for _, session := range group {
			if session.CaloriesBurned != nil {
				row.TotalCalories += *session.CaloriesBurned
			}
			if session.AvgHeartRate != nil {
				hrSum += *session.AvgHeartRate
				hrCount++
			}
			if session.Duration != nil {
				durSum += session.Duration.Minutes()
				durCount++
			}
		}
		if hrCount > 0 {
			row.AvgHeartRate = round1(float64(hrSum) / float64(hrCount))
		}
		if durCount > 0 {
			row.AvgDurationMinutes = round1(durSum / float64(durCount))
		}

		report.Rows = append(report.Rows, row)
	}
	return report, nil
}

// MemberProgress reports one member's sessions in [from, to], most recent
// first, plus totals.
func (s *ReportService) MemberProgress(ctx context.Context, userID string, from, to time.Time) (*ProgressReport, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	sessions, err := s.sessions.ListByUserBetween(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	names, err := s.machineIndex(ctx)
	if err != nil {
		return nil, err
	}

	report := &ProgressReport{
		MemberName: user.DisplayName(),
		From:       from,
		To:         to,
		Rows:       make([]ProgressRow, 0, len(sessions)),
	}

	var durSum float64
	var durCount int
	for _, session := range sessions {
		row := ProgressRow{
			MachineName: session.MachineID,
			Quality:     "Good",
		}
		if !session.QualityFlag {
			row.Quality = "Issues"
		}
		if machine, ok := names[session.MachineID]; ok {
			row.MachineName = machine.Name
		}
		if session.StartTime != nil {
			row.Date = *session.StartTime
		}
		if session.Duration != nil {
			row.DurationMinutes = int64(*session.Duration / time.Minute)
			durSum += session.Duration.Minutes()
			durCount++
		}
		if session.CaloriesBurned != nil {
			row.Calories = *session.CaloriesBurned
			report.Summary.TotalCalories += *session.CaloriesBurned
		}
		if session.AvgHeartRate != nil {
			row.HeartRate = *session.AvgHeartRate
		}
		if session.Distance != nil {
			row.DistanceKm = *session.Distance
			report.Summary.TotalDistanceKm += *session.Distance
		}
		if session.AvgSpeed != nil {
			row.AvgSpeedKmh = *session.AvgSpeed
		}
		report.Rows = append(report.Rows, row)
	}

	report.Summary.TotalWorkouts = len(sessions)
	if durCount > 0 {
		report.Summary.AvgDurationMinutes = round1(durSum / float64(durCount))
	}
	return report, nil
}

// DataQuality reports validation results across every persisted session, with
// one detail row per flagged session.
func (s *ReportService) DataQuality(ctx context.Context) (*QualityReport, error) {
	sessions, err := s.sessions.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	names, err := s.machineIndex(ctx)
	if err != nil {
		return nil, err
	}

	report := &QualityReport{
		GeneratedAt:   s.now(),
		TotalSessions: len(sessions),
		QualityScore:  round1(QualityScore(sessions)),
	}

	members := make(map[string]string)
	for _, session := range sessions {
		if session.QualityFlag {
			continue
		}
		report.FlaggedSessions++

		detail := QualityDetailRow{
			MemberName:  session.UserID,
			MachineName: session.MachineID,
			Issues:      DefaultQualityIssue,
		}
		if session.QualityIssues != nil {
			detail.Issues = *session.QualityIssues
		}
		if session.StartTime != nil {
			detail.Date = *session.StartTime
		}
		if machine, ok := names[session.MachineID]; ok {
			detail.MachineName = machine.Name
		}
		if name, ok := members[session.UserID]; ok {
			detail.MemberName = name
		} else if user, err := s.users.Get(ctx, session.UserID); err == nil && user != nil {
			members[session.UserID] = user.DisplayName()
			detail.MemberName = user.DisplayName()
		}

		report.Details = append(report.Details, detail)
	}
	return report, nil
}

// SystemSnapshot reports installation-wide counts, per-machine usage and the
// trailing 7-day activity window.
func (s *ReportService) SystemSnapshot(ctx context.Context) (*SystemReport, error) {
	now := s.now()

	report := &SystemReport{GeneratedAt: now}

	var err error
	if report.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if report.TotalMachines, err = s.machines.Count(ctx); err != nil {
		return nil, err
	}
	if report.TotalSessions, err = s.sessions.Count(ctx); err != nil {
		return nil, err
	}

	machines, err := s.machines.List(ctx)
	if err != nil {
		return nil, err
	}
	report.Machines = make([]MachineSnapshot, 0, len(machines))
	for _, machine := range machines {
		count, err := s.sessions.CountByMachine(ctx, machine.ID)
		if err != nil {
			return nil, err
		}
		report.Machines = append(report.Machines, MachineSnapshot{
			MachineName:     machine.Name,
			Sessions:        count,
			Status:          machine.Status,
			LastMaintenance: machine.LastMaintenance,
		})
	}

	recent, err := s.sessions.ListBetween(ctx, now.AddDate(0, 0, -7), now)
	if err != nil {
		return nil, err
	}
	report.RecentSessions = len(recent)

	all, err := s.sessions.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	report.QualityScore = round1(QualityScore(all))

	return report, nil
}

func (s *ReportService) machineIndex(ctx context.Context) (map[string]Machine, error) {
	machines, err := s.machines.List(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]Machine, len(machines))
	for _, machine := range machines {
		index[machine.ID] = machine
	}
	return index, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
