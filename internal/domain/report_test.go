package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func seedSession(t *testing.T, sessions *stubSessions, session WorkoutSession) {
	t.Helper()
	require.NoError(t, sessions.Create(context.Background(), session))
}

func intPtr(v int) *int                     { return &v }
func floatPtr(v float64) *float64           { return &v }
func timePtr(v time.Time) *time.Time        { return &v }
func durPtr(v time.Duration) *time.Duration { return &v }

func TestMachineUsageGroupsAndAverages(t *testing.T) {
	from := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.June, 30, 23, 59, 59, 0, time.UTC)

	sessions := newStubSessions()
	// Two sessions on the treadmill: one missing heart rate and duration.
	// Sums treat the gaps as zero, averages skip them.
	seedSession(t, sessions, WorkoutSession{
		ID: "s1", UserID: "user-1", MachineID: "machine-1",
		StartTime: timePtr(from.AddDate(0, 0, 1)), Duration: durPtr(30 * time.Minute),
		CaloriesBurned: intPtr(100), AvgHeartRate: intPtr(140), QualityFlag: true,
	})
	seedSession(t, sessions, WorkoutSession{
		ID: "s2", UserID: "user-2", MachineID: "machine-1",
		StartTime:      timePtr(from.AddDate(0, 0, 2)),
		CaloriesBurned: intPtr(200), QualityFlag: false,
	})
	seedSession(t, sessions, WorkoutSession{
		ID: "s3", UserID: "user-1", MachineID: "machine-2",
		StartTime: timePtr(from.AddDate(0, 0, 3)), Duration: durPtr(45 * time.Minute),
		AvgHeartRate: intPtr(155), QualityFlag: true,
	})
	// Outside the range, must not appear.
	seedSession(t, sessions, WorkoutSession{
		ID: "s4", UserID: "user-1", MachineID: "machine-1",
		StartTime: timePtr(from.AddDate(0, -1, 0)), QualityFlag: true,
	})

	machines := newStubMachines(
		Machine{ID: "machine-1", Name: "Treadmill A", Type: "treadmill"},
		Machine{ID: "machine-2", Name: "Bike B", Type: "bike"},
	)
	service := NewReportService(sessions, machines, newStubUsers())

	report, err := service.MachineUsage(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)

	treadmill := report.Rows[0]
	require.Equal(t, "Treadmill A", treadmill.MachineName)
	require.Equal(t, "treadmill", treadmill.MachineType)
	require.Equal(t, 2, treadmill.TotalSessions)
	require.Equal(t, 300, treadmill.TotalCalories)
	require.InDelta(t, 140.0, treadmill.AvgHeartRate, 0.0001)
	require.InDelta(t, 30.0, treadmill.AvgDurationMinutes, 0.0001)
	require.InDelta(t, 50.0, treadmill.QualityScore, 0.0001)

	bike := report.Rows[1]
	require.Equal(t, "Bike B", bike.MachineName)
	require.Equal(t, 1, bike.TotalSessions)
	require.Equal(t, 0, bike.TotalCalories)
	require.InDelta(t, 100.0, bike.QualityScore, 0.0001)
}

func TestMachineUsageEmptyRange(t *testing.T) {
	service := NewReportService(newStubSessions(), newStubMachines(), newStubUsers())

	from := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	report, err := service.MachineUsage(context.Background(), from, from.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.Empty(t, report.Rows)
}

func TestMemberProgressSummaryAsymmetry(t *testing.T) {
	from := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	sessions := newStubSessions()
	// First session reports calories but no duration, second the reverse.
	// Calories sum treats the gap as zero; the duration average only sees
	// the one reported value.
	seedSession(t, sessions, WorkoutSession{
		ID: "s1", UserID: "user-1", MachineID: "machine-1",
		StartTime:      timePtr(from.AddDate(0, 0, 1)),
		CaloriesBurned: intPtr(100), QualityFlag: true,
	})
	seedSession(t, sessions, WorkoutSession{
		ID: "s2", UserID: "user-1", MachineID: "machine-1",
		StartTime: timePtr(from.AddDate(0, 0, 2)), Duration: durPtr(30 * time.Minute),
		Distance: floatPtr(4.2), QualityFlag: false,
	})

	machines := newStubMachines(Machine{ID: "machine-1", Name: "Treadmill A", Type: "treadmill"})
	users := newStubUsers(User{ID: "user-1", Username: "jdoe", FirstName: "Jane", LastName: "Doe"})
	service := NewReportService(sessions, machines, users)

	report, err := service.MemberProgress(context.Background(), "user-1", from, to)
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", report.MemberName)
	require.Len(t, report.Rows, 2)

	// Most recent first.
	require.Equal(t, from.AddDate(0, 0, 2), report.Rows[0].Date)
	require.Equal(t, "Issues", report.Rows[0].Quality)
	require.Equal(t, "Good", report.Rows[1].Quality)
	require.Equal(t, "Treadmill A", report.Rows[0].MachineName)

	require.Equal(t, 2, report.Summary.TotalWorkouts)
	require.Equal(t, 100, report.Summary.TotalCalories)
	require.InDelta(t, 4.2, report.Summary.TotalDistanceKm, 0.0001)
	require.InDelta(t, 30.0, report.Summary.AvgDurationMinutes, 0.0001)
}

func TestMemberProgressUnknownUser(t *testing.T) {
	service := NewReportService(newStubSessions(), newStubMachines(), newStubUsers())

	_, err := service.MemberProgress(context.Background(), "ghost", time.Time{}, time.Now())
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestDataQualityUsesFallbackIssueText(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	sessions := newStubSessions()
	issue := "Calories burned is required"
	seedSession(t, sessions, WorkoutSession{
		ID: "s1", UserID: "user-1", MachineID: "machine-1",
		StartTime: timePtr(now.Add(-time.Hour)), QualityFlag: false, QualityIssues: &issue,
	})
	// Flagged without captured issues, the report prints the fallback text.
	seedSession(t, sessions, WorkoutSession{
		ID: "s2", UserID: "user-2", MachineID: "machine-1",
		QualityFlag: false,
	})
	seedSession(t, sessions, WorkoutSession{
		ID: "s3", UserID: "user-1", MachineID: "machine-1",
		QualityFlag: true,
	})

	machines := newStubMachines(Machine{ID: "machine-1", Name: "Treadmill A", Type: "treadmill"})
	users := newStubUsers(User{ID: "user-1", Username: "jdoe", FirstName: "Jane", LastName: "Doe"})
	service := NewReportService(sessions, machines, users).WithClock(testClock(now))

	report, err := service.DataQuality(context.Background())
	require.NoError(t, err)
	require.Equal(t, now, report.GeneratedAt)
	require.Equal(t, 3, report.TotalSessions)
	require.Equal(t, 2, report.FlaggedSessions)
	require.InDelta(t, 33.3, report.QualityScore, 0.0001)
	require.Len(t, report.Details, 2)

	require.Equal(t, "Jane Doe", report.Details[0].MemberName)
	require.Equal(t, issue, report.Details[0].Issues)
	require.Equal(t, "Treadmill A", report.Details[0].MachineName)

	// Unknown member falls back to the raw ID, missing issues to the
	// default text, missing start time to the zero date.
	require.Equal(t, "user-2", report.Details[1].MemberName)
	require.Equal(t, DefaultQualityIssue, report.Details[1].Issues)
	require.True(t, report.Details[1].Date.IsZero())
}

func TestSystemSnapshotCounts(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	sessions := newStubSessions()
	seedSession(t, sessions, WorkoutSession{
		ID: "s1", UserID: "user-1", MachineID: "machine-1",
		StartTime: timePtr(now.AddDate(0, 0, -2)), QualityFlag: true,
	})
	seedSession(t, sessions, WorkoutSession{
		ID: "s2", UserID: "user-1", MachineID: "machine-1",
		StartTime: timePtr(now.AddDate(0, 0, -20)), QualityFlag: false,
	})

	lastMaint := now.AddDate(0, 0, -10)
	machines := newStubMachines(
		Machine{ID: "machine-1", Name: "Treadmill A", Status: MachineStatusActive, LastMaintenance: &lastMaint},
		Machine{ID: "machine-2", Name: "Bike B", Status: MachineStatusMaintenance},
	)
	users := newStubUsers(User{ID: "user-1"}, User{ID: "user-2"})
	service := NewReportService(sessions, machines, users).WithClock(testClock(now))

	report, err := service.SystemSnapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), report.TotalUsers)
	require.Equal(t, int64(2), report.TotalMachines)
	require.Equal(t, int64(2), report.TotalSessions)
	require.Equal(t, 1, report.RecentSessions)
	require.InDelta(t, 50.0, report.QualityScore, 0.0001)

	require.Len(t, report.Machines, 2)
	require.Equal(t, "Bike B", report.Machines[0].MachineName)
	require.Equal(t, int64(0), report.Machines[0].Sessions)
	require.Nil(t, report.Machines[0].LastMaintenance)
	require.Equal(t, "Treadmill A", report.Machines[1].MachineName)
	require.Equal(t, int64(2), report.Machines[1].Sessions)
	require.Equal(t, &lastMaint, report.Machines[1].LastMaintenance)
}

func TestRound1(t *testing.T) {
	require.Equal(t, 33.3, round1(100.0/3.0))
	require.Equal(t, 66.7, round1(200.0/3.0))
	require.Equal(t, 50.0, round1(50.0))
}
