package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeTimesDerivesEndTime(t *testing.T) {
	start := time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)
	duration := 30 * time.Minute
	session := WorkoutSession{StartTime: &start, Duration: &duration}

	NormalizeTimes(&session)

	require.NotNil(t, session.EndTime)
	require.Equal(t, time.Date(2024, time.January, 1, 10, 30, 0, 0, time.UTC), *session.EndTime)
}

func TestNormalizeTimesDerivesDuration(t *testing.T) {
	start := time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)
	session := WorkoutSession{StartTime: &start, EndTime: &end}

	NormalizeTimes(&session)

	require.NotNil(t, session.Duration)
	require.Equal(t, 45*time.Minute, *session.Duration)
}

func TestNormalizeTimesDerivesStartTime(t *testing.T) {
	end := time.Date(2024, time.January, 1, 11, 0, 0, 0, time.UTC)
	duration := time.Hour
	session := WorkoutSession{EndTime: &end, Duration: &duration}

	NormalizeTimes(&session)

	require.NotNil(t, session.StartTime)
	require.Equal(t, time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC), *session.StartTime)
}

func TestNormalizeTimesLeavesUnderfilledSessionAlone(t *testing.T) {
	start := time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)
	session := WorkoutSession{StartTime: &start}

	NormalizeTimes(&session)

	require.Nil(t, session.EndTime)
	require.Nil(t, session.Duration)

	empty := WorkoutSession{}
	NormalizeTimes(&empty)
	require.Nil(t, empty.StartTime)
	require.Nil(t, empty.EndTime)
	require.Nil(t, empty.Duration)
}

func TestNormalizeTimesIsIdempotent(t *testing.T) {
	start := time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)
	duration := 30 * time.Minute
	session := WorkoutSession{StartTime: &start, Duration: &duration}

	NormalizeTimes(&session)
	first := *session.EndTime

	NormalizeTimes(&session)
	require.Equal(t, first, *session.EndTime)
	require.Equal(t, start, *session.StartTime)
	require.Equal(t, duration, *session.Duration)
}

func TestNormalizeTimesDoesNotOverwriteFullTriple(t *testing.T) {
	start := time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	duration := 30 * time.Minute
	session := WorkoutSession{StartTime: &start, EndTime: &end, Duration: &duration}

	NormalizeTimes(&session)

	require.Equal(t, start, *session.StartTime)
	require.Equal(t, end, *session.EndTime)
	require.Equal(t, 30*time.Minute, *session.Duration)
}
