package domain

import (
	"strings"
	"time"
)

// Quality rule bounds. Sessions outside these ranges are flagged, never
// rejected.
const (
	MinCalories        = 1
	MaxCalories        = 1500
	MinHeartRate       = 40
	MaxHeartRate       = 220
	MaxDistanceKm      = 50
	MaxSpeedKmh        = 30
	MinDurationMinutes = 1
	MaxDurationMinutes = 180
)

// DefaultQualityIssue is printed when a session is flagged but carries no
// issue text (legacy rows flagged before issue capture existed).
const DefaultQualityIssue = "Data validation failed"

// ValidateQuality runs the full rule battery against the session and stamps
// the quality flag and issue list. Every rule is evaluated; nothing
// short-circuits, so the issue string names all problems in one pass. The
// caller supplies now so start-time rules are deterministic under test.
func ValidateQuality(s *WorkoutSession, now time.Time) {
	var issues []string

	if s.CaloriesBurned != nil {
		if *s.CaloriesBurned < MinCalories {
			issues = append(issues, "Calories burned cannot be less than 1")
		}
		if *s.CaloriesBurned > MaxCalories {
			issues = append(issues, "Calories burned cannot exceed 1500 per session")
		}
	} else {
		issues = append(issues, "Calories burned is required")
	}

	if s.AvgHeartRate != nil {
		if *s.AvgHeartRate < MinHeartRate {
			issues = append(issues, "Heart rate cannot be less than 40 bpm")
		}
		if *s.AvgHeartRate > MaxHeartRate {
			issues = append(issues, "Heart rate cannot exceed 220 bpm")
		}
	}

	if s.Distance != nil {
		if *s.Distance < 0 {
			issues = append(issues, "Distance cannot be negative")
		}
		if *s.Distance > MaxDistanceKm {
			issues = append(issues, "Distance cannot exceed 50 km per session")
		}
	}

	if s.AvgSpeed != nil {
		if *s.AvgSpeed < 0 {
			issues = append(issues, "Speed cannot be negative")
		}
		if *s.AvgSpeed > MaxSpeedKmh {
			issues = append(issues, "Speed cannot exceed 30 km/h")
		}
	}

	if s.Duration != nil {
		minutes := int64(*s.Duration / time.Minute)
		if minutes > MaxDurationMinutes {
			issues = append(issues, "Workout duration cannot exceed 3 hours")
		}
		if minutes < MinDurationMinutes {
			issues = append(issues, "Workout duration must be at least 1 minute")
		}
	} else {
		issues = append(issues, "Workout duration is required")
	}

	if s.StartTime != nil {
		if s.StartTime.After(now) {
			issues = append(issues, "Start time cannot be in the future")
		}
		if s.StartTime.Before(now.AddDate(-1, 0, 0)) {
			issues = append(issues, "Start time is too far in the past")
		}
	} else {
		issues = append(issues, "Start time is required")
	}

	if s.MachineID == "" {
		issues = append(issues, "Machine information is required")
	}

	if s.UserID == "" {
		issues = append(issues, "User information is required")
	}

	if len(issues) > 0 {
		s.QualityFlag = false
		joined := strings.Join(issues, "; ")
		s.QualityIssues = &joined
		return
	}
	s.QualityFlag = true
	s.QualityIssues = nil
}

// QualityScore returns the percentage of sessions that passed validation.
// An empty set scores 100.
func QualityScore(sessions []WorkoutSession) float64 {
	if len(sessions) == 0 {
		return 100.0
	}
	var passing int
	for _, s := range sessions {
		if s.QualityFlag {
			passing++
		}
	}
	return float64(passing) / float64(len(sessions)) * 100
}
