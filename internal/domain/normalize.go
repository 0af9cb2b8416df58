package domain

// NormalizeTimes derives the missing member of {start time, end time,
// duration} when the other two are present. With fewer than two populated it
// leaves the session untouched and the quality validator reports the gaps.
// Running it twice yields the same result: it only ever fills nil fields.
//
// A fully populated triple is not cross-checked for consistency; flagged for
// product clarification rather than inventing a stricter rule here.
func NormalizeTimes(s *WorkoutSession) {
	switch {
	case s.StartTime != nil && s.Duration != nil && s.EndTime == nil:
		end := s.StartTime.Add(*s.Duration)
		s.EndTime = &end
	case s.StartTime != nil && s.EndTime != nil && s.Duration == nil:
		d := s.EndTime.Sub(*s.StartTime)
		s.Duration = &d
	case s.Duration != nil && s.EndTime != nil && s.StartTime == nil:
		start := s.EndTime.Add(-*s.Duration)
		s.StartTime = &start
	}
}
