package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WorkoutService orchestrates the workout session lifecycle: it resolves
// references, derives missing time fields, stamps the quality verdict and
// hands the session to the repository.
type WorkoutService struct {
	sessions SessionRepository
	machines MachineRepository
	users    UserRepository
	now      func() time.Time
}

// NewWorkoutService constructs a WorkoutService.
func NewWorkoutService(sessions SessionRepository, machines MachineRepository, users UserRepository) *WorkoutService {
	return &WorkoutService{
		sessions: sessions,
		machines: machines,
		users:    users,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock, used by tests.
func (s *WorkoutService) WithClock(now func() time.Time) *WorkoutService {
	s.now = now
	return s
}

// LogWorkoutInput captures the payload from the API layer. Optional
// measurements stay nil when the member never reported them.
type LogWorkoutInput struct {
	UserID          string
	MachineID       string
	StartTime       *time.Time
	EndTime         *time.Time
	DurationMinutes *int
	CaloriesBurned  *int
	AvgHeartRate    *int
	Distance        *float64
	AvgSpeed        *float64
	ResistanceLevel *int
	InclineLevel    *int
	Notes           string
}

// LogWorkout records a new workout session. Out-of-range measurements do not
// fail the call; they are stamped onto the session as quality issues and the
// session persists regardless. Only unresolvable references fail.
func (s *WorkoutService) LogWorkout(ctx context.Context, input LogWorkoutInput) (*WorkoutSession, error) {
	user, err := s.users.Get(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	machine, err := s.machines.Get(ctx, input.MachineID)
	if err != nil {
		return nil, err
	}
	if machine == nil {
		return nil, ErrMachineNotFound
	}

	now := s.now()
	session := WorkoutSession{
		ID:              uuid.NewString(),
		UserID:          input.UserID,
		MachineID:       input.MachineID,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		CaloriesBurned:  input.CaloriesBurned,
		AvgHeartRate:    input.AvgHeartRate,
		Distance:        input.Distance,
		AvgSpeed:        input.AvgSpeed,
		ResistanceLevel: input.ResistanceLevel,
		InclineLevel:    input.InclineLevel,
		Notes:           input.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if input.DurationMinutes != nil {
		d := time.Duration(*input.DurationMinutes) * time.Minute
		session.Duration = &d
	}

	NormalizeTimes(&session)
	ValidateQuality(&session, now)

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateWorkoutInput carries a partial update; nil fields keep their stored
// values.
type UpdateWorkoutInput struct {
	MachineID       *string
	StartTime       *time.Time
	EndTime         *time.Time
	DurationMinutes *int
	CaloriesBurned  *int
	AvgHeartRate    *int
	Distance        *float64
	AvgSpeed        *float64
	ResistanceLevel *int
	InclineLevel    *int
	Notes           *string
}

// UpdateWorkout applies the provided fields, re-derives missing time fields
// and re-runs the quality validation before persisting.
func (s *WorkoutService) UpdateWorkout(ctx context.Context, sessionID string, input UpdateWorkoutInput) (*WorkoutSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if input.MachineID != nil {
		machine, err := s.machines.Get(ctx, *input.MachineID)
		if err != nil {
			return nil, err
		}
		if machine == nil {
			return nil, ErrMachineNotFound
		}
		session.MachineID = *input.MachineID
	}
	if input.StartTime != nil {
		session.StartTime = input.StartTime
	}
	if input.EndTime != nil {
		session.EndTime = input.EndTime
	}
	if input.DurationMinutes != nil {
		d := time.Duration(*input.DurationMinutes) * time.Minute
		session.Duration = &d
	}
	if input.CaloriesBurned != nil {
		session.CaloriesBurned = input.CaloriesBurned
	}
	if input.AvgHeartRate != nil {
		session.AvgHeartRate = input.AvgHeartRate
	}
	if input.Distance != nil {
		session.Distance = input.Distance
	}
	if input.AvgSpeed != nil {
		session.AvgSpeed = input.AvgSpeed
	}
	if input.ResistanceLevel != nil {
		session.ResistanceLevel = input.ResistanceLevel
	}
	if input.InclineLevel != nil {
		session.InclineLevel = input.InclineLevel
	}
	if input.Notes != nil {
		session.Notes = *input.Notes
	}

	now := s.now()
	session.UpdatedAt = now

	NormalizeTimes(session)
	ValidateQuality(session, now)

	if err := s.sessions.Update(ctx, *session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetWorkout fetches a session by ID.
func (s *WorkoutService) GetWorkout(ctx context.Context, sessionID string) (*WorkoutSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// DeleteWorkout removes a session by ID.
func (s *WorkoutService) DeleteWorkout(ctx context.Context, sessionID string) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	return s.sessions.Delete(ctx, sessionID)
}

// ListWorkoutsByUser fetches a user's sessions, most recent first, with
// cursor pagination.
func (s *WorkoutService) ListWorkoutsByUser(ctx context.Context, userID string, cursor *Cursor, limit int) ([]WorkoutSession, *Cursor, error) {
	return s.sessions.ListByUser(ctx, userID, cursor, limit)
}

// ListFlaggedWorkouts returns every session that failed quality validation.
func (s *WorkoutService) ListFlaggedWorkouts(ctx context.Context) ([]WorkoutSession, error) {
	return s.sessions.ListFlagged(ctx)
}
