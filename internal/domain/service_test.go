package domain

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubSessions struct {
	sessions map[string]WorkoutSession
	order    []string
}

func newStubSessions() *stubSessions {
	return &stubSessions{sessions: make(map[string]WorkoutSession)}
}

func (s *stubSessions) Create(ctx context.Context, session WorkoutSession) error {
	s.sessions[session.ID] = session
	s.order = append(s.order, session.ID)
	return nil
}

func (s *stubSessions) Update(ctx context.Context, session WorkoutSession) error {
	s.sessions[session.ID] = session
	return nil
}

func (s *stubSessions) Delete(ctx context.Context, sessionID string) error {
	delete(s.sessions, sessionID)
	return nil
}

func (s *stubSessions) Get(ctx context.Context, sessionID string) (*WorkoutSession, error) {
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (s *stubSessions) ListByUser(ctx context.Context, userID string, cursor *Cursor, limit int) ([]WorkoutSession, *Cursor, error) {
	var out []WorkoutSession
	for _, session := range s.all() {
		if session.UserID == userID {
			out = append(out, session)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		left, right := out[i].StartTime, out[j].StartTime
		if left == nil || right == nil {
			return right == nil
		}
		return left.After(*right)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil, nil
}

func (s *stubSessions) ListBetween(ctx context.Context, from, to time.Time) ([]WorkoutSession, error) {
	var out []WorkoutSession
	for _, session := range s.all() {
		if session.StartTime == nil {
			continue
		}
		if session.StartTime.Before(from) || session.StartTime.After(to) {
			continue
		}
		out = append(out, session)
	}
	return out, nil
}

func (s *stubSessions) ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]WorkoutSession, error) {
	sessions, err := s.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	var out []WorkoutSession
	for _, session := range sessions {
		if session.UserID == userID {
			out = append(out, session)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.After(*out[j].StartTime)
	})
	return out, nil
}

func (s *stubSessions) ListAll(ctx context.Context) ([]WorkoutSession, error) {
	return s.all(), nil
}

func (s *stubSessions) ListFlagged(ctx context.Context) ([]WorkoutSession, error) {
	var out []WorkoutSession
	for _, session := range s.all() {
		if !session.QualityFlag {
			out = append(out, session)
		}
	}
	return out, nil
}

func (s *stubSessions) Count(ctx context.Context) (int64, error) {
	return int64(len(s.sessions)), nil
}

func (s *stubSessions) CountByMachine(ctx context.Context, machineID string) (int64, error) {
	var count int64
	for _, session := range s.sessions {
		if session.MachineID == machineID {
			count++
		}
	}
	return count, nil
}

func (s *stubSessions) all() []WorkoutSession {
	out := make([]WorkoutSession, 0, len(s.order))
	for _, id := range s.order {
		if session, ok := s.sessions[id]; ok {
			out = append(out, session)
		}
	}
	return out
}

type stubMachines struct {
	machines map[string]Machine
}

func newStubMachines(machines ...Machine) *stubMachines {
	s := &stubMachines{machines: make(map[string]Machine)}
	for _, m := range machines {
		s.machines[m.ID] = m
	}
	return s
}

func (s *stubMachines) Create(ctx context.Context, machine Machine) error {
	s.machines[machine.ID] = machine
	return nil
}

func (s *stubMachines) Update(ctx context.Context, machine Machine) error {
	s.machines[machine.ID] = machine
	return nil
}

func (s *stubMachines) Delete(ctx context.Context, machineID string) error {
	delete(s.machines, machineID)
	return nil
}

func (s *stubMachines) Get(ctx context.Context, machineID string) (*Machine, error) {
	machine, ok := s.machines[machineID]
	if !ok {
		return nil, nil
	}
	return &machine, nil
}

func (s *stubMachines) GetByName(ctx context.Context, name string) (*Machine, error) {
	for _, machine := range s.machines {
		if machine.Name == name {
			m := machine
			return &m, nil
		}
	}
	return nil, nil
}

func (s *stubMachines) List(ctx context.Context) ([]Machine, error) {
	out := make([]Machine, 0, len(s.machines))
	for _, machine := range s.machines {
		out = append(out, machine)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *stubMachines) Count(ctx context.Context) (int64, error) {
	return int64(len(s.machines)), nil
}

type stubUsers struct {
	users map[string]User
}

func newStubUsers(users ...User) *stubUsers {
	s := &stubUsers{users: make(map[string]User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubUsers) Get(ctx context.Context, userID string) (*User, error) {
	user, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *stubUsers) Count(ctx context.Context) (int64, error) {
	return int64(len(s.users)), nil
}

func testClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestLogWorkoutDerivesEndTimeAndPasses(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	sessions := newStubSessions()
	machines := newStubMachines(Machine{ID: "machine-1", Name: "Treadmill A", Type: "treadmill"})
	users := newStubUsers(User{ID: "user-1", Username: "jdoe"})

	service := NewWorkoutService(sessions, machines, users).WithClock(testClock(now))

	start := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
	minutes := 45
	calories := 400
	heartRate := 150
	distance := 5.0
	speed := 6.7

	session, err := service.LogWorkout(context.Background(), LogWorkoutInput{
		UserID:          "user-1",
		MachineID:       "machine-1",
		StartTime:       &start,
		DurationMinutes: &minutes,
		CaloriesBurned:  &calories,
		AvgHeartRate:    &heartRate,
		Distance:        &distance,
		AvgSpeed:        &speed,
	})
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)

	require.NotNil(t, session.EndTime)
	require.Equal(t, time.Date(2024, time.June, 1, 8, 45, 0, 0, time.UTC), *session.EndTime)
	require.True(t, session.QualityFlag)
	require.Nil(t, session.QualityIssues)

	stored, err := sessions.Get(context.Background(), session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestLogWorkoutPersistsFlaggedSession(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	sessions := newStubSessions()
	machines := newStubMachines(Machine{ID: "machine-1", Name: "Bike", Type: "bike"})
	users := newStubUsers(User{ID: "user-1", Username: "jdoe"})

	service := NewWorkoutService(sessions, machines, users).WithClock(testClock(now))

	start := now.Add(-time.Hour)
	minutes := 45
	calories := 9000

	session, err := service.LogWorkout(context.Background(), LogWorkoutInput{
		UserID:          "user-1",
		MachineID:       "machine-1",
		StartTime:       &start,
		DurationMinutes: &minutes,
		CaloriesBurned:  &calories,
	})
	require.NoError(t, err)
	require.False(t, session.QualityFlag)
	require.NotNil(t, session.QualityIssues)
	require.Contains(t, *session.QualityIssues, "Calories burned cannot exceed 1500 per session")

	stored, err := sessions.Get(context.Background(), session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.False(t, stored.QualityFlag)
}

func TestLogWorkoutRejectsUnknownReferences(t *testing.T) {
	sessions := newStubSessions()
	machines := newStubMachines(Machine{ID: "machine-1"})
	users := newStubUsers(User{ID: "user-1"})
	service := NewWorkoutService(sessions, machines, users)

	_, err := service.LogWorkout(context.Background(), LogWorkoutInput{UserID: "ghost", MachineID: "machine-1"})
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = service.LogWorkout(context.Background(), LogWorkoutInput{UserID: "user-1", MachineID: "ghost"})
	require.ErrorIs(t, err, ErrMachineNotFound)
}

func TestUpdateWorkoutRevalidates(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	sessions := newStubSessions()
	machines := newStubMachines(Machine{ID: "machine-1", Name: "Rower", Type: "rower"})
	users := newStubUsers(User{ID: "user-1", Username: "jdoe"})

	service := NewWorkoutService(sessions, machines, users).WithClock(testClock(now))

	start := now.Add(-time.Hour)
	minutes := 45
	calories := 400
	heartRate := 150
	session, err := service.LogWorkout(context.Background(), LogWorkoutInput{
		UserID:          "user-1",
		MachineID:       "machine-1",
		StartTime:       &start,
		DurationMinutes: &minutes,
		CaloriesBurned:  &calories,
		AvgHeartRate:    &heartRate,
	})
	require.NoError(t, err)
	require.True(t, session.QualityFlag)

	badCalories := 0
	updated, err := service.UpdateWorkout(context.Background(), session.ID, UpdateWorkoutInput{
		CaloriesBurned: &badCalories,
	})
	require.NoError(t, err)
	require.False(t, updated.QualityFlag)
	require.NotNil(t, updated.QualityIssues)
	require.Contains(t, *updated.QualityIssues, "Calories burned cannot be less than 1")

	goodCalories := 350
	updated, err = service.UpdateWorkout(context.Background(), session.ID, UpdateWorkoutInput{
		CaloriesBurned: &goodCalories,
	})
	require.NoError(t, err)
	require.True(t, updated.QualityFlag)
	require.Nil(t, updated.QualityIssues)
}

func TestUpdateWorkoutUnknownSession(t *testing.T) {
	service := NewWorkoutService(newStubSessions(), newStubMachines(), newStubUsers())

	_, err := service.UpdateWorkout(context.Background(), "ghost", UpdateWorkoutInput{})
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestListFlaggedWorkouts(t *testing.T) {
	sessions := newStubSessions()
	require.NoError(t, sessions.Create(context.Background(), WorkoutSession{ID: "good", QualityFlag: true}))
	require.NoError(t, sessions.Create(context.Background(), WorkoutSession{ID: "bad", QualityFlag: false}))

	service := NewWorkoutService(sessions, newStubMachines(), newStubUsers())

	flagged, err := service.ListFlaggedWorkouts(context.Background())
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	require.Equal(t, "bad", flagged[0].ID)
}

func TestDeleteWorkout(t *testing.T) {
	sessions := newStubSessions()
	require.NoError(t, sessions.Create(context.Background(), WorkoutSession{ID: "session-1"}))

	service := NewWorkoutService(sessions, newStubMachines(), newStubUsers())

	require.NoError(t, service.DeleteWorkout(context.Background(), "session-1"))
	require.ErrorIs(t, service.DeleteWorkout(context.Background(), "session-1"), ErrSessionNotFound)
}
