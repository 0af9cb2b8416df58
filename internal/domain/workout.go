// Package domain defines the business logic for the gym tracking service.
package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrSessionNotFound is returned when a workout session cannot be located.
	ErrSessionNotFound = errors.New("workout session not found")
	// ErrMachineNotFound is returned when a machine cannot be located.
	ErrMachineNotFound = errors.New("machine not found")
	// ErrUserNotFound is returned when a user cannot be located.
	ErrUserNotFound = errors.New("user not found")
	// ErrMachineNameTaken indicates a machine with the same name already exists.
	ErrMachineNameTaken = errors.New("machine name already exists")
	// ErrMachineInUse indicates a machine still has workout sessions referencing it.
	ErrMachineInUse = errors.New("machine has associated workout sessions")
)

// WorkoutSession is the canonical workout record stored in PostgreSQL.
// Optional measurements are pointers; nil means the member never reported the
// value. Bad values are never rejected, they are flagged by the quality
// validator and persisted anyway.
type WorkoutSession struct {
	ID        string
	UserID    string
	MachineID string

	StartTime *time.Time
	EndTime   *time.Time
	Duration  *time.Duration

	CaloriesBurned  *int
	AvgHeartRate    *int
	Distance        *float64
	AvgSpeed        *float64
	ResistanceLevel *int
	InclineLevel    *int
	Notes           string

	QualityFlag   bool
	QualityIssues *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MachineStatus enumerates the operational states of a machine.
type MachineStatus string

const (
	MachineStatusActive      MachineStatus = "ACTIVE"
	MachineStatusMaintenance MachineStatus = "MAINTENANCE"
	MachineStatusInactive    MachineStatus = "INACTIVE"
)

// Machine is a piece of gym equipment sessions reference by ID. Sessions hold
// the foreign key; reverse lookups go through the session repository.
type Machine struct {
	ID       string
	Name     string
	Type     string
	Status   MachineStatus
	Location string

	MaintenanceIntervalDays int
	LastMaintenance         *time.Time
	NextMaintenance         *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserRole enumerates the access roles known to the system.
type UserRole string

const (
	RoleMember     UserRole = "MEMBER"
	RoleInstructor UserRole = "INSTRUCTOR"
	RoleAdmin      UserRole = "ADMIN"
)

// User is the member profile referenced by workout sessions. Credentials and
// token issuance live in the external identity layer; this row carries the
// display data reports need.
type User struct {
	ID        string
	Username  string
	Email     string
	FirstName string
	LastName  string
	Role      UserRole
	CreatedAt time.Time
}

// DisplayName renders the name reports print for a member.
func (u User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}

// Cursor models the pagination token for session listings.
type Cursor struct {
	StartedAt time.Time
	ID        string
}

// SessionRepository captures persistence operations for workout sessions.
type SessionRepository interface {
	Create(ctx context.Context, session WorkoutSession) error
	Update(ctx context.Context, session WorkoutSession) error
	Delete(ctx context.Context, sessionID string) error
	Get(ctx context.Context, sessionID string) (*WorkoutSession, error)
	ListByUser(ctx context.Context, userID string, cursor *Cursor, limit int) ([]WorkoutSession, *Cursor, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]WorkoutSession, error)
	ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]WorkoutSession, error)
	ListAll(ctx context.Context) ([]WorkoutSession, error)
	ListFlagged(ctx context.Context) ([]WorkoutSession, error)
	Count(ctx context.Context) (int64, error)
	CountByMachine(ctx context.Context, machineID string) (int64, error)
}

// MachineRepository captures persistence operations for machines.
type MachineRepository interface {
	Create(ctx context.Context, machine Machine) error
	Update(ctx context.Context, machine Machine) error
	Delete(ctx context.Context, machineID string) error
	Get(ctx context.Context, machineID string) (*Machine, error)
	GetByName(ctx context.Context, name string) (*Machine, error)
	List(ctx context.Context) ([]Machine, error)
	Count(ctx context.Context) (int64, error)
}

// UserRepository captures the read operations reports and session creation need.
type UserRepository interface {
	Get(ctx context.Context, userID string) (*User, error)
	Count(ctx context.Context) (int64, error)
}
