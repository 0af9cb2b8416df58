// Package postgres provides pgx-backed persistence for the gym tracking
// service.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/gymtrack/internal/domain"
	"example.com/gymtrack/internal/events"
	"example.com/gymtrack/internal/observability"
)

// Repository provides Postgres-backed persistence for workout sessions.
// Session writes record outbox events in the same transaction.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const sessionColumns = `session_id, user_id, machine_id, start_time, end_time, duration_seconds,
        calories_burned, avg_heart_rate, distance_km, avg_speed_kmh, resistance_level, incline_level,
        notes, quality_flag, quality_issues, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.WorkoutSession, error) {
	var s domain.WorkoutSession
	var durationSeconds *int64
	err := row.Scan(
		&s.ID, &s.UserID, &s.MachineID, &s.StartTime, &s.EndTime, &durationSeconds,
		&s.CaloriesBurned, &s.AvgHeartRate, &s.Distance, &s.AvgSpeed, &s.ResistanceLevel, &s.InclineLevel,
		&s.Notes, &s.QualityFlag, &s.QualityIssues, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if durationSeconds != nil {
		d := time.Duration(*durationSeconds) * time.Second
		s.Duration = &d
	}
	return &s, nil
}

func durationSeconds(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	secs := int64(*d / time.Second)
	return &secs
}

// Create persists the session and records outbox events inside a single
// transaction.
func (r *Repository) Create(ctx context.Context, session domain.WorkoutSession) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const stmt = `INSERT INTO workout_sessions (` + sessionColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`

	_, err = tx.Exec(ctx, stmt,
		session.ID, session.UserID, session.MachineID, session.StartTime, session.EndTime,
		durationSeconds(session.Duration), session.CaloriesBurned, session.AvgHeartRate,
		session.Distance, session.AvgSpeed, session.ResistanceLevel, session.InclineLevel,
		session.Notes, session.QualityFlag, session.QualityIssues, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err = r.insertWorkoutEvents(ctx, tx, session, true); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordSessionPersisted(session.UpdatedAt)
	return nil
}

// Update rewrites the session row and records a flagged event when the
// revalidation failed.
func (r *Repository) Update(ctx context.Context, session domain.WorkoutSession) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const stmt = `UPDATE workout_sessions SET
        user_id=$2, machine_id=$3, start_time=$4, end_time=$5, duration_seconds=$6,
        calories_burned=$7, avg_heart_rate=$8, distance_km=$9, avg_speed_kmh=$10,
        resistance_level=$11, incline_level=$12, notes=$13, quality_flag=$14,
        quality_issues=$15, updated_at=$16
        WHERE session_id=$1`

	tag, err := tx.Exec(ctx, stmt,
		session.ID, session.UserID, session.MachineID, session.StartTime, session.EndTime,
		durationSeconds(session.Duration), session.CaloriesBurned, session.AvgHeartRate,
		session.Distance, session.AvgSpeed, session.ResistanceLevel, session.InclineLevel,
		session.Notes, session.QualityFlag, session.QualityIssues, session.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = domain.ErrSessionNotFound
		return err
	}

	if err = r.insertWorkoutEvents(ctx, tx, session, false); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordSessionPersisted(session.UpdatedAt)
	return nil
}

func (r *Repository) insertWorkoutEvents(ctx context.Context, tx pgx.Tx, session domain.WorkoutSession, created bool) error {
	if created {
		var durationMin int64
		if session.Duration != nil {
			durationMin = int64(*session.Duration / time.Minute)
		}
		var calories int
		if session.CaloriesBurned != nil {
			calories = *session.CaloriesBurned
		}
		payload := events.WorkoutLogged{
			SessionID:   session.ID,
			UserID:      session.UserID,
			MachineID:   session.MachineID,
			StartTime:   session.StartTime,
			DurationMin: durationMin,
			Calories:    calories,
			QualityFlag: session.QualityFlag,
			LoggedAt:    session.CreatedAt,
		}
		if err := r.insertOutbox(ctx, tx, session, "workout.logged", payload); err != nil {
			return err
		}
	}

	if !session.QualityFlag {
		issues := domain.DefaultQualityIssue
		if session.QualityIssues != nil {
			issues = *session.QualityIssues
		}
		payload := events.WorkoutFlagged{
			SessionID:  session.ID,
			UserID:     session.UserID,
			MachineID:  session.MachineID,
			Issues:     issues,
			OccurredAt: session.UpdatedAt,
		}
		if err := r.insertOutbox(ctx, tx, session, "workout.flagged", payload); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) insertOutbox(ctx context.Context, tx pgx.Tx, session domain.WorkoutSession, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta := eventCatalog[eventType]
	if meta.Topic == "" {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	dedupeKey := fmt.Sprintf("%s:%s:%d", session.ID, eventType, session.UpdatedAt.UnixNano())

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7) ON CONFLICT (dedupe_key) DO NOTHING`

	_, err = tx.Exec(ctx, stmt,
		"workout_session",
		session.ID,
		eventType,
		meta.Topic,
		meta.PartitionKeyFn(session),
		body,
		dedupeKey,
	)
	return err
}

// Delete removes a session.
func (r *Repository) Delete(ctx context.Context, sessionID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM workout_sessions WHERE session_id=$1`, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Get retrieves a session by ID, nil when absent.
func (r *Repository) Get(ctx context.Context, sessionID string) (*domain.WorkoutSession, error) {
	const query = `SELECT ` + sessionColumns + ` FROM workout_sessions WHERE session_id=$1`

	session, err := scanSession(r.pool.QueryRow(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return session, nil
}

// ListByUser returns a user's sessions ordered by start time descending with
// keyset pagination.
func (r *Repository) ListByUser(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.WorkoutSession, *domain.Cursor, error) {
	args := []interface{}{userID, limit}
	query := `SELECT ` + sessionColumns + ` FROM workout_sessions WHERE user_id=$1`

	if cursor != nil {
		query += ` AND (start_time, session_id) < ($3, $4)`
		args = append(args, cursor.StartedAt, cursor.ID)
	}

	query += ` ORDER BY start_time DESC NULLS LAST, session_id DESC LIMIT $2`

	sessions, err := r.querySessions(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}

	var next *domain.Cursor
	if len(sessions) == limit && limit > 0 {
		last := sessions[len(sessions)-1]
		if last.StartTime != nil {
			next = &domain.Cursor{StartedAt: *last.StartTime, ID: last.ID}
		}
	}
	return sessions, next, nil
}

// ListBetween returns sessions whose start time falls in [from, to].
func (r *Repository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.WorkoutSession, error) {
	const query = `SELECT ` + sessionColumns + ` FROM workout_sessions
        WHERE start_time >= $1 AND start_time <= $2 ORDER BY start_time`
	return r.querySessions(ctx, query, from, to)
}

// ListByUserBetween returns a user's sessions in [from, to], most recent
// first.
func (r *Repository) ListByUserBetween(ctx context.Context, userID string, from, to time.Time) ([]domain.WorkoutSession, error) {
	const query = `SELECT ` + sessionColumns + ` FROM workout_sessions
        WHERE user_id=$1 AND start_time >= $2 AND start_time <= $3
        ORDER BY start_time DESC, session_id DESC`
	return r.querySessions(ctx, query, userID, from, to)
}

// ListAll returns every session.
func (r *Repository) ListAll(ctx context.Context) ([]domain.WorkoutSession, error) {
	const query = `SELECT ` + sessionColumns + ` FROM workout_sessions ORDER BY created_at`
	return r.querySessions(ctx, query)
}

// ListFlagged returns sessions that failed quality validation.
func (r *Repository) ListFlagged(ctx context.Context) ([]domain.WorkoutSession, error) {
	const query = `SELECT ` + sessionColumns + ` FROM workout_sessions
        WHERE quality_flag = false ORDER BY created_at`
	return r.querySessions(ctx, query)
}

// Count returns the total number of sessions.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM workout_sessions`).Scan(&count)
	return count, err
}

// CountByMachine returns the number of sessions referencing a machine.
func (r *Repository) CountByMachine(ctx context.Context, machineID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM workout_sessions WHERE machine_id=$1`, machineID).Scan(&count)
	return count, err
}

func (r *Repository) querySessions(ctx context.Context, query string, args ...interface{}) ([]domain.WorkoutSession, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.WorkoutSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// EventMetadata describes how an outbox event is routed.
type EventMetadata struct {
	Topic          string
	PartitionKeyFn func(domain.WorkoutSession) string
}

var eventCatalog = map[string]EventMetadata{
	"workout.logged": {
		Topic: "workout_events",
		PartitionKeyFn: func(s domain.WorkoutSession) string {
			return s.UserID
		},
	},
	"workout.flagged": {
		Topic: "workout_quality_events",
		PartitionKeyFn: func(s domain.WorkoutSession) string {
			return s.ID
		},
	},
}
