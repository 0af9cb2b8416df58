// Package events defines the event payloads published to Kafka.
package events

import "time"

// WorkoutLogged is emitted when a new workout session is accepted.
type WorkoutLogged struct {
	SessionID   string     `json:"session_id"`
	UserID      string     `json:"user_id"`
	MachineID   string     `json:"machine_id"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	DurationMin int64      `json:"duration_min"`
	Calories    int        `json:"calories"`
	QualityFlag bool       `json:"quality_flag"`
	LoggedAt    time.Time  `json:"logged_at"`
}

// WorkoutFlagged is emitted when validation stamps quality issues onto a
// session, so downstream data-quality dashboards see problems immediately.
type WorkoutFlagged struct {
	SessionID  string    `json:"session_id"`
	UserID     string    `json:"user_id"`
	MachineID  string    `json:"machine_id"`
	Issues     string    `json:"issues"`
	OccurredAt time.Time `json:"occurred_at"`
}
