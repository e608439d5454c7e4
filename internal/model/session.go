package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates session lifecycle states.
// COMPLETED and TERMINATED are terminal; no transition leaves them.
type SessionStatus string

const (
	SessionStatusNotStarted SessionStatus = "NOT_STARTED"
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
	SessionStatusTerminated SessionStatus = "TERMINATED"
)

// Terminal reports whether the status is a terminal state.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusTerminated
}

// Session is one participant's attempt at one assessment. At most one
// non-terminated session exists per (participant, assessment) pair.
// StartedAt is set exactly once, at the NOT_STARTED→IN_PROGRESS transition;
// re-entry resumes, it does not restart the clock.
type Session struct {
	ID              uuid.UUID     `json:"id"`
	AssessmentID    uuid.UUID     `json:"assessment_id"`
	ParticipantID   int           `json:"participant_id"`
	Status          SessionStatus `json:"status"`
	StartedAt       *time.Time    `json:"started_at,omitempty"`
	FinishedAt      *time.Time    `json:"finished_at,omitempty"`
	TotalScore      *float64      `json:"total_score,omitempty"`
	ViolationsCount int           `json:"violations_count"`
	CreatedAt       time.Time     `json:"created_at"`
}

// SessionResult is the denormalized reporting row written best-effort after
// completion. Its failure never rolls back the Complete transition.
type SessionResult struct {
	AssessmentID  uuid.UUID `json:"assessment_id"`
	ParticipantID int       `json:"participant_id"`
	SessionID     uuid.UUID `json:"session_id"`
	Score         float64   `json:"score"`
	FinishedAt    time.Time `json:"finished_at"`
}
