package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/attestly/attest-backend/internal/model"
)

// Store interfaces consumed by the services. The pgx repositories in
// internal/repository satisfy them; tests substitute in-memory stores.
// Lookups return pgx.ErrNoRows when the row is absent.

// AssessmentStore reads assessment definitions.
type AssessmentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Assessment, error)
}

// GrantStore reads and lazily expires invitation grants.
type GrantStore interface {
	GetByToken(ctx context.Context, token uuid.UUID) (*model.AccessGrant, error)
	// MarkExpired flips a non-terminal grant to EXPIRED. Idempotent: a grant
	// already terminal is left untouched.
	MarkExpired(ctx context.Context, token uuid.UUID) error
}

// SessionStore persists sessions. Terminal transitions are conditional
// updates guarded on the current status so racing writers converge on a
// single terminal outcome.
type SessionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
	GetByAssessmentAndParticipant(ctx context.Context, assessmentID uuid.UUID, participantID int) (*model.Session, error)
	// Create inserts with ON CONFLICT DO NOTHING semantics on the
	// (assessment, participant) pair; returns pgx.ErrNoRows when a
	// concurrent insert won.
	Create(ctx context.Context, s *model.Session) error
	// MarkStarted sets started_at once; false when the session was no longer
	// NOT_STARTED.
	MarkStarted(ctx context.Context, id uuid.UUID, startedAt time.Time) (bool, error)
	// MarkCompleted freezes the total score; false when the session was no
	// longer IN_PROGRESS (a concurrent completion won).
	MarkCompleted(ctx context.Context, id uuid.UUID, finishedAt time.Time, totalScore float64) (bool, error)
	MarkTerminated(ctx context.Context, id uuid.UUID, finishedAt time.Time) (bool, error)
	IncrementViolations(ctx context.Context, id uuid.UUID) (int, error)
	// UpdateTotalScore revises a COMPLETED session's frozen total after a
	// manual-grading pass. A write outside the state machine.
	UpdateTotalScore(ctx context.Context, id uuid.UUID, total float64) error
	ListInProgressByAssessment(ctx context.Context, assessmentID uuid.UUID) ([]model.Session, error)
	// ListExpired returns started IN_PROGRESS sessions whose elapsed time
	// exceeds their assessment's duration as of now.
	ListExpired(ctx context.Context, now time.Time) ([]model.Session, error)
}

// QuestionStore is the read-only question-bank collaborator.
type QuestionStore interface {
	GetTemplate(ctx context.Context, assessmentID, questionID uuid.UUID) (*model.Question, error)
	ListTemplates(ctx context.Context, assessmentID uuid.UUID) ([]model.Question, error)
}

// AnswerStore persists per-session answer snapshots.
type AnswerStore interface {
	Get(ctx context.Context, sessionID, questionID uuid.UUID) (*model.AnswerRecord, error)
	// CreateSnapshot inserts the immutable question copy with ON CONFLICT DO
	// NOTHING semantics; returns pgx.ErrNoRows when a concurrent insert won.
	CreateSnapshot(ctx context.Context, rec *model.AnswerRecord) error
	// SaveResponse writes the response and its grading outcome atomically.
	SaveResponse(ctx context.Context, sessionID, questionID uuid.UUID, response json.RawMessage, marksObtained *float64, graded bool) (*model.AnswerRecord, error)
	SetReview(ctx context.Context, sessionID, questionID uuid.UUID, marksObtained float64, comment *string) (*model.AnswerRecord, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.AnswerRecord, error)
	// SumObtained totals marks_obtained over graded records; ungraded
	// records contribute zero.
	SumObtained(ctx context.Context, sessionID uuid.UUID) (float64, error)
}

// FlagStore persists the bookmark ledger.
type FlagStore interface {
	Set(ctx context.Context, f *model.Flag) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Flag, error)
}

// ParticipantStore reads participant accounts.
type ParticipantStore interface {
	GetByID(ctx context.Context, id int) (*model.Participant, error)
	GetByEmail(ctx context.Context, email string) (*model.Participant, error)
}

// InstructorStore reads instructor accounts.
type InstructorStore interface {
	GetByID(ctx context.Context, id int) (*model.Instructor, error)
	GetByEmail(ctx context.Context, email string) (*model.Instructor, error)
}

// ResultSink receives the best-effort denormalized result row after
// completion. Failures are logged, never propagated.
type ResultSink interface {
	Enqueue(ctx context.Context, res *model.SessionResult) error
}
