package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/attestly/attest-backend/internal/model"
)

// AssessmentResult combines participant data with their session outcome for
// the owner-facing results listing.
type AssessmentResult struct {
	ParticipantID   int                 `json:"participant_id"`
	Name            string              `json:"name"`
	Email           string              `json:"email"`
	SessionID       uuid.UUID           `json:"session_id"`
	Status          model.SessionStatus `json:"status"`
	TotalScore      *float64            `json:"total_score"`
	ViolationsCount int                 `json:"violations_count"`
	StartedAt       *time.Time          `json:"started_at"`
	FinishedAt      *time.Time          `json:"finished_at"`
}

// SessionRepository handles session data access. Terminal transitions are
// conditional on the current status, so two racing writers can never both
// claim the transition.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, assessment_id, participant_id, status, started_at,
	finished_at, total_score, violations_count, created_at`

func (r *SessionRepository) scanOne(ctx context.Context, query string, args ...any) (*model.Session, error) {
	s := &model.Session{}
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&s.ID, &s.AssessmentID, &s.ParticipantID, &s.Status, &s.StartedAt,
		&s.FinishedAt, &s.TotalScore, &s.ViolationsCount, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	return r.scanOne(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
}

// GetByAssessmentAndParticipant retrieves the session for an
// assessment-participant pair.
func (r *SessionRepository) GetByAssessmentAndParticipant(ctx context.Context, assessmentID uuid.UUID, participantID int) (*model.Session, error) {
	return r.scanOne(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE assessment_id = $1 AND participant_id = $2`,
		assessmentID, participantID)
}

// Create inserts a new session. Returns pgx.ErrNoRows when a concurrent
// insert for the same pair won, per the ON CONFLICT DO NOTHING clause.
func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO sessions (assessment_id, participant_id, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (assessment_id, participant_id) DO NOTHING
		 RETURNING id, created_at`,
		s.AssessmentID, s.ParticipantID, s.Status,
	).Scan(&s.ID, &s.CreatedAt)
}

// MarkStarted sets the start timestamp exactly once. Returns false when the
// session was no longer NOT_STARTED.
func (r *SessionRepository) MarkStarted(ctx context.Context, id uuid.UUID, startedAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sessions
		 SET status = $1, started_at = $2
		 WHERE id = $3 AND status = $4`,
		model.SessionStatusInProgress, startedAt, id, model.SessionStatusNotStarted)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// MarkCompleted freezes the total score. Returns false when the session was
// no longer IN_PROGRESS.
func (r *SessionRepository) MarkCompleted(ctx context.Context, id uuid.UUID, finishedAt time.Time, totalScore float64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sessions
		 SET status = $1, finished_at = $2, total_score = $3
		 WHERE id = $4 AND status = $5`,
		model.SessionStatusCompleted, finishedAt, totalScore, id, model.SessionStatusInProgress)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// MarkTerminated cuts off an IN_PROGRESS session. Returns false when the
// session was no longer IN_PROGRESS.
func (r *SessionRepository) MarkTerminated(ctx context.Context, id uuid.UUID, finishedAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sessions
		 SET status = $1, finished_at = $2
		 WHERE id = $3 AND status = $4`,
		model.SessionStatusTerminated, finishedAt, id, model.SessionStatusInProgress)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// IncrementViolations bumps the violation counter and returns the new count.
func (r *SessionRepository) IncrementViolations(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`UPDATE sessions
		 SET violations_count = violations_count + 1
		 WHERE id = $1
		 RETURNING violations_count`, id,
	).Scan(&count)
	return count, err
}

// UpdateTotalScore revises a session's frozen total after manual grading.
func (r *SessionRepository) UpdateTotalScore(ctx context.Context, id uuid.UUID, total float64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sessions SET total_score = $1 WHERE id = $2`, total, id)
	return err
}

// ListInProgressByAssessment retrieves all IN_PROGRESS sessions of one
// assessment.
func (r *SessionRepository) ListInProgressByAssessment(ctx context.Context, assessmentID uuid.UUID) ([]model.Session, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE assessment_id = $1 AND status = $2`,
		assessmentID, model.SessionStatusInProgress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.AssessmentID, &s.ParticipantID, &s.Status,
			&s.StartedAt, &s.FinishedAt, &s.TotalScore, &s.ViolationsCount, &s.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ListExpired retrieves started IN_PROGRESS sessions whose elapsed time
// exceeds their assessment's duration as of now.
func (r *SessionRepository) ListExpired(ctx context.Context, now time.Time) ([]model.Session, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.assessment_id, s.participant_id, s.status, s.started_at,
		        s.finished_at, s.total_score, s.violations_count, s.created_at
		 FROM sessions s
		 JOIN assessments a ON s.assessment_id = a.id
		 WHERE s.status = $1
		   AND s.started_at IS NOT NULL
		   AND s.started_at + make_interval(mins => a.duration_minutes) <= $2`,
		model.SessionStatusInProgress, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.AssessmentID, &s.ParticipantID, &s.Status,
			&s.StartedAt, &s.FinishedAt, &s.TotalScore, &s.ViolationsCount, &s.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ListResultsByAssessment retrieves all participant results for an
// assessment, paginated.
func (r *SessionRepository) ListResultsByAssessment(ctx context.Context, assessmentID uuid.UUID, page, perPage int) ([]AssessmentResult, int64, error) {
	offset := (page - 1) * perPage

	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sessions WHERE assessment_id = $1`, assessmentID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.name, p.email, s.id, s.status, s.total_score,
		        s.violations_count, s.started_at, s.finished_at
		 FROM sessions s
		 JOIN participants p ON s.participant_id = p.id
		 WHERE s.assessment_id = $1
		 ORDER BY p.name ASC
		 LIMIT $2 OFFSET $3`,
		assessmentID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []AssessmentResult
	for rows.Next() {
		var res AssessmentResult
		if err := rows.Scan(&res.ParticipantID, &res.Name, &res.Email, &res.SessionID,
			&res.Status, &res.TotalScore, &res.ViolationsCount,
			&res.StartedAt, &res.FinishedAt); err != nil {
			return nil, 0, err
		}
		results = append(results, res)
	}
	return results, total, rows.Err()
}
