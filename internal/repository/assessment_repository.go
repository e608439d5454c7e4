package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/attestly/attest-backend/internal/model"
)

// AssessmentRepository handles assessment data access.
type AssessmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssessmentRepository creates a new AssessmentRepository.
func NewAssessmentRepository(pool *pgxpool.Pool) *AssessmentRepository {
	return &AssessmentRepository{pool: pool}
}

// GetByID retrieves an assessment by its ID.
func (r *AssessmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Assessment, error) {
	a := &model.Assessment{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, owner_id, status, start_time, end_time, duration_minutes,
		        access_mode, access_code, max_violations, require_proctor_signal,
		        total_marks, created_at, updated_at
		 FROM assessments
		 WHERE id = $1`, id,
	).Scan(&a.ID, &a.Title, &a.OwnerID, &a.Status, &a.StartTime, &a.EndTime,
		&a.DurationMinutes, &a.AccessMode, &a.AccessCode, &a.MaxViolations,
		&a.RequireProctorSignal, &a.TotalMarks, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}
