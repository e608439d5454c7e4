package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/attestly/attest-backend/internal/model"
)

// FlagRepository handles bookmark data access.
type FlagRepository struct {
	pool *pgxpool.Pool
}

// NewFlagRepository creates a new FlagRepository.
func NewFlagRepository(pool *pgxpool.Pool) *FlagRepository {
	return &FlagRepository{pool: pool}
}

// Set upserts the flag for one question in one session.
func (r *FlagRepository) Set(ctx context.Context, f *model.Flag) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO flags (session_id, question_id, flagged, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (session_id, question_id)
		 DO UPDATE SET flagged = EXCLUDED.flagged, updated_at = EXCLUDED.updated_at`,
		f.SessionID, f.QuestionID, f.Flagged, f.UpdatedAt)
	return err
}

// ListBySession retrieves all flags of a session.
func (r *FlagRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Flag, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT session_id, question_id, flagged, updated_at
		 FROM flags
		 WHERE session_id = $1
		 ORDER BY updated_at ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flags []model.Flag
	for rows.Next() {
		var f model.Flag
		if err := rows.Scan(&f.SessionID, &f.QuestionID, &f.Flagged, &f.UpdatedAt); err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}
