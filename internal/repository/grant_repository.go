package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/attestly/attest-backend/internal/model"
)

// GrantRepository handles invitation grant data access.
type GrantRepository struct {
	pool *pgxpool.Pool
}

// NewGrantRepository creates a new GrantRepository.
func NewGrantRepository(pool *pgxpool.Pool) *GrantRepository {
	return &GrantRepository{pool: pool}
}

// GetByToken retrieves a grant by its token.
func (r *GrantRepository) GetByToken(ctx context.Context, token uuid.UUID) (*model.AccessGrant, error) {
	g := &model.AccessGrant{}
	err := r.pool.QueryRow(ctx,
		`SELECT token, email, assessment_id, status, expires_at, created_at
		 FROM access_grants
		 WHERE token = $1`, token,
	).Scan(&g.Token, &g.Email, &g.AssessmentID, &g.Status, &g.ExpiresAt, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// MarkExpired flips a non-expired grant to EXPIRED. No-op when the grant is
// already expired, so racing lazy-expiry checks are harmless.
func (r *GrantRepository) MarkExpired(ctx context.Context, token uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE access_grants
		 SET status = $1
		 WHERE token = $2 AND status <> $1`,
		model.GrantStatusExpired, token)
	return err
}
