package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/attestly/attest-backend/internal/model"
)

// QuestionRepository handles read-only access to the question bank.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// GetTemplate retrieves one question, scoped to its assessment so a question
// ID from another assessment reads as absent.
func (r *QuestionRepository) GetTemplate(ctx context.Context, assessmentID, questionID uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, assessment_id, question_text, question_type, options,
		        correct_key, marks, order_num
		 FROM questions
		 WHERE id = $1 AND assessment_id = $2`, questionID, assessmentID,
	).Scan(&q.ID, &q.AssessmentID, &q.QuestionText, &q.QuestionType,
		&q.Options, &q.CorrectKey, &q.Marks, &q.OrderNum)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListTemplates retrieves all questions of an assessment in display order.
func (r *QuestionRepository) ListTemplates(ctx context.Context, assessmentID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, assessment_id, question_text, question_type, options,
		        correct_key, marks, order_num
		 FROM questions
		 WHERE assessment_id = $1
		 ORDER BY order_num ASC`, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.AssessmentID, &q.QuestionText, &q.QuestionType,
			&q.Options, &q.CorrectKey, &q.Marks, &q.OrderNum); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
