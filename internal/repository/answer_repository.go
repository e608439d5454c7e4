package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/attestly/attest-backend/internal/model"
)

// AnswerRepository handles per-session answer snapshot data access.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

const answerColumns = `id, session_id, question_id, question_text, question_type,
	options, correct_key, marks, response, marks_obtained, graded,
	grader_comment, updated_at`

func scanAnswer(row interface{ Scan(...any) error }) (*model.AnswerRecord, error) {
	rec := &model.AnswerRecord{}
	err := row.Scan(&rec.ID, &rec.SessionID, &rec.QuestionID, &rec.QuestionText,
		&rec.QuestionType, &rec.Options, &rec.CorrectKey, &rec.Marks,
		&rec.Response, &rec.MarksObtained, &rec.Graded, &rec.GraderComment,
		&rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Get retrieves the answer record for one question in one session.
func (r *AnswerRepository) Get(ctx context.Context, sessionID, questionID uuid.UUID) (*model.AnswerRecord, error) {
	return scanAnswer(r.pool.QueryRow(ctx,
		`SELECT `+answerColumns+` FROM answer_records
		 WHERE session_id = $1 AND question_id = $2`, sessionID, questionID))
}

// CreateSnapshot inserts the immutable question copy for a session. Returns
// pgx.ErrNoRows when a concurrent first access won the insert.
func (r *AnswerRepository) CreateSnapshot(ctx context.Context, rec *model.AnswerRecord) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO answer_records
		     (session_id, question_id, question_text, question_type, options,
		      correct_key, marks)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (session_id, question_id) DO NOTHING
		 RETURNING id, updated_at`,
		rec.SessionID, rec.QuestionID, rec.QuestionText, rec.QuestionType,
		rec.Options, rec.CorrectKey, rec.Marks,
	).Scan(&rec.ID, &rec.UpdatedAt)
}

// SaveResponse writes the response and its grading outcome in one statement,
// so a crash can never separate an answer from its grade.
func (r *AnswerRepository) SaveResponse(ctx context.Context, sessionID, questionID uuid.UUID, response json.RawMessage, marksObtained *float64, graded bool) (*model.AnswerRecord, error) {
	return scanAnswer(r.pool.QueryRow(ctx,
		`UPDATE answer_records
		 SET response = $1, marks_obtained = $2, graded = $3, updated_at = NOW()
		 WHERE session_id = $4 AND question_id = $5
		 RETURNING `+answerColumns,
		response, marksObtained, graded, sessionID, questionID))
}

// SetReview applies a manual grade and optional comment.
func (r *AnswerRepository) SetReview(ctx context.Context, sessionID, questionID uuid.UUID, marksObtained float64, comment *string) (*model.AnswerRecord, error) {
	return scanAnswer(r.pool.QueryRow(ctx,
		`UPDATE answer_records
		 SET marks_obtained = $1, graded = TRUE, grader_comment = $2, updated_at = NOW()
		 WHERE session_id = $3 AND question_id = $4
		 RETURNING `+answerColumns,
		marksObtained, comment, sessionID, questionID))
}

// ListBySession retrieves all materialized answer records of a session.
func (r *AnswerRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.AnswerRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+answerColumns+` FROM answer_records
		 WHERE session_id = $1
		 ORDER BY updated_at ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.AnswerRecord
	for rows.Next() {
		rec, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// SumObtained totals the obtained marks over graded records. Ungraded records
// contribute zero.
func (r *AnswerRepository) SumObtained(ctx context.Context, sessionID uuid.UUID) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(marks_obtained), 0)
		 FROM answer_records
		 WHERE session_id = $1 AND graded = TRUE`, sessionID,
	).Scan(&total)
	return total, err
}
