package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/attestly/attest-backend/internal/grading"
	"github.com/attestly/attest-backend/internal/model"
)

// AnswerService runs the submission and grading pipeline. Objective items
// are graded atomically with every response write; subjective items stay
// ungraded until the assessment owner reviews them. Nothing here mutates the
// session-level total; that is frozen only at completion.
type AnswerService struct {
	answers     AnswerStore
	questions   QuestionStore
	sessions    SessionStore
	assessments AssessmentStore
	sessionSvc  *SessionService
	log         zerolog.Logger
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(answers AnswerStore, questions QuestionStore, sessions SessionStore, assessments AssessmentStore, sessionSvc *SessionService, log zerolog.Logger) *AnswerService {
	return &AnswerService{
		answers:     answers,
		questions:   questions,
		sessions:    sessions,
		assessments: assessments,
		sessionSvc:  sessionSvc,
		log:         log.With().Str("component", "answer_service").Logger(),
	}
}

// GetQuestion returns the participant's private snapshot of one question,
// materializing it from the question bank on first access. This is what
// makes the session self-contained after the window closes.
func (s *AnswerService) GetQuestion(ctx context.Context, participantID int, sessionID, questionID uuid.UUID) (*model.AnswerView, error) {
	session, err := s.sessionSvc.ResolveActive(ctx, participantID, sessionID)
	if err != nil {
		return nil, err
	}

	record, err := s.materialize(ctx, session, questionID)
	if err != nil {
		return nil, err
	}

	view := record.View()
	return &view, nil
}

// Submit validates and records a single answer per the pipeline contract:
// resolve, guard, materialize, shape-validate, grade-or-defer, persist.
func (s *AnswerService) Submit(ctx context.Context, participantID int, sessionID, questionID uuid.UUID, response json.RawMessage) (*model.AnswerRecord, error) {
	session, err := s.sessionSvc.ResolveActive(ctx, participantID, sessionID)
	if err != nil {
		return nil, err
	}

	record, err := s.materialize(ctx, session, questionID)
	if err != nil {
		return nil, err
	}

	grader, ok := grading.ForType(record.QuestionType)
	if !ok {
		return nil, fmt.Errorf("no grader for question type %q", record.QuestionType)
	}

	if err := grader.Validate(response, record.Options); err != nil {
		return nil, err
	}

	// Each write fully re-grades the item; a participant can change their
	// answer any number of times before completion.
	marksObtained := grader.Grade(response, record.CorrectKey, record.Marks)
	graded := marksObtained != nil

	updated, err := s.answers.SaveResponse(ctx, sessionID, questionID, response, marksObtained, graded)
	if err != nil {
		return nil, fmt.Errorf("save response: %w", err)
	}
	return updated, nil
}

// ListQuestions returns the navigation summaries for every question of the
// session's assessment, in display order, marking which ones already carry a
// response. Read-only, so a finished session can still render its palette.
func (s *AnswerService) ListQuestions(ctx context.Context, participantID int, sessionID uuid.UUID) ([]model.QuestionSummary, error) {
	session, err := s.sessionSvc.ResolveOwned(ctx, participantID, sessionID)
	if err != nil {
		return nil, err
	}

	templates, err := s.questions.ListTemplates(ctx, session.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	records, err := s.answers.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	answered := make(map[uuid.UUID]bool, len(records))
	for i := range records {
		answered[records[i].QuestionID] = len(records[i].Response) > 0
	}

	summaries := make([]model.QuestionSummary, len(templates))
	for i, q := range templates {
		summaries[i] = model.QuestionSummary{
			QuestionID:   q.ID,
			QuestionType: q.QuestionType,
			Marks:        q.Marks,
			OrderNum:     q.OrderNum,
			Answered:     answered[q.ID],
		}
	}
	return summaries, nil
}

// ListAnswers returns the participant-facing projections of every
// materialized answer record in the session.
func (s *AnswerService) ListAnswers(ctx context.Context, participantID int, sessionID uuid.UUID) ([]model.AnswerView, error) {
	session, err := s.sessionSvc.ResolveOwned(ctx, participantID, sessionID)
	if err != nil {
		return nil, err
	}

	records, err := s.answers.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	views := make([]model.AnswerView, len(records))
	for i := range records {
		views[i] = records[i].View()
	}
	return views, nil
}

// Review applies a manual grade to a subjective (or any) answer record.
// Restricted to the assessment owner. When the session is already COMPLETED
// the frozen total is revised, a write outside the state machine.
func (s *AnswerService) Review(ctx context.Context, instructorID int, sessionID, questionID uuid.UUID, marksObtained float64, comment string) (*model.AnswerRecord, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	assessment, err := s.assessments.GetByID(ctx, session.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	if assessment.OwnerID != instructorID {
		return nil, ErrNotOwner
	}

	record, err := s.answers.Get(ctx, sessionID, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("get answer record: %w", err)
	}

	if marksObtained < 0 || marksObtained > record.Marks {
		return nil, ErrMarksOutOfRange
	}

	var commentPtr *string
	if comment != "" {
		commentPtr = &comment
	}

	updated, err := s.answers.SetReview(ctx, sessionID, questionID, marksObtained, commentPtr)
	if err != nil {
		return nil, fmt.Errorf("set review: %w", err)
	}

	if session.Status == model.SessionStatusCompleted {
		total, err := s.answers.SumObtained(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("recompute total: %w", err)
		}
		if err := s.sessions.UpdateTotalScore(ctx, sessionID, total); err != nil {
			return nil, fmt.Errorf("revise total: %w", err)
		}
		s.log.Info().
			Str("session_id", sessionID.String()).
			Float64("total", total).
			Msg("Frozen total revised after manual review")
	}

	return updated, nil
}

// materialize resolves or lazily creates the session's answer record for a
// question, copying the question content at first access so later edits to
// the question bank never change what the participant saw.
func (s *AnswerService) materialize(ctx context.Context, session *model.Session, questionID uuid.UUID) (*model.AnswerRecord, error) {
	record, err := s.answers.Get(ctx, session.ID, questionID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get answer record: %w", err)
	}

	question, err := s.questions.GetTemplate(ctx, session.AssessmentID, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("get template question: %w", err)
	}

	record = &model.AnswerRecord{
		SessionID:    session.ID,
		QuestionID:   question.ID,
		QuestionText: question.QuestionText,
		QuestionType: question.QuestionType,
		Options:      question.Options,
		CorrectKey:   question.CorrectKey,
		Marks:        question.Marks,
		UpdatedAt:    time.Now(),
	}

	if err := s.answers.CreateSnapshot(ctx, record); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Concurrent first access won the insert; reuse its snapshot.
			return s.answers.Get(ctx, session.ID, questionID)
		}
		return nil, fmt.Errorf("create snapshot: %w", err)
	}
	return record, nil
}
