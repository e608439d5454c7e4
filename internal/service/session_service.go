package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/attestly/attest-backend/internal/clock"
	"github.com/attestly/attest-backend/internal/model"
)

// SessionService owns the lifecycle of one participant's attempt:
// NOT_STARTED → IN_PROGRESS → {COMPLETED, TERMINATED}. Terminal transitions
// are conditional updates so that racing writers (explicit submit, the lazy
// expiry guard, the background sweep) converge on a single outcome.
type SessionService struct {
	sessions    SessionStore
	assessments AssessmentStore
	answers     AnswerStore
	results     ResultSink
	log         zerolog.Logger
	now         func() time.Time
}

// NewSessionService creates a new SessionService. results may be nil when no
// denormalization sink is configured.
func NewSessionService(sessions SessionStore, assessments AssessmentStore, answers AnswerStore, results ResultSink, log zerolog.Logger) *SessionService {
	return &SessionService{
		sessions:    sessions,
		assessments: assessments,
		answers:     answers,
		results:     results,
		log:         log.With().Str("component", "session_service").Logger(),
		now:         time.Now,
	}
}

// CreateOrResume finds or creates the participant's session for an
// assessment. Invoked only after AccessService grants. Idempotent: two
// near-simultaneous joins converge on the same row, never two.
func (s *SessionService) CreateOrResume(ctx context.Context, assessmentID uuid.UUID, participantID int) (*model.Session, error) {
	existing, err := s.sessions.GetByAssessmentAndParticipant(ctx, assessmentID, participantID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check existing session: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	session := &model.Session{
		AssessmentID:  assessmentID,
		ParticipantID: participantID,
		Status:        model.SessionStatusNotStarted,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Concurrent join won the insert; converge on its row.
			existing, fetchErr := s.sessions.GetByAssessmentAndParticipant(ctx, assessmentID, participantID)
			if fetchErr != nil {
				return nil, fmt.Errorf("concurrent join detected, but fetch failed: %w", fetchErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	return session, nil
}

// Start activates a NOT_STARTED session, setting started_at exactly once.
// Re-invoking on an IN_PROGRESS session is a no-op returning the existing
// session: this models page-reload/resume, not a restart.
func (s *SessionService) Start(ctx context.Context, participantID int, sessionID uuid.UUID) (*model.Session, error) {
	session, err := s.ResolveOwned(ctx, participantID, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case model.SessionStatusNotStarted:
		startedAt := s.now()
		ok, err := s.sessions.MarkStarted(ctx, session.ID, startedAt)
		if err != nil {
			return nil, fmt.Errorf("start session: %w", err)
		}
		if !ok {
			// A concurrent Start won; re-read and fall through to the
			// resume/terminal handling below.
			return s.Start(ctx, participantID, sessionID)
		}
		session.Status = model.SessionStatusInProgress
		session.StartedAt = &startedAt
		return session, nil

	case model.SessionStatusInProgress:
		if err := s.guardExpiry(ctx, session); err != nil {
			return nil, err
		}
		return session, nil

	case model.SessionStatusCompleted:
		return nil, ErrAlreadyFinished
	case model.SessionStatusTerminated:
		return nil, ErrTerminated
	default:
		return nil, fmt.Errorf("unknown session status %q", session.Status)
	}
}

// Complete moves an IN_PROGRESS session to COMPLETED, freezing total_score
// from the graded answer records. Idempotent: completing an already-completed
// session returns it unchanged, because the explicit-submit path and the
// expiry sweep may race to complete the same session.
func (s *SessionService) Complete(ctx context.Context, participantID int, sessionID uuid.UUID) (*model.Session, error) {
	session, err := s.ResolveOwned(ctx, participantID, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case model.SessionStatusCompleted:
		return session, nil
	case model.SessionStatusTerminated:
		return nil, ErrTerminated
	case model.SessionStatusNotStarted:
		return nil, ErrSessionNotActive
	}

	return s.complete(ctx, session)
}

// ForceComplete drives an expired IN_PROGRESS session to COMPLETED. Invoked
// by the timer read guard and the sweep; safe to race with explicit Complete.
func (s *SessionService) ForceComplete(ctx context.Context, session *model.Session) (*model.Session, error) {
	if session.Status != model.SessionStatusInProgress {
		return session, nil
	}
	completed, err := s.complete(ctx, session)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("session_id", session.ID.String()).
		Msg("Session force-completed after time expiry")
	return completed, nil
}

func (s *SessionService) complete(ctx context.Context, session *model.Session) (*model.Session, error) {
	total, err := s.answers.SumObtained(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("sum obtained marks: %w", err)
	}

	finishedAt := s.now()
	ok, err := s.sessions.MarkCompleted(ctx, session.ID, finishedAt, total)
	if err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}
	if !ok {
		// A concurrent terminal transition landed first. Its frozen score
		// stands; never double-freeze with our partial sum.
		current, err := s.sessions.GetByID(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("refetch session: %w", err)
		}
		if current.Status == model.SessionStatusCompleted {
			return current, nil
		}
		return nil, ErrTerminated
	}

	session.Status = model.SessionStatusCompleted
	session.FinishedAt = &finishedAt
	session.TotalScore = &total

	s.enqueueResult(ctx, session, total, finishedAt)
	return session, nil
}

// enqueueResult pushes the denormalized reporting row. Best-effort: its
// failure must not roll back or block the already-committed completion.
func (s *SessionService) enqueueResult(ctx context.Context, session *model.Session, total float64, finishedAt time.Time) {
	if s.results == nil {
		return
	}
	res := &model.SessionResult{
		AssessmentID:  session.AssessmentID,
		ParticipantID: session.ParticipantID,
		SessionID:     session.ID,
		Score:         total,
		FinishedAt:    finishedAt,
	}
	if err := s.results.Enqueue(ctx, res); err != nil {
		s.log.Warn().Err(err).
			Str("session_id", session.ID.String()).
			Msg("Failed to enqueue result row")
	}
}

// Terminate cuts off an IN_PROGRESS session administratively. Idempotent on
// repeat; never reachable from COMPLETED.
func (s *SessionService) Terminate(ctx context.Context, sessionID uuid.UUID) (*model.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	switch session.Status {
	case model.SessionStatusTerminated:
		return session, nil
	case model.SessionStatusCompleted:
		return nil, ErrAlreadyFinished
	case model.SessionStatusNotStarted:
		return nil, ErrSessionNotActive
	}

	finishedAt := s.now()
	ok, err := s.sessions.MarkTerminated(ctx, session.ID, finishedAt)
	if err != nil {
		return nil, fmt.Errorf("terminate session: %w", err)
	}
	if !ok {
		current, err := s.sessions.GetByID(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("refetch session: %w", err)
		}
		if current.Status == model.SessionStatusTerminated {
			return current, nil
		}
		return nil, ErrAlreadyFinished
	}

	session.Status = model.SessionStatusTerminated
	session.FinishedAt = &finishedAt
	return session, nil
}

// RecordViolation increments the session's violation counter and terminates
// the session once the assessment's max_violations budget is exhausted.
// Returns the new count and whether the session was terminated.
func (s *SessionService) RecordViolation(ctx context.Context, participantID int, sessionID uuid.UUID) (int, bool, error) {
	session, err := s.ResolveActive(ctx, participantID, sessionID)
	if err != nil {
		return 0, false, err
	}

	count, err := s.sessions.IncrementViolations(ctx, session.ID)
	if err != nil {
		return 0, false, fmt.Errorf("increment violations: %w", err)
	}

	assessment, err := s.assessments.GetByID(ctx, session.AssessmentID)
	if err != nil {
		return count, false, fmt.Errorf("get assessment: %w", err)
	}

	if assessment.MaxViolations > 0 && count >= assessment.MaxViolations {
		if _, err := s.Terminate(ctx, session.ID); err != nil {
			return count, false, fmt.Errorf("terminate on violations: %w", err)
		}
		s.log.Warn().
			Str("session_id", session.ID.String()).
			Int("violations", count).
			Msg("Session terminated after exceeding violation budget")
		return count, true, nil
	}

	return count, false, nil
}

// ResolveOwned fetches a session by id and enforces participant ownership.
// Identifiers are always explicit; there is no ambient "current session".
func (s *SessionService) ResolveOwned(ctx context.Context, participantID int, sessionID uuid.UUID) (*model.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.ParticipantID != participantID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// ResolveActive resolves an owned session and requires it to be IN_PROGRESS
// after running the expiry guard. Every read or write touching an active
// session goes through here, so a late request can never sneak an extra
// write in after the clock has run out.
func (s *SessionService) ResolveActive(ctx context.Context, participantID int, sessionID uuid.UUID) (*model.Session, error) {
	session, err := s.ResolveOwned(ctx, participantID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.guardExpiry(ctx, session); err != nil {
		return nil, err
	}
	if session.Status != model.SessionStatusInProgress {
		return nil, ErrSessionNotActive
	}
	return session, nil
}

// guardExpiry rejects the caller's operation with ErrTimeExpired and, as a
// side effect, force-completes the session when its time budget has elapsed.
func (s *SessionService) guardExpiry(ctx context.Context, session *model.Session) error {
	if session.Status != model.SessionStatusInProgress || session.StartedAt == nil {
		return nil
	}

	assessment, err := s.assessments.GetByID(ctx, session.AssessmentID)
	if err != nil {
		return fmt.Errorf("get assessment: %w", err)
	}

	if clock.IsExpired(*session.StartedAt, assessment.Duration(), s.now()) {
		if _, err := s.ForceComplete(ctx, session); err != nil {
			return fmt.Errorf("force-complete expired session: %w", err)
		}
		return ErrTimeExpired
	}
	return nil
}
