package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/attestly/attest-backend/internal/clock"
	"github.com/attestly/attest-backend/internal/model"
)

// TimerService is a derived, read-only view over the session state machine.
// The timer is stateless: remaining time is recomputed from the stored start
// timestamp on every call, so a process restart loses no timing state.
type TimerService struct {
	sessions    SessionStore
	assessments AssessmentStore
	sessionSvc  *SessionService
	log         zerolog.Logger
	now         func() time.Time
}

// NewTimerService creates a new TimerService.
func NewTimerService(sessions SessionStore, assessments AssessmentStore, sessionSvc *SessionService, log zerolog.Logger) *TimerService {
	return &TimerService{
		sessions:    sessions,
		assessments: assessments,
		sessionSvc:  sessionSvc,
		log:         log.With().Str("component", "timer_service").Logger(),
		now:         time.Now,
	}
}

// TimerInfo is the per-session timer snapshot.
type TimerInfo struct {
	SessionID        uuid.UUID           `json:"session_id"`
	Status           model.SessionStatus `json:"status"`
	StartedAt        *time.Time          `json:"started_at,omitempty"`
	DurationMinutes  int                 `json:"duration_minutes"`
	RemainingSeconds int64               `json:"remaining_seconds"`
	IsExpired        bool                `json:"is_expired"`
	Warn             clock.WarnLevel     `json:"warn_level"`
}

// Info computes the timer snapshot for an owned session. This is a
// read-with-guard: when the budget has elapsed and the session is still
// IN_PROGRESS, it is force-completed as a side effect and the returned
// snapshot reflects the terminal state.
func (s *TimerService) Info(ctx context.Context, participantID int, sessionID uuid.UUID) (*TimerInfo, error) {
	session, err := s.sessionSvc.ResolveOwned(ctx, participantID, sessionID)
	if err != nil {
		return nil, err
	}

	assessment, err := s.assessments.GetByID(ctx, session.AssessmentID)
	if err != nil {
		return nil, err
	}

	info := &TimerInfo{
		SessionID:       session.ID,
		Status:          session.Status,
		StartedAt:       session.StartedAt,
		DurationMinutes: assessment.DurationMinutes,
	}

	switch session.Status {
	case model.SessionStatusNotStarted:
		// Clock has not begun; the full budget remains.
		info.RemainingSeconds = int64(assessment.Duration() / time.Second)
		info.Warn = clock.Warn(assessment.Duration())
		return info, nil

	case model.SessionStatusCompleted, model.SessionStatusTerminated:
		info.RemainingSeconds = 0
		info.IsExpired = true
		info.Warn = clock.WarnCritical
		return info, nil
	}

	startedAt, budget, now := *session.StartedAt, assessment.Duration(), s.now()
	remaining := clock.Remaining(startedAt, budget, now)
	info.RemainingSeconds = clock.RemainingSeconds(startedAt, budget, now)
	info.IsExpired = remaining == 0
	info.Warn = clock.Warn(remaining)

	if info.IsExpired {
		completed, err := s.sessionSvc.ForceComplete(ctx, session)
		if err != nil {
			return nil, err
		}
		info.Status = completed.Status
	}

	return info, nil
}

// Sweep force-completes every expired IN_PROGRESS session of one assessment
// and returns the number affected. Housekeeping for assessments whose
// participants stopped polling.
func (s *TimerService) Sweep(ctx context.Context, assessmentID uuid.UUID) (int, error) {
	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		return 0, err
	}

	sessions, err := s.sessions.ListInProgressByAssessment(ctx, assessmentID)
	if err != nil {
		return 0, err
	}

	now := s.now()
	swept := 0
	for i := range sessions {
		sess := &sessions[i]
		if sess.StartedAt == nil || !clock.IsExpired(*sess.StartedAt, assessment.Duration(), now) {
			continue
		}
		if _, err := s.sessionSvc.ForceComplete(ctx, sess); err != nil {
			s.log.Error().Err(err).
				Str("session_id", sess.ID.String()).
				Msg("Sweep failed to complete session, skipping")
			continue
		}
		swept++
	}

	if swept > 0 {
		s.log.Info().
			Str("assessment_id", assessmentID.String()).
			Int("swept", swept).
			Msg("Expired sessions swept")
	}
	return swept, nil
}

// SweepAll force-completes expired IN_PROGRESS sessions across all
// assessments. Used by the background sweeper.
func (s *TimerService) SweepAll(ctx context.Context) (int, error) {
	expired, err := s.sessions.ListExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}

	swept := 0
	for i := range expired {
		if _, err := s.sessionSvc.ForceComplete(ctx, &expired[i]); err != nil {
			s.log.Error().Err(err).
				Str("session_id", expired[i].ID.String()).
				Msg("Sweep failed to complete session, skipping")
			continue
		}
		swept++
	}
	return swept, nil
}
