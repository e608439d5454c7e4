package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/attestly/attest-backend/internal/model"
)

// AccessService decides admission into an assessment. It is the only gate in
// front of session creation; its side effects (lazy grant expiry) are
// idempotent, so re-validating is always safe.
type AccessService struct {
	assessments AssessmentStore
	grants      GrantStore
	sessions    SessionStore
	log         zerolog.Logger
	now         func() time.Time
}

// NewAccessService creates a new AccessService.
func NewAccessService(assessments AssessmentStore, grants GrantStore, sessions SessionStore, log zerolog.Logger) *AccessService {
	return &AccessService{
		assessments: assessments,
		grants:      grants,
		sessions:    sessions,
		log:         log.With().Str("component", "access_service").Logger(),
		now:         time.Now,
	}
}

// AccessDecision is the outcome of a granted admission check.
type AccessDecision struct {
	Granted    bool              `json:"granted"`
	Resume     bool              `json:"resume"`
	Assessment *model.Assessment `json:"assessment"`
	// Session is the existing non-terminal session when Resume is true.
	Session *model.Session `json:"session,omitempty"`
}

// Validate checks whether the participant may enter the assessment.
// Denials are reported through the admission sentinel errors.
func (s *AccessService) Validate(ctx context.Context, participantID int, participantEmail string, assessmentID uuid.UUID, cred model.AccessRequest) (*AccessDecision, error) {
	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	if assessment.Status != model.AssessmentStatusPublished {
		return nil, ErrAssessmentNotFound
	}

	// A participant who already gained access once is never re-challenged
	// mid-attempt: an existing non-terminal session short-circuits the
	// window and access-mode checks.
	existing, err := s.sessions.GetByAssessmentAndParticipant(ctx, assessmentID, participantID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check existing session: %w", err)
	}
	if existing != nil && !existing.Status.Terminal() {
		return &AccessDecision{Granted: true, Resume: true, Assessment: assessment, Session: existing}, nil
	}

	now := s.now()
	if now.Before(assessment.StartTime) {
		return nil, ErrWindowNotStarted
	}
	if now.After(assessment.EndTime) {
		return nil, ErrWindowEnded
	}

	switch assessment.AccessMode {
	case model.AccessModeOpen:
		// No further check.

	case model.AccessModeCode:
		if assessment.AccessCode == nil || cred.AccessCode != *assessment.AccessCode {
			return nil, ErrInvalidAccessCode
		}

	case model.AccessModeInvitation:
		if err := s.checkInvitation(ctx, participantEmail, assessmentID, cred.InvitationToken, now); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown access mode %q", assessment.AccessMode)
	}

	return &AccessDecision{Granted: true, Assessment: assessment}, nil
}

// checkInvitation resolves the grant and enforces binding, subject, expiry
// and status. A grant found past its expiry is flipped to EXPIRED before the
// denial is returned (lazy expiry).
func (s *AccessService) checkInvitation(ctx context.Context, participantEmail string, assessmentID uuid.UUID, rawToken string, now time.Time) error {
	if rawToken == "" {
		return ErrInvalidInvitation
	}
	token, err := uuid.Parse(rawToken)
	if err != nil {
		return ErrInvalidInvitation
	}

	grant, err := s.grants.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvalidInvitation
		}
		return fmt.Errorf("get grant: %w", err)
	}

	if !grant.BoundTo(assessmentID) {
		return ErrInvalidInvitation
	}
	if !strings.EqualFold(grant.Email, participantEmail) {
		return ErrInvalidInvitation
	}

	if now.After(grant.ExpiresAt) {
		if grant.Status != model.GrantStatusExpired {
			if err := s.grants.MarkExpired(ctx, token); err != nil {
				return fmt.Errorf("expire grant: %w", err)
			}
			s.log.Debug().Str("token", token.String()).Msg("Grant lazily expired")
		}
		return ErrInvitationExpired
	}

	if grant.Status != model.GrantStatusAccepted {
		return ErrInvalidInvitation
	}
	return nil
}
