package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/attestly/attest-backend/internal/model"
)

// FlagService maintains the per-session bookmark ledger. Orthogonal to
// grading and session state: only ownership is required, and flags never
// touch answer records or the total score.
type FlagService struct {
	flags      FlagStore
	sessionSvc *SessionService
	log        zerolog.Logger
	now        func() time.Time
}

// NewFlagService creates a new FlagService.
func NewFlagService(flags FlagStore, sessionSvc *SessionService, log zerolog.Logger) *FlagService {
	return &FlagService{
		flags:      flags,
		sessionSvc: sessionSvc,
		log:        log.With().Str("component", "flag_service").Logger(),
		now:        time.Now,
	}
}

// SetFlag sets or clears the bookmark for one question in an owned session.
func (s *FlagService) SetFlag(ctx context.Context, participantID int, sessionID, questionID uuid.UUID, flagged bool) (*model.Flag, error) {
	session, err := s.sessionSvc.ResolveOwned(ctx, participantID, sessionID)
	if err != nil {
		return nil, err
	}

	flag := &model.Flag{
		SessionID:  session.ID,
		QuestionID: questionID,
		Flagged:    flagged,
		UpdatedAt:  s.now(),
	}
	if err := s.flags.Set(ctx, flag); err != nil {
		return nil, fmt.Errorf("set flag: %w", err)
	}
	return flag, nil
}

// GetFlags lists all flags of an owned session.
func (s *FlagService) GetFlags(ctx context.Context, participantID int, sessionID uuid.UUID) ([]model.Flag, error) {
	session, err := s.sessionSvc.ResolveOwned(ctx, participantID, sessionID)
	if err != nil {
		return nil, err
	}

	flags, err := s.flags.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list flags: %w", err)
	}
	return flags, nil
}
