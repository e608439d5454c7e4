package service

import "errors"

// Admission errors. Terminal for the request; never retried by the core.
var (
	ErrAssessmentNotFound  = errors.New("assessment not found or not published")
	ErrWindowNotStarted    = errors.New("assessment window has not started")
	ErrWindowEnded         = errors.New("assessment window has ended")
	ErrInvalidAccessCode   = errors.New("access code does not match")
	ErrInvalidInvitation   = errors.New("invitation is not valid for this assessment")
	ErrInvitationExpired   = errors.New("invitation has expired")
)

// State errors. The session is in the wrong status for the requested
// transition. Time expiry is resolved by force-completing, not just refusing.
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionNotActive = errors.New("session is not active")
	ErrTimeExpired      = errors.New("session time budget has elapsed")
	ErrAlreadyFinished  = errors.New("session is already completed")
	ErrTerminated       = errors.New("session has been terminated")
)

// Answer pipeline errors.
var (
	ErrQuestionNotFound = errors.New("question does not belong to this assessment")
	ErrMarksOutOfRange  = errors.New("marks outside the question's range")
	ErrNotOwner         = errors.New("not the owner of this assessment")
)

// Auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginAlreadyActive = errors.New("another login is already active")
)
