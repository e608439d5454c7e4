package model

import (
	"time"

	"github.com/google/uuid"
)

// GrantStatus enumerates invitation grant states.
// PENDING transitions to ACCEPTED exactly once, or to EXPIRED once past
// ExpiresAt. ACCEPTED and EXPIRED are terminal.
type GrantStatus string

const (
	GrantStatusPending  GrantStatus = "PENDING"
	GrantStatusAccepted GrantStatus = "ACCEPTED"
	GrantStatusExpired  GrantStatus = "EXPIRED"
)

// AccessGrant is a time-bounded proof of invitation-based admission.
// AssessmentID may be nil for grants valid against any assessment the
// subject is invited to.
type AccessGrant struct {
	Token        uuid.UUID   `json:"token"`
	Email        string      `json:"email"`
	AssessmentID *uuid.UUID  `json:"assessment_id,omitempty"`
	Status       GrantStatus `json:"status"`
	ExpiresAt    time.Time   `json:"expires_at"`
	CreatedAt    time.Time   `json:"created_at"`
}

// BoundTo reports whether the grant admits to the given assessment.
func (g *AccessGrant) BoundTo(assessmentID uuid.UUID) bool {
	return g.AssessmentID == nil || *g.AssessmentID == assessmentID
}
