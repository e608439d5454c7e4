package model

import (
	"time"

	"github.com/google/uuid"
)

// AssessmentStatus enumerates the publication states of an assessment.
type AssessmentStatus string

const (
	AssessmentStatusDraft     AssessmentStatus = "DRAFT"
	AssessmentStatusPublished AssessmentStatus = "PUBLISHED"
	AssessmentStatusArchived  AssessmentStatus = "ARCHIVED"
)

// AccessMode is the admission policy governing who may start a session.
type AccessMode string

const (
	AccessModeOpen       AccessMode = "OPEN"
	AccessModeCode       AccessMode = "CODE"
	AccessModeInvitation AccessMode = "INVITATION"
)

// Assessment is the definition of a timed exam, independent of any attempt.
// Immutable once published. The scheduling window (StartTime, EndTime) bounds
// admission; DurationMinutes bounds each attempt independently of the window.
type Assessment struct {
	ID                   uuid.UUID        `json:"id"`
	Title                string           `json:"title"`
	OwnerID              int              `json:"owner_id"`
	Status               AssessmentStatus `json:"status"`
	StartTime            time.Time        `json:"start_time"`
	EndTime              time.Time        `json:"end_time"`
	DurationMinutes      int              `json:"duration_minutes"`
	AccessMode           AccessMode       `json:"access_mode"`
	AccessCode           *string          `json:"access_code,omitempty"`
	MaxViolations        int              `json:"max_violations"`
	RequireProctorSignal bool             `json:"require_proctor_signal"`
	TotalMarks           float64          `json:"total_marks"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// Duration returns the attempt time budget.
func (a *Assessment) Duration() time.Duration {
	return time.Duration(a.DurationMinutes) * time.Minute
}

// AccessRequest carries the optional credential for admission checks.
// CODE mode expects AccessCode, INVITATION mode expects InvitationToken.
type AccessRequest struct {
	AccessCode      string `json:"access_code" binding:"omitempty,min=4,max=20"`
	InvitationToken string `json:"invitation_token" binding:"omitempty,uuid4"`
}
