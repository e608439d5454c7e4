package model

import (
	"time"

	"github.com/google/uuid"
)

// Flag is a per-session, per-question bookmark. It has no effect on scoring
// or session state.
type Flag struct {
	SessionID  uuid.UUID `json:"session_id"`
	QuestionID uuid.UUID `json:"question_id"`
	Flagged    bool      `json:"flagged"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SetFlagRequest is the payload for setting or clearing a flag.
type SetFlagRequest struct {
	Flagged *bool `json:"flagged" binding:"required"`
}
