package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AnswerRecord is the per-session snapshot of one question plus the
// participant's current response and grading outcome. The question content is
// copied from the question bank at first access, so later bank edits never
// change what the participant saw.
type AnswerRecord struct {
	ID            uuid.UUID       `json:"id"`
	SessionID     uuid.UUID       `json:"session_id"`
	QuestionID    uuid.UUID       `json:"question_id"`
	QuestionText  string          `json:"question_text"`
	QuestionType  QuestionType    `json:"question_type"`
	Options       json.RawMessage `json:"options"`
	CorrectKey    string          `json:"-"`
	Marks         float64         `json:"marks"`
	Response      json.RawMessage `json:"response,omitempty"`
	MarksObtained *float64        `json:"marks_obtained,omitempty"`
	Graded        bool            `json:"graded"`
	GraderComment *string         `json:"grader_comment,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// AnswerView is the participant-facing projection of an AnswerRecord.
// It never exposes the grading key or obtained marks mid-attempt.
type AnswerView struct {
	QuestionID   uuid.UUID       `json:"question_id"`
	QuestionText string          `json:"question_text"`
	QuestionType QuestionType    `json:"question_type"`
	Options      json.RawMessage `json:"options"`
	Marks        float64         `json:"marks"`
	Response     json.RawMessage `json:"response,omitempty"`
}

// View projects the record for participant consumption.
func (r *AnswerRecord) View() AnswerView {
	return AnswerView{
		QuestionID:   r.QuestionID,
		QuestionText: r.QuestionText,
		QuestionType: r.QuestionType,
		Options:      r.Options,
		Marks:        r.Marks,
		Response:     r.Response,
	}
}

// SubmitAnswerRequest is the payload for recording a response.
type SubmitAnswerRequest struct {
	Response json.RawMessage `json:"response" binding:"required"`
}

// ReviewAnswerRequest is the payload for manual grading by the assessment owner.
type ReviewAnswerRequest struct {
	MarksObtained *float64 `json:"marks_obtained" binding:"required,gte=0"`
	Comment       string   `json:"comment" binding:"omitempty,max=2000"`
}
