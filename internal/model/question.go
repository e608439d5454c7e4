package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// QuestionType tags the grading behavior of a question.
type QuestionType string

const (
	// Auto-graded types.
	QuestionTypeSingleChoice QuestionType = "SINGLE_CHOICE"
	QuestionTypeTrueFalse    QuestionType = "TRUE_FALSE"
	// Manually-graded types.
	QuestionTypeEssay QuestionType = "ESSAY"
)

// Question is a template question from the question bank, read-only to this
// service. CorrectKey holds the grading key: the option index for
// SINGLE_CHOICE, "true"/"false" for TRUE_FALSE, empty for ESSAY.
type Question struct {
	ID           uuid.UUID       `json:"id"`
	AssessmentID uuid.UUID       `json:"assessment_id"`
	QuestionText string          `json:"question_text"`
	QuestionType QuestionType    `json:"question_type"`
	Options      json.RawMessage `json:"options"`
	CorrectKey   string          `json:"correct_key"`
	Marks        float64         `json:"marks"`
	OrderNum     int             `json:"order_num"`
}

// QuestionSummary is the navigation entry for one question: enough for the
// participant to build a question palette without pulling full content.
type QuestionSummary struct {
	QuestionID   uuid.UUID    `json:"question_id"`
	QuestionType QuestionType `json:"question_type"`
	Marks        float64      `json:"marks"`
	OrderNum     int          `json:"order_num"`
	Answered     bool         `json:"answered"`
}
