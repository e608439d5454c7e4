// Package grading implements per-question-kind response validation and
// scoring as a tagged variant: each QuestionType resolves to one Grader
// instead of type-switch branches spread through the submission path.
package grading

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/attestly/attest-backend/internal/model"
)

// ErrInvalidResponse indicates the response payload does not match the
// question's expected shape. Rejected without side effects.
var ErrInvalidResponse = errors.New("response does not match question shape")

// MaxTextLength bounds free-response payloads.
const MaxTextLength = 20000

// Grader validates and grades responses for one question kind.
//
// Grade returns the obtained marks for auto-gradable kinds, or nil when
// grading is deferred to a manual review pass. Grade assumes Validate
// has accepted the response.
type Grader interface {
	Validate(response, options json.RawMessage) error
	Grade(response json.RawMessage, key string, marks float64) *float64
}

// ForType resolves the grader for a question type.
func ForType(t model.QuestionType) (Grader, bool) {
	switch t {
	case model.QuestionTypeSingleChoice:
		return singleChoiceGrader{}, true
	case model.QuestionTypeTrueFalse:
		return trueFalseGrader{}, true
	case model.QuestionTypeEssay:
		return essayGrader{}, true
	default:
		return nil, false
	}
}

// ─── SINGLE_CHOICE ──────────────────────────────────────────────────────────

type singleChoiceResponse struct {
	Selected *int `json:"selected"`
}

type singleChoiceGrader struct{}

func (singleChoiceGrader) Validate(response, options json.RawMessage) error {
	var r singleChoiceResponse
	if err := json.Unmarshal(response, &r); err != nil || r.Selected == nil {
		return ErrInvalidResponse
	}

	var opts []json.RawMessage
	if err := json.Unmarshal(options, &opts); err != nil {
		return ErrInvalidResponse
	}
	if *r.Selected < 0 || *r.Selected >= len(opts) {
		return ErrInvalidResponse
	}
	return nil
}

func (singleChoiceGrader) Grade(response json.RawMessage, key string, marks float64) *float64 {
	var r singleChoiceResponse
	if err := json.Unmarshal(response, &r); err != nil || r.Selected == nil {
		zero := 0.0
		return &zero
	}

	obtained := 0.0
	if strconv.Itoa(*r.Selected) == key {
		obtained = marks
	}
	return &obtained
}

// ─── TRUE_FALSE ─────────────────────────────────────────────────────────────

type trueFalseResponse struct {
	Answer *bool `json:"answer"`
}

type trueFalseGrader struct{}

func (trueFalseGrader) Validate(response, _ json.RawMessage) error {
	var r trueFalseResponse
	if err := json.Unmarshal(response, &r); err != nil || r.Answer == nil {
		return ErrInvalidResponse
	}
	return nil
}

func (trueFalseGrader) Grade(response json.RawMessage, key string, marks float64) *float64 {
	var r trueFalseResponse
	if err := json.Unmarshal(response, &r); err != nil || r.Answer == nil {
		zero := 0.0
		return &zero
	}

	obtained := 0.0
	if strconv.FormatBool(*r.Answer) == key {
		obtained = marks
	}
	return &obtained
}

// ─── ESSAY ──────────────────────────────────────────────────────────────────

type essayResponse struct {
	Text string `json:"text"`
}

type essayGrader struct{}

func (essayGrader) Validate(response, _ json.RawMessage) error {
	var r essayResponse
	if err := json.Unmarshal(response, &r); err != nil {
		return ErrInvalidResponse
	}
	if strings.TrimSpace(r.Text) == "" || len(r.Text) > MaxTextLength {
		return ErrInvalidResponse
	}
	return nil
}

// Grade defers essays to manual review.
func (essayGrader) Grade(_ json.RawMessage, _ string, _ float64) *float64 {
	return nil
}
