package grading

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestly/attest-backend/internal/model"
)

var fourOptions = json.RawMessage(`["Red", "Green", "Blue", "Yellow"]`)

func TestForType(t *testing.T) {
	for _, qt := range []model.QuestionType{
		model.QuestionTypeSingleChoice,
		model.QuestionTypeTrueFalse,
		model.QuestionTypeEssay,
	} {
		g, ok := ForType(qt)
		assert.True(t, ok, "type %s", qt)
		assert.NotNil(t, g)
	}

	_, ok := ForType(model.QuestionType("MATCHING"))
	assert.False(t, ok)
}

func TestSingleChoiceValidate(t *testing.T) {
	g, _ := ForType(model.QuestionTypeSingleChoice)

	tests := []struct {
		name     string
		response string
		wantErr  bool
	}{
		{"first option", `{"selected": 0}`, false},
		{"last option", `{"selected": 3}`, false},
		{"index out of bounds", `{"selected": 4}`, true},
		{"negative index", `{"selected": -1}`, true},
		{"missing field", `{}`, true},
		{"wrong type", `{"selected": "2"}`, true},
		{"not json", `selected`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Validate(json.RawMessage(tt.response), fourOptions)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidResponse)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSingleChoiceGrade(t *testing.T) {
	g, _ := ForType(model.QuestionTypeSingleChoice)

	correct := g.Grade(json.RawMessage(`{"selected": 2}`), "2", 5)
	require.NotNil(t, correct)
	assert.Equal(t, 5.0, *correct)

	wrong := g.Grade(json.RawMessage(`{"selected": 1}`), "2", 5)
	require.NotNil(t, wrong)
	assert.Equal(t, 0.0, *wrong)
}

func TestTrueFalseGrade(t *testing.T) {
	g, _ := ForType(model.QuestionTypeTrueFalse)

	require.NoError(t, g.Validate(json.RawMessage(`{"answer": true}`), nil))
	assert.ErrorIs(t, g.Validate(json.RawMessage(`{}`), nil), ErrInvalidResponse)

	correct := g.Grade(json.RawMessage(`{"answer": false}`), "false", 2)
	require.NotNil(t, correct)
	assert.Equal(t, 2.0, *correct)

	wrong := g.Grade(json.RawMessage(`{"answer": true}`), "false", 2)
	require.NotNil(t, wrong)
	assert.Equal(t, 0.0, *wrong)
}

func TestEssay(t *testing.T) {
	g, _ := ForType(model.QuestionTypeEssay)

	require.NoError(t, g.Validate(json.RawMessage(`{"text": "Photosynthesis converts light into chemical energy."}`), nil))
	assert.ErrorIs(t, g.Validate(json.RawMessage(`{"text": ""}`), nil), ErrInvalidResponse)
	assert.ErrorIs(t, g.Validate(json.RawMessage(`{"text": "   "}`), nil), ErrInvalidResponse)

	long, _ := json.Marshal(map[string]string{"text": strings.Repeat("a", MaxTextLength+1)})
	assert.ErrorIs(t, g.Validate(long, nil), ErrInvalidResponse)

	// Essays are never auto-graded.
	assert.Nil(t, g.Grade(json.RawMessage(`{"text": "anything"}`), "", 10))
}
