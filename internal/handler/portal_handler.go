package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/attestly/attest-backend/internal/middleware"
	"github.com/attestly/attest-backend/internal/model"
	"github.com/attestly/attest-backend/internal/response"
	"github.com/attestly/attest-backend/internal/service"
	"github.com/attestly/attest-backend/internal/validator"
)

// PortalHandler handles participant-facing endpoints: admission, session
// lifecycle, answering and flagging.
type PortalHandler struct {
	accessService  *service.AccessService
	sessionService *service.SessionService
	timerService   *service.TimerService
	answerService  *service.AnswerService
	flagService    *service.FlagService
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(
	accessService *service.AccessService,
	sessionService *service.SessionService,
	timerService *service.TimerService,
	answerService *service.AnswerService,
	flagService *service.FlagService,
) *PortalHandler {
	return &PortalHandler{
		accessService:  accessService,
		sessionService: sessionService,
		timerService:   timerService,
		answerService:  answerService,
		flagService:    flagService,
	}
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// ValidateAccess godoc
// POST /api/v1/participant/assessments/:assessment_id/access
// Checks admission without creating a session. Safe to call repeatedly.
func (h *PortalHandler) ValidateAccess(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	assessmentID, ok := paramUUID(c, "assessment_id")
	if !ok {
		return
	}

	var req model.AccessRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	decision, err := h.accessService.Validate(c.Request.Context(), claims.UserID, claims.Email, assessmentID, req)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, decision)
}

// JoinAssessment godoc
// POST /api/v1/participant/assessments/:assessment_id/join
// Re-runs the admission check and finds or creates the session (idempotent).
func (h *PortalHandler) JoinAssessment(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	assessmentID, ok := paramUUID(c, "assessment_id")
	if !ok {
		return
	}

	var req model.AccessRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	decision, err := h.accessService.Validate(c.Request.Context(), claims.UserID, claims.Email, assessmentID, req)
	if err != nil {
		failDomain(c, err)
		return
	}

	if decision.Resume {
		response.Success(c, http.StatusOK, gin.H{"session": decision.Session, "resume": true})
		return
	}

	session, err := h.sessionService.CreateOrResume(c.Request.Context(), assessmentID, claims.UserID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": session, "resume": false})
}

// StartSession godoc
// POST /api/v1/participant/sessions/:session_id/start
// Starts the attempt clock. Re-invocation resumes without restarting it.
func (h *PortalHandler) StartSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, ok := paramUUID(c, "session_id")
	if !ok {
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// GetTimer godoc
// GET /api/v1/participant/sessions/:session_id/timer
// Returns the current timer snapshot. An expired session is force-completed
// as a side effect of this read.
func (h *PortalHandler) GetTimer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, ok := paramUUID(c, "session_id")
	if !ok {
		return
	}

	info, err := h.timerService.Info(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, info)
}

// GetQuestion godoc
// GET /api/v1/participant/sessions/:session_id/questions/:question_id
// Returns the session's snapshot of one question, materializing on first access.
func (h *PortalHandler) GetQuestion(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, ok := paramUUID(c, "session_id")
	if !ok {
		return
	}
	questionID, ok := paramUUID(c, "question_id")
	if !ok {
		return
	}

	view, err := h.answerService.GetQuestion(c.Request.Context(), claims.UserID, sessionID, questionID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": view})
}

// ListQuestions godoc
// GET /api/v1/participant/sessions/:session_id/questions
// Returns navigation summaries for every question of the assessment.
func (h *PortalHandler) ListQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, ok := paramUUID(c, "session_id")
	if !ok {
		return
	}

	summaries, err := h.answerService.ListQuestions(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		failDomain(c, err)
		return
	}

	if summaries == nil {
		summaries = []model.QuestionSummary{}
	}
	response.Success(c, http.StatusOK, gin.H{"questions": summaries})
}

// ListAnswers godoc
// GET /api/v1/participant/sessions/:session_id/answers
// Returns all materialized answers of the session.
func (h *PortalHandler) ListAnswers(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, ok := paramUUID(c, "session_id")
	if !ok {
		return
	}

	views, err := h.answerService.ListAnswers(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		failDomain(c, err)
		return
	}

	if views == nil {
		views = []model.AnswerView{}
	}
	response.Success(c, http.StatusOK, gin.H{"answers": views})
}

// SubmitAnswer godoc
// PUT /api/v1/participant/sessions/:session_id/questions/:question_id/answer
// Records (and re-grades) the participant's response to one question.
func (h *PortalHandler) SubmitAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, ok := paramUUID(c, "session_id")
	if !ok {
		return
	}
	questionID, ok := paramUUID(c, "question_id")
	if !ok {
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	record, err := h.answerService.Submit(c.Request.Context(), claims.UserID, sessionID, questionID, req.Response)
	if err != nil {
		failDomain(c, err)
		return
	}

	view := record.View()
	response.Success(c, http.StatusOK, gin.H{"answer": view})
}

// CompleteSession godoc
// POST /api/v1/participant/sessions/:session_id/complete
// Submits the attempt, freezing the total score. Idempotent.
func (h *PortalHandler) CompleteSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, ok := paramUUID(c, "session_id")
	if !ok {
		return
	}

	session, err := h.sessionService.Complete(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// SetFlag godoc
// PUT /api/v1/participant/sessions/:session_id/questions/:question_id/flag
// Sets or clears the bookmark on one question.
func (h *PortalHandler) SetFlag(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, ok := paramUUID(c, "session_id")
	if !ok {
		return
	}
	questionID, ok := paramUUID(c, "question_id")
	if !ok {
		return
	}

	var req model.SetFlagRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	flag, err := h.flagService.SetFlag(c.Request.Context(), claims.UserID, sessionID, questionID, *req.Flagged)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"flag": flag})
}

// GetFlags godoc
// GET /api/v1/participant/sessions/:session_id/flags
// Lists all bookmarks of the session.
func (h *PortalHandler) GetFlags(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, ok := paramUUID(c, "session_id")
	if !ok {
		return
	}

	flags, err := h.flagService.GetFlags(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		failDomain(c, err)
		return
	}

	if flags == nil {
		flags = []model.Flag{}
	}
	response.Success(c, http.StatusOK, gin.H{"flags": flags})
}
