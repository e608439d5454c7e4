package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/attestly/attest-backend/internal/middleware"
	"github.com/attestly/attest-backend/internal/model"
	"github.com/attestly/attest-backend/internal/repository"
	"github.com/attestly/attest-backend/internal/response"
	"github.com/attestly/attest-backend/internal/service"
	"github.com/attestly/attest-backend/internal/validator"
)

// ReviewHandler handles instructor-facing endpoints: manual grading, results
// and housekeeping sweeps.
type ReviewHandler struct {
	answerService *service.AnswerService
	timerService  *service.TimerService
	assessments   *repository.AssessmentRepository
	sessions      *repository.SessionRepository
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(
	answerService *service.AnswerService,
	timerService *service.TimerService,
	assessments *repository.AssessmentRepository,
	sessions *repository.SessionRepository,
) *ReviewHandler {
	return &ReviewHandler{
		answerService: answerService,
		timerService:  timerService,
		assessments:   assessments,
		sessions:      sessions,
	}
}

// requireOwnedAssessment resolves the assessment and checks ownership.
func (h *ReviewHandler) requireOwnedAssessment(c *gin.Context, instructorID int) (*model.Assessment, bool) {
	assessmentID, ok := paramUUID(c, "assessment_id")
	if !ok {
		return nil, false
	}

	assessment, err := h.assessments.GetByID(c.Request.Context(), assessmentID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return nil, false
	}
	if assessment.OwnerID != instructorID {
		response.Fail(c, http.StatusForbidden, response.ErrNotAssessmentOwner)
		return nil, false
	}
	return assessment, true
}

// ReviewAnswer godoc
// PUT /api/v1/instructor/sessions/:session_id/questions/:question_id/review
// Applies a manual grade. Revises the frozen total of a completed session.
func (h *ReviewHandler) ReviewAnswer(c *gin.Context) {
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

	var req model.ReviewAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	record, err := h.answerService.Review(c.Request.Context(), claims.UserID, sessionID, questionID, *req.MarksObtained, req.Comment)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"answer": record})
}

// SweepAssessment godoc
// POST /api/v1/instructor/assessments/:assessment_id/sweep
// Force-completes all expired IN_PROGRESS sessions of the assessment.
func (h *ReviewHandler) SweepAssessment(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	assessment, ok := h.requireOwnedAssessment(c, claims.UserID)
	if !ok {
		return
	}

	swept, err := h.timerService.Sweep(c.Request.Context(), assessment.ID)
	if err != nil {
		failDomain(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"swept": swept})
}

// ListResults godoc
// GET /api/v1/instructor/assessments/:assessment_id/results
// Lists all participant results of the assessment, paginated.
func (h *ReviewHandler) ListResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	assessment, ok := h.requireOwnedAssessment(c, claims.UserID)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	results, total, err := h.sessions.ListResultsByAssessment(c.Request.Context(), assessment.ID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if results == nil {
		results = []repository.AssessmentResult{}
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"results": results}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	})
}
