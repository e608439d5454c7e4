package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attestly/attest-backend/internal/grading"
	"github.com/attestly/attest-backend/internal/response"
	"github.com/attestly/attest-backend/internal/service"
)

// failDomain maps a service sentinel error to its HTTP status and error code.
// Unknown errors fall through to a 500.
func failDomain(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssessmentNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrWindowNotStarted):
		response.Fail(c, http.StatusForbidden, response.ErrWindowNotStarted)
	case errors.Is(err, service.ErrWindowEnded):
		response.Fail(c, http.StatusForbidden, response.ErrWindowEnded)
	case errors.Is(err, service.ErrInvalidAccessCode):
		response.Fail(c, http.StatusForbidden, response.ErrInvalidCode)
	case errors.Is(err, service.ErrInvalidInvitation):
		response.Fail(c, http.StatusForbidden, response.ErrInvalidInvitation)
	case errors.Is(err, service.ErrInvitationExpired):
		response.Fail(c, http.StatusForbidden, response.ErrInvitationExpired)

	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, service.ErrSessionNotActive):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotActive)
	case errors.Is(err, service.ErrTimeExpired):
		response.Fail(c, http.StatusConflict, response.ErrTimeExpired)
	case errors.Is(err, service.ErrAlreadyFinished):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyFinished)
	case errors.Is(err, service.ErrTerminated):
		response.Fail(c, http.StatusConflict, response.ErrTerminated)

	case errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrQuestionNotFound)
	case errors.Is(err, grading.ErrInvalidResponse):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidResponse)
	case errors.Is(err, service.ErrMarksOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
	case errors.Is(err, service.ErrNotOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotAssessmentOwner)

	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
