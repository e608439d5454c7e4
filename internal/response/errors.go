package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrLoginActive        ErrCode = "LOGIN_ALREADY_ACTIVE"
	ErrLoginInvalidated   ErrCode = "LOGIN_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrParticipantOnly    ErrCode = "PARTICIPANT_ACCESS_ONLY"
	ErrInstructorOnly     ErrCode = "INSTRUCTOR_ACCESS_ONLY"
	ErrNotAssessmentOwner ErrCode = "NOT_ASSESSMENT_OWNER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Admission ─────────────────────────────────────────────────────
	ErrNotFound          ErrCode = "NOT_FOUND"
	ErrWindowNotStarted  ErrCode = "NOT_STARTED"
	ErrWindowEnded       ErrCode = "ENDED"
	ErrInvalidCode       ErrCode = "INVALID_CODE"
	ErrInvalidInvitation ErrCode = "INVALID_INVITATION"
	ErrInvitationExpired ErrCode = "INVITATION_EXPIRED"

	// ─── Session lifecycle ─────────────────────────────────────────────
	ErrSessionNotFound  ErrCode = "SESSION_NOT_FOUND"
	ErrSessionNotActive ErrCode = "SESSION_NOT_ACTIVE"
	ErrTimeExpired      ErrCode = "TIME_EXPIRED"
	ErrAlreadyFinished  ErrCode = "ALREADY_FINISHED"
	ErrTerminated       ErrCode = "TERMINATED"

	// ─── Answer pipeline ───────────────────────────────────────────────
	ErrInvalidResponse  ErrCode = "INVALID_RESPONSE"
	ErrQuestionNotFound ErrCode = "QUESTION_NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrLoginActive:
		return "You are already logged in on another device."
	case ErrLoginInvalidated:
		return "Your login has been invalidated. Please sign in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrParticipantOnly:
		return "This resource is restricted to participants."
	case ErrInstructorOnly:
		return "This resource is restricted to instructors."
	case ErrNotAssessmentOwner:
		return "You are not the owner of this assessment."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "The ID format is invalid."
	case ErrInvalidPayload:
		return "The request payload is invalid."

	// ─── Admission ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "The assessment was not found or is not published."
	case ErrWindowNotStarted:
		return "The assessment has not started yet."
	case ErrWindowEnded:
		return "The assessment has already ended."
	case ErrInvalidCode:
		return "The access code is incorrect."
	case ErrInvalidInvitation:
		return "The invitation is not valid for this assessment."
	case ErrInvitationExpired:
		return "The invitation has expired."

	// ─── Session lifecycle ─────────────────────────────────────────────
	case ErrSessionNotFound:
		return "The session was not found."
	case ErrSessionNotActive:
		return "The session is not active."
	case ErrTimeExpired:
		return "Time is up. The session has been submitted."
	case ErrAlreadyFinished:
		return "The session has already been completed."
	case ErrTerminated:
		return "The session has been terminated."

	// ─── Answer pipeline ───────────────────────────────────────────────
	case ErrInvalidResponse:
		return "The response does not match the question's expected shape."
	case ErrQuestionNotFound:
		return "The question does not belong to this assessment."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
