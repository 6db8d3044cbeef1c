package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrAuthFailed    ErrCode = "AUTH_FAILED"
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Session lifecycle ─────────────────────────────────────────────
	ErrSessionActive   ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionState    ErrCode = "SESSION_STATE"
	ErrSessionMismatch ErrCode = "SESSION_MISMATCH"
	ErrNoSession       ErrCode = "NO_SESSION"

	// ─── Exam sources ──────────────────────────────────────────────────
	ErrExamConfig    ErrCode = "EXAM_CONFIG_INVALID"
	ErrOptionInvalid ErrCode = "OPTION_OUT_OF_RANGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrAuthFailed:
		return "Incorrect exam credential."
	case ErrTokenRequired:
		return "A session token is required."
	case ErrTokenInvalid:
		return "The session token is invalid or expired."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "The request payload is invalid."
	case ErrSessionActive:
		return "An exam session is already in progress."
	case ErrSessionState:
		return "The session does not accept this command in its current state."
	case ErrSessionMismatch:
		return "The token does not match the active session."
	case ErrNoSession:
		return "No exam session exists."
	case ErrExamConfig:
		return "The exam definition is missing or invalid."
	case ErrOptionInvalid:
		return "The selected option does not exist on this question."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
