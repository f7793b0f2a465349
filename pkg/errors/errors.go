package errors

import "errors"

var (
	// Coordinate errors
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
	ErrInvalidLatitude     = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude    = errors.New("longitude must be between -180 and 180")
	ErrCoordinatesNotFound = errors.New("Coordinates not found")

	// Role and difficulty errors
	ErrInvalidRole            = errors.New("invalid role")
	ErrInvalidDifficulty      = errors.New("invalid difficulty")
	ErrInvalidSystem          = errors.New("invalid coordinate system")
	ErrNotDifficultyAuthority = errors.New("only a predator role may change difficulty")
	ErrRoleAlreadySelected    = errors.New("role already selected")
	ErrNoRoleSelected         = errors.New("no role selected")

	// Position source errors
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrPermissionDenied    = errors.New("position permission denied")

	// Remote store errors
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// Rate limit errors
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// Storage errors
	ErrStorageUnavailable = errors.New("storage unavailable")
)

type AppError struct {
	Err        error
	Message    string
	Code       string
	StatusCode int
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, statusCode int) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: statusCode,
	}
}

// WithCode tags the error with a machine readable code for API responses.
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}
