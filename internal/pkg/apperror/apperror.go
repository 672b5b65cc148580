package apperror

// AppError carries the HTTP status and user-facing message of a domain error.
// Domain packages declare them as sentinels and wrap them with fmt.Errorf("%w: ...")
// when extra context is useful.
type AppError struct {
	Code    int    // HTTP status code
	Message string // User-facing message
}

func (e *AppError) Error() string {
	return e.Message
}

// New creates an AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}
