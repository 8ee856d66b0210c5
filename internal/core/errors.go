package core

// Error codes for domain errors. They appear verbatim on the wire after the
// ERROR: prefix.
const (
	ErrCodeNameTaken   = "name_taken"
	ErrCodeInvalidName = "invalid_name"
	ErrCodeNoSuchUser  = "no_such_user"
	ErrCodeRateLimited = "rate_limited"
	ErrCodeNotJoined   = "not_joined"
	ErrCodeServerFull  = "server_full"
	ErrCodeBadRequest  = "bad_request"
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

// NewError builds a CoreError with the given code.
func NewError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
