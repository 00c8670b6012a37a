package serviceerrs

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrUnexpected       = errors.New("unexpected error")
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenAlreadyUsed = errors.New("token already used")
	ErrNoToken          = errors.New("no bearer token in request")
	ErrPoolNotInit      = errors.New("connection pool is not initialized")

	ErrSemaphoreTimeoutExceeded = errors.New("semaphore acquire timeout exceeded")
	ErrEmailsDisabled           = errors.New("emails are disabled")
	ErrMailerStopped            = errors.New("mailer is stopped")
)

type TooManyAttemptsError struct {
	Key      string
	Failures int64
}

func (e *TooManyAttemptsError) Error() string {
	return "too many failed attempts"
}
