package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrTaskNotFound  = errors.New("task not found")
	ErrTaskNotOpen   = errors.New("task is not open")
	ErrTaskExists    = errors.New("a task already exists for this date")
	ErrTaskLocked    = errors.New("task can only be changed while closed")
	ErrInvalidWindow = errors.New("close hour must be after open hour, both within 0-23")
	ErrTooManyHints  = errors.New("task already has the maximum number of hints")
	ErrHintNotFound  = errors.New("hint not found")

	ErrAlreadySolved   = errors.New("task already solved")
	ErrDuplicateAnswer = errors.New("answer already submitted")
	ErrNoAttemptsLeft  = errors.New("no attempts left")
	ErrNoHintsLeft     = errors.New("no hints left")

	// ErrConcurrentUpdate means a versioned write lost against another
	// writer. Callers retry once before giving up with ErrTransientFailure.
	ErrConcurrentUpdate = errors.New("concurrent update")
	ErrTransientFailure = errors.New("temporary failure, try again")

	ErrInvalidMediaType = errors.New("unsupported media type")
)
