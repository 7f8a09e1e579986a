package util

import "errors"

var (
	ErrQuizNotFound    = errors.New("quiz not found")
	ErrQuizNoQuestions = errors.New("this quiz has no questions available")
	ErrQuizCompleted   = errors.New("quiz already completed")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNoAuthToken     = errors.New("no auth token available")
	ErrSessionClosed   = errors.New("attempt session closed")
	ErrBadPhase        = errors.New("operation not valid in current phase")
	ErrMalformedBody   = errors.New("invalid response format from server")
)
