package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrRateLimited    = errors.New("rate limited")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidBet     = errors.New("invalid bet parameters")
	ErrLLMUnavailable = errors.New("llm analysis unavailable")
	ErrWrongCreator   = errors.New("market creator does not match target")
)
