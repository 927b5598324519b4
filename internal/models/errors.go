package models

import "errors"

// Engine-level failure taxonomy. Handlers match these with errors.Is and
// map them onto HTTP status codes; nothing below the handler layer writes
// free-text error responses.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrDuplicateEmail        = errors.New("email already exists")
	ErrUserNotFound          = errors.New("user not found")
	ErrWrongCredentials      = errors.New("wrong credentials")
	ErrNotVerified           = errors.New("email not verified")
	ErrAlreadyVerified       = errors.New("email already verified")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrTokenStillValid       = errors.New("existing token still valid")
	ErrDispatchFailed        = errors.New("mail dispatch failed")
)
