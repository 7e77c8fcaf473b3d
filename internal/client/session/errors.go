package session

import "errors"

var (
	// ErrNoRefreshToken means a 401 arrived while no refresh token was stored.
	ErrNoRefreshToken = errors.New("no refresh token stored")

	// ErrRefreshFailed wraps the backend error of an unsuccessful refresh.
	ErrRefreshFailed = errors.New("token refresh failed")
)
