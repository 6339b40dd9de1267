package session

import "errors"

var (
	// ErrNoSession indicates the request carries no valid session cookie (strict mode)
	ErrNoSession = errors.New("session.no_session")

	// ErrSessionNotFound indicates the cookie resolved to an identifier with no record (strict mode)
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrBadRequest indicates a strict clear on a request without a clearable session;
	// callers should surface it as HTTP 400
	ErrBadRequest = errors.New("session.bad_request")
)
