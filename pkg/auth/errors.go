package auth

import "errors"

// ErrMissingIdentifier indicates LoginUser was called with neither a
// username nor an id; this is programmer misuse, not a login failure
var ErrMissingIdentifier = errors.New("auth.missing_identifier")
