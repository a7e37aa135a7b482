package domain

import "errors"

// Sentinel errors for the core services. Services wrap them with context via
// fmt.Errorf("%w: ...") and the HTTP layer maps them to status codes.
var (
	ErrValidation   = errors.New("validation")    // 400
	ErrNotFound     = errors.New("not found")     // 404
	ErrConflict     = errors.New("conflict")      // 409
	ErrBusinessRule = errors.New("business rule") // 400
	ErrUnauthorized = errors.New("unauthorized")  // 401
	ErrForbidden    = errors.New("forbidden")     // 403
)
