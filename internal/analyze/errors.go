package analyze

import (
	"errors"
	"net/http"
)

// PermissionDeniedDetail is the guidance returned when the database rejects
// a write because of a row-level policy.
const PermissionDeniedDetail = "Database save failed due to RLS policy. " +
	"Ensure store.database_url connects with the service_role credential (not the anon role)."

// AuthError reports a missing, invalid or expired access token.
type AuthError struct {
	Detail string
	Err    error
}

func (e *AuthError) Error() string { return e.Detail }
func (e *AuthError) Unwrap() error { return e.Err }

// ValidationError reports a malformed request body.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string { return e.Detail }

// GatewayError reports a model call failure the gateway could not absorb.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string { return "AI analysis failed: " + e.Err.Error() }
func (e *GatewayError) Unwrap() error { return e.Err }

// PersistenceError reports a failed submission insert.
type PersistenceError struct {
	Err              error
	PermissionDenied bool
}

func (e *PersistenceError) Error() string {
	if e.PermissionDenied {
		return PermissionDeniedDetail
	}
	return "Database save failed: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// StatusCode maps an error from this package to an HTTP status.
func StatusCode(err error) int {
	var (
		authErr  *AuthError
		validErr *ValidationError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &validErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Detail returns the caller-facing message for err.
func Detail(err error) string {
	var (
		authErr    *AuthError
		validErr   *ValidationError
		gatewayErr *GatewayError
		persistErr *PersistenceError
	)
	switch {
	case errors.As(err, &authErr):
		return authErr.Error()
	case errors.As(err, &validErr):
		return validErr.Error()
	case errors.As(err, &gatewayErr):
		return gatewayErr.Error()
	case errors.As(err, &persistErr):
		return persistErr.Error()
	default:
		return "Internal server error"
	}
}
