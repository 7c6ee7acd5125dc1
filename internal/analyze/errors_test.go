package analyze

import (
	"errors"
	"net/http"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestStatusCodeAndDetail(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "auth",
			err:        &AuthError{Detail: "Invalid token"},
			wantStatus: http.StatusUnauthorized,
			wantDetail: "Invalid token",
		},
		{
			name:       "wrapped auth",
			err:        eris.Wrap(&AuthError{Detail: "Missing or invalid authorization header"}, "server"),
			wantStatus: http.StatusUnauthorized,
			wantDetail: "Missing or invalid authorization header",
		},
		{
			name:       "validation",
			err:        &ValidationError{Detail: "text is required"},
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: "text is required",
		},
		{
			name:       "gateway",
			err:        &GatewayError{Err: errors.New("boom")},
			wantStatus: http.StatusInternalServerError,
			wantDetail: "AI analysis failed: boom",
		},
		{
			name:       "persistence",
			err:        &PersistenceError{Err: errors.New("timeout")},
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Database save failed: timeout",
		},
		{
			name:       "persistence denied",
			err:        &PersistenceError{Err: errors.New("42501"), PermissionDenied: true},
			wantStatus: http.StatusInternalServerError,
			wantDetail: PermissionDeniedDetail,
		},
		{
			name:       "unknown",
			err:        errors.New("secret internals"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Internal server error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, StatusCode(tt.err))
			assert.Equal(t, tt.wantDetail, Detail(tt.err))
		})
	}
	assert.Equal(t, http.StatusOK, StatusCode(nil))
}
