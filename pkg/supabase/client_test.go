package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID = "0b6e2c52-3f0f-4a39-9f5c-1f3c9a2d7e11"

func TestGetUser(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantErr      string
		unauthorized bool
		wantEmail    string
	}{
		{
			name:      "success",
			status:    http.StatusOK,
			body:      `{"id":"` + userID + `","email":"john.doe@example.com","role":"authenticated","aud":"authenticated"}`,
			wantEmail: "john.doe@example.com",
		},
		{
			name:         "expired_token",
			status:       http.StatusUnauthorized,
			body:         `{"msg":"invalid JWT: token is expired"}`,
			wantErr:      "token is expired",
			unauthorized: true,
		},
		{
			name:         "forbidden",
			status:       http.StatusForbidden,
			body:         `{"msg":"bad_jwt"}`,
			wantErr:      "403",
			unauthorized: true,
		},
		{
			name:    "server_error",
			status:  http.StatusInternalServerError,
			body:    `{"msg":"boom"}`,
			wantErr: "unexpected status 500",
		},
		{
			name:    "malformed",
			status:  http.StatusOK,
			body:    `{nope`,
			wantErr: "get user",
		},
		{
			name:         "missing_id",
			status:       http.StatusOK,
			body:         `{"email":"x@example.com"}`,
			wantErr:      "user without id",
			unauthorized: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/auth/v1/user", r.URL.Path)
				assert.Equal(t, "service-key", r.Header.Get("apikey"))
				assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL+"/", "service-key")
			user, err := client.GetUser(context.Background(), "user-token")

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, tt.unauthorized, errors.Is(err, ErrUnauthorized))
				assert.Nil(t, user)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, userID, user.ID)
			assert.Equal(t, tt.wantEmail, user.Email)
			assert.Equal(t, "authenticated", user.Role)
		})
	}
}

func TestGetUser_HonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL, "k").GetUser(ctx, "tok")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestGetUser_NoClientTimeout(t *testing.T) {
	c := NewClient("https://proj.supabase.co", "k").(*authClient)
	assert.Zero(t, c.http.Timeout)
}

func TestWithHTTPClient(t *testing.T) {
	custom := &http.Client{}
	c := NewClient("https://proj.supabase.co", "k", WithHTTPClient(custom))
	assert.Same(t, custom, c.(*authClient).http)
}

func TestStatusOf(t *testing.T) {
	status, ok := statusOf(errors.New("response status code 401: {}"))
	assert.True(t, ok)
	assert.Equal(t, 401, status)

	_, ok = statusOf(errors.New("dial tcp: connection refused"))
	assert.False(t, ok)
}
