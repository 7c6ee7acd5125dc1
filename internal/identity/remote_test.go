package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/docscan/pkg/supabase"
)

type mockAuthClient struct {
	mock.Mock
}

func (m *mockAuthClient) GetUser(ctx context.Context, token string) (*supabase.User, error) {
	args := m.Called(ctx, token)
	if u := args.Get(0); u != nil {
		return u.(*supabase.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRemoteVerifier_Verify(t *testing.T) {
	client := &mockAuthClient{}
	client.On("GetUser", mock.Anything, "good").
		Return(&supabase.User{ID: "u-1", Email: "john.doe@example.com"}, nil)

	user, err := NewRemoteVerifier(client).Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, User{ID: "u-1", Email: "john.doe@example.com"}, user)
	client.AssertExpectations(t)
}

func TestRemoteVerifier_Rejected(t *testing.T) {
	client := &mockAuthClient{}
	client.On("GetUser", mock.Anything, "expired").
		Return(nil, eris.Wrap(supabase.ErrUnauthorized, "status 401: token is expired"))

	_, err := NewRemoteVerifier(client).Verify(context.Background(), "expired")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidToken))
	assert.Contains(t, err.Error(), "token is expired")
}

func TestRemoteVerifier_TransportFailure(t *testing.T) {
	client := &mockAuthClient{}
	client.On("GetUser", mock.Anything, "tok").
		Return(nil, eris.New("supabase: send request: connection refused"))

	_, err := NewRemoteVerifier(client).Verify(context.Background(), "tok")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidToken))
	assert.Contains(t, err.Error(), "connection refused")
}
