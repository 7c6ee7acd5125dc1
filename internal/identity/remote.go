package identity

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/docscan/pkg/supabase"
)

// RemoteVerifier asks the Supabase auth server who owns a token.
type RemoteVerifier struct {
	client supabase.Client
}

// NewRemoteVerifier wraps a Supabase auth client.
func NewRemoteVerifier(client supabase.Client) *RemoteVerifier {
	return &RemoteVerifier{client: client}
}

// Verify implements Verifier.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (User, error) {
	u, err := v.client.GetUser(ctx, token)
	if err != nil {
		if errors.Is(err, supabase.ErrUnauthorized) {
			return User{}, eris.Wrap(ErrInvalidToken, err.Error())
		}
		return User{}, eris.Wrap(err, "identity: verify token")
	}
	return User{ID: u.ID, Email: u.Email}, nil
}
