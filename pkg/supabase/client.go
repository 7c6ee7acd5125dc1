// Package supabase verifies access tokens against the Supabase auth (GoTrue)
// API using gotrue-go.
package supabase

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/supabase-community/gotrue-go"
)

// ErrUnauthorized is returned when the auth server rejects the access token.
var ErrUnauthorized = eris.New("supabase: token rejected")

// Client defines the Supabase auth operations.
type Client interface {
	// GetUser returns the user that owns the given access token.
	GetUser(ctx context.Context, accessToken string) (*User, error)
}

// User is the subset of the GoTrue user object this service reads.
type User struct {
	ID    string
	Email string
	Role  string
	Aud   string
}

// Option configures the client.
type Option func(*authClient)

// WithHTTPClient overrides the transport used for auth requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *authClient) {
		c.http = hc
	}
}

type authClient struct {
	gotrue gotrue.Client
	http   *http.Client
}

// NewClient creates a Supabase auth client for the project at baseURL
// (e.g. https://xyz.supabase.co or a self-hosted gateway). The apiKey is
// sent as the project key on every request.
func NewClient(baseURL, apiKey string, opts ...Option) Client {
	c := &authClient{
		gotrue: gotrue.New("", apiKey).
			WithCustomGoTrueURL(strings.TrimRight(baseURL, "/") + "/auth/v1"),
		http: &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *authClient) GetUser(ctx context.Context, accessToken string) (*User, error) {
	// gotrue-go builds its requests without a context; bind ctx at the transport.
	hc := *c.http
	hc.Transport = ctxTransport{ctx: ctx, next: transportOf(c.http)}

	resp, err := c.gotrue.WithClient(hc).WithToken(accessToken).GetUser()
	if err != nil {
		if status, ok := statusOf(err); ok {
			if status == http.StatusUnauthorized || status == http.StatusForbidden {
				return nil, eris.Wrap(ErrUnauthorized, err.Error())
			}
			return nil, eris.Wrapf(err, "supabase: unexpected status %d", status)
		}
		return nil, eris.Wrap(err, "supabase: get user")
	}
	if resp.ID == uuid.Nil {
		return nil, eris.Wrap(ErrUnauthorized, "user without id")
	}

	return &User{
		ID:    resp.ID.String(),
		Email: resp.Email,
		Role:  resp.Role,
		Aud:   resp.Aud,
	}, nil
}

// statusOf recovers the HTTP status gotrue-go folds into its error text
// ("response status code 401: ...").
func statusOf(err error) (int, bool) {
	var status int
	if _, scanErr := fmt.Sscanf(err.Error(), "response status code %d", &status); scanErr != nil {
		return 0, false
	}
	return status, true
}

func transportOf(hc *http.Client) http.RoundTripper {
	if hc.Transport != nil {
		return hc.Transport
	}
	return http.DefaultTransport
}

type ctxTransport struct {
	ctx  context.Context
	next http.RoundTripper
}

func (t ctxTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.next.RoundTrip(req.WithContext(t.ctx))
}
