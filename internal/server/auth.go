package server

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/docscan/internal/analyze"
	"github.com/sells-group/docscan/internal/identity"
	"github.com/sells-group/docscan/internal/model"
)

type ctxKey struct{}

// authenticate resolves the bearer token to a user. Requests without a
// valid token stop here with 401.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := identity.BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			rejectAuth(w, r, &analyze.AuthError{Detail: "Missing or invalid authorization header", Err: err})
			return
		}

		user, err := s.verifier.Verify(r.Context(), token)
		if err != nil {
			detail := "Token verification failed: " + err.Error()
			if errors.Is(err, identity.ErrInvalidToken) {
				detail = "Invalid token"
			}
			rejectAuth(w, r, &analyze.AuthError{Detail: detail, Err: err})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	})
}

func rejectAuth(w http.ResponseWriter, r *http.Request, err *analyze.AuthError) {
	zap.L().Info("auth: request rejected", analyze.StageField(model.StageUnauthenticated),
		zap.String("path", r.URL.Path),
		zap.String("reason", err.Detail),
	)
	writeError(w, r, err)
}

// userFrom returns the user stored by authenticate.
func userFrom(ctx context.Context) (identity.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(identity.User)
	return u, ok
}
