// Package identity verifies caller access tokens and derives display names.
package identity

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidToken is returned for missing, malformed, invalid or expired tokens.
var ErrInvalidToken = eris.New("identity: invalid token")

// User is an authenticated caller.
type User struct {
	ID    string
	Email string
}

// Verifier resolves a bearer token to the user that owns it.
type Verifier interface {
	Verify(ctx context.Context, token string) (User, error)
}

const bearerPrefix = "Bearer "

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", eris.Wrap(ErrInvalidToken, "missing or invalid authorization header")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", eris.Wrap(ErrInvalidToken, "missing or invalid authorization header")
	}
	return token, nil
}

func isNameSeparator(r rune) bool {
	return r == '.' || r == '_' || r == '-'
}

// DisplayName derives a human-readable name from the local part of an email
// address: "mary_ann-smith@x" becomes "Mary Ann Smith". Empty segments are
// skipped and "User" is returned when nothing is left.
func DisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")

	segments := strings.FieldsFunc(local, isNameSeparator)
	if len(segments) == 0 {
		return "User"
	}

	for i, s := range segments {
		segments[i] = capitalize(s)
	}
	return strings.Join(segments, " ")
}

// capitalize upper-cases the first rune and lower-cases the rest, leaving
// inner punctuation such as '+' as a plain character rather than a word break.
func capitalize(s string) string {
	_, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Und).String(s[:size]) + cases.Lower(language.Und).String(s[size:])
}
