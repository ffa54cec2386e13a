package firebase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"firebase.google.com/go/v4/auth"

	"techfest/internal/adapters/http/middleware"
	"techfest/internal/domain/account"
)

// ErrMissingUID is returned for a verified token without a subject.
var ErrMissingUID = errors.New("id token has no uid")

// idTokenVerifier is the subset of *auth.Client the verifier needs.
type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// TokenVerifier turns Firebase ID tokens into sessions. Users carrying a
// custom claim role=admin are admins; everyone else is an attendee.
type TokenVerifier struct {
	auth idTokenVerifier
}

var _ middleware.TokenVerifier = (*TokenVerifier)(nil)

// NewTokenVerifier wraps a Firebase Auth client.
func NewTokenVerifier(client *auth.Client) *TokenVerifier {
	return &TokenVerifier{auth: client}
}

// VerifyToken checks the token signature and expiry with Firebase.
func (v *TokenVerifier) VerifyToken(ctx context.Context, token string) (middleware.Session, error) {
	tok, err := v.auth.VerifyIDToken(ctx, token)
	if err != nil {
		return middleware.Session{}, fmt.Errorf("verify id token: %w", err)
	}
	return sessionFromToken(tok)
}

func sessionFromToken(tok *auth.Token) (middleware.Session, error) {
	if tok.UID == "" {
		return middleware.Session{}, ErrMissingUID
	}
	email, _ := tok.Claims["email"].(string)
	role := account.RoleAttendee
	if r, _ := tok.Claims["role"].(string); r == account.RoleAdmin {
		role = account.RoleAdmin
	}
	return middleware.Session{
		AccountID: tok.UID,
		Email:     email,
		Role:      role,
		CreatedAt: time.Unix(tok.IssuedAt, 0).UTC(),
	}, nil
}
