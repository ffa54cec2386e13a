package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type stubVerifier struct {
	session Session
	err     error
}

func (v stubVerifier) VerifyToken(_ context.Context, token string) (Session, error) {
	if v.err != nil {
		return Session{}, v.err
	}
	s := v.session
	s.AccountID = token
	return s, nil
}

func whoAmI(w http.ResponseWriter, r *http.Request) {
	s, ok := GetSessionFromContext(r.Context())
	if !ok {
		w.Write([]byte("anonymous"))
		return
	}
	w.Write([]byte(s.AccountID))
}

func TestSessionStore_Expiry(t *testing.T) {
	store := NewSessionStore()
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	token, err := store.Create("acct-1", "ann@example.com", "attendee")
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := store.Get(token); !ok || s.AccountID != "acct-1" {
		t.Fatalf("session not found: %+v", s)
	}

	now = now.Add(SessionTTL + time.Second)
	if _, ok := store.Get(token); ok {
		t.Error("session should expire after 24h")
	}

	token, _ = store.Create("acct-2", "bob@example.com", "attendee")
	store.Delete(token)
	if _, ok := store.Get(token); ok {
		t.Error("deleted session still present")
	}
}

func TestAuth_Cookie(t *testing.T) {
	store := NewSessionStore()
	token, _ := store.Create("acct-1", "ann@example.com", "attendee")
	handler := Auth(store, nil)(http.HandlerFunc(whoAmI))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Body.String() != "acct-1" {
		t.Errorf("body = %q", rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "bogus"})
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Body.String() != "anonymous" {
		t.Errorf("unknown token should be anonymous, got %q", rr.Body.String())
	}
}

func TestAuth_BearerToken(t *testing.T) {
	tests := []struct {
		name     string
		verifier TokenVerifier
		header   string
		want     string
	}{
		{"verified", stubVerifier{session: Session{Role: "attendee"}}, "Bearer uid-9", "uid-9"},
		{"rejected", stubVerifier{err: errors.New("expired")}, "Bearer uid-9", "anonymous"},
		{"no verifier", nil, "Bearer uid-9", "anonymous"},
		{"not bearer", stubVerifier{}, "Basic abc", "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Auth(NewSessionStore(), tt.verifier)(http.HandlerFunc(whoAmI))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tt.header)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Body.String() != tt.want {
				t.Errorf("body = %q, want %q", rr.Body.String(), tt.want)
			}
		})
	}
}

func TestRequireAuthAndRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	tests := []struct {
		name    string
		handler http.Handler
		session *Session
		want    int
	}{
		{"auth anonymous", RequireAuth(ok), nil, http.StatusUnauthorized},
		{"auth signed in", RequireAuth(ok), &Session{AccountID: "a", Role: "attendee"}, http.StatusNoContent},
		{"role anonymous", RequireRole("admin")(ok), nil, http.StatusUnauthorized},
		{"role wrong", RequireRole("admin")(ok), &Session{AccountID: "a", Role: "attendee"}, http.StatusForbidden},
		{"role admin", RequireRole("admin")(ok), &Session{AccountID: "a", Role: "admin"}, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.session != nil {
				req = req.WithContext(ContextWithSession(req.Context(), *tt.session))
			}
			rr := httptest.NewRecorder()
			tt.handler.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
			if tt.want >= 400 && !strings.Contains(rr.Body.String(), `"error"`) {
				t.Errorf("expected JSON error body, got %q", rr.Body.String())
			}
		})
	}
}

func TestSessionCookieRoundTrip(t *testing.T) {
	rr := httptest.NewRecorder()
	SetSessionCookie(rr, "tok", true)
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "techfest_session" || !cookies[0].HttpOnly || !cookies[0].Secure {
		t.Fatalf("unexpected cookie: %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	if got := SessionToken(req); got != "tok" {
		t.Errorf("SessionToken = %q", got)
	}

	rr = httptest.NewRecorder()
	ClearSessionCookie(rr, false)
	if c := rr.Result().Cookies(); len(c) != 1 || c[0].MaxAge >= 0 {
		t.Errorf("cookie not cleared: %+v", c)
	}
}
