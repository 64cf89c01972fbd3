package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/natpac/tripcollect/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		logger,
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func TestNewSessionManager_EmptyKey_Fails(t *testing.T) {
	_, err := auth.NewSessionManager("", "s", "", time.Hour, false, zap.NewNop())
	if err == nil {
		t.Fatal("expected an error for an empty session key")
	}
}

func TestRequireSignedIn_NoUser_RedirectsToLogin(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("protected content"))
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/login") {
		t.Errorf("expected redirect to /login, got %q", location)
	}
}

func TestRequireSignedIn_NoUser_API_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/data", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireSignedIn_NoUser_HTMX_ReturnsHXRedirect(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}

	hxRedirect := rec.Header().Get("HX-Redirect")
	if !strings.HasPrefix(hxRedirect, "/login") {
		t.Errorf("expected HX-Redirect to /login, got %q", hxRedirect)
	}
}

func TestRequireSignedIn_WithUser_Proceeds(t *testing.T) {
	sm := newTestSessionManager(t)

	called := false
	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req = withTestUser(req, true)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("expected handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestRequireConsent_NoUser_RedirectsToLogin(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireConsent(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/research", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if location := rec.Header().Get("Location"); !strings.HasPrefix(location, "/login") {
		t.Errorf("expected redirect to /login, got %q", location)
	}
}

func TestRequireConsent_WithoutConsent_RedirectsToConsent(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireConsent(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/research", nil)
	req.Header.Set("Accept", "text/html")
	req = withTestUser(req, false)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/consent" {
		t.Errorf("expected redirect to /consent, got %q", location)
	}
}

func TestRequireConsent_WithoutConsent_HTMX_ReturnsHXRedirect(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireConsent(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/research", nil)
	req.Header.Set("HX-Request", "true")
	req = withTestUser(req, false)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
	if hx := rec.Header().Get("HX-Redirect"); hx != "/consent" {
		t.Errorf("expected HX-Redirect to /consent, got %q", hx)
	}
}

func TestRequireConsent_WithConsent_Proceeds(t *testing.T) {
	sm := newTestSessionManager(t)

	called := false
	handler := sm.RequireConsent(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/research", nil)
	req = withTestUser(req, true)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("expected handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| LoadSessionUser + fetcher                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

type stubFetcher struct {
	user *auth.SessionUser
	err  error
}

func (f *stubFetcher) SessionUser(_ context.Context, _ string) (*auth.SessionUser, error) {
	return f.user, f.err
}

// signedInRequest runs SignIn through a recorder and transplants the
// resulting cookie onto a fresh request, yielding a request the session
// manager recognises as authenticated.
func signedInRequest(t *testing.T, sm *auth.SessionManager, target string, u *auth.SessionUser) *http.Request {
	t.Helper()

	seed := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	if err := sm.SignIn(rec, seed, u); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	req := httptest.NewRequest("GET", target, nil)
	req.Header.Set("Accept", "text/html")
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestLoadSessionUser_NoCookie_Anonymous(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.CurrentUser(r); ok {
			t.Error("expected no user in context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestLoadSessionUser_ValidSession_InjectsUser(t *testing.T) {
	sm := newTestSessionManager(t)

	var got *auth.SessionUser
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := signedInRequest(t, sm, "/dashboard", &auth.SessionUser{
		ID: "507f1f77bcf86cd799439011", Email: "rider@example.com", Consent: true,
	})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected a user in context")
	}
	if got.Email != "rider@example.com" {
		t.Errorf("expected email to round-trip, got %q", got.Email)
	}
	if !got.Consent {
		t.Error("expected consent flag to round-trip")
	}
}

func TestLoadSessionUser_DeletedAccount_SignsOut(t *testing.T) {
	sm := newTestSessionManager(t)
	sm.SetUserFetcher(&stubFetcher{user: nil, err: nil}) // account gone

	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.CurrentUser(r); ok {
			t.Error("expected deleted account to be treated as anonymous")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := signedInRequest(t, sm, "/dashboard", &auth.SessionUser{
		ID: "507f1f77bcf86cd799439011", Email: "gone@example.com",
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// The session cookie should be expired in the response.
	expired := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge < 0 {
			expired = true
		}
	}
	if !expired {
		t.Error("expected the session cookie to be deleted")
	}
}

func TestLoadSessionUser_FetcherError_KeepsCachedUser(t *testing.T) {
	sm := newTestSessionManager(t)
	sm.SetUserFetcher(&stubFetcher{err: errors.New("mongo down")})

	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.CurrentUser(r); !ok {
			t.Error("expected a transient fetch error to keep the session user")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := signedInRequest(t, sm, "/dashboard", &auth.SessionUser{
		ID: "507f1f77bcf86cd799439011", Email: "rider@example.com",
	})
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestSignOut_ClearsConsentFlag(t *testing.T) {
	sm := newTestSessionManager(t)

	// Sign in with consent, sign out, and verify a request carrying the
	// post-signout cookie is anonymous.
	seed := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	if err := sm.SignIn(rec, seed, &auth.SessionUser{ID: "507f1f77bcf86cd799439011", Consent: true}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	outReq := httptest.NewRequest("GET", "/logout", nil)
	for _, c := range rec.Result().Cookies() {
		outReq.AddCookie(c)
	}
	outRec := httptest.NewRecorder()
	if err := sm.SignOut(outRec, outReq); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	for _, c := range outRec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge >= 0 {
			t.Error("expected the session cookie to be expired after sign-out")
		}
	}
}

func TestCurrentUser_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	user, ok := auth.CurrentUser(req)

	if ok {
		t.Error("expected ok to be false when no user in context")
	}
	if user != nil {
		t.Error("expected user to be nil when no user in context")
	}
}

// withTestUser injects a SessionUser into the request context for testing.
// This simulates what LoadSessionUser middleware does.
func withTestUser(r *http.Request, consent bool) *http.Request {
	user := &auth.SessionUser{
		ID:      "507f1f77bcf86cd799439011", // Valid ObjectID hex
		Email:   "test@example.com",
		Consent: consent,
	}
	return auth.WithTestUser(r, user)
}
