package consent_test

import (
	"context"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/natpac/tripcollect/internal/app/features/consent"
	uierrors "github.com/natpac/tripcollect/internal/app/features/errors"
	"github.com/natpac/tripcollect/internal/app/system/auth"
	"github.com/natpac/tripcollect/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeConsentWriter struct {
	set []primitive.ObjectID
	err error
}

func (f *fakeConsentWriter) SetConsent(ctx context.Context, userID primitive.ObjectID, c bool) error {
	if f.err != nil {
		return f.err
	}
	if c {
		f.set = append(f.set, userID)
	}
	return nil
}

func newTestHandler(t *testing.T, w *fakeConsentWriter) *consent.Handler {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"tripcollect_test",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	require.NoError(t, err)
	return &consent.Handler{
		Profiles:   w,
		Log:        zap.NewNop(),
		SessionMgr: sm,
		ErrLog:     uierrors.NewErrorLogger(zap.NewNop()),
	}
}

func TestHandleConsentPost_Agreed_PersistsAndRedirects(t *testing.T) {
	writer := &fakeConsentWriter{}
	h := newTestHandler(t, writer)

	userID := primitive.NewObjectID()
	req := testutil.NewFormRequest("/consent", url.Values{"agree": {"on"}})
	req = auth.WithTestUser(req, &auth.SessionUser{ID: userID.Hex(), Email: "rider@example.com"})
	rec := httptest.NewRecorder()

	h.HandleConsentPost(rec, req)

	require.Equal(t, 303, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	require.Equal(t, []primitive.ObjectID{userID}, writer.set)
	require.NotEmpty(t, rec.Header().Values("Set-Cookie"), "session consent flag should be saved")
}

func TestHandleConsentPost_BoxNotTicked_NothingPersisted(t *testing.T) {
	writer := &fakeConsentWriter{}
	h := newTestHandler(t, writer)

	req := testutil.NewFormRequest("/consent", url.Values{})
	req = auth.WithTestUser(req, &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Email: "rider@example.com"})
	rec := httptest.NewRecorder()

	// Re-rendering the form needs the template engine.
	func() {
		defer func() { recover() }()
		h.HandleConsentPost(rec, req)
	}()

	require.NotEqual(t, 303, rec.Code)
	require.Empty(t, writer.set)
}

func TestHandleConsentPost_WriteFailure_StillMarksSession(t *testing.T) {
	writer := &fakeConsentWriter{err: context.DeadlineExceeded}
	h := newTestHandler(t, writer)

	req := testutil.NewFormRequest("/consent", url.Values{"agree": {"on"}})
	req = auth.WithTestUser(req, &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Email: "rider@example.com"})
	rec := httptest.NewRecorder()

	h.HandleConsentPost(rec, req)

	require.Equal(t, 303, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestServeConsent_AlreadyConsented_RedirectsToDashboard(t *testing.T) {
	h := newTestHandler(t, &fakeConsentWriter{})

	req := httptest.NewRequest("GET", "/consent", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID:      primitive.NewObjectID().Hex(),
		Email:   "rider@example.com",
		Consent: true,
	})
	rec := httptest.NewRecorder()

	h.ServeConsent(rec, req)

	require.Equal(t, 303, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
}
