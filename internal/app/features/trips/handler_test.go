package trips_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	uierrors "github.com/natpac/tripcollect/internal/app/features/errors"
	"github.com/natpac/tripcollect/internal/app/features/trips"
	"github.com/natpac/tripcollect/internal/app/system/auth"
	"github.com/natpac/tripcollect/internal/domain/models"
	"github.com/natpac/tripcollect/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeInserter struct {
	inserted []models.Trip
	err      error
}

func (f *fakeInserter) Insert(ctx context.Context, t models.Trip) (models.Trip, error) {
	if f.err != nil {
		return models.Trip{}, f.err
	}
	t.ID = primitive.NewObjectID()
	f.inserted = append(f.inserted, t)
	return t, nil
}

func newTestHandler(store *fakeInserter) *trips.Handler {
	return &trips.Handler{
		Trips:  store,
		Log:    zap.NewNop(),
		ErrLog: uierrors.NewErrorLogger(zap.NewNop()),
	}
}

func TestHandleCreateTrip_Valid_RedirectsWithCreatedFlag(t *testing.T) {
	store := &fakeInserter{}
	h := newTestHandler(store)
	userID := primitive.NewObjectID()

	req := testutil.NewFormRequest("/trips", url.Values{
		"origin":      {"Thampanoor"},
		"destination": {"Technopark"},
		"mode":        {"bus"},
		"start_time":  {"2026-03-14T08:30"},
		"companions":  {"two colleagues"},
	})
	req = auth.WithTestUser(req, &auth.SessionUser{ID: userID.Hex(), Email: "rider@example.com", Consent: true})
	rec := httptest.NewRecorder()

	h.HandleCreateTrip(rec, req)

	require.Equal(t, 303, rec.Code)
	require.Equal(t, "/dashboard?created=1", rec.Header().Get("Location"))

	require.Len(t, store.inserted, 1)
	trip := store.inserted[0]
	require.Equal(t, userID, trip.UserID)
	require.Equal(t, "Thampanoor", trip.Origin)
	require.Equal(t, "Technopark", trip.Destination)
	require.Equal(t, models.ModeBus, trip.Mode)
	require.Equal(t, "two colleagues", trip.Companions)
	require.NotNil(t, trip.StartTime)
	require.Nil(t, trip.EndTime)
}

func TestHandleCreateTrip_MissingRequiredField_NoInsert(t *testing.T) {
	cases := []url.Values{
		{"destination": {"Technopark"}, "mode": {"bus"}},
		{"origin": {"Thampanoor"}, "mode": {"bus"}},
		{"origin": {"Thampanoor"}, "destination": {"Technopark"}},
	}

	for _, form := range cases {
		store := &fakeInserter{}
		h := newTestHandler(store)

		req := testutil.NewFormRequest("/trips", form)
		req = auth.WithTestUser(req, &auth.SessionUser{
			ID: primitive.NewObjectID().Hex(), Email: "rider@example.com", Consent: true,
		})
		rec := httptest.NewRecorder()

		// The error render needs the template engine.
		func() {
			defer func() { recover() }()
			h.HandleCreateTrip(rec, req)
		}()

		require.Empty(t, store.inserted, "no insert should happen for %v", form)
		require.NotEqual(t, 303, rec.Code)
	}
}

func TestHandleCreateTrip_UnknownMode_NoInsert(t *testing.T) {
	store := &fakeInserter{}
	h := newTestHandler(store)

	req := testutil.NewFormRequest("/trips", url.Values{
		"origin":      {"Thampanoor"},
		"destination": {"Technopark"},
		"mode":        {"hovercraft"},
	})
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID: primitive.NewObjectID().Hex(), Email: "rider@example.com", Consent: true,
	})
	rec := httptest.NewRecorder()

	func() {
		defer func() { recover() }()
		h.HandleCreateTrip(rec, req)
	}()

	require.Empty(t, store.inserted)
}

func TestHandleCreateTrip_NoSession_NoInsert(t *testing.T) {
	store := &fakeInserter{}
	h := newTestHandler(store)

	req := testutil.NewFormRequest("/trips", url.Values{
		"origin":      {"Thampanoor"},
		"destination": {"Technopark"},
		"mode":        {"bus"},
	})
	rec := httptest.NewRecorder()

	func() {
		defer func() { recover() }()
		h.HandleCreateTrip(rec, req)
	}()

	require.Empty(t, store.inserted)
}

func TestHandleCreateTrip_StoreError_NoRedirect(t *testing.T) {
	store := &fakeInserter{err: errors.New("write concern timeout")}
	h := newTestHandler(store)

	req := testutil.NewFormRequest("/trips", url.Values{
		"origin":      {"Thampanoor"},
		"destination": {"Technopark"},
		"mode":        {"bus"},
	})
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID: primitive.NewObjectID().Hex(), Email: "rider@example.com", Consent: true,
	})
	rec := httptest.NewRecorder()

	func() {
		defer func() { recover() }()
		h.HandleCreateTrip(rec, req)
	}()

	require.NotEqual(t, 303, rec.Code)
}

func TestHandleCreateTrip_StripsMarkupFromFreeText(t *testing.T) {
	store := &fakeInserter{}
	h := newTestHandler(store)

	req := testutil.NewFormRequest("/trips", url.Values{
		"origin":      {`<script>alert(1)</script>Thampanoor`},
		"destination": {"Technopark"},
		"mode":        {"bus"},
	})
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID: primitive.NewObjectID().Hex(), Email: "rider@example.com", Consent: true,
	})
	rec := httptest.NewRecorder()

	h.HandleCreateTrip(rec, req)

	require.Len(t, store.inserted, 1)
	require.Equal(t, "Thampanoor", store.inserted[0].Origin)
}

func TestHandleCreateTrip_TimestampsConvertedToUTC(t *testing.T) {
	store := &fakeInserter{}
	h := newTestHandler(store)

	req := testutil.NewFormRequest("/trips", url.Values{
		"origin":      {"Thampanoor"},
		"destination": {"Technopark"},
		"mode":        {"train"},
		"start_time":  {"2026-03-14T08:30"},
		"end_time":    {"2026-03-14T09:15"},
	})
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID: primitive.NewObjectID().Hex(), Email: "rider@example.com", Consent: true,
	})
	rec := httptest.NewRecorder()

	h.HandleCreateTrip(rec, req)

	require.Len(t, store.inserted, 1)
	trip := store.inserted[0]
	require.NotNil(t, trip.StartTime)
	require.NotNil(t, trip.EndTime)
	require.Equal(t, time.UTC, trip.StartTime.Location())
	require.True(t, trip.EndTime.After(*trip.StartTime))
}
